package models

// Classification captures the health of a bond or of the whole run.
type Classification string

const (
	ClassificationOK                    Classification = "OK"
	ClassificationDegradedMissingSlave  Classification = "DEGRADED_MISSING_SLAVE"
	ClassificationDegradedInterfaceDown Classification = "DEGRADED_INTERFACE_DOWN"
	ClassificationNoData                Classification = "NO_DATA"
	ClassificationNoBondsFound          Classification = "NO_BONDS_FOUND"
)

// Severity ranks check outcomes; values double as plugin exit codes.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
	SeverityUnknown
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code for the severity.
func (s Severity) ExitCode() int {
	if s < SeverityOK || s > SeverityUnknown {
		return int(SeverityUnknown)
	}
	return int(s)
}

// Severity maps a classification onto the ordinal used for the overall status.
func (c Classification) Severity() Severity {
	switch c {
	case ClassificationOK:
		return SeverityOK
	case ClassificationNoData, ClassificationNoBondsFound:
		return SeverityWarning
	case ClassificationDegradedMissingSlave, ClassificationDegradedInterfaceDown:
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// MaxSeverity returns the highest of the supplied severities (OK when empty).
func MaxSeverity(values ...Severity) Severity {
	max := SeverityOK
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
