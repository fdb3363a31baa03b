package models

import "time"

// StatusUp is the bond_slave status value reported for a healthy interface.
const StatusUp = 1

// BondSample is one bond_slave row for a slave interface.
type BondSample struct {
	Time time.Time
	// RawTime is the timestamp exactly as returned by InfluxDB, reused when querying the bond row.
	RawTime   string
	Host      string
	Bond      string
	Interface string
	Status    int
}

// Up reports whether the slave interface was up in this sample.
func (s BondSample) Up() bool {
	return s.Status == StatusUp
}

// BondGroup holds the most recent samples for a bond, newest first.
type BondGroup struct {
	Bond    string
	Samples []BondSample
}

// Newest returns the most recent sample, if any.
func (g BondGroup) Newest() (BondSample, bool) {
	if len(g.Samples) == 0 {
		return BondSample{}, false
	}
	return g.Samples[0], true
}

// BondResult is the classification of a single bond.
type BondResult struct {
	Bond           string
	Primary        string
	Classification Classification
	Messages       []string
}

// Evaluation is the outcome of one check run.
type Evaluation struct {
	Bonds        []BondResult
	Severity     Severity
	NoBondsFound bool
}

// BondNames returns the evaluated bond names in result order.
func (e Evaluation) BondNames() []string {
	names := make([]string, 0, len(e.Bonds))
	for _, b := range e.Bonds {
		names = append(names, b.Bond)
	}
	return names
}

// Messages returns every non-OK message across bonds in result order.
func (e Evaluation) Messages() []string {
	var out []string
	for _, b := range e.Bonds {
		out = append(out, b.Messages...)
	}
	return out
}
