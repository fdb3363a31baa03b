package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/miradorstack/check-bond/internal/models"
)

// Report is the rendered outcome of a check run.
type Report struct {
	Severity models.Severity
	Message  string
}

// ExitCode returns the plugin exit code for the report.
func (r Report) ExitCode() int {
	return r.Severity.ExitCode()
}

// Build renders an evaluation into the plugin message and overall severity.
func Build(eval models.Evaluation) Report {
	if eval.NoBondsFound {
		return Report{Severity: models.SeverityWarning, Message: "No bonds found"}
	}

	messages := eval.Messages()
	if len(messages) == 0 {
		return Report{
			Severity: models.SeverityOK,
			Message:  fmt.Sprintf("Bonds %s OK", strings.Join(eval.BondNames(), " ")),
		}
	}
	return Report{Severity: eval.Severity, Message: strings.Join(messages, "")}
}

// Unknown reports an error that prevented classification.
func Unknown(err error) Report {
	return Report{Severity: models.SeverityUnknown, Message: fmt.Sprintf("UNKNOWN: %v", err)}
}

// Write prints the message followed by exactly one newline.
func Write(w io.Writer, r Report) error {
	_, err := io.WriteString(w, strings.TrimRight(r.Message, "\n")+"\n")
	return err
}
