package repo

import (
	"fmt"
	"strings"
)

var stringLiteralEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// QuoteString renders s as an InfluxQL single-quoted string literal.
func QuoteString(s string) string {
	return "'" + stringLiteralEscaper.Replace(s) + "'"
}

// SlaveQuery selects every bond_slave row for hostname newer than now() - window, grouped by bond.
func SlaveQuery(hostname, window string) string {
	return fmt.Sprintf("select * from bond_slave where host=%s and time > now() - %s group by bond", QuoteString(hostname), window)
}

// PrimaryQuery selects the bond row recorded at an exact timestamp.
func PrimaryQuery(ts, bond, host string) string {
	return fmt.Sprintf("select * from bond where time=%s and bond=%s and host=%s", QuoteString(ts), QuoteString(bond), QuoteString(host))
}
