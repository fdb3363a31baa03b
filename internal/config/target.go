package config

import (
	"fmt"
	"strconv"

	"github.com/miradorstack/check-bond/internal/utils"
)

// Required command-line inputs, in the order they are checked.
const (
	FlagInfluxHost   = "influxhost"
	FlagInfluxPort   = "influxport"
	FlagInfluxDBName = "influxdbname"
	FlagHostname     = "hostname"
)

var requiredFlags = []string{FlagInfluxHost, FlagInfluxPort, FlagInfluxDBName, FlagHostname}

// Target identifies the database to query and the host whose bonds are checked.
type Target struct {
	InfluxHost   string
	InfluxPort   int
	InfluxDBName string
	Hostname     string
}

// ConfigError reports a missing or invalid input.
type ConfigError struct {
	Field   string
	Reason  string
	Missing bool
}

func (e *ConfigError) Error() string {
	if e.Missing {
		return fmt.Sprintf("Missing required cmdlint arg: --%s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, utils.ErrConfig) match.
func (e *ConfigError) Is(target error) bool {
	return target == utils.ErrConfig
}

// Lookup returns the raw value of a named input and whether it was supplied at all.
type Lookup func(name string) (string, bool)

// Resolve reads the four required inputs. The first one not supplied is reported; a
// supplied empty string counts as present.
func Resolve(lookup Lookup) (Target, error) {
	values := make(map[string]string, len(requiredFlags))
	for _, name := range requiredFlags {
		v, ok := lookup(name)
		if !ok {
			return Target{}, &ConfigError{Field: name, Missing: true}
		}
		values[name] = v
	}

	port, err := strconv.Atoi(values[FlagInfluxPort])
	if err != nil {
		return Target{}, &ConfigError{Field: FlagInfluxPort, Reason: fmt.Sprintf("%q is not an integer", values[FlagInfluxPort])}
	}

	return Target{
		InfluxHost:   values[FlagInfluxHost],
		InfluxPort:   port,
		InfluxDBName: values[FlagInfluxDBName],
		Hostname:     values[FlagHostname],
	}, nil
}
