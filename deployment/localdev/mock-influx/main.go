package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/miradorstack/check-bond/internal/utils"
)

type series struct {
	Name    string            `json:"name"`
	Tags    map[string]string `json:"tags,omitempty"`
	Columns []string          `json:"columns"`
	Values  [][]any           `json:"values"`
}

type slave struct {
	iface  string
	status int
}

// scenarios maps a name onto the bond_slave rows returned for bond0 and bond1.
var scenarios = map[string]map[string][]slave{
	"healthy": {
		"bond0": {{"eth0", 1}, {"eth1", 1}},
		"bond1": {{"eth2", 1}, {"eth3", 1}},
	},
	"missing-slave": {
		"bond0": {{"eth0", 1}},
		"bond1": {{"eth2", 1}, {"eth3", 1}},
	},
	"interface-down": {
		"bond0": {{"eth0", 0}, {"eth1", 1}},
		"bond1": {{"eth2", 1}, {"eth3", 1}},
	},
	"empty": {},
}

var bondPattern = regexp.MustCompile(`bond='([^']*)'`)

func main() {
	addr := flag.String("addr", ":8086", "listen address")
	scenario := flag.String("scenario", "healthy", "healthy, missing-slave, interface-down or empty")
	flag.Parse()

	logger := utils.NewLogger("info", false)
	bonds, ok := scenarios[*scenario]
	if !ok {
		logger.Error("unknown scenario", slog.String("scenario", *scenario))
		os.Exit(1)
	}
	// Timestamps are fixed per process so the bond query can match the slave rows exactly.
	ts := time.Now().UTC().Truncate(10 * time.Second).Format(time.RFC3339)

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query().Get("q")
		host := "web01"
		switch {
		case strings.HasPrefix(q, "select * from bond_slave"):
			writeResults(w, logger, slaveSeries(bonds, ts, host))
		case strings.HasPrefix(q, "select * from bond "):
			bond := ""
			if m := bondPattern.FindStringSubmatch(q); m != nil {
				bond = m[1]
			}
			writeResults(w, logger, primarySeries(bonds, bond, ts, host))
		default:
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, logger, map[string]any{"error": "unsupported query"})
		}
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           logRequests(logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("mock influxdb listening", slog.String("address", *addr), slog.String("scenario", *scenario))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}

func slaveSeries(bonds map[string][]slave, ts, host string) []series {
	out := make([]series, 0, len(bonds))
	for bond, slaves := range bonds {
		s := series{
			Name:    "bond_slave",
			Tags:    map[string]string{"bond": bond},
			Columns: []string{"time", "failures", "host", "interface", "status"},
		}
		for _, sl := range slaves {
			s.Values = append(s.Values, []any{ts, 0, host, sl.iface, sl.status})
		}
		out = append(out, s)
	}
	return out
}

func primarySeries(bonds map[string][]slave, bond, ts, host string) []series {
	slaves, ok := bonds[bond]
	if !ok || len(slaves) == 0 {
		return nil
	}
	active := slaves[0].iface
	for _, sl := range slaves {
		if sl.status == 1 {
			active = sl.iface
			break
		}
	}
	return []series{{
		Name:    "bond",
		Columns: []string{"time", "active_slave", "bond", "host", "status"},
		Values:  [][]any{{ts, active, bond, host, 1}},
	}}
}

func writeResults(w http.ResponseWriter, logger *slog.Logger, s []series) {
	result := map[string]any{"statement_id": 0}
	if len(s) > 0 {
		result["series"] = s
	}
	writeJSON(w, logger, map[string]any{"results": []any{result}})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("encode error", slog.Any("error", err))
	}
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("query", r.URL.Query().Get("q")),
			slog.Int("status", rw.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
