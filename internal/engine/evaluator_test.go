package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/miradorstack/check-bond/internal/models"
	"github.com/miradorstack/check-bond/internal/repo"
	"github.com/miradorstack/check-bond/internal/utils"
)

var slaveColumns = []string{"time", "failures", "host", "interface", "status"}

type fakeTelemetry struct {
	mu        sync.Mutex
	slaves    []repo.Series
	slaveErr  error
	primaries map[string]string
	calls     []models.BondSample
}

func (f *fakeTelemetry) FetchSlaveSeries(ctx context.Context, hostname string) ([]repo.Series, error) {
	return f.slaves, f.slaveErr
}

func (f *fakeTelemetry) FetchPrimary(ctx context.Context, sample models.BondSample) ([]repo.Series, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sample)
	f.mu.Unlock()

	primary, ok := f.primaries[sample.Bond]
	if !ok {
		return nil, utils.NewAppError(utils.KindShape, "bond query", "no bond row", nil)
	}
	return []repo.Series{{
		Name:    "bond",
		Columns: []string{"time", "active_slave", "bond", "host", "status"},
		Values:  [][]any{{sample.RawTime, primary, sample.Bond, sample.Host, json.Number("1")}},
	}}, nil
}

func slaveSeries(bond string, rows ...[]any) repo.Series {
	return repo.Series{Name: "bond_slave", Tags: map[string]string{"bond": bond}, Columns: slaveColumns, Values: rows}
}

func slaveRow(ts, iface string, status int) []any {
	return []any{ts, json.Number("0"), "web01", iface, json.Number(strconv.Itoa(status))}
}

func TestEvaluateNoSeries(t *testing.T) {
	client := &fakeTelemetry{}
	eval, err := NewEvaluator(nil, client, nil, 1).Evaluate(context.Background(), "web01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eval.NoBondsFound || eval.Severity != models.SeverityWarning || len(eval.Bonds) != 0 {
		t.Fatalf("unexpected evaluation: %+v", eval)
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no primary lookups, got %d", len(client.calls))
	}
}

func TestEvaluateHealthyBond(t *testing.T) {
	client := &fakeTelemetry{
		slaves: []repo.Series{slaveSeries("bond0",
			slaveRow("2018-01-19T10:00:00Z", "eth0", 1),
			slaveRow("2018-01-19T10:00:00Z", "eth1", 1),
		)},
		primaries: map[string]string{"bond0": "eth0"},
	}
	eval, err := NewEvaluator(nil, client, nil, 1).Evaluate(context.Background(), "web01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.Severity != models.SeverityOK {
		t.Fatalf("expected OK, got %s", eval.Severity)
	}
	if len(eval.Messages()) != 0 {
		t.Fatalf("expected no messages, got %v", eval.Messages())
	}
	if len(client.calls) != 1 || client.calls[0].RawTime != "2018-01-19T10:00:00Z" || client.calls[0].Bond != "bond0" {
		t.Fatalf("unexpected primary lookups: %+v", client.calls)
	}
}

func TestEvaluateMixedBonds(t *testing.T) {
	client := &fakeTelemetry{
		slaves: []repo.Series{
			slaveSeries("bond1", slaveRow("2018-01-19T10:00:00Z", "eth2", 1)),
			slaveSeries("bond0",
				slaveRow("2018-01-19T10:00:00Z", "eth1", 1),
				slaveRow("2018-01-19T10:00:00Z", "eth0", 0),
			),
			{Name: "bond_slave", Tags: map[string]string{"bond": "bond2"}, Columns: slaveColumns},
		},
		primaries: map[string]string{"bond0": "eth1", "bond1": "eth2"},
	}
	eval, err := NewEvaluator(nil, client, nil, 4).Evaluate(context.Background(), "web01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.Severity != models.SeverityCritical {
		t.Fatalf("expected CRITICAL, got %s", eval.Severity)
	}

	names := eval.BondNames()
	if len(names) != 3 || names[0] != "bond0" || names[1] != "bond1" || names[2] != "bond2" {
		t.Fatalf("expected lexicographic bond order, got %v", names)
	}

	want := []string{
		"bond0 degraded, interface eth0 down current primary eth1\n",
		"bond1 degraded current primary eth2\n",
		"bond2 failed to receive data from influxdb\n",
	}
	got := eval.Messages()
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message %d:\n got %q\nwant %q", i, got[i], want[i])
		}
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected lookups only for bonds with data, got %d", len(client.calls))
	}
}

func TestEvaluatePrimaryShapeErrorPropagates(t *testing.T) {
	client := &fakeTelemetry{
		slaves:    []repo.Series{slaveSeries("bond0", slaveRow("2018-01-19T10:00:00Z", "eth0", 1))},
		primaries: map[string]string{},
	}
	_, err := NewEvaluator(nil, client, nil, 1).Evaluate(context.Background(), "web01")
	if !errors.Is(err, utils.ErrShape) {
		t.Fatalf("expected shape error, got %v", err)
	}
}

func TestEvaluateSlaveQueryError(t *testing.T) {
	client := &fakeTelemetry{slaveErr: utils.NewAppError(utils.KindTransport, "influx query", "request failed", errors.New("refused"))}
	_, err := NewEvaluator(nil, client, nil, 1).Evaluate(context.Background(), "web01")
	if !errors.Is(err, utils.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
