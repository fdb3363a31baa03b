package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/miradorstack/check-bond/internal/extractors"
	"github.com/miradorstack/check-bond/internal/models"
	"github.com/miradorstack/check-bond/internal/repo"
)

// TelemetryClient defines the InfluxDB queries used by the evaluator.
type TelemetryClient interface {
	FetchSlaveSeries(ctx context.Context, hostname string) ([]repo.Series, error)
	FetchPrimary(ctx context.Context, sample models.BondSample) ([]repo.Series, error)
}

// Evaluator classifies every bond reported for a host.
type Evaluator struct {
	logger      *slog.Logger
	client      TelemetryClient
	extractor   *extractors.BondExtractor
	concurrency int
}

// NewEvaluator constructs an evaluator. concurrency bounds parallel primary lookups; values
// below 1 mean sequential.
func NewEvaluator(logger *slog.Logger, client TelemetryClient, extractor *extractors.BondExtractor, concurrency int) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = extractors.NewBondExtractor()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Evaluator{
		logger:      logger,
		client:      client,
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// Evaluate queries slave status for hostname, looks up each bond's primary and classifies it.
// Query and shape failures are returned as errors; missing data is a classification.
func (e *Evaluator) Evaluate(ctx context.Context, hostname string) (models.Evaluation, error) {
	if e.client == nil {
		return models.Evaluation{}, fmt.Errorf("telemetry client not configured")
	}

	series, err := e.client.FetchSlaveSeries(ctx, hostname)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("fetch slave status: %w", err)
	}
	if len(series) == 0 {
		e.logger.Debug("no bond_slave series returned", slog.String("hostname", hostname))
		return models.Evaluation{
			Severity:     models.ClassificationNoBondsFound.Severity(),
			NoBondsFound: true,
		}, nil
	}

	groups, err := e.extractor.Extract(series)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("extract bond samples: %w", err)
	}
	groups = mergeGroups(groups)

	primaries, err := e.lookupPrimaries(ctx, groups)
	if err != nil {
		return models.Evaluation{}, err
	}

	eval := models.Evaluation{Bonds: make([]models.BondResult, 0, len(groups))}
	severities := make([]models.Severity, 0, len(groups))
	for _, group := range groups {
		result := Classify(group, primaries[group.Bond])
		if result.Classification != models.ClassificationOK {
			e.logger.Warn("bond not healthy",
				slog.String("bond", result.Bond),
				slog.String("classification", string(result.Classification)),
				slog.String("primary", result.Primary),
			)
		} else {
			e.logger.Debug("bond healthy", slog.String("bond", result.Bond), slog.String("primary", result.Primary))
		}
		eval.Bonds = append(eval.Bonds, result)
		severities = append(severities, result.Classification.Severity())
	}
	eval.Severity = models.MaxSeverity(severities...)
	return eval, nil
}

// lookupPrimaries issues one bond query per group with samples. The first failure cancels
// outstanding lookups and is returned.
func (e *Evaluator) lookupPrimaries(ctx context.Context, groups []models.BondGroup) (map[string]string, error) {
	withData := lo.Filter(groups, func(g models.BondGroup, _ int) bool { return len(g.Samples) > 0 })
	results := make([]string, len(withData))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.concurrency)
	for i, group := range withData {
		eg.Go(func() error {
			newest, _ := group.Newest()
			series, err := e.client.FetchPrimary(egCtx, newest)
			if err != nil {
				return fmt.Errorf("lookup primary for %s: %w", group.Bond, err)
			}
			primary, err := e.extractor.Primary(series)
			if err != nil {
				return fmt.Errorf("lookup primary for %s: %w", group.Bond, err)
			}
			results[i] = primary
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	primaries := make(map[string]string, len(withData))
	for i, group := range withData {
		primaries[group.Bond] = results[i]
	}
	return primaries, nil
}

// mergeGroups collapses repeated bond names (last series wins) and orders groups by name.
func mergeGroups(groups []models.BondGroup) []models.BondGroup {
	byName := lo.SliceToMap(groups, func(g models.BondGroup) (string, models.BondGroup) {
		return g.Bond, g
	})
	merged := lo.Values(byName)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Bond < merged[j].Bond })
	return merged
}
