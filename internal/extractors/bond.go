package extractors

import (
	"fmt"

	"github.com/miradorstack/check-bond/internal/models"
	"github.com/miradorstack/check-bond/internal/repo"
	"github.com/miradorstack/check-bond/internal/utils"
)

// MaxSamplesPerBond is the number of recent slave samples kept per bond, one per expected slave.
const MaxSamplesPerBond = 2

// primaryFallbackColumn is the offset of active_slave in a `select *` over the bond measurement.
const primaryFallbackColumn = 1

// BondExtractor turns bond_slave series into bond groups.
type BondExtractor struct{}

// NewBondExtractor creates a bond_slave extractor.
func NewBondExtractor() *BondExtractor {
	return &BondExtractor{}
}

// Extract groups rows by bond and keeps the most recent samples of each, newest first.
// The column layout is taken from the first series with columns and applied to all of them.
func (e *BondExtractor) Extract(series []repo.Series) ([]models.BondGroup, error) {
	if len(series) == 0 {
		return nil, nil
	}

	var columns []string
	for _, s := range series {
		if len(s.Columns) > 0 {
			columns = s.Columns
			break
		}
	}
	var idx ColumnIndex
	if columns != nil {
		var err error
		idx, err = NewColumnIndex(columns, ColumnTime, ColumnHost, ColumnInterface, ColumnStatus)
		if err != nil {
			return nil, err
		}
	}

	groups := make([]models.BondGroup, 0, len(series))
	for _, s := range series {
		bond := s.Tags[ColumnBond]
		if bond == "" && idx.Has(ColumnBond) && len(s.Values) > 0 {
			bond = idx.String(s.Values[0], ColumnBond)
		}
		if bond == "" {
			return nil, utils.NewAppError(utils.KindShape, "bond extract", "series has neither a bond tag nor a bond column", nil)
		}

		group := models.BondGroup{Bond: bond}
		if idx == nil {
			groups = append(groups, group)
			continue
		}
		for i := len(s.Values) - 1; i >= 0 && len(group.Samples) < MaxSamplesPerBond; i-- {
			sample, err := e.sample(idx, bond, s.Values[i])
			if err != nil {
				return nil, fmt.Errorf("bond %s: %w", bond, err)
			}
			group.Samples = append(group.Samples, sample)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (e *BondExtractor) sample(idx ColumnIndex, bond string, row []any) (models.BondSample, error) {
	raw, ts, err := idx.Time(row, ColumnTime)
	if err != nil {
		return models.BondSample{}, err
	}
	// A null or non-numeric status counts as down.
	status, _ := idx.Int(row, ColumnStatus)
	return models.BondSample{
		Time:      ts,
		RawTime:   raw,
		Host:      idx.String(row, ColumnHost),
		Bond:      bond,
		Interface: idx.String(row, ColumnInterface),
		Status:    status,
	}, nil
}

// Primary reads the active slave interface from the bond query's first row.
func (e *BondExtractor) Primary(series []repo.Series) (string, error) {
	if len(series) == 0 || len(series[0].Values) == 0 {
		return "", utils.NewAppError(utils.KindShape, "primary extract", "bond query returned no rows", nil)
	}
	first := series[0]
	row := first.Values[0]

	idx, err := NewColumnIndex(first.Columns)
	if err != nil {
		return "", err
	}
	if idx.Has(ColumnActiveSlave) {
		return idx.String(row, ColumnActiveSlave), nil
	}
	if len(row) <= primaryFallbackColumn {
		return "", utils.NewAppError(utils.KindShape, "primary extract", fmt.Sprintf("bond row has %d columns", len(row)), nil)
	}
	return stringValue(row[primaryFallbackColumn]), nil
}
