package engine

import (
	"fmt"

	"github.com/miradorstack/check-bond/internal/extractors"
	"github.com/miradorstack/check-bond/internal/models"
)

// Classify maps a bond's recent samples and current primary onto a classification.
// A single sample means one slave stopped reporting and is degraded; no samples at all is a
// data gap and only a warning.
func Classify(group models.BondGroup, primary string) models.BondResult {
	result := models.BondResult{Bond: group.Bond, Primary: primary}

	switch len(group.Samples) {
	case 0:
		result.Classification = models.ClassificationNoData
		result.Messages = []string{fmt.Sprintf("%s failed to receive data from influxdb\n", group.Bond)}
	case 1:
		result.Classification = models.ClassificationDegradedMissingSlave
		result.Messages = []string{fmt.Sprintf("%s degraded current primary %s\n", group.Bond, primary)}
	default:
		result.Classification = models.ClassificationOK
		for _, sample := range group.Samples[:extractors.MaxSamplesPerBond] {
			if sample.Up() {
				continue
			}
			result.Classification = models.ClassificationDegradedInterfaceDown
			result.Messages = append(result.Messages,
				fmt.Sprintf("%s degraded, interface %s down current primary %s\n", group.Bond, sample.Interface, primary))
		}
	}
	return result
}
