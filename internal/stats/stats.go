// Package stats derives read-only recruitment statistics from scoped
// candidate collections. Every function is pure, order-preserving and safe on
// empty input.
package stats

import (
	"math"

	"github.com/shavuson/recruit-api/internal/models"
)

// FunnelStats summarises the recruitment funnel for one institution.
type FunnelStats struct {
	Total          int `json:"total"`
	Accepted       int `json:"accepted"`
	Enrolled       int `json:"enrolled"`
	ConversionRate int `json:"conversion_rate"`
}

// SourceBreakdown reports the performance of one referral source. Sources
// with zero candidates are omitted from breakdowns.
type SourceBreakdown struct {
	Source        models.Source `json:"source"`
	Count         int           `json:"count"`
	EnrolledCount int           `json:"enrolled_count"`
}

// StageBuckets partitions candidates into the dashboard's named views. A
// candidate appears in at most one bucket since stage is a single value.
type StageBuckets struct {
	Urgent   []models.Candidate `json:"urgent"`
	Visiting []models.Candidate `json:"visiting"`
}

// Funnel computes the conversion funnel. Enrolled implies having been
// accepted, so accepted counts both statuses. The rate is a rounded integer
// percentage of enrolled over total, zero when the set is empty.
func Funnel(candidates []models.Candidate) FunnelStats {
	out := FunnelStats{Total: len(candidates)}
	for _, c := range candidates {
		switch c.Status {
		case models.StatusEnrolled:
			out.Accepted++
			out.Enrolled++
		case models.StatusAccepted:
			out.Accepted++
		}
	}
	if out.Total > 0 {
		out.ConversionRate = int(math.Round(float64(out.Enrolled) / float64(out.Total) * 100))
	}
	return out
}

// BySource tallies count and enrolled count per referral source, in the
// canonical source order, omitting sources that produced no candidates.
func BySource(candidates []models.Candidate) []SourceBreakdown {
	counts := make(map[models.Source]*SourceBreakdown, len(models.Sources))
	for _, c := range candidates {
		entry, ok := counts[c.Source]
		if !ok {
			entry = &SourceBreakdown{Source: c.Source}
			counts[c.Source] = entry
		}
		entry.Count++
		if c.Status == models.StatusEnrolled {
			entry.EnrolledCount++
		}
	}

	out := make([]SourceBreakdown, 0, len(counts))
	for _, src := range models.Sources {
		if entry, ok := counts[src]; ok {
			out = append(out, *entry)
		}
	}
	return out
}

// ByStage partitions candidates into the named dashboard buckets: urgent
// (decision stage) and visiting. Relative order within each bucket follows
// the input; the input itself is never mutated.
func ByStage(candidates []models.Candidate) StageBuckets {
	var buckets StageBuckets
	for _, c := range candidates {
		switch c.Stage {
		case models.StageDecision:
			buckets.Urgent = append(buckets.Urgent, c)
		case models.StageVisiting:
			buckets.Visiting = append(buckets.Visiting, c)
		}
	}
	return buckets
}
