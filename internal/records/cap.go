package records

import (
	"log/slog"
	"sort"
)

// CapStats counts records dropped by the capper.
type CapStats struct {
	OutOfRange int // non-positive numbers, unusable for matching
	Overflow   int // records beyond the cap, by number or by count
}

// Cap discards drafts with non-positive numbers, drops anything numbered
// above max as overflow, then truncates the rest to at most max records,
// keeping the lowest-numbered ones. The sort is stable by number ascending
// with the chunk dispatch sequence breaking ties, so the result is
// deterministic regardless of chunk completion order.
func Cap(drafts []Draft, max int, logger *slog.Logger) ([]Draft, CapStats) {
	if logger == nil {
		logger = slog.Default()
	}

	var stats CapStats
	kept := make([]Draft, 0, len(drafts))
	for _, d := range drafts {
		if d.Number < 1 {
			stats.OutOfRange++
			logger.Debug("record number unusable, dropped",
				"kind", d.Kind, "number", d.Number)
			continue
		}
		if d.Number > max {
			stats.Overflow++
			logger.Debug("record number above cap, dropped",
				"kind", d.Kind, "number", d.Number, "max", max)
			continue
		}
		kept = append(kept, d)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Number != kept[j].Number {
			return kept[i].Number < kept[j].Number
		}
		return kept[i].Seq < kept[j].Seq
	})

	if len(kept) > max {
		stats.Overflow += len(kept) - max
		logger.Info("record cap applied", "kept", max, "dropped", stats.Overflow)
		kept = kept[:max]
	}
	return kept, stats
}
