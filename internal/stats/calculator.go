package stats

import (
	"math"
	"strconv"

	"vega-tracker/internal/domain"
)

// Calculate aggregates the win/draw/loss counters of one battle category.
// Pure; NaN or negative garbage from the upstream decode is treated as zero
// rather than propagated.
func Calculate(wins, draws, losses float64) domain.BattleCategoryStats {
	wins = sanitize(wins)
	draws = sanitize(draws)
	losses = sanitize(losses)

	total := wins + draws + losses

	winrate := 0.0
	if total > 0 {
		winrate = wins / total * 100
	}

	var kd string
	switch {
	case losses > 0:
		kd = format(wins / losses)
	case wins > 0:
		kd = format(wins)
	default:
		kd = "0.00"
	}

	return domain.BattleCategoryStats{
		TotalBattles:   int(total),
		WinratePercent: format(winrate),
		KDRatio:        kd,
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
