package stats_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"vega-tracker/internal/stats"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name           string
		wins           float64
		draws          float64
		losses         float64
		totalBattles   int
		winratePercent string
		kdRatio        string
	}{
		{
			name:         "all zero",
			totalBattles: 0, winratePercent: "0.00", kdRatio: "0.00",
		},
		{
			name: "mixed record",
			wins: 10, draws: 2, losses: 8,
			totalBattles: 20, winratePercent: "50.00", kdRatio: "1.25",
		},
		{
			name: "no losses uses wins as ratio",
			wins: 7, draws: 3, losses: 0,
			totalBattles: 10, winratePercent: "70.00", kdRatio: "7.00",
		},
		{
			name: "only draws",
			wins: 0, draws: 5, losses: 0,
			totalBattles: 5, winratePercent: "0.00", kdRatio: "0.00",
		},
		{
			name: "only losses",
			wins: 0, draws: 0, losses: 4,
			totalBattles: 4, winratePercent: "0.00", kdRatio: "0.00",
		},
		{
			name: "repeating decimal rounds to two places",
			wins: 1, draws: 0, losses: 2,
			totalBattles: 3, winratePercent: "33.33", kdRatio: "0.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stats.Calculate(tt.wins, tt.draws, tt.losses)
			assert.Equal(t, tt.totalBattles, got.TotalBattles)
			assert.Equal(t, tt.winratePercent, got.WinratePercent)
			assert.Equal(t, tt.kdRatio, got.KDRatio)
		})
	}
}

func TestCalculate_TotalEqualsSum(t *testing.T) {
	for w := 0; w <= 15; w++ {
		for d := 0; d <= 15; d += 3 {
			for l := 0; l <= 15; l += 5 {
				got := stats.Calculate(float64(w), float64(d), float64(l))
				assert.Equal(t, w+d+l, got.TotalBattles)
			}
		}
	}
}

func TestCalculate_GarbageInputsTreatedAsZero(t *testing.T) {
	got := stats.Calculate(math.NaN(), math.Inf(1), -3)
	assert.Equal(t, 0, got.TotalBattles)
	assert.Equal(t, "0.00", got.WinratePercent)
	assert.Equal(t, "0.00", got.KDRatio)
}
