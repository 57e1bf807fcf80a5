package domain

import (
	"github.com/shopspring/decimal"
)

// Benchmark ceilings for each signal. Values at or beyond the benchmark
// earn the full sub-score; they never push it higher.
const (
	BenchmarkRetention30d  = 100.0
	BenchmarkUpgradeRate   = 30.0
	BenchmarkAvgCoinVolume = 5000.0
	BenchmarkAvgOrderValue = 200.0
	BenchmarkRetention60d  = 100.0
)

// Signal weights; they sum to 1.0.
const (
	WeightRetention30d  = 0.30
	WeightUpgradeRate   = 0.25
	WeightAvgCoinVolume = 0.20
	WeightAvgOrderValue = 0.15
	WeightRetention60d  = 0.10
)

type Inputs struct {
	Retention30d  float64 `json:"retention_30d"`
	UpgradeRate   float64 `json:"upgrade_rate"`
	AvgCoinVolume float64 `json:"avg_coin_volume"`
	AvgOrderValue float64 `json:"avg_order_value"`
	Retention60d  float64 `json:"retention_60d"`
}

type Component struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Benchmark float64 `json:"benchmark"`
	Weight    float64 `json:"weight"`
	SubScore  float64 `json:"sub_score"`
}

type Score struct {
	Score      float64     `json:"score"`
	Stars      int         `json:"stars"`
	Label      string      `json:"label"`
	Components []Component `json:"components"`
}

// Calculate derives the composite quality score. Each signal is normalized
// against its benchmark, capped at 1.0, weighted, and scaled to 0-10. The
// result is deterministic and rounded to one decimal.
func Calculate(in Inputs) Score {
	components := []Component{
		component("retention_30d", in.Retention30d, BenchmarkRetention30d, WeightRetention30d),
		component("upgrade_rate", in.UpgradeRate, BenchmarkUpgradeRate, WeightUpgradeRate),
		component("avg_coin_volume", in.AvgCoinVolume, BenchmarkAvgCoinVolume, WeightAvgCoinVolume),
		component("avg_order_value", in.AvgOrderValue, BenchmarkAvgOrderValue, WeightAvgOrderValue),
		component("retention_60d", in.Retention60d, BenchmarkRetention60d, WeightRetention60d),
	}

	// Sum before rounding so the total does not accumulate display rounding.
	var total float64
	for i, c := range components {
		total += c.SubScore
		components[i].SubScore = round2(c.SubScore)
	}
	score := round1(total)

	return Score{
		Score:      score,
		Stars:      stars(score),
		Label:      label(score),
		Components: components,
	}
}

func component(name string, value, benchmark, weight float64) Component {
	ratio := 0.0
	if benchmark > 0 && value > 0 {
		ratio = value / benchmark
		if ratio > 1 {
			ratio = 1
		}
	}
	return Component{
		Name:      name,
		Value:     value,
		Benchmark: benchmark,
		Weight:    weight,
		SubScore:  ratio * weight * 10,
	}
}

func stars(score float64) int {
	switch {
	case score >= 9.0:
		return 5
	case score >= 7.5:
		return 4
	case score >= 6.0:
		return 3
	case score >= 4.0:
		return 2
	default:
		return 1
	}
}

func label(score float64) string {
	switch {
	case score >= 9.0:
		return "exceptional"
	case score >= 7.5:
		return "excellent"
	case score >= 6.0:
		return "good"
	case score >= 4.0:
		return "fair"
	default:
		return "low"
	}
}

func round1(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
