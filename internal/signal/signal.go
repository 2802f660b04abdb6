package signal

import (
	"fmt"
	"math"
	"strings"

	"deal-radar/internal/ta"
	"deal-radar/internal/types"
)

// minObservations is the shortest history we compute rolling statistics on.
// Shorter series still get the textual component.
const minObservations = 30

// window for the moving average / standard deviation features.
const window = 20

// dealKeywords trigger the textual score component.
var dealKeywords = []string{
	"merger", "acquisition", "buyout", "talks", "rumor", "proposal",
	"takeover", "tender offer", "definitive agreement",
}

// Scorer computes composite deal-likelihood scores. It is pure and safe for
// concurrent use.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Features computes the statistical components over the trailing window.
// Series shorter than minObservations yield all-zero components.
func (s *Scorer) Features(prices, volumes []float64) types.SignalComponents {
	if len(prices) < minObservations || len(volumes) < minObservations {
		return types.SignalComponents{}
	}

	var comps types.SignalComponents

	ma := ta.SMA(prices, window)
	sd := ta.StdDev(prices, window)
	last := prices[len(prices)-1]
	if sd > 0 {
		comps.ZScore = (last - ma) / sd
	}

	if vol := ta.AnnualizedVol(ta.Returns(prices), window); !math.IsNaN(vol) {
		comps.Volatility = vol
	}

	avgVol := ta.SMA(volumes, window)
	lastVol := volumes[len(volumes)-1]
	if avgVol > 0 {
		comps.VolumeShock = lastVol / avgVol
	}

	return comps
}

// Score produces the composite signal for one entity. Contributions are
// additive with mutually exclusive tiers per metric, capped at 1.0, and the
// explanation lines accumulate in evaluation order.
func (s *Scorer) Score(entityID string, prices, volumes []float64, snippets []string) types.SignalScore {
	comps := s.Features(prices, volumes)

	score := 0.0
	explanations := []string{}

	switch {
	case comps.VolumeShock > 3.0:
		score += 0.3
		explanations = append(explanations, fmt.Sprintf("massive volume spike (%.1fx avg)", comps.VolumeShock))
	case comps.VolumeShock > 1.5:
		score += 0.1
		explanations = append(explanations, fmt.Sprintf("elevated volume (%.1fx avg)", comps.VolumeShock))
	}

	switch absZ := math.Abs(comps.ZScore); {
	case absZ > 3.0:
		score += 0.3
		explanations = append(explanations, fmt.Sprintf("extreme price move (Z=%.1f)", comps.ZScore))
	case absZ > 2.0:
		score += 0.15
		explanations = append(explanations, fmt.Sprintf("significant price move (Z=%.1f)", comps.ZScore))
	}

	if comps.Volatility > 0.5 {
		score += 0.1
		explanations = append(explanations, fmt.Sprintf("high volatility (%.0f%%)", comps.Volatility*100))
	}

	for _, snip := range snippets {
		if containsDealKeyword(snip) {
			score += 0.3
			explanations = append(explanations, "news contains deal keywords")
			break
		}
	}

	return types.SignalScore{
		EntityID:    entityID,
		TotalScore:  math.Min(1.0, score),
		Components:  comps,
		Explanation: explanations,
	}
}

func containsDealKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range dealKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
