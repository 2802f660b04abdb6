package signal

import (
	"strings"
	"testing"
)

func flatSeries(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestFeaturesPriceJump(t *testing.T) {
	scorer := NewScorer()

	prices := append(flatSeries(100.0, 29), 110.0)
	volumes := append(flatSeries(1000, 29), 5000)

	comps := scorer.Features(prices, volumes)

	if comps.ZScore <= 2.0 {
		t.Errorf("Expected z-score > 2.0, got %f", comps.ZScore)
	}
	if comps.VolumeShock <= 3.0 {
		t.Errorf("Expected volume shock > 3.0, got %f", comps.VolumeShock)
	}
}

func TestScoreShockSeries(t *testing.T) {
	scorer := NewScorer()

	prices := append(flatSeries(100.0, 29), 110.0)
	volumes := append(flatSeries(1000, 29), 5000)

	score := scorer.Score("TEST", prices, volumes, []string{"Some random news"})

	if score.TotalScore <= 0.5 {
		t.Errorf("Expected total score > 0.5, got %f", score.TotalScore)
	}

	found := false
	for _, e := range score.Explanation {
		if strings.Contains(strings.ToLower(e), "volume spike") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a volume spike explanation, got %v", score.Explanation)
	}
}

func TestScoreKeywordBoost(t *testing.T) {
	scorer := NewScorer()

	prices := flatSeries(100.0, 30)
	volumes := flatSeries(1000, 30)
	news := []string{"Rumors of acquisition by BigCorp"}

	score := scorer.Score("TEST", prices, volumes, news)

	if score.TotalScore < 0.3 {
		t.Errorf("Expected score >= 0.3 from news keywords, got %f", score.TotalScore)
	}

	found := false
	for _, e := range score.Explanation {
		if strings.Contains(strings.ToLower(e), "deal keywords") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a deal keyword explanation, got %v", score.Explanation)
	}
}

func TestScoreKeywordFiresOnce(t *testing.T) {
	scorer := NewScorer()

	prices := flatSeries(100.0, 30)
	volumes := flatSeries(1000, 30)
	news := []string{
		"Rumors of acquisition by BigCorp",
		"Merger talks heat up",
		"Buyout proposal on the table",
	}

	score := scorer.Score("TEST", prices, volumes, news)

	if score.TotalScore != 0.3 {
		t.Errorf("Expected keyword boost to fire once (0.3), got %f", score.TotalScore)
	}
}

func TestScoreInsufficientHistory(t *testing.T) {
	scorer := NewScorer()

	prices := flatSeries(100.0, 10)
	volumes := flatSeries(1000, 10)

	score := scorer.Score("TEST", prices, volumes, nil)

	if score.Components.ZScore != 0 || score.Components.Volatility != 0 || score.Components.VolumeShock != 0 {
		t.Errorf("Expected zero components for short history, got %+v", score.Components)
	}
}

func TestScoreInsufficientHistoryStillEvaluatesText(t *testing.T) {
	scorer := NewScorer()

	score := scorer.Score("TEST", flatSeries(100.0, 5), flatSeries(1000, 5),
		[]string{"Takeover rumor swirls"})

	if score.TotalScore != 0.3 {
		t.Errorf("Expected textual component 0.3 on short history, got %f", score.TotalScore)
	}
}

func TestScoreBounds(t *testing.T) {
	scorer := NewScorer()

	// A series designed to trip every contribution at once.
	prices := append(flatSeries(100.0, 29), 200.0)
	volumes := append(flatSeries(1000, 29), 50000)
	news := []string{"Definitive agreement announced in megamerger"}

	score := scorer.Score("TEST", prices, volumes, news)

	if score.TotalScore < 0 || score.TotalScore > 1.0 {
		t.Errorf("Score out of bounds: %f", score.TotalScore)
	}
}

func TestFeaturesZeroStd(t *testing.T) {
	scorer := NewScorer()

	comps := scorer.Features(flatSeries(100.0, 40), flatSeries(0, 40))

	if comps.ZScore != 0 {
		t.Errorf("Expected z-score 0 when std is 0, got %f", comps.ZScore)
	}
	if comps.VolumeShock != 0 {
		t.Errorf("Expected volume shock 0 when average volume is 0, got %f", comps.VolumeShock)
	}
}
