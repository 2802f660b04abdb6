package ingest

import (
	"fmt"

	"deal-radar/internal/types"
)

// offlineBatch fabricates a small deterministic batch so a run without
// network access still exercises the full pipeline.
func offlineBatch(entities []string) ([]NewsItem, map[string]Snapshot, map[string]types.MarketHistory) {
	if len(entities) == 0 {
		entities = []string{"AAPL", "MSFT"}
	}

	news := []NewsItem{
		{
			Entity:    entities[0],
			Title:     fmt.Sprintf("%s enters definitive agreement to acquire XYZ", entities[0]),
			Publisher: "offline",
			Source:    types.SourceYahooNews,
		},
	}
	if len(entities) > 1 {
		news = append(news, NewsItem{
			Entity:    entities[1],
			Title:     fmt.Sprintf("%s announces strategic transaction with ABC", entities[1]),
			Publisher: "offline",
			Source:    types.SourceYahooNews,
		})
	}

	snapshots := make(map[string]Snapshot, len(entities))
	history := make(map[string]types.MarketHistory, len(entities))
	for _, entity := range entities {
		snapshots[entity] = Snapshot{Last: 100.0, Chg5d: 0.02}
		closes := make([]float64, 30)
		volumes := make([]float64, 30)
		for i := range closes {
			closes[i] = 100.0
			volumes[i] = 1_000_000
		}
		history[entity] = types.MarketHistory{Close: closes, Volume: volumes}
	}

	return news, snapshots, history
}
