package server

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/paralelo-ve/paralelo/storage/types"
)

// seedData is a bundled sample of past official rates, served only
// while the store has no scraped history of its own
//
//go:embed seed/history.json
var seedData []byte

var (
	seedOnce   sync.Once
	seedPoints []*types.HistoryPoint
)

func seedHistory() []*types.HistoryPoint {
	seedOnce.Do(func() {
		// The dataset ships with the binary; a decode failure here is
		// a build defect, not a runtime condition
		_ = json.Unmarshal(seedData, &seedPoints)
	})

	return seedPoints
}
