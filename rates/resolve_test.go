package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 {
	return &v
}

func TestResolve(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name        string
		live        *float64
		historyTail *float64
		expected    ResolvedRate
	}{
		{
			name:        "live value present",
			live:        fptr(240.50),
			historyTail: fptr(238.90),
			expected: ResolvedRate{
				Value:      240.50,
				Confidence: ConfidenceLive,
			},
		},
		{
			name:        "live zero falls back to history",
			live:        fptr(0),
			historyTail: fptr(238.90),
			expected: ResolvedRate{
				Value:      238.90,
				Confidence: ConfidenceHistorical,
			},
		},
		{
			name:        "live missing falls back to history",
			live:        nil,
			historyTail: fptr(238.90),
			expected: ResolvedRate{
				Value:      238.90,
				Confidence: ConfidenceHistorical,
			},
		},
		{
			name:        "negative live is treated as absent",
			live:        fptr(-10),
			historyTail: fptr(238.90),
			expected: ResolvedRate{
				Value:      238.90,
				Confidence: ConfidenceHistorical,
			},
		},
		{
			name:        "nothing available",
			live:        nil,
			historyTail: nil,
			expected: ResolvedRate{
				Value:      0,
				Confidence: ConfidenceUnknown,
			},
		},
		{
			name:        "zero history is treated as absent",
			live:        fptr(0),
			historyTail: fptr(0),
			expected: ResolvedRate{
				Value:      0,
				Confidence: ConfidenceUnknown,
			},
		},
		{
			name:        "negative history is treated as absent",
			live:        nil,
			historyTail: fptr(-3),
			expected: ResolvedRate{
				Value:      0,
				Confidence: ConfidenceUnknown,
			},
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			resolved := Resolve(testCase.live, testCase.historyTail)

			assert.Equal(t, testCase.expected, resolved)
			assert.GreaterOrEqual(t, resolved.Value, 0.0)

			// live confidence appears iff the live value is positive
			isLive := testCase.live != nil && *testCase.live > 0
			assert.Equal(t, isLive, resolved.Confidence == ConfidenceLive)
		})
	}
}

func TestMetrics_SpreadPct(t *testing.T) {
	t.Parallel()

	t.Run("reference scenario", func(t *testing.T) {
		t.Parallel()

		// ((270.00 - 240.50) / 240.50) * 100 = 12.2661...
		spread := SpreadPct(240.50, 270.00)

		assert.InDelta(t, 12.27, spread, 0.005)
	})

	t.Run("zero official guards division", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, SpreadPct(0, 270.00))
	})

	t.Run("negative spread", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, -10, SpreadPct(100, 90), 0.0001)
	})
}

func TestMetrics_Averages(t *testing.T) {
	t.Parallel()

	t.Run("mix average", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 250.25, MixAverage(240.50, 260.00), 0.0001)
	})

	t.Run("market average", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 255.25, MarketAverage(270.00, 240.50), 0.0001)
	})

	t.Run("soft spread", func(t *testing.T) {
		t.Parallel()

		marketAvg := MarketAverage(270.00, 240.50)

		assert.InDelta(
			t,
			(marketAvg-240.50)/240.50*100,
			SoftSpreadPct(marketAvg, 240.50),
			0.0001,
		)
	})

	t.Run("soft spread zero guard", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, SoftSpreadPct(255.25, 0))
	})
}
