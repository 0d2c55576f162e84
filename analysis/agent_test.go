package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paralelo-ve/paralelo/rates"
	"github.com/paralelo-ve/paralelo/storage/mock"
	"github.com/paralelo-ve/paralelo/storage/types"
)

type mockGenerator struct {
	name       string
	generateFn func(context.Context, string) (string, error)
}

func (m *mockGenerator) Name() string {
	return m.name
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}

	return "", nil
}

func TestChain_Generate(t *testing.T) {
	t.Parallel()

	t.Run("first success wins", func(t *testing.T) {
		t.Parallel()

		chain := NewChain([]Generator{
			&mockGenerator{
				name: "primary",
				generateFn: func(context.Context, string) (string, error) {
					return "from primary", nil
				},
			},
			&mockGenerator{
				name: "fallback",
				generateFn: func(context.Context, string) (string, error) {
					t.Fatal("fallback must not be called")

					return "", nil
				},
			},
		})

		text, err := chain.Generate(context.Background(), "prompt")
		require.NoError(t, err)

		assert.Equal(t, "from primary", text)
	})

	t.Run("falls through to the next backend", func(t *testing.T) {
		t.Parallel()

		chain := NewChain([]Generator{
			&mockGenerator{
				name: "primary",
				generateFn: func(context.Context, string) (string, error) {
					return "", errors.New("quota exceeded")
				},
			},
			&mockGenerator{
				name: "fallback",
				generateFn: func(context.Context, string) (string, error) {
					return "from fallback", nil
				},
			},
		})

		text, err := chain.Generate(context.Background(), "prompt")
		require.NoError(t, err)

		assert.Equal(t, "from fallback", text)
	})

	t.Run("all backends down", func(t *testing.T) {
		t.Parallel()

		chain := NewChain([]Generator{
			&mockGenerator{
				name: "primary",
				generateFn: func(context.Context, string) (string, error) {
					return "", errors.New("down")
				},
			},
		})

		_, err := chain.Generate(context.Background(), "prompt")
		assert.Error(t, err)
	})

	t.Run("empty chain", func(t *testing.T) {
		t.Parallel()

		chain := NewChain(nil)

		_, err := chain.Generate(context.Background(), "prompt")
		assert.ErrorIs(t, err, ErrNoGenerators)
	})
}

func TestAgent_DailyBrief(t *testing.T) {
	t.Parallel()

	view := &rates.View{
		OfficialUSD: rates.ResolvedRate{Value: 240.50, Confidence: rates.ConfidenceLive},
	}

	t.Run("generates and stores the brief", func(t *testing.T) {
		t.Parallel()

		var saved *types.MarketReport

		store := &mock.Storage{
			NewsSinceFn: func(context.Context, time.Time, int) ([]*types.NewsItem, error) {
				return []*types.NewsItem{
					{Title: "El BCV ajusta la tasa", Source: "Test"},
				}, nil
			},
			SaveMarketReportFn: func(_ context.Context, report *types.MarketReport) error {
				saved = report

				return nil
			},
		}

		generator := &mockGenerator{
			generateFn: func(_ context.Context, prompt string) (string, error) {
				assert.Contains(t, prompt, "240.50")
				assert.Contains(t, prompt, "El BCV ajusta la tasa")

				return "```json\n{\"content\": \"El mercado abrió estable.\", \"sentiment\": \"Neutral\"}\n```", nil
			},
		}

		agent := NewAgent(generator, store)

		report, err := agent.DailyBrief(context.Background(), view)
		require.NoError(t, err)

		require.NotNil(t, saved)
		assert.Equal(t, types.ReportTypeDailyBrief, saved.Type)
		assert.Equal(t, "El mercado abrió estable.", saved.Content)
		assert.Equal(t, "neutral", saved.Sentiment)
		assert.Equal(t, saved, report)
	})

	t.Run("generation failure writes nothing", func(t *testing.T) {
		t.Parallel()

		store := &mock.Storage{
			SaveMarketReportFn: func(context.Context, *types.MarketReport) error {
				t.Fatal("nothing must be written on generation failure")

				return nil
			},
		}

		generator := &mockGenerator{
			generateFn: func(context.Context, string) (string, error) {
				return "", errors.New("model down")
			},
		}

		agent := NewAgent(generator, store)

		_, err := agent.DailyBrief(context.Background(), view)
		assert.Error(t, err)
	})

	t.Run("nothing to analyze", func(t *testing.T) {
		t.Parallel()

		agent := NewAgent(&mockGenerator{}, &mock.Storage{})

		_, err := agent.DailyBrief(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNothingToAnalyze)
	})
}

func TestAgent_LocalTrends(t *testing.T) {
	t.Parallel()

	t.Run("summarizes snapshots into the prompt", func(t *testing.T) {
		t.Parallel()

		var saved *types.MarketReport

		store := &mock.Storage{
			P2PSnapshotsSinceFn: func(context.Context, time.Time) ([]*types.P2PSnapshot, error) {
				return []*types.P2PSnapshot{
					{Marketplace: types.MarketplaceBinance, Side: types.SideBUY, Price: 268},
					{Marketplace: types.MarketplaceBinance, Side: types.SideBUY, Price: 272},
				}, nil
			},
			SaveMarketReportFn: func(_ context.Context, report *types.MarketReport) error {
				saved = report

				return nil
			},
		}

		generator := &mockGenerator{
			generateFn: func(_ context.Context, prompt string) (string, error) {
				assert.Contains(t, prompt, "binance BUY")
				assert.Contains(t, prompt, "promedio 270.00")

				return `{"content": "Precios al alza.", "sentiment": "positive"}`, nil
			},
		}

		agent := NewAgent(generator, store)

		report, err := agent.LocalTrends(context.Background())
		require.NoError(t, err)

		require.NotNil(t, saved)
		assert.Equal(t, types.ReportTypeLocalAnalysis, report.Type)
		assert.Equal(t, "positive", report.Sentiment)
	})

	t.Run("no snapshots means no report", func(t *testing.T) {
		t.Parallel()

		agent := NewAgent(&mockGenerator{}, &mock.Storage{})

		_, err := agent.LocalTrends(context.Background())
		assert.ErrorIs(t, err, ErrNothingToAnalyze)
	})
}

func TestParseReportPayload(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name      string
		input     string
		content   string
		sentiment string
		wantErr   bool
	}{
		{
			name:      "plain json",
			input:     `{"content": "ok", "sentiment": "positive"}`,
			content:   "ok",
			sentiment: "positive",
		},
		{
			name:      "fenced json",
			input:     "```json\n{\"content\": \"ok\", \"sentiment\": \"mixed\"}\n```",
			content:   "ok",
			sentiment: "mixed",
		},
		{
			name:      "unknown sentiment falls back to neutral",
			input:     `{"content": "ok", "sentiment": "bullish"}`,
			content:   "ok",
			sentiment: "neutral",
		},
		{
			name:    "empty content",
			input:   `{"sentiment": "positive"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   "the market went up",
			wantErr: true,
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			payload, err := parseReportPayload(testCase.input)

			if testCase.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.content, payload.Content)
			assert.Equal(t, testCase.sentiment, payload.Sentiment)
		})
	}
}
