package serve

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/paralelo-ve/paralelo/analysis"
	"github.com/paralelo-ve/paralelo/cmd/env"
	"github.com/paralelo-ve/paralelo/p2p"
	"github.com/paralelo-ve/paralelo/provider/news"
	"github.com/paralelo-ve/paralelo/provider/spot"
	"github.com/paralelo-ve/paralelo/provider/ves"
	"github.com/paralelo-ve/paralelo/rates"
	"github.com/paralelo-ve/paralelo/server"
	"github.com/paralelo-ve/paralelo/snapshot"
	"github.com/paralelo-ve/paralelo/storage"
)

const (
	bcvURL = "https://www.bcv.org.ve/"

	upstreamTimeout = time.Second * 30
)

// services bundles the wired domain services of the backend
type services struct {
	server    server.Services
	scheduler *snapshot.Scheduler
}

// buildServices wires the upstream adapters, the aggregation layer and
// the background jobs on top of the given store
func buildServices(store storage.Storage, logger *slog.Logger) (*services, error) {
	var (
		// Official BCV rates
		bcv = ves.NewBCVProvider(bcvURL, upstreamTimeout)

		// USDT/VES marketplaces
		binance = ves.NewBinanceP2P(upstreamTimeout)
		bybit   = ves.NewBybitP2P(upstreamTimeout)
	)

	aggregator := rates.NewAggregator(
		bcv,
		[]rates.MarketSource{binance, bybit},
		store,
		rates.WithAggregatorLogger(logger),
	)

	marketplaces := []p2p.Marketplace{binance, bybit}

	ranger := p2p.NewRanger(
		marketplaces,
		p2p.WithRangerLogger(logger),
	)

	collector := news.NewCollector(
		news.DefaultFeeds,
		news.WithLogger(logger),
	)

	agent := analysis.NewAgent(
		buildGeneratorChain(logger),
		store,
		analysis.WithAgentLogger(logger),
	)

	scheduler := snapshot.New(snapshot.WithLogger(logger))

	jobs := []snapshot.Job{
		snapshot.NewRateSnapshotJob(aggregator, marketplaces, store),
		snapshot.NewNewsSyncJob(collector, store),
		snapshot.NewDailyBriefJob(agent, aggregator),
		snapshot.NewLocalTrendsJob(agent),
	}

	for _, job := range jobs {
		if err := scheduler.Register(job); err != nil {
			return nil, fmt.Errorf("unable to register job %s: %w", job.Name(), err)
		}
	}

	return &services{
		server: server.Services{
			Rates: aggregator,
			Depth: ranger,
			Coins: spot.NewCoinGeckoProvider(upstreamTimeout),
			Jobs:  scheduler,
		},
		scheduler: scheduler,
	}, nil
}

// buildGeneratorChain assembles the text model fallback chain from the
// configured API keys. Without any key the chain is empty and report
// generation degrades to a no-op error
func buildGeneratorChain(logger *slog.Logger) *analysis.Chain {
	var generators []analysis.Generator

	if key := os.Getenv(env.Prefix + env.GeminiKeySuffix); key != "" {
		generators = append(generators, analysis.NewGemini(key, upstreamTimeout))
	}

	if key := os.Getenv(env.Prefix + env.HuggingFaceKeySuffix); key != "" {
		generators = append(generators, analysis.NewHuggingFace(key, upstreamTimeout))
	}

	if len(generators) == 0 {
		logger.Warn("no text generator API keys configured, narrative reports disabled")
	}

	return analysis.NewChain(
		generators,
		analysis.WithChainLogger(logger),
	)
}
