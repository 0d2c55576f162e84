package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v3"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/paralelo-ve/paralelo/p2p"
	"github.com/paralelo-ve/paralelo/rates"
	"github.com/paralelo-ve/paralelo/storage"
	"github.com/paralelo-ve/paralelo/storage/types"

	"github.com/paralelo-ve/paralelo/server/config"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// RateViewer composes the reconciled rate view on demand
type RateViewer interface {
	Aggregate(ctx context.Context) *rates.View
}

// DepthScanner samples marketplace depth
type DepthScanner interface {
	RangeScan(
		ctx context.Context,
		probes []types.ProbeRange,
		referenceRate float64,
	) *p2p.ScanResult

	Calculate(
		ctx context.Context,
		amountVES float64,
		paymentMethod string,
	) map[types.Marketplace]*types.OrderBook
}

// CoinLister fetches the global top spot listings
type CoinLister interface {
	TopCoins(ctx context.Context) ([]*types.Coin, error)
}

// JobTrigger fires a background job out of band
type JobTrigger interface {
	Trigger(ctx context.Context, name string) error
}

// Services bundles the domain dependencies of the HTTP surface.
// Nil entries disable their endpoints with 503 instead of panicking
type Services struct {
	Rates RateViewer
	Depth DepthScanner
	Coins CoinLister
	Jobs  JobTrigger
}

type Server struct {
	logger *slog.Logger
	config *config.Config

	storage  storage.Storage
	services Services

	mux *chi.Mux
}

// New creates a new server instance
func New(storage storage.Storage, services Services, opts ...Option) (*Server, error) {
	s := &Server{
		logger:   noopLogger,
		storage:  storage,
		services: services,
		config:   config.DefaultConfig(),
		mux:      chi.NewMux(),
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	// Validate the configuration
	if err := config.ValidateConfig(s.config); err != nil {
		return nil, fmt.Errorf("invalid configuration, %w", err)
	}

	// Set up the CORS middleware
	if s.config.CORSConfig != nil {
		corsMiddleware := cors.New(cors.Options{
			AllowedOrigins: s.config.CORSConfig.AllowedOrigins,
			AllowedMethods: s.config.CORSConfig.AllowedMethods,
			AllowedHeaders: s.config.CORSConfig.AllowedHeaders,
		})

		s.mux.Use(corsMiddleware.Handler)
	}

	s.mux.Use(httplog.RequestLogger(s.logger, &httplog.Options{
		Level:         slog.LevelInfo,
		Schema:        httplog.SchemaOTEL,
		RecoverPanics: true,
		Skip: func(_ *http.Request, respStatus int) bool {
			return respStatus == 404 || respStatus == 405
		},
	}))

	// Register the health check handler
	s.mux.Get("/health", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	s.mux.Route("/api", func(router chi.Router) {
		router.Get("/rates", s.Rates)
		router.Get("/history", s.History)

		router.Route("/p2p", func(router chi.Router) {
			router.Get("/ranges", s.P2PRanges)
			router.Get("/calculate", s.P2PCalculate)
			router.Get("/history", s.P2PHistory)
		})

		router.Get("/news", s.News)
		router.Post("/news/refresh", s.NewsRefresh)
		router.Get("/analysis", s.Analysis)
		router.Post("/analysis/refresh", s.AnalysisRefresh)
		router.Get("/crypto/top", s.CryptoTop)
	})

	return s, nil
}

// Serve serves the dashboard API
func (s *Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.mux,
		ReadHeaderTimeout: 60 * time.Second,
	}

	group, gCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer s.logger.Info("server shut down")

		ln, err := net.Listen("tcp", server.Addr)
		if err != nil {
			return err
		}

		s.logger.Info(
			fmt.Sprintf(
				"server started at %s",
				ln.Addr().String(),
			),
		)

		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-gCtx.Done()

		s.logger.Info("server to be shutdown")

		wsCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()

		return server.Shutdown(wsCtx)
	})

	return group.Wait()
}
