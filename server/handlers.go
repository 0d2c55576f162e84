package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paralelo-ve/paralelo/p2p"
	"github.com/paralelo-ve/paralelo/snapshot"
	"github.com/paralelo-ve/paralelo/storage/types"
)

const (
	defaultNewsLimit     = 50
	maxNewsLimit         = 200
	defaultAnalysisLimit = 10
	maxAnalysisLimit     = 50

	defaultP2PHistoryDays = 7
	maxP2PHistoryDays     = 90
)

var (
	errUnableToFetchHistory   = errors.New("unable to fetch history")
	errUnableToFetchNews      = errors.New("unable to fetch news")
	errUnableToFetchAnalysis  = errors.New("unable to fetch analysis")
	errUnableToFetchSnapshots = errors.New("unable to fetch snapshots")
	errUnableToFetchCoins     = errors.New("unable to fetch coins")

	errServiceUnavailable = errors.New("service unavailable")
	errRefreshUnavailable = errors.New("refresh unavailable, try again later")

	errInvalidAmount = errors.New("invalid amount")
	errInvalidDays   = errors.New("invalid days")
	errInvalidLimit  = errors.New("invalid limit")
	errInvalidType   = errors.New("invalid type")
)

// Rates serves the reconciled rate view
func (s *Server) Rates(w http.ResponseWriter, r *http.Request) {
	if s.services.Rates == nil {
		writeError(w, http.StatusServiceUnavailable, errServiceUnavailable)

		return
	}

	view := s.services.Rates.Aggregate(r.Context())

	writeJSON(w, http.StatusOK, view)
}

// History serves the day-keyed official rate history. An empty store
// falls back to the bundled seed dataset so charts never render blank
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	points, err := s.storage.HistoryPoints(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch history",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchHistory,
		)

		return
	}

	seeded := false

	if len(points) == 0 {
		points = seedHistory()
		seeded = true
	}

	writeJSON(w, http.StatusOK, &HistoryResponse{
		Results: points,
		Seeded:  seeded,
	})
}

// P2PRanges serves the fixed-size depth scan across marketplaces.
// The official USD rate converts the probe sizes; without it the scan
// still runs on the fallback rate and is flagged as degraded
func (s *Server) P2PRanges(w http.ResponseWriter, r *http.Request) {
	if s.services.Rates == nil || s.services.Depth == nil {
		writeError(w, http.StatusServiceUnavailable, errServiceUnavailable)

		return
	}

	view := s.services.Rates.Aggregate(r.Context())

	scan := s.services.Depth.RangeScan(
		r.Context(),
		p2p.DefaultProbes,
		view.OfficialUSD.Value,
	)

	writeJSON(w, http.StatusOK, scan)
}

// P2PCalculate serves a single ad-hoc depth probe
func (s *Server) P2PCalculate(w http.ResponseWriter, r *http.Request) {
	if s.services.Depth == nil {
		writeError(w, http.StatusServiceUnavailable, errServiceUnavailable)

		return
	}

	amount, err := parseAmount(r.URL.Query().Get("amount_ves"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	paymentMethod := strings.TrimSpace(r.URL.Query().Get("payment_method"))

	books := s.services.Depth.Calculate(r.Context(), amount, paymentMethod)

	writeJSON(w, http.StatusOK, &CalculateResponse{
		AmountVES:     amount,
		PaymentMethod: paymentMethod,
		Books:         books,
	})
}

// P2PHistory serves the sampled order-book rows for trend charts
func (s *Server) P2PHistory(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r.URL.Query().Get("days"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	since := time.Now().AddDate(0, 0, -days)

	snapshots, err := s.storage.P2PSnapshotsSince(r.Context(), since)
	if err != nil {
		s.logger.Debug(
			"unable to fetch snapshots",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchSnapshots,
		)

		return
	}

	writeJSON(w, http.StatusOK, &P2PHistoryResponse{
		Days:    days,
		Results: snapshots,
	})
}

// News serves the recent relevant coverage
func (s *Server) News(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultNewsLimit, maxNewsLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	since := time.Now().AddDate(0, 0, -defaultP2PHistoryDays)

	items, err := s.storage.NewsSince(r.Context(), since, limit)
	if err != nil {
		s.logger.Debug(
			"unable to fetch news",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchNews,
		)

		return
	}

	writeJSON(w, http.StatusOK, &NewsResponse{
		Results: items,
	})
}

// NewsRefresh fires the news sync job out of band
func (s *Server) NewsRefresh(w http.ResponseWriter, r *http.Request) {
	s.triggerJob(w, r, snapshot.JobNameNewsSync)
}

// AnalysisRefresh fires the daily narrative job out of band
func (s *Server) AnalysisRefresh(w http.ResponseWriter, r *http.Request) {
	s.triggerJob(w, r, snapshot.JobNameDailyBrief)
}

// triggerJob fires the named background job and returns immediately.
// An in-flight run rejects the trigger
func (s *Server) triggerJob(w http.ResponseWriter, r *http.Request, name string) {
	if s.services.Jobs == nil {
		writeError(w, http.StatusServiceUnavailable, errServiceUnavailable)

		return
	}

	if err := s.services.Jobs.Trigger(r.Context(), name); err != nil {
		s.logger.Debug(
			"unable to trigger job",
			"name", name,
			"err", err,
		)

		writeError(w, http.StatusConflict, errRefreshUnavailable)

		return
	}

	writeJSON(w, http.StatusAccepted, &RefreshResponse{
		Triggered: name,
	})
}

// Analysis serves the stored narrative reports
func (s *Server) Analysis(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultAnalysisLimit, maxAnalysisLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	reportType, err := parseReportType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	reports, err := s.storage.MarketReports(r.Context(), reportType, limit)
	if err != nil {
		s.logger.Debug(
			"unable to fetch analysis",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchAnalysis,
		)

		return
	}

	writeJSON(w, http.StatusOK, &AnalysisResponse{
		Results: reports,
	})
}

// CryptoTop serves the global top spot listings
func (s *Server) CryptoTop(w http.ResponseWriter, r *http.Request) {
	if s.services.Coins == nil {
		writeError(w, http.StatusServiceUnavailable, errServiceUnavailable)

		return
	}

	coins, err := s.services.Coins.TopCoins(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch coins",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchCoins,
		)

		return
	}

	writeJSON(w, http.StatusOK, &CoinsResponse{
		Results: coins,
	})
}

func parseAmount(raw string) (float64, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, errInvalidAmount
	}

	amount, err := strconv.ParseFloat(v, 64)
	if err != nil || amount <= 0 {
		return 0, errInvalidAmount
	}

	return amount, nil
}

func parseDays(raw string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return defaultP2PHistoryDays, nil
	}

	days, err := strconv.Atoi(v)
	if err != nil || days <= 0 {
		return 0, errInvalidDays
	}

	if days > maxP2PHistoryDays {
		days = maxP2PHistoryDays
	}

	return days, nil
}

func parseLimit(raw string, fallback, ceiling int) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fallback, nil
	}

	limit, err := strconv.Atoi(v)
	if err != nil || limit <= 0 {
		return 0, errInvalidLimit
	}

	if limit > ceiling {
		limit = ceiling
	}

	return limit, nil
}

func parseReportType(raw string) (*types.ReportType, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}

	rt := types.ReportType(strings.ToLower(v))

	switch rt {
	case types.ReportTypeDailyBrief, types.ReportTypeLocalAnalysis:
		return &rt, nil
	default:
		return nil, errInvalidType
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
