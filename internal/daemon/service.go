// Package daemon provides the long-running balance and forecast monitor.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/pipeline"
	"github.com/fincast/fincast/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir        string
	CategoryFilter string
	UseCache       bool
	Interval       time.Duration
	Addr           string
	EventsBuffer   int
	Options        pipeline.Options
	Logger         zerolog.Logger
}

// Snapshot is a compact balance state for status/event payloads.
type Snapshot struct {
	At           time.Time  `json:"at"`
	Transactions int        `json:"transactions"`
	LastDate     civil.Date `json:"last_date"`
	Balance      float64    `json:"balance"`
	RealIncome   float64    `json:"real_income"`
	RealExpense  float64    `json:"real_expense"`
	ForecastEnd  float64    `json:"forecast_end"`
	ForecastDays int        `json:"forecast_days"`
	Mode         string     `json:"mode"`
	Outcome      string     `json:"outcome"`
	Dropped      int        `json:"dropped_outliers"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Transactions int     `json:"transactions"`
	Balance      float64 `json:"balance"`
	ForecastEnd  float64 `json:"forecast_end"`
}

func (d Delta) isZero() bool {
	return d.Transactions == 0 &&
		d.Balance == 0 &&
		d.ForecastEnd == 0
}

// Event is emitted whenever the snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DataDir         string    `json:"data_dir"`
	CategoryFilter  string    `json:"category_filter,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// ForecastPoint is one day of the /v1/forecast payload.
type ForecastPoint struct {
	Date  civil.Date `json:"date"`
	Value float64    `json:"value"`
}

// ForecastResponse is served at /v1/forecast.
type ForecastResponse struct {
	Mode            string          `json:"mode"`
	Outcome         string          `json:"outcome"`
	Points          []ForecastPoint `json:"points"`
	Recommendations []string        `json:"recommendations"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	log  zerolog.Logger
	load func() ([]model.Transaction, error)

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	forecast    ForecastResponse
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	s := &Service{
		cfg:       cfg,
		log:       cfg.Logger.With().Str("component", "daemon").Logger(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.load = s.loadTransactions
	return s
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/forecast", s.handleForecast)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("daemon started")

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("daemon stopping")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce() {
	start := time.Now()
	txs, err := s.load()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("poll failed")
		return
	}

	txs = pipeline.FilterByCategory(txs, s.cfg.CategoryFilter)
	report := pipeline.Run(txs, s.cfg.Options)
	now := time.Now()
	snap := snapshotFromReport(report, s.cfg.Options, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.forecast = forecastResponse(report, s.cfg.Options)
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "balance_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
	s.log.Debug().
		Int("transactions", snap.Transactions).
		Str("outcome", snap.Outcome).
		Dur("took", time.Since(start)).
		Bool("changed", publish).
		Msg("poll")
}

func (s *Service) loadTransactions() ([]model.Transaction, error) {
	if s.cfg.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(s.cfg.DataDir, cache, nil)
			if loadErr == nil {
				return cr.Transactions, nil
			}
			s.log.Warn().Err(loadErr).Msg("cached load failed, falling back")
		}
	}

	result, err := pipeline.Load(s.cfg.DataDir, nil)
	if err != nil {
		return nil, err
	}
	return result.Transactions, nil
}

func snapshotFromReport(r pipeline.Report, opts pipeline.Options, at time.Time) Snapshot {
	return Snapshot{
		At:           at,
		Transactions: r.Totals.Transactions,
		LastDate:     r.Totals.LastDate,
		Balance:      r.ClosingBalance(),
		RealIncome:   r.Totals.RealIncome.InexactFloat64(),
		RealExpense:  r.Totals.RealExpense.InexactFloat64(),
		ForecastEnd:  r.ForecastEnd(),
		ForecastDays: len(r.Forecast.Points),
		Mode:         string(opts.Forecast.Mode),
		Outcome:      string(r.Forecast.Outcome),
		Dropped:      r.Dropped,
	}
}

func forecastResponse(r pipeline.Report, opts pipeline.Options) ForecastResponse {
	points := make([]ForecastPoint, len(r.Forecast.Points))
	for i, p := range r.Forecast.Points {
		points[i] = ForecastPoint{Date: p.Date, Value: p.Value}
	}
	return ForecastResponse{
		Mode:            string(opts.Forecast.Mode),
		Outcome:         string(r.Forecast.Outcome),
		Points:          points,
		Recommendations: r.Recommendations,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Transactions: curr.Transactions - prev.Transactions,
		Balance:      curr.Balance - prev.Balance,
		ForecastEnd:  curr.ForecastEnd - prev.ForecastEnd,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DataDir:         s.cfg.DataDir,
		CategoryFilter:  s.cfg.CategoryFilter,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
}

func (s *Service) handleForecast(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := s.forecast
	s.mu.RUnlock()

	if resp.Points == nil {
		resp.Points = []ForecastPoint{}
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
