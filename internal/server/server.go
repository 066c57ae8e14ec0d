// Package server exposes the status/trigger HTTP surface: a health probe for
// the uptime monitor keeping the free-tier host awake, read-only state
// endpoints and an on-demand poll trigger.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"fuel-price-tracker/internal/model"
	"fuel-price-tracker/internal/schedule"
	"fuel-price-tracker/internal/service"
)

// Server wraps the HTTP listener.
type Server struct {
	poller *service.Poller
	loc    *time.Location
	logger zerolog.Logger
	http   *http.Server
}

// New builds the server with its routes registered.
func New(addr string, poller *service.Poller, loc *time.Location, logger zerolog.Logger) *Server {
	s := &Server{
		poller: poller,
		loc:    loc,
		logger: logger.With().Str("component", "server").Logger(),
	}

	r := mux.NewRouter()
	r.Use(s.requestLog)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/stations", s.handleStations).Methods(http.MethodGet)
	r.HandleFunc("/check-prices", s.handleCheck).Methods(http.MethodPost, http.MethodGet)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info().Str("addr", s.http.Addr).Msg("http server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(started)).
			Msg("request served")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type statsResponse struct {
	Stations      int        `json:"stationsCount"`
	TotalReadings int        `json:"totalRecords"`
	LastCheck     *time.Time `json:"lastCheck"`
	PeriodDays    int        `json:"period"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stations, err := s.poller.Stations()
	if err != nil {
		s.writeError(w, err)
		return
	}

	st := s.poller.History().Stats()
	resp := statsResponse{
		Stations:      len(stations),
		TotalReadings: st.TotalReadings,
	}
	if !st.Newest.IsZero() {
		resp.LastCheck = &st.Newest
		resp.PeriodDays = int(st.Newest.Sub(st.Oldest) / (24 * time.Hour))
	}
	s.writeJSON(w, resp)
}

type stationResponse struct {
	Name         string              `json:"name"`
	URL          string              `json:"url"`
	OpeningHours *model.OpeningHours `json:"openingHours,omitempty"`
	IsOpen       bool                `json:"isOpen"`
	LatestPrices *model.Prices       `json:"latestPrices"`
	LastUpdate   *time.Time          `json:"lastUpdate"`
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.poller.Stations()
	if err != nil {
		s.writeError(w, err)
		return
	}

	now := time.Now().In(s.loc)
	resp := make([]stationResponse, 0, len(stations))
	for _, station := range stations {
		entry := stationResponse{
			Name:         station.Name,
			URL:          station.URL,
			OpeningHours: station.OpeningHours,
			IsOpen:       schedule.IsOpen(station, now),
		}
		if latest, ok := s.poller.History().Latest(station.URL); ok {
			entry.LatestPrices = &latest.Prices
			entry.LastUpdate = &latest.Timestamp
		}
		resp = append(resp, entry)
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	result, err := s.poller.RunCycle(r.Context())
	if errors.Is(err, service.ErrCycleInProgress) {
		w.WriteHeader(http.StatusConflict)
		s.writeJSON(w, map[string]string{"status": "busy"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{
		"status":  "success",
		"polled":  result.Polled,
		"changed": result.Changed,
		"failed":  result.Failed,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("response encode failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
