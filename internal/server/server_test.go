package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fuel-price-tracker/internal/extract"
	"fuel-price-tracker/internal/history"
	"fuel-price-tracker/internal/model"
	"fuel-price-tracker/internal/service"
)

const stationURL = "https://example.org/tankstelle/1"

type memStore struct {
	stations []model.Station
	pages    map[string]string
}

func (s *memStore) LoadStations() ([]model.Station, error) { return s.stations, nil }
func (s *memStore) LoadHistory() (map[string][]model.Reading, error) {
	return map[string][]model.Reading{}, nil
}
func (s *memStore) SaveHistory(map[string][]model.Reading) error { return nil }
func (s *memStore) LoadSubscribers() (map[int64]*model.Subscriber, error) {
	return map[int64]*model.Subscriber{}, nil
}
func (s *memStore) SaveSubscribers(map[int64]*model.Subscriber) error { return nil }

func (s *memStore) FetchPage(_ context.Context, url string) (string, error) {
	page, ok := s.pages[url]
	if !ok {
		return "", errors.New("no page")
	}
	return page, nil
}

func newTestServer(t *testing.T) (*Server, *history.Store) {
	t.Helper()
	store := &memStore{
		stations: []model.Station{{Name: "Aral", URL: stationURL}},
		pages: map[string]string{
			stationURL: `<html><body><h1>Aral</h1>
			<span id="current-price-1">1,75</span><sup id="suffix-price-1">9</sup>
			<span id="current-price-2">1,69</span><sup id="suffix-price-2">9</sup>
			<span id="current-price-3">1,74</span><sup id="suffix-price-3">9</sup>
			</body></html>`,
		},
	}
	hist := history.NewStore()
	poller := service.New(store, hist, store, extract.New(zerolog.Nop()), nil, time.UTC, zerolog.Nop())
	return New(":0", poller, time.UTC, zerolog.Nop()), hist
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, hist := newTestServer(t)

	now := time.Now().UTC()
	v := decimal.RequireFromString("1.759")
	hist.Append(stationURL, model.Reading{URL: stationURL, Prices: model.Prices{Diesel: &v}, Timestamp: now})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["stationsCount"].(float64) != 1 {
		t.Fatalf("stationsCount = %v", resp["stationsCount"])
	}
	if resp["totalRecords"].(float64) != 1 {
		t.Fatalf("totalRecords = %v", resp["totalRecords"])
	}
	if resp["lastCheck"] == nil {
		t.Fatal("lastCheck missing")
	}
}

func TestStationsEndpoint(t *testing.T) {
	srv, hist := newTestServer(t)

	v := decimal.RequireFromString("1.759")
	hist.Append(stationURL, model.Reading{URL: stationURL, Prices: model.Prices{Diesel: &v}, Timestamp: time.Now().UTC()})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stations", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("stations = %d", len(resp))
	}
	entry := resp[0]
	if entry["name"] != "Aral" {
		t.Fatalf("name = %v", entry["name"])
	}
	if entry["isOpen"] != true {
		t.Fatalf("isOpen = %v", entry["isOpen"])
	}
	prices := entry["latestPrices"].(map[string]any)
	if prices["diesel"] != "1.759" {
		t.Fatalf("diesel = %v", prices["diesel"])
	}
}

func TestCheckPricesEndpoint(t *testing.T) {
	srv, hist := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/check-prices", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "success" {
		t.Fatalf("status field = %v", resp["status"])
	}
	if resp["polled"].(float64) != 1 {
		t.Fatalf("polled = %v", resp["polled"])
	}

	if _, ok := hist.Latest(stationURL); !ok {
		t.Fatal("cycle did not record a reading")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/stats", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
