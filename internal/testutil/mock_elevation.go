// Package testutil provides testing utilities for the gradient pipeline.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// ElevationFunc computes the elevation a mock server reports for a location.
type ElevationFunc func(lat, lon float64) float64

// MockElevationServer is a configurable mock of the remote elevation
// endpoint. The default handler parses the locations query parameter and
// answers one result per location, in order, using ElevationFn.
type MockElevationServer struct {
	server *httptest.Server

	mu            sync.RWMutex
	handler       http.HandlerFunc
	requestCount  int
	lastLocations []string

	// ElevationFn derives a deterministic elevation per location. Defaults
	// to lat*100 + lon so distinct inputs get distinct outputs.
	ElevationFn ElevationFunc
}

// NewMockElevationServer starts a mock elevation server. Callers must Close
// it.
func NewMockElevationServer() *MockElevationServer {
	mock := &MockElevationServer{
		ElevationFn: func(lat, lon float64) float64 {
			return lat*100 + lon
		},
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastLocations = append(mock.lastLocations, r.URL.Query().Get("locations"))
		handler := mock.handler
		mock.mu.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URLTemplate returns a request URL template pointing at the mock server,
// with {locations} and {key} placeholders.
func (m *MockElevationServer) URLTemplate() string {
	return m.server.URL + "/elevation/json?locations={locations}&key={key}"
}

// Close shuts down the mock server.
func (m *MockElevationServer) Close() {
	m.server.Close()
}

// SetHandler overrides the default handler, e.g. to return errors or
// truncated result lists.
func (m *MockElevationServer) SetHandler(handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// RequestCount returns the number of requests received.
func (m *MockElevationServer) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// Locations returns the locations query parameter of each request received,
// in order.
func (m *MockElevationServer) Locations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.lastLocations))
	copy(out, m.lastLocations)
	return out
}

// Reset clears request tracking and any custom handler.
func (m *MockElevationServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastLocations = nil
	m.handler = nil
}

// ParseLocations splits a pipe-delimited lat,lon list into coordinate pairs.
func ParseLocations(locations string) ([][2]float64, error) {
	if locations == "" {
		return nil, nil
	}
	parts := strings.Split(locations, "|")
	pairs := make([][2]float64, 0, len(parts))
	for _, part := range parts {
		latlon := strings.SplitN(part, ",", 2)
		if len(latlon) != 2 {
			return nil, fmt.Errorf("malformed location %q", part)
		}
		lat, err := strconv.ParseFloat(latlon[0], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed latitude %q: %w", latlon[0], err)
		}
		lon, err := strconv.ParseFloat(latlon[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed longitude %q: %w", latlon[1], err)
		}
		pairs = append(pairs, [2]float64{lat, lon})
	}
	return pairs, nil
}

// defaultHandler answers one elevation result per submitted location.
func (m *MockElevationServer) defaultHandler(w http.ResponseWriter, r *http.Request) {
	pairs, err := ParseLocations(r.URL.Query().Get("locations"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"status": "INVALID_REQUEST", "error": err.Error()})
		return
	}

	type result struct {
		Elevation float64 `json:"elevation"`
		Location  struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		Resolution float64 `json:"resolution"`
	}

	results := make([]result, 0, len(pairs))
	for _, pair := range pairs {
		res := result{Elevation: m.ElevationFn(pair[0], pair[1]), Resolution: 9.5}
		res.Location.Lat = pair[0]
		res.Location.Lng = pair[1]
		results = append(results, res)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"results": results,
		"status":  "OK",
	})
}

// TruncatedHandler returns a handler that drops the last n results from the
// default response, for cardinality mismatch tests.
func (m *MockElevationServer) TruncatedHandler(n int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pairs, err := ParseLocations(r.URL.Query().Get("locations"))
		if err != nil || len(pairs) < n {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		type result struct {
			Elevation float64 `json:"elevation"`
		}
		results := make([]result, 0, len(pairs)-n)
		for _, pair := range pairs[:len(pairs)-n] {
			results = append(results, result{Elevation: m.ElevationFn(pair[0], pair[1])})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"results": results,
			"status":  "OK",
		})
	}
}

// ServerErrorHandler returns a handler that always responds 500.
func ServerErrorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "UNKNOWN_ERROR"})
	}
}

// OverQuotaHandler returns a handler that responds 200 with a non-OK body
// status, as the elevation API does when the key is over quota.
func OverQuotaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"results": []any{},
			"status":  "OVER_QUERY_LIMIT",
		})
	}
}
