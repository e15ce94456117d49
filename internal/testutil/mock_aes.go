// Package testutil provides testing utilities for the AES export pipeline.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior of one mock endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAES is a configurable mock of the AES landing API. By default it
// serves the catalog listing built from the events registered with
// AddCatalogEvent, honoring the $top and $count query parameters the
// real endpoint accepts.
type MockAES struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	catalog  []map[string]any

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockAES creates a new mock AES server.
func NewMockAES() *MockAES {
	mock := &MockAES{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		if r.URL.Path == "/api/landing/events" {
			mock.listingHandler(w, r)
			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAES) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAES) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAES) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// AddCatalogEvent registers one raw listing entry served by the catalog
// endpoint.
func (m *MockAES) AddCatalogEvent(raw map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = append(m.catalog, raw)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAES) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockAES) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetEventDetail configures the detail endpoint for one event id.
func (m *MockAES) SetEventDetail(eventID string, resp MockResponse) {
	m.SetResponse("/api/landing/events/"+eventID, resp)
}

// SetSchedulerDetail configures the scheduler fallback endpoint.
func (m *MockAES) SetSchedulerDetail(schedulerID string, resp MockResponse) {
	m.SetResponse("/api/landing/events/scheduler/"+schedulerID, resp)
}

// SetDivisions configures the division-list endpoint for one event id.
func (m *MockAES) SetDivisions(eventID string, resp MockResponse) {
	m.SetResponse("/api/landing/events/"+eventID+"/divisions", resp)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAES) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// listingHandler serves the catalog listing with the OData envelope the
// real endpoint uses, honoring $top.
func (m *MockAES) listingHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	events := make([]map[string]any, len(m.catalog))
	copy(events, m.catalog)
	m.mu.RUnlock()

	top := len(events)
	if v := r.URL.Query().Get("$top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error": "invalid $top: %s"}`, v)
			return
		}
		if n < top {
			top = n
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]any{
		"@odata.count": len(events),
		"value":        events[:top],
	})
}

// NewJSONResponse creates a standard 200 OK JSON response.
func NewJSONResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
