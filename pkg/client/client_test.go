package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// testConfig returns a config pointed at a test server with fast retries.
func testConfig(serverURL string) Config {
	cfg := DefaultConfig("TestApp/1.0.0 (test@example.com)")
	cfg.BaseURL = serverURL
	cfg.Retry = RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    5 * time.Millisecond,
		MaxBackoff:        20 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
	return cfg
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			config: DefaultConfig("TestApp/1.0.0 (test@example.com)"),
		},
		{
			name:        "empty user agent",
			config:      Config{},
			expectError: true,
			errorMsg:    "user-agent is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if client == nil {
				t.Error("Client is nil")
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(Config{UserAgent: "TestApp/1.0.0"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if client.config.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", client.config.BaseURL, DefaultBaseURL)
	}
	if client.config.PoolSize != 500 {
		t.Errorf("PoolSize = %d, want 500", client.config.PoolSize)
	}
	if client.config.Retry.MaxAttempts != 5 {
		t.Errorf("Retry.MaxAttempts = %d, want 5", client.config.Retry.MaxAttempts)
	}
}

func TestGet_HeadersSet(t *testing.T) {
	var userAgent, accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp, err := client.Get(context.Background(), "/api/landing/events/1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()

	if userAgent != "TestApp/1.0.0 (test@example.com)" {
		t.Errorf("User-Agent = %q, want configured value", userAgent)
	}
	if !strings.Contains(accept, "application/json") {
		t.Errorf("Accept = %q, want to contain application/json", accept)
	}
}

func TestGet_RetryOnServerError(t *testing.T) {
	attemptCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attemptCount++
		if attemptCount < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp, err := client.Get(context.Background(), "/test")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 after retry, got %d", resp.StatusCode)
	}
	if attemptCount != 3 {
		t.Errorf("Expected 3 attempts (2 retries), got %d", attemptCount)
	}
}

func TestGet_NoRetryOnClientError(t *testing.T) {
	attemptCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attemptCount++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp, err := client.Get(context.Background(), "/missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
	if attemptCount != 1 {
		t.Errorf("Expected 1 attempt (no retry for 4xx), got %d", attemptCount)
	}
}

func TestGet_RetryOnRateLimit(t *testing.T) {
	attemptCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attemptCount++
		if attemptCount == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp, err := client.Get(context.Background(), "/busy")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 after retry, got %d", resp.StatusCode)
	}
	if attemptCount != 2 {
		t.Errorf("Expected 2 attempts (1 retry), got %d", attemptCount)
	}
}

func TestGet_StatusRetriesExhausted_ReturnsFinalResponse(t *testing.T) {
	attemptCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attemptCount++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": "down"}`))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp, err := client.Get(context.Background(), "/down")

	// Exhausted status-retries surface the last response, not an error;
	// the caller inspects the status.
	if err != nil {
		t.Fatalf("Get should not error on exhausted status retries: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected final 503 response, got %d", resp.StatusCode)
	}
	if attemptCount != 5 {
		t.Errorf("Expected 5 attempts, got %d", attemptCount)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read final body: %v", err)
	}
	if !strings.Contains(string(body), "down") {
		t.Errorf("final body = %q, want the server's error payload", body)
	}
}

func TestGet_TransportRetriesExhausted_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // every attempt now fails to connect

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = client.Get(context.Background(), "/unreachable")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got %v", err)
	}
}

func TestGet_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retry.InitialBackoff = 5 * time.Second

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Get(ctx, "/slow")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("Expected ErrContextCancelled, got %v", err)
	}
}
