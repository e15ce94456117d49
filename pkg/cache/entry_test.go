package cache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseToEntry(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("Content-Type", "application/json")
	rec.WriteHeader(http.StatusOK)
	rec.Write([]byte(`{"eventId": 7}`))
	resp := rec.Result()

	entry, err := ResponseToEntry(resp)
	if err != nil {
		t.Fatalf("ResponseToEntry failed: %v", err)
	}

	if string(entry.Data) != `{"eventId": 7}` {
		t.Errorf("Data = %s, want original body", entry.Data)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", entry.StatusCode, http.StatusOK)
	}
	if entry.CachedAt.IsZero() {
		t.Error("CachedAt should be set")
	}

	// Body must still be readable by the caller
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read restored body: %v", err)
	}
	if string(body) != `{"eventId": 7}` {
		t.Errorf("restored body = %s, want original", body)
	}
}

func TestResponseToEntry_NilResponse(t *testing.T) {
	if _, err := ResponseToEntry(nil); err == nil {
		t.Error("expected error for nil response")
	}
}

func TestEntryToResponse(t *testing.T) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	entry := &Entry{
		Data:       []byte(`{"value": []}`),
		StatusCode: 200,
		Headers:    headers,
	}

	resp := EntryToResponse(entry)
	if resp.StatusCode != entry.StatusCode {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, entry.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", resp.Header.Get("Content-Type"))
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "value") {
		t.Errorf("body = %s, want cached data", body)
	}
}
