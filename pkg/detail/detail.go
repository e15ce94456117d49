// Package detail fetches per-event payloads and division lists for one
// catalog item and normalizes them into flat records.
package detail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Kuugang/AES-events-scraper/pkg/catalog"
	"github.com/Kuugang/AES-events-scraper/pkg/client"
	"github.com/Kuugang/AES-events-scraper/pkg/record"
)

// Fetcher retrieves detail payloads for single catalog items. Each
// pipeline worker owns its own Fetcher (and thus its own client).
type Fetcher struct {
	client *client.Client
	logger zerolog.Logger
}

// NewFetcher creates a detail fetcher on top of a client.
func NewFetcher(c *client.Client) *Fetcher {
	return &Fetcher{
		client: c,
		logger: log.With().Str("component", "aes-detail").Logger(),
	}
}

// FetchEvent retrieves and normalizes the detail payload for one item.
// Items are looked up by event id; items without one fall back to the
// scheduler id. An item carrying neither cannot be fetched.
func (f *Fetcher) FetchEvent(ctx context.Context, item catalog.Item) (record.EventRecord, error) {
	var path string
	switch {
	case item.EventID != "":
		path = "/api/landing/events/" + item.EventID
	case item.SchedulerID != "":
		path = "/api/landing/events/scheduler/" + item.SchedulerID
	default:
		return record.EventRecord{}, fmt.Errorf("catalog item has neither event id nor scheduler id")
	}

	raw, err := f.getJSON(ctx, path)
	if err != nil {
		return record.EventRecord{}, err
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return record.EventRecord{}, fmt.Errorf("event detail %s: payload is not an object", path)
	}

	return record.NormalizeEvent(obj), nil
}

// FetchDivisions retrieves and normalizes the division list for one item.
// Division lookup only works by event id; scheduler-only items have no
// divisions and yield an empty list without touching the network. The
// response may be a bare array or an object wrapping it under "value";
// a null payload yields an empty list.
func (f *Fetcher) FetchDivisions(ctx context.Context, item catalog.Item) ([]record.DivisionRecord, error) {
	if item.EventID == "" {
		return []record.DivisionRecord{}, nil
	}

	path := "/api/landing/events/" + item.EventID + "/divisions"

	raw, err := f.getJSON(ctx, path)
	if err != nil {
		return nil, err
	}

	var elements []any
	switch p := raw.(type) {
	case nil:
		// null body, nothing to do
	case []any:
		elements = p
	case map[string]any:
		if wrapped, ok := p["value"].([]any); ok {
			elements = wrapped
		}
	default:
		return nil, fmt.Errorf("divisions %s: unexpected payload type %T", path, raw)
	}

	records := make([]record.DivisionRecord, 0, len(elements))
	for i, el := range elements {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("divisions %s: element %d is not an object", path, i)
		}
		records = append(records, record.NormalizeDivision(obj))
	}

	return records, nil
}

// getJSON performs one GET and decodes the body, preserving numeric
// literals as json.Number for the normalizer.
func (f *Fetcher) getJSON(ctx context.Context, path string) (any, error) {
	resp, err := f.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("detail %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, client.NewStatusError(resp, "detail fetch failed for "+path)
	}

	var raw any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("detail %s: decode: %w", path, err)
	}

	return raw, nil
}
