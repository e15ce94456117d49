// Package catalog fetches the AES event listing: first the total count
// for the selected past/upcoming filter, then the full listing in one
// page sized to that count.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Kuugang/AES-events-scraper/pkg/client"
)

// Item is one entry of the event listing. The raw payload is kept
// verbatim so downstream fetchers see every field the API sent.
type Item struct {
	// EventID is the event identifier as text, empty when absent or null.
	EventID string

	// SchedulerID is the fallback lookup key for listings that carry no
	// event identifier.
	SchedulerID string

	Raw map[string]any
}

// listing is the OData envelope around the event catalog.
type listing struct {
	Count *int64           `json:"@odata.count"`
	Value []map[string]any `json:"value"`
}

// Fetcher retrieves the event catalog.
type Fetcher struct {
	client     *client.Client
	pastEvents bool
	logger     zerolog.Logger
}

// NewFetcher creates a catalog fetcher for the given past/upcoming filter.
func NewFetcher(c *client.Client, pastEvents bool) *Fetcher {
	return &Fetcher{
		client:     c,
		pastEvents: pastEvents,
		logger:     log.With().Str("component", "aes-catalog").Logger(),
	}
}

// listingPath builds the listing query. $top controls the page size; the
// count query uses a zero-row page since only @odata.count is needed.
func (f *Fetcher) listingPath(top int) string {
	return fmt.Sprintf(
		"/api/landing/events?$count=true&$filter=isPastEvent+eq+%t&$format=json&$orderby=startDate,name&$top=%d",
		f.pastEvents, top)
}

// FetchCount returns the server-reported total of events matching the
// filter. There is no fallback: without the total the catalog cannot be
// paged, so any failure here is fatal to the run.
func (f *Fetcher) FetchCount(ctx context.Context) (int, error) {
	env, err := f.fetchListing(ctx, 0)
	if err != nil {
		return 0, err
	}
	if env.Count == nil {
		return 0, fmt.Errorf("catalog count: response lacks @odata.count")
	}

	f.logger.Info().
		Bool("past_events", f.pastEvents).
		Int64("count", *env.Count).
		Msg("Catalog count fetched")

	return int(*env.Count), nil
}

// FetchAll returns the full listing in one page of count rows, ordered
// by start date then name. Items are returned verbatim; normalization
// happens later, per item, in the detail phase.
func (f *Fetcher) FetchAll(ctx context.Context, count int) ([]Item, error) {
	env, err := f.fetchListing(ctx, count)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(env.Value))
	for _, raw := range env.Value {
		items = append(items, Item{
			EventID:     idText(raw["eventId"]),
			SchedulerID: idText(raw["eventSchedulerId"]),
			Raw:         raw,
		})
	}

	f.logger.Info().
		Bool("past_events", f.pastEvents).
		Int("items", len(items)).
		Msg("Catalog listing fetched")

	return items, nil
}

func (f *Fetcher) fetchListing(ctx context.Context, top int) (*listing, error) {
	path := f.listingPath(top)

	resp, err := f.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("catalog listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, client.NewStatusError(resp, "catalog listing failed")
	}

	var env listing
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("catalog listing: decode: %w", err)
	}

	return &env, nil
}

// idText renders an identifier field as text. Null and absent values
// become the empty string; numeric literals keep their exact form.
func idText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
