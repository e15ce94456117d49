package record

import (
	"encoding/json"
	"strings"
	"time"
)

// eventURLBase is the public event page prefix derived from the event id.
const eventURLBase = "https://www.advancedeventsystems.com/events/"

// NormalizeEvent maps one raw event detail payload onto an EventRecord.
// It is total: any missing, null, or oddly-typed field resolves to the
// empty string. Malformed data here is a data-quality issue, not an
// operational failure, so nothing in this function can error.
func NormalizeEvent(raw map[string]any) EventRecord {
	var rec EventRecord

	rec.EventID = text(raw["eventId"])
	if rec.EventID != "" {
		rec.EventURL = eventURLBase + rec.EventID
	}
	rec.Name = text(raw["name"])

	aff := text(object(raw["affiliation"])["description"])
	et := text(object(raw["eventType"])["description"])
	rec.TournamentType = strings.TrimSpace(aff + " " + et)

	rec.Host = firstNonEmpty(text(raw["hostName"]), text(raw["bossOrganizationName"]))
	rec.Location = text(raw["locationName"])
	rec.Address = formatAddress(object(raw["address"]))
	rec.Website = text(raw["website"])
	rec.Email = text(raw["email"])

	rec.StartDate = formatDate(text(raw["startDate"]))
	rec.EndDate = formatDate(text(raw["endDate"]))

	return rec
}

// NormalizeDivision maps one raw division payload onto a DivisionRecord.
// Same discipline as NormalizeEvent, with one special case: an absent
// entry fee defaults to "0" rather than "".
func NormalizeDivision(raw map[string]any) DivisionRecord {
	return DivisionRecord{
		Description:               text(raw["description"]),
		EntryFee:                  firstNonEmpty(text(raw["entryFee"]), "0"),
		EventDivisionAssignmentID: text(raw["eventDivisionAssignmentId"]),
		EventID:                   text(raw["eventId"]),
		MaximumTeams:              text(raw["maximumTeams"]),
	}
}

// formatAddress derives the multi-line address: street line, then
// "city, state zip". Trailing ", " left over by missing parts is trimmed.
func formatAddress(addr map[string]any) string {
	line1 := text(addr["line1"])
	city := text(addr["city"])
	state := text(object(addr["state"])["abbreviation"])
	zip := text(addr["zip"])

	s := line1 + "\n" + city + ", " + state + " " + zip
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, ", ")
}

// formatDate reformats an ISO-8601-like timestamp to MM/DD/YYYY.
// Anything unparseable yields the empty string.
func formatDate(iso string) string {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return ""
	}

	candidate := strings.TrimSuffix(iso, "Z")
	for _, layout := range []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t.Format("01/02/2006")
		}
	}
	return ""
}

// text stringifies an arbitrary decoded JSON value. nil, empty strings,
// and numeric zero all resolve to "" so that callers can layer defaults
// with firstNonEmpty. Numbers keep their source literal when the payload
// was decoded with json.Decoder.UseNumber.
func text(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case json.Number:
		if f, err := typed.Float64(); err == nil && f == 0 {
			return ""
		}
		return typed.String()
	case float64:
		if typed == 0 {
			return ""
		}
		return floatText(typed)
	case bool:
		if !typed {
			return ""
		}
		return "true"
	default:
		return ""
	}
}

// floatText renders a float64 the way encoding/json would.
func floatText(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

// object returns v as a JSON object, or an empty map when v is null or
// any other shape. Lookups on the result are always safe.
func object(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
