// Package record defines the two tabular output schemas produced by the
// export pipeline and the normalization rules that map raw AES payloads
// onto them.
package record

// MaxErrorItemLen bounds the serialized source item carried in an
// ErrorRecord so one oversized payload cannot blow up the error sheet.
const MaxErrorItemLen = 500

// EventRecord is one row of the "events" sheet. Every field is a string;
// missing source data is always the empty string, never absent, so the
// tabular rendering stays uniformly typed per column.
type EventRecord struct {
	EventID        string
	EventURL       string
	Name           string
	TournamentType string
	Host           string
	Location       string
	Address        string
	Website        string
	Email          string
	StartDate      string
	EndDate        string
}

// DivisionRecord is one row of the "divisions" sheet. EventID is the
// foreign key back to the owning event.
type DivisionRecord struct {
	Description               string
	EntryFee                  string
	EventDivisionAssignmentID string
	EventID                   string
	MaximumTeams              string
}

// ErrorRecord is one row of an error sheet. Where identifies the pipeline
// phase that produced the failure (currently always "detail"), Message the
// diagnostic, and Item the serialized source item, truncated.
type ErrorRecord struct {
	Where   string
	Message string
	Item    string
}

// NewErrorRecord builds an ErrorRecord for a failed detail fetch.
// The serialized item is truncated to MaxErrorItemLen characters.
func NewErrorRecord(err error, item []byte) ErrorRecord {
	return ErrorRecord{
		Where:   "detail",
		Message: err.Error(),
		Item:    truncate(string(item), MaxErrorItemLen),
	}
}

// truncate limits s to n characters (runes, not bytes).
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
