package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Kuugang/AES-events-scraper/pkg/pipeline"
	"github.com/Kuugang/AES-events-scraper/pkg/record"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Events: []record.EventRecord{
			{EventID: "2", Name: "Beta Open", StartDate: "04/01/2024"},
			{EventID: "1", Name: "Alpha Classic", StartDate: "03/01/2024"},
		},
		Divisions: []record.DivisionRecord{
			{Description: "18 Open", EntryFee: "450", EventID: "1"},
			{Description: "16 Club", EntryFee: "0", EventID: "1"},
		},
	}
}

func openSaved(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWrite_Sheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	if err := NewWriter(path).Write(sampleResult()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f := openSaved(t, path)

	sheets := f.GetSheetList()
	want := map[string]bool{"events": true, "divisions": true}
	for _, s := range sheets {
		if !want[s] {
			t.Errorf("Unexpected sheet %q", s)
		}
		delete(want, s)
	}
	for s := range want {
		t.Errorf("Missing sheet %q", s)
	}
}

func TestWrite_EventRowsSortedWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	if err := NewWriter(path).Write(sampleResult()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f := openSaved(t, path)

	rows, err := f.GetRows("events")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want header + 2 data rows", len(rows))
	}

	if rows[0][0] != "event_id" || rows[0][2] != "name" {
		t.Errorf("header = %v, want event_id ... name ...", rows[0])
	}
	// Sorted by start date then name: Alpha first.
	if rows[1][2] != "Alpha Classic" {
		t.Errorf("row 1 name = %q, want Alpha Classic", rows[1][2])
	}
	if rows[2][2] != "Beta Open" {
		t.Errorf("row 2 name = %q, want Beta Open", rows[2][2])
	}
}

func TestWrite_ErrorSheetsOnlyWhenNonEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	res := sampleResult()
	res.EventErrors = []record.ErrorRecord{
		{Where: "detail", Message: "boom", Item: `{"eventId": 3}`},
	}

	if err := NewWriter(path).Write(res); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f := openSaved(t, path)

	if idx, _ := f.GetSheetIndex("event_errors"); idx < 0 {
		t.Error("event_errors sheet missing despite errors")
	}
	if idx, _ := f.GetSheetIndex("division_errors"); idx >= 0 {
		t.Error("division_errors sheet present despite no errors")
	}

	rows, err := f.GetRows("event_errors")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want header + 1", len(rows))
	}
	if rows[1][0] != "detail" || rows[1][1] != "boom" {
		t.Errorf("error row = %v, want detail/boom/...", rows[1])
	}
}

func TestWrite_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	if err := NewWriter(path).Write(&pipeline.Result{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f := openSaved(t, path)

	rows, err := f.GetRows("events")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("len(rows) = %d, want header only", len(rows))
	}
}
