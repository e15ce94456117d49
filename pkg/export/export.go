// Package export renders pipeline results into an Excel workbook: one
// sheet per entity type plus error sheets, the error sheets only when
// there is something to report.
package export

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/Kuugang/AES-events-scraper/pkg/pipeline"
	"github.com/Kuugang/AES-events-scraper/pkg/record"
)

var (
	eventHeader = []string{
		"event_id", "event_url", "name", "tournament_type", "host",
		"location", "address", "website", "email", "start_date", "end_date",
	}
	divisionHeader = []string{
		"description", "entry_fee", "event_division_assignment_id",
		"event_id", "maximum_teams",
	}
	errorHeader = []string{"where", "message", "item"}
)

// Writer renders one Result per workbook file.
type Writer struct {
	path   string
	logger zerolog.Logger
}

// NewWriter creates a writer targeting the given .xlsx path.
func NewWriter(path string) *Writer {
	return &Writer{
		path:   path,
		logger: log.With().Str("component", "aes-export").Logger(),
	}
}

// Write renders the result and saves the workbook. Rows are sorted
// before writing so repeated runs over the same data produce identical
// files even though the pipeline returns results in arrival order.
func (w *Writer) Write(res *pipeline.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "events", eventHeader, eventRows(res.Events)); err != nil {
		return err
	}
	if len(res.EventErrors) > 0 {
		if err := writeSheet(f, "event_errors", errorHeader, errorRows(res.EventErrors)); err != nil {
			return err
		}
	}
	if err := writeSheet(f, "divisions", divisionHeader, divisionRows(res.Divisions)); err != nil {
		return err
	}
	if len(res.DivisionErrors) > 0 {
		if err := writeSheet(f, "division_errors", errorHeader, errorRows(res.DivisionErrors)); err != nil {
			return err
		}
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: delete default sheet: %w", err)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("export: save %s: %w", w.path, err)
	}

	w.logger.Info().
		Str("path", w.path).
		Int("events", len(res.Events)).
		Int("event_errors", len(res.EventErrors)).
		Int("divisions", len(res.Divisions)).
		Int("division_errors", len(res.DivisionErrors)).
		Msg("Workbook written")

	return nil
}

func writeSheet(f *excelize.File, name string, header []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("export: sheet %s: %w", name, err)
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := setRow(f, name, 1, headerRow); err != nil {
		return err
	}

	for i, row := range rows {
		if err := setRow(f, name, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export: sheet %s row %d: %w", sheet, row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("export: sheet %s row %d: %w", sheet, row, err)
	}
	return nil
}

func eventRows(events []record.EventRecord) [][]any {
	sorted := make([]record.EventRecord, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartDate != sorted[j].StartDate {
			return sorted[i].StartDate < sorted[j].StartDate
		}
		return sorted[i].Name < sorted[j].Name
	})

	rows := make([][]any, 0, len(sorted))
	for _, e := range sorted {
		rows = append(rows, []any{
			e.EventID, e.EventURL, e.Name, e.TournamentType, e.Host,
			e.Location, e.Address, e.Website, e.Email, e.StartDate, e.EndDate,
		})
	}
	return rows
}

func divisionRows(divisions []record.DivisionRecord) [][]any {
	sorted := make([]record.DivisionRecord, len(divisions))
	copy(sorted, divisions)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].EventID != sorted[j].EventID {
			return sorted[i].EventID < sorted[j].EventID
		}
		return sorted[i].Description < sorted[j].Description
	})

	rows := make([][]any, 0, len(sorted))
	for _, d := range sorted {
		rows = append(rows, []any{
			d.Description, d.EntryFee, d.EventDivisionAssignmentID,
			d.EventID, d.MaximumTeams,
		})
	}
	return rows
}

func errorRows(errs []record.ErrorRecord) [][]any {
	sorted := make([]record.ErrorRecord, len(errs))
	copy(sorted, errs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Item != sorted[j].Item {
			return sorted[i].Item < sorted[j].Item
		}
		return sorted[i].Message < sorted[j].Message
	})

	rows := make([][]any, 0, len(sorted))
	for _, e := range sorted {
		rows = append(rows, []any{e.Where, e.Message, e.Item})
	}
	return rows
}
