package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/tradeshow-events/internal/calendar"
	"github.com/pfrederiksen/tradeshow-events/internal/event"
	"github.com/pfrederiksen/tradeshow-events/internal/logger"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatICS  = "ics"

	SheetName = "US Events with Contact Info"
)

// Sink persists the final ordered records of a run
type Sink interface {
	Write(records []*event.Record) error
	Path() string
}

// NewSink returns the sink for format. An empty format is inferred from the
// path extension and falls back to xlsx.
func NewSink(format, path string) (Sink, error) {
	if format == "" {
		format = FormatFromPath(path)
	}

	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case FormatXLSX:
		return &XLSXSink{path: path}, nil
	case FormatCSV:
		return &CSVSink{path: path}, nil
	case FormatJSON:
		return &JSONSink{path: path}, nil
	case FormatICS:
		return &ICSSink{path: path}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// FormatFromPath guesses the output format from a file extension
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".ics":
		return FormatICS
	default:
		return FormatXLSX
	}
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	return nil
}

// XLSXSink writes an Excel workbook with a bold header row
type XLSXSink struct {
	path string
}

func (s *XLSXSink) Path() string { return s.path }

func (s *XLSXSink) Write(records []*event.Record) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := event.Header
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		row := r.Row()
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// CSVSink writes comma separated values with the header first
type CSVSink struct {
	path string
}

func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) Write(records []*event.Record) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(event.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(r.Row()); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return f.Close()
}

// JSONSink writes the records as an indented JSON array
type JSONSink struct {
	path string
}

func (s *JSONSink) Path() string { return s.path }

func (s *JSONSink) Write(records []*event.Record) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}

	if records == nil {
		records = []*event.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return nil
}

// ICSSink writes an iCalendar feed with one all-day event per record
type ICSSink struct {
	path string
}

func (s *ICSSink) Path() string { return s.path }

func (s *ICSSink) Write(records []*event.Record) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}

	ics, skipped := calendar.GenerateICS(records, time.Now())
	if skipped > 0 {
		logger.Warn("Left events with unreadable dates out of the calendar", logger.Fields{"skipped": skipped}, nil)
	}

	if err := os.WriteFile(s.path, []byte(ics), 0644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}
