// Package xlsxsink saves a report as an Excel workbook with one sheet per
// table. Score columns carry ten decimal places.
package xlsxsink

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/report"
)

const (
	SheetURLs       = "URL Mappings"
	SheetWordCounts = "Page Word Counts"
	SheetScores     = "Query TF-IDF"
	SheetRanking    = "Ranking"

	scoreFormat = "0.0000000000"
)

// TopTermsSheet returns the sheet name for the top-n term table.
func TopTermsSheet(n int) string {
	return fmt.Sprintf("Top %d Inverted Index", n)
}

// Sink writes to a fixed path, replacing any existing file.
type Sink struct {
	path string
}

// New returns a Sink writing to path.
func New(path string) *Sink {
	return &Sink{path: path}
}

// Name implements report.Sink.
func (s *Sink) Name() string { return "xlsx" }

// Write implements report.Sink.
func (s *Sink) Write(ctx context.Context, r *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetURLs); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	rows := [][]any{{"URL ID", "URL"}}
	for _, d := range r.URLs {
		rows = append(rows, []any{int(d.ID), d.URL})
	}
	if err := writeSheet(f, SheetURLs, rows); err != nil {
		return err
	}

	rows = [][]any{{"URL ID", "Word", "Count"}}
	for _, dc := range r.WordCounts {
		for _, tc := range dc.Terms {
			rows = append(rows, []any{int(dc.Document.ID), tc.Term, tc.Count})
		}
	}
	if err := writeSheet(f, SheetWordCounts, rows); err != nil {
		return err
	}

	rows = [][]any{{"Word", "Document IDs"}}
	for _, ts := range r.TopTerms {
		rows = append(rows, []any{ts.Term, report.JoinIDs(ts.Documents)})
	}
	if err := writeSheet(f, TopTermsSheet(r.TopN), rows); err != nil {
		return err
	}

	rows = [][]any{{"Document ID", "URL", "Query Concept", "TF", "IDF", "TF-IDF"}}
	for _, row := range r.Scores {
		rows = append(rows, []any{int(row.DocumentID), row.URL, row.Term, row.TF, row.IDF, row.TFIDF})
	}
	if err := writeSheet(f, SheetScores, rows); err != nil {
		return err
	}
	if err := formatScores(f, SheetScores, "D", "F", len(rows)); err != nil {
		return err
	}

	rows = [][]any{{"Document ID", "URL", "Score"}}
	for _, rd := range r.Ranking {
		rows = append(rows, []any{int(rd.DocumentID), rd.URL, rd.Score})
	}
	if err := writeSheet(f, SheetRanking, rows); err != nil {
		return err
	}
	if err := formatScores(f, SheetRanking, "C", "C", len(rows)); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("saving %s: %w", s.path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %q: %w", sheet, err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %q row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func formatScores(f *excelize.File, sheet, fromCol, toCol string, nrows int) error {
	if nrows < 2 {
		return nil
	}
	numFmt := scoreFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("creating score style: %w", err)
	}
	return f.SetCellStyle(sheet, fromCol+"2", fmt.Sprintf("%s%d", toCol, nrows), style)
}
