package xlsxsink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/registry"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/report"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/scorer"
)

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	r := &report.Report{
		URLs: []registry.Document{{ID: 1, URL: "https://s.test/"}, {ID: 2, URL: "https://s.test/x"}},
		WordCounts: []index.DocumentCounts{{
			Document: registry.Document{ID: 1, URL: "https://s.test/"},
			Terms:    []index.TermCount{{Term: "dog", Count: 2}, {Term: "cat", Count: 1}},
		}},
		TopN:     15,
		TopTerms: []index.TermSummary{{Term: "dog", Total: 3, Documents: []registry.DocumentID{1, 2}}},
		Scores: []scorer.Row{
			{DocumentID: 1, URL: "https://s.test/", Term: "dog", TF: 0.25, IDF: 0.5, TFIDF: 0.125},
		},
		Ranking: []report.RankedDocument{{DocumentID: 1, URL: "https://s.test/", Score: 0.125}},
	}
	if err := New(path).Write(context.Background(), r); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	want := map[string]int{
		SheetURLs:         3,
		SheetWordCounts:   3,
		TopTermsSheet(15): 2,
		SheetScores:       2,
		SheetRanking:      2,
	}
	for sheet, n := range want {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			t.Errorf("sheet %q: %v", sheet, err)
			continue
		}
		if len(rows) != n {
			t.Errorf("sheet %q has %d rows, want %d", sheet, len(rows), n)
		}
	}

	ids, err := f.GetCellValue(TopTermsSheet(15), "B2")
	if err != nil || ids != "1, 2" {
		t.Errorf("document IDs cell = %q, %v", ids, err)
	}
	header, _ := f.GetCellValue(SheetScores, "C1")
	if header != "Query Concept" {
		t.Errorf("header = %q", header)
	}
	tfidf, _ := f.GetCellValue(SheetScores, "F2", excelize.Options{RawCellValue: true})
	if tfidf != "0.125" {
		t.Errorf("tf-idf = %q", tfidf)
	}
}
