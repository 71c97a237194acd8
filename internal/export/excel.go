// Package export writes a scoring result to an Excel workbook.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jmwangi/parsehire/internal/models"
)

var borders = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// WriteReport generates an Excel report for one scoring result: a summary
// sheet, the ranked candidates, the per-candidate analysis and any failed
// files. The .xlsx extension is appended when missing.
func WriteReport(result *models.ScoringResult, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	summarySheet := "Summary"
	rankedSheet := "Ranked Candidates"
	analysisSheet := "Detailed Analysis"

	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(rankedSheet)
	f.NewSheet(analysisSheet)

	if err := writeSummarySheet(f, summarySheet, result); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeRankedSheet(f, rankedSheet, result.Scores); err != nil {
		return fmt.Errorf("ranked candidates sheet: %w", err)
	}
	if err := writeAnalysisSheet(f, analysisSheet, result.Scores); err != nil {
		return fmt.Errorf("detailed analysis sheet: %w", err)
	}
	if len(result.Failures) > 0 {
		failuresSheet := "Failed Files"
		f.NewSheet(failuresSheet)
		if err := writeFailuresSheet(f, failuresSheet, result.Failures); err != nil {
			return fmt.Errorf("failed files sheet: %w", err)
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		// Fall back to writing through a buffer; SaveAs is flaky on some
		// network filesystems.
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("save report: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return fmt.Errorf("save report: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}
	return nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    borders,
	})
}

// scoreStyle color-codes a row by its 0-10 score band.
func scoreStyle(f *excelize.File, score float64) (int, error) {
	color := "FF9999" // poor
	switch {
	case score >= 8:
		color = "C6EFCE"
	case score >= 6:
		color = "FFEB9C"
	case score >= 4:
		color = "FFC7CE"
	}
	return f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Border: borders,
	})
}

// writeSummarySheet writes the job details and batch statistics.
func writeSummarySheet(f *excelize.File, sheet string, result *models.ScoringResult) error {
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 60)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Resume Scoring Report")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), titleStyle)
	f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	put := func(label string, value any) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), label)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), value)
		row++
	}

	put("Job Title:", result.JobTitle)
	put("Recruiter Requirements:", result.Requirements)
	put("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	put("Candidates Scored:", len(result.Scores))
	put("Files Failed:", len(result.Failures))
	if result.Partial {
		put("Note:", "Some files could not be scored; see the Failed Files sheet.")
	}
	row++

	if len(result.Scores) > 0 {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Statistics:")
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), titleStyle)
		f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
		row++

		min, max, sum := result.Scores[0].ResumeScore, result.Scores[0].ResumeScore, 0.0
		for _, s := range result.Scores {
			if s.ResumeScore < min {
				min = s.ResumeScore
			}
			if s.ResumeScore > max {
				max = s.ResumeScore
			}
			sum += s.ResumeScore
		}
		put("Highest Score:", fmt.Sprintf("%.1f", max))
		put("Lowest Score:", fmt.Sprintf("%.1f", min))
		put("Average Score:", fmt.Sprintf("%.2f", sum/float64(len(result.Scores))))
	}
	return nil
}

// writeRankedSheet writes one color-coded row per candidate, best first.
func writeRankedSheet(f *excelize.File, sheet string, scores []models.CandidateScore) error {
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 28)
	f.SetColWidth(sheet, "C", "C", 12)
	f.SetColWidth(sheet, "D", "D", 28)
	f.SetColWidth(sheet, "E", "E", 60)

	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"Rank", "Candidate", "Score", "Closest Sample Profile", "Justification"}
	for col, h := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, header)
	}

	for i, s := range scores {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), s.Rank)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), s.CandidateName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), s.ResumeScore)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), s.ClosestSampleCandidate)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), s.ResumeScoreJustification)

		style, err := scoreStyle(f, s.ResumeScore)
		if err != nil {
			return err
		}
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), style)
	}

	if len(scores) > 0 {
		f.AutoFilter(sheet, fmt.Sprintf("A1:E%d", len(scores)+1), []excelize.AutoFilterOptions{})
	}
	return freezeHeader(f, sheet)
}

// writeAnalysisSheet writes the full per-candidate reasoning, one row per
// analysis category.
func writeAnalysisSheet(f *excelize.File, sheet string, scores []models.CandidateScore) error {
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 28)
	f.SetColWidth(sheet, "C", "C", 20)
	f.SetColWidth(sheet, "D", "D", 80)

	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    borders,
	})
	if err != nil {
		return err
	}

	headers := []string{"Rank", "Candidate", "Category", "Details"}
	for col, h := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, header)
	}

	row := 2
	for _, s := range scores {
		entries := []struct {
			category string
			text     string
		}{
			{"Summary", s.CandidateSummary},
			{"Gap Analysis", strings.Join(s.GapAnalysis, "\n")},
			{"Recommendations", s.Recommendations},
		}
		for _, e := range entries {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), s.Rank)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), s.CandidateName)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.category)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.text)
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), wrapStyle)
			f.SetRowHeight(sheet, row, 60)
			row++
		}
	}
	return freezeHeader(f, sheet)
}

// writeFailuresSheet lists the files that could not be scored.
func writeFailuresSheet(f *excelize.File, sheet string, failures []models.CandidateFailure) error {
	f.SetColWidth(sheet, "A", "A", 36)
	f.SetColWidth(sheet, "B", "B", 80)

	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	f.SetCellValue(sheet, "A1", "File")
	f.SetCellValue(sheet, "B1", "Reason")
	f.SetCellStyle(sheet, "A1", "B1", header)

	for i, fail := range failures {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fail.Filename)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), fail.Reason)
	}
	return freezeHeader(f, sheet)
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
