package export

import (
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/learnerbot/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the progress workbook.
const (
	SheetProgress     = "Progress"
	SheetBadges       = "Badges"
	SheetConversation = "Conversation"
)

// Report is the data written to a workbook. History is optional; the
// conversation sheet is only added when it has turns.
type Report struct {
	Progress    domain.ProgressRecord
	History     []domain.Turn
	GeneratedAt time.Time
}

// Write renders r as an .xlsx workbook to w.
func Write(w io.Writer, r Report) error {
	f, err := build(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveFile renders r to path.
func SaveFile(path string, r Report) error {
	f, err := build(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

func build(r Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetProgress); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating style: %w", err)
	}

	steps := []func(*excelize.File, Report, int) error{writeSummary, writeBadges}
	if len(r.History) > 0 {
		steps = append(steps, writeConversation)
	}
	for _, step := range steps {
		if err := step(f, r, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSummary(f *excelize.File, r Report, bold int) error {
	p := r.Progress
	last := ""
	if p.LastActivityDate != nil {
		last = p.LastActivityDate.String()
	}
	generated := ""
	if !r.GeneratedAt.IsZero() {
		generated = r.GeneratedAt.UTC().Format(time.RFC3339)
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"XP", p.XP},
		{"Level", p.Level()},
		{"XP to next level", p.XPToNextLevel()},
		{"Streak (days)", p.Streak},
		{"Last activity", last},
		{"Questions answered", p.TotalQuestions},
		{"Correct answers", p.CorrectAnswers},
		{"Accuracy (%)", p.Accuracy()},
		{"Badges earned", fmt.Sprintf("%d/%d", p.EarnedCount(), len(p.Badges))},
		{"Generated at", generated},
	}
	if err := writeRows(f, SheetProgress, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetProgress, "A1", "B1", bold); err != nil {
		return fmt.Errorf("styling %s: %w", SheetProgress, err)
	}
	return f.SetColWidth(SheetProgress, "A", "A", 22)
}

func writeBadges(f *excelize.File, r Report, bold int) error {
	if _, err := f.NewSheet(SheetBadges); err != nil {
		return fmt.Errorf("adding sheet %s: %w", SheetBadges, err)
	}
	rows := [][]any{{"Badge", "Name", "Description", "Earned", "Earned at"}}
	for _, b := range r.Progress.Badges {
		earnedAt := ""
		if b.EarnedAt != nil {
			earnedAt = b.EarnedAt.UTC().Format(time.RFC3339)
		}
		earned := "no"
		if b.Earned {
			earned = "yes"
		}
		rows = append(rows, []any{b.Emoji + " " + b.ID, b.Name, b.Description, earned, earnedAt})
	}
	if err := writeRows(f, SheetBadges, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetBadges, "A1", "E1", bold); err != nil {
		return fmt.Errorf("styling %s: %w", SheetBadges, err)
	}
	return f.SetColWidth(SheetBadges, "C", "C", 48)
}

func writeConversation(f *excelize.File, r Report, bold int) error {
	if _, err := f.NewSheet(SheetConversation); err != nil {
		return fmt.Errorf("adding sheet %s: %w", SheetConversation, err)
	}
	rows := [][]any{{"#", "Role", "Time", "Message"}}
	for i, t := range r.History {
		rows = append(rows, []any{i + 1, string(t.Role), t.CreatedAt.UTC().Format(time.RFC3339), t.Content})
	}
	if err := writeRows(f, SheetConversation, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetConversation, "A1", "D1", bold); err != nil {
		return fmt.Errorf("styling %s: %w", SheetConversation, err)
	}
	return f.SetColWidth(SheetConversation, "D", "D", 80)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
