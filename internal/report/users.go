// Package report строит выгрузки отчётов администратора в формате XLSX.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cl-scripter/learning-api/internal/models"
)

// UsersSheet лист со сводкой по пользователям, лист по умолчанию новой книги.
const UsersSheet = "Sheet1"

// ContentTypeXLSX MIME-тип выгрузки.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var usersHeader = []any{
	"ID", "Username", "Email", "Created At", "Last Login",
	"Total Progress", "Completions", "Last Activity", "Current Language",
}

// WriteUsers записывает сводку по пользователям в XLSX-книгу и отдаёт её в w.
func WriteUsers(w io.Writer, users []models.UserSummary) error {
	const op = "report.WriteUsers"

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetSheetRow(UsersSheet, "A1", &usersHeader); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetRowStyle(UsersSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for i, u := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		row := []any{
			u.ID,
			u.Username,
			u.Email,
			formatTime(&u.CreatedAt),
			formatTime(u.LastLogin),
			u.TotalProgress,
			u.Completions,
			formatTime(u.LastActivity),
			deref(u.CurrentLanguage),
		}
		if err := f.SetSheetRow(UsersSheet, cell, &row); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := f.SetColWidth(UsersSheet, "A", "A", 38); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetColWidth(UsersSheet, "B", "I", 20); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
