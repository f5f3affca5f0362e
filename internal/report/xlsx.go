// Package report exports completion statistics as an xlsx workbook
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"tasklist/internal/models"
)

const (
	EmployeesSheet   = "Employees"
	CompletionsSheet = "Completions"
)

// Data is everything that goes into the workbook
type Data struct {
	Employees   []models.EmployeeStats
	Completions []models.TaskLog
	Location    *time.Location
}

// Write renders the workbook to w
func Write(w io.Writer, data Data) error {
	f, err := Build(data)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// Build creates a workbook with an employee summary sheet and a sheet with
// one row per completion record.
func Build(data Data) (*excelize.File, error) {
	loc := data.Location
	if loc == nil {
		loc = time.UTC
	}
	names := make(map[int64]string, len(data.Employees))
	for _, e := range data.Employees {
		names[e.ID] = e.DisplayName()
	}

	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating header style: %w", err)
	}

	employees := make([][]any, 0, len(data.Employees))
	for _, e := range data.Employees {
		employees = append(employees, []any{e.ID, e.DisplayName(), e.Completed})
	}
	if err := writeSheet(f, EmployeesSheet, header, []string{"ID", "Сотрудник", "Выполнено задач"}, employees); err != nil {
		return nil, err
	}

	completions := make([][]any, 0, len(data.Completions))
	for _, l := range data.Completions {
		title := ""
		if l.Task != nil {
			title = l.Task.Title
		}
		name, ok := names[l.UserID]
		if !ok {
			name = fmt.Sprintf("#%d", l.UserID)
		}
		completions = append(completions, []any{l.TaskID, title, name, l.CompletedAt.In(loc).Format("2006-01-02 15:04:05")})
	}
	if err := writeSheet(f, CompletionsSheet, header, []string{"Задача", "Название", "Сотрудник", "Выполнена"}, completions); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if idx, err := f.GetSheetIndex(EmployeesSheet); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("error creating sheet %s: %w", sheet, err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", last, 20)
}
