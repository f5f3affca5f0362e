package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"tasklist/internal/models"
)

func TestWrite(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	data := Data{
		Employees: []models.EmployeeStats{
			{Employee: models.Employee{ID: 42, Username: "Ann"}, Completed: 1},
			{Employee: models.Employee{ID: 43}, Completed: 0},
		},
		Completions: []models.TaskLog{
			{TaskID: 1, UserID: 42, Task: &models.Task{Title: "Ship report"}, CompletedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
			{TaskID: 2, UserID: 7, CompletedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		},
		Location: msk,
	}

	var buf bytes.Buffer
	if err := Write(&buf, data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != EmployeesSheet || got[1] != CompletionsSheet {
		t.Errorf("sheets = %v", got)
	}

	tests := []struct {
		sheet string
		cell  string
		want  string
	}{
		{EmployeesSheet, "B2", "Ann"},
		{EmployeesSheet, "C2", "1"},
		{EmployeesSheet, "B3", "Сотрудник"},
		{CompletionsSheet, "B2", "Ship report"},
		{CompletionsSheet, "C2", "Ann"},
		{CompletionsSheet, "D2", "2026-03-01 12:00:00"},
		{CompletionsSheet, "C3", "#7"},
	}

	for _, tt := range tests {
		t.Run(tt.sheet+"!"+tt.cell, func(t *testing.T) {
			got, err := f.GetCellValue(tt.sheet, tt.cell)
			if err != nil {
				t.Fatalf("GetCellValue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("GetCellValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
