package service

import (
	"bytes"
	"fmt"
	"hackassist_web/internal/model"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const progressSheet = "Progress"

var progressHeaders = []string{"Mission ID", "Mission", "Status", "Deadline"}

// ExportProgress writes the student's mission progress to an xlsx workbook.
func ExportProgress(user *model.User, entries []model.ProgressEntry) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return nil, err
	}

	row := 1
	if user != nil {
		if err := f.SetSheetRow(progressSheet, "A1", &[]interface{}{"Student", user.Name, "ID", user.StudentID}); err != nil {
			return nil, err
		}
		row = 3
	}

	headerCell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(progressSheet, headerCell, &progressHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(progressHeaders), row)
	if err := f.SetCellStyle(progressSheet, headerCell, lastHeader, style); err != nil {
		return nil, err
	}

	for i, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, row+1+i)
		id := ""
		if e.HackathonID > 0 {
			id = strconv.Itoa(e.HackathonID)
		}
		values := []interface{}{id, e.Hackathon, e.Status, e.Deadline}
		if err := f.SetSheetRow(progressSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write progress row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(progressSheet, "B", "B", 40); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(progressSheet, "C", "D", 20); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func ProgressFilename(studentID int, now time.Time) string {
	return fmt.Sprintf("progress_%d_%s.xlsx", studentID, now.Format("20060102"))
}
