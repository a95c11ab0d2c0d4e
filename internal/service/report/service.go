package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName  = "Attendance"
	timeLayout = "15:04:05"
)

type ReportServiceImpl struct {
	attendance attendance.Service
	loc        *time.Location
}

func NewReportService(attendanceService attendance.Service, loc *time.Location) *ReportServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportServiceImpl{attendance: attendanceService, loc: loc}
}

var _ report.ReportService = (*ReportServiceImpl)(nil)

// AttendanceRows implements report.ReportService. Listing goes through the
// attendance service so legacy rows are reconciled before export.
func (s *ReportServiceImpl) AttendanceRows(ctx context.Context, actor user.Actor, req report.AttendanceExportRequest) ([]report.AttendanceRow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.attendance.ListAll(ctx, actor, attendance.HistoryFilter{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]report.AttendanceRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, s.toRow(rec))
	}
	return rows, nil
}

// ExportAttendance implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendance(ctx context.Context, actor user.Actor, req report.AttendanceExportRequest, w io.Writer) error {
	rows, err := s.AttendanceRows(ctx, actor, req)
	if err != nil {
		return err
	}

	switch req.Format {
	case report.FormatXLSX:
		return writeXLSX(w, rows)
	default:
		return writeCSV(w, rows)
	}
}

func (s *ReportServiceImpl) toRow(rec attendance.Record) report.AttendanceRow {
	row := report.AttendanceRow{
		Date:       rec.Date,
		EmployeeID: rec.UserID,
		BreakCount: len(rec.Breaks),
		LowTime:    yesNo(rec.LowTimeFlag),
		ExtraTime:  yesNo(rec.ExtraTimeFlag),
	}
	if rec.Location != nil {
		row.Location = *rec.Location
	}
	if rec.CheckIn != nil {
		row.CheckIn = rec.CheckIn.In(s.loc).Format(timeLayout)
	}
	if rec.CheckOut != nil {
		row.CheckOut = rec.CheckOut.In(s.loc).Format(timeLayout)
	}
	if rec.TotalWorkedSeconds != nil {
		row.WorkedSeconds = *rec.TotalWorkedSeconds
	}
	if rec.Notes != nil {
		row.Notes = *rec.Notes
	}
	return row
}

func yesNo(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "Yes"
	default:
		return "No"
	}
}

func writeCSV(w io.Writer, rows []report.AttendanceRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(report.Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Strings()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, rows []report.AttendanceRow) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, len(report.Columns))
	for i, c := range report.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row.Values()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
