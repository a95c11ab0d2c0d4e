package report

import (
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ========================================
// ATTENDANCE EXPORT
// ========================================

type AttendanceExportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Format    Format `json:"format"`
}

// Validate defaults an empty format to CSV.
func (r *AttendanceExportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Format == "" {
		r.Format = FormatCSV
	}
	if r.Format != FormatCSV && r.Format != FormatXLSX {
		errs.Add("format", "format must be csv or xlsx")
	}
	if validator.IsEmpty(r.StartDate) {
		errs.Add("start_date", "start_date is required")
	}
	if validator.IsEmpty(r.EndDate) {
		errs.Add("end_date", "end_date is required")
	}
	validator.ValidateDateRange(&errs, r.StartDate, r.EndDate)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Filename is the download name for the export.
func (r AttendanceExportRequest) Filename() string {
	return "attendance_" + r.StartDate + "_" + r.EndDate + "." + string(r.Format)
}

// Columns is the header row of every attendance export.
var Columns = []string{
	"Date", "EmployeeID", "Location", "CheckIn", "CheckOut",
	"BreakCount", "WorkedSeconds", "LowTime", "ExtraTime", "Notes",
}

// AttendanceRow is one exported record, already formatted for output.
type AttendanceRow struct {
	Date          string
	EmployeeID    string
	Location      string
	CheckIn       string
	CheckOut      string
	BreakCount    int
	WorkedSeconds int64
	LowTime       string
	ExtraTime     string
	Notes         string
}

// Strings renders the row in Columns order.
func (r AttendanceRow) Strings() []string {
	return []string{
		r.Date, r.EmployeeID, r.Location, r.CheckIn, r.CheckOut,
		itoa(int64(r.BreakCount)), itoa(r.WorkedSeconds), r.LowTime, r.ExtraTime, r.Notes,
	}
}

// Values renders the row for spreadsheet cells, keeping numbers numeric.
func (r AttendanceRow) Values() []interface{} {
	return []interface{}{
		r.Date, r.EmployeeID, r.Location, r.CheckIn, r.CheckOut,
		r.BreakCount, r.WorkedSeconds, r.LowTime, r.ExtraTime, r.Notes,
	}
}
