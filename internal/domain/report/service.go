package report

import (
	"context"
	"io"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
)

// ReportService defines the interface for report generation
type ReportService interface {
	// AttendanceRows returns the formatted rows for an export.
	AttendanceRows(ctx context.Context, actor user.Actor, req AttendanceExportRequest) ([]AttendanceRow, error)

	// ExportAttendance writes the export in req.Format to w.
	ExportAttendance(ctx context.Context, actor user.Actor, req AttendanceExportRequest, w io.Writer) error
}
