package http

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type ReportHandler interface {
	// Attendance export (CSV or XLSX)
	ExportAttendance(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// ExportAttendance handles GET /admin/attendance/report
func (h *reportHandlerImpl) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	req := report.AttendanceExportRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		Format:    report.Format(r.URL.Query().Get("format")),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.reportService.ExportAttendance(r.Context(), actor, req, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, req.Filename(), req.Format.ContentType())
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write attendance export", "error", err)
	}
}
