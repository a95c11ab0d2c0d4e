package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AdminAttendanceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Upsert(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
}

type adminAttendanceHandlerImpl struct {
	attendanceService attendance.Service
	batchLimit        int
}

// NewAdminAttendanceHandler creates the admin handler. batchLimit caps the
// records visited by one on-demand reconcile sweep.
func NewAdminAttendanceHandler(attendanceService attendance.Service, batchLimit int) AdminAttendanceHandler {
	return &adminAttendanceHandlerImpl{
		attendanceService: attendanceService,
		batchLimit:        batchLimit,
	}
}

// List implements AdminAttendanceHandler.
func (h *adminAttendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	filter := attendance.HistoryFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	records, err := h.attendanceService.ListAll(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, attendance.ToResponses(records), &response.Meta{
		Count:     len(records),
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	})
}

// Today implements AdminAttendanceHandler.
func (h *adminAttendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	records, err := h.attendanceService.ListToday(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, attendance.ToResponses(records), &response.Meta{Count: len(records)})
}

// Upsert implements AdminAttendanceHandler.
func (h *adminAttendanceHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req attendance.AdminUpsertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.AdminUpsert(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record saved", attendance.ToResponse(result))
}

// Update implements AdminAttendanceHandler.
func (h *adminAttendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Attendance ID is required", nil)
		return
	}

	var req attendance.AdminUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.AdminUpdateByID(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record updated", attendance.ToResponse(result))
}

// Reconcile implements AdminAttendanceHandler. It repairs closed sessions in
// the requested date window.
func (h *adminAttendanceHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFromRequest(w, r); !ok {
		return
	}

	filter := attendance.HistoryFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Sweep(r.Context(), attendance.ListFilter{
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
		Limit:     h.batchLimit,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Reconcile sweep finished", result)
}
