package http

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

// AuditLister reads the audit trail.
type AuditLister interface {
	List(ctx context.Context, filter audit.ListFilter) ([]audit.Entry, error)
}

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	auditService AuditLister
}

func NewAuditHandler(auditService AuditLister) AuditHandler {
	return &auditHandlerImpl{
		auditService: auditService,
	}
}

// List handles GET /admin/audit-logs
func (h *auditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := audit.ListFilter{
		TargetID: r.URL.Query().Get("target_id"),
		Limit:    getIntQueryParam(r, "limit", 0),
	}

	entries, err := h.auditService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, audit.ToResponses(entries), &response.Meta{
		Count: len(entries),
		Limit: filter.Limit,
	})
}
