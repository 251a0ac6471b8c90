package http

import (
	"net/http"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/service"
)

type AutoApprovalHandler struct {
	autoApprovalSvc service.AutoApprovalService
}

func NewAutoApprovalHandler(autoApprovalSvc service.AutoApprovalService) *AutoApprovalHandler {
	return &AutoApprovalHandler{autoApprovalSvc: autoApprovalSvc}
}

// Get reads one setting by ?scope=&target_id=.
func (h *AutoApprovalHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope := domain.ApprovalScope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = domain.ApprovalScopeSystem
	}
	targetID, err := queryUUID(r, "target_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.autoApprovalSvc.GetSetting(r.Context(), scope, targetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *AutoApprovalHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.autoApprovalSvc.ListSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.AutoApprovalSetting]{Items: items, Total: int32(len(items))})
}

func (h *AutoApprovalHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.autoApprovalSvc.ToggleSetting(r.Context(), mustActor(r), req.Scope, req.TargetID, *req.Enabled)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *AutoApprovalHandler) Logs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.autoApprovalSvc.ListLogs(r.Context(), mustActor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.AutoApprovalLog]{Items: items, Total: int32(len(items))})
}
