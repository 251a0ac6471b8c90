package http

import (
	"net/http"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/service"
)

type AdminHandler struct {
	adminSvc service.AdminService
}

func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// ListUsers accepts repeated ?role= values.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var roles []domain.UserRole
	for _, v := range r.URL.Query()["role"] {
		roles = append(roles, domain.UserRole(v))
	}
	users, err := h.adminSvc.ListUsers(r.Context(), mustActor(r), roles...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.User]{Items: users, Total: int32(len(users))})
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req roleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.adminSvc.SetRole(r.Context(), mustActor(r), id, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
