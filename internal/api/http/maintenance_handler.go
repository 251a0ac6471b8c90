package http

import (
	"net/http"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/service"
)

type MaintenanceHandler struct {
	maintenanceSvc service.MaintenanceService
}

func NewMaintenanceHandler(maintenanceSvc service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceSvc: maintenanceSvc}
}

func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.maintenanceSvc.CreateSchedule(r.Context(), mustActor(r), service.MaintenanceRequest{
		EquipmentID:   req.EquipmentID,
		ScheduledDate: req.ScheduledDate,
		EstimatedEnd:  req.EstimatedEnd,
		Units:         req.Units,
		Status:        req.Status,
		Description:   req.Description,
		Technician:    req.Technician,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req maintenancePatch
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.maintenanceSvc.UpdateSchedule(r.Context(), mustActor(r), id, req.toUpdate())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.maintenanceSvc.DeleteSchedule(r.Context(), mustActor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.maintenanceSvc.GetSchedule(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListForEquipment serves GET /api/v1/equipment/{id}/maintenance.
func (h *MaintenanceHandler) ListForEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.maintenanceSvc.ListSchedules(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.MaintenanceSchedule]{Items: items, Total: int32(len(items))})
}
