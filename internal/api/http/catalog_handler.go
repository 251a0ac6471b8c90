package http

import (
	"net/http"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/service"
)

// CatalogHandler serves equipment and labs.
type CatalogHandler struct {
	equipmentSvc service.EquipmentService
	labSvc       service.LabService
}

func NewCatalogHandler(equipmentSvc service.EquipmentService, labSvc service.LabService) *CatalogHandler {
	return &CatalogHandler{equipmentSvc: equipmentSvc, labSvc: labSvc}
}

func (h *CatalogHandler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req equipmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	eq := &domain.Equipment{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		LabID:       req.LabID,
		Quantity:    req.Quantity,
		Status:      req.Status,
	}
	if err := h.equipmentSvc.CreateEquipment(r.Context(), mustActor(r), eq); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, eq)
}

func (h *CatalogHandler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	eq, err := h.equipmentSvc.GetEquipment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (h *CatalogHandler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	labID, err := queryUUID(r, "lab_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	items, err := h.equipmentSvc.ListEquipment(r.Context(), domain.EquipmentFilter{
		LabID:    labID,
		Category: q.Get("category"),
		Status:   domain.EquipmentStatus(q.Get("status")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Equipment]{Items: items, Total: int32(len(items))})
}

func (h *CatalogHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req equipmentPatch
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	eq, err := h.equipmentSvc.UpdateEquipment(r.Context(), mustActor(r), id, req.toUpdate())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (h *CatalogHandler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.equipmentSvc.DeleteEquipment(r.Context(), mustActor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) EquipmentAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := queryTime(r, "start")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryTime(r, "end")
	if err != nil {
		writeError(w, r, err)
		return
	}
	avail, err := h.equipmentSvc.GetAvailability(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, avail)
}

func (h *CatalogHandler) CreateLab(w http.ResponseWriter, r *http.Request) {
	var req labRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	lab := &domain.Lab{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Capacity:    req.Capacity,
		Status:      req.Status,
		ManagerID:   req.ManagerID,
	}
	if err := h.labSvc.CreateLab(r.Context(), mustActor(r), lab); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lab)
}

func (h *CatalogHandler) GetLab(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	lab, err := h.labSvc.GetLab(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lab)
}

func (h *CatalogHandler) ListLabs(w http.ResponseWriter, r *http.Request) {
	labs, err := h.labSvc.ListLabs(r.Context(), domain.LabStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Lab]{Items: labs, Total: int32(len(labs))})
}

func (h *CatalogHandler) UpdateLab(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req labPatch
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	lab, err := h.labSvc.UpdateLab(r.Context(), mustActor(r), id, req.toUpdate())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lab)
}

func (h *CatalogHandler) DeleteLab(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.labSvc.DeleteLab(r.Context(), mustActor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) LabAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := queryTime(r, "start")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryTime(r, "end")
	if err != nil {
		writeError(w, r, err)
		return
	}
	avail, err := h.labSvc.GetAvailability(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, avail)
}
