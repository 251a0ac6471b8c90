package http

import (
	"net/http"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/service"
)

// ReservationHandler serves equipment and lab reservations. Both share the
// same lifecycle routes under different prefixes.
type ReservationHandler struct {
	reservationSvc    service.ReservationService
	labReservationSvc service.LabReservationService
}

func NewReservationHandler(reservationSvc service.ReservationService, labReservationSvc service.LabReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc, labReservationSvc: labReservationSvc}
}

func (h *ReservationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.reservationSvc.SubmitReservation(r.Context(), mustActor(r), service.ReservationRequest{
		EquipmentID: req.EquipmentID,
		Quantity:    req.Quantity,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Purpose:     req.Purpose,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ReservationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req decisionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.reservationSvc.DecideReservation(r.Context(), mustActor(r), id, *req.Approve, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.reservationSvc.CancelReservation(r.Context(), mustActor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.reservationSvc.GetReservation(r.Context(), mustActor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := reservationFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, total, err := h.reservationSvc.ListReservations(r.Context(), mustActor(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Reservation]{Items: items, Total: total})
}

func (h *ReservationHandler) SubmitLab(w http.ResponseWriter, r *http.Request) {
	var req labReservationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.labReservationSvc.SubmitLabReservation(r.Context(), mustActor(r), service.LabReservationRequest{
		LabID:     req.LabID,
		Attendees: req.Attendees,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ReservationHandler) DecideLab(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req decisionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.labReservationSvc.DecideLabReservation(r.Context(), mustActor(r), id, *req.Approve, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) CancelLab(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.labReservationSvc.CancelLabReservation(r.Context(), mustActor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) GetLab(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.labReservationSvc.GetLabReservation(r.Context(), mustActor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) ListLab(w http.ResponseWriter, r *http.Request) {
	filter, err := reservationFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, total, err := h.labReservationSvc.ListLabReservations(r.Context(), mustActor(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.LabReservation]{Items: items, Total: total})
}

func reservationFilter(r *http.Request) (domain.ReservationFilter, error) {
	var f domain.ReservationFilter
	var err error
	if f.UserID, err = queryUUID(r, "user_id"); err != nil {
		return f, err
	}
	if f.EquipmentID, err = queryUUID(r, "equipment_id"); err != nil {
		return f, err
	}
	if f.LabID, err = queryUUID(r, "lab_id"); err != nil {
		return f, err
	}
	f.Status = domain.ReservationStatus(r.URL.Query().Get("status"))
	f.Page, f.PageSize = queryPage(r)
	return f, nil
}
