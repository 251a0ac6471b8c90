package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"labreserve-backend/internal/security"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Auth         *AuthHandler
	Catalog      *CatalogHandler
	Reservation  *ReservationHandler
	Maintenance  *MaintenanceHandler
	AutoApproval *AutoApprovalHandler
	Inbox        *InboxHandler
	Admin        *AdminHandler
	Realtime     *RealtimeHandler
}

// NewRouter wires every route behind request id, access log, panic recovery
// and auth, in that order.
func NewRouter(h Handlers, tm security.TokenManager, db Pinger) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, AccessLog, Recover, NewAuthMiddleware(tm).Handler)

	r.HandleFunc("/healthz", healthz(db)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/signup", h.Auth.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", h.Auth.SignIn).Methods(http.MethodPost)
	api.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)
	api.HandleFunc("/me", h.Auth.UpdateProfile).Methods(http.MethodPatch)

	api.HandleFunc("/equipment", h.Catalog.CreateEquipment).Methods(http.MethodPost)
	api.HandleFunc("/equipment", h.Catalog.ListEquipment).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id}", h.Catalog.GetEquipment).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id}", h.Catalog.UpdateEquipment).Methods(http.MethodPatch)
	api.HandleFunc("/equipment/{id}", h.Catalog.DeleteEquipment).Methods(http.MethodDelete)
	api.HandleFunc("/equipment/{id}/availability", h.Catalog.EquipmentAvailability).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id}/maintenance", h.Maintenance.ListForEquipment).Methods(http.MethodGet)

	api.HandleFunc("/labs", h.Catalog.CreateLab).Methods(http.MethodPost)
	api.HandleFunc("/labs", h.Catalog.ListLabs).Methods(http.MethodGet)
	api.HandleFunc("/labs/{id}", h.Catalog.GetLab).Methods(http.MethodGet)
	api.HandleFunc("/labs/{id}", h.Catalog.UpdateLab).Methods(http.MethodPatch)
	api.HandleFunc("/labs/{id}", h.Catalog.DeleteLab).Methods(http.MethodDelete)
	api.HandleFunc("/labs/{id}/availability", h.Catalog.LabAvailability).Methods(http.MethodGet)

	api.HandleFunc("/reservations", h.Reservation.Submit).Methods(http.MethodPost)
	api.HandleFunc("/reservations", h.Reservation.List).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}", h.Reservation.Get).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}/decision", h.Reservation.Decide).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id}/cancel", h.Reservation.Cancel).Methods(http.MethodPost)

	api.HandleFunc("/lab-reservations", h.Reservation.SubmitLab).Methods(http.MethodPost)
	api.HandleFunc("/lab-reservations", h.Reservation.ListLab).Methods(http.MethodGet)
	api.HandleFunc("/lab-reservations/{id}", h.Reservation.GetLab).Methods(http.MethodGet)
	api.HandleFunc("/lab-reservations/{id}/decision", h.Reservation.DecideLab).Methods(http.MethodPost)
	api.HandleFunc("/lab-reservations/{id}/cancel", h.Reservation.CancelLab).Methods(http.MethodPost)

	api.HandleFunc("/maintenance", h.Maintenance.Create).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/{id}", h.Maintenance.Get).Methods(http.MethodGet)
	api.HandleFunc("/maintenance/{id}", h.Maintenance.Update).Methods(http.MethodPatch)
	api.HandleFunc("/maintenance/{id}", h.Maintenance.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/auto-approval/setting", h.AutoApproval.Get).Methods(http.MethodGet)
	api.HandleFunc("/auto-approval/settings", h.AutoApproval.List).Methods(http.MethodGet)
	api.HandleFunc("/auto-approval/settings", h.AutoApproval.Toggle).Methods(http.MethodPut)
	api.HandleFunc("/auto-approval/settings/{id}/logs", h.AutoApproval.Logs).Methods(http.MethodGet)

	api.HandleFunc("/notifications", h.Inbox.Notifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", h.Inbox.MarkNotificationRead).Methods(http.MethodPost)
	api.HandleFunc("/messages", h.Inbox.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages", h.Inbox.Inbox).Methods(http.MethodGet)
	api.HandleFunc("/messages/with/{userId}", h.Inbox.Conversation).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id}/read", h.Inbox.MarkMessageRead).Methods(http.MethodPost)

	api.HandleFunc("/admin/users", h.Admin.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/admin/users/{id}/role", h.Admin.SetRole).Methods(http.MethodPut)

	api.HandleFunc("/realtime", h.Realtime.Subscribe).Methods(http.MethodGet)

	return r
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
