package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/cache"
	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/realtime"
	"labreserve-backend/internal/repository"
)

// Views are the read-through caches the services serve reads from. They are
// never consulted for conflict checks.
type Views struct {
	Equipment       *cache.View[domain.Equipment]
	Labs            *cache.View[domain.Lab]
	Reservations    *cache.View[domain.Reservation]
	LabReservations *cache.View[domain.LabReservation]
	Maintenance     *cache.View[domain.MaintenanceSchedule]
	Settings        *SettingsView
}

func NewViews(
	store cache.Store,
	ttl time.Duration,
	equipmentRepo repository.EquipmentRepository,
	labRepo repository.LabRepository,
	resRepo repository.ReservationRepository,
	labResRepo repository.LabReservationRepository,
	maintRepo repository.MaintenanceRepository,
) *Views {
	return &Views{
		Equipment:       cache.NewView[domain.Equipment]("equipment", store, ttl, equipmentRepo.GetByID),
		Labs:            cache.NewView[domain.Lab]("labs", store, ttl, labRepo.GetByID),
		Reservations:    cache.NewView[domain.Reservation]("reservations", store, ttl, resRepo.GetByID),
		LabReservations: cache.NewView[domain.LabReservation]("lab_reservations", store, ttl, labResRepo.GetByID),
		Maintenance:     cache.NewView[domain.MaintenanceSchedule]("maintenance_schedules", store, ttl, maintRepo.GetByID),
		Settings:        NewSettingsView(),
	}
}

// Tables maps each change-event table to the view holding its rows.
func (v *Views) Tables() map[string]realtime.Mergeable {
	return map[string]realtime.Mergeable{
		"equipment":              v.Equipment,
		"labs":                   v.Labs,
		"reservations":           v.Reservations,
		"lab_reservations":       v.LabReservations,
		"maintenance_schedules":  v.Maintenance,
		"auto_approval_settings": v.Settings,
	}
}

// SettingsView holds auto-approval settings by scope and target. Toggles are
// applied to it optimistically through booking.SettingPatch.
type SettingsView struct {
	mu    sync.RWMutex
	byKey map[booking.SettingKey]domain.AutoApprovalSetting
	keys  map[uuid.UUID]booking.SettingKey
}

func NewSettingsView() *SettingsView {
	return &SettingsView{
		byKey: make(map[booking.SettingKey]domain.AutoApprovalSetting),
		keys:  make(map[uuid.UUID]booking.SettingKey),
	}
}

func (v *SettingsView) Lookup(key booking.SettingKey) (domain.AutoApprovalSetting, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s, ok := v.byKey[key]
	return s, ok
}

func (v *SettingsView) PutSetting(s domain.AutoApprovalSetting) {
	if s.TargetType == domain.ApprovalScopeSystem {
		s.TargetID = nil
	}
	key := booking.KeyOf(&s)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.byKey[key] = s
	if s.ID != uuid.Nil {
		v.keys[s.ID] = key
	}
}

func (v *SettingsView) RemoveSetting(key booking.SettingKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.byKey[key]; ok {
		delete(v.keys, s.ID)
	}
	delete(v.byKey, key)
}

// Replace swaps in a full listing.
func (v *SettingsView) Replace(settings []domain.AutoApprovalSetting) {
	v.mu.Lock()
	v.byKey = make(map[booking.SettingKey]domain.AutoApprovalSetting, len(settings))
	v.keys = make(map[uuid.UUID]booking.SettingKey, len(settings))
	v.mu.Unlock()
	for _, s := range settings {
		v.PutSetting(s)
	}
}

func (v *SettingsView) MergeJSON(_ context.Context, _ uuid.UUID, raw json.RawMessage) error {
	var s domain.AutoApprovalSetting
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	v.PutSetting(s)
	return nil
}

func (v *SettingsView) Invalidate(_ context.Context, ids ...uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, id := range ids {
		if key, ok := v.keys[id]; ok {
			delete(v.byKey, key)
			delete(v.keys, id)
		}
	}
}

func (v *SettingsView) Flush(_ context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.byKey = make(map[booking.SettingKey]domain.AutoApprovalSetting)
	v.keys = make(map[uuid.UUID]booking.SettingKey)
}
