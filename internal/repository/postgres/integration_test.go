//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/domain"
)

// prepareDB connects to LABRESERVE_TEST_DSN and migrates it. Run with
// `go test -tags integration ./internal/repository/postgres/`.
func prepareDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("LABRESERVE_TEST_DSN")
	if dsn == "" {
		t.Skip("LABRESERVE_TEST_DSN not set")
	}
	ctx := context.Background()

	var db *sql.DB
	var err error
	// Retry connection as DB might still be starting up
	for i := 0; i < 10; i++ {
		db, err = Open(ctx, dsn, 20)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, store *Store) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        fmt.Sprintf("user-%d@lab.test", time.Now().UnixNano()),
		PasswordHash: "hash",
		Name:         "Integration User",
		Role:         domain.UserRoleUser,
	}
	require.NoError(t, store.UserRepository.Create(context.Background(), u))
	return u
}

// Concurrent submissions against one pool must never overbook it.
func TestReservation_ConcurrentSubmissionsRespectCapacity(t *testing.T) {
	db := prepareDB(t)
	store := NewStore(db)
	ctx := context.Background()
	user := seedUser(t, store)

	eq := &domain.Equipment{Name: "Pipette set", Quantity: 5, Status: domain.EquipmentStatusOperational}
	require.NoError(t, store.EquipmentRepository.Create(ctx, eq))

	start := time.Now().Add(24 * time.Hour).Truncate(time.Second).UTC()
	end := start.Add(2 * time.Hour)
	window := booking.NewWindow(start, end)

	const attempts = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, rejected := 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := &domain.Reservation{UserID: user.ID, EquipmentID: eq.ID, Quantity: 1, StartTime: start, EndTime: end}
			err := store.ReservationRepository.CreateChecked(ctx, res, func(locked *domain.Equipment, overlapping []domain.Reservation) (domain.ReservationStatus, error) {
				reserved := booking.ReservedInWindow(window, booking.HoldingsFromReservations(overlapping))
				if booking.Remaining(locked.Quantity, locked.UnitsUnderMaintenance, reserved) < res.Quantity {
					return "", booking.ErrInsufficientCapacity
				}
				return domain.ReservationStatusPending, nil
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, booking.ErrInsufficientCapacity):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, accepted)
	assert.Equal(t, attempts-5, rejected)

	active, err := store.ReservationRepository.ListOverlapping(ctx, eq.ID, start, end)
	require.NoError(t, err)
	assert.Len(t, active, 5)
}

func TestLabReservation_ConcurrentSubmissionsAreExclusive(t *testing.T) {
	db := prepareDB(t)
	store := NewStore(db)
	ctx := context.Background()
	user := seedUser(t, store)

	lab := &domain.Lab{Name: "Clean room", Capacity: 10, Status: domain.LabStatusAvailable}
	require.NoError(t, store.LabRepository.Create(ctx, lab))

	start := time.Now().Add(48 * time.Hour).Truncate(time.Second).UTC()
	end := start.Add(time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := &domain.LabReservation{UserID: user.ID, LabID: lab.ID, Attendees: 2, StartTime: start, EndTime: end}
			err := store.LabReservationRepository.CreateChecked(ctx, res, func(_ *domain.Lab, overlapping []domain.LabReservation) (domain.ReservationStatus, error) {
				if len(overlapping) > 0 {
					return "", booking.ErrLabAlreadyReserved
				}
				return domain.ReservationStatusApproved, nil
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
}

func TestMaintenance_CounterCompareAndSwap(t *testing.T) {
	db := prepareDB(t)
	store := NewStore(db)
	ctx := context.Background()

	eq := &domain.Equipment{Name: "Centrifuge", Quantity: 4, Status: domain.EquipmentStatusOperational}
	require.NoError(t, store.EquipmentRepository.Create(ctx, eq))

	v, err := store.EquipmentRepository.UpdateCounters(ctx, domain.CounterUpdate{
		EquipmentID: eq.ID, ExpectedVersion: eq.Version, UnitsUnderMaintenance: 2, Status: domain.EquipmentStatusOperational,
	})
	require.NoError(t, err)
	assert.Equal(t, eq.Version+1, v)

	_, err = store.EquipmentRepository.UpdateCounters(ctx, domain.CounterUpdate{
		EquipmentID: eq.ID, ExpectedVersion: eq.Version, UnitsUnderMaintenance: 3, Status: domain.EquipmentStatusOperational,
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	got, err := store.EquipmentRepository.GetByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UnitsUnderMaintenance)
}

// A reservation committed between a maintenance capacity read and the
// maintenance write must make that write fail.
func TestMaintenance_ReservationAfterCapacityReadAbortsWrite(t *testing.T) {
	db := prepareDB(t)
	store := NewStore(db)
	ctx := context.Background()
	user := seedUser(t, store)

	eq := &domain.Equipment{Name: "Spectrometer", Quantity: 4, Status: domain.EquipmentStatusOperational}
	require.NoError(t, store.EquipmentRepository.Create(ctx, eq))

	start := time.Now().Add(72 * time.Hour).Truncate(time.Second).UTC()
	end := start.Add(2 * time.Hour)

	snapshot, err := store.EquipmentRepository.GetByID(ctx, eq.ID)
	require.NoError(t, err)
	overlapping, err := store.ReservationRepository.ListOverlapping(ctx, eq.ID, start, end)
	require.NoError(t, err)
	require.Empty(t, overlapping)

	res := &domain.Reservation{UserID: user.ID, EquipmentID: eq.ID, Quantity: 3, StartTime: start, EndTime: end}
	require.NoError(t, store.ReservationRepository.CreateChecked(ctx, res, func(*domain.Equipment, []domain.Reservation) (domain.ReservationStatus, error) {
		return domain.ReservationStatusApproved, nil
	}))

	sched := &domain.MaintenanceSchedule{
		EquipmentID: eq.ID, ScheduledDate: start, Units: 2,
		Status: domain.MaintenanceStatusScheduled, CreatedBy: user.ID,
	}
	err = store.MaintenanceRepository.Create(ctx, sched, &domain.CounterUpdate{
		EquipmentID: eq.ID, ExpectedVersion: snapshot.Version, UnitsUnderMaintenance: 2, Status: domain.EquipmentStatusOperational,
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	schedules, err := store.MaintenanceRepository.ListByEquipment(ctx, eq.ID)
	require.NoError(t, err)
	assert.Empty(t, schedules)
	got, err := store.EquipmentRepository.GetByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UnitsUnderMaintenance)
}
