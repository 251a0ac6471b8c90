package booking

import (
	"time"

	"labreserve-backend/internal/domain"
)

// ResourceKind distinguishes pooled resources (fungible units) from
// exclusive ones (one active holder at a time).
type ResourceKind interface {
	resourceKind()
}

// Pooled is a resource with Capacity units, UnderMaintenance of which are
// out of the reservable pool.
type Pooled struct {
	Capacity         int
	UnderMaintenance int
}

// Exclusive is a resource that one active reservation holds entirely.
type Exclusive struct{}

func (Pooled) resourceKind()    {}
func (Exclusive) resourceKind() {}

func PooledFor(eq *domain.Equipment) Pooled {
	return Pooled{Capacity: eq.Quantity, UnderMaintenance: eq.UnitsUnderMaintenance}
}

// Request is a demand for Quantity units of a resource during Window.
// Quantity is ignored for exclusive resources.
type Request struct {
	Window   Window
	Quantity int
}

// CheckConflicts decides whether req fits next to the existing holdings.
// Callers run temporal validation first; existing may contain holdings
// outside the window or in inactive states, those are ignored.
func CheckConflicts(kind ResourceKind, req Request, existing []Holding) error {
	switch k := kind.(type) {
	case Pooled:
		reserved := ReservedInWindow(req.Window, existing)
		remaining := Remaining(k.Capacity, k.UnderMaintenance, reserved)
		if req.Quantity > remaining {
			return &CapacityError{Requested: req.Quantity, Remaining: remaining}
		}
		return nil
	case Exclusive:
		for _, h := range existing {
			if h.Status.IsActive() && h.Window.Overlaps(req.Window) {
				return ErrLabAlreadyReserved
			}
		}
		return nil
	default:
		panic("booking: unknown resource kind")
	}
}

// CheckAttendees enforces attendees <= capacity for a lab.
func CheckAttendees(attendees, capacity int) error {
	if attendees < 1 {
		return ErrInvalidQuantity
	}
	if attendees > capacity {
		return &AttendeesError{Attendees: attendees, Capacity: capacity}
	}
	return nil
}

// Detector runs the full validation sequence for reservation requests.
type Detector struct {
	now func() time.Time
}

func NewDetector(now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{now: now}
}

func (d *Detector) Now() time.Time {
	return d.now()
}

// ValidateEquipmentRequest runs the checks that need no store access.
func (d *Detector) ValidateEquipmentRequest(req Request) error {
	if err := req.Window.Validate(d.now()); err != nil {
		return err
	}
	if req.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// CheckEquipment validates req against eq and the holdings read from the store.
func (d *Detector) CheckEquipment(eq *domain.Equipment, req Request, existing []Holding) error {
	if err := d.ValidateEquipmentRequest(req); err != nil {
		return err
	}
	return CheckConflicts(PooledFor(eq), req, existing)
}

// ValidateLabRequest runs the attendee and temporal checks, in that order.
func (d *Detector) ValidateLabRequest(lab *domain.Lab, w Window, attendees int) error {
	if err := CheckAttendees(attendees, lab.Capacity); err != nil {
		return err
	}
	return w.Validate(d.now())
}

// CheckLab validates a lab request against the existing lab holdings.
func (d *Detector) CheckLab(lab *domain.Lab, w Window, attendees int, existing []Holding) error {
	if err := d.ValidateLabRequest(lab, w, attendees); err != nil {
		return err
	}
	return CheckConflicts(Exclusive{}, Request{Window: w, Quantity: 1}, existing)
}

// CheckMaintenanceCapacity verifies that pulling extraUnits more units into
// maintenance during w leaves no reservation without capacity.
func CheckMaintenanceCapacity(eq *domain.Equipment, w Window, extraUnits int, existing []Holding) error {
	if extraUnits <= 0 {
		return nil
	}
	return CheckConflicts(PooledFor(eq), Request{Window: w, Quantity: extraUnits}, existing)
}
