package worker

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// DefaultMinOrderAmount is applied when a worker registers without a minimum order amount.
var DefaultMinOrderAmount = decimal.NewFromInt(50)

// Domain errors for worker operations.
var (
	// ErrNameIsRequired is returned when a worker registers without a display name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrWorkerIsNotConstructed is returned when using an improperly initialized Worker.
	ErrWorkerIsNotConstructed = errors.New("worker must be created via NewWorker or RestoreWorker")
)

// Stats aggregates a worker's job history.
type Stats struct {
	TotalOrders     int
	CompletedOrders int
	TotalEarnings   decimal.Decimal
}

// Worker is an electrician who can be matched to orders.
//
// Key responsibilities:
//   - Tracking availability (available, busy, offline) and admin verification
//   - Holding the last reported location used by the dispatch matcher
//   - Deciding eligibility for an order: specialty, emergency capability, minimum amount
//   - Keeping job statistics and the rating average
//
// Example usage:
//
//	w, err := worker.NewWorker(kernel.NewUUID(), "Li Wei", []string{"wiring"}, true, nil, time.Now())
//	if err != nil {
//	    // Handle construction error
//	}
//	_ = w.Review(worker.VerificationApproved)
//	_ = w.ChangeWorkStatus(worker.Available)
type Worker struct {
	// id uniquely identifies the worker
	id kernel.UUID
	// name is shown to customers
	name string
	// workStatus is the availability for new orders
	workStatus WorkStatus
	// verification is the admin review outcome
	verification VerificationStatus
	// location is the last reported position, zero value when never reported
	location kernel.Location
	// locationUpdatedAt is when location was last reported
	locationUpdatedAt *time.Time
	// emergencyCapable marks workers who take emergency call-outs
	emergencyCapable bool
	// minOrderAmount filters out orders estimated below this amount
	minOrderAmount decimal.Decimal
	// specialties are normalized to lower case
	specialties []string
	// stats are updated when orders are accepted and completed
	stats Stats
	// rating is the average customer rating, ratedOrders the number of ratings
	rating      float64
	ratedOrders int
	createdAt   time.Time

	isConstructed bool
}

// NewWorker registers a worker. The worker starts offline and pending verification.
//
// Parameters:
//   - id: worker identifier, usually the authenticated actor id
//   - name: display name (required)
//   - specialties: skills matched against an order's required specialty
//   - emergencyCapable: whether the worker takes emergency orders
//   - minOrderAmount: optional minimum order amount, DefaultMinOrderAmount when nil
//   - now: registration time
//
// Returns:
//   - *Worker: the registered worker
//   - error: joined validation errors
func NewWorker(
	id kernel.UUID,
	name string,
	specialties []string,
	emergencyCapable bool,
	minOrderAmount *decimal.Decimal,
	now time.Time,
) (*Worker, error) {
	w := &Worker{
		workStatus:       Offline,
		verification:     VerificationPending,
		emergencyCapable: emergencyCapable,
		stats:            Stats{TotalEarnings: decimal.Zero},
		createdAt:        now,
		isConstructed:    true,
	}

	minAmount := DefaultMinOrderAmount
	if minOrderAmount != nil {
		minAmount = *minOrderAmount
	}

	if err := errors.Join(
		w.setID(id),
		w.setName(name),
		w.setSpecialties(specialties),
		w.setMinOrderAmount(minAmount),
	); err != nil {
		return nil, err
	}

	return w, nil
}

// Snapshot carries every persisted field of a worker. It is the input of RestoreWorker.
type Snapshot struct {
	ID                 kernel.UUID
	Name               string
	WorkStatus         WorkStatus
	VerificationStatus VerificationStatus
	Location           kernel.Location
	LocationUpdatedAt  *time.Time
	EmergencyCapable   bool
	MinOrderAmount     decimal.Decimal
	Specialties        []string
	Stats              Stats
	Rating             float64
	RatedOrders        int
	CreatedAt          time.Time
}

// RestoreWorker rebuilds a worker loaded from storage.
func RestoreWorker(s Snapshot) (*Worker, error) {
	w := &Worker{
		workStatus:        s.WorkStatus,
		verification:      s.VerificationStatus,
		location:          s.Location,
		locationUpdatedAt: s.LocationUpdatedAt,
		emergencyCapable:  s.EmergencyCapable,
		stats:             s.Stats,
		rating:            s.Rating,
		ratedOrders:       s.RatedOrders,
		createdAt:         s.CreatedAt,
		isConstructed:     true,
	}

	_, wsErr := ParseWorkStatus(string(s.WorkStatus))
	_, vsErr := ParseVerificationStatus(string(s.VerificationStatus))
	if err := errors.Join(
		w.setID(s.ID),
		w.setName(s.Name),
		w.setSpecialties(s.Specialties),
		w.setMinOrderAmount(s.MinOrderAmount),
		wsErr,
		vsErr,
	); err != nil {
		return nil, err
	}

	return w, nil
}

// Validate ensures the worker was built by a constructor.
func (w *Worker) Validate() error {
	if w == nil || !w.isConstructed {
		return ErrWorkerIsNotConstructed
	}
	return nil
}

func (w *Worker) IsEqual(other *Worker) bool {
	return other != nil && w.id.IsEqual(other.id)
}

func (w *Worker) ID() kernel.UUID {
	return w.id
}

func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) WorkStatus() WorkStatus {
	return w.workStatus
}

func (w *Worker) VerificationStatus() VerificationStatus {
	return w.verification
}

// Location returns the last reported location. Check HasLocation first:
// a worker who never reported one returns the zero Location.
func (w *Worker) Location() kernel.Location {
	return w.location
}

func (w *Worker) HasLocation() bool {
	return w.location.IsSet()
}

func (w *Worker) LocationUpdatedAt() *time.Time {
	if w.locationUpdatedAt == nil {
		return nil
	}
	t := *w.locationUpdatedAt
	return &t
}

func (w *Worker) EmergencyCapable() bool {
	return w.emergencyCapable
}

func (w *Worker) MinOrderAmount() decimal.Decimal {
	return w.minOrderAmount
}

// Specialties returns a copy of the normalized specialties.
func (w *Worker) Specialties() []string {
	return slices.Clone(w.specialties)
}

func (w *Worker) Stats() Stats {
	return w.stats
}

// Rating returns the average rating and the number of ratings it is based on.
func (w *Worker) Rating() (float64, int) {
	return w.rating, w.ratedOrders
}

func (w *Worker) CreatedAt() time.Time {
	return w.createdAt
}

func (w *Worker) IsApproved() bool {
	return w.verification == VerificationApproved
}

func (w *Worker) IsAvailable() bool {
	return w.workStatus == Available
}

// HasSpecialty reports whether the worker covers specialty. An empty specialty matches everyone.
func (w *Worker) HasSpecialty(specialty string) bool {
	specialty = normalizeSpecialty(specialty)
	if specialty == "" {
		return true
	}
	return slices.Contains(w.specialties, specialty)
}

// AcceptsAmount reports whether an order estimated at amount passes the worker's minimum.
// A zero estimate means the customer gave none and always passes.
func (w *Worker) AcceptsAmount(amount decimal.Decimal) bool {
	if amount.IsZero() {
		return true
	}
	return w.minOrderAmount.LessThanOrEqual(amount)
}

// Review applies the admin verification decision. Rejecting an available worker takes them offline.
//
// Parameters:
//   - decision: VerificationApproved or VerificationRejected
//
// Returns:
//   - error: ValueIsInvalidError for any other decision, TransitionIsInvalidError
//     when rejecting a busy worker
func (w *Worker) Review(decision VerificationStatus) error {
	if decision != VerificationApproved && decision != VerificationRejected {
		return errs.NewValueIsInvalidErrorWithCause("verificationStatus",
			fmt.Errorf("%q is not a review decision", decision))
	}
	if decision == VerificationRejected {
		if w.workStatus == Busy {
			return errs.NewTransitionIsInvalidError("worker", string(w.workStatus), "reject")
		}
		w.workStatus = Offline
	}
	w.verification = decision
	return nil
}

// ChangeWorkStatus switches between available and offline on the worker's own request.
//
// Returns:
//   - error: ValueIsInvalidError when target is busy or unknown, NotAuthorizedError
//     when an unapproved worker tries to go available, TransitionIsInvalidError while busy
func (w *Worker) ChangeWorkStatus(target WorkStatus) error {
	if target != Available && target != Offline {
		return errs.NewValueIsInvalidErrorWithCause("workStatus",
			fmt.Errorf("%q cannot be set manually", target))
	}
	if w.workStatus == Busy {
		return errs.NewTransitionIsInvalidError("worker", string(Busy), "change work status of")
	}
	if target == Available && !w.IsApproved() {
		return errs.NewNotAuthorizedError(w.id.String(), "is not approved")
	}
	w.workStatus = target
	return nil
}

// UpdateLocation records a new position report.
func (w *Worker) UpdateLocation(location kernel.Location, now time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	w.location = location
	w.locationUpdatedAt = &now
	return nil
}

// Occupy marks the worker busy after winning an order.
//
// Returns:
//   - error: NotAuthorizedError when not approved, TransitionIsInvalidError when not available
func (w *Worker) Occupy() error {
	if !w.IsApproved() {
		return errs.NewNotAuthorizedError(w.id.String(), "is not approved")
	}
	if w.workStatus != Available {
		return errs.NewTransitionIsInvalidError("worker", string(w.workStatus), "occupy")
	}
	w.workStatus = Busy
	w.stats.TotalOrders++
	return nil
}

// Release makes a busy worker available again after their order was cancelled.
// Releasing a worker who is not busy is a no-op.
func (w *Worker) Release() {
	if w.workStatus == Busy {
		w.workStatus = Available
	}
}

// RecordCompletion adds a finished order to the statistics and releases the worker.
func (w *Worker) RecordCompletion(amount decimal.Decimal) {
	w.stats.CompletedOrders++
	w.stats.TotalEarnings = w.stats.TotalEarnings.Add(amount)
	w.Release()
}

// RecordRating folds a customer rating into the running average.
func (w *Worker) RecordRating(rating int) {
	total := w.rating*float64(w.ratedOrders) + float64(rating)
	w.ratedOrders++
	w.rating = total / float64(w.ratedOrders)
}

func (w *Worker) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	w.id = id
	return nil
}

func (w *Worker) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	w.name = name
	return nil
}

func (w *Worker) setSpecialties(specialties []string) error {
	out := make([]string, 0, len(specialties))
	for _, s := range specialties {
		s = normalizeSpecialty(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	w.specialties = out
	return nil
}

func (w *Worker) setMinOrderAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("minOrderAmount", fmt.Errorf("%s is negative", amount))
	}
	w.minOrderAmount = amount
	return nil
}

func normalizeSpecialty(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
