package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ErrOrderIsNotConstructed is returned when an Order was not created through NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("order must be created via NewOrder or RestoreOrder")

// Details is the customer-supplied description of the job.
type Details struct {
	Title             string
	Description       string
	Category          string
	Address           string
	RequiredSpecialty string
}

// Timeline holds one stamp per lifecycle step. Stamps are set only by transitions.
type Timeline struct {
	CreatedAt        time.Time
	AcceptedAt       *time.Time
	ConfirmedAt      *time.Time
	QuotedAt         *time.Time
	QuoteConfirmedAt *time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	PaidAt           *time.Time
	RatedAt          *time.Time
	CancelledAt      *time.Time
}

// Order is the aggregate root of a repair job. It owns the status and enforces the
// transition table; a worker is attached exactly once, by Accept.
//
// Order follows these invariants:
//   - Must have a valid identifier, order number, customer and location
//   - workerID is set if and only if the status requires a worker, or the order was
//     cancelled after acceptance
//   - Status changes only through the transition methods
//   - Amounts are never negative
type Order struct {
	id          kernel.UUID
	number      string
	status      Status
	customerID  kernel.UUID
	workerID    *kernel.UUID
	details     Details
	priority    Priority
	location    kernel.Location
	estimated   decimal.Decimal
	quoted      decimal.NullDecimal
	final       decimal.NullDecimal
	quoteNote   string
	workContent string
	rating      int
	ratingNote  string
	payment     string
	cancelNote  string
	cancelledBy CancelledBy
	timeline    Timeline

	isConstructed bool
}

// NewOrder creates a pending order without a worker.
//
// Parameters:
//   - id: order identifier
//   - number: human readable order number, unique across orders
//   - customerID: the customer placing the order
//   - details: job description; Title is required
//   - location: where the work happens (required)
//   - priority: normal, urgent or emergency
//   - estimated: optional estimate used for worker minimum-amount filtering, zero when unknown
//   - now: creation time
//
// Returns:
//   - *Order: the created order in Pending status
//   - error: joined validation errors
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), "ORD20250101000001", customerID,
//	    order.Details{Title: "Socket sparks", Category: "electrical"},
//	    kernel.MustNewLocation(39.90, 116.40), order.PriorityUrgent, decimal.NewFromInt(200), time.Now())
func NewOrder(
	id kernel.UUID,
	number string,
	customerID kernel.UUID,
	details Details,
	location kernel.Location,
	priority Priority,
	estimated decimal.Decimal,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		timeline:      Timeline{CreatedAt: now},
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setNumber(number),
		o.setCustomer(customerID),
		o.setDetails(details),
		o.setLocation(location),
		o.setPriority(priority),
		o.setEstimated(estimated),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Snapshot carries every persisted field of an order. It is the input of RestoreOrder.
type Snapshot struct {
	ID            kernel.UUID
	Number        string
	Status        Status
	CustomerID    kernel.UUID
	WorkerID      *kernel.UUID
	Details       Details
	Priority      Priority
	Location      kernel.Location
	Estimated     decimal.Decimal
	Quoted        decimal.NullDecimal
	Final         decimal.NullDecimal
	QuoteNote     string
	WorkContent   string
	Rating        int
	RatingComment string
	PaymentMethod string
	CancelReason  string
	CancelledBy   CancelledBy
	Timeline      Timeline
}

// RestoreOrder rebuilds an order loaded from storage. Construction rules are checked
// together with the status/worker consistency rule.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		status:        s.Status,
		quoted:        s.Quoted,
		final:         s.Final,
		quoteNote:     s.QuoteNote,
		workContent:   s.WorkContent,
		rating:        s.Rating,
		ratingNote:    s.RatingComment,
		payment:       s.PaymentMethod,
		cancelNote:    s.CancelReason,
		cancelledBy:   s.CancelledBy,
		timeline:      s.Timeline,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setNumber(s.Number),
		o.setCustomer(s.CustomerID),
		o.setDetails(s.Details),
		o.setLocation(s.Location),
		o.setPriority(s.Priority),
		o.setEstimated(s.Estimated),
		s.Status.Validate(),
		validateWorkerForStatus(s.Status, s.WorkerID),
	); err != nil {
		return nil, err
	}
	if s.WorkerID != nil {
		w := *s.WorkerID
		o.workerID = &w
	}

	return o, nil
}

// Validate ensures the order was built by a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Number returns the human readable order number.
func (o *Order) Number() string {
	return o.number
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

func (o *Order) Details() Details {
	return o.details
}

func (o *Order) Priority() Priority {
	return o.priority
}

func (o *Order) Location() kernel.Location {
	return o.location
}

// EstimatedAmount returns the customer's estimate, zero when none was given.
func (o *Order) EstimatedAmount() decimal.Decimal {
	return o.estimated
}

// QuotedAmount returns the latest quote; Valid is false before the first quote.
func (o *Order) QuotedAmount() decimal.NullDecimal {
	return o.quoted
}

func (o *Order) FinalAmount() decimal.NullDecimal {
	return o.final
}

func (o *Order) QuoteNote() string {
	return o.quoteNote
}

func (o *Order) WorkContent() string {
	return o.workContent
}

func (o *Order) Rating() int {
	return o.rating
}

func (o *Order) RatingComment() string {
	return o.ratingNote
}

func (o *Order) PaymentMethod() string {
	return o.payment
}

func (o *Order) CancelReason() string {
	return o.cancelNote
}

func (o *Order) CancelledBy() CancelledBy {
	return o.cancelledBy
}

// WorkerID returns the assigned worker, nil before acceptance.
func (o *Order) WorkerID() *kernel.UUID {
	if o.workerID == nil {
		return nil
	}
	w := *o.workerID
	return &w
}

// IsAssignedTo reports whether workerID is the worker recorded on the order.
func (o *Order) IsAssignedTo(workerID kernel.UUID) bool {
	return o.workerID != nil && o.workerID.IsEqual(workerID)
}

// Timeline returns a copy of the lifecycle stamps.
func (o *Order) Timeline() Timeline {
	t := o.timeline
	for _, p := range []**time.Time{
		&t.AcceptedAt, &t.ConfirmedAt, &t.QuotedAt, &t.QuoteConfirmedAt,
		&t.StartedAt, &t.CompletedAt, &t.PaidAt, &t.RatedAt, &t.CancelledAt,
	} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	return t
}

// Authorize checks that actor is the party the operation requires.
//
// Returns:
//   - nil when the actor may perform op
//   - NotAuthorizedError for a role or ownership mismatch
func (o *Order) Authorize(actor kernel.Actor, op Operation) error {
	denied := func(reason string) error {
		return errs.NewNotAuthorizedError(actor.ID.String(), fmt.Sprintf("cannot %s order %s: %s", op, o.number, reason))
	}

	switch op.Party() {
	case PartyAnyWorker:
		if !actor.Is(kernel.RoleWorker) {
			return denied("only workers may accept orders")
		}
	case PartyAssignedWorker:
		if !actor.Is(kernel.RoleWorker) || !o.IsAssignedTo(actor.ID) {
			return denied("not the assigned worker")
		}
	case PartyCustomer:
		if !actor.Is(kernel.RoleCustomer) || !o.customerID.IsEqual(actor.ID) {
			return denied("not the order owner")
		}
	case PartyParticipant:
		switch {
		case actor.Is(kernel.RoleAdmin):
		case actor.Is(kernel.RoleCustomer) && o.customerID.IsEqual(actor.ID):
		case actor.Is(kernel.RoleWorker) && o.IsAssignedTo(actor.ID):
		default:
			return denied("not a participant")
		}
	default:
		return errs.NewValueIsInvalidError("operation")
	}
	return nil
}

// CanView reports whether actor may read the order: its customer, its worker or an admin.
func (o *Order) CanView(actor kernel.Actor) bool {
	switch actor.Role {
	case kernel.RoleAdmin:
		return true
	case kernel.RoleCustomer:
		return o.customerID.IsEqual(actor.ID)
	case kernel.RoleWorker:
		return o.IsAssignedTo(actor.ID)
	default:
		return false
	}
}

// Accept assigns the order to the worker behind actor and moves it to Accepted.
// Worker approval and availability are checked by the caller against the Worker aggregate.
//
// Returns:
//   - NotAuthorizedError if actor is not a worker
//   - TransitionIsInvalidError if the order is not pending
func (o *Order) Accept(actor kernel.Actor, now time.Time) error {
	next, err := o.begin(actor, OpAccept)
	if err != nil {
		return err
	}

	w := actor.ID
	o.workerID = &w
	o.status = next
	o.timeline.AcceptedAt = stamp(now)
	return nil
}

// Confirm records the customer's confirmation of the accepted worker.
func (o *Order) Confirm(actor kernel.Actor, now time.Time) error {
	next, err := o.begin(actor, OpConfirm)
	if err != nil {
		return err
	}

	o.status = next
	o.timeline.ConfirmedAt = stamp(now)
	return nil
}

// SubmitQuote stores the worker's quote. A quoted order may be re-quoted until the
// customer confirms it.
//
// Parameters:
//   - amount: quoted price, must be greater than zero
//   - note: optional explanation shown to the customer
func (o *Order) SubmitQuote(actor kernel.Actor, amount decimal.Decimal, note string, now time.Time) error {
	next, err := o.begin(actor, OpQuote)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("quotedAmount", fmt.Errorf("%s is not greater than 0", amount))
	}

	o.quoted = decimal.NewNullDecimal(amount)
	o.quoteNote = strings.TrimSpace(note)
	o.status = next
	o.timeline.QuotedAt = stamp(now)
	return nil
}

// ConfirmQuote records the customer's acceptance of the current quote.
func (o *Order) ConfirmQuote(actor kernel.Actor, now time.Time) error {
	next, err := o.begin(actor, OpConfirmQuote)
	if err != nil {
		return err
	}

	o.status = next
	o.timeline.QuoteConfirmedAt = stamp(now)
	return nil
}

// StartWork marks the job as in progress.
func (o *Order) StartWork(actor kernel.Actor, now time.Time) error {
	next, err := o.begin(actor, OpStart)
	if err != nil {
		return err
	}

	o.status = next
	o.timeline.StartedAt = stamp(now)
	return nil
}

// CompleteWork finishes the job.
//
// Parameters:
//   - finalAmount: billed amount; when nil the quoted amount is used
//   - workContent: description of the work done (required)
//
// Returns:
//   - decimal.Decimal: the final amount that was recorded
//   - error: NotAuthorized, InvalidTransition or validation errors
func (o *Order) CompleteWork(
	actor kernel.Actor,
	finalAmount *decimal.Decimal,
	workContent string,
	now time.Time,
) (decimal.Decimal, error) {
	next, err := o.begin(actor, OpComplete)
	if err != nil {
		return decimal.Zero, err
	}

	content := strings.TrimSpace(workContent)
	if content == "" {
		return decimal.Zero, errs.NewValueIsRequiredError("workContent")
	}

	var amount decimal.Decimal
	switch {
	case finalAmount != nil:
		amount = *finalAmount
	case o.quoted.Valid:
		amount = o.quoted.Decimal
	default:
		return decimal.Zero, errs.NewValueIsRequiredError("finalAmount")
	}
	if amount.IsNegative() {
		return decimal.Zero, errs.NewValueIsInvalidErrorWithCause("finalAmount", fmt.Errorf("%s is negative", amount))
	}

	o.final = decimal.NewNullDecimal(amount)
	o.workContent = content
	o.status = next
	o.timeline.CompletedAt = stamp(now)
	return amount, nil
}

// Pay records the customer's payment of the final amount.
func (o *Order) Pay(actor kernel.Actor, method string, now time.Time) error {
	next, err := o.begin(actor, OpPay)
	if err != nil {
		return err
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return errs.NewValueIsRequiredError("paymentMethod")
	}

	o.payment = method
	o.status = next
	o.timeline.PaidAt = stamp(now)
	return nil
}

// Rate stores the customer's rating of a paid order.
//
// Parameters:
//   - rating: score within [MinRating..MaxRating]
//   - comment: optional free text
func (o *Order) Rate(actor kernel.Actor, rating int, comment string, now time.Time) error {
	next, err := o.begin(actor, OpRate)
	if err != nil {
		return err
	}
	if rating < MinRating || rating > MaxRating {
		return errs.NewValueIsOutOfRangeError("rating", rating, MinRating, MaxRating)
	}

	o.rating = rating
	o.ratingNote = strings.TrimSpace(comment)
	o.status = next
	o.timeline.RatedAt = stamp(now)
	return nil
}

// Cancel cancels a pending or active order. The worker stays recorded as history.
//
// Parameters:
//   - reason: why the order is cancelled (required)
//
// Returns:
//   - bool: true when a worker was committed to the order and must be released
//   - error: NotAuthorized, InvalidTransition or ValueIsRequired
func (o *Order) Cancel(actor kernel.Actor, reason string, now time.Time) (bool, error) {
	from := o.status
	next, err := o.begin(actor, OpCancel)
	if err != nil {
		return false, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return false, errs.NewValueIsRequiredError("reason")
	}

	switch actor.Role {
	case kernel.RoleCustomer:
		o.cancelledBy = CancelledByCustomer
	case kernel.RoleWorker:
		o.cancelledBy = CancelledByWorker
	default:
		o.cancelledBy = CancelledBySystem
	}
	o.cancelNote = reason
	o.status = next
	o.timeline.CancelledAt = stamp(now)
	return from.IsActive() && o.workerID != nil, nil
}

// begin authorizes the actor, then validates the status. A rejected transition leaves
// the aggregate untouched.
func (o *Order) begin(actor kernel.Actor, op Operation) (Status, error) {
	if err := o.Validate(); err != nil {
		return Unknown, err
	}
	if err := actor.Validate(); err != nil {
		return Unknown, err
	}
	if err := o.Authorize(actor, op); err != nil {
		return Unknown, err
	}
	return o.status.Next(op)
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return errs.NewValueIsRequiredError("orderNumber")
	}
	o.number = number
	return nil
}

func (o *Order) setCustomer(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setDetails(d Details) error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return errs.NewValueIsRequiredError("title")
	}
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	d.Address = strings.TrimSpace(d.Address)
	d.RequiredSpecialty = strings.TrimSpace(d.RequiredSpecialty)
	o.details = d
	return nil
}

func (o *Order) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.location = location
	return nil
}

func (o *Order) setPriority(p Priority) error {
	if p.Rank() == 0 {
		return errs.NewValueIsInvalidError("priority")
	}
	o.priority = p
	return nil
}

func (o *Order) setEstimated(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("estimatedAmount", fmt.Errorf("%s is negative", amount))
	}
	o.estimated = amount
	return nil
}

// validateWorkerForStatus enforces that a worker is recorded exactly when the status requires one.
func validateWorkerForStatus(s Status, workerID *kernel.UUID) error {
	hasWorker := workerID != nil && !workerID.IsZero()
	switch {
	case s == Cancelled:
		return nil
	case s.HasWorker() && !hasWorker:
		return errs.NewValueIsInvalidErrorWithCause("workerID", fmt.Errorf("status %s requires a worker", s))
	case !s.HasWorker() && hasWorker:
		return errs.NewValueIsInvalidErrorWithCause("workerID", fmt.Errorf("status %s cannot have a worker", s))
	default:
		return nil
	}
}

func stamp(t time.Time) *time.Time {
	return &t
}
