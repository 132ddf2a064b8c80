package services

import (
	"cmp"
	"slices"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/worker"

	"github.com/shopspring/decimal"
)

// DefaultRadiusKm is the search radius used when none is configured or requested.
const DefaultRadiusKm = 10.0

// Criteria describes what an order needs from a worker.
type Criteria struct {
	// Origin is the order location (required).
	Origin kernel.Location
	// RadiusKm limits the great-circle distance; zero or less uses the matcher default.
	RadiusKm float64
	// Specialty, when set, must be one of the worker's specialties.
	Specialty string
	// EmergencyOnly keeps only emergency-capable workers.
	EmergencyOnly bool
	// EstimatedAmount is compared to each worker's minimum order amount.
	EstimatedAmount decimal.Decimal
	// Priority breaks distance ties: elevated orders prefer emergency-capable workers.
	Priority order.Priority
	// IncludeBusy also returns busy workers, for browsing only.
	IncludeBusy bool
	// Limit caps the number of candidates; zero or less uses the matcher default.
	Limit int
}

// CriteriaForOrder derives matching criteria from a pending order.
// Emergency orders only match emergency-capable workers.
func CriteriaForOrder(o *order.Order) Criteria {
	return Criteria{
		Origin:          o.Location(),
		Specialty:       o.Details().RequiredSpecialty,
		EmergencyOnly:   o.Priority() == order.PriorityEmergency,
		EstimatedAmount: o.EstimatedAmount(),
		Priority:        o.Priority(),
	}
}

// Candidate is an eligible worker and their distance to the order.
type Candidate struct {
	Worker     *worker.Worker
	DistanceKm float64
}

// OrderFilter narrows the nearby-orders browse of a worker.
type OrderFilter struct {
	// Origin is the worker location (required).
	Origin kernel.Location
	// RadiusKm limits the distance; zero or less uses the matcher default.
	RadiusKm float64
	// Category and Priority are optional exact-match filters.
	Category string
	Priority order.Priority
	// MinAmount drops orders estimated below the worker's minimum.
	MinAmount decimal.Decimal
	// Limit caps the result; zero or less uses the matcher default.
	Limit int
}

// NearbyOrder is a pending order and its distance to the browsing worker.
type NearbyOrder struct {
	Order      *order.Order
	DistanceKm float64
}

// DispatchMatcher ranks workers for an order, and orders for a worker.
//
// Business rules:
//   - Only approved workers with a known location are considered
//   - Workers must be available, or available or busy when browsing
//   - Specialty, emergency capability and minimum order amount must match
//   - Candidates lie within the radius and are sorted by distance ascending
//   - Equal distances put emergency-capable workers first for urgent and emergency
//     orders, then fall back to worker id for a stable order
//
// Example usage:
//
//	matcher := services.NewDispatchMatcher(10, 20)
//	candidates, err := matcher.Match(services.CriteriaForOrder(o), workers)
//	if err != nil {
//	    return err
//	}
//	for _, c := range candidates {
//	    notify(c.Worker.ID(), c.DistanceKm)
//	}
type DispatchMatcher struct {
	radiusKm      float64
	maxCandidates int
}

// NewDispatchMatcher creates a matcher.
//
// Parameters:
//   - radiusKm: default search radius, DefaultRadiusKm when zero or less
//   - maxCandidates: default cap on results, unlimited when zero or less
func NewDispatchMatcher(radiusKm float64, maxCandidates int) DispatchMatcher {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	if maxCandidates < 0 {
		maxCandidates = 0
	}
	return DispatchMatcher{radiusKm: radiusKm, maxCandidates: maxCandidates}
}

// RadiusKm returns the default search radius.
func (m DispatchMatcher) RadiusKm() float64 {
	if m.radiusKm <= 0 {
		return DefaultRadiusKm
	}
	return m.radiusKm
}

// Match returns the workers eligible for criteria, nearest first.
//
// Parameters:
//   - c: matching criteria; Origin must be a constructed location
//   - workers: the pool to rank, typically approved workers with a location
//
// Returns:
//   - []Candidate: eligible workers sorted by distance, possibly empty
//   - error: validation error for a missing origin or an invalid worker
func (m DispatchMatcher) Match(c Criteria, workers []*worker.Worker) ([]Candidate, error) {
	if err := c.Origin.Validate(); err != nil {
		return nil, err
	}
	radius := m.radius(c.RadiusKm)

	candidates := make([]Candidate, 0, len(workers))
	for _, w := range workers {
		if err := w.Validate(); err != nil {
			return nil, err
		}
		if !eligible(w, c) {
			continue
		}

		distance, err := c.Origin.DistanceTo(w.Location())
		if err != nil {
			return nil, err
		}
		if distance > radius {
			continue
		}
		candidates = append(candidates, Candidate{Worker: w, DistanceKm: distance})
	}

	preferEmergency := c.Priority.IsElevated()
	slices.SortFunc(candidates, func(a, b Candidate) int {
		if d := cmp.Compare(a.DistanceKm, b.DistanceKm); d != 0 {
			return d
		}
		if preferEmergency && a.Worker.EmergencyCapable() != b.Worker.EmergencyCapable() {
			if a.Worker.EmergencyCapable() {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Worker.ID().String(), b.Worker.ID().String())
	})

	return truncate(candidates, m.limit(c.Limit)), nil
}

// RankOrders returns the pending orders within reach of a worker, nearest first.
// Equal distances put the higher priority first.
func (m DispatchMatcher) RankOrders(f OrderFilter, orders []*order.Order) ([]NearbyOrder, error) {
	if err := f.Origin.Validate(); err != nil {
		return nil, err
	}
	radius := m.radius(f.RadiusKm)

	nearby := make([]NearbyOrder, 0, len(orders))
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		if o.Status() != order.Pending {
			continue
		}
		if f.Category != "" && !strings.EqualFold(o.Details().Category, f.Category) {
			continue
		}
		if f.Priority != "" && o.Priority() != f.Priority {
			continue
		}
		if amount := o.EstimatedAmount(); !amount.IsZero() && amount.LessThan(f.MinAmount) {
			continue
		}

		distance, err := f.Origin.DistanceTo(o.Location())
		if err != nil {
			return nil, err
		}
		if distance > radius {
			continue
		}
		nearby = append(nearby, NearbyOrder{Order: o, DistanceKm: distance})
	}

	slices.SortFunc(nearby, func(a, b NearbyOrder) int {
		if d := cmp.Compare(a.DistanceKm, b.DistanceKm); d != 0 {
			return d
		}
		if p := cmp.Compare(b.Order.Priority().Rank(), a.Order.Priority().Rank()); p != 0 {
			return p
		}
		return a.Order.Timeline().CreatedAt.Compare(b.Order.Timeline().CreatedAt)
	})

	return truncate(nearby, m.limit(f.Limit)), nil
}

func eligible(w *worker.Worker, c Criteria) bool {
	if !w.IsApproved() || !w.HasLocation() {
		return false
	}
	switch w.WorkStatus() {
	case worker.Available:
	case worker.Busy:
		if !c.IncludeBusy {
			return false
		}
	default:
		return false
	}
	if c.EmergencyOnly && !w.EmergencyCapable() {
		return false
	}
	return w.HasSpecialty(c.Specialty) && w.AcceptsAmount(c.EstimatedAmount)
}

func (m DispatchMatcher) radius(requested float64) float64 {
	if requested > 0 {
		return requested
	}
	return m.RadiusKm()
}

func (m DispatchMatcher) limit(requested int) int {
	if requested > 0 {
		return requested
	}
	return m.maxCandidates
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
