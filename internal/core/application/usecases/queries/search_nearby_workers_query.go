package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrSearchNearbyWorkersQueryIsNotConstructed = errors.New(
	"SearchNearbyWorkersQuery must be created via NewSearchNearbyWorkersQuery constructor",
)

// SearchNearbyWorkersQuery is the browse variant of dispatch matching: it shows the
// approved workers around a location. With includeBusy set busy workers are listed too.
type SearchNearbyWorkersQuery struct {
	origin        kernel.Location
	radiusKm      float64
	specialty     string
	emergencyOnly bool
	includeBusy   bool

	guard guard.ConstructorGuard
}

func NewSearchNearbyWorkersQuery(
	origin kernel.Location,
	radiusKm float64,
	specialty string,
	emergencyOnly bool,
	includeBusy bool,
) (SearchNearbyWorkersQuery, error) {
	if err := origin.Validate(); err != nil {
		return SearchNearbyWorkersQuery{}, err
	}
	if radiusKm < 0 {
		return SearchNearbyWorkersQuery{}, errs.NewValueIsInvalidError("radiusKm")
	}

	return SearchNearbyWorkersQuery{
		origin:        origin,
		radiusKm:      radiusKm,
		specialty:     specialty,
		emergencyOnly: emergencyOnly,
		includeBusy:   includeBusy,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q SearchNearbyWorkersQuery) Validate() error {
	return q.guard.Validate(ErrSearchNearbyWorkersQueryIsNotConstructed)
}

func (q SearchNearbyWorkersQuery) Origin() kernel.Location {
	return q.origin
}

func (q SearchNearbyWorkersQuery) RadiusKm() float64 {
	return q.radiusKm
}

func (q SearchNearbyWorkersQuery) Specialty() string {
	return q.specialty
}

func (q SearchNearbyWorkersQuery) EmergencyOnly() bool {
	return q.emergencyOnly
}

func (q SearchNearbyWorkersQuery) IncludeBusy() bool {
	return q.includeBusy
}

// SearchNearbyWorkersQueryResponse is one worker in reach. Online reports whether the
// worker currently holds a live session.
type SearchNearbyWorkersQueryResponse struct {
	WorkerID         kernel.UUID
	Name             string
	Location         kernel.Location
	DistanceKm       float64
	WorkStatus       string
	EmergencyCapable bool
	Specialties      []string
	Rating           float64
	RatedOrders      int
	Online           bool
}
