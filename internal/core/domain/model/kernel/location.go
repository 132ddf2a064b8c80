package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// MinLatitude and MaxLatitude bound the latitude in degrees.
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0

	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError("location must be created via NewLocation")

// Location is a validated point on the Earth surface in decimal degrees.
// The zero value is invalid and fails Validate, which lets aggregates tell
// "no location" apart from the point (0, 0).
//
// Example:
//
//	loc, err := kernel.NewLocation(39.9042, 116.4074)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(loc) // Location(39.904200,116.407400)
type Location struct { //nolint:recvcheck //setters use pointer receivers during construction
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewLocation creates a Location from latitude and longitude.
//
// Parameters:
//   - latitude: degrees within [MinLatitude..MaxLatitude]
//   - longitude: degrees within [MinLongitude..MaxLongitude]
//
// Returns:
//   - Location: a valid location
//   - error: ValueIsOutOfRangeError for each coordinate outside its bounds, joined
func NewLocation(latitude, longitude float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// MustNewLocation is NewLocation for literals known to be valid. It panics otherwise.
func MustNewLocation(latitude, longitude float64) Location {
	loc, err := NewLocation(latitude, longitude)
	if err != nil {
		panic(err)
	}
	return loc
}

// Validate returns ErrLocationIsNotConstructed for the zero value.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// IsSet reports whether the location was built by a constructor.
func (l Location) IsSet() bool {
	return l.Validate() == nil
}

func (l Location) Latitude() float64 {
	return l.latitude
}

func (l Location) Longitude() float64 {
	return l.longitude
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.latitude, l.longitude)
}

// IsEqual compares two constructed locations coordinate by coordinate.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.latitude == other.latitude && l.longitude == other.longitude, nil
}

// DistanceTo returns the great-circle distance to other in kilometres,
// computed with the haversine formula over EarthRadiusKm.
// The distance is symmetric and zero for identical points.
//
// Parameters:
//   - other: the location to measure to
//
// Returns:
//   - float64: distance in kilometres
//   - error: validation error if either location is not constructed
//
// Example:
//
//	a := kernel.MustNewLocation(39.90, 116.40)
//	b := kernel.MustNewLocation(39.91, 116.41)
//	km, _ := a.DistanceTo(b) // ~1.4
func (l Location) DistanceTo(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := toRadians(l.latitude)
	lat2 := toRadians(other.latitude)
	dLat := toRadians(other.latitude - l.latitude)
	dLon := toRadians(other.longitude - l.longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c, nil
}

func (l *Location) setLatitude(latitude float64) error {
	if math.IsNaN(latitude) || latitude < MinLatitude || latitude > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, MinLatitude, MaxLatitude)
	}

	l.latitude = latitude
	return nil
}

func (l *Location) setLongitude(longitude float64) error {
	if math.IsNaN(longitude) || longitude < MinLongitude || longitude > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, MinLongitude, MaxLongitude)
	}

	l.longitude = longitude
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
