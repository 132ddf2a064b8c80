// Package workerrepo persists the worker aggregate with GORM. Availability and
// statistics are changed through column-scoped atomic updates.
package workerrepo

import (
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkerDTO is the workers table row. A worker without a reported location has
// NULL coordinates.
type WorkerDTO struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name               string          `gorm:"size:100;not null"`
	WorkStatus         string          `gorm:"size:16;index;not null"`
	VerificationStatus string          `gorm:"size:16;index;not null"`
	Latitude           *float64        `gorm:"column:latitude"`
	Longitude          *float64        `gorm:"column:longitude"`
	LocationUpdatedAt  *time.Time      `gorm:"column:location_updated_at"`
	EmergencyCapable   bool            `gorm:"not null;default:false"`
	MinOrderAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Specialties        string          `gorm:"size:255"`
	TotalOrders        int             `gorm:"not null;default:0"`
	CompletedOrders    int             `gorm:"not null;default:0"`
	TotalEarnings      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Rating             float64         `gorm:"not null;default:0"`
	RatedOrders        int             `gorm:"not null;default:0"`
	CreatedAt          time.Time       `gorm:"not null"`
}

// TableName overrides GORM's pluralization.
func (WorkerDTO) TableName() string {
	return "workers"
}

const specialtySeparator = ","

func fromDomain(w *worker.Worker) WorkerDTO {
	dto := WorkerDTO{
		ID:                 w.ID().Google(),
		Name:               w.Name(),
		WorkStatus:         w.WorkStatus().String(),
		VerificationStatus: w.VerificationStatus().String(),
		LocationUpdatedAt:  w.LocationUpdatedAt(),
		EmergencyCapable:   w.EmergencyCapable(),
		MinOrderAmount:     w.MinOrderAmount(),
		Specialties:        strings.Join(w.Specialties(), specialtySeparator),
		TotalOrders:        w.Stats().TotalOrders,
		CompletedOrders:    w.Stats().CompletedOrders,
		TotalEarnings:      w.Stats().TotalEarnings,
		CreatedAt:          w.CreatedAt(),
	}
	dto.Rating, dto.RatedOrders = w.Rating()

	if w.HasLocation() {
		lat, lon := w.Location().Latitude(), w.Location().Longitude()
		dto.Latitude, dto.Longitude = &lat, &lon
	}

	return dto
}

func toDomain(dto WorkerDTO) (*worker.Worker, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	var loc kernel.Location
	if dto.Latitude != nil && dto.Longitude != nil {
		loc, err = kernel.NewLocation(*dto.Latitude, *dto.Longitude)
		if err != nil {
			return nil, err
		}
	}

	var specialties []string
	if dto.Specialties != "" {
		specialties = strings.Split(dto.Specialties, specialtySeparator)
	}

	return worker.RestoreWorker(worker.Snapshot{
		ID:                 id,
		Name:               dto.Name,
		WorkStatus:         worker.WorkStatus(dto.WorkStatus),
		VerificationStatus: worker.VerificationStatus(dto.VerificationStatus),
		Location:           loc,
		LocationUpdatedAt:  dto.LocationUpdatedAt,
		EmergencyCapable:   dto.EmergencyCapable,
		MinOrderAmount:     dto.MinOrderAmount,
		Specialties:        specialties,
		Stats: worker.Stats{
			TotalOrders:     dto.TotalOrders,
			CompletedOrders: dto.CompletedOrders,
			TotalEarnings:   dto.TotalEarnings,
		},
		Rating:      dto.Rating,
		RatedOrders: dto.RatedOrders,
		CreatedAt:   dto.CreatedAt,
	})
}
