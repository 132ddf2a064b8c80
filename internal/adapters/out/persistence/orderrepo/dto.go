// Package orderrepo persists the order aggregate with GORM. It maps the aggregate to a
// single orders table and implements the conditional writes that make acceptance race-free.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders table row. Status and priority are stored by name so that
// the conditional updates read naturally in SQL.
type OrderDTO struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Number            string              `gorm:"size:32;uniqueIndex;not null"`
	Status            string              `gorm:"size:32;index;not null"`
	CustomerID        uuid.UUID           `gorm:"type:uuid;index;not null"`
	WorkerID          *uuid.UUID          `gorm:"type:uuid;index"`
	Title             string              `gorm:"size:200;not null"`
	Description       string              `gorm:"type:text"`
	Category          string              `gorm:"size:64;index"`
	Address           string              `gorm:"size:255"`
	RequiredSpecialty string              `gorm:"size:64"`
	Priority          string              `gorm:"size:16;not null"`
	Location          LocationDTO         `gorm:"embedded;embeddedPrefix:location_"`
	EstimatedAmount   decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0"`
	QuotedAmount      decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	FinalAmount       decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	QuoteNote         string              `gorm:"type:text"`
	WorkContent       string              `gorm:"type:text"`
	Rating            int
	RatingComment     string    `gorm:"type:text"`
	PaymentMethod     string    `gorm:"size:32"`
	CancelReason      string    `gorm:"type:text"`
	CancelledBy       string    `gorm:"size:16"`
	CreatedAt         time.Time `gorm:"index;not null"`
	AcceptedAt        *time.Time
	ConfirmedAt       *time.Time
	QuotedAt          *time.Time
	QuoteConfirmedAt  *time.Time
	StartedAt         *time.Time
	CompletedAt       *time.Time
	PaidAt            *time.Time
	RatedAt           *time.Time
	CancelledAt       *time.Time
}

// TableName overrides GORM's pluralization.
func (OrderDTO) TableName() string {
	return "orders"
}

// LocationDTO is the order location embedded as location_latitude / location_longitude.
type LocationDTO struct {
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
}

func fromDomain(o *order.Order) OrderDTO {
	var workerID *uuid.UUID
	if id := o.WorkerID(); id != nil {
		raw := id.Google()
		workerID = &raw
	}

	details := o.Details()
	tl := o.Timeline()

	return OrderDTO{
		ID:                o.ID().Google(),
		Number:            o.Number(),
		Status:            o.Status().String(),
		CustomerID:        o.CustomerID().Google(),
		WorkerID:          workerID,
		Title:             details.Title,
		Description:       details.Description,
		Category:          details.Category,
		Address:           details.Address,
		RequiredSpecialty: details.RequiredSpecialty,
		Priority:          o.Priority().String(),
		Location: LocationDTO{
			Latitude:  o.Location().Latitude(),
			Longitude: o.Location().Longitude(),
		},
		EstimatedAmount:  o.EstimatedAmount(),
		QuotedAmount:     o.QuotedAmount(),
		FinalAmount:      o.FinalAmount(),
		QuoteNote:        o.QuoteNote(),
		WorkContent:      o.WorkContent(),
		Rating:           o.Rating(),
		RatingComment:    o.RatingComment(),
		PaymentMethod:    o.PaymentMethod(),
		CancelReason:     o.CancelReason(),
		CancelledBy:      string(o.CancelledBy()),
		CreatedAt:        tl.CreatedAt,
		AcceptedAt:       tl.AcceptedAt,
		ConfirmedAt:      tl.ConfirmedAt,
		QuotedAt:         tl.QuotedAt,
		QuoteConfirmedAt: tl.QuoteConfirmedAt,
		StartedAt:        tl.StartedAt,
		CompletedAt:      tl.CompletedAt,
		PaidAt:           tl.PaidAt,
		RatedAt:          tl.RatedAt,
		CancelledAt:      tl.CancelledAt,
	}
}

// toDomain rebuilds the aggregate through RestoreOrder so stored rows are validated
// like freshly created orders.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromGoogle(dto.CustomerID)
	if err != nil {
		return nil, err
	}

	var workerID *kernel.UUID
	if dto.WorkerID != nil {
		wID, workerErr := kernel.UUIDFromGoogle(*dto.WorkerID)
		if workerErr != nil {
			return nil, workerErr
		}
		workerID = &wID
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	priority, err := order.ParsePriority(dto.Priority)
	if err != nil {
		return nil, err
	}

	loc, err := kernel.NewLocation(dto.Location.Latitude, dto.Location.Longitude)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:         id,
		Number:     dto.Number,
		Status:     status,
		CustomerID: customerID,
		WorkerID:   workerID,
		Details: order.Details{
			Title:             dto.Title,
			Description:       dto.Description,
			Category:          dto.Category,
			Address:           dto.Address,
			RequiredSpecialty: dto.RequiredSpecialty,
		},
		Priority:      priority,
		Location:      loc,
		Estimated:     dto.EstimatedAmount,
		Quoted:        dto.QuotedAmount,
		Final:         dto.FinalAmount,
		QuoteNote:     dto.QuoteNote,
		WorkContent:   dto.WorkContent,
		Rating:        dto.Rating,
		RatingComment: dto.RatingComment,
		PaymentMethod: dto.PaymentMethod,
		CancelReason:  dto.CancelReason,
		CancelledBy:   order.CancelledBy(dto.CancelledBy),
		Timeline: order.Timeline{
			CreatedAt:        dto.CreatedAt,
			AcceptedAt:       dto.AcceptedAt,
			ConfirmedAt:      dto.ConfirmedAt,
			QuotedAt:         dto.QuotedAt,
			QuoteConfirmedAt: dto.QuoteConfirmedAt,
			StartedAt:        dto.StartedAt,
			CompletedAt:      dto.CompletedAt,
			PaidAt:           dto.PaidAt,
			RatedAt:          dto.RatedAt,
			CancelledAt:      dto.CancelledAt,
		},
	})
}

func toDomainList(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
