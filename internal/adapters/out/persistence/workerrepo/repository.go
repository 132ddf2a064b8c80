package workerrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/worker"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormWorkerRepository implements ports.WorkerRepository using GORM.
type GormWorkerRepository struct {
	db *gorm.DB
}

// NewGormWorkerRepository creates a repository bound to db, which may be a transaction.
func NewGormWorkerRepository(db *gorm.DB) *GormWorkerRepository {
	return &GormWorkerRepository{db: db}
}

// Add saves a newly registered worker.
func (r *GormWorkerRepository) Add(ctx context.Context, aggregate *worker.Worker) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves a worker by id.
func (r *GormWorkerRepository) Get(ctx context.Context, id kernel.UUID) (*worker.Worker, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto WorkerDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("worker", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// UpdateProfile writes the profile columns. Location and statistics are left alone.
func (r *GormWorkerRepository) UpdateProfile(
	ctx context.Context,
	aggregate *worker.Worker,
	expected worker.WorkStatus,
) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&WorkerDTO{}).
		Where("id = ? AND work_status = ?", dto.ID, expected.String()).
		Updates(map[string]any{
			"name":                dto.Name,
			"work_status":         dto.WorkStatus,
			"verification_status": dto.VerificationStatus,
			"emergency_capable":   dto.EmergencyCapable,
			"min_order_amount":    dto.MinOrderAmount,
			"specialties":         dto.Specialties,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewTransitionIsInvalidError("worker", expected.String(), "update")
	}

	return nil
}

// UpdateLocation stores a location report.
func (r *GormWorkerRepository) UpdateLocation(
	ctx context.Context,
	id kernel.UUID,
	location kernel.Location,
	at time.Time,
) error {
	if err := errors.Join(id.Validate(), location.Validate()); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&WorkerDTO{}).
		Where("id = ?", id.Google()).
		Updates(map[string]any{
			"latitude":            location.Latitude(),
			"longitude":           location.Longitude(),
			"location_updated_at": at,
		})
	return r.requireRow(result, id)
}

// Occupy is the worker half of acceptance:
//
//	UPDATE workers SET work_status='busy', total_orders=total_orders+1
//	WHERE id=? AND work_status='available' AND verification_status='approved'
func (r *GormWorkerRepository) Occupy(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&WorkerDTO{}).
		Where("id = ? AND work_status = ? AND verification_status = ?",
			id.Google(), worker.Available.String(), worker.VerificationApproved.String()).
		Updates(map[string]any{
			"work_status":  worker.Busy.String(),
			"total_orders": gorm.Expr("total_orders + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewTransitionIsInvalidError("worker", "not available", "occupy")
	}

	return nil
}

// Release makes a busy worker available again.
func (r *GormWorkerRepository) Release(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&WorkerDTO{}).
		Where("id = ? AND work_status = ?", id.Google(), worker.Busy.String()).
		Update("work_status", worker.Available.String()).Error
}

// RecordCompletion updates the statistics and releases the worker in one statement.
func (r *GormWorkerRepository) RecordCompletion(ctx context.Context, id kernel.UUID, amount decimal.Decimal) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&WorkerDTO{}).
		Where("id = ?", id.Google()).
		Updates(map[string]any{
			"completed_orders": gorm.Expr("completed_orders + 1"),
			"total_earnings":   gorm.Expr("total_earnings + ?", amount),
			"work_status": gorm.Expr("CASE WHEN work_status = ? THEN ? ELSE work_status END",
				worker.Busy.String(), worker.Available.String()),
		})
	return r.requireRow(result, id)
}

// RecordRating folds a rating into the stored average. SET expressions read the
// pre-update row, so rating and rated_orders stay consistent.
func (r *GormWorkerRepository) RecordRating(ctx context.Context, id kernel.UUID, rating int) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&WorkerDTO{}).
		Where("id = ?", id.Google()).
		Updates(map[string]any{
			"rating":       gorm.Expr("(rating * rated_orders + ?) / (rated_orders + 1)", float64(rating)),
			"rated_orders": gorm.Expr("rated_orders + 1"),
		})
	return r.requireRow(result, id)
}

// ListDispatchable returns approved workers with a location, available or also busy.
func (r *GormWorkerRepository) ListDispatchable(ctx context.Context, includeBusy bool) ([]*worker.Worker, error) {
	statuses := []string{worker.Available.String()}
	if includeBusy {
		statuses = append(statuses, worker.Busy.String())
	}

	var dtos []WorkerDTO
	err := r.db.WithContext(ctx).
		Where("verification_status = ? AND work_status IN ?", worker.VerificationApproved.String(), statuses).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	workers := make([]*worker.Worker, 0, len(dtos))
	for _, dto := range dtos {
		w, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}

	return workers, nil
}

func (r *GormWorkerRepository) requireRow(result *gorm.DB, id kernel.UUID) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("worker", id.String())
	}
	return nil
}

