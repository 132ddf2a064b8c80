package orderrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// immutableColumns are never rewritten after the order is created.
var immutableColumns = []string{"id", "number", "customer_id", "created_at"}

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a repository bound to db, which may be a transaction.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Accept writes the acceptance with a compare-and-swap on status and worker:
//
//	UPDATE orders SET status='accepted', worker_id=?, accepted_at=?
//	WHERE id=? AND status='pending' AND worker_id IS NULL
//
// Zero affected rows means another worker got there first.
func (r *GormOrderRepository) Accept(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	workerID := aggregate.WorkerID()
	if aggregate.Status() != order.Accepted || workerID == nil {
		return errs.NewTransitionIsInvalidError("order", aggregate.Status().String(), string(order.OpAccept))
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ? AND worker_id IS NULL", aggregate.ID().Google(), order.Pending.String()).
		Updates(map[string]any{
			"status":      order.Accepted.String(),
			"worker_id":   workerID.Google(),
			"accepted_at": aggregate.Timeline().AcceptedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewAlreadyAssignedError(aggregate.ID().String())
	}

	return nil
}

// Update writes every mutable column, conditional on the stored status still being expected.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order, expected order.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ?", dto.ID, expected.String()).
		Select("*").
		Omit(immutableColumns...).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewTransitionIsInvalidError("order", expected.String(), "update")
	}

	return nil
}

// Get retrieves an order by id.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActiveByWorker returns the order the worker is currently committed to.
func (r *GormOrderRepository) GetActiveByWorker(ctx context.Context, workerID kernel.UUID) (*order.Order, error) {
	if err := workerID.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Where("worker_id = ? AND status IN ?", workerID.Google(), statusNames(order.ActiveStatuses())).
		Order("accepted_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("active order of worker", workerID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListPending returns pending orders matching filter, oldest first.
func (r *GormOrderRepository) ListPending(ctx context.Context, filter ports.PendingFilter) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", order.Pending.String()).
		Order("created_at ASC")
	if !filter.CreatedBefore.IsZero() {
		query = query.Where("created_at < ?", filter.CreatedBefore)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var dtos []OrderDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

func statusNames(statuses []order.Status) []string {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}
	return names
}
