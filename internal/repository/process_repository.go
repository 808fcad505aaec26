package repository

import (
	"context"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProcessRepository struct {
	db *gorm.DB
}

func NewProcessRepository(db *gorm.DB) *ProcessRepository {
	return &ProcessRepository{db: db}
}

func (r *ProcessRepository) Create(ctx context.Context, process *domain.Process) error {
	return r.db.WithContext(ctx).Create(process).Error
}

func (r *ProcessRepository) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*domain.Process, error) {
	var process domain.Process
	err := r.db.WithContext(ctx).
		Scopes(ForOrganization(organizationID)).
		First(&process, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &process, nil
}

// ListByIDs returns the active processes among ids. Missing or inactive IDs
// are simply absent from the result.
func (r *ProcessRepository) ListByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]domain.Process, error) {
	var processes []domain.Process
	if len(ids) == 0 {
		return processes, nil
	}
	err := r.db.WithContext(ctx).
		Scopes(ForOrganization(organizationID)).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&processes).Error
	return processes, err
}

func (r *ProcessRepository) List(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]domain.Process, error) {
	var processes []domain.Process
	query := r.db.WithContext(ctx).Scopes(ForOrganization(organizationID))
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&processes).Error
	return processes, err
}

func (r *ProcessRepository) Update(ctx context.Context, process *domain.Process) error {
	return r.db.WithContext(ctx).Save(process).Error
}
