package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/task"
	"github.com/microfinance/backend/internal/infrastructure/persistence/models"
	"github.com/microfinance/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormTaskDefinitionRepository implements task.DefinitionRepository using GORM
type GormTaskDefinitionRepository struct {
	db *gorm.DB
}

// NewGormTaskDefinitionRepository creates a new GormTaskDefinitionRepository
func NewGormTaskDefinitionRepository(db *gorm.DB) *GormTaskDefinitionRepository {
	return &GormTaskDefinitionRepository{db: db}
}

// FindByID finds a definition by its ID
func (r *GormTaskDefinitionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*task.Definition, error) {
	var model models.TaskDefinitionModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Task", id.String())
	}
	return model.ToDomain(), nil
}

// FindByIdentifier finds a definition by its identifier
func (r *GormTaskDefinitionRepository) FindByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (*task.Definition, error) {
	var model models.TaskDefinitionModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("identifier = ?", identifier).
		First(&model).Error; err != nil {
		return nil, translateError(err, "Task", identifier)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the definitions with the given IDs. Unknown IDs are skipped.
func (r *GormTaskDefinitionRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]task.Definition, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, tenantID, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN ?", ids)
	})
}

// FindAll returns the whole catalog ordered by identifier
func (r *GormTaskDefinitionRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]task.Definition, error) {
	return r.find(ctx, tenantID)
}

// FindPredefined returns the definitions attached to every new customer
func (r *GormTaskDefinitionRepository) FindPredefined(ctx context.Context, tenantID uuid.UUID) ([]task.Definition, error) {
	return r.find(ctx, tenantID, func(db *gorm.DB) *gorm.DB {
		return db.Where("predefined = ?", true)
	})
}

// ExistsByIdentifier reports whether the identifier is taken
func (r *GormTaskDefinitionRepository) ExistsByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TaskDefinitionModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("identifier = ?", identifier).
		Count(&count).Error
	return count > 0, err
}

// Save inserts or updates a definition
func (r *GormTaskDefinitionRepository) Save(ctx context.Context, d *task.Definition) error {
	err := r.db.WithContext(ctx).Save(models.TaskDefinitionModelFromDomain(d)).Error
	return translateError(err, "Task", d.Identifier)
}

func (r *GormTaskDefinitionRepository) find(ctx context.Context, tenantID uuid.UUID, scopes ...func(*gorm.DB) *gorm.DB) ([]task.Definition, error) {
	var rows []models.TaskDefinitionModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Scopes(scopes...).
		Order("identifier ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	defs := make([]task.Definition, len(rows))
	for i := range rows {
		defs[i] = *rows[i].ToDomain()
	}
	return defs, nil
}

var _ task.DefinitionRepository = (*GormTaskDefinitionRepository)(nil)

// GormTaskInstanceRepository implements task.InstanceRepository using GORM
type GormTaskInstanceRepository struct {
	db *gorm.DB
}

// NewGormTaskInstanceRepository creates a new GormTaskInstanceRepository
func NewGormTaskInstanceRepository(db *gorm.DB) *GormTaskInstanceRepository {
	return &GormTaskInstanceRepository{db: db}
}

// Save inserts or updates a task instance
func (r *GormTaskInstanceRepository) Save(ctx context.Context, i *task.Instance) error {
	return r.db.WithContext(ctx).Save(models.TaskInstanceModelFromDomain(i)).Error
}

// FindByCustomer returns the task instances of a customer in attach order
func (r *GormTaskInstanceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, includeExecuted bool) ([]task.Instance, error) {
	query := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ?", customerID)
	if !includeExecuted {
		query = query.Where("executed_on IS NULL")
	}
	return r.find(query)
}

// FindByCustomerAndDefinition returns every instance of one definition on a customer
func (r *GormTaskInstanceRepository) FindByCustomerAndDefinition(ctx context.Context, tenantID, customerID, definitionID uuid.UUID) ([]task.Instance, error) {
	return r.find(r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ? AND definition_id = ?", customerID, definitionID))
}

// DeleteOpen removes the unexecuted instances of a definition on a customer
func (r *GormTaskInstanceRepository) DeleteOpen(ctx context.Context, tenantID, customerID, definitionID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ? AND definition_id = ? AND executed_on IS NULL", customerID, definitionID).
		Delete(&models.TaskInstanceModel{})
	return result.RowsAffected, result.Error
}

func (r *GormTaskInstanceRepository) find(query *gorm.DB) ([]task.Instance, error) {
	var rows []models.TaskInstanceModel
	if err := query.Order("created_on ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	instances := make([]task.Instance, len(rows))
	for i := range rows {
		instances[i] = rows[i].ToDomain()
	}
	return instances, nil
}

var _ task.InstanceRepository = (*GormTaskInstanceRepository)(nil)
