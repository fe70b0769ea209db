package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/infrastructure/persistence/models"
	"github.com/microfinance/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormCustomerRepository implements customer.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID within a tenant
func (r *GormCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Customer", id.String())
	}
	return r.hydrate(ctx, &model)
}

// FindByIdentifier finds a customer by its business identifier within a tenant
func (r *GormCustomerRepository) FindByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("identifier = ?", identifier).
		First(&model).Error; err != nil {
		return nil, translateError(err, "Customer", identifier)
	}
	return r.hydrate(ctx, &model)
}

// ExistsByIdentifier reports whether the identifier is taken within a tenant
func (r *GormCustomerRepository) ExistsByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("identifier = ?", identifier).
		Count(&count).Error
	return count > 0, err
}

// List returns one page of customers matching the filter and the total count.
// The search term matches identifier, given name and surname case-insensitively.
func (r *GormCustomerRepository) List(ctx context.Context, tenantID uuid.UUID, filter customer.ListFilter) ([]customer.Customer, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Scopes(tenant.Scope(tenantID))

	if !filter.IncludeClosed {
		query = query.Where("current_state <> ?", customer.StateClosed)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(identifier) LIKE ? OR LOWER(given_name) LIKE ? OR LOWER(surname) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CustomerSortFields, "created_on")
	orderDir := ValidateSortOrder(filter.OrderDir)

	query = query.Order(orderBy + " " + orderDir)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.CustomerModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	if err := r.loadChildren(ctx, rows); err != nil {
		return nil, 0, err
	}

	customers := make([]customer.Customer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers, total, nil
}

// Save inserts or updates the customer and replaces its address and contact
// details with the ones on the aggregate
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	model := models.CustomerModelFromDomain(c)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		if err := tx.Where("customer_id = ?", c.ID).Delete(&models.CustomerAddressModel{}).Error; err != nil {
			return err
		}
		if model.Address != nil {
			if err := tx.Create(model.Address).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("customer_id = ?", c.ID).Delete(&models.CustomerContactDetailModel{}).Error; err != nil {
			return err
		}
		if len(model.ContactDetails) > 0 {
			if err := tx.Create(&model.ContactDetails).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err, "Customer", c.Identifier)
}

func (r *GormCustomerRepository) hydrate(ctx context.Context, model *models.CustomerModel) (*customer.Customer, error) {
	rows := []models.CustomerModel{*model}
	if err := r.loadChildren(ctx, rows); err != nil {
		return nil, err
	}
	return rows[0].ToDomain(), nil
}

// loadChildren fills address and contact details of rows with two queries
func (r *GormCustomerRepository) loadChildren(ctx context.Context, rows []models.CustomerModel) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(rows))
	index := make(map[uuid.UUID]*models.CustomerModel, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
		index[rows[i].ID] = &rows[i]
	}

	var addresses []models.CustomerAddressModel
	if err := r.db.WithContext(ctx).Where("customer_id IN ?", ids).Find(&addresses).Error; err != nil {
		return err
	}
	for i := range addresses {
		index[addresses[i].CustomerID].Address = &addresses[i]
	}

	var contacts []models.CustomerContactDetailModel
	if err := r.db.WithContext(ctx).
		Where("customer_id IN ?", ids).
		Order("preference_level ASC").
		Find(&contacts).Error; err != nil {
		return err
	}
	for _, d := range contacts {
		m := index[d.CustomerID]
		m.ContactDetails = append(m.ContactDetails, d)
	}
	return nil
}

var _ customer.CustomerRepository = (*GormCustomerRepository)(nil)

// GormCommandRepository implements customer.CommandRepository using GORM
type GormCommandRepository struct {
	db *gorm.DB
}

// NewGormCommandRepository creates a new GormCommandRepository
func NewGormCommandRepository(db *gorm.DB) *GormCommandRepository {
	return &GormCommandRepository{db: db}
}

// Append stores a lifecycle command
func (r *GormCommandRepository) Append(ctx context.Context, cmd *customer.Command) error {
	return r.db.WithContext(ctx).Create(models.CommandModelFromDomain(cmd)).Error
}

// FindByCustomer returns the command history of a customer, oldest first
func (r *GormCommandRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]customer.Command, error) {
	var rows []models.CommandModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ?", customerID).
		Order("created_on ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	commands := make([]customer.Command, len(rows))
	for i := range rows {
		commands[i] = rows[i].ToDomain()
	}
	return commands, nil
}

var _ customer.CommandRepository = (*GormCommandRepository)(nil)

// GormIdentificationCardRepository implements customer.IdentificationCardRepository using GORM
type GormIdentificationCardRepository struct {
	db *gorm.DB
}

// NewGormIdentificationCardRepository creates a new GormIdentificationCardRepository
func NewGormIdentificationCardRepository(db *gorm.DB) *GormIdentificationCardRepository {
	return &GormIdentificationCardRepository{db: db}
}

// Save inserts or updates an identification card
func (r *GormIdentificationCardRepository) Save(ctx context.Context, card *customer.IdentificationCard) error {
	err := r.db.WithContext(ctx).Save(models.IdentificationCardModelFromDomain(card)).Error
	return translateError(err, "IdentificationCard", card.Number)
}

// FindByNumber finds a card of a customer by its number
func (r *GormIdentificationCardRepository) FindByNumber(ctx context.Context, tenantID, customerID uuid.UUID, number string) (*customer.IdentificationCard, error) {
	var model models.IdentificationCardModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ? AND number = ?", customerID, number).
		First(&model).Error; err != nil {
		return nil, translateError(err, "IdentificationCard", number)
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns every card of a customer ordered by number
func (r *GormIdentificationCardRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]customer.IdentificationCard, error) {
	var rows []models.IdentificationCardModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ?", customerID).
		Order("number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	cards := make([]customer.IdentificationCard, len(rows))
	for i := range rows {
		cards[i] = *rows[i].ToDomain()
	}
	return cards, nil
}

// CountByCustomer counts the cards of a customer
func (r *GormIdentificationCardRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.IdentificationCardModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

// Delete removes a card. Deleting a missing card is a no-op.
func (r *GormIdentificationCardRepository) Delete(ctx context.Context, tenantID, customerID uuid.UUID, number string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ? AND number = ?", customerID, number).
		Delete(&models.IdentificationCardModel{}).Error
}

var _ customer.IdentificationCardRepository = (*GormIdentificationCardRepository)(nil)
