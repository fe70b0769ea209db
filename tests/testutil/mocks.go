package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/application/uow"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/domain/task"
	"github.com/stretchr/testify/mock"
)

// Mocks bundles a mock for every repository port plus an outbox recorder
type Mocks struct {
	Customers           *MockCustomerRepository
	Commands            *MockCommandRepository
	IdentificationCards *MockIdentificationCardRepository
	TaskDefinitions     *MockTaskDefinitionRepository
	TaskInstances       *MockTaskInstanceRepository
	Documents           *MockDocumentRepository
	Pages               *MockPageRepository
	Outbox              *RecordingPublisher
}

// NewMocks creates a fresh set of repository mocks
func NewMocks() *Mocks {
	return &Mocks{
		Customers:           new(MockCustomerRepository),
		Commands:            new(MockCommandRepository),
		IdentificationCards: new(MockIdentificationCardRepository),
		TaskDefinitions:     new(MockTaskDefinitionRepository),
		TaskInstances:       new(MockTaskInstanceRepository),
		Documents:           new(MockDocumentRepository),
		Pages:               new(MockPageRepository),
		Outbox:              &RecordingPublisher{},
	}
}

// Repositories exposes the mocks as a uow.Repositories bundle
func (m *Mocks) Repositories() uow.Repositories {
	return uow.Repositories{
		Customers:           m.Customers,
		Commands:            m.Commands,
		IdentificationCards: m.IdentificationCards,
		TaskDefinitions:     m.TaskDefinitions,
		TaskInstances:       m.TaskInstances,
		Documents:           m.Documents,
		Pages:               m.Pages,
		Outbox:              m.Outbox,
	}
}

// UnitOfWork returns a unit of work that runs every call on the mocks
func (m *Mocks) UnitOfWork() uow.UnitOfWork {
	return &StaticUnitOfWork{Repos: m.Repositories()}
}

// AssertExpectations asserts the expectations of every mock
func (m *Mocks) AssertExpectations(t mock.TestingT) {
	m.Customers.AssertExpectations(t)
	m.Commands.AssertExpectations(t)
	m.IdentificationCards.AssertExpectations(t)
	m.TaskDefinitions.AssertExpectations(t)
	m.TaskInstances.AssertExpectations(t)
	m.Documents.AssertExpectations(t)
	m.Pages.AssertExpectations(t)
}

// StaticUnitOfWork hands the same repositories to every call without a transaction
type StaticUnitOfWork struct {
	Repos uow.Repositories
}

// Execute implements uow.UnitOfWork
func (s *StaticUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return fn(ctx, s.Repos)
}

// RecordingPublisher records published events
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []shared.DomainEvent
	Err    error
}

// Publish implements shared.EventPublisher
func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, events...)
	return nil
}

// Types returns the recorded event types in publish order
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.Events))
	for i, e := range p.Events {
		types[i] = e.EventType()
	}
	return types
}

// MockCustomerRepository is a mock implementation of customer.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (*customer.Customer, error) {
	args := m.Called(ctx, tenantID, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (bool, error) {
	args := m.Called(ctx, tenantID, identifier)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, tenantID uuid.UUID, filter customer.ListFilter) ([]customer.Customer, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]customer.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockCommandRepository is a mock implementation of customer.CommandRepository
type MockCommandRepository struct {
	mock.Mock
}

func (m *MockCommandRepository) Append(ctx context.Context, cmd *customer.Command) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func (m *MockCommandRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]customer.Command, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.Command), args.Error(1)
}

// MockIdentificationCardRepository is a mock implementation of customer.IdentificationCardRepository
type MockIdentificationCardRepository struct {
	mock.Mock
}

func (m *MockIdentificationCardRepository) Save(ctx context.Context, card *customer.IdentificationCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockIdentificationCardRepository) FindByNumber(ctx context.Context, tenantID, customerID uuid.UUID, number string) (*customer.IdentificationCard, error) {
	args := m.Called(ctx, tenantID, customerID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.IdentificationCard), args.Error(1)
}

func (m *MockIdentificationCardRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]customer.IdentificationCard, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.IdentificationCard), args.Error(1)
}

func (m *MockIdentificationCardRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIdentificationCardRepository) Delete(ctx context.Context, tenantID, customerID uuid.UUID, number string) error {
	args := m.Called(ctx, tenantID, customerID, number)
	return args.Error(0)
}

// MockTaskDefinitionRepository is a mock implementation of task.DefinitionRepository
type MockTaskDefinitionRepository struct {
	mock.Mock
}

func (m *MockTaskDefinitionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*task.Definition, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Definition), args.Error(1)
}

func (m *MockTaskDefinitionRepository) FindByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (*task.Definition, error) {
	args := m.Called(ctx, tenantID, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Definition), args.Error(1)
}

func (m *MockTaskDefinitionRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]task.Definition, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Definition), args.Error(1)
}

func (m *MockTaskDefinitionRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]task.Definition, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Definition), args.Error(1)
}

func (m *MockTaskDefinitionRepository) FindPredefined(ctx context.Context, tenantID uuid.UUID) ([]task.Definition, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Definition), args.Error(1)
}

func (m *MockTaskDefinitionRepository) ExistsByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (bool, error) {
	args := m.Called(ctx, tenantID, identifier)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskDefinitionRepository) Save(ctx context.Context, d *task.Definition) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// MockTaskInstanceRepository is a mock implementation of task.InstanceRepository
type MockTaskInstanceRepository struct {
	mock.Mock
}

func (m *MockTaskInstanceRepository) Save(ctx context.Context, i *task.Instance) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockTaskInstanceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, includeExecuted bool) ([]task.Instance, error) {
	args := m.Called(ctx, tenantID, customerID, includeExecuted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Instance), args.Error(1)
}

func (m *MockTaskInstanceRepository) FindByCustomerAndDefinition(ctx context.Context, tenantID, customerID, definitionID uuid.UUID) ([]task.Instance, error) {
	args := m.Called(ctx, tenantID, customerID, definitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Instance), args.Error(1)
}

func (m *MockTaskInstanceRepository) DeleteOpen(ctx context.Context, tenantID, customerID, definitionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID, definitionID)
	return args.Get(0).(int64), args.Error(1)
}

// MockDocumentRepository is a mock implementation of document.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByIdentifier(ctx context.Context, tenantID, customerID uuid.UUID, identifier string) (*document.Document, error) {
	args := m.Called(ctx, tenantID, customerID, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]document.Document, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.Document), args.Error(1)
}

func (m *MockDocumentRepository) ExistsByIdentifier(ctx context.Context, tenantID, customerID uuid.UUID, identifier string) (bool, error) {
	args := m.Called(ctx, tenantID, customerID, identifier)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, d *document.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockPageRepository is a mock implementation of document.PageRepository
type MockPageRepository struct {
	mock.Mock
}

func (m *MockPageRepository) Save(ctx context.Context, p *document.Page) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPageRepository) Find(ctx context.Context, tenantID, documentID uuid.UUID, pageNumber int) (*document.Page, error) {
	args := m.Called(ctx, tenantID, documentID, pageNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Page), args.Error(1)
}

func (m *MockPageRepository) FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]document.Page, error) {
	args := m.Called(ctx, tenantID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.Page), args.Error(1)
}

func (m *MockPageRepository) PageNumbers(ctx context.Context, tenantID, documentID uuid.UUID) ([]int, error) {
	args := m.Called(ctx, tenantID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockPageRepository) Delete(ctx context.Context, tenantID, documentID uuid.UUID, pageNumber int) (bool, error) {
	args := m.Called(ctx, tenantID, documentID, pageNumber)
	return args.Bool(0), args.Error(1)
}

// MockImageStore is a mock implementation of document.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockImageStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
