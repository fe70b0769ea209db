package handler

import (
	"context"

	"github.com/google/uuid"
	customerapp "github.com/microfinance/backend/internal/application/customer"
	documentapp "github.com/microfinance/backend/internal/application/document"
	taskapp "github.com/microfinance/backend/internal/application/task"
	"github.com/stretchr/testify/mock"
)

type mockCustomerService struct{ mock.Mock }

func (m *mockCustomerService) Create(ctx context.Context, tenantID, actor uuid.UUID, req customerapp.CreateCustomerRequest) (*customerapp.CustomerResponse, error) {
	args := m.Called(ctx, tenantID, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerapp.CustomerResponse), args.Error(1)
}

func (m *mockCustomerService) Get(ctx context.Context, tenantID uuid.UUID, identifier string) (*customerapp.CustomerResponse, error) {
	args := m.Called(ctx, tenantID, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerapp.CustomerResponse), args.Error(1)
}

func (m *mockCustomerService) List(ctx context.Context, tenantID uuid.UUID, filter customerapp.CustomerListFilter) ([]customerapp.CustomerResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]customerapp.CustomerResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockCustomerService) Update(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req customerapp.UpdateCustomerRequest) (*customerapp.CustomerResponse, error) {
	args := m.Called(ctx, tenantID, identifier, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerapp.CustomerResponse), args.Error(1)
}

type mockLifecycleService struct{ mock.Mock }

func (m *mockLifecycleService) ExecuteCommand(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req customerapp.ExecuteCommandRequest) (*customerapp.CommandResult, error) {
	args := m.Called(ctx, tenantID, identifier, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerapp.CommandResult), args.Error(1)
}

func (m *mockLifecycleService) ListCommands(ctx context.Context, tenantID uuid.UUID, identifier string) ([]customerapp.CommandResponse, error) {
	args := m.Called(ctx, tenantID, identifier)
	return args.Get(0).([]customerapp.CommandResponse), args.Error(1)
}

func (m *mockLifecycleService) AvailableActions(ctx context.Context, tenantID uuid.UUID, identifier string) ([]string, error) {
	args := m.Called(ctx, tenantID, identifier)
	return args.Get(0).([]string), args.Error(1)
}

type mockIdentificationCardService struct{ mock.Mock }

func (m *mockIdentificationCardService) Create(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req customerapp.CreateIdentificationCardRequest) (*customerapp.IdentificationCardResponse, error) {
	args := m.Called(ctx, tenantID, identifier, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerapp.IdentificationCardResponse), args.Error(1)
}

func (m *mockIdentificationCardService) List(ctx context.Context, tenantID uuid.UUID, identifier string) ([]customerapp.IdentificationCardResponse, error) {
	args := m.Called(ctx, tenantID, identifier)
	return args.Get(0).([]customerapp.IdentificationCardResponse), args.Error(1)
}

func (m *mockIdentificationCardService) Get(ctx context.Context, tenantID uuid.UUID, identifier, number string) (*customerapp.IdentificationCardResponse, error) {
	args := m.Called(ctx, tenantID, identifier, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerapp.IdentificationCardResponse), args.Error(1)
}

func (m *mockIdentificationCardService) Update(ctx context.Context, tenantID uuid.UUID, identifier, number string, actor uuid.UUID, req customerapp.UpdateIdentificationCardRequest) (*customerapp.IdentificationCardResponse, error) {
	args := m.Called(ctx, tenantID, identifier, number, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerapp.IdentificationCardResponse), args.Error(1)
}

func (m *mockIdentificationCardService) Delete(ctx context.Context, tenantID uuid.UUID, identifier, number string) error {
	return m.Called(ctx, tenantID, identifier, number).Error(0)
}

type mockTaskService struct{ mock.Mock }

func (m *mockTaskService) CreateDefinition(ctx context.Context, tenantID, actor uuid.UUID, req taskapp.CreateTaskDefinitionRequest) (*taskapp.TaskDefinitionResponse, error) {
	args := m.Called(ctx, tenantID, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskapp.TaskDefinitionResponse), args.Error(1)
}

func (m *mockTaskService) UpdateDefinition(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req taskapp.UpdateTaskDefinitionRequest) (*taskapp.TaskDefinitionResponse, error) {
	args := m.Called(ctx, tenantID, identifier, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskapp.TaskDefinitionResponse), args.Error(1)
}

func (m *mockTaskService) GetDefinition(ctx context.Context, tenantID uuid.UUID, identifier string) (*taskapp.TaskDefinitionResponse, error) {
	args := m.Called(ctx, tenantID, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskapp.TaskDefinitionResponse), args.Error(1)
}

func (m *mockTaskService) ListDefinitions(ctx context.Context, tenantID uuid.UUID) ([]taskapp.TaskDefinitionResponse, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]taskapp.TaskDefinitionResponse), args.Error(1)
}

func (m *mockTaskService) AddTaskToCustomer(ctx context.Context, tenantID uuid.UUID, customerIdentifier, taskIdentifier string) (*taskapp.CustomerTaskResponse, error) {
	args := m.Called(ctx, tenantID, customerIdentifier, taskIdentifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskapp.CustomerTaskResponse), args.Error(1)
}

func (m *mockTaskService) ExecuteTask(ctx context.Context, tenantID uuid.UUID, customerIdentifier, taskIdentifier string, actor uuid.UUID, comment string) (*taskapp.CustomerTaskResponse, error) {
	args := m.Called(ctx, tenantID, customerIdentifier, taskIdentifier, actor, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskapp.CustomerTaskResponse), args.Error(1)
}

func (m *mockTaskService) RemoveTaskFromCustomer(ctx context.Context, tenantID uuid.UUID, customerIdentifier, taskIdentifier string) error {
	return m.Called(ctx, tenantID, customerIdentifier, taskIdentifier).Error(0)
}

func (m *mockTaskService) ListTasksForCustomer(ctx context.Context, tenantID uuid.UUID, customerIdentifier string, includeExecuted bool) ([]taskapp.CustomerTaskResponse, error) {
	args := m.Called(ctx, tenantID, customerIdentifier, includeExecuted)
	return args.Get(0).([]taskapp.CustomerTaskResponse), args.Error(1)
}

type mockDocumentService struct{ mock.Mock }

func (m *mockDocumentService) Create(ctx context.Context, tenantID uuid.UUID, customerIdentifier string, actor uuid.UUID, req documentapp.CreateDocumentRequest) (*documentapp.DocumentResponse, error) {
	args := m.Called(ctx, tenantID, customerIdentifier, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.DocumentResponse), args.Error(1)
}

func (m *mockDocumentService) Change(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, actor uuid.UUID, req documentapp.ChangeDocumentRequest) (*documentapp.DocumentResponse, error) {
	args := m.Called(ctx, tenantID, customerIdentifier, identifier, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.DocumentResponse), args.Error(1)
}

func (m *mockDocumentService) Get(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string) (*documentapp.DocumentResponse, error) {
	args := m.Called(ctx, tenantID, customerIdentifier, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.DocumentResponse), args.Error(1)
}

func (m *mockDocumentService) List(ctx context.Context, tenantID uuid.UUID, customerIdentifier string) ([]documentapp.DocumentResponse, error) {
	args := m.Called(ctx, tenantID, customerIdentifier)
	return args.Get(0).([]documentapp.DocumentResponse), args.Error(1)
}

func (m *mockDocumentService) Delete(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string) error {
	return m.Called(ctx, tenantID, customerIdentifier, identifier).Error(0)
}

func (m *mockDocumentService) AddPage(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, pageNumber int, actor uuid.UUID, upload documentapp.PageUpload) (*documentapp.PageResponse, error) {
	args := m.Called(ctx, tenantID, customerIdentifier, identifier, pageNumber, actor, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.PageResponse), args.Error(1)
}

func (m *mockDocumentService) GetPage(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, pageNumber int) (*documentapp.PageImage, error) {
	args := m.Called(ctx, tenantID, customerIdentifier, identifier, pageNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.PageImage), args.Error(1)
}

func (m *mockDocumentService) ListPages(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string) ([]documentapp.PageResponse, error) {
	args := m.Called(ctx, tenantID, customerIdentifier, identifier)
	return args.Get(0).([]documentapp.PageResponse), args.Error(1)
}

func (m *mockDocumentService) DeletePage(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, pageNumber int) error {
	return m.Called(ctx, tenantID, customerIdentifier, identifier, pageNumber).Error(0)
}

func (m *mockDocumentService) Complete(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, actor uuid.UUID, completed bool) (*documentapp.DocumentResponse, error) {
	args := m.Called(ctx, tenantID, customerIdentifier, identifier, actor, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.DocumentResponse), args.Error(1)
}
