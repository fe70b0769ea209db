package handler

import (
	"context"

	"github.com/google/uuid"
	customerapp "github.com/microfinance/backend/internal/application/customer"
	documentapp "github.com/microfinance/backend/internal/application/document"
	taskapp "github.com/microfinance/backend/internal/application/task"
)

// CustomerService is the customer use case surface the handlers need
type CustomerService interface {
	Create(ctx context.Context, tenantID, actor uuid.UUID, req customerapp.CreateCustomerRequest) (*customerapp.CustomerResponse, error)
	Get(ctx context.Context, tenantID uuid.UUID, identifier string) (*customerapp.CustomerResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter customerapp.CustomerListFilter) ([]customerapp.CustomerResponse, int64, error)
	Update(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req customerapp.UpdateCustomerRequest) (*customerapp.CustomerResponse, error)
}

// LifecycleService executes lifecycle commands
type LifecycleService interface {
	ExecuteCommand(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req customerapp.ExecuteCommandRequest) (*customerapp.CommandResult, error)
	ListCommands(ctx context.Context, tenantID uuid.UUID, identifier string) ([]customerapp.CommandResponse, error)
	AvailableActions(ctx context.Context, tenantID uuid.UUID, identifier string) ([]string, error)
}

// IdentificationCardService manages customer identification cards
type IdentificationCardService interface {
	Create(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req customerapp.CreateIdentificationCardRequest) (*customerapp.IdentificationCardResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, identifier string) ([]customerapp.IdentificationCardResponse, error)
	Get(ctx context.Context, tenantID uuid.UUID, identifier, number string) (*customerapp.IdentificationCardResponse, error)
	Update(ctx context.Context, tenantID uuid.UUID, identifier, number string, actor uuid.UUID, req customerapp.UpdateIdentificationCardRequest) (*customerapp.IdentificationCardResponse, error)
	Delete(ctx context.Context, tenantID uuid.UUID, identifier, number string) error
}

// TaskService manages the task catalog and customer task instances
type TaskService interface {
	CreateDefinition(ctx context.Context, tenantID, actor uuid.UUID, req taskapp.CreateTaskDefinitionRequest) (*taskapp.TaskDefinitionResponse, error)
	UpdateDefinition(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req taskapp.UpdateTaskDefinitionRequest) (*taskapp.TaskDefinitionResponse, error)
	GetDefinition(ctx context.Context, tenantID uuid.UUID, identifier string) (*taskapp.TaskDefinitionResponse, error)
	ListDefinitions(ctx context.Context, tenantID uuid.UUID) ([]taskapp.TaskDefinitionResponse, error)
	AddTaskToCustomer(ctx context.Context, tenantID uuid.UUID, customerIdentifier, taskIdentifier string) (*taskapp.CustomerTaskResponse, error)
	ExecuteTask(ctx context.Context, tenantID uuid.UUID, customerIdentifier, taskIdentifier string, actor uuid.UUID, comment string) (*taskapp.CustomerTaskResponse, error)
	RemoveTaskFromCustomer(ctx context.Context, tenantID uuid.UUID, customerIdentifier, taskIdentifier string) error
	ListTasksForCustomer(ctx context.Context, tenantID uuid.UUID, customerIdentifier string, includeExecuted bool) ([]taskapp.CustomerTaskResponse, error)
}

// DocumentService manages customer documents and their pages
type DocumentService interface {
	Create(ctx context.Context, tenantID uuid.UUID, customerIdentifier string, actor uuid.UUID, req documentapp.CreateDocumentRequest) (*documentapp.DocumentResponse, error)
	Change(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, actor uuid.UUID, req documentapp.ChangeDocumentRequest) (*documentapp.DocumentResponse, error)
	Get(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string) (*documentapp.DocumentResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, customerIdentifier string) ([]documentapp.DocumentResponse, error)
	Delete(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string) error
	AddPage(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, pageNumber int, actor uuid.UUID, upload documentapp.PageUpload) (*documentapp.PageResponse, error)
	GetPage(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, pageNumber int) (*documentapp.PageImage, error)
	ListPages(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string) ([]documentapp.PageResponse, error)
	DeletePage(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, pageNumber int) error
	Complete(ctx context.Context, tenantID uuid.UUID, customerIdentifier, identifier string, actor uuid.UUID, completed bool) (*documentapp.DocumentResponse, error)
}

var (
	_ CustomerService           = (*customerapp.CustomerService)(nil)
	_ LifecycleService          = (*customerapp.LifecycleService)(nil)
	_ IdentificationCardService = (*customerapp.IdentificationCardService)(nil)
	_ TaskService               = (*taskapp.TaskService)(nil)
	_ DocumentService           = (*documentapp.DocumentService)(nil)
)
