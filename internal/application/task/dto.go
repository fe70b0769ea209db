package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/task"
)

// CreateTaskDefinitionRequest adds a definition to the catalog
type CreateTaskDefinitionRequest struct {
	Identifier       string   `json:"identifier" binding:"required,min=1,max=32"`
	Type             string   `json:"type" binding:"required,task_type"`
	Name             string   `json:"name" binding:"required,max=256"`
	Description      string   `json:"description" binding:"max=2048"`
	AssignedCommands []string `json:"assigned_commands" binding:"dive,lifecycle_action"`
	Mandatory        bool     `json:"mandatory"`
	Predefined       bool     `json:"predefined"`
}

// UpdateTaskDefinitionRequest replaces a definition. Identifier may be
// repeated but not changed.
type UpdateTaskDefinitionRequest struct {
	Identifier       string   `json:"identifier" binding:"omitempty,max=32"`
	Type             string   `json:"type" binding:"required,task_type"`
	Name             string   `json:"name" binding:"required,max=256"`
	Description      string   `json:"description" binding:"max=2048"`
	AssignedCommands []string `json:"assigned_commands" binding:"dive,lifecycle_action"`
	Mandatory        bool     `json:"mandatory"`
	Predefined       bool     `json:"predefined"`
}

// ExecuteTaskRequest executes an attached task
type ExecuteTaskRequest struct {
	Action  string `json:"action" binding:"required,oneof=EXECUTE execute"`
	Comment string `json:"comment" binding:"max=2048"`
}

// TaskDefinitionResponse is a catalog entry in API responses
type TaskDefinitionResponse struct {
	ID               uuid.UUID  `json:"id"`
	Identifier       string     `json:"identifier"`
	Type             string     `json:"type"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	AssignedCommands []string   `json:"assigned_commands"`
	Mandatory        bool       `json:"mandatory"`
	Predefined       bool       `json:"predefined"`
	CreatedBy        uuid.UUID  `json:"created_by"`
	CreatedOn        time.Time  `json:"created_on"`
	LastModifiedBy   *uuid.UUID `json:"last_modified_by,omitempty"`
	LastModifiedOn   *time.Time `json:"last_modified_on,omitempty"`
}

// CustomerTaskResponse is a task attached to a customer
type CustomerTaskResponse struct {
	ID               uuid.UUID  `json:"id"`
	TaskIdentifier   string     `json:"task_identifier"`
	Type             string     `json:"type"`
	Name             string     `json:"name"`
	Mandatory        bool       `json:"mandatory"`
	AssignedCommands []string   `json:"assigned_commands"`
	Comment          string     `json:"comment,omitempty"`
	CreatedOn        time.Time  `json:"created_on"`
	Executed         bool       `json:"executed"`
	ExecutedBy       *uuid.UUID `json:"executed_by,omitempty"`
	ExecutedOn       *time.Time `json:"executed_on,omitempty"`
}

func (r CreateTaskDefinitionRequest) spec() task.DefinitionSpec {
	return task.DefinitionSpec{
		Type:             task.Type(r.Type),
		Name:             r.Name,
		Description:      r.Description,
		AssignedCommands: toActions(r.AssignedCommands),
		Mandatory:        r.Mandatory,
		Predefined:       r.Predefined,
	}
}

func (r UpdateTaskDefinitionRequest) spec() task.DefinitionSpec {
	return task.DefinitionSpec{
		Type:             task.Type(r.Type),
		Name:             r.Name,
		Description:      r.Description,
		AssignedCommands: toActions(r.AssignedCommands),
		Mandatory:        r.Mandatory,
		Predefined:       r.Predefined,
	}
}

// toActions parses command names leniently; unknown names are kept so the
// domain rejects them with a precise message
func toActions(names []string) []customer.Action {
	actions := make([]customer.Action, 0, len(names))
	for _, n := range names {
		a, err := customer.ParseAction(n)
		if err != nil {
			a = customer.Action(n)
		}
		actions = append(actions, a)
	}
	return actions
}

func fromActions(actions []customer.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

// ToTaskDefinitionResponse converts a definition to its response DTO
func ToTaskDefinitionResponse(d *task.Definition) TaskDefinitionResponse {
	return TaskDefinitionResponse{
		ID:               d.ID,
		Identifier:       d.Identifier,
		Type:             string(d.Type),
		Name:             d.Name,
		Description:      d.Description,
		AssignedCommands: fromActions(d.AssignedCommands),
		Mandatory:        d.Mandatory,
		Predefined:       d.Predefined,
		CreatedBy:        d.CreatedBy,
		CreatedOn:        d.CreatedOn,
		LastModifiedBy:   d.LastModifiedBy,
		LastModifiedOn:   d.LastModifiedOn,
	}
}

// ToCustomerTaskResponse converts an assignment to its response DTO
func ToCustomerTaskResponse(a task.Assignment) CustomerTaskResponse {
	return CustomerTaskResponse{
		ID:               a.Instance.ID,
		TaskIdentifier:   a.Definition.Identifier,
		Type:             string(a.Definition.Type),
		Name:             a.Definition.Name,
		Mandatory:        a.Definition.Mandatory,
		AssignedCommands: fromActions(a.Definition.AssignedCommands),
		Comment:          a.Instance.Comment,
		CreatedOn:        a.Instance.CreatedOn,
		Executed:         !a.Instance.IsOpen(),
		ExecutedBy:       a.Instance.ExecutedBy,
		ExecutedOn:       a.Instance.ExecutedOn,
	}
}
