package task

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Type selects the execution precondition of a task
type Type string

const (
	TypeCustom   Type = "CUSTOM"
	TypeIDCard   Type = "ID_CARD"
	TypeFourEyes Type = "FOUR_EYES"
)

// ParseType resolves a task type case-insensitively
func ParseType(name string) (Type, error) {
	t := Type(cases.Upper(language.Und).String(strings.TrimSpace(name)))
	switch t {
	case TypeCustom, TypeIDCard, TypeFourEyes:
		return t, nil
	}
	return "", shared.NewDomainError(shared.CodeInvalidInput, "unknown task type: "+name)
}

// Definition is a reusable catalog rule describing which lifecycle
// commands it gates and whether it attaches itself automatically
type Definition struct {
	shared.TenantAggregateRoot
	shared.AuditInfo
	Identifier       string
	Type             Type
	Name             string
	Description      string
	AssignedCommands []customer.Action
	Mandatory        bool
	Predefined       bool
}

// DefinitionSpec holds the mutable attributes of a definition
type DefinitionSpec struct {
	Type             Type
	Name             string
	Description      string
	AssignedCommands []customer.Action
	Mandatory        bool
	Predefined       bool
}

// NewDefinition creates a catalog entry
func NewDefinition(tenantID uuid.UUID, identifier string, spec DefinitionSpec, actor uuid.UUID) (*Definition, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "task identifier cannot be empty")
	}
	if len(identifier) > 32 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "task identifier cannot exceed 32 characters")
	}

	d := &Definition{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AuditInfo:           shared.NewAuditInfo(actor),
		Identifier:          identifier,
	}
	if err := d.apply(spec); err != nil {
		return nil, err
	}

	d.AddDomainEvent(NewDefinitionEvent(EventTypeTaskDefinitionCreated, d))
	return d, nil
}

// Update replaces the mutable attributes. The identifier never changes.
func (d *Definition) Update(spec DefinitionSpec, actor uuid.UUID) error {
	if err := d.apply(spec); err != nil {
		return err
	}
	d.Touch(actor)
	d.AddDomainEvent(NewDefinitionEvent(EventTypeTaskDefinitionUpdated, d))
	return nil
}

func (d *Definition) apply(spec DefinitionSpec) error {
	taskType, err := ParseType(string(spec.Type))
	if err != nil {
		return err
	}
	if strings.TrimSpace(spec.Name) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "task name cannot be empty")
	}

	commands := make([]customer.Action, 0, len(spec.AssignedCommands))
	for _, a := range spec.AssignedCommands {
		if !a.IsValid() {
			return shared.NewDomainError(shared.CodeInvalidInput, "unknown assigned command: "+string(a))
		}
		if !slices.Contains(commands, a) {
			commands = append(commands, a)
		}
	}

	d.Type = taskType
	d.Name = strings.TrimSpace(spec.Name)
	d.Description = spec.Description
	d.AssignedCommands = commands
	d.Mandatory = spec.Mandatory
	d.Predefined = spec.Predefined
	return nil
}

// IsAssignedTo reports whether the definition reacts to action
func (d *Definition) IsAssignedTo(action customer.Action) bool {
	return slices.Contains(d.AssignedCommands, action)
}

// Gates reports whether an open instance of this definition blocks action
func (d *Definition) Gates(action customer.Action) bool {
	return d.Mandatory && d.IsAssignedTo(action)
}

// AttachesOn reports whether firing action auto-attaches this definition
func (d *Definition) AttachesOn(action customer.Action) bool {
	return d.Predefined && d.IsAssignedTo(action)
}
