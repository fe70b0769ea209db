package task

import (
	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
)

// SelectPredefined returns the definitions that attach when fired fires
func SelectPredefined(defs []Definition, fired customer.Action) []Definition {
	selected := make([]Definition, 0)
	for i := range defs {
		if defs[i].AttachesOn(fired) {
			selected = append(selected, defs[i])
		}
	}
	return selected
}

// OpenMandatory returns the open assignments whose mandatory definition
// gates the given command
func OpenMandatory(assignments []Assignment, gated customer.Action) []Assignment {
	blocking := make([]Assignment, 0)
	for _, a := range assignments {
		if a.Instance.IsOpen() && a.Definition.Gates(gated) {
			blocking = append(blocking, a)
		}
	}
	return blocking
}

// HasOpen reports whether the customer already has an open instance of the definition
func HasOpen(instances []Instance, definitionID uuid.UUID) bool {
	for i := range instances {
		if instances[i].DefinitionID == definitionID && instances[i].IsOpen() {
			return true
		}
	}
	return false
}

// ExecutionContext carries what type-specific preconditions inspect
type ExecutionContext struct {
	Actor               uuid.UUID
	Customer            *customer.Customer
	IdentificationCards int64
}

type precondition func(ec ExecutionContext) error

var preconditions = map[Type]precondition{
	TypeIDCard:   requireIdentificationCard,
	TypeFourEyes: requireSecondPerson,
}

// CheckPrecondition applies the execution precondition of the definition's
// type. CUSTOM tasks have none.
func CheckPrecondition(def *Definition, ec ExecutionContext) error {
	check, ok := preconditions[def.Type]
	if !ok {
		return nil
	}
	return check(ec)
}

func requireIdentificationCard(ec ExecutionContext) error {
	if ec.IdentificationCards < 1 {
		return shared.NewDomainError(CodePreconditionFailed,
			"customer "+ec.Customer.Identifier+" has no identification card on file")
	}
	return nil
}

func requireSecondPerson(ec ExecutionContext) error {
	c := ec.Customer
	if ec.Actor == c.CreatedBy {
		return shared.NewDomainError(CodePreconditionFailed,
			"four eyes task cannot be executed by the creator of customer "+c.Identifier)
	}
	if c.AssignedEmployee != nil && ec.Actor == *c.AssignedEmployee {
		return shared.NewDomainError(CodePreconditionFailed,
			"four eyes task cannot be executed by the employee assigned to customer "+c.Identifier)
	}
	return nil
}
