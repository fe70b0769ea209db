package persistence

import (
	"errors"

	"github.com/microfinance/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM errors to domain errors naming the resource.
// It relies on gorm.Config.TranslateError for duplicated keys.
func translateError(err error, resource, identifier string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NotFound(resource, identifier)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.AlreadyExists(resource, identifier)
	default:
		return err
	}
}
