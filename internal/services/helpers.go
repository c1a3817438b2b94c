package services

import (
	"errors"
	"fmt"

	"invoicehub/internal/invoicing"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/storage"
)

// isValidInvoiceStatusTransition checks if moving from current to next status is allowed.
// Staying in the same status is always allowed.
func isValidInvoiceStatusTransition(current, next models.InvoiceStatus) bool {
	if current == next {
		return true
	}
	switch current {
	case models.InvoiceStatusPending:
		return next == models.InvoiceStatusPaid
	case models.InvoiceStatusPaid:
		return false // No way back from PAID
	default:
		return false
	}
}

// MapRepoError maps storage errors to service errors
func MapRepoError(err error, operation string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}
	if errors.Is(err, storage.ErrDuplicateEmail) {
		return fmt.Errorf("%w: %s (duplicate email)", ErrConflict, operation)
	}
	if errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("%w: %s (%v)", ErrConflict, operation, err)
	}
	if errors.Is(err, storage.ErrOutOfRange) {
		verr := invoicing.NewValidationError()
		verr.Add("request", "a numeric value is out of range")
		return fmt.Errorf("%w: %w", ErrValidation, verr)
	}
	log := logger.WithComponent("services")
	log.Error().Err(err).Str("operation", operation).Msg("Unexpected repository error")
	return fmt.Errorf("internal error during %s: %w", operation, err)
}

// validate runs v over s and wraps field failures so that both ErrValidation and
// *invoicing.ValidationError match.
func validate(v *invoicing.Validator, s interface{}) error {
	if err := v.Struct(s); err != nil {
		return validationFailed(err)
	}
	return nil
}

func validationFailed(err error) error {
	var verr *invoicing.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%w: %w", ErrValidation, verr)
	}
	return fmt.Errorf("validate request: %w", err)
}
