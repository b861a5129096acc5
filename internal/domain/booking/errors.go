package booking

import "github.com/novy-stil/service-atelier/pkg/domain"

// Booking failures. Compare with errors.Is.
var (
	ErrInvalidDateRange = &domain.DomainError{
		Code:    domain.CodeValidation,
		Message: "date_to must not be earlier than date_from",
	}
	ErrResourceNotFound = &domain.DomainError{
		Code:    domain.CodeNotFound,
		Message: "costume not found",
	}
	ErrResourceUnavailable = &domain.DomainError{
		Code:    domain.CodeValidation,
		Message: "costume is not available for booking",
	}
	ErrBookingConflict = &domain.DomainError{
		Code:    domain.CodeConflict,
		Message: "selected dates are not available for this costume",
	}
	ErrNotFound = &domain.DomainError{
		Code:    domain.CodeNotFound,
		Message: "booking not found",
	}
)
