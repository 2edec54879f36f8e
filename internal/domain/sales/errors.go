package sales

import "github.com/jcastellanos/puntoventa-api/internal/domain"

// ValidationError lleva el detalle de una validación fallida.
// errors.Is(err, domain.ErrInvalidInput) se cumple para poder mapearlo a 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == domain.ErrInvalidInput }

func errInvalid(reason string) error { return &ValidationError{Reason: reason} }
