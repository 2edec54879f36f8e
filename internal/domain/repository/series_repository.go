package repository

import (
	"context"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
)

// IssuedNumber es el resultado de consumir un consecutivo de la serie.
type IssuedNumber struct {
	Number   int64
	Letter   string
	PadWidth int
}

// SeriesRepository define el puerto del asignador de numeración documental.
type SeriesRepository interface {
	// NextNumber incrementa y devuelve el consecutivo de la serie en una sola
	// operación atómica del almacén (upsert-increment). Debe ejecutarse sobre la
	// transacción de la venta que lo consume: si esa transacción aborta, el
	// incremento tampoco queda consumido. La serialización la da la base de
	// datos, nunca un lock en proceso.
	NextNumber(ctx context.Context, companyID, prefix string) (*IssuedNumber, error)
	Get(ctx context.Context, companyID, prefix string) (*entity.DocumentSeries, error)
}
