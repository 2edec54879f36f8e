package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jcastellanos/puntoventa-api/internal/domain"
	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

var _ repository.SeriesRepository = (*SeriesRepo)(nil)

// SeriesRepo implementa SeriesRepository sobre PostgreSQL (usable con pool o tx).
type SeriesRepo struct {
	q Querier
}

// NewSeriesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSeriesRepository(q Querier) *SeriesRepo {
	return &SeriesRepo{q: q}
}

// NextNumber consume el siguiente consecutivo de la serie en una sola
// sentencia atómica: el upsert-increment serializa a los llamadores
// concurrentes en la fila de la serie (lock de fila de PostgreSQL), sin locks
// en proceso. Ejecutado dentro de la tx de la venta, un abort revierte también
// el incremento, así no quedan huecos permanentes.
func (r *SeriesRepo) NextNumber(ctx context.Context, companyID, prefix string) (*repository.IssuedNumber, error) {
	const q = `
		INSERT INTO document_series (company_id, prefix, current_number, last_issued_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (company_id, prefix)
		DO UPDATE SET current_number = document_series.current_number + 1, last_issued_at = now()
		RETURNING current_number, letter, pad_width`
	var issued repository.IssuedNumber
	err := r.q.QueryRow(ctx, q, companyID, prefix).Scan(&issued.Number, &issued.Letter, &issued.PadWidth)
	if err != nil {
		return nil, fmt.Errorf("next number %s/%s: %w", companyID, prefix, err)
	}
	return &issued, nil
}

// Get devuelve la serie sin consumir consecutivo.
func (r *SeriesRepo) Get(ctx context.Context, companyID, prefix string) (*entity.DocumentSeries, error) {
	const q = `
		SELECT company_id, prefix, letter, pad_width, current_number, COALESCE(last_issued_at, 'epoch')
		FROM document_series WHERE company_id = $1 AND prefix = $2`
	var s entity.DocumentSeries
	err := r.q.QueryRow(ctx, q, companyID, prefix).Scan(
		&s.CompanyID, &s.Prefix, &s.Letter, &s.PadWidth, &s.CurrentNumber, &s.LastIssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSeriesNotFound
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	return &s, nil
}
