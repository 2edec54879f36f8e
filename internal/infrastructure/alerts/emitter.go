package alerts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	appsales "github.com/jcastellanos/puntoventa-api/internal/application/sales"
	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
	"github.com/jcastellanos/puntoventa-api/pkg/logger"
)

var _ appsales.AlertEmitter = (*Emitter)(nil)

// Emitter registra la alerta de stock bajo y encola el trabajo de
// notificación fuera de la transacción de venta. Cualquier fallo se registra
// en el log y se descarta: la venta ya está confirmada.
type Emitter struct {
	repo repository.AlertRepository
	log  *logger.Logger
}

func NewEmitter(repo repository.AlertRepository, log *logger.Logger) *Emitter {
	return &Emitter{repo: repo, log: log}
}

// lowStockPayload es el detalle que viaja en el trabajo encolado.
type lowStockPayload struct {
	ProductID string `json:"productId"`
	Stock     string `json:"stock"`
	MinStock  string `json:"minStock"`
}

// EmitLowStock crea la alerta (si no hay una sin resolver) y encola la
// notificación para el worker.
func (e *Emitter) EmitLowStock(ctx context.Context, companyID string, c appsales.ThresholdCrossing) {
	now := time.Now()
	alert := &entity.Alert{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Type:      entity.AlertLowStock,
		EntityID:  c.ProductID,
		Priority:  entity.AlertPriorityHigh,
		CreatedAt: now,
	}
	created, err := e.repo.CreateIfAbsent(ctx, alert)
	if err != nil {
		e.log.Error().Err(err).
			Str("productId", c.ProductID).
			Msg("No se pudo registrar la alerta de stock bajo")
		return
	}
	if !created {
		// Ya hay una alerta sin resolver para el producto.
		return
	}

	payload, err := json.Marshal(lowStockPayload{
		ProductID: c.ProductID,
		Stock:     c.Stock.String(),
		MinStock:  c.MinStock.String(),
	})
	if err != nil {
		e.log.Error().Err(err).Msg("No se pudo serializar el payload de la alerta")
		return
	}
	job := &entity.AlertJob{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Kind:      entity.AlertLowStock,
		EntityID:  c.ProductID,
		Payload:   payload,
		Status:    entity.AlertJobPending,
		CreatedAt: now,
	}
	if err := e.repo.Enqueue(ctx, job); err != nil {
		e.log.Error().Err(err).
			Str("productId", c.ProductID).
			Msg("No se pudo encolar la notificación de stock bajo")
		return
	}
	e.log.Info().
		Str("productId", c.ProductID).
		Str("stock", c.Stock.String()).
		Str("minStock", c.MinStock.String()).
		Msg("Alerta de stock bajo encolada")
}
