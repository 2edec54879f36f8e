package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jcastellanos/puntoventa-api/pkg/logger"
)

// Replayer sincroniza la cola local contra la API en orden de llegada, de a
// una operación por vez. Cada replay lleva la clave de idempotencia de la
// operación en el header Idempotency-Key: el servidor deduplica, así que un
// corte de red después de enviar y antes de recibir la respuesta no duplica
// la venta.
type Replayer struct {
	store  *Store
	client *resty.Client
	log    *logger.Logger
}

// NewReplayer construye el sincronizador contra baseURL con el Bearer token
// dado.
func NewReplayer(store *Store, baseURL, token string, log *logger.Logger) *Replayer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetTimeout(15 * time.Second)
	return &Replayer{store: store, client: client, log: log}
}

// SyncResult resume una pasada de sincronización.
type SyncResult struct {
	Synced int
	Failed int
}

// SyncAll drena la cola. Se detiene ante un fallo transitorio (red, 5xx o
// conflicto de replay) para no romper el orden FIFO; las operaciones
// rechazadas por el servidor (4xx) quedan marcadas como fallidas y no
// bloquean a las siguientes.
func (r *Replayer) SyncAll(ctx context.Context) (SyncResult, error) {
	var res SyncResult

	// Las operaciones que un corte anterior dejó en vuelo vuelven a la cola
	// antes de empezar; sin esto quedarían excluidas de todos los reintentos.
	recovered, err := r.store.RecoverInFlight(ctx)
	if err != nil {
		return res, err
	}
	if recovered > 0 {
		r.log.Warn().Int64("recovered", recovered).Msg("operaciones en vuelo devueltas a la cola")
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		op, err := r.store.NextPending(ctx)
		if err != nil {
			return res, err
		}
		if op == nil {
			return res, nil
		}
		if err := r.store.MarkSyncing(ctx, op.ID); err != nil {
			return res, err
		}

		resp, sendErr := r.send(ctx, op)
		switch {
		case sendErr != nil:
			// Sin red: la operación vuelve a la cola y la pasada termina.
			if err := r.store.MarkPending(ctx, op.ID, sendErr.Error()); err != nil {
				return res, err
			}
			r.log.Warn().Err(sendErr).Str("op_id", op.ID).Msg("sin conexión; sincronización detenida")
			return res, fmt.Errorf("enviar operación %s: %w", op.ID, sendErr)

		case resp.IsSuccess():
			if err := r.store.MarkSynced(ctx, op.ID); err != nil {
				return res, err
			}
			res.Synced++
			r.log.Info().Str("op_id", op.ID).Str("kind", op.Kind).Msg("operación sincronizada")

		case resp.StatusCode() >= 500 || resp.StatusCode() == 409:
			// Transitorio: se reintenta en la próxima pasada, en el mismo orden.
			detail := fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), resp.String())
			if err := r.store.MarkPending(ctx, op.ID, detail); err != nil {
				return res, err
			}
			r.log.Warn().Str("op_id", op.ID).Int("status", resp.StatusCode()).Msg("fallo transitorio; sincronización detenida")
			return res, fmt.Errorf("operación %s: %s", op.ID, detail)

		default:
			// Rechazo definitivo del servidor (validación, stock, etc.).
			detail := fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), resp.String())
			if err := r.store.MarkFailed(ctx, op.ID, detail); err != nil {
				return res, err
			}
			res.Failed++
			r.log.Error().Str("op_id", op.ID).Int("status", resp.StatusCode()).Msg("operación rechazada por el servidor")
		}
	}
}

func (r *Replayer) send(ctx context.Context, op *Operation) (*resty.Response, error) {
	req := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Idempotency-Key", op.IdempotencyKey).
		SetBody(op.Payload)

	switch op.Kind {
	case OpCreateSale:
		return req.Post("/sales")
	case OpCancelSale:
		var p CancelPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return nil, fmt.Errorf("payload de cancelación inválido: %w", err)
		}
		return req.Post("/sales/" + p.SaleID + "/cancel")
	case OpStockEntry:
		return req.Post("/stock/entries")
	default:
		return nil, fmt.Errorf("tipo de operación desconocido: %q", op.Kind)
	}
}
