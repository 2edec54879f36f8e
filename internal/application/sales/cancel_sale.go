package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/pkg/logger"
)

// CancelSaleUseCase es el compensador: una transacción nueva que revierte el
// efecto de stock de una venta confirmada y elimina sus registros. No es un
// rollback de la venta original; el consecutivo ya emitido nunca se reutiliza.
type CancelSaleUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewCancelSaleUseCase construye el compensador.
func NewCancelSaleUseCase(txRunner TxRunner, log *logger.Logger) *CancelSaleUseCase {
	return &CancelSaleUseCase{txRunner: txRunner, log: log}
}

// Cancel revierte la venta: repone stock por línea (motivo "cancellation"),
// elimina retenciones, líneas y cabecera, y deja el registro de auditoría.
// Devuelve ErrNotFound si la venta no existe. No se reintenta ante fallo de
// infraestructura; el caller decide.
func (uc *CancelSaleUseCase) Cancel(ctx context.Context, companyID, userID, saleID, reason string) error {
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		// Bloquea la venta para que cancelación y otras mutaciones sobre las
		// mismas filas no se pisen.
		sale, err := r.Sales.GetForUpdate(ctx, companyID, saleID)
		if err != nil {
			return err
		}
		items, err := r.Sales.GetItems(ctx, saleID)
		if err != nil {
			return err
		}

		now := time.Now()
		for _, it := range items {
			if _, err := r.Stock.Increment(ctx, companyID, it.ProductID, it.Quantity); err != nil {
				return err
			}
			mov := &entity.StockMovement{
				ID:        uuid.New().String(),
				CompanyID: companyID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Reason:    entity.MovementReasonCancellation,
				SaleID:    saleID,
				CreatedAt: now,
				CreatedBy: userID,
			}
			if err := r.Movements.Create(ctx, mov); err != nil {
				return err
			}
		}

		if err := r.Tax.DeleteByEntity(ctx, saleID); err != nil {
			return err
		}
		if err := r.Sales.DeleteItems(ctx, saleID); err != nil {
			return err
		}
		if err := r.Sales.Delete(ctx, companyID, saleID); err != nil {
			return err
		}

		audit := &entity.AuditLog{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			Action:    entity.AuditSaleCancelled,
			EntityID:  saleID,
			Detail:    fmt.Sprintf("recibo %s revertido: %s", sale.ReceiptNumber, reason),
			CreatedAt: now,
			CreatedBy: userID,
		}
		return r.Audit.Create(ctx, audit)
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Str("sale_id", saleID).
		Str("company_id", companyID).
		Str("reason", reason).
		Msg("venta cancelada")
	return nil
}
