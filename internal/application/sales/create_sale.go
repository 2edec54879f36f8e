package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcastellanos/puntoventa-api/internal/application/dto"
	"github.com/jcastellanos/puntoventa-api/internal/domain"
	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	domsales "github.com/jcastellanos/puntoventa-api/internal/domain/sales"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
	"github.com/jcastellanos/puntoventa-api/pkg/logger"
)

// Prefijo de serie por defecto; la letra y el relleno los define la serie del tenant.
const defaultSeriesPrefix = "FAC"

// CreateSaleUseCase es el coordinador de la transacción de venta: valida,
// descuenta stock, asigna el consecutivo, persiste venta + líneas + retención
// en una sola unidad atómica, y tras el commit emite las alertas detectadas.
type CreateSaleUseCase struct {
	txRunner    TxRunner
	saleRepo    repository.SaleRepository // atado al pool; relecturas de replay
	productRepo repository.ProductRepository
	taxRepo     repository.TaxRepository
	idem        IdempotencyStore // opcional: nil desactiva la deduplicación
	emitter     AlertEmitter
	log         *logger.Logger
}

// NewCreateSaleUseCase construye el coordinador.
func NewCreateSaleUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	taxRepo repository.TaxRepository,
	idem IdempotencyStore,
	emitter AlertEmitter,
	log *logger.Logger,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:    txRunner,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		taxRepo:     taxRepo,
		idem:        idem,
		emitter:     emitter,
		log:         log,
	}
}

// CreateSale ejecuta el pipeline completo. replayed=true indica que la clave
// de idempotencia ya estaba registrada y se devolvió la venta original sin
// volver a ejecutar nada.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, companyID, userID string, in dto.CreateSaleRequest) (resp *dto.SaleResponse, replayed bool, err error) {
	// 1) Validación de forma: líneas, montos y consistencia aritmética.
	// Todo error aquí corta antes de tocar stock o consecutivo.
	items := make([]*entity.SaleItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, &entity.SaleItem{
			ID:        uuid.New().String(),
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			LineTotal: domsales.LineTotal(it.Quantity, it.UnitPrice, it.Discount),
		})
	}
	if err := domsales.ValidateTotals(items, in.Subtotal, in.Discount, in.Tax, in.Total); err != nil {
		return nil, false, err
	}
	if err := domsales.ValidatePayment(in.PaymentMethod, in.AmountPaid, in.Change, in.Total); err != nil {
		return nil, false, err
	}

	// Producto desconocido o con id malformado es error de validación, no de
	// stock ni del codec de la base.
	for _, it := range items {
		if _, perr := uuid.Parse(it.ProductID); perr != nil {
			return nil, false, &domsales.ValidationError{Reason: "formato de producto inválido: " + it.ProductID}
		}
		product, err := uc.productRepo.GetByID(ctx, companyID, it.ProductID)
		if err != nil {
			return nil, false, fmt.Errorf("consultar producto %s: %w", it.ProductID, err)
		}
		if product == nil {
			return nil, false, &domsales.ValidationError{Reason: "producto desconocido: " + it.ProductID}
		}
	}

	// 2) Idempotencia. La clave se persiste con la propia venta, así que el
	// registro durable es primero: cubre el hueco entre commit y Complete y
	// los replays que llegan después del TTL del almacén en memoria.
	key := in.IdempotencyKey
	if key != "" {
		original, err := uc.saleRepo.GetByIdempotencyKey(ctx, companyID, key)
		if err != nil {
			return nil, false, fmt.Errorf("consultar clave de idempotencia persistida: %w", err)
		}
		if original != nil {
			return dto.NewSaleResponse(original), true, nil
		}
	}
	// Una clave reservada en el almacén pero sin completar es un replay en curso.
	if key != "" && uc.idem != nil {
		fresh, err := uc.idem.Reserve(ctx, companyID, key)
		if err != nil {
			// Sin almacén de idempotencia la venta sigue siendo válida; queda en
			// el log para diagnóstico.
			uc.log.Warn().Err(err).Str("key", key).Msg("reserva de idempotencia no disponible")
		} else if !fresh {
			saleID, found, err := uc.idem.Lookup(ctx, companyID, key)
			if err != nil {
				return nil, false, fmt.Errorf("consultar clave de idempotencia: %w", err)
			}
			if found && saleID != "" {
				original, err := uc.saleRepo.GetByID(ctx, companyID, saleID)
				if err != nil {
					return nil, false, fmt.Errorf("cargar venta original %s: %w", saleID, err)
				}
				return dto.NewSaleResponse(original), true, nil
			}
			return nil, false, domain.ErrReplayInProgress
		}
	}

	// Configuración fiscal: los errores de lectura se registran y se omite la
	// retención, no abortan la venta.
	taxConfigs, err := uc.taxRepo.ActiveConfigs(ctx, companyID)
	if err != nil {
		uc.log.Warn().Err(err).Str("company_id", companyID).Msg("configuración fiscal no disponible; venta sin retención")
		taxConfigs = nil
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		CustomerID:     in.CustomerID,
		UserID:         userID,
		Items:          items,
		Subtotal:       in.Subtotal,
		Discount:       in.Discount,
		Tax:            in.Tax,
		Total:          in.Total,
		PaymentMethod:  in.PaymentMethod,
		AmountPaid:     in.AmountPaid,
		Change:         in.Change,
		Status:         entity.SaleStatusCompleted,
		IdempotencyKey: key,
		CreatedAt:      now,
	}

	var crossings []ThresholdCrossing

	// 3..5) Unidad atómica: decrementos condicionales + consecutivo + venta +
	// líneas + retenciones. Cualquier error revierte todo, incluido el
	// incremento de la serie.
	err = uc.txRunner.Run(ctx, func(r TxRepos) error {
		for _, it := range items {
			change, err := r.Stock.DecrementIfAvailable(ctx, companyID, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if domsales.CrossedMinimum(change.Before, change.After, change.MinStock) {
				crossings = append(crossings, ThresholdCrossing{
					ProductID: it.ProductID,
					Stock:     change.After,
					MinStock:  change.MinStock,
				})
			}
			mov := &entity.StockMovement{
				ID:        uuid.New().String(),
				CompanyID: companyID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity.Neg(),
				Reason:    entity.MovementReasonSale,
				SaleID:    sale.ID,
				CreatedAt: now,
				CreatedBy: userID,
			}
			if err := r.Movements.Create(ctx, mov); err != nil {
				return err
			}
		}

		issued, err := r.Series.NextNumber(ctx, companyID, defaultSeriesPrefix)
		if err != nil {
			return err
		}
		sale.ReceiptNumber = domsales.FormatReceiptNumber(defaultSeriesPrefix, issued.Letter, issued.PadWidth, issued.Number)

		if err := r.Sales.Create(ctx, sale); err != nil {
			return err
		}
		for _, it := range items {
			it.SaleID = sale.ID
			if err := r.Sales.CreateItem(ctx, it); err != nil {
				return err
			}
		}

		for _, cfg := range taxConfigs {
			ret := &entity.TaxRetention{
				ID:             uuid.New().String(),
				CompanyID:      companyID,
				EntityID:       sale.ID,
				EntityType:     "sale",
				TaxType:        cfg.TaxType,
				BaseAmount:     sale.Subtotal,
				RetainedAmount: domsales.RetainedAmount(sale.Subtotal, cfg.Rate),
				CreatedAt:      now,
			}
			if err := r.Tax.CreateRetention(ctx, ret); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if key != "" && uc.idem != nil {
			if rerr := uc.idem.Release(ctx, companyID, key); rerr != nil {
				uc.log.Warn().Err(rerr).Str("key", key).Msg("no se pudo liberar la clave de idempotencia")
			}
		}
		return nil, false, err
	}

	if key != "" && uc.idem != nil {
		if cerr := uc.idem.Complete(ctx, companyID, key, sale.ID); cerr != nil {
			uc.log.Warn().Err(cerr).Str("key", key).Msg("no se pudo completar la clave de idempotencia")
		}
	}

	// 6) Fuera de la unidad atómica: alertas de umbral. El emisor registra y
	// traga sus propios fallos.
	for _, c := range crossings {
		uc.emitter.EmitLowStock(ctx, companyID, c)
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("receipt", sale.ReceiptNumber).
		Str("company_id", companyID).
		Int("items", len(items)).
		Msg("venta registrada")

	return dto.NewSaleResponse(sale), false, nil
}
