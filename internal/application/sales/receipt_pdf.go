package sales

import (
	"context"

	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

// ReceiptPDFUseCase genera la representación imprimible de un recibo.
type ReceiptPDFUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	generator   ReceiptPDFGenerator
}

// NewReceiptPDFUseCase construye el caso de uso.
func NewReceiptPDFUseCase(saleRepo repository.SaleRepository, productRepo repository.ProductRepository, generator ReceiptPDFGenerator) *ReceiptPDFUseCase {
	return &ReceiptPDFUseCase{saleRepo: saleRepo, productRepo: productRepo, generator: generator}
}

// Generate devuelve los bytes del PDF del recibo.
func (uc *ReceiptPDFUseCase) Generate(ctx context.Context, companyID, saleID string) ([]byte, error) {
	sale, err := uc.saleRepo.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(sale.Items))
	for _, it := range sale.Items {
		product, err := uc.productRepo.GetByID(ctx, companyID, it.ProductID)
		if err != nil || product == nil {
			names[it.ProductID] = it.ProductID
			continue
		}
		names[it.ProductID] = product.Name
	}
	return uc.generator.GenerateReceipt(ctx, sale, names)
}
