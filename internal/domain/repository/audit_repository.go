package repository

import (
	"context"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
)

// AuditRepository define el puerto del registro de auditoría.
type AuditRepository interface {
	Create(ctx context.Context, l *entity.AuditLog) error
}
