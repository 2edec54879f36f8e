package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appsales "github.com/jcastellanos/puntoventa-api/internal/application/sales"
)

// pendingMarker se guarda al reservar la clave, antes de conocer el id de la
// venta. Lookup lo traduce a "en curso".
const pendingMarker = "__pending__"

var _ appsales.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore implementa el registro de claves de idempotencia sobre
// Redis. La reserva usa SetNX para que ante dos replays simultáneos con la
// misma clave solo uno ejecute la venta.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store. ttl acota la vida de las claves
// completadas; un replay posterior al vencimiento crearía una venta nueva,
// por lo que debe superar con holgura la ventana de sincronización offline.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) key(companyID, key string) string {
	return fmt.Sprintf("idem:%s:%s", companyID, key)
}

// Reserve intenta tomar la clave. Devuelve false si ya estaba tomada.
func (s *IdempotencyStore) Reserve(ctx context.Context, companyID, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(companyID, key), pendingMarker, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency reserve: %w", err)
	}
	return ok, nil
}

// Lookup devuelve el sale id asociado a la clave, si existe.
func (s *IdempotencyStore) Lookup(ctx context.Context, companyID, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(companyID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	if val == pendingMarker {
		return "", true, nil
	}
	return val, true, nil
}

// Complete asocia la clave con la venta confirmada.
func (s *IdempotencyStore) Complete(ctx context.Context, companyID, key, saleID string) error {
	if err := s.client.Set(ctx, s.key(companyID, key), saleID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release borra la reserva para que un reintento pueda volver a ejecutar la
// venta tras un rollback.
func (s *IdempotencyStore) Release(ctx context.Context, companyID, key string) error {
	if err := s.client.Del(ctx, s.key(companyID, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}
