package offline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pending_operations (
    id              TEXT PRIMARY KEY,
    kind            TEXT NOT NULL,
    payload         BLOB NOT NULL,
    idempotency_key TEXT NOT NULL,
    state           TEXT NOT NULL DEFAULT 'pending',
    attempts        INTEGER NOT NULL DEFAULT 0,
    last_error      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMP NOT NULL,
    synced_at       TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_pending_state ON pending_operations (state, created_at);
`

// Store persiste la cola de operaciones en SQLite.
type Store struct {
	db *sqlx.DB
}

// OpenStore abre (o crea) la base local y aplica el esquema.
func OpenStore(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir cola offline: %w", err)
	}
	// La cola la consume un solo replayer; una conexión evita SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("aplicar esquema offline: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Enqueue agrega la operación al final de la cola.
func (s *Store) Enqueue(ctx context.Context, op *Operation) error {
	const q = `
		INSERT INTO pending_operations
		    (id, kind, payload, idempotency_key, state, attempts, last_error, created_at)
		VALUES (:id, :kind, :payload, :idempotency_key, :state, :attempts, :last_error, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, q, op); err != nil {
		return fmt.Errorf("encolar operación: %w", err)
	}
	return nil
}

// NextPending devuelve la operación pendiente más antigua, o nil si no hay.
func (s *Store) NextPending(ctx context.Context) (*Operation, error) {
	const q = `
		SELECT * FROM pending_operations
		WHERE state = 'pending'
		ORDER BY created_at, id
		LIMIT 1`
	var op Operation
	err := s.db.GetContext(ctx, &op, q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("leer cola offline: %w", err)
	}
	return &op, nil
}

// MarkSyncing marca la operación en vuelo y cuenta el intento.
func (s *Store) MarkSyncing(ctx context.Context, id string) error {
	return s.setState(ctx, id, `UPDATE pending_operations SET state = 'syncing', attempts = attempts + 1 WHERE id = ?`)
}

// MarkSynced marca la operación como confirmada por el servidor.
func (s *Store) MarkSynced(ctx context.Context, id string) error {
	return s.setState(ctx, id, `UPDATE pending_operations SET state = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`)
}

// MarkPending devuelve la operación a la cola (fallo transitorio).
func (s *Store) MarkPending(ctx context.Context, id, lastError string) error {
	const q = `UPDATE pending_operations SET state = 'pending', last_error = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, lastError, id); err != nil {
		return fmt.Errorf("reencolar operación %s: %w", id, err)
	}
	return nil
}

// RecoverInFlight devuelve a la cola las operaciones que quedaron en 'syncing'
// por un corte del cliente a mitad de una pasada. El reenvío es seguro: cada
// operación conserva su clave de idempotencia y el servidor deduplica.
func (s *Store) RecoverInFlight(ctx context.Context) (int64, error) {
	const q = `UPDATE pending_operations SET state = 'pending' WHERE state = 'syncing'`
	res, err := s.db.ExecContext(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("recuperar operaciones en vuelo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("recuperar operaciones en vuelo: %w", err)
	}
	return n, nil
}

// MarkFailed marca la operación como rechazada definitivamente (error 4xx).
func (s *Store) MarkFailed(ctx context.Context, id, lastError string) error {
	const q = `UPDATE pending_operations SET state = 'failed', last_error = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, lastError, id); err != nil {
		return fmt.Errorf("marcar fallo de operación %s: %w", id, err)
	}
	return nil
}

func (s *Store) setState(ctx context.Context, id, q string) error {
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("actualizar operación %s: %w", id, err)
	}
	return nil
}

// List devuelve las operaciones en el estado dado ("" = todas), de la más
// antigua a la más nueva.
func (s *Store) List(ctx context.Context, state string) ([]*Operation, error) {
	var (
		ops []*Operation
		err error
	)
	if state == "" {
		err = s.db.SelectContext(ctx, &ops, `SELECT * FROM pending_operations ORDER BY created_at, id`)
	} else {
		err = s.db.SelectContext(ctx, &ops, `SELECT * FROM pending_operations WHERE state = ? ORDER BY created_at, id`, state)
	}
	if err != nil {
		return nil, fmt.Errorf("listar operaciones: %w", err)
	}
	return ops, nil
}
