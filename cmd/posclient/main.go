// posclient es el cliente de mostrador sin conexión: encola ventas,
// cancelaciones y entradas de stock en una base SQLite local y las sincroniza
// contra la API cuando hay red.
//
// Uso:
//
//	posclient enqueue <create_sale|cancel_sale|stock_entry> <payload.json>
//	posclient sync
//	posclient list [pending|syncing|synced|failed]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jcastellanos/puntoventa-api/internal/offline"
	"github.com/jcastellanos/puntoventa-api/pkg/config"
	"github.com/jcastellanos/puntoventa-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("cargar configuración: %v", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	store, err := offline.OpenStore(cfg.Offline.DBPath)
	if err != nil {
		fatal("%v", err)
	}
	defer store.Close()

	ctx := context.Background()
	switch os.Args[1] {
	case "enqueue":
		if len(os.Args) != 4 {
			usage()
			os.Exit(2)
		}
		runEnqueue(ctx, store, os.Args[2], os.Args[3])
	case "sync":
		runSync(ctx, store, cfg, log)
	case "list":
		state := ""
		if len(os.Args) > 2 {
			state = os.Args[2]
		}
		runList(ctx, store, state)
	default:
		usage()
		os.Exit(2)
	}
}

func runEnqueue(ctx context.Context, store *offline.Store, kind, payloadPath string) {
	raw, err := os.ReadFile(payloadPath)
	if err != nil {
		fatal("leer payload: %v", err)
	}
	var payload json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		fatal("payload no es JSON válido: %v", err)
	}
	op, err := offline.NewOperation(kind, payload)
	if err != nil {
		fatal("%v", err)
	}
	if err := store.Enqueue(ctx, op); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("encolada %s %s (clave %s)\n", op.Kind, op.ID, op.IdempotencyKey)
}

func runSync(ctx context.Context, store *offline.Store, cfg *config.Config, log *logger.Logger) {
	replayer := offline.NewReplayer(store, cfg.Offline.ServerURL, cfg.Offline.Token, log)
	res, err := replayer.SyncAll(ctx)
	fmt.Printf("sincronizadas: %d, rechazadas: %d\n", res.Synced, res.Failed)
	if err != nil {
		fatal("sincronización interrumpida: %v", err)
	}
}

func runList(ctx context.Context, store *offline.Store, state string) {
	ops, err := store.List(ctx, state)
	if err != nil {
		fatal("%v", err)
	}
	if len(ops) == 0 {
		fmt.Println("cola vacía")
		return
	}
	for _, op := range ops {
		line := fmt.Sprintf("%s  %-12s %-8s intentos=%d  %s",
			op.CreatedAt.Format("2006-01-02 15:04:05"), op.Kind, op.State, op.Attempts, op.ID)
		if op.LastError != "" {
			line += "  último error: " + op.LastError
		}
		fmt.Println(line)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `uso:
  posclient enqueue <create_sale|cancel_sale|stock_entry> <payload.json>
  posclient sync
  posclient list [pending|syncing|synced|failed]`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
