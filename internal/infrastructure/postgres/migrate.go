package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Migrate crea las tablas si no existen. Es idempotente.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// MigrateTx aplica el esquema en una sola transacción: o se crean todas las tablas o ninguna.
func MigrateTx(ctx context.Context, runner *TxRunner) error {
	return runner.Run(ctx, func(q Querier) error { return Migrate(ctx, q) })
}
