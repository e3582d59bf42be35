// Package sequence mints the human-readable codes used across the ERP
// (order numbers, stock-out numbers, user and employee codes). Every
// namespace is a single row in the sequences table and every allocation
// is one atomic upsert-increment, so two concurrent calls can never
// observe the same value.
package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Namespace couples a counter key with its formatting rule. Width is a
// fixed agreement between the allocator and the call site, never
// inferred from data.
type Namespace struct {
	Name   string
	Prefix string
	Width  int
}

// Counter namespaces in use. Adding one here is the only supported way
// to introduce a new code scheme.
var (
	NSOrder    = Namespace{Name: "order", Prefix: "ORD-", Width: 4}
	NSStockOut = Namespace{Name: "stockout", Prefix: "SO-", Width: 4}
	NSUser     = Namespace{Name: "user", Prefix: "USR-", Width: 4}
	NSEmployee = Namespace{Name: "employee", Prefix: "EMP-", Width: 3}
)

type Allocator struct{ DB *pgxpool.Pool }

// Next increments the namespace's counter and returns the formatted
// code. The row is created at value 1 on first use. The increment and
// read are one statement; if it fails the caller gets an error, never a
// code fabricated from a stale read.
func (a *Allocator) Next(ctx context.Context, ns Namespace) (string, error) {
	var v int64
	err := a.DB.QueryRow(ctx, `
		INSERT INTO sequences(namespace, prefix, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (namespace) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, ns.Name, ns.Prefix).Scan(&v)
	if err != nil {
		return "", fmt.Errorf("allocate %s: %w", ns.Name, err)
	}
	return Format(ns, v), nil
}

// Format renders prefix + zero-padded value. Values wider than Width
// simply grow; they are never truncated.
func Format(ns Namespace, value int64) string {
	return fmt.Sprintf("%s%0*d", ns.Prefix, ns.Width, value)
}
