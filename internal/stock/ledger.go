// Package stock is the authoritative ledger for on-hand quantities.
// Decrement is the only mutation path the fulfillment pipeline uses and
// it is a single conditional update, so quantity never goes negative no
// matter how many confirms race on the same product.
package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-erp-fulfillment/internal/store"
)

type Product struct {
	ID             string
	SKU            string
	Name           string
	QuantityOnHand int
	ReorderLevel   int
	UnitCostCents  int
	UnitPriceCents int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InsufficientStockError names the offending product so callers can
// report which line failed, not just that something did.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type Ledger struct{ DB *pgxpool.Pool }

func (l *Ledger) Get(ctx context.Context, productID string) (Product, error) {
	var p Product
	err := l.DB.QueryRow(ctx, `
		SELECT id, sku, name, quantity_on_hand, reorder_level, unit_cost_cents, unit_price_cents, created_at, updated_at
		FROM products WHERE id=$1`, productID).
		Scan(&p.ID, &p.SKU, &p.Name, &p.QuantityOnHand, &p.ReorderLevel, &p.UnitCostCents, &p.UnitPriceCents, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (l *Ledger) List(ctx context.Context) ([]Product, error) {
	rows, err := l.DB.Query(ctx, `
		SELECT id, sku, name, quantity_on_hand, reorder_level, unit_cost_cents, unit_price_cents, created_at, updated_at
		FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.QuantityOnHand, &p.ReorderLevel, &p.UnitCostCents, &p.UnitPriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CheckAvailability is a plain read, not a hold. Stock is only taken at
// confirm time; between check and confirm another caller may win.
func (l *Ledger) CheckAvailability(ctx context.Context, productID string, qty int) (bool, error) {
	var onHand int
	err := l.DB.QueryRow(ctx, `SELECT quantity_on_hand FROM products WHERE id=$1`, productID).Scan(&onHand)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	if err != nil {
		return false, err
	}
	return onHand >= qty, nil
}

// Decrement takes qty from the product if and only if enough is on
// hand, as one conditional update. Zero rows matched means either the
// product is missing or the condition failed; we re-read once to tell
// the two apart for the error.
func (l *Ledger) Decrement(ctx context.Context, productID string, qty int) (newQty int, err error) {
	if qty <= 0 {
		return 0, fmt.Errorf("quantity must be positive: %w", store.ErrValidation)
	}
	err = l.DB.QueryRow(ctx, `
		UPDATE products SET quantity_on_hand = quantity_on_hand - $2, updated_at = now()
		WHERE id=$1 AND quantity_on_hand >= $2
		RETURNING quantity_on_hand`, productID, qty).Scan(&newQty)
	if errors.Is(err, pgx.ErrNoRows) {
		var onHand int
		err2 := l.DB.QueryRow(ctx, `SELECT quantity_on_hand FROM products WHERE id=$1`, productID).Scan(&onHand)
		if errors.Is(err2, pgx.ErrNoRows) {
			return 0, fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
		}
		if err2 != nil {
			return 0, err2
		}
		return 0, &InsufficientStockError{ProductID: productID, Requested: qty, Available: onHand}
	}
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

// DecrementTx is Decrement inside a caller-owned transaction, used by
// confirm to make multi-line takes all-or-nothing. FOR UPDATE serializes
// rivals on the same product row for the life of the tx.
func DecrementTx(ctx context.Context, tx pgx.Tx, productID string, qty int) (newQty int, err error) {
	var onHand int
	err = tx.QueryRow(ctx, `SELECT quantity_on_hand FROM products WHERE id=$1 FOR UPDATE`, productID).Scan(&onHand)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	if onHand < qty {
		return 0, &InsufficientStockError{ProductID: productID, Requested: qty, Available: onHand}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE products SET quantity_on_hand = quantity_on_hand - $2, updated_at = now()
		WHERE id=$1`, productID, qty); err != nil {
		return 0, err
	}
	return onHand - qty, nil
}
