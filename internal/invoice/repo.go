package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-erp-fulfillment/internal/store"
)

type Repo struct {
	DB        *pgxpool.Pool
	TaxRateBP int
}

// CreateDirect builds an invoice from finance-entered lines, repricing
// every line from the products table. Client-sent prices are ignored.
func (r *Repo) CreateDirect(ctx context.Context, ownerID string, items []DirectItem) (Invoice, error) {
	if len(items) == 0 {
		return Invoice{}, fmt.Errorf("no lines: %w", store.ErrValidation)
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return Invoice{}, fmt.Errorf("invalid quantity for product %s: %w", it.ProductID, store.ErrValidation)
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Invoice{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines := make([]Line, 0, len(items))
	for _, it := range items {
		var price int
		err := tx.QueryRow(ctx, `SELECT unit_price_cents FROM products WHERE id=$1`, it.ProductID).Scan(&price)
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, fmt.Errorf("product %s: %w", it.ProductID, store.ErrNotFound)
		}
		if err != nil {
			return Invoice{}, err
		}
		lines = append(lines, Line{ProductID: it.ProductID, Quantity: it.Quantity, UnitPriceCents: price})
	}

	inv, err := InsertTx(ctx, tx, ownerID, lines, r.TaxRateBP)
	if err != nil {
		return Invoice{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

// InsertTx writes an invoice and its lines inside the caller's
// transaction. Checkout shares it so marking cart lines committed and
// creating the invoice commit together.
func InsertTx(ctx context.Context, tx pgx.Tx, ownerID string, lines []Line, taxRateBP int) (Invoice, error) {
	total, tax, grand := Totals(lines, taxRateBP)
	inv := Invoice{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Lines:           lines,
		TotalCents:      total,
		TaxCents:        tax,
		GrandTotalCents: grand,
		CreatedAt:       time.Now().UTC(),
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO invoices(id, owner_id, total_cents, tax_cents, grand_total_cents, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		inv.ID, inv.OwnerID, inv.TotalCents, inv.TaxCents, inv.GrandTotalCents, inv.CreatedAt); err != nil {
		return Invoice{}, err
	}
	for i, ln := range inv.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO invoice_lines(invoice_id, position, product_id, quantity, unit_price_cents, subtotal_cents)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			inv.ID, i, ln.ProductID, ln.Quantity, ln.UnitPriceCents, ln.SubtotalCents); err != nil {
			return Invoice{}, err
		}
	}
	return inv, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Invoice, error) {
	var inv Invoice
	err := r.DB.QueryRow(ctx, `
		SELECT id, owner_id, total_cents, tax_cents, grand_total_cents, created_at
		FROM invoices WHERE id=$1`, id).
		Scan(&inv.ID, &inv.OwnerID, &inv.TotalCents, &inv.TaxCents, &inv.GrandTotalCents, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, fmt.Errorf("invoice %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return Invoice{}, err
	}
	inv.Lines, err = fetchLines(ctx, r.DB, id)
	return inv, err
}

// FetchTx reads an invoice with its lines inside a transaction, locking
// the invoice row so a concurrent process() cannot consume it twice.
func FetchTx(ctx context.Context, tx pgx.Tx, id string) (Invoice, error) {
	var inv Invoice
	err := tx.QueryRow(ctx, `
		SELECT id, owner_id, total_cents, tax_cents, grand_total_cents, created_at
		FROM invoices WHERE id=$1 FOR UPDATE`, id).
		Scan(&inv.ID, &inv.OwnerID, &inv.TotalCents, &inv.TaxCents, &inv.GrandTotalCents, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, fmt.Errorf("invoice %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return Invoice{}, err
	}
	inv.Lines, err = fetchLines(ctx, tx, id)
	return inv, err
}

// DeleteTx removes a consumed invoice; the derived order supersedes it.
func DeleteTx(ctx context.Context, tx pgx.Tx, id string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id=$1`, id); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id=$1`, id)
	return err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchLines(ctx context.Context, q querier, invoiceID string) ([]Line, error) {
	rows, err := q.Query(ctx, `
		SELECT product_id, quantity, unit_price_cents, subtotal_cents
		FROM invoice_lines WHERE invoice_id=$1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var ln Line
		if err := rows.Scan(&ln.ProductID, &ln.Quantity, &ln.UnitPriceCents, &ln.SubtotalCents); err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, rows.Err()
}
