package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-erp-fulfillment/internal/invoice"
	"github.com/ariefcatur/go-erp-fulfillment/internal/sequence"
	"github.com/ariefcatur/go-erp-fulfillment/internal/stock"
	"github.com/ariefcatur/go-erp-fulfillment/internal/store"
)

type Repo struct {
	DB  *pgxpool.Pool
	Seq *sequence.Allocator
}

// Process turns an invoice into a pending order. The invoice is locked,
// copied and deleted in one transaction, so it can only ever be
// consumed once; the order supersedes it as source of truth. No stock
// is touched here.
func (r *Repo) Process(ctx context.Context, invoiceID string) (Order, error) {
	// Allocated before the tx; a failed tx burns the number, which is
	// fine, codes may have gaps but never repeat.
	code, err := r.Seq.Next(ctx, sequence.NSOrder)
	if err != nil {
		return Order{}, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inv, err := invoice.FetchTx(ctx, tx, invoiceID)
	if err != nil {
		return Order{}, err
	}

	o := Order{
		ID:              uuid.NewString(),
		Code:            code,
		OwnerID:         inv.OwnerID,
		Lines:           inv.Lines,
		TotalCents:      inv.TotalCents,
		TaxCents:        inv.TaxCents,
		GrandTotalCents: inv.GrandTotalCents,
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(id, code, owner_id, total_cents, tax_cents, grand_total_cents, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.Code, o.OwnerID, o.TotalCents, o.TaxCents, o.GrandTotalCents, o.Status, o.CreatedAt); err != nil {
		return Order{}, err
	}
	for i, ln := range o.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, position, product_id, quantity, unit_price_cents, subtotal_cents)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, i, ln.ProductID, ln.Quantity, ln.UnitPriceCents, ln.SubtotalCents); err != nil {
			return Order{}, err
		}
	}

	if err := invoice.DeleteTx(ctx, tx, invoiceID); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Confirm applies every line decrement of a pending order in the order
// the lines were recorded, inside one transaction. Any shortfall rolls
// the whole thing back: the order stays pending and no quantity moved.
// A second confirm on a processed order fails on the status guard, so a
// double decrement is impossible. On success a customer stock-out
// documents the issuance and its code is stamped on the order.
func (r *Repo) Confirm(ctx context.Context, orderRef string) (Order, []Movement, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var o Order
	err = tx.QueryRow(ctx, `
		SELECT id, code, owner_id, total_cents, tax_cents, grand_total_cents, status, created_at
		FROM orders WHERE id=$1 OR code=$1
		FOR UPDATE`, orderRef).
		Scan(&o.ID, &o.Code, &o.OwnerID, &o.TotalCents, &o.TaxCents, &o.GrandTotalCents, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, nil, fmt.Errorf("order %s: %w", orderRef, store.ErrNotFound)
	}
	if err != nil {
		return Order{}, nil, err
	}
	if !CanTransition(o.Status, StatusProcessed) {
		return Order{}, nil, fmt.Errorf("order %s is %s: %w", o.Code, o.Status, store.ErrInvalidState)
	}

	o.Lines, err = fetchLines(ctx, tx, "order_lines", "order_id", o.ID)
	if err != nil {
		return Order{}, nil, err
	}

	// The allocator runs on its own pool connection, outside this tx;
	// a failed confirm burns the number, codes gap but never repeat.
	soCode, err := r.Seq.Next(ctx, sequence.NSStockOut)
	if err != nil {
		return Order{}, nil, err
	}

	movements := make([]Movement, 0, len(o.Lines))
	for _, ln := range o.Lines {
		remaining, err := stock.DecrementTx(ctx, tx, ln.ProductID, ln.Quantity)
		if err != nil {
			// roll back first: earlier decrements never become visible,
			// and the row lock must be gone before cancel touches it
			_ = tx.Rollback(ctx)
			var insErr *stock.InsufficientStockError
			if !errors.As(err, &insErr) && errors.Is(err, store.ErrNotFound) {
				// a line references a vanished product; the order can
				// never be fulfilled, park it in CANCELLED
				r.cancel(ctx, o.ID)
			}
			return Order{}, nil, err
		}
		movements = append(movements, Movement{ProductID: ln.ProductID, Quantity: ln.Quantity, Remaining: remaining})
	}

	so := StockOut{
		ID:         uuid.NewString(),
		Code:       soCode,
		Requester:  o.OwnerID,
		Kind:       KindCustomer,
		Lines:      o.Lines,
		TotalCents: o.TotalCents,
		Status:     StatusConfirmed,
		CreatedAt:  time.Now().UTC(),
	}
	now := time.Now().UTC()
	so.ConfirmedAt = &now
	if err := insertStockOutTx(ctx, tx, so); err != nil {
		return Order{}, nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, stock_ref_code=$3, processed_at=$4 WHERE id=$1`,
		o.ID, StatusProcessed, so.Code, now); err != nil {
		return Order{}, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, nil, err
	}

	o.Status = StatusProcessed
	o.StockRefCode = &so.Code
	o.ProcessedAt = &now
	return o, movements, nil
}

// cancel parks a pending order in its terminal failure state. Best
// effort: called after the confirm tx rolled back.
func (r *Repo) cancel(ctx context.Context, orderID string) {
	_, _ = r.DB.Exec(ctx, `
		UPDATE orders SET status=$2 WHERE id=$1 AND status=$3`,
		orderID, StatusCancelled, StatusPending)
}

// CreateStockOut registers an internal issuance in PENDING: line items
// come straight from the requester, priced from the products table.
func (r *Repo) CreateStockOut(ctx context.Context, requester string, items []ItemInput) (StockOut, error) {
	if requester == "" || len(items) == 0 {
		return StockOut{}, fmt.Errorf("requester and items required: %w", store.ErrValidation)
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return StockOut{}, fmt.Errorf("invalid quantity for product %s: %w", it.ProductID, store.ErrValidation)
		}
	}

	code, err := r.Seq.Next(ctx, sequence.NSStockOut)
	if err != nil {
		return StockOut{}, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return StockOut{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	so := StockOut{
		ID:        uuid.NewString(),
		Code:      code,
		Requester: requester,
		Kind:      KindInternal,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	for _, it := range items {
		var price int
		err := tx.QueryRow(ctx, `SELECT unit_price_cents FROM products WHERE id=$1`, it.ProductID).Scan(&price)
		if errors.Is(err, pgx.ErrNoRows) {
			return StockOut{}, fmt.Errorf("product %s: %w", it.ProductID, store.ErrNotFound)
		}
		if err != nil {
			return StockOut{}, err
		}
		sub := it.Quantity * price
		so.Lines = append(so.Lines, invoice.Line{ProductID: it.ProductID, Quantity: it.Quantity, UnitPriceCents: price, SubtotalCents: sub})
		so.TotalCents += sub
	}

	if err := insertStockOutTx(ctx, tx, so); err != nil {
		return StockOut{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return StockOut{}, err
	}
	return so, nil
}

// ConfirmStockOut mirrors Confirm without the invoice-to-order step:
// same status guard, same all-or-nothing decrement discipline.
func (r *Repo) ConfirmStockOut(ctx context.Context, ref string) (StockOut, []Movement, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return StockOut{}, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var so StockOut
	err = tx.QueryRow(ctx, `
		SELECT id, code, requester, kind, total_cents, status, created_at
		FROM stock_outs WHERE id=$1 OR code=$1
		FOR UPDATE`, ref).
		Scan(&so.ID, &so.Code, &so.Requester, &so.Kind, &so.TotalCents, &so.Status, &so.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockOut{}, nil, fmt.Errorf("stock-out %s: %w", ref, store.ErrNotFound)
	}
	if err != nil {
		return StockOut{}, nil, err
	}
	if !CanTransition(so.Status, StatusConfirmed) {
		return StockOut{}, nil, fmt.Errorf("stock-out %s is %s: %w", so.Code, so.Status, store.ErrInvalidState)
	}

	so.Lines, err = fetchLines(ctx, tx, "stock_out_lines", "stock_out_id", so.ID)
	if err != nil {
		return StockOut{}, nil, err
	}

	movements := make([]Movement, 0, len(so.Lines))
	for _, ln := range so.Lines {
		remaining, err := stock.DecrementTx(ctx, tx, ln.ProductID, ln.Quantity)
		if err != nil {
			return StockOut{}, nil, err
		}
		movements = append(movements, Movement{ProductID: ln.ProductID, Quantity: ln.Quantity, Remaining: remaining})
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		UPDATE stock_outs SET status=$2, confirmed_at=$3 WHERE id=$1`,
		so.ID, StatusConfirmed, now); err != nil {
		return StockOut{}, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return StockOut{}, nil, err
	}

	so.Status = StatusConfirmed
	so.ConfirmedAt = &now
	return so, movements, nil
}

func (r *Repo) GetOrder(ctx context.Context, ref string) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, code, owner_id, total_cents, tax_cents, grand_total_cents, status, stock_ref_code, created_at, processed_at
		FROM orders WHERE id=$1 OR code=$1`, ref).
		Scan(&o.ID, &o.Code, &o.OwnerID, &o.TotalCents, &o.TaxCents, &o.GrandTotalCents, &o.Status, &o.StockRefCode, &o.CreatedAt, &o.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("order %s: %w", ref, store.ErrNotFound)
	}
	if err != nil {
		return Order{}, err
	}
	o.Lines, err = fetchLines(ctx, r.DB, "order_lines", "order_id", o.ID)
	return o, err
}

func (r *Repo) GetStockOut(ctx context.Context, ref string) (StockOut, error) {
	var so StockOut
	err := r.DB.QueryRow(ctx, `
		SELECT id, code, requester, kind, total_cents, status, created_at, confirmed_at
		FROM stock_outs WHERE id=$1 OR code=$1`, ref).
		Scan(&so.ID, &so.Code, &so.Requester, &so.Kind, &so.TotalCents, &so.Status, &so.CreatedAt, &so.ConfirmedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockOut{}, fmt.Errorf("stock-out %s: %w", ref, store.ErrNotFound)
	}
	if err != nil {
		return StockOut{}, err
	}
	so.Lines, err = fetchLines(ctx, r.DB, "stock_out_lines", "stock_out_id", so.ID)
	return so, err
}

func insertStockOutTx(ctx context.Context, tx pgx.Tx, so StockOut) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_outs(id, code, requester, kind, total_cents, status, created_at, confirmed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		so.ID, so.Code, so.Requester, so.Kind, so.TotalCents, so.Status, so.CreatedAt, so.ConfirmedAt); err != nil {
		return err
	}
	for i, ln := range so.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_out_lines(stock_out_id, position, product_id, quantity, unit_price_cents, subtotal_cents)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			so.ID, i, ln.ProductID, ln.Quantity, ln.UnitPriceCents, ln.SubtotalCents); err != nil {
			return err
		}
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchLines(ctx context.Context, q querier, table, fk, id string) ([]invoice.Line, error) {
	rows, err := q.Query(ctx, `
		SELECT product_id, quantity, unit_price_cents, subtotal_cents
		FROM `+table+` WHERE `+fk+`=$1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []invoice.Line
	for rows.Next() {
		var ln invoice.Line
		if err := rows.Scan(&ln.ProductID, &ln.Quantity, &ln.UnitPriceCents, &ln.SubtotalCents); err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, rows.Err()
}
