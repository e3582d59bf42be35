package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-erp-fulfillment/internal/invoice"
	"github.com/ariefcatur/go-erp-fulfillment/internal/stock"
	"github.com/ariefcatur/go-erp-fulfillment/internal/store"
)

type Repo struct {
	DB        *pgxpool.Pool
	TaxRateBP int
}

// AddLine merges into the owner's open line for the product, or creates
// one. The merged quantity is validated against current on-hand stock;
// this is a read, not a hold — stock is only taken at confirm.
func (r *Repo) AddLine(ctx context.Context, ownerID, productID string, qty int) (Line, error) {
	if qty <= 0 {
		return Line{}, fmt.Errorf("quantity must be positive: %w", store.ErrValidation)
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Line{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var price, onHand int
	err = tx.QueryRow(ctx, `SELECT unit_price_cents, quantity_on_hand FROM products WHERE id=$1`, productID).
		Scan(&price, &onHand)
	if errors.Is(err, pgx.ErrNoRows) {
		return Line{}, fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	if err != nil {
		return Line{}, err
	}

	ln := Line{ID: uuid.NewString(), OwnerID: ownerID, ProductID: productID, UnitPriceCents: price}
	err = tx.QueryRow(ctx, `
		INSERT INTO cart_lines(id, owner_id, product_id, quantity, unit_price_cents)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (owner_id, product_id) WHERE invoice_id IS NULL
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity,
		              unit_price_cents = EXCLUDED.unit_price_cents,
		              updated_at = now()
		RETURNING id, quantity, created_at, updated_at`,
		ln.ID, ownerID, productID, qty, price).
		Scan(&ln.ID, &ln.Quantity, &ln.CreatedAt, &ln.UpdatedAt)
	if err != nil {
		return Line{}, err
	}

	if ln.Quantity > onHand {
		// rollback via defer; merged request exceeds what is on hand
		return Line{}, &stock.InsufficientStockError{ProductID: productID, Requested: ln.Quantity, Available: onHand}
	}
	ln.SubtotalCents = ln.Quantity * ln.UnitPriceCents

	if err := tx.Commit(ctx); err != nil {
		return Line{}, err
	}
	return ln, nil
}

func (r *Repo) UpdateQuantity(ctx context.Context, ownerID, lineID string, qty int) (Line, error) {
	if qty <= 0 {
		return Line{}, fmt.Errorf("quantity must be positive: %w", store.ErrValidation)
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Line{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ln Line
	var onHand int
	err = tx.QueryRow(ctx, `
		SELECT cl.id, cl.owner_id, cl.product_id, cl.unit_price_cents, cl.created_at, p.quantity_on_hand
		FROM cart_lines cl JOIN products p ON p.id = cl.product_id
		WHERE cl.id=$1 AND cl.owner_id=$2 AND cl.invoice_id IS NULL
		FOR UPDATE OF cl`, lineID, ownerID).
		Scan(&ln.ID, &ln.OwnerID, &ln.ProductID, &ln.UnitPriceCents, &ln.CreatedAt, &onHand)
	if errors.Is(err, pgx.ErrNoRows) {
		return Line{}, fmt.Errorf("cart line %s: %w", lineID, store.ErrNotFound)
	}
	if err != nil {
		return Line{}, err
	}

	if qty > onHand {
		return Line{}, &stock.InsufficientStockError{ProductID: ln.ProductID, Requested: qty, Available: onHand}
	}

	err = tx.QueryRow(ctx, `
		UPDATE cart_lines SET quantity=$2, updated_at=now()
		WHERE id=$1 RETURNING quantity, updated_at`, lineID, qty).
		Scan(&ln.Quantity, &ln.UpdatedAt)
	if err != nil {
		return Line{}, err
	}
	ln.SubtotalCents = ln.Quantity * ln.UnitPriceCents

	if err := tx.Commit(ctx); err != nil {
		return Line{}, err
	}
	return ln, nil
}

func (r *Repo) RemoveLine(ctx context.Context, ownerID, lineID string) error {
	ct, err := r.DB.Exec(ctx, `
		DELETE FROM cart_lines WHERE id=$1 AND owner_id=$2 AND invoice_id IS NULL`, lineID, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("cart line %s: %w", lineID, store.ErrNotFound)
	}
	return nil
}

func (r *Repo) ListOpen(ctx context.Context, ownerID string) ([]Line, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, owner_id, product_id, quantity, unit_price_cents, created_at, updated_at
		FROM cart_lines WHERE owner_id=$1 AND invoice_id IS NULL
		ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var ln Line
		if err := rows.Scan(&ln.ID, &ln.OwnerID, &ln.ProductID, &ln.Quantity, &ln.UnitPriceCents, &ln.CreatedAt, &ln.UpdatedAt); err != nil {
			return nil, err
		}
		ln.SubtotalCents = ln.Quantity * ln.UnitPriceCents
		out = append(out, ln)
	}
	return out, rows.Err()
}

// Checkout folds the owner's open lines into an invoice. The lines are
// locked FOR UPDATE first and committed by the exact ids read, so a
// line added concurrently lands in the next checkout instead of being
// silently swallowed by this one. Prices are re-read from products at
// fold time; the ledger itself is untouched.
func (r *Repo) Checkout(ctx context.Context, ownerID string) (invoice.Invoice, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return invoice.Invoice{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, product_id, quantity
		FROM cart_lines WHERE owner_id=$1 AND invoice_id IS NULL
		ORDER BY created_at
		FOR UPDATE`, ownerID)
	if err != nil {
		return invoice.Invoice{}, err
	}

	type open struct {
		id, productID string
		qty           int
	}
	var opens []open
	for rows.Next() {
		var o open
		if err := rows.Scan(&o.id, &o.productID, &o.qty); err != nil {
			rows.Close()
			return invoice.Invoice{}, err
		}
		opens = append(opens, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return invoice.Invoice{}, err
	}
	if len(opens) == 0 {
		return invoice.Invoice{}, store.ErrEmptyCart
	}

	lineIDs := make([]string, 0, len(opens))
	invLines := make([]invoice.Line, 0, len(opens))
	for _, o := range opens {
		var price int
		err := tx.QueryRow(ctx, `SELECT unit_price_cents FROM products WHERE id=$1`, o.productID).Scan(&price)
		if errors.Is(err, pgx.ErrNoRows) {
			return invoice.Invoice{}, fmt.Errorf("product %s: %w", o.productID, store.ErrNotFound)
		}
		if err != nil {
			return invoice.Invoice{}, err
		}
		lineIDs = append(lineIDs, o.id)
		invLines = append(invLines, invoice.Line{ProductID: o.productID, Quantity: o.qty, UnitPriceCents: price})
	}

	inv, err := invoice.InsertTx(ctx, tx, ownerID, invLines, r.TaxRateBP)
	if err != nil {
		return invoice.Invoice{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE cart_lines SET invoice_id=$1, updated_at=now() WHERE id = ANY($2)`,
		inv.ID, lineIDs); err != nil {
		return invoice.Invoice{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return invoice.Invoice{}, err
	}
	return inv, nil
}
