package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jretamal/comanda-pos/internal/model"
)

// OrderRepo provides data access to the pedidos and pedido_items
// tables.  Orders and their items are written together: the full
// save path replaces the item set with delete-then-insert inside one
// transaction, and every order-row update is guarded on the status
// the caller read, so a concurrent status change (e.g. the kitchen
// delivering the order mid-edit) surfaces as ErrConflict instead of
// being overwritten.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the provided database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle for cross-repository transactions.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderColumns = `id, restaurant_id, channel, table_label, customer_name, customer_phone, customer_address,
	payment_method, subtotal, discount, tip, service_charge, packaging_charge, container_fee, tax, total,
	status, has_unsent_items, created_at, completed_at`

// Create inserts an order together with its items in one
// transaction.  IDs are generated by the application before calling,
// so no LAST_INSERT_ID round trips are needed.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO pedidos (id, restaurant_id, channel, table_label, customer_name, customer_phone, customer_address,
	           payment_method, subtotal, discount, tip, service_charge, packaging_charge, container_fee, tax, total,
	           status, has_unsent_items, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, q,
		o.ID, o.RestaurantID, o.Channel, o.TableLabel, o.CustomerName, o.CustomerPhone, o.CustomerAddress,
		o.PaymentMethod, o.Subtotal, o.Discount, o.Tip, o.ServiceCharge, o.PackagingCharge, o.ContainerFee, o.Tax, o.Total,
		o.Status, o.HasUnsentItems, o.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return err
	}
	if err := insertItemsTx(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertItemsTx bulk-inserts an order's items within the provided
// transaction.  Passing an empty slice has no effect and returns nil.
func insertItemsTx(ctx context.Context, tx *sql.Tx, orderID string, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO pedido_items (id, pedido_id, product_id, product_name, quantity, unit_price, addons, note, impreso, newly_added) VALUES `
	args := make([]interface{}, 0, len(items)*10)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		addons, err := json.Marshal(it.AddOns)
		if err != nil {
			return err
		}
		args = append(args, it.ID, orderID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, string(addons), it.Note, it.Printed, it.NewlyAdded)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var tableLabel, name, phone, address sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(&o.ID, &o.RestaurantID, &o.Channel, &tableLabel, &name, &phone, &address,
		&o.PaymentMethod, &o.Subtotal, &o.Discount, &o.Tip, &o.ServiceCharge, &o.PackagingCharge, &o.ContainerFee, &o.Tax, &o.Total,
		&o.Status, &o.HasUnsentItems, &o.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if tableLabel.Valid {
		o.TableLabel = &tableLabel.String
	}
	if name.Valid {
		o.CustomerName = &name.String
	}
	if phone.Valid {
		o.CustomerPhone = &phone.String
	}
	if address.Valid {
		o.CustomerAddress = &address.String
	}
	if completedAt.Valid {
		v := completedAt.Time
		o.CompletedAt = &v
	}
	return &o, nil
}

// GetByID loads an order and its items.  Returns ErrOrderNotFound
// when no order row matches.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM pedidos WHERE id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	const qItems = `SELECT id, pedido_id, product_id, product_name, quantity, unit_price, addons, note, impreso, newly_added
	                FROM pedido_items WHERE pedido_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, qItems, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		var addons string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &addons, &it.Note, &it.Printed, &it.NewlyAdded); err != nil {
			return nil, err
		}
		if addons != "" {
			if err := json.Unmarshal([]byte(addons), &it.AddOns); err != nil {
				return nil, err
			}
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrderStatus resolves just the status column.  found=false with
// a nil error means the order does not exist; this feeds the
// occupancy manager's inconsistency detection, which must tell a
// dangling reference apart from a store outage.
func (r *OrderRepo) GetOrderStatus(ctx context.Context, id string) (string, bool, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM pedidos WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

// UpdateStatusIf advances an order's status with a guard on the
// status the caller last read.  Zero matched rows means either the
// order vanished (ErrOrderNotFound) or another client changed the
// status first (ErrConflict); the caller must re-read and re-validate
// rather than overwrite.  completedAt is written for terminal states
// and ignored otherwise.
func (r *OrderRepo) UpdateStatusIf(ctx context.Context, id, fromStatus, toStatus string, completedAt *time.Time) error {
	var res sql.Result
	var err error
	if model.Terminal(toStatus) {
		at := time.Now().UTC()
		if completedAt != nil {
			at = completedAt.UTC()
		}
		const q = `UPDATE pedidos SET status = ?, completed_at = ? WHERE id = ? AND status = ?`
		res, err = r.db.ExecContext(ctx, q, toStatus, at.Format("2006-01-02 15:04:05"), id, fromStatus)
	} else {
		const q = `UPDATE pedidos SET status = ? WHERE id = ? AND status = ?`
		res, err = r.db.ExecContext(ctx, q, toStatus, id, fromStatus)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, found, err := r.GetOrderStatus(ctx, id); err != nil {
		return err
	} else if !found {
		return ErrOrderNotFound
	}
	return ErrConflict
}

// Save persists the order row and replaces its entire item set with
// delete-then-insert semantics, all in one transaction.  The order
// row update is guarded on expectedStatus (the status the edit
// session read); when another client advanced the order in the
// meantime the save fails with ErrConflict and nothing is written.
func (r *OrderRepo) Save(ctx context.Context, o *model.Order, expectedStatus string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var completedAt interface{}
	if o.CompletedAt != nil {
		completedAt = o.CompletedAt.UTC().Format("2006-01-02 15:04:05")
	}
	const q = `UPDATE pedidos SET channel = ?, table_label = ?, customer_name = ?, customer_phone = ?, customer_address = ?,
	           payment_method = ?, subtotal = ?, discount = ?, tip = ?, service_charge = ?, packaging_charge = ?,
	           container_fee = ?, tax = ?, total = ?, status = ?, has_unsent_items = ?, completed_at = ?
	           WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q,
		o.Channel, o.TableLabel, o.CustomerName, o.CustomerPhone, o.CustomerAddress,
		o.PaymentMethod, o.Subtotal, o.Discount, o.Tip, o.ServiceCharge, o.PackagingCharge,
		o.ContainerFee, o.Tax, o.Total, o.Status, o.HasUnsentItems, completedAt,
		o.ID, expectedStatus,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// The guard may have failed, or the row content was identical.
		// Re-check the status under the same transaction to decide.
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM pedidos WHERE id = ?`, o.ID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if current != expectedStatus {
			return ErrConflict
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pedido_items WHERE pedido_id = ?`, o.ID); err != nil {
		return err
	}
	if err := insertItemsTx(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// MarkItemsPrinted flips impreso on exactly the given item IDs of
// one order and refreshes the order's has_unsent_items flag from
// what actually remains unprinted, all in one transaction.  Passing
// no IDs is a no-op.
func (r *OrderRepo) MarkItemsPrinted(ctx context.Context, orderID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `UPDATE pedido_items SET impreso = TRUE WHERE pedido_id = ? AND id IN (`
	args := make([]interface{}, 0, len(itemIDs)+1)
	args = append(args, orderID)
	for i, id := range itemIDs {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += ")"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	const qFlag = `UPDATE pedidos SET has_unsent_items =
	               EXISTS (SELECT 1 FROM pedido_items WHERE pedido_id = ? AND impreso = FALSE)
	               WHERE id = ?`
	if _, err := tx.ExecContext(ctx, qFlag, orderID, orderID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
