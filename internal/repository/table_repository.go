package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jretamal/comanda-pos/internal/model"
)

// TableRepo encapsulates database operations for the mesas table.
// It satisfies occupancy.TableStore: the occupy path is a single
// conditional UPDATE so two concurrent seatings can never both win —
// the losing statement simply matches zero rows.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo given a DB handle.
func NewTableRepo(db *sql.DB) *TableRepo {
	return &TableRepo{db: db}
}

const tableColumns = `id, room_id, label, status, active_order_id, staff_id, occupied_at, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (*model.Table, error) {
	var t model.Table
	var orderID sql.NullString
	var staffID sql.NullInt64
	var occupiedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.RoomID, &t.Label, &t.Status, &orderID, &staffID, &occupiedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if orderID.Valid {
		t.ActiveOrderID = &orderID.String
	}
	if staffID.Valid {
		v := uint64(staffID.Int64)
		t.StaffID = &v
	}
	if occupiedAt.Valid {
		v := occupiedAt.Time
		t.OccupiedAt = &v
	}
	return &t, nil
}

// Create inserts a new table in AVAILABLE state and reads the row
// back to populate ID and timestamps.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const qInsert = `INSERT INTO mesas (room_id, label, status) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, t.RoomID, t.Label, model.TableAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)

	got, err := r.GetTable(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

// GetTable retrieves a table by ID.  Returns ErrTableNotFound when
// no row matches.
func (r *TableRepo) GetTable(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM mesas WHERE id = ?`
	t, err := scanTable(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// FindByActiveOrder returns the table currently bound to the given
// order, or ErrTableNotFound when no table references it.  Used when
// closing an order to locate the seating to release.
func (r *TableRepo) FindByActiveOrder(ctx context.Context, orderID string) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM mesas WHERE active_order_id = ?`
	t, err := scanTable(r.db.QueryRowContext(ctx, q, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListByRoom returns all tables of a room ordered by label.
func (r *TableRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM mesas WHERE room_id = ? ORDER BY label`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// OccupyIfAvailable performs the atomic check-and-set for seating a
// table.  The status check and the write are one statement; when the
// table is not AVAILABLE at update time the statement matches zero
// rows and ok=false is returned without touching the row.  A missing
// table is reported as ErrTableNotFound rather than a silent false.
func (r *TableRepo) OccupyIfAvailable(ctx context.Context, tableID uint64, orderID string, staffID uint64, at time.Time) (bool, error) {
	const q = `UPDATE mesas
	           SET status = ?, active_order_id = ?, staff_id = ?, occupied_at = ?
	           WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q,
		model.TableOccupied, orderID, staffID, at.UTC().Format("2006-01-02 15:04:05"),
		tableID, model.TableAvailable,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	// Zero rows: either the table is occupied or it does not exist.
	if _, err := r.GetTable(ctx, tableID); err != nil {
		return false, err
	}
	return false, nil
}

// ReleaseTable frees a table unconditionally: status back to
// AVAILABLE with the order/staff references and occupancy timestamp
// cleared.  Releasing an already-available table is a no-op, which
// makes the force-release repair path idempotent.
func (r *TableRepo) ReleaseTable(ctx context.Context, tableID uint64) error {
	const q = `UPDATE mesas
	           SET status = ?, active_order_id = NULL, staff_id = NULL, occupied_at = NULL
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, model.TableAvailable, tableID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows both for a missing table and
		// for a table already in the released state; distinguish them.
		if _, err := r.GetTable(ctx, tableID); err != nil {
			return err
		}
	}
	return nil
}
