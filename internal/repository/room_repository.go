package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error comparisons

	"github.com/jretamal/comanda-pos/internal/model"
)

// RoomRepo provides methods to create, list and retire rooms.  It
// embeds a database handle to perform queries and commands.
type RoomRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// DB exposes the underlying handle so callers can open transactions
// that span several repositories.
func (r *RoomRepo) DB() *sql.DB { return r.db }

// Create inserts a new room.  After insert the row is read back so
// the ID, active flag and timestamps are populated.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const qInsert = `INSERT INTO rooms (name, display_order) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, room.Name, room.DisplayOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)

	const qSelect = `SELECT id, name, display_order, active, created_at, updated_at FROM rooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, room.ID).
		Scan(&room.ID, &room.Name, &room.DisplayOrder, &room.Active, &room.CreatedAt, &room.UpdatedAt)
}

// GetByID retrieves a room by its ID.  It returns ErrRoomNotFound
// when no row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT id, name, display_order, active, created_at, updated_at FROM rooms WHERE id = ?`
	var room model.Room
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&room.ID, &room.Name, &room.DisplayOrder, &room.Active, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// List returns every room ordered for floor-plan display.  Archived
// rooms are included so the back office can restore them; callers
// filter on Active when rendering the floor plan.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT id, name, display_order, active, created_at, updated_at FROM rooms ORDER BY display_order, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Room
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.DisplayOrder, &room.Active, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// SetActive archives or restores a room.  Archiving keeps the row so
// historical orders can still reference its tables.
func (r *RoomRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	const q = `UPDATE rooms SET active = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete removes a room permanently.  A room that still owns tables
// cannot be hard-deleted; the attempt fails with ErrConflict and the
// caller should archive instead.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mesas WHERE room_id = ?`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
