package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/models"
)

const bookingColumns = `id, item_id, item_name, booker_id, booker_name, start_at, end_at, status, created_at, updated_at`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (item_id, item_name, booker_id, booker_name, start_at, end_at, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := db.nowUTC()
	result, err := db.ExecContext(ctx, query,
		booking.ItemID,
		booking.ItemName,
		booking.BookerID,
		booking.BookerName,
		booking.Start.UTC(),
		booking.End.UTC(),
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOnNoRows(err, "booking %d", id)
	}
	return booking, nil
}

// DecideBooking moves a WAITING booking to its terminal status. The
// status guard in the WHERE clause makes the check-then-set atomic:
// of two racing approvals exactly one updates a row, the other sees
// zero rows affected.
func (db *DB) DecideBooking(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, db.nowUTC(), id, models.StatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to decide booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.InvalidArgumentf("booking %d is already decided", id)
	}
	return nil
}

func (db *DB) GetBookingsByBooker(ctx context.Context, bookerID int64, f domain.BookingFilter) ([]*models.Booking, error) {
	where, args := stateClause(f, "")
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE booker_id = ?` + where + `
              ORDER BY start_at DESC LIMIT ? OFFSET ?`
	args = append([]any{bookerID}, append(args, f.Limit, f.Offset)...)
	return db.queryBookings(ctx, query, args...)
}

func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64, f domain.BookingFilter) ([]*models.Booking, error) {
	where, args := stateClause(f, "b.")
	query := `SELECT b.id, b.item_id, b.item_name, b.booker_id, b.booker_name, b.start_at, b.end_at, b.status, b.created_at, b.updated_at
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ?` + where + `
              ORDER BY b.start_at DESC LIMIT ? OFFSET ?`
	args = append([]any{ownerID}, append(args, f.Limit, f.Offset)...)
	return db.queryBookings(ctx, query, args...)
}

// stateClause builds the extra WHERE conditions for a filter state,
// prefixing column names with col for joined queries. The state string
// is validated by the service before it gets here; unknown values fall
// through to no extra condition.
func stateClause(f domain.BookingFilter, col string) (string, []any) {
	now := f.Now.UTC()
	switch f.State {
	case models.StateCurrent:
		return ` AND ` + col + `start_at <= ? AND ` + col + `end_at >= ?`, []any{now, now}
	case models.StatePast:
		return ` AND ` + col + `end_at < ?`, []any{now}
	case models.StateFuture:
		return ` AND ` + col + `start_at > ?`, []any{now}
	case models.StateWaiting:
		return ` AND ` + col + `status = ?`, []any{models.StatusWaiting}
	case models.StateRejected:
		return ` AND ` + col + `status = ?`, []any{models.StatusRejected}
	default:
		return ``, nil
	}
}

func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingInfo, error) {
	query := `SELECT id, booker_id, start_at, end_at FROM bookings
              WHERE item_id = ? AND status = ? AND end_at < ?
              ORDER BY end_at DESC LIMIT 1`
	return db.queryBookingInfo(ctx, query, itemID, models.StatusApproved, now.UTC())
}

func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingInfo, error) {
	query := `SELECT id, booker_id, start_at, end_at FROM bookings
              WHERE item_id = ? AND status = ? AND start_at > ?
              ORDER BY start_at ASC LIMIT 1`
	return db.queryBookingInfo(ctx, query, itemID, models.StatusApproved, now.UTC())
}

func (db *DB) HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	query := `SELECT EXISTS(
                SELECT 1 FROM bookings
                WHERE item_id = ? AND booker_id = ? AND status = ? AND end_at < ?)`
	var exists bool
	err := db.QueryRowContext(ctx, query, itemID, bookerID, models.StatusApproved, now.UTC()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return exists, nil
}

func (db *DB) GetBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE start_at >= ? AND start_at <= ?
              ORDER BY start_at`
	return db.queryBookings(ctx, query, from.UTC(), to.UTC())
}

func (db *DB) queryBookingInfo(ctx context.Context, query string, args ...any) (*models.BookingInfo, error) {
	var info models.BookingInfo
	err := db.QueryRowContext(ctx, query, args...).Scan(&info.ID, &info.BookerID, &info.Start, &info.End)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query booking info: %w", err)
	}
	return &info, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.ItemID, &b.ItemName, &b.BookerID, &b.BookerName,
		&b.Start, &b.End, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
