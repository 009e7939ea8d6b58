package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/diner/internal/common"
	"github.com/dmitrijs2005/diner/internal/dbx"
	"github.com/dmitrijs2005/diner/internal/models"
)

const selectColumns = `id, meal_id, meal_name, quantity, timestamp, submitted, user_id`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, o *models.Order) (int64, error) {
	query := `INSERT INTO orders (meal_id, meal_name, quantity, timestamp, submitted, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, o.MealID, o.MealName, o.Quantity, o.Timestamp, o.Submitted, o.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) List(ctx context.Context, userID int64, f models.Filter) ([]models.Order, error) {
	query := `SELECT ` + selectColumns + ` FROM orders WHERE user_id = ?`
	switch f {
	case models.FilterPending:
		query += ` AND submitted = 0`
	case models.FilterSubmitted:
		query += ` AND submitted = 1`
	}
	query += ` ORDER BY timestamp DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}
	defer rows.Close()

	result := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, userID, id int64) (*models.Order, error) {
	query := `SELECT ` + selectColumns + ` FROM orders WHERE id = ? AND user_id = ?`
	return r.getOne(ctx, query, id, userID)
}

func (r *SQLiteRepository) GetByMealID(ctx context.Context, userID int64, mealID string) (*models.Order, error) {
	query := `SELECT ` + selectColumns + ` FROM orders WHERE user_id = ? AND meal_id = ?
		ORDER BY submitted ASC, timestamp DESC, id DESC LIMIT 1`
	return r.getOne(ctx, query, userID, mealID)
}

func (r *SQLiteRepository) GetPendingByMealID(ctx context.Context, userID int64, mealID string) (*models.Order, error) {
	query := `SELECT ` + selectColumns + ` FROM orders WHERE user_id = ? AND meal_id = ? AND submitted = 0
		ORDER BY id ASC LIMIT 1`
	return r.getOne(ctx, query, userID, mealID)
}

func (r *SQLiteRepository) AddQuantity(ctx context.Context, userID, id int64, delta int, timestamp int64) (bool, error) {
	query := `UPDATE orders SET quantity = quantity + ?, timestamp = ? WHERE id = ? AND user_id = ? AND submitted = 0`
	return r.execOne(ctx, "add quantity", query, delta, timestamp, id, userID)
}

func (r *SQLiteRepository) UpdateQuantity(ctx context.Context, userID, id int64, quantity int, timestamp int64) (bool, error) {
	query := `UPDATE orders SET quantity = ?, timestamp = ? WHERE id = ? AND user_id = ?`
	return r.execOne(ctx, "update quantity", query, quantity, timestamp, id, userID)
}

func (r *SQLiteRepository) MarkSubmittedByIDs(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	query := `UPDATE orders SET submitted = 1 WHERE user_id = ? AND submitted = 0 AND id IN (` + placeholders + `)`
	return r.execCount(ctx, "submit orders", query, args...)
}

func (r *SQLiteRepository) MarkAllSubmitted(ctx context.Context, userID int64) (int64, error) {
	query := `UPDATE orders SET submitted = 1 WHERE user_id = ? AND submitted = 0`
	return r.execCount(ctx, "submit pending orders", query, userID)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, userID, id int64) (bool, error) {
	return r.execOne(ctx, "delete order", `DELETE FROM orders WHERE id = ? AND user_id = ?`, id, userID)
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	return r.execCount(ctx, "delete orders", `DELETE FROM orders WHERE user_id = ?`, userID)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, args ...any) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *SQLiteRepository) execOne(ctx context.Context, what, query string, args ...any) (bool, error) {
	n, err := r.execCount(ctx, what, query, args...)
	return n > 0, err
}

func (r *SQLiteRepository) execCount(ctx context.Context, what, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", what, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*models.Order, error) {
	var o models.Order
	if err := s.Scan(&o.ID, &o.MealID, &o.MealName, &o.Quantity, &o.Timestamp, &o.Submitted, &o.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}
