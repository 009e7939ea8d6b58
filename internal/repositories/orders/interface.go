package orders

import (
	"context"

	"github.com/dmitrijs2005/diner/internal/models"
)

// Repository describes the storage operations on Order rows, always scoped
// to one user.
type Repository interface {
	// Insert always creates a new row and returns its id.
	Insert(ctx context.Context, o *models.Order) (int64, error)

	// List returns the user's orders selected by f, newest first.
	List(ctx context.Context, userID int64, f models.Filter) ([]models.Order, error)

	// GetByID returns common.ErrorNotFound when the row is absent or owned by
	// another user.
	GetByID(ctx context.Context, userID, id int64) (*models.Order, error)

	// GetByMealID prefers the pending row and otherwise returns the most
	// recent submitted one.
	GetByMealID(ctx context.Context, userID int64, mealID string) (*models.Order, error)

	// GetPendingByMealID returns the single pending row for the meal.
	GetPendingByMealID(ctx context.Context, userID int64, mealID string) (*models.Order, error)

	// AddQuantity increases the quantity of a pending row.
	AddQuantity(ctx context.Context, userID, id int64, delta int, timestamp int64) (bool, error)

	// UpdateQuantity overwrites the quantity of one of the user's rows.
	UpdateQuantity(ctx context.Context, userID, id int64, quantity int, timestamp int64) (bool, error)

	// MarkSubmittedByIDs flags the given pending rows as submitted.
	MarkSubmittedByIDs(ctx context.Context, userID int64, ids []int64) (int64, error)

	// MarkAllSubmitted flags every pending row of the user as submitted.
	MarkAllSubmitted(ctx context.Context, userID int64) (int64, error)

	DeleteByID(ctx context.Context, userID, id int64) (bool, error)
	DeleteAll(ctx context.Context, userID int64) (int64, error)
}
