// Package catalog describes the meal catalog the cart draws its meal ids
// and names from, wrapped in a tri-state Resource for the shell.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned for unknown categories and meals.
var ErrNotFound = errors.New("catalog item not found")

// MaxIngredients is the number of ingredient/measure slots a meal has.
const MaxIngredients = 20

type Category struct {
	Name         string
	ThumbnailURL string
	Description  string
}

type MealSummary struct {
	ID           string
	Name         string
	ThumbnailURL string
}

type Ingredient struct {
	Name    string
	Measure string
}

type MealDetail struct {
	ID           string
	Name         string
	Category     string
	Area         string
	Instructions string
	ThumbnailURL string
	Ingredients  []Ingredient
}

// DataSource is the read-only catalog.
type DataSource interface {
	FetchCategories(ctx context.Context) ([]Category, error)
	FetchMealsByCategory(ctx context.Context, category string) ([]MealSummary, error)
	FetchMealDetail(ctx context.Context, id string) (*MealDetail, error)
}

// Status is the state of a Resource.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "loading"
	}
}

// DefaultErrorMessage is used when a fetch fails without a message.
const DefaultErrorMessage = "An unexpected error occurred"

// Resource is a fetch result: Loading, Success with Data, or Error with Message.
type Resource[T any] struct {
	Status  Status
	Data    T
	Message string
}

func Loading[T any]() Resource[T] { return Resource[T]{Status: StatusLoading} }

func Success[T any](data T) Resource[T] { return Resource[T]{Status: StatusSuccess, Data: data} }

func Failure[T any](err error) Resource[T] {
	msg := DefaultErrorMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Resource[T]{Status: StatusError, Message: msg}
}

// Load emits Loading, then Success or Error, and closes the channel.
func Load[T any](ctx context.Context, fetch func(ctx context.Context) (T, error)) <-chan Resource[T] {
	out := make(chan Resource[T], 2)
	go func() {
		defer close(out)
		out <- Loading[T]()
		v, err := fetch(ctx)
		if err != nil {
			out <- Failure[T](err)
			return
		}
		out <- Success(v)
	}()
	return out
}

// Await drains a Load channel and returns its final state.
func Await[T any](ch <-chan Resource[T]) Resource[T] {
	var last Resource[T]
	for r := range ch {
		last = r
	}
	return last
}
