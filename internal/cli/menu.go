package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/diner/internal/catalog"
)

// Menu lists the categories, or the meals of the category given in args.
func (a *App) Menu(ctx context.Context, args []string) error {
	if len(args) == 0 {
		res := catalog.Await(catalog.Load(ctx, a.catalog.FetchCategories))
		if res.Status == catalog.StatusError {
			return errors.New(res.Message)
		}
		for _, c := range res.Data {
			a.say("  %-12s %s", c.Name, c.Description)
		}
		return nil
	}

	category := strings.Join(args, " ")
	res := catalog.Await(catalog.Load(ctx, func(ctx context.Context) ([]catalog.MealSummary, error) {
		return a.catalog.FetchMealsByCategory(ctx, category)
	}))
	if res.Status == catalog.StatusError {
		return errors.New(res.Message)
	}
	for _, m := range res.Data {
		a.say("  %-8s %s", m.ID, m.Name)
	}
	return nil
}

func (a *App) Meal(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage("meal <mealId>")
	}
	d, err := a.mealDetail(ctx, args[0])
	if err != nil {
		return err
	}

	a.say("%s (%s, %s)", d.Name, d.Category, d.Area)
	for _, ing := range d.Ingredients {
		a.say("  - %s %s", ing.Measure, ing.Name)
	}
	if d.Instructions != "" {
		a.say("%s", d.Instructions)
	}
	return nil
}

func (a *App) mealDetail(ctx context.Context, id string) (*catalog.MealDetail, error) {
	res := catalog.Await(catalog.Load(ctx, func(ctx context.Context) (*catalog.MealDetail, error) {
		return a.catalog.FetchMealDetail(ctx, id)
	}))
	if res.Status == catalog.StatusError {
		return nil, errors.New(res.Message)
	}
	return res.Data, nil
}
