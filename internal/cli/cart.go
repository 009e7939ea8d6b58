package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/diner/internal/models"
	"github.com/dmitrijs2005/diner/internal/payment"
)

func (a *App) mealAndQuantity(ctx context.Context, args []string, syntax string) (mealID, name string, qty int, err error) {
	if len(args) < 1 || len(args) > 2 {
		return "", "", 0, errUsage(syntax)
	}
	qty = 1
	if len(args) == 2 {
		if qty, err = parseQuantity(args[1]); err != nil {
			return "", "", 0, err
		}
	}
	d, err := a.mealDetail(ctx, args[0])
	if err != nil {
		return "", "", 0, err
	}
	return d.ID, d.Name, qty, nil
}

// Add puts a meal in the cart, merging with a pending line of the same meal.
func (a *App) Add(ctx context.Context, args []string) error {
	mealID, name, qty, err := a.mealAndQuantity(ctx, args, "add <mealId> [qty]")
	if err != nil {
		return err
	}

	a.cart.AddOrUpdateOrder(ctx, mealID, name, qty)
	if err := a.cartError(); err != nil {
		return err
	}
	select {
	case id := <-a.placed:
		a.say("Added %d x %s to the cart (order #%d)", qty, name, id)
	default:
		a.say("Added %d x %s to the cart", qty, name)
	}
	return nil
}

// Order adds a separate cart line even when the meal is already pending.
func (a *App) Order(ctx context.Context, args []string) error {
	mealID, name, qty, err := a.mealAndQuantity(ctx, args, "order <mealId> [qty]")
	if err != nil {
		return err
	}

	a.cart.PlaceOrder(ctx, mealID, name, qty)
	if err := a.cartError(); err != nil {
		return err
	}
	a.say("Ordered %d x %s", qty, name)
	return nil
}

func (a *App) Cart(ctx context.Context) error {
	return a.printOrders(ctx, models.FilterPending, "Your cart is empty")
}

func (a *App) History(ctx context.Context) error {
	return a.printOrders(ctx, models.FilterSubmitted, "No submitted orders yet")
}

func (a *App) printOrders(ctx context.Context, f models.Filter, empty string) error {
	list := a.orders.List(ctx, f)
	if len(list) == 0 {
		a.say("%s", empty)
		return nil
	}
	items := 0
	for _, o := range list {
		a.say("%s", formatOrder(o))
		items += o.Quantity
	}
	a.say("  %d line(s), %d item(s)", len(list), items)
	return nil
}

func (a *App) Qty(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage("qty <orderId> <quantity>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}

	a.cart.UpdateQuantity(ctx, id, qty)
	if err := a.cartError(); err != nil {
		return err
	}
	a.say("Order #%d now has quantity %d", id, qty)
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage("remove <orderId>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a.cart.DeleteOrder(ctx, id)
	if err := a.cartError(); err != nil {
		return err
	}
	a.say("Removed order #%d", id)
	return nil
}

// Clear deletes every order of the current user, history included, after confirmation.
func (a *App) Clear(ctx context.Context) error {
	if !Confirm(a.reader, "Delete all orders, including history?", a.out) {
		a.say("Nothing deleted")
		return nil
	}
	a.cart.ClearAll(ctx)
	if err := a.cartError(); err != nil {
		return err
	}
	a.say("All orders deleted")
	return nil
}

// Submit submits the listed order ids, or every pending line when none are given.
func (a *App) Submit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.cart.SubmitAllPending(ctx)
	} else {
		ids := make([]int64, 0, len(args))
		for _, s := range args {
			id, err := parseID(s)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		a.cart.SubmitOrdersByIDs(ctx, ids)
	}
	if err := a.cartError(); err != nil {
		return err
	}
	a.say("Submitted")
	return nil
}

// Checkout validates card details and submits the pending lines shown to the user.
func (a *App) Checkout(ctx context.Context) error {
	pending := a.orders.List(ctx, models.FilterPending)
	if len(pending) == 0 {
		a.say("Your cart is empty")
		return nil
	}
	if err := a.Cart(ctx); err != nil {
		return err
	}

	var card payment.Card
	var err error
	if card.Number, err = getSimpleText(a.reader, "Card number", a.out); err != nil {
		return err
	}
	if card.Expiry, err = getSimpleText(a.reader, "Expiry (MM/YY)", a.out); err != nil {
		return err
	}
	if card.CVC, err = getPassword(a.reader, "CVC", a.out); err != nil {
		return err
	}
	if card.Holder, err = getSimpleText(a.reader, "Card holder", a.out); err != nil {
		return err
	}

	if err := a.cards.Validate(card); err != nil {
		return errors.Join(errors.New("payment rejected"), err)
	}

	ids := make([]int64, 0, len(pending))
	for _, o := range pending {
		ids = append(ids, o.ID)
	}
	a.cart.SubmitOrdersByIDs(ctx, ids)
	if err := a.cartError(); err != nil {
		return err
	}
	a.say("Payment accepted. %d order line(s) submitted.", len(ids))
	return nil
}
