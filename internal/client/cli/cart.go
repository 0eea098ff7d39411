package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/client/services"
	"github.com/dmitrijs2005/gophpos/internal/money"
)

// pick resolves a 1-based position in a list of n items.
func pick(arg string, n int) (int, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

// Add puts a product into the cart: by position in the last search, or the
// single product matching the given text (a scanned barcode, for example).
func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("add <n|text>")
	}

	var p models.SyncProduct
	if i, ok := pick(args[0], len(a.lastProducts)); ok && len(args) == 1 {
		p = a.lastProducts[i]
	} else {
		hits := a.products.Search(ctx, strings.Join(args, " "))
		switch len(hits) {
		case 0:
			return fmt.Errorf("no product matches %q", strings.Join(args, " "))
		case 1:
			p = hits[0]
		default:
			a.lastProducts = hits
			fmt.Fprintf(a.out, "%d products match, pick one with add <n>:\n", len(hits))
			for i, h := range hits {
				fmt.Fprintf(a.out, "%3d. %s  %s\n", i+1, h.Name(), h.Price.String())
			}
			return nil
		}
	}

	if err := a.session.AddToCart(ctx, p); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s at %s\n", p.Name(), p.Price.String())
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// Qty sets the quantity of a cart line; 0 or less removes it.
func (a *App) Qty(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("qty <variant> <n>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	return a.session.UpdateQuantity(ctx, id, n)
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("rm <variant>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return a.session.RemoveFromCart(ctx, id)
}

func (a *App) Clear(ctx context.Context, _ []string) error {
	return a.session.ClearCart(ctx)
}

// Customer attaches a customer from the last customer search, or detaches
// with "none".
func (a *App) Customer(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("customer <n|none>")
	}
	if args[0] == "none" {
		return a.session.SetCustomer(ctx, nil)
	}
	i, ok := pick(args[0], len(a.lastCustomers))
	if !ok {
		return fmt.Errorf("no customer %s in the last search", args[0])
	}
	c := a.lastCustomers[i]
	fmt.Fprintf(a.out, "Customer: %s\n", c.Name)
	return a.session.SetCustomer(ctx, &c.ID)
}

func (a *App) Discount(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("discount <amount>")
	}
	d, err := money.Parse(args[0])
	if err != nil {
		return err
	}
	return a.session.SetDiscount(ctx, d)
}

// ShowCart prints the cart lines and totals.
func (a *App) ShowCart(_ context.Context, _ []string) error {
	cart := a.session.Cart()
	if len(cart.Items) == 0 {
		fmt.Fprintln(a.out, "Cart is empty")
		return nil
	}
	for _, it := range cart.Items {
		fmt.Fprintf(a.out, "%8d  %-32s %4d x %10s = %10s\n",
			it.VariantID, it.Name, it.Quantity, it.UnitPrice.String(), it.LineTotal().String())
	}
	t := a.session.Totals()
	fmt.Fprintf(a.out, "subtotal %s  tax %s  discount %s  total %s\n",
		t.Subtotal.String(), t.Tax.String(), cart.Discount.String(), t.Total.String())
	if cart.CustomerID != nil {
		fmt.Fprintf(a.out, "customer #%d\n", *cart.CustomerID)
	}
	return nil
}

// Sale completes the current cart: sale <method> [tendered] [notes...].
func (a *App) Sale(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("sale <method> [tendered] [notes...]")
	}
	opts := services.SaleOptions{PaymentMethod: args[0]}
	if len(args) > 1 {
		tendered, err := money.Parse(args[1])
		if err != nil {
			return err
		}
		opts.AmountTendered = tendered
	}
	if len(args) > 2 {
		opts.Notes = strings.Join(args[2:], " ")
	}

	res, err := a.session.CompleteSale(ctx, opts)
	if err != nil {
		return err
	}

	if res.IsOffline {
		fmt.Fprintf(a.out, "Sale queued offline as %s, total %s\n", res.OfflineID, res.Total.String())
	} else {
		fmt.Fprintf(a.out, "Sale completed: order %s (#%d), total %s\n", res.OrderNumber, res.OrderID, res.Total.String())
	}
	if opts.AmountTendered.GreaterThan(res.Total) {
		fmt.Fprintf(a.out, "Change due: %s\n", opts.AmountTendered.Sub(res.Total).String())
	}
	return nil
}
