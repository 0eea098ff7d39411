package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophpos/internal/client/services"
)

// Search looks products up and remembers the hits for "add <n>".
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("search <text>")
	}
	hits := a.products.Search(ctx, strings.Join(args, " "))
	a.lastProducts = hits

	if len(hits) == 0 {
		fmt.Fprintln(a.out, "No products found")
		return nil
	}
	for i, p := range hits {
		fmt.Fprintf(a.out, "%3d. %-32s %-12s %10s  (variant %d)\n", i+1, p.Name(), p.SKU, p.Price.String(), p.ID)
	}
	return nil
}

// Customers looks customers up and remembers the hits for "customer <n>".
func (a *App) Customers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("customers <text>")
	}
	hits := a.customers.Search(ctx, strings.Join(args, " "))
	a.lastCustomers = hits

	if len(hits) == 0 {
		fmt.Fprintln(a.out, "No customers found")
		return nil
	}
	for i, c := range hits {
		fmt.Fprintf(a.out, "%3d. %-32s %-16s %s\n", i+1, c.Name, c.Phone, c.Email)
	}
	return nil
}

func (a *App) printSync(entity string, res services.SyncResult, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(a.out, "%s: sync failed: %v\n", entity, err)
	case res.Skipped:
		fmt.Fprintf(a.out, "%s: skipped (offline or already syncing)\n", entity)
	default:
		kind := "delta"
		if res.Full {
			kind = "full"
		}
		fmt.Fprintf(a.out, "%s: %s sync, %d pulled, %d written\n", entity, kind, res.Pulled, res.Written)
	}
}

// Sync pulls products and customers now. Failures are reported per entity.
func (a *App) Sync(ctx context.Context, _ []string) error {
	if !a.net.Online() {
		a.net.Check(ctx)
	}
	res, err := a.products.Sync(ctx)
	a.printSync(services.ProductsEntity, res, err)
	res, err = a.customers.Sync(ctx)
	a.printSync(services.CustomersEntity, res, err)
	return nil
}

// Purge drops cached records older than the configured max age.
func (a *App) Purge(ctx context.Context, _ []string) error {
	n, err := a.products.Prune(ctx)
	if err != nil {
		return err
	}
	m, err := a.customers.Prune(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Purged %d products and %d customers\n", n, m)
	return nil
}

// Status prints connectivity, cache and queue state.
func (a *App) Status(ctx context.Context, _ []string) error {
	fmt.Fprintf(a.out, "mode:    %s\n", a.net.Mode())
	for _, st := range []services.EngineStatus{a.products.Status(ctx), a.customers.Status(ctx)} {
		last := "never"
		if st.LastSync != nil {
			last = st.LastSync.Local().Format("2006-01-02 15:04:05")
		}
		line := fmt.Sprintf("%-11s%s, %d cached, last sync %s", st.Entity+":", st.State, st.Count, last)
		if st.LastError != "" {
			line += ", last error: " + st.LastError
		}
		fmt.Fprintln(a.out, line)
	}
	n, err := a.session.RefreshPendingCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "pending: %d offline sales\n", n)
	return nil
}
