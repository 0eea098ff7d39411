package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophpos/internal/common"
)

// Reconcile delivers queued offline sales now.
func (a *App) Reconcile(ctx context.Context, _ []string) error {
	if !a.net.Online() && !a.net.Check(ctx) {
		fmt.Fprintln(a.out, "Offline, nothing sent")
		return nil
	}
	rep, err := a.reconciler.Run(ctx)
	if err != nil {
		return err
	}
	if _, err := a.session.RefreshPendingCount(ctx); err != nil {
		a.log.Warn(ctx, "pending count unavailable", "error", err)
	}
	if rep.Skipped {
		fmt.Fprintln(a.out, "Reconcile already running")
		return nil
	}
	fmt.Fprintf(a.out, "Submitted %d, synced %d, failed %d, still pending %d\n", rep.Submitted, rep.Synced, rep.Failed, rep.Pending)
	return nil
}

// Pending lists queued offline sales that the server has not accepted yet.
func (a *App) Pending(ctx context.Context, _ []string) error {
	pending, err := a.queue.ListPending(ctx, common.EntityOfflineOrder)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(a.out, "No pending offline sales")
		return nil
	}
	for _, p := range pending {
		line := fmt.Sprintf("%4d  %-36s %10s  retries %d", p.ID, p.Payload.OfflineID, p.Payload.Total.String(), p.Retries)
		if p.LastError != "" {
			line += "  last error: " + p.LastError
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// Export writes the offline journal to a file, or uploads it when no file
// is given.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return usage("export [file]")
	}

	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		n, err := a.journal.Write(ctx, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Exported %d entries to %s\n", n, args[0])
		return nil
	}

	res, err := a.journal.Upload(ctx)
	if err != nil {
		return err
	}
	if res.Entries == 0 {
		fmt.Fprintln(a.out, "Journal is empty")
		return nil
	}
	fmt.Fprintf(a.out, "Uploaded %d entries as %s\n", res.Entries, res.Key)
	return nil
}
