package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage")

func usage(s string) error {
	return fmt.Errorf("%w: %s", ErrUsage, s)
}

const helpText = `Available commands:
  search <text>           find products (local first, server when nothing is cached)
  customers <text>        find customers
  add <n|text>            add result n of the last search, or the single match for text
  qty <variant> <n>       set the quantity of a line (0 removes it)
  rm <variant>            remove a line
  cart                    show the cart and totals
  customer <n|none>       attach customer n of the last customer search
  discount <amount>       set the cart discount
  clear                   empty the cart
  sale <method> [tendered] [notes...]
                          complete the sale (queued when offline)
  sync                    pull products and customers now
  reconcile               deliver queued offline sales now
  pending                 list queued offline sales
  purge                   drop expired cached products and customers
  export [file]           export the offline journal (upload, or to file)
  status                  connectivity, caches and queue
  exit | quit             leave the program`

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Search(ctx context.Context, args []string) error
	Customers(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Qty(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	ShowCart(ctx context.Context, args []string) error
	Customer(ctx context.Context, args []string) error
	Discount(ctx context.Context, args []string) error
	Clear(ctx context.Context, args []string) error
	Sale(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Reconcile(ctx context.Context, args []string) error
	Pending(ctx context.Context, args []string) error
	Purge(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from scanner and dispatches them to a.
// The first token is the command, the rest are its arguments. Command errors
// are printed and the loop continues. It returns on EOF, on "exit"/"quit",
// or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("pos %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "search", "s":
			err = a.Search(ctx, args)
		case "customers":
			err = a.Customers(ctx, args)
		case "add", "a":
			err = a.Add(ctx, args)
		case "qty":
			err = a.Qty(ctx, args)
		case "rm":
			err = a.Remove(ctx, args)
		case "cart":
			err = a.ShowCart(ctx, args)
		case "customer":
			err = a.Customer(ctx, args)
		case "discount":
			err = a.Discount(ctx, args)
		case "clear":
			err = a.Clear(ctx, args)
		case "sale":
			err = a.Sale(ctx, args)
		case "sync":
			err = a.Sync(ctx, args)
		case "reconcile":
			err = a.Reconcile(ctx, args)
		case "pending":
			err = a.Pending(ctx, args)
		case "purge":
			err = a.Purge(ctx, args)
		case "export":
			err = a.Export(ctx, args)
		case "status":
			err = a.Status(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
	}
}
