package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	LogIn(ctx context.Context) error
	LogOut(ctx context.Context) error
	Products(ctx context.Context) error
	Cart(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Quantity(ctx context.Context, args []string) error
	Favorite(ctx context.Context, args []string) error
	Sell(ctx context.Context) error
	Unlist(ctx context.Context, args []string) error
}

// runREPL reads commands until EOF or "exit". Command errors are reported
// through notices by the store, so the loop ignores them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("shop %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: products, cart, add, remove, qty, fav, sell, unlist, logout, exit")
			} else {
				printlnFn("Available commands: products, signup, login, exit")
			}

		case "signup":
			_ = a.SignUp(ctx)

		case "login":
			_ = a.LogIn(ctx)

		case "logout":
			_ = a.LogOut(ctx)

		case "p", "products":
			_ = a.Products(ctx)

		case "cart":
			_ = a.Cart(ctx)

		case "add":
			_ = a.Add(ctx, args)

		case "remove":
			_ = a.Remove(ctx, args)

		case "qty":
			_ = a.Quantity(ctx, args)

		case "fav":
			_ = a.Favorite(ctx, args)

		case "sell":
			_ = a.Sell(ctx)

		case "unlist":
			_ = a.Unlist(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
