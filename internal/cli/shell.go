package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/favcart/internal/client"
)

// App binds the REPL commands to one client session.
type App struct {
	api   client.API
	store *client.Store
	sc    *bufio.Scanner
	out   io.Writer
}

func NewApp(api client.API, sc *bufio.Scanner, out io.Writer) *App {
	a := &App{api: api, sc: sc, out: out}
	a.store = client.NewStore(api, a.notifier())
	return a
}

func (a *App) notifier() client.Notifier {
	return client.NotifierFunc(func(n client.Notice) {
		fmt.Fprintf(a.out, "[%s] %s\n", n.Kind, n.Message)
	})
}

func (a *App) isLoggedIn() bool { return a.store.User() != nil }

func (a *App) status() string {
	if u := a.store.User(); u != nil {
		return u.Email
	}
	return "guest"
}

// Resume picks up an existing session, if the cookie jar holds one.
func (a *App) Resume(ctx context.Context) {
	_ = a.store.CheckAuth(ctx)
}

func (a *App) SignUp(ctx context.Context) error {
	name, err := prompt(a.sc, a.out, "Full name: ")
	if err != nil {
		return err
	}
	email, err := prompt(a.sc, a.out, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.sc, a.out, "Password: ")
	if err != nil {
		return err
	}
	return a.store.SignUp(ctx, client.SignupInput{FullName: name, Email: email, Password: password})
}

func (a *App) LogIn(ctx context.Context) error {
	email, err := prompt(a.sc, a.out, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.sc, a.out, "Password: ")
	if err != nil {
		return err
	}
	return a.store.LogIn(ctx, email, password)
}

// LogOut ends the session and starts a fresh store for the next one.
func (a *App) LogOut(ctx context.Context) error {
	if err := a.store.LogOut(ctx); err != nil {
		return err
	}
	a.store = client.NewStore(a.api, a.notifier())
	return nil
}

func (a *App) Products(ctx context.Context) error {
	if err := a.store.FetchProducts(ctx); err != nil {
		return err
	}
	return printProducts(a.out, a.store.Products(), a.store.User())
}

func (a *App) Cart(ctx context.Context) error {
	if err := a.store.FetchCart(ctx); err != nil {
		return err
	}
	return printCart(a.out, a.store.Cart())
}

func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage(a.out, "add <product-id> [quantity]")
	}
	qty := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return usage(a.out, "add <product-id> [quantity]")
		}
		qty = n
	}
	return a.store.AddToCart(ctx, args[0], qty)
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(a.out, "remove <product-id>")
	}
	return a.store.RemoveFromCart(ctx, args[0])
}

func (a *App) Quantity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage(a.out, "qty <product-id> <quantity>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return usage(a.out, "qty <product-id> <quantity>")
	}
	return a.store.UpdateCartQuantity(ctx, args[0], n)
}

func (a *App) Favorite(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(a.out, "fav <product-id>")
	}
	fav, err := a.store.ToggleFavorite(ctx, args[0])
	if err != nil {
		return err
	}
	if fav {
		fmt.Fprintln(a.out, "added")
	} else {
		fmt.Fprintln(a.out, "removed")
	}
	return nil
}

func (a *App) Sell(ctx context.Context) error {
	in := client.ProductInput{}
	var err error
	if in.Name, err = prompt(a.sc, a.out, "Name: "); err != nil {
		return err
	}
	if in.Description, err = prompt(a.sc, a.out, "Description: "); err != nil {
		return err
	}
	if in.Price, err = promptFloat(a.sc, a.out, "Price: "); err != nil {
		return err
	}
	if in.Ratings, err = promptFloat(a.sc, a.out, "Rating (0-5): "); err != nil {
		return err
	}
	if in.Image, err = prompt(a.sc, a.out, "Image URL: "); err != nil {
		return err
	}
	p, err := a.store.AddProduct(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, p.ID)
	return nil
}

func (a *App) Unlist(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(a.out, "unlist <product-id>")
	}
	return a.store.DeleteProduct(ctx, args[0])
}

func (a *App) Close() { a.store.Close() }

var errUsage = errors.New("usage")

func usage(out io.Writer, s string) error {
	fmt.Fprintln(out, "usage:", s)
	return errUsage
}

func promptFloat(sc *bufio.Scanner, out io.Writer, label string) (float64, error) {
	s, err := prompt(sc, out, label)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

// NewShellCommand starts the interactive session.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "shell",
		Short:        "Interactive shop session",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			hc, err := rootOpts.newHTTPClient()
			if err != nil {
				return err
			}
			sc := bufio.NewScanner(cmd.InOrStdin())
			app := NewApp(hc, sc, cmd.OutOrStdout())
			defer app.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			app.Resume(ctx)
			runREPL(ctx, app, app.status, sc)
			return nil
		},
	}
}
