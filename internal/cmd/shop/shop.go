// Package shop parses storefront CLI flags and dispatches its subcommands.
package shop

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	entrypoint "github.com/louisbranch/feastly/internal/platform/cmd"
	"github.com/louisbranch/feastly/internal/shop/api"
	"github.com/louisbranch/feastly/internal/shop/cart"
	"github.com/louisbranch/feastly/internal/shop/checkout"
	"github.com/louisbranch/feastly/internal/shop/localstore"
	"github.com/louisbranch/feastly/internal/shop/session"
)

// Config holds storefront CLI configuration.
type Config struct {
	APIURL    string        `env:"FEASTLY_SHOP_API_URL" envDefault:"http://localhost:3000"`
	StorePath string        `env:"FEASTLY_SHOP_STORE_PATH" envDefault:"shop.db"`
	Timeout   time.Duration `env:"FEASTLY_SHOP_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config, returning the
// remaining subcommand arguments.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, []string, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, nil, err
	}
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "The feastly server base URL")
	fs.StringVar(&cfg.StorePath, "store", cfg.StorePath, "The local storage path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

// app wires the storefront's client stack for one CLI invocation.
type app struct {
	client  *api.Client
	cart    *cart.Store
	session *session.Manager
	out     io.Writer
	printer *message.Printer
}

// Run executes one storefront subcommand.
func Run(ctx context.Context, cfg Config, args []string, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if len(args) == 0 {
		printUsage(out)
		return fmt.Errorf("a subcommand is required")
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceShop, func(ctx context.Context) error {
		store, err := localstore.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer func() {
			_ = store.Close()
		}()

		client, err := api.NewClient(cfg.APIURL, cfg.Timeout)
		if err != nil {
			return err
		}

		a := &app{
			client:  client,
			cart:    cart.NewStore(store),
			session: session.NewManager(store),
			out:     out,
			printer: message.NewPrinter(language.English),
		}

		if identity, signedIn, err := a.session.Current(ctx); err != nil {
			return err
		} else if signedIn {
			client.SetToken(identity.Token)
		}

		command, rest := args[0], args[1:]
		switch command {
		case "restaurants":
			return a.restaurants(ctx)
		case "menu":
			return a.menu(ctx, rest)
		case "add":
			return a.add(ctx, rest)
		case "cart":
			return a.showCart(ctx)
		case "inc":
			return a.changeQty(ctx, rest, a.cart.Increment)
		case "dec":
			return a.changeQty(ctx, rest, a.cart.Decrement)
		case "remove":
			return a.changeQty(ctx, rest, a.cart.RemoveAll)
		case "checkout":
			return a.checkout(ctx, rest)
		case "signup":
			return a.signup(ctx, rest)
		case "login":
			return a.login(ctx, rest)
		case "logout":
			return a.logout(ctx)
		default:
			printUsage(out)
			return fmt.Errorf("unknown subcommand %q", command)
		}
	})
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "usage: shop <command> [arguments]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "commands:")
	fmt.Fprintln(out, "  restaurants              list restaurants")
	fmt.Fprintln(out, "  menu <restaurant-id>     show a restaurant's menu")
	fmt.Fprintln(out, "  add <restaurant-id> <item-id>  add one unit to the cart (requires login)")
	fmt.Fprintln(out, "  cart                     show the grouped cart and total")
	fmt.Fprintln(out, "  inc <item-id>            add one unit of an item already in the cart")
	fmt.Fprintln(out, "  dec <item-id>            remove one unit")
	fmt.Fprintln(out, "  remove <item-id>         remove an item entirely")
	fmt.Fprintln(out, "  checkout                 place the order (-name, -address, -city, -payment)")
	fmt.Fprintln(out, "  signup                   create an account (-name, -email, -password)")
	fmt.Fprintln(out, "  login                    sign in (-email, -password)")
	fmt.Fprintln(out, "  logout                   sign out")
}

func (a *app) restaurants(ctx context.Context) error {
	restaurants, err := a.client.Restaurants(ctx)
	if err != nil {
		return err
	}
	if len(restaurants) == 0 {
		fmt.Fprintln(a.out, "no restaurants yet")
		return nil
	}
	for _, r := range restaurants {
		fmt.Fprintf(a.out, "%d  %s (%s) %.1f*\n", r.ID, r.Name, r.Cuisine, r.Rating)
		if r.Description != "" {
			fmt.Fprintf(a.out, "   %s\n", r.Description)
		}
	}
	return nil
}

func (a *app) menu(ctx context.Context, args []string) error {
	restaurantID, err := parseID(args, "restaurant id")
	if err != nil {
		return err
	}

	restaurant, err := a.client.Restaurant(ctx, restaurantID)
	if err != nil {
		return err
	}
	items, err := a.client.Menu(ctx, restaurantID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", restaurant.Name, restaurant.Cuisine)
	if len(items) == 0 {
		fmt.Fprintln(a.out, "  no menu items")
		return nil
	}
	for _, item := range items {
		a.printer.Fprintf(a.out, "  %d  %s [%s]  Rs %.2f\n", item.ID, item.Name, item.Category, item.Price)
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("restaurant id and item id are required")
	}
	restaurantID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid restaurant id %q", args[0])
	}
	itemID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[1])
	}

	// Adding to the cart is gated on a session, like the storefront's
	// login check before addToCart.
	if _, signedIn, err := a.session.Current(ctx); err != nil {
		return err
	} else if !signedIn {
		return fmt.Errorf("please login to add items to the cart")
	}

	items, err := a.client.Menu(ctx, restaurantID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ID != itemID {
			continue
		}
		if err := a.cart.Add(ctx, cart.LineItem{
			ID:    cart.NumericID(item.ID),
			Name:  item.Name,
			Price: cart.PriceOf(item.Price),
			Image: item.Image,
		}); err != nil {
			return err
		}
		count, err := a.cart.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "added %s (cart: %d)\n", item.Name, count)
		return nil
	}
	return fmt.Errorf("item %d is not on restaurant %d's menu", itemID, restaurantID)
}

func (a *app) showCart(ctx context.Context) error {
	items, removed, err := a.cart.Load(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		fmt.Fprintf(a.out, "removed %d broken entries from the cart\n", removed)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "the cart is empty")
		return nil
	}

	groups := cart.Group(items)
	for _, g := range groups {
		price := g.Item.Price.Amount()
		a.printer.Fprintf(a.out, "%-6s %-24s x%d  Rs %.2f  = Rs %.2f\n",
			g.Item.ID.String(), g.Item.Name, g.Qty, price, price*float64(g.Qty))
	}
	count, err := a.cart.Count(ctx)
	if err != nil {
		return err
	}
	a.printer.Fprintf(a.out, "total: Rs %.2f (%d items)\n", cart.Total(groups), count)
	return nil
}

func (a *app) changeQty(ctx context.Context, args []string, change func(context.Context, string) error) error {
	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("an item id is required")
	}
	if err := change(ctx, args[0]); err != nil {
		return err
	}
	count, err := a.cart.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "cart: %d items\n", count)
	return nil
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(a.out)
	form := checkout.Form{}
	fs.StringVar(&form.FullName, "name", "", "full name")
	fs.StringVar(&form.Address, "address", "", "street address")
	fs.StringVar(&form.City, "city", "", "city")
	fs.StringVar(&form.PaymentMethod, "payment", "COD", "payment method")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var userID *int64
	if identity, signedIn, err := a.session.Current(ctx); err != nil {
		return err
	} else if signedIn && identity.UserID > 0 {
		userID = &identity.UserID
	}

	flow := checkout.NewFlow(a.cart, a.client)
	flow.OnBadge = func(count int) {
		fmt.Fprintf(a.out, "cart: %d items\n", count)
	}
	flow.OnSuccess = func(orderID int64) {
		fmt.Fprintf(a.out, "order %d placed, thank you!\n", orderID)
	}
	_, err := flow.Submit(ctx, form, userID)
	return err
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var req api.SignupRequest
	fs.StringVar(&req.FullName, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reply, err := a.client.Signup(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "welcome %s, account %d created. Use login to sign in.\n", reply.Name, reply.UserID)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var req api.LoginRequest
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reply, err := a.client.Login(ctx, req)
	if err != nil {
		return err
	}
	if err := a.session.SignIn(ctx, session.Identity{
		Token:  reply.Token,
		UserID: reply.UserID,
		Name:   reply.Name,
		Email:  reply.Email,
	}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s\n", reply.Name)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func parseID(args []string, label string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("a %s is required", label)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", label, args[0])
	}
	return id, nil
}
