// Command learnkit is a terminal client for the LearnKit storefront: it
// exercises the session lifecycle, the guarded navigation and the catalog,
// enrollment and payment modules against a real or absent backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/learnkit/learnkit-go/authn"
	"github.com/learnkit/learnkit-go/catalog"
	"github.com/learnkit/learnkit-go/client"
	"github.com/learnkit/learnkit-go/enrollment"
	"github.com/learnkit/learnkit-go/guard"
	"github.com/learnkit/learnkit-go/internal/config"
	"github.com/learnkit/learnkit-go/payment"
	"github.com/learnkit/learnkit-go/profile"
	"github.com/learnkit/learnkit-go/session"
)

const (
	routeHome  = "/"
	routeLogin = "/login"
)

type app struct {
	cfg         config.Config
	store       session.Store
	auth        *authn.Manager
	catalog     *catalog.Client
	enrollments *enrollment.Client
	payments    *payment.Client
	profile     *profile.Client
	log         zerolog.Logger
}

func newApp() (*app, error) {
	cfg := config.New()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	store, err := session.OpenFileStore(cfg.GetSessionPath())
	if err != nil {
		return nil, err
	}

	api := client.New(cfg.GetBaseURL(), store,
		client.WithHTTPClient(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		client.WithLogger(log),
	)

	delay := cfg.GetFallbackDelay()
	return &app{
		cfg:   cfg,
		store: store,
		auth: authn.New(api, store,
			authn.WithDemoMode(cfg.GetDemoMode()),
			authn.WithFallbackDelay(delay),
			authn.WithLogger(log),
		),
		catalog:     catalog.New(api, catalog.WithFallbackDelay(delay), catalog.WithLogger(log)),
		enrollments: enrollment.New(api, enrollment.WithFallbackDelay(delay), enrollment.WithLogger(log)),
		payments:    payment.New(api, payment.WithFallbackDelay(delay), payment.WithLogger(log)),
		profile:     profile.New(api, profile.WithFallbackDelay(delay), profile.WithLogger(log)),
		log:         log,
	}, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `learnkit CLI
Usage:
  learnkit <cmd> [args]

Commands:
  login      -e <email> -p <password>
  signup     -e <email> -p <password>
  logout
  whoami
  refresh
  courses    [-category c] [-level l] [-search s] [-sort price|rating|title]
  course     -id <id>
  enroll     -id <course-id>
  enrollments
  checkout   -id <course-id> [-coupon CODE] [-amount n]
  history
  profile    [-nick <nickname>]
  admin
`)
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	a, err := newApp()
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	displayAppname(a.cfg.GetAppName())

	switch flag.Arg(0) {
	case "login":
		a.cmdLogin(ctx, flag.Args()[1:], "/auth/login")
	case "signup":
		a.cmdLogin(ctx, flag.Args()[1:], "/auth/signup")
	case "logout":
		a.auth.Logout(ctx)
		fmt.Println("logged out")
	case "whoami":
		a.cmdWhoami(ctx)
	case "refresh":
		a.cmdRefresh(ctx)
	case "courses":
		a.cmdCourses(ctx, flag.Args()[1:])
	case "course":
		a.cmdCourse(ctx, flag.Args()[1:])
	case "enroll":
		a.cmdEnroll(ctx, flag.Args()[1:])
	case "enrollments":
		a.cmdEnrollments(ctx)
	case "checkout":
		a.cmdCheckout(ctx, flag.Args()[1:])
	case "history":
		a.cmdHistory(ctx)
	case "profile":
		a.cmdProfile(ctx, flag.Args()[1:])
	case "admin":
		a.cmdAdmin(ctx)
	default:
		usage()
	}
}

// requireAuth evaluates the authenticated-route guard the way the router
// would before each protected screen.
func (a *app) requireAuth(attempted string) {
	d := guard.RequireAuth(routeLogin)(guard.Snap(a.store), attempted)
	if !d.Allow {
		fmt.Fprintf(os.Stderr, "not logged in (would redirect to %s)\n", d.RedirectTo)
		os.Exit(1)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string, path string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("e", "", "email")
	password := fs.String("p", "", "password")
	_ = fs.Parse(args)
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "need -e and -p")
		os.Exit(1)
	}

	// Login and signup are anonymous-only screens.
	if d := guard.PublicOnly(routeHome)(guard.Snap(a.store), path); !d.Allow {
		fmt.Fprintf(os.Stderr, "already logged in (would redirect to %s)\n", d.RedirectTo)
		os.Exit(1)
	}

	creds := authn.Credentials{Email: *email, Password: *password}
	var (
		result *authn.Result
		err    error
	)
	if path == "/auth/signup" {
		result, err = a.auth.Signup(ctx, creds)
	} else {
		result, err = a.auth.Login(ctx, creds)
	}
	if err != nil {
		fail(err)
	}
	if result.Source == authn.SourceRejected {
		fmt.Fprintln(os.Stderr, "credentials rejected")
		os.Exit(1)
	}
	fmt.Printf("logged in as %s (%s)\n", result.User.Email, result.Source)
}

func (a *app) cmdWhoami(ctx context.Context) {
	a.requireAuth("/profile")

	result, err := a.auth.Verify(ctx)
	if err != nil {
		fail(err)
	}
	if result.Source == authn.SourceRejected {
		fmt.Fprintln(os.Stderr, "session rejected (login required)")
		os.Exit(1)
	}
	printJSON(result.User)

	if access, ok := a.store.Get(session.KeyAccessToken); ok {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err == nil {
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				fmt.Printf("token expires %s\n", exp.Time.UTC().Format(time.RFC3339))
			}
		}
	}
}

func (a *app) cmdRefresh(ctx context.Context) {
	a.requireAuth("/profile")

	tok, err := a.auth.Refresh(ctx)
	if err != nil {
		fail(err)
	}
	fmt.Printf("refreshed (%s token)\n", tok.TokenType)
}

func (a *app) cmdCourses(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("courses", flag.ExitOnError)
	category := fs.String("category", "", "filter by category")
	level := fs.String("level", "", "filter by level")
	search := fs.String("search", "", "search in titles")
	sortKey := fs.String("sort", "", "sort by price|rating|title")
	_ = fs.Parse(args)

	courses, err := a.catalog.List(ctx, catalog.Query{
		Category: *category,
		Level:    *level,
		Search:   *search,
		Sort:     *sortKey,
	})
	if err != nil {
		fail(err)
	}
	printJSON(courses)
}

func (a *app) cmdCourse(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("course", flag.ExitOnError)
	id := fs.String("id", "", "course id")
	_ = fs.Parse(args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}

	course, err := a.catalog.Get(ctx, *id)
	if err != nil {
		fail(err)
	}
	printJSON(course)
}

func (a *app) cmdEnroll(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("enroll", flag.ExitOnError)
	id := fs.String("id", "", "course id")
	_ = fs.Parse(args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}

	a.requireAuth("/learn")
	e, err := a.enrollments.Enroll(ctx, *id)
	if err != nil {
		fail(err)
	}
	printJSON(e)
}

func (a *app) cmdEnrollments(ctx context.Context) {
	a.requireAuth("/learn")

	items, err := a.enrollments.List(ctx)
	if err != nil {
		fail(err)
	}
	printJSON(items)
}

func (a *app) cmdCheckout(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	id := fs.String("id", "", "course id")
	coupon := fs.String("coupon", "", "coupon code")
	amount := fs.Int("amount", 19000, "amount")
	_ = fs.Parse(args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}

	a.requireAuth("/checkout")
	receipt, err := a.payments.Checkout(ctx, payment.Order{
		CourseIDs:  []string{*id},
		CouponCode: *coupon,
		Amount:     *amount,
	})
	if err != nil {
		fail(err)
	}
	printJSON(receipt)
}

func (a *app) cmdHistory(ctx context.Context) {
	a.requireAuth("/profile/payments")

	items, err := a.payments.History(ctx)
	if err != nil {
		fail(err)
	}
	printJSON(items)
}

func (a *app) cmdProfile(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	nick := fs.String("nick", "", "new nickname")
	_ = fs.Parse(args)

	a.requireAuth("/profile")

	if *nick != "" {
		p, err := a.profile.Update(ctx, profile.Patch{Nickname: nick})
		if err != nil {
			fail(err)
		}
		printJSON(p)
		return
	}

	p, err := a.profile.Get(ctx)
	if err != nil {
		fail(err)
	}
	printJSON(p)
}

func (a *app) cmdAdmin(ctx context.Context) {
	d := guard.Chain(
		guard.RequireAuth(routeLogin),
		guard.RequireAdmin(routeHome),
	)(guard.Snap(a.store), "/admin")
	if !d.Allow {
		fmt.Fprintf(os.Stderr, "forbidden (would redirect to %s)\n", d.RedirectTo)
		os.Exit(1)
	}
	fmt.Printf("admin ok, role=%s\n", session.Role(a.store))
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
