package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/term"

	"github.com/five82/finder/internal/app"
	"github.com/five82/finder/internal/session"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("finder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "override config path (optional)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: finder [-config path] [login -email addr | logout | favorites | whoami]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var err error
	switch cmd := fs.Arg(0); cmd {
	case "":
		err = app.Run(ctx, app.Options{ConfigPath: *configPath})
	case "login":
		err = withServices(ctx, *configPath, func(svc *app.Services) error {
			return loginCmd(ctx, svc, fs.Args()[1:], stdout, stderr)
		})
	case "logout":
		err = withServices(ctx, *configPath, func(svc *app.Services) error {
			if err := svc.Session.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Logged out.")
			return nil
		})
	case "whoami":
		err = withServices(ctx, *configPath, func(svc *app.Services) error {
			st := svc.Session.State()
			if !st.Authenticated {
				fmt.Fprintln(stdout, "Not logged in.")
				return nil
			}
			fmt.Fprintln(stdout, st.UserID)
			return nil
		})
	case "favorites":
		err = withServices(ctx, *configPath, func(svc *app.Services) error {
			for _, id := range svc.Favorites.IDs() {
				fmt.Fprintln(stdout, strconv.FormatInt(id, 10))
			}
			return nil
		})
	default:
		fmt.Fprintf(stderr, "finder: unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "finder: %v\n", err)
		return 1
	}
	return 0
}

func withServices(ctx context.Context, configPath string, fn func(*app.Services) error) error {
	svc, err := app.Open(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	if err := svc.Hydrate(ctx); err != nil {
		return err
	}
	return fn(svc)
}

func loginCmd(ctx context.Context, svc *app.Services, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprint(stdout, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(stdout)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	err = session.Authenticate(ctx, svc.Verifier, svc.Session, *email, string(pw))
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return errors.New("email or password is incorrect")
	case err != nil:
		return err
	}
	fmt.Fprintf(stdout, "Logged in as %s.\n", svc.Session.State().UserID)
	return nil
}
