package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-order-portal/guard"
	"github.com/jrsteele09/go-order-portal/internal/config"
	"github.com/jrsteele09/go-order-portal/internal/logging"
	"github.com/jrsteele09/go-order-portal/portal"
	"github.com/spf13/cobra"
)

// app carries the configuration and the lazily built portal for one command run.
type app struct {
	gatewayURL string
	backend    string
	noBanner   bool

	cfg    config.Config
	portal *portal.Portal
}

func main() {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "portal",
		Short: "Order portal client",
		Long: `portal signs in to the order API gateway and works with orders,
payments and users on behalf of the signed-in account. The session is kept
between runs in the configured session backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			a.cfg = cfg
			logging.Setup(os.Stderr, cfg.GetEnv(), cfg.GetLogLevel())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.portal != nil {
				return a.portal.Close()
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.gatewayURL, "gateway", "", "API gateway URL (overrides API_GATEWAY_URL)")
	rootCmd.PersistentFlags().StringVar(&a.backend, "session-backend", "", "session storage: file, redis or memory (overrides SESSION_BACKEND)")
	rootCmd.PersistentFlags().BoolVar(&a.noBanner, "no-banner", false, "do not print the banner")

	rootCmd.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		registerCmd(a),
		ordersCmd(a),
		paymentsCmd(a),
		usersCmd(a),
		demoGatewayCmd(a),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// open builds the portal on first use.
func (a *app) open(ctx context.Context) (*portal.Portal, error) {
	if a.portal != nil {
		return a.portal, nil
	}
	var opts []portal.Option
	if a.gatewayURL != "" {
		opts = append(opts, portal.WithGatewayURL(a.gatewayURL))
	}
	if a.backend != "" {
		opts = append(opts, portal.WithSessionBackend(a.backend))
	}
	p, err := portal.New(ctx, a.cfg, opts...)
	if err != nil {
		return nil, err
	}
	a.portal = p
	return p, nil
}

// visit opens the portal and navigates to path, failing when a guard redirects.
func (a *app) visit(ctx context.Context, path string) (*portal.Portal, error) {
	p, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	if loc, ok := p.Visit(path); !ok {
		if strings.HasPrefix(loc, guard.SignInPath) {
			return nil, fmt.Errorf("not signed in, run `portal login --return-url %s` (%s)", path, loc)
		}
		return nil, fmt.Errorf("%s is not available to this account, redirected to %s", path, loc)
	}
	return p, nil
}

func (a *app) displayAppname() {
	if a.noBanner {
		return
	}
	myFigure := figure.NewFigure(a.cfg.GetAppName(), "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
