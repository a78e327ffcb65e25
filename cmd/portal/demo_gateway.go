package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-order-portal/internal/fakegateway"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func demoGatewayCmd(a *app) *cobra.Command {
	var addr string
	var accessTTL time.Duration

	cmd := &cobra.Command{
		Use:   "demo-gateway",
		Short: "Serve an in-memory API gateway for trying the portal out",
		Long: fmt.Sprintf(`Serves the auth, orders, users and payments endpoints from memory.
Seeded accounts: %s / %s (ADMIN) and %s / %s (USER).`,
			fakegateway.AdminEmail, fakegateway.AdminPassword, fakegateway.UserEmail, fakegateway.UserPassword),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.displayAppname()
			server := &http.Server{
				Addr:              addr,
				Handler:           fakegateway.New(fakegateway.WithAccessTTL(accessTTL)),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errs := make(chan error, 1)
			go func() { errs <- listenAndServe(server) }()

			select {
			case err := <-errs:
				return err
			case <-waitForStopSignal():
			}
			return shutdown(server)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8083", "listen address")
	cmd.Flags().DurationVar(&accessTTL, "access-ttl", 15*time.Minute, "access token lifetime")
	return cmd
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("demo gateway listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("demo gateway stopped")
	return nil
}
