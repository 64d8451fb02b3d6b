package main

import (
	"context"
	"time"

	gonet "github.com/civgym/gym/internal/net"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the environment to one agent over websocket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			cfg := a.cfg.Server
			if addr != "" {
				cfg.BindAddress = addr
			}
			srv := gonet.NewServer(a.env, cfg, a.log)
			if err := srv.Listen(); err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Serve() }()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				a.log.Info("shutting down")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				a.log.Warn("shutdown", zap.Error(err))
			}
			return <-errCh
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides [server] bind_address)")
	return cmd
}
