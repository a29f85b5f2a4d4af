package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/restroom/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(e *env) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = e.v.GetString(cfgKeyHTTPAddr)
			}
			secret := e.v.GetString(cfgKeyHTTPSessionSecret)
			if secret == "" {
				buf := make([]byte, 32)
				if _, err := rand.Read(buf); err != nil {
					return systemErr("generate session secret: %w", err)
				}
				secret = hex.EncodeToString(buf)
				e.log.Warn().Msg("http.session_secret not set; sessions will not survive a restart")
			}

			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()

			gin.SetMode(gin.ReleaseMode)
			router, err := httpapi.NewRouter(a, secret, e.log.With().Str("component", "http").Logger())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
			errc := make(chan error, 1)
			go func() {
				e.log.Info().Str("addr", addr).Msg("listening")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return systemErr("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return systemErr("shutdown: %w", err)
			}
			e.log.Info().Msg("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: http.addr from config)")
	return cmd
}
