package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/orderdesk/crm-console/internal/infrastructure/backend"
)

const shutdownTimeout = 10 * time.Second

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run the in-memory development backend",
	Long: `Run a local order management backend with seeded data. Useful for trying
the console without a real deployment:

  orderdesk devserver &
  ORDERDESK_API_URL=http://localhost:8080 orderdesk login \
      --email ` + backend.SeedAdminEmail + ` --password ` + backend.SeedAdminPassword + `

State lives in memory and is lost on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		srv, err := backend.New(backend.Options{
			JWTSecret:  a.cfg.Dev.JWTSecret,
			AccessTTL:  a.cfg.Dev.AccessTTL,
			RefreshTTL: a.cfg.Dev.RefreshTTL,
			SeedOrders: a.cfg.Dev.SeedOrders,
			Logger:     a.log,
		})
		if err != nil {
			return err
		}

		syncCtx, stopSync := context.WithCancel(cmd.Context())
		defer stopSync()
		go srv.RunAutoSync(syncCtx, a.cfg.Dev.SyncInterval)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(":" + a.cfg.Dev.Port)
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
			a.log.Info().Msg("shutting down dev backend")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}
