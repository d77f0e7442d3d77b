package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ca-modeler/internal/live"
)

var serveOpts struct {
	addr   string
	gridIn string
	run    bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream a model to browsers over a websocket",
	Long: `serve hosts a small viewer at / and a websocket at /ws. Every client
sees the same session and may step, run, pause, reset or paint it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		sess, err := openSession()
		if err != nil {
			return err
		}
		if err := loadGrid(sess, serveOpts.gridIn); err != nil {
			return err
		}
		sess.SetRunning(serveOpts.run)

		srv := live.NewServer(sess, slog.Default())
		httpSrv := &http.Server{Addr: serveOpts.addr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			err := srv.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			slog.Info("live server listening", "addr", serveOpts.addr, "model", sess.Name())
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveOpts.addr, "addr", "127.0.0.1:8080", "listen address")
	f.StringVar(&serveOpts.gridIn, "grid-in", "", "start from this grid file")
	f.BoolVar(&serveOpts.run, "run", false, "start running immediately")
	rootCmd.AddCommand(serveCmd)
}
