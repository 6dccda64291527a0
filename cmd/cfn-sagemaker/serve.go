package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/func/cfn-sagemaker/server"
	"github.com/func/cfn-sagemaker/storage"
	"github.com/func/cfn-sagemaker/storage/kvbackend"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Serve handlers over http",
	Long: `Serve handlers over http.

Routes:
  POST /invoke     invoke a handler once
  POST /runs       drive a request to completion
  GET  /runs/{id}  get a run checkpoint
  GET  /types      list supported resource types
  GET  /metrics    prometheus metrics

Runs started through the server are kept in memory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.sync()

		addr := a.settings.Server.Address
		if cmd.Flags().Changed("address") {
			addr, err = cmd.Flags().GetString("address")
			if err != nil {
				return err
			}
		}

		srv := &server.Server{
			Handlers: a.registry,
			Logger:   a.logger.Named("server"),
			Driver:   a.driver(&storage.Runs{Backend: &kvbackend.Memory{}}),
			Metrics:  server.NewMetrics(),
		}
		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           srv,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx := signalContext(context.Background())
		errc := make(chan error, 1)
		go func() {
			a.logger.Info("Starting server", zap.String("address", addr))
			errc <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		a.logger.Info("Shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	},
}

func init() {
	serveCommand.Flags().String("address", "", "Address to listen on. Defaults to the configured server address")

	Root.AddCommand(serveCommand)
}
