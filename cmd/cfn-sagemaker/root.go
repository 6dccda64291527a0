// Package cmd implements the cfn-sagemaker command line interface.
package cmd

import (
	"os"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/func/cfn-sagemaker/config"
	"github.com/func/cfn-sagemaker/handler"
	"github.com/func/cfn-sagemaker/orchestrator"
	"github.com/func/cfn-sagemaker/provider/sagemaker"
	"github.com/func/cfn-sagemaker/storage"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Root is the root command.
var Root = &cobra.Command{
	Use:           "cfn-sagemaker",
	Short:         "Resource handlers for SageMaker pipelines and model package groups",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	flags := Root.PersistentFlags()
	flags.StringP("config", "c", "", "Settings file. Env var: "+config.EnvFile)
	flags.String("region", "", "AWS region for requests that do not set one")
	flags.String("profile", "", "Shared config profile")
	flags.String("endpoint", "", "SageMaker endpoint override")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("state-file", "", "Bolt database for run checkpoints")
}

// app holds the dependencies shared by commands.
type app struct {
	settings *config.Settings
	logger   *zap.Logger
	registry *handler.Registry
}

// setup loads settings, applies flag overrides and creates the logger and
// the handler registry.
func setup(cmd *cobra.Command) (*app, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if file == "" {
		file = config.File()
	}

	l := &config.Loader{}
	settings, diags := l.Load(file)
	if diags.HasErrors() {
		l.WriteDiagnostics(os.Stderr, diags)
		return nil, errors.New("could not load settings")
	}

	overrides := map[string]*string{
		"region":     &settings.Region,
		"profile":    &settings.Profile,
		"endpoint":   &settings.Endpoint,
		"log-level":  &settings.LogLevel,
		"state-file": &settings.StateFile,
	}
	for name, dst := range overrides {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	logger, err := newLogger(settings.LogLevel)
	if err != nil {
		return nil, err
	}

	reg := &handler.Registry{}
	sagemaker.Register(reg, sagemaker.Options{
		Region:        settings.Region,
		Profile:       settings.Profile,
		Endpoint:      settings.Endpoint,
		CallbackDelay: settings.CallbackDelay,
	})

	return &app{
		settings: settings,
		logger:   logger,
		registry: reg,
	}, nil
}

// newLogger creates a logger for the given level. Debug logging uses the
// development config.
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// driver creates an orchestrator that stores checkpoints in runs.
func (a *app) driver(runs *storage.Runs) *orchestrator.Driver {
	d := &orchestrator.Driver{
		Invoker: a.registry,
		Runs:    runs,
		Logger:  a.logger.Named("orchestrator"),
	}
	if r := a.settings.Retry; r != nil {
		if n := r.Retries(); n > 0 {
			d.MaxRetries = uint64(n)
		}
		elapsed := r.Elapsed()
		d.Backoff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = elapsed
			return b
		}
	}
	return d
}

func (a *app) sync() {
	_ = a.logger.Sync()
}

// boltTimeout is the time to wait for the state file lock.
const boltTimeout = 2 * time.Second
