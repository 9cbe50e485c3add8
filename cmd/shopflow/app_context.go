package main

import (
	"io"
	"os"

	"github.com/alexisbeaulieu97/shopflow/internal/client"
	"github.com/alexisbeaulieu97/shopflow/internal/config"
	"github.com/alexisbeaulieu97/shopflow/internal/logger"
	"github.com/alexisbeaulieu97/shopflow/internal/metrics"
	"github.com/alexisbeaulieu97/shopflow/internal/scenario"
	"github.com/alexisbeaulieu97/shopflow/internal/steps"
)

// AppContext bundles the long-lived services created for one run.
type AppContext struct {
	Config  *config.Config
	Logger  *logger.Logger
	Client  *client.Client
	Metrics *metrics.Recorder
	Env     *steps.Env
}

// newAppContext loads the configuration and wires the step environment.
// Every error it returns is a configuration error.
func newAppContext(opts runOptions, logOutput io.Writer) (*AppContext, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg, err := config.Load(config.LoadOptions{
		Path:    opts.ConfigPath,
		EnvFile: opts.EnvFile,
		Lookup:  lookup,
	})
	if err != nil {
		return nil, err
	}
	if opts.TimeoutSet {
		cfg.HTTP.Timeout = opts.Timeout
	}
	if opts.RetryDelaySet {
		cfg.Retry.Delay = opts.RetryDelay
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: opts.LogFormat == logFormatConsole,
		Writer:        logOutput,
		File:          opts.LogFile,
	})
	if err != nil {
		return nil, err
	}

	httpClient := client.New(client.Options{
		Timeout: cfg.HTTP.Timeout,
		Logger:  log,
	})
	recorder := metrics.NewRecorder()

	env := steps.NewEnv(scenario.New(cfg), httpClient, log)
	env.Retry.Attempts = cfg.Retry.Attempts
	env.Retry.Delay = cfg.Retry.Delay
	env.OnDecline = recorder.Decline

	return &AppContext{
		Config:  cfg,
		Logger:  log,
		Client:  httpClient,
		Metrics: recorder,
		Env:     env,
	}, nil
}

// Close releases the log file, if any.
func (a *AppContext) Close() error {
	if a == nil || a.Logger == nil {
		return nil
	}
	return a.Logger.Close()
}
