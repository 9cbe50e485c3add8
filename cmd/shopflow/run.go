package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/shopflow/internal/config"
	"github.com/alexisbeaulieu97/shopflow/internal/engine"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
	"github.com/alexisbeaulieu97/shopflow/internal/steps"
	"github.com/alexisbeaulieu97/shopflow/internal/tui"
)

type runOptions struct {
	ConfigPath    string
	EnvFile       string
	Timeout       time.Duration
	TimeoutSet    bool
	RetryDelay    time.Duration
	RetryDelaySet bool
	MetricsFile   string
	NoTUI         bool
	LogFormat     string
	LogFile       string
	Verbose       bool
	Interactive   bool
	// Lookup replaces the process environment when set.
	Lookup config.LookupFunc
}

var runCmdRunner = runSuite

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the end-to-end purchase workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.TimeoutSet = cmd.Flags().Changed("timeout")
			opts.RetryDelaySet = cmd.Flags().Changed("retry-delay")
			opts.Interactive = !opts.NoTUI && term.IsTerminal(int(os.Stdout.Fd()))

			if err := validateRunOptions(opts); err != nil {
				return newExitError(exitConfigError, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runCmdRunner(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", "", "Path to a dotenv file; process variables win")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", config.DefaultHTTPTimeout, "Per-request HTTP timeout")
	cmd.Flags().DurationVar(&opts.RetryDelay, "retry-delay", config.DefaultRetryDelay, "Delay between attempts of a declined payment operation")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	cmd.Flags().BoolVar(&opts.NoTUI, "no-tui", false, "Disable the interactive progress view")
	cmd.Flags().StringVar(&opts.LogFormat, "log-format", logFormatConsole, "Log format: console or json")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "Also write JSON logs to this rotating file")

	return cmd
}

func runSuite(ctx context.Context, opts runOptions, stdout, stderr io.Writer) error {
	logOutput := stderr
	if opts.Interactive {
		logOutput = io.Discard
	}

	app, err := newAppContext(opts, logOutput)
	if err != nil {
		return newExitError(exitConfigError, err)
	}
	defer app.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	registry := steps.Registry()
	plan := make([]engine.Step, 0, len(registry))
	for _, step := range registry {
		plan = append(plan, engine.Step{Name: step.Name, Run: step.Bind(app.Env)})
	}

	observers := []engine.Observer{app.Metrics}
	var progress *progressView
	if opts.Interactive {
		progress = startProgressView(ctx, cancel, steps.Names(), stdout)
		observers = append(observers, progress.observer)
	}

	runner := engine.NewRunner(engine.RunnerOptions{
		Logger:    app.Logger,
		Observers: observers,
	})
	results := runner.RunAll(ctx, plan)

	if progress != nil {
		if err := progress.stop(); err != nil {
			app.Logger.Error(err, "progress view failed")
		}
	}

	if err := engine.WriteReport(stdout, results); err != nil {
		return err
	}

	if opts.MetricsFile != "" {
		if err := app.Metrics.WriteTextfile(opts.MetricsFile); err != nil {
			app.Logger.Error(err, "write metrics file")
		}
	}

	summary := model.Summarize(results)
	app.Logger.WithFields(map[string]any{
		"ok":      summary.OK,
		"failed":  summary.Failed,
		"skipped": summary.Skipped,
	}).Info("run complete")

	if code := summary.ExitCode(); code != 0 {
		return newExitError(code, nil)
	}
	return nil
}

// progressView runs the Bubbletea program next to the runner.
type progressView struct {
	observer *tui.Observer
	done     chan struct{}
	err      error
}

// startProgressView launches the program. Interrupting it cancels the run.
func startProgressView(ctx context.Context, cancel context.CancelFunc, names []string, out io.Writer) *progressView {
	program := tea.NewProgram(tui.NewModel("purchase workflow", names),
		tea.WithContext(ctx),
		tea.WithOutput(out),
	)
	view := &progressView{
		observer: tui.NewObserver(program),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(view.done)
		final, err := program.Run()
		if m, ok := final.(tui.Model); ok && m.Cancelled() {
			cancel()
		}
		view.err = err
	}()

	return view
}

func (v *progressView) stop() error {
	v.observer.Done()
	<-v.done
	if errors.Is(v.err, tea.ErrProgramKilled) {
		return nil
	}
	return v.err
}
