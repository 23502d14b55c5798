// Command padprobe runs declarative harness scenarios against a
// control-surface simulator binary and reports a verdict for each.
//
// Exit codes:
//   - 0: every scenario ended in SUCCESS
//   - 1: at least one scenario ended in PARTIAL or FAILURE
//   - 2: runtime error (bad suite file, spawn failure, scheduler defect)
//   - 130: run aborted by interrupt
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/cboone/padprobe"
)

var (
	Version = "v0.1.0"
)

const (
	exitSuccess     = 0
	exitTestFailure = 1
	exitRuntimeErr  = 2
	exitInterrupted = 130
)

var (
	suiteFlag = &cli.StringFlag{
		Name:     "suite",
		Required: true,
		EnvVars:  []string{"PADPROBE_SUITE"},
		Usage:    "Path to the scenario suite file (eg. 'scenarios.yaml')",
	}
	timeoutFlag = &cli.DurationFlag{
		Name:    "timeout",
		Value:   5 * time.Second,
		EnvVars: []string{"PADPROBE_TIMEOUT"},
		Usage:   "Default ceiling on the wait for target exit before force-termination",
	}
	slackFlag = &cli.DurationFlag{
		Name:    "slack",
		Value:   50 * time.Millisecond,
		EnvVars: []string{"PADPROBE_SLACK"},
		Usage:   "Scheduler oversleep tolerance per input event",
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		EnvVars: []string{"PADPROBE_VERBOSE"},
		Usage:   "Enable debug logging",
	}
)

func main() {
	app := &cli.App{
		Name:    "padprobe",
		Version: Version,
		Usage:   "black-box harness for control-surface simulators",
		Flags:   []cli.Flag{suiteFlag, timeoutFlag, slackFlag, verboseFlag},
		Action:  run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		cli.HandleExitCoder(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitRuntimeErr)
	}
}

func run(c *cli.Context) error {
	logger, err := newLogger(c.Bool(verboseFlag.Name))
	if err != nil {
		return cli.Exit(fmt.Sprintf("padprobe: logger: %v", err), exitRuntimeErr)
	}
	defer func() { _ = logger.Sync() }()

	scenarios, err := padprobe.LoadSuite(c.String(suiteFlag.Name))
	if err != nil {
		return cli.Exit(err.Error(), exitRuntimeErr)
	}

	opts := []padprobe.Option{
		padprobe.WithTimeout(c.Duration(timeoutFlag.Name)),
		padprobe.WithSlack(c.Duration(slackFlag.Name)),
		padprobe.WithLogger(logger),
	}

	results := make([]*padprobe.Result, 0, len(scenarios))
	for _, sc := range scenarios {
		res, err := padprobe.Run(c.Context, sc, opts...)
		if err != nil {
			if padprobe.IsAbortError(err) {
				return cli.Exit(err.Error(), exitInterrupted)
			}
			// Spawn failures and scheduler defects are harness-level
			// errors, not target verdicts.
			return cli.Exit(err.Error(), exitRuntimeErr)
		}
		results = append(results, res)
	}

	renderResults(results)

	if code := exitCodeFor(results); code != exitSuccess {
		return cli.Exit("", code)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// renderResults prints one row per scenario.
func renderResults(results []*padprobe.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("padprobe results")

	t.AppendHeader(table.Row{"Scenario", "Verdict", "Status", "Detail", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Scenario", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Detail", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, res := range results {
		t.AppendRow(table.Row{
			res.Scenario,
			verdictCell(res.Verdict.Kind),
			res.Verdict.Status.String(),
			detailFor(res),
			res.Duration.Round(time.Millisecond).String(),
		})
	}

	t.Render()
}

func verdictCell(kind padprobe.VerdictKind) string {
	switch kind {
	case padprobe.Success:
		return text.FgGreen.Sprint(kind)
	case padprobe.Partial:
		return text.FgYellow.Sprint(kind)
	default:
		return text.FgRed.Sprint(kind)
	}
}

func detailFor(res *padprobe.Result) string {
	if res.Verdict.Kind == padprobe.Success {
		return res.Verdict.MatchedMarker
	}
	return res.Verdict.Reason
}

// exitCodeFor maps a result set to the process exit code: success only when
// every scenario succeeded.
func exitCodeFor(results []*padprobe.Result) int {
	for _, res := range results {
		if res.Verdict.Kind != padprobe.Success {
			return exitTestFailure
		}
	}
	return exitSuccess
}
