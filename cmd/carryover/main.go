// Command carryover writes the parameter estimates of a stage-1 analysis into
// the configuration template of stage 2.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scsphylo/carryover"
	coerrors "github.com/scsphylo/carryover/errors"
	"github.com/scsphylo/carryover/internal/tagdict"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2

	stdoutPath = "-"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

type cliFlags struct {
	inputs     carryover.Inputs
	dictionary string
	logLevel   string
	logFormat  string
}

// runError marks failures that happen after the command line was accepted.
type runError struct {
	err error
}

func (e *runError) Error() string { return e.err.Error() }
func (e *runError) Unwrap() error { return e.err }

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	var f cliFlags
	cmd := newRootCommand(&f, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	var re *runError
	if errors.As(err, &re) {
		_ = reportError(stderr, re.err)
		return exitFailure
	}
	if writeErr := writef(stderr, "error: %v\n\n%s", err, cmd.UsageString()); writeErr != nil {
		return exitFailure
	}
	return exitUsage
}

func newRootCommand(f *cliFlags, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carryover",
		Short: "Set up a stage-2 configuration from stage-1 estimates",
		Long: `carryover resolves the "@id" parameter references of a stage-1 configuration,
reads the matching point estimates from the stage-1 estimates table (mean,
median or mode, as named by the results summary), checks them against their
bounds and writes them into the stage-2 template. With --tree the template is
also pointed at the given starting tree.`,
		Example: `  carryover --template1 stage1.xml --template2 stage2.xml \
    --estimates stage1_estimates.log --results stage1_results.txt \
    --tree stage1_mcc.tree --out stage2.xml`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := execute(f, stdout, stderr); err != nil {
				return &runError{err: err}
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringVar(&f.inputs.Template1, "template1", "", "stage-1 configuration file")
	fl.StringVar(&f.inputs.Template2, "template2", "", "stage-2 configuration template")
	fl.StringVar(&f.inputs.Estimates, "estimates", "", "estimated parameter values from stage 1")
	fl.StringVar(&f.inputs.Results, "results", "", "file listing the variant call files of stage 1")
	fl.StringVar(&f.inputs.Tree, "tree", "", "starting tree for stage 2, usually the stage-1 MCC tree")
	fl.StringVar(&f.inputs.Out, "out", "", `modified stage-2 configuration ("-" for stdout)`)
	fl.StringVar(&f.dictionary, "dictionary", "", "YAML tag dictionary replacing the built-in one")
	fl.StringVar(&f.logLevel, "log-level", envOr(envLogLevel, "info"), "log level: debug, info, warn or error")
	fl.StringVar(&f.logFormat, "log-format", os.Getenv(envLogFormat), "log format: console or json (default: console on a terminal)")
	for _, name := range []string{"template1", "template2", "estimates", "results", "out"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	return cmd
}

func execute(f *cliFlags, stdout, stderr io.Writer) error {
	logger, err := newLogger(f.logLevel, f.logFormat, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := f.inputs.Validate(); err != nil {
		return err
	}
	opts := carryover.NewOptions().WithLogger(logger)
	if f.dictionary != "" {
		dict, err := tagdict.LoadFile(f.dictionary)
		if err != nil {
			return err
		}
		logger.Info("tag dictionary loaded", zap.String("path", f.dictionary))
		opts = opts.WithDictionary(dict)
	}

	res, err := carryover.RunFiles(f.inputs, opts)
	if err != nil {
		return err
	}

	if f.inputs.Out == stdoutPath {
		if _, err := res.WriteTo(stdout); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}
	if err := carryover.WriteFile(f.inputs.Out, res); err != nil {
		return err
	}
	logger.Info("stage-2 configuration written", zap.String("path", f.inputs.Out))
	rep := res.Report
	return writef(stdout, "%s written (%d substituted, %d tree references, %d state parameters)\n",
		f.inputs.Out, rep.Substituted, rep.TreeRefs, rep.StateParams)
}

func reportError(w io.Writer, err error) error {
	if missing, ok := coerrors.AsMissingInputs(err); ok {
		for _, m := range missing {
			if writeErr := writeln(w, "error:", m.Error()); writeErr != nil {
				return writeErr
			}
		}
		return nil
	}
	return writef(w, "error: %v\n", err)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
