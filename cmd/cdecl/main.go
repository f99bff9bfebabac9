// cdecl is the command-line front end for the core declare/explain engine:
// a cobra root command wiring internal/config (env and rc-file loading),
// internal/command (the session that actually executes each line) and
// internal/sessionlog (optional durable audit trail). Grounded on the
// teacher's only genuine cobra consumer, demo/cmd/main.go, adapted from its
// run/list subcommand shape to a REPL plus a one-shot -c flag.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxhq/cdecl/internal/command"
	"github.com/oxhq/cdecl/internal/config"
	"github.com/oxhq/cdecl/internal/diag"
	"github.com/oxhq/cdecl/internal/sessionlog"
)

// newLogger builds the process-lifetime structured logger: debug level (and
// source positions) under --debug, info level otherwise. Every cdecl run
// logs its own startup/shutdown lifecycle this way; per-line execution
// results are reported to the user directly via printDiagnostics, not here.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: debug})
	return slog.New(h)
}

// Exit codes, per the core's CLI contract: success, usage error, input
// (diagnostic) error, internal error.
const (
	exitOK       = 0
	exitUsage    = 1
	exitInput    = 2
	exitInternal = 3
)

var (
	flagCommand string
	flagRCDir   string
	flagLogDSN  string
	flagDebug   bool
)

func main() {
	root := &cobra.Command{
		Use:   "cdecl",
		Short: "Translate between C/C++ declarations and English",
		Long: "cdecl translates a C or C++ type declaration into an English\n" +
			"description, and an English description back into a declaration,\n" +
			"interactively or as a single command.",
		RunE: run,
	}

	root.Flags().StringVarP(&flagCommand, "command", "c", "", "execute a single command line and exit")
	root.Flags().StringVar(&flagRCDir, "rcdir", ".", "directory to search for .cdeclrc.env and *.cdecl startup fragments")
	root.Flags().StringVar(&flagLogDSN, "log", "", "sqlite file path or libsql:// URL to record an audit trail of executed commands")
	root.Flags().BoolVar(&flagDebug, "debug", false, "log SQL issued against the audit trail")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger(flagDebug)

	opts, err := loadOptions(flagRCDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	logger.Debug("options loaded", "dialect", opts.Dialect, "rcdir", flagRCDir)

	sess := command.New(opts)

	if flagLogDSN != "" {
		log, err := sessionlog.Open(flagLogDSN, runID(), flagDebug)
		if err != nil {
			logger.Error("failed to open audit log", "dsn", flagLogDSN, "error", err)
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitInternal)
		}
		defer log.Close()
		sess.AttachLog(log)
		logger.Info("audit log attached", "dsn", flagLogDSN)
	}

	if rc, err := config.DiscoverRC(flagRCDir); err == nil {
		logger.Debug("rc fragments discovered", "count", len(rc))
		for _, line := range rc {
			if _, diags, err := sess.Execute(line); err != nil && !errors.Is(err, command.ErrExit) {
				printDiagnostics(os.Stderr, diags, err)
			}
		}
	}

	if flagCommand != "" {
		code := runLine(sess, flagCommand, os.Stdout, os.Stderr)
		os.Exit(code)
	}

	logger.Debug("entering REPL")
	os.Exit(runREPL(sess, os.Stdin, os.Stdout, os.Stderr))
	return nil
}

func loadOptions(dir string) (config.Options, error) {
	base := config.Default()
	return config.LoadEnv(filepath.Join(dir, ".cdeclrc.env"), base)
}

// runID stamps each process invocation with a short, collision-resistant
// label for sessionlog.Open; it never needs to be globally unique, only
// unique enough to group one run's entries together.
func runID() string {
	return fmt.Sprintf("pid-%d-%d", os.Getpid(), time.Now().Unix())
}

func runLine(sess *command.Session, line string, stdout, stderr *os.File) int {
	out, diags, err := sess.Execute(line)
	if out != "" {
		fmt.Fprint(stdout, out)
	}
	if err != nil {
		if errors.Is(err, command.ErrExit) {
			return exitOK
		}
		printDiagnostics(stderr, diags, err)
		return exitInternal
	}
	if len(diags) > 0 {
		printDiagnostics(stderr, diags, nil)
		if diag.HasErrors(diags) {
			return exitInput
		}
	}
	return exitOK
}

func runREPL(sess *command.Session, in *os.File, stdout, stderr *os.File) int {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(stdout, "cdecl: type 'help' for a command summary, 'exit' to quit")
	for {
		fmt.Fprint(stdout, "cdecl> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		out, diags, err := sess.Execute(line)
		if out != "" {
			fmt.Fprint(stdout, out)
		}
		if err != nil {
			if errors.Is(err, command.ErrExit) {
				return exitOK
			}
			printDiagnostics(stderr, diags, err)
			continue
		}
		if len(diags) > 0 {
			printDiagnostics(stderr, diags, nil)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitInternal
	}
	return exitOK
}

func printDiagnostics(w *os.File, diags []diag.Diagnostic, err error) {
	for _, d := range diags {
		fmt.Fprintln(w, d.Error())
	}
	if err != nil && len(diags) == 0 {
		fmt.Fprintln(w, err)
	}
}
