package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"runcap/internal/config"
	"runcap/internal/procstat"
	"runcap/pkg/capture"
	"runcap/pkg/transcript"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	usePTY     bool
	useShell   bool
	withStats  bool
	quiet      bool
	outputPath string

	// childExit carries the child's exit code out of RunE so main can exit
	// with it after cobra unwinds.
	childExit int
)

var rootCmd = &cobra.Command{
	Use:   "runcap",
	Short: "runcap - run a command and capture its output streams",
	Long:  `runcap runs a command, drains stdout and stderr concurrently, and records every line with its stream, timestamp, and exit status.`,
}

var runCmd = &cobra.Command{
	Use:   "run [flags] -- command [args...]",
	Short: "Run a command and capture its output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runCommand(args)
	},
}

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Pretty-print a transcript file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return showTranscript(args[0])
	},
}

func runCommand(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupColor(cfg)

	child := buildChild(cfg, args)

	var mon *procstat.Monitor
	runner := &capture.Runner{}
	if withStats {
		runner.OnSpawn = func(pid int) {
			mon = procstat.Watch(pid, cfg.StatsInterval())
		}
	}

	result, err := runExec(runner, child)
	if err != nil {
		return err
	}

	if mon != nil {
		printStats(mon.Stop())
	}
	printSummary(result)

	path := outputPath
	if path == "" {
		path = cfg.Transcript
	}
	if path != "" {
		if err := writeTranscript(path, result); err != nil {
			return err
		}
	}

	if code, ok := result.ExitCode(); ok {
		childExit = code
	} else {
		// Killed by a signal; report failure without inventing a code.
		fmt.Fprintf(os.Stderr, "runcap: command terminated by signal: %s\n", result.Signal())
		childExit = 1
	}
	return nil
}

// runExec picks the capture mode: quiet runs collect silently, a terminal
// run echoes every line live through the callback-collect mode.
func runExec(runner *capture.Runner, child *exec.Cmd) (*capture.Result, error) {
	if usePTY {
		result, err := runner.RunPTY(child)
		if err != nil {
			return nil, err
		}
		if !quiet {
			if lines, ok := result.Lines(); ok {
				for _, line := range lines {
					fmt.Println(line.Content)
				}
			}
		}
		return result, nil
	}

	if quiet {
		return runner.Run(child)
	}

	errColor := color.New(color.FgRed)
	stdoutFn := func(line string) []capture.Line {
		fmt.Println(line)
		return []capture.Line{capture.FromStdout(line)}
	}
	stderrFn := func(line string) []capture.Line {
		errColor.Fprintln(os.Stderr, line)
		return []capture.Line{capture.FromStderr(line)}
	}
	return runner.RunFuncsWithLines(child, stdoutFn, stderrFn)
}

func buildChild(cfg *config.Config, args []string) *exec.Cmd {
	if useShell {
		return exec.Command(cfg.ShellCommand(), "-c", strings.Join(args, " "))
	}
	return exec.Command(args[0], args[1:]...)
}

// setupColor resolves the configured color mode against the terminal.
func setupColor(cfg *config.Config) {
	switch cfg.ColorMode() {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		color.NoColor = !term.IsTerminal(int(os.Stderr.Fd()))
	}
}

func printSummary(result *capture.Result) {
	status := "?"
	if code, ok := result.ExitCode(); ok {
		status = fmt.Sprintf("%d", code)
	} else if result.Signal() != "" {
		status = result.Signal()
	}
	fmt.Fprintf(os.Stderr, "runcap: run %s exit=%s duration=%s\n",
		result.RunID(), status, result.Duration().Round(time.Millisecond))
}

func printStats(stats procstat.Stats) {
	if stats.Samples == 0 {
		fmt.Fprintln(os.Stderr, "runcap: no resource samples (process exited too quickly)")
		return
	}
	fmt.Fprintf(os.Stderr, "runcap: peak rss=%.1fMB max cpu=%.1f%% threads=%d samples=%d\n",
		stats.PeakRSSMB, stats.MaxCPUPercent, stats.MaxThreads, stats.Samples)
}

func writeTranscript(path string, result *capture.Result) error {
	lines, ok := result.Lines()
	if !ok {
		return nil
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating transcript file: %w", err)
	}
	defer func() { _ = file.Close() }()
	if err := transcript.Write(file, lines); err != nil {
		return err
	}
	return file.Close()
}

func showTranscript(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	defer func() { _ = file.Close() }()

	lines, err := transcript.Read(file)
	if err != nil {
		return err
	}

	errColor := color.New(color.FgRed)
	for _, line := range lines {
		stamp := line.Time.Format("15:04:05.000")
		if line.Origin == capture.Stderr {
			errColor.Printf("%s %s %s\n", stamp, line.Origin, line.Content)
		} else {
			fmt.Printf("%s %s %s\n", stamp, line.Origin, line.Content)
		}
	}
	return nil
}

func main() {
	runCmd.Flags().BoolVar(&usePTY, "pty", false, "Run the command under a pseudo-terminal (streams merge)")
	runCmd.Flags().BoolVar(&useShell, "shell", false, "Run the arguments through the configured shell")
	runCmd.Flags().BoolVar(&withStats, "stats", false, "Sample the child's CPU and memory while it runs")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not echo captured lines")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write a transcript file after the run")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(showCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(childExit)
}
