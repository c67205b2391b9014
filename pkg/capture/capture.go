// Package capture runs a command and records everything it writes to stdout
// and stderr as one chronologically merged sequence of tagged lines, together
// with the exit status and timing of the run.
//
// Both streams are drained concurrently with the process itself. This is a
// correctness requirement, not an optimization: if one stream were left
// undrained its OS pipe buffer would fill, the child would block on a write,
// and neither stream would ever close.
package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// The three terminal failure kinds. Each invocation either produces a
// complete Result or fails with exactly one of these; there are no retries
// and no partial results. Match with errors.Is.
var (
	// ErrSpawn covers failures to start the child: executable missing,
	// not executable, permission denied, or pipe setup failure.
	ErrSpawn = errors.New("capture: spawn failed")

	// ErrRead covers a stream that could not be read to end-of-stream.
	ErrRead = errors.New("capture: stream read failed")

	// ErrReap covers failures to wait the child to completion.
	ErrReap = errors.New("capture: wait failed")
)

// Lines longer than this abort the reader with ErrRead. The default scanner
// limit of 64KB is too small for build tools that print single-line JSON.
const maxLineBytes = 1024 * 1024

// Runner executes commands and captures their output. It follows the
// http.Client pattern: create once, use for many invocations. The zero value
// is ready to use; the package-level Run functions delegate to it.
type Runner struct {
	// OnSpawn, if set, is called with the child's PID immediately after a
	// successful spawn, before any output has been read. It must return
	// promptly; the readers do not start until it does.
	OnSpawn func(pid int)
}

// LineFunc receives one raw decoded line, terminator stripped. It is called
// from the reader goroutine of a single stream, in arrival order.
type LineFunc func(line string)

// TagFunc receives one raw decoded line and returns the tagged Lines it
// should contribute to the merged result. Returning nil drops the line;
// returning more than one expands it. FromStdout and FromStderr are the
// usual implementations.
type TagFunc func(line string) []Line

// Run executes the command with both output streams captured, blocks until
// the process exits and both streams are drained, and returns the merged
// result. The returned Result always carries lines (possibly zero of them).
func (r *Runner) Run(cmd *exec.Cmd) (*Result, error) {
	stdoutTag := func(line string) []Line { return []Line{FromStdout(line)} }
	stderrTag := func(line string) []Line { return []Line{FromStderr(line)} }
	return r.run(cmd, stdoutTag, stderrTag, true)
}

// RunFuncs executes the command, invoking stdoutFn and stderrFn for every
// line the process prints to the respective stream. No lines are retained:
// the returned Result reports "not captured" from its line accessors, while
// exit status and timing are populated as usual. Both callbacks have
// returned for every line by the time RunFuncs returns.
func (r *Runner) RunFuncs(cmd *exec.Cmd, stdoutFn, stderrFn LineFunc) (*Result, error) {
	stdoutTag := func(line string) []Line {
		stdoutFn(line)
		return nil
	}
	stderrTag := func(line string) []Line {
		stderrFn(line)
		return nil
	}
	return r.run(cmd, stdoutTag, stderrTag, false)
}

// RunFuncsWithLines executes the command, invoking stdoutFn and stderrFn for
// every raw line. The callbacks both perform their side effects and return
// the tagged Lines to contribute, so callers can re-tag or re-timestamp while
// still getting a merged Result.
func (r *Runner) RunFuncsWithLines(cmd *exec.Cmd, stdoutFn, stderrFn TagFunc) (*Result, error) {
	return r.run(cmd, stdoutFn, stderrFn, true)
}

// readResult is the one-shot hand-off from a reader goroutine to the
// aggregation step. Ownership of lines transfers with the send.
type readResult struct {
	lines []Line
	err   error
}

// run is the supervisor: spawn with pipes, drain both streams concurrently,
// reap, then aggregate.
func (r *Runner) run(cmd *exec.Cmd, stdoutTag, stderrTag TagFunc, collect bool) (*Result, error) {
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: creating stdout pipe: %v", ErrSpawn, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: creating stderr pipe: %v", ErrSpawn, err)
	}

	// time.Now carries a monotonic reading, so the duration is immune to
	// wall-clock adjustments during the run.
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	if r.OnSpawn != nil {
		r.OnSpawn(cmd.Process.Pid)
	}

	// One reader per stream. Each owns its pipe exclusively and hands its
	// lines back over its own channel.
	stdoutCh := make(chan readResult, 1)
	stderrCh := make(chan readResult, 1)
	go readStream(stdoutPipe, Stdout, stdoutTag, stdoutCh)
	go readStream(stderrPipe, Stderr, stderrTag, stderrCh)

	// Both pipes must be drained to EOF before Wait, which closes them.
	// The process-exit wait and the drains still overlap: EOF only arrives
	// once the child closes its end, normally at exit.
	stdoutRes := <-stdoutCh
	stderrRes := <-stderrCh

	exitCode, signal, err := reap(cmd)
	end := time.Now()
	if err != nil {
		return nil, err
	}

	if stdoutRes.err != nil {
		return nil, fmt.Errorf("%w: stdout: %v", ErrRead, stdoutRes.err)
	}
	if stderrRes.err != nil {
		return nil, fmt.Errorf("%w: stderr: %v", ErrRead, stderrRes.err)
	}

	result := &Result{
		runID:     uuid.New().String(),
		captured:  collect,
		exitCode:  exitCode,
		signal:    signal,
		pid:       cmd.Process.Pid,
		startTime: start,
		endTime:   end,
		duration:  end.Sub(start),
	}
	if collect {
		// stdout's contribution first, then stderr's; the composite
		// (Time, Seq) key then establishes the cross-stream order.
		merged := append(stdoutRes.lines, stderrRes.lines...)
		Sort(merged)
		result.lines = merged
	}
	return result, nil
}

// reap waits the child to completion and extracts its exit status: a code
// for a normal exit, a signal name when it was killed by one.
func reap(cmd *exec.Cmd) (exitCode *int, signal string, err error) {
	waitErr := cmd.Wait()
	if waitErr == nil {
		code := 0
		return &code, "", nil
	}
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return nil, "", fmt.Errorf("%w: %v", ErrReap, waitErr)
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return nil, status.Signal().String(), nil
	}
	code := exitErr.ExitCode()
	return &code, "", nil
}

// readStream drains one pipe line by line until end-of-stream, applying tag
// to each decoded line, and hands the accumulated lines off exactly once.
func readStream(pipe io.Reader, origin Origin, tag TagFunc, out chan<- readResult) {
	var lines []Line
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lines = append(lines, tag(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		// The failure is terminal for this reader, but the pipe must still
		// be drained or the child could block on a write and never exit.
		_, _ = io.Copy(io.Discard, pipe)
		out <- readResult{err: fmt.Errorf("reading %s: %w", origin, err)}
		return
	}
	out <- readResult{lines: lines}
}

// Run captures the command's output with a zero-value Runner.
func Run(cmd *exec.Cmd) (*Result, error) {
	return (&Runner{}).Run(cmd)
}

// RunFuncs runs the command in callback-only mode with a zero-value Runner.
func RunFuncs(cmd *exec.Cmd, stdoutFn, stderrFn LineFunc) (*Result, error) {
	return (&Runner{}).RunFuncs(cmd, stdoutFn, stderrFn)
}

// RunFuncsWithLines runs the command in callback-collect mode with a
// zero-value Runner.
func RunFuncsWithLines(cmd *exec.Cmd, stdoutFn, stderrFn TagFunc) (*Result, error) {
	return (&Runner{}).RunFuncsWithLines(cmd, stdoutFn, stderrFn)
}
