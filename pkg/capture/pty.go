package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"
)

// RunPTY executes the command under a pseudo-terminal instead of pipes.
// A terminal merges stdout and stderr at the device, so every captured line
// is tagged as stdout; programs that switch behavior on isatty (colors,
// progress bars, line buffering) see a real terminal. The Result envelope
// and error taxonomy are the same as Run's.
func (r *Runner) RunPTY(cmd *exec.Cmd) (*Result, error) {
	start := time.Now()
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	defer func() { _ = ptmx.Close() }()

	if r.OnSpawn != nil {
		r.OnSpawn(cmd.Process.Pid)
	}

	resCh := make(chan readResult, 1)
	go readPTY(ptmx, resCh)

	readRes := <-resCh

	exitCode, signal, err := reap(cmd)
	end := time.Now()
	if err != nil {
		return nil, err
	}
	if readRes.err != nil {
		return nil, fmt.Errorf("%w: pty: %v", ErrRead, readRes.err)
	}

	return &Result{
		runID:     uuid.New().String(),
		lines:     readRes.lines,
		captured:  true,
		exitCode:  exitCode,
		signal:    signal,
		pid:       cmd.Process.Pid,
		startTime: start,
		endTime:   end,
		duration:  end.Sub(start),
	}, nil
}

// readPTY drains the terminal master until the child hangs up. The master
// returns EIO once the slave side closes; that is the normal end-of-stream
// signal, not a failure.
func readPTY(ptmx io.Reader, out chan<- readResult) {
	var lines []Line
	scanner := bufio.NewScanner(ptmx)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		// The terminal line discipline emits \r\n; Scan strips the \n.
		content := strings.TrimSuffix(scanner.Text(), "\r")
		lines = append(lines, FromStdout(content))
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, syscall.EIO) {
		out <- readResult{err: err}
		return
	}
	out <- readResult{lines: lines}
}

// RunPTY runs the command under a pseudo-terminal with a zero-value Runner.
func RunPTY(cmd *exec.Cmd) (*Result, error) {
	return (&Runner{}).RunPTY(cmd)
}
