package capture

import "time"

// Result is the immutable outcome of one captured invocation. It is built
// once, after the child has exited and both stream readers have drained,
// and never modified afterwards.
type Result struct {
	runID     string
	lines     []Line
	captured  bool
	exitCode  *int
	signal    string
	pid       int
	startTime time.Time
	endTime   time.Time
	duration  time.Duration
}

// RunID returns the unique identifier assigned to this invocation.
func (r *Result) RunID() string {
	return r.runID
}

// Lines returns every captured line, merged across both streams and ordered
// by capture time. The second return value is false when the run was made in
// callback-only mode, which captures nothing; that is distinct from a run
// whose process printed nothing, where it returns an empty slice and true.
func (r *Result) Lines() ([]Line, bool) {
	if !r.captured {
		return nil, false
	}
	return r.lines, true
}

// Stdout returns only the lines printed to stdout, preserving merged order.
func (r *Result) Stdout() ([]Line, bool) {
	return r.filter(Stdout)
}

// Stderr returns only the lines printed to stderr, preserving merged order.
func (r *Result) Stderr() ([]Line, bool) {
	return r.filter(Stderr)
}

func (r *Result) filter(origin Origin) ([]Line, bool) {
	if !r.captured {
		return nil, false
	}
	filtered := []Line{}
	for _, line := range r.lines {
		if line.Origin == origin {
			filtered = append(filtered, line)
		}
	}
	return filtered, true
}

// ExitCode returns the child's exit code. The second return value is false
// when the process was terminated by a signal and never produced one.
func (r *Result) ExitCode() (int, bool) {
	if r.exitCode == nil {
		return 0, false
	}
	return *r.exitCode, true
}

// Signal returns the name of the signal that terminated the process, or ""
// if it exited normally.
func (r *Result) Signal() string {
	return r.signal
}

// PID returns the operating-system process ID the child ran as.
func (r *Result) PID() int {
	return r.pid
}

// StartTime returns the instant recorded immediately before the spawn.
func (r *Result) StartTime() time.Time {
	return r.startTime
}

// EndTime returns the instant recorded after the process was reaped.
func (r *Result) EndTime() time.Time {
	return r.endTime
}

// Duration returns EndTime minus StartTime.
func (r *Result) Duration() time.Duration {
	return r.duration
}
