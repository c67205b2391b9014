package capture

import (
	"sort"
	"sync/atomic"
	"time"
)

// Origin identifies which stream a captured line was printed to.
type Origin string

const (
	Stdout Origin = "stdout"
	Stderr Origin = "stderr"
)

// Line is a single line of output captured from the child process.
// Time is recorded when the line was fully decoded on our side, not when the
// process wrote it, so under heavy interleaved output the merged order
// reflects capture-side timing.
type Line struct {
	Origin  Origin    // which stream the line came from
	Time    time.Time // capture timestamp, UTC
	Seq     uint64    // arrival number, assigned at tagging time
	Content string    // line content without its terminator
}

// lineSeq hands out arrival numbers across both streams. Uniqueness is what
// makes the (Time, Seq) sort key deterministic for equal timestamps.
var lineSeq atomic.Uint64

// FromStdout tags content as a stdout line captured now.
func FromStdout(content string) Line {
	return Line{
		Origin:  Stdout,
		Time:    time.Now().UTC(),
		Seq:     lineSeq.Add(1),
		Content: content,
	}
}

// FromStderr tags content as a stderr line captured now.
func FromStderr(content string) Line {
	return Line{
		Origin:  Stderr,
		Time:    time.Now().UTC(),
		Seq:     lineSeq.Add(1),
		Content: content,
	}
}

// Sort orders lines by capture time, breaking ties by arrival number.
// Sorting an already-sorted sequence is a no-op.
func Sort(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Time.Equal(lines[j].Time) {
			return lines[i].Seq < lines[j].Seq
		}
		return lines[i].Time.Before(lines[j].Time)
	})
}
