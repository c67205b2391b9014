package capture

import (
	"reflect"
	"testing"
	"time"
)

func TestFromStdoutTagging(t *testing.T) {
	before := time.Now().UTC()
	line := FromStdout("hello")
	after := time.Now().UTC()

	if line.Origin != Stdout {
		t.Errorf("Expected origin stdout, got %s", line.Origin)
	}
	if line.Content != "hello" {
		t.Errorf("Expected content %q, got %q", "hello", line.Content)
	}
	if line.Time.Before(before) || line.Time.After(after) {
		t.Error("Expected capture time between before and after")
	}
}

func TestFromStderrTagging(t *testing.T) {
	line := FromStderr("oops")
	if line.Origin != Stderr {
		t.Errorf("Expected origin stderr, got %s", line.Origin)
	}
	if line.Content != "oops" {
		t.Errorf("Expected content %q, got %q", "oops", line.Content)
	}
}

func TestSeqMonotonic(t *testing.T) {
	a := FromStdout("a")
	b := FromStderr("b")
	c := FromStdout("c")

	if !(a.Seq < b.Seq && b.Seq < c.Seq) {
		t.Errorf("Expected strictly increasing seq across streams, got %d %d %d", a.Seq, b.Seq, c.Seq)
	}
}

func TestSortByTime(t *testing.T) {
	t0 := time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC)
	lines := []Line{
		{Origin: Stderr, Time: t0.Add(2 * time.Millisecond), Seq: 3, Content: "third"},
		{Origin: Stdout, Time: t0, Seq: 1, Content: "first"},
		{Origin: Stdout, Time: t0.Add(time.Millisecond), Seq: 2, Content: "second"},
	}
	Sort(lines)

	want := []string{"first", "second", "third"}
	got := contents(lines)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected order %v, got %v", want, got)
	}
}

func TestSortTieBreaksBySeq(t *testing.T) {
	// Identical timestamps: arrival number decides, regardless of the
	// order the slices were concatenated in.
	t0 := time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC)
	lines := []Line{
		{Origin: Stderr, Time: t0, Seq: 2, Content: "b"},
		{Origin: Stdout, Time: t0, Seq: 3, Content: "c"},
		{Origin: Stdout, Time: t0, Seq: 1, Content: "a"},
	}
	Sort(lines)

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(contents(lines), want) {
		t.Errorf("Expected order %v, got %v", want, contents(lines))
	}
}
