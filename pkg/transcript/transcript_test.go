package transcript

import (
	"bytes"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"runcap/pkg/capture"
)

func TestRoundTrip(t *testing.T) {
	t0 := time.Date(2025, 1, 7, 12, 34, 56, 789000000, time.UTC)
	lines := []capture.Line{
		{Origin: capture.Stdout, Time: t0, Seq: 1, Content: "Hello world"},
		{Origin: capture.Stderr, Time: t0.Add(time.Millisecond), Seq: 2, Content: "something failed: exit status 1"},
		{Origin: capture.Stdout, Time: t0.Add(2 * time.Millisecond), Seq: 3, Content: ""},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, lines))

	parsed, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, lines, parsed)
}

func TestRoundTripPreservesOrdering(t *testing.T) {
	// A parsed transcript must sort back into the same sequence, including
	// timestamp ties decided by seq.
	t0 := time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC)
	lines := []capture.Line{
		{Origin: capture.Stdout, Time: t0, Seq: 10, Content: "first"},
		{Origin: capture.Stderr, Time: t0, Seq: 11, Content: "second"},
		{Origin: capture.Stdout, Time: t0.Add(time.Second), Seq: 12, Content: "third"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, lines))

	parsed, err := Read(&buf)
	require.NoError(t, err)

	capture.Sort(parsed)
	require.Equal(t, lines, parsed)
}

func TestContentWithSeparators(t *testing.T) {
	// The length prefix makes spaces and colons in content unambiguous.
	line := capture.Line{
		Origin:  capture.Stdout,
		Time:    time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC),
		Seq:     1,
		Content: "key: value with spaces: and more",
	}

	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(line))

	parsed, err := NewDecoder(&buf).Decode()
	require.NoError(t, err)
	require.Equal(t, line, parsed)
}

func TestDecodeEmptyInput(t *testing.T) {
	lines, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestDecodeTruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	line := capture.Line{
		Origin:  capture.Stdout,
		Time:    time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC),
		Seq:     1,
		Content: "a full line of output",
	}
	require.NoError(t, NewEncoder(&buf).Encode(line))

	// Cut the record off mid-content.
	truncated := buf.Bytes()[:buf.Len()-10]

	_, err := Read(bytes.NewReader(truncated))
	require.Error(t, err)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Read(strings.NewReader("not a transcript at all\n"))
	require.Error(t, err)
}

func TestRoundTripCapturedRun(t *testing.T) {
	cmd := exec.Command("sh", "-c", "echo one; echo two >&2")
	result, err := capture.Run(cmd)
	require.NoError(t, err)

	lines, ok := result.Lines()
	require.True(t, ok)
	require.Len(t, lines, 2)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, lines))

	parsed, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, lines, parsed)
}
