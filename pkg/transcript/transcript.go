// Package transcript serializes a captured line sequence to a line-oriented
// on-disk format and parses it back. See doc.go for the format specification.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"runcap/pkg/capture"
)

// timeLayout is the fixed-width UTC timestamp used in the format.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// An Encoder writes captured lines to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one captured line in transcript format.
func (e *Encoder) Encode(line capture.Line) error {
	record := fmt.Appendf(nil, "%s %s %d %d: ",
		line.Origin,
		line.Time.UTC().Format(timeLayout),
		line.Seq,
		len(line.Content))
	record = append(record, line.Content...)
	record = append(record, '\n')
	if _, err := e.w.Write(record); err != nil {
		return fmt.Errorf("writing transcript record: %w", err)
	}
	return nil
}

// Write encodes all lines to w in order.
func Write(w io.Writer, lines []capture.Line) error {
	enc := NewEncoder(w)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// A Decoder reads captured lines from an input stream.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the next line record. It returns io.EOF at a clean end of
// input; a record cut off mid-way is an error, which distinguishes a
// complete transcript from an interrupted write.
func (d *Decoder) Decode() (capture.Line, error) {
	var line capture.Line

	origin, err := d.field(' ')
	if err != nil {
		if err == io.EOF && origin == "" {
			return line, io.EOF
		}
		return line, fmt.Errorf("reading origin: %w", errUnexpected(err))
	}
	line.Origin = capture.Origin(origin)

	timestampStr, err := d.field(' ')
	if err != nil {
		return line, fmt.Errorf("reading timestamp: %w", errUnexpected(err))
	}
	timestamp, err := time.Parse(timeLayout, timestampStr)
	if err != nil {
		return line, fmt.Errorf("parsing timestamp: %w", err)
	}
	line.Time = timestamp

	seqStr, err := d.field(' ')
	if err != nil {
		return line, fmt.Errorf("reading sequence number: %w", errUnexpected(err))
	}
	seq, err := strconv.ParseUint(seqStr, 10, 64)
	if err != nil {
		return line, fmt.Errorf("parsing sequence number: %w", err)
	}
	line.Seq = seq

	lengthStr, err := d.field(':')
	if err != nil {
		return line, fmt.Errorf("reading length: %w", errUnexpected(err))
	}
	length, err := strconv.Atoi(lengthStr)
	if err != nil || length < 0 {
		return line, fmt.Errorf("parsing length %q", lengthStr)
	}

	if err := d.expect(' '); err != nil {
		return line, err
	}

	content := make([]byte, length)
	if _, err := io.ReadFull(d.r, content); err != nil {
		return line, fmt.Errorf("reading content (%d bytes): %w", length, err)
	}
	line.Content = string(content)

	if err := d.expect('\n'); err != nil {
		return line, err
	}
	return line, nil
}

// field reads up to and including delim, returning the text before it.
func (d *Decoder) field(delim byte) (string, error) {
	s, err := d.r.ReadString(delim)
	if err != nil {
		return s, err
	}
	return s[:len(s)-1], nil
}

func (d *Decoder) expect(want byte) error {
	b, err := d.r.ReadByte()
	if err != nil {
		return fmt.Errorf("reading separator: %w", errUnexpected(err))
	}
	if b != want {
		return fmt.Errorf("expected %q, got %q", want, b)
	}
	return nil
}

// errUnexpected converts a mid-record EOF into ErrUnexpectedEOF so callers
// can tell truncation from a clean end of input.
func errUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Read decodes every record from r.
func Read(r io.Reader) ([]capture.Line, error) {
	dec := NewDecoder(r)
	var lines []capture.Line
	for {
		line, err := dec.Decode()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}
