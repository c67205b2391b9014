// Package transcript serializes a captured line sequence to a line-oriented
// on-disk format and parses it back.
//
// # Transcript Format
//
// Goals:
//
//  1. Preserve the exact content of every captured line
//  2. Preserve the stream each line was printed to
//  3. Preserve capture timestamps and arrival order, so a parsed transcript
//     sorts back into the same merged sequence
//  4. Detect records cut off by an interrupted write
//
// # Format Specification
//
// Each record is one line:
//
//	origin timestamp seq length: content
//
// # Fields
//
//   - origin: the stream name, stdout or stderr
//   - timestamp: UTC capture time in ISO 8601 format: 2006-01-02T15:04:05.000000000Z
//   - seq: the line's arrival number, an unsigned integer
//   - length: byte length of content
//   - `: ` literal separator between length and content
//   - content: exactly length bytes, followed by a terminating \n
//
// Content never contains a line terminator (captured lines are stored with
// theirs stripped), so the terminating \n is unambiguous.
//
// # Examples
//
//	stdout 2025-01-07T12:00:00.000000000Z 1 4: foo!
//	stdout 2025-01-07T12:00:01.000000000Z 2 3: bar
//	stderr 2025-01-07T12:00:02.000000000Z 3 13: error message
package transcript
