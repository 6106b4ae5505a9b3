// Package protocol reads request frames off a byte stream.
//
// A frame is one JSON object. The reader tracks brace depth (ignoring braces
// inside string literals) so a client may pretty-print its request across
// many lines; the frame ends at the byte that closes the outermost brace.
// Clients that do not open with '{' get line semantics instead: the frame is
// everything up to the next newline.
package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// DefaultMaxFrameBytes bounds a single frame when no explicit limit is set.
const DefaultMaxFrameBytes = 1 << 20

var (
	// ErrEmptyFrame is returned when the stream ends before any non-blank byte.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrIncompleteFrame is returned when the stream ends inside an object.
	ErrIncompleteFrame = errors.New("incomplete frame: stream ended before braces balanced")
	// ErrFrameTooLarge is returned when a frame exceeds the configured limit.
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
)

// ReadFrame reads the next frame from r.
//
// Bytes after the closing brace stay buffered in r. maxBytes <= 0 means
// DefaultMaxFrameBytes.
func ReadFrame(r *bufio.Reader, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFrameBytes
	}

	first, err := skipBlank(r)
	if err != nil {
		return "", err
	}
	if first != '{' {
		return readLine(r, maxBytes)
	}
	return readObject(r, maxBytes)
}

// skipBlank consumes leading whitespace and returns the first other byte,
// leaving it unread.
func skipBlank(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, ErrEmptyFrame
			}
			return 0, err
		}
		if !isBlank(b) {
			_ = r.UnreadByte()
			return b, nil
		}
	}
}

func readObject(r *bufio.Reader, maxBytes int) (string, error) {
	var (
		buf      bytes.Buffer
		depth    int
		inString bool
		escaped  bool
	)
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrIncompleteFrame
			}
			return "", err
		}
		if buf.Len() >= maxBytes {
			return "", ErrFrameTooLarge
		}
		buf.WriteByte(b)

		switch {
		case escaped:
			escaped = false
		case inString:
			switch b {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
		case b == '"':
			inString = true
		case b == '{':
			depth++
		case b == '}':
			depth--
			if depth == 0 {
				return buf.String(), nil
			}
		}
	}
}

func readLine(r *bufio.Reader, maxBytes int) (string, error) {
	var buf bytes.Buffer
	for {
		chunk, err := r.ReadSlice('\n')
		if buf.Len()+len(chunk) > maxBytes {
			return "", ErrFrameTooLarge
		}
		buf.Write(chunk)
		switch {
		case err == nil:
			return strings.TrimRight(buf.String(), "\r\n"), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			line := strings.TrimRight(buf.String(), "\r\n")
			if line == "" {
				return "", ErrEmptyFrame
			}
			return line, nil
		default:
			return "", err
		}
	}
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
