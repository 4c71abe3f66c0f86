// Package traj reads and writes trajectory files.
//
// The on-disk format is a fixed-width, extended-XYZ-like text stream. Each
// frame is:
//
//	line 1: particle count, 10-character right-justified integer
//	line 2: step index, same format
//	N lines: "C" followed by three space-separated 10-character-wide,
//	         5-decimal fixed-point coordinates
//
// Frames are appended one after another with no separator.
package traj

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/kmataru/mdbox/internal/md"
)

// Writer appends frames to an underlying stream.
type Writer struct {
	w    *bufio.Writer
	file *os.File
}

// NewWriter wraps an io.Writer. Close flushes buffered frames.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Create opens path for writing, truncating any existing file. The returned
// Writer owns the file; Close releases it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{w: bufio.NewWriter(f), file: f}, nil
}

// WriteFrame appends one configuration at the given step index.
func (t *Writer) WriteFrame(pos []md.Vec3, step int) error {
	if _, err := fmt.Fprintf(t.w, "%10d\n%10d\n", len(pos), step); err != nil {
		return err
	}
	for _, p := range pos {
		if _, err := fmt.Fprintf(t.w, "C   %10.5f %10.5f %10.5f\n", p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered output and releases the underlying file, if any.
// It must run on every exit path of a run, error or not.
func (t *Writer) Close() error {
	flushErr := t.w.Flush()
	if t.file != nil {
		if closeErr := t.file.Close(); flushErr == nil {
			flushErr = closeErr
		}
	}
	return flushErr
}
