package traj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kmataru/mdbox/internal/md"
)

// Frame is one stored configuration.
type Frame struct {
	Step      int
	Positions []md.Vec3
}

// Reader decodes frames from a trajectory stream.
type Reader struct {
	s    *bufio.Scanner
	file *os.File
}

// NewReader wraps an io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{s: bufio.NewScanner(r)}
}

// Open opens a trajectory file for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{s: bufio.NewScanner(f), file: f}, nil
}

// maxFrameParticles bounds the count header of a frame; anything larger is
// corruption, not data this tool could have written.
const maxFrameParticles = 1 << 24

// Next returns the next frame, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (*Frame, error) {
	n, err := r.intLine()
	if err != nil {
		return nil, err
	}
	if n < 0 || n > maxFrameParticles {
		return nil, fmt.Errorf("traj: malformed header: particle count %d", n)
	}
	step, err := r.intLine()
	if err != nil {
		return nil, fmt.Errorf("traj: truncated frame header: %w", err)
	}

	frame := &Frame{Step: step, Positions: make([]md.Vec3, n)}
	for i := 0; i < n; i++ {
		if !r.s.Scan() {
			if scanErr := r.s.Err(); scanErr != nil {
				return nil, scanErr
			}
			return nil, fmt.Errorf("traj: truncated frame: %d of %d particles", i, n)
		}
		line := r.s.Text()
		fields := strings.Fields(strings.TrimPrefix(line, "C"))
		if len(fields) != 3 {
			return nil, fmt.Errorf("traj: malformed coordinate line %q", line)
		}
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(fields[k], 64)
			if err != nil {
				return nil, fmt.Errorf("traj: malformed coordinate line %q: %w", line, err)
			}
			frame.Positions[i][k] = v
		}
	}
	return frame, nil
}

// ReadAll decodes every remaining frame.
func (r *Reader) ReadAll() ([]*Frame, error) {
	var frames []*Frame
	for {
		f, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

func (r *Reader) intLine() (int, error) {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	v, err := strconv.Atoi(strings.TrimSpace(r.s.Text()))
	if err != nil {
		return 0, fmt.Errorf("traj: malformed header line %q: %w", r.s.Text(), err)
	}
	return v, nil
}
