package traj

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kmataru/mdbox/internal/md"
)

func TestWriteFrameGolden(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	pos := []md.Vec3{{1.0, 2.0, 3.0}, {4.0, 5.0, 6.0}}
	if err := w.WriteFrame(pos, 5); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"         2",
		"         5",
		"C      1.00000    2.00000    3.00000",
		"C      4.00000    5.00000    6.00000",
	}, "\n") + "\n"

	if got := buf.String(); got != want {
		t.Errorf("frame mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestAppendedFramesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	frames := [][]md.Vec3{
		{{0.5, 1.5, 2.5}, {3.5, 4.5, 5.5}},
		{{0.6, 1.6, 2.6}, {3.6, 4.6, 5.6}},
	}
	for i, pos := range frames {
		if err := w.WriteFrame(pos, i*100); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&buf)
	got, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d frames, want 2", len(got))
	}

	for fi, f := range got {
		if f.Step != fi*100 {
			t.Errorf("frame %d: step %d, want %d", fi, f.Step, fi*100)
		}
		for i, p := range f.Positions {
			want := frames[fi][i]
			if p.Sub(want).Norm() > 1e-5 {
				t.Errorf("frame %d particle %d: %v, want %v", fi, i, p, want)
			}
		}
	}
}

func TestReaderEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReaderTruncatedFrame(t *testing.T) {
	in := "         2\n         0\nC      1.00000    2.00000    3.00000\n"
	r := NewReader(strings.NewReader(in))
	if _, err := r.Next(); err == nil {
		t.Error("expected error for truncated frame")
	}
}

func TestReaderRejectsBadParticleCount(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"negative", "        -5\n         0\n"},
		{"absurd", "2000000000\n         0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.in))
			if _, err := r.Next(); err == nil {
				t.Error("expected error for corrupt count header")
			}
		})
	}
}

func TestCreateAndOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traj.xyz")

	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrame([]md.Vec3{{1, 2, 3}}, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	frames, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 || frames[0].Positions[0] != (md.Vec3{1, 2, 3}) {
		t.Errorf("unexpected frames: %+v", frames)
	}
}
