package tracer

import (
	"bytes"
	"errors"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/tiff"
)

func TestSnapshotBeforeFirstFrame(t *testing.T) {
	f := newFixture()
	if _, err := f.tracer.Snapshot(); !errors.Is(err, ErrNoImage) {
		t.Errorf("expected ErrNoImage; got %v", err)
	}
}

func TestSnapshotEncodes(t *testing.T) {
	f := newFixture()
	f.device.sample = func(int) float32 { return 0.5 }
	f.frames(t, 2, 3, 2)

	img, err := f.tracer.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Width != 3 || img.Height != 2 || img.Samples != 2 {
		t.Fatalf("unexpected image header %dx%d with %d samples", img.Width, img.Height, img.Samples)
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf, "png"); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png decode failed: %v", err)
	}
	r, _, _, a := decoded.At(1, 1).RGBA()
	// 0.5^(1/2.2) is about 0.73
	if r>>8 < 180 || r>>8 > 190 || a != 0xffff {
		t.Errorf("unexpected display value r=%d a=%d", r>>8, a)
	}

	buf.Reset()
	if err := img.Encode(&buf, "tiff"); err != nil {
		t.Fatalf("tiff encode failed: %v", err)
	}
	if _, err := tiff.Decode(&buf); err != nil {
		t.Errorf("tiff decode failed: %v", err)
	}
}

func TestSnapshotSave(t *testing.T) {
	img := &Image{Width: 1, Height: 1, Pix: []float32{2, 0, -1, 1}}
	dir := t.TempDir()

	if err := img.Save(filepath.Join(dir, "out.png")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := img.Save(filepath.Join(dir, "out.exr"))
	if !errors.Is(err, ErrUnknownFormat) || !strings.Contains(err.Error(), "out.exr") {
		t.Errorf("expected ErrUnknownFormat naming the path; got %v", err)
	}
}

func TestStatsTable(t *testing.T) {
	f := newFixture()
	f.frames(t, 3, 4, 4)

	var buf bytes.Buffer
	f.tracer.Stats().WriteTable(&buf)
	out := buf.String()
	for _, want := range []string{"Converged samples", "4x4", "Uptime"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}
}
