package profiler

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickTracksFrameTimes(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := newProfiler(clock.now)

	for _, d := range []time.Duration{10 * time.Millisecond, 30 * time.Millisecond, 20 * time.Millisecond} {
		clock.advance(d)
		if p.Tick() {
			t.Fatal("Tick reported before the update interval elapsed")
		}
	}

	if p.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", p.Frames())
	}
	if p.minFrame != 10*time.Millisecond || p.maxFrame != 30*time.Millisecond {
		t.Errorf("min/max = %v/%v", p.minFrame, p.maxFrame)
	}
	if got := p.AverageFrame(); got != 20*time.Millisecond {
		t.Errorf("AverageFrame() = %v, want 20ms", got)
	}
}

func TestTickReportsAfterInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := newProfiler(clock.now)
	p.SetUpdateInterval(50 * time.Millisecond)

	clock.advance(20 * time.Millisecond)
	if p.Tick() {
		t.Error("first tick should not report")
	}
	clock.advance(40 * time.Millisecond)
	if !p.Tick() {
		t.Error("tick past the interval should report")
	}
	if p.frameCount != 0 {
		t.Errorf("frameCount = %d after a report, want 0", p.frameCount)
	}
}

func TestWriteTable(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := newProfiler(clock.now)
	clock.advance(16 * time.Millisecond)
	p.Tick()

	var buf bytes.Buffer
	p.WriteTable(&buf)
	out := buf.String()
	for _, want := range []string{"Frames", "Average FPS", "62.50", "16ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("table is missing %q:\n%s", want, out)
		}
	}
}
