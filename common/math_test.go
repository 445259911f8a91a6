package common

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCeilDiv(t *testing.T) {
	cases := []struct {
		n, group, want uint32
	}{
		{0, 8, 0},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{1920, 8, 240},
		{1081, 8, 136},
	}
	for _, c := range cases {
		if got := CeilDiv(c.n, c.group); got != c.want {
			t.Errorf("CeilDiv(%d, %d) = %d; want %d", c.n, c.group, got, c.want)
		}
	}
}

func TestPutFloat32sRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	end := PutFloat32s(buf, 4, 1.5, -2, 0.25)
	if end != 16 {
		t.Fatalf("expected end offset 16; got %d", end)
	}
	got := BytesToFloat32s(buf)
	want := []float32{0, 1.5, -2, 0.25}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded values mismatch (-want +got):\n%s", diff)
	}
}
