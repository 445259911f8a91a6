package buffer

import "testing"

func TestManagerGenerationTracksIdentity(t *testing.T) {
	d := newFakeDevice()
	m := NewManager(d)

	if _, err := m.Reconcile("vertices", elements(4, 12), 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gen := m.Generation()
	if gen != 1 {
		t.Fatalf("expected generation 1 after first allocation; got %d", gen)
	}

	if _, err := m.Reconcile("vertices", elements(4, 12), 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Generation() != gen {
		t.Errorf("expected generation to stay at %d for an upload-only reconcile; got %d", gen, m.Generation())
	}

	if _, err := m.Reconcile("vertices", nil, 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Generation() != gen+1 {
		t.Errorf("expected generation %d after release; got %d", gen+1, m.Generation())
	}
	if m.Handle("vertices") != nil {
		t.Error("expected the slot to be unbound")
	}
}

func TestManagerStats(t *testing.T) {
	d := newFakeDevice()
	m := NewManager(d)

	_, _ = m.Reconcile("a", elements(2, 4), 4)
	_, _ = m.Reconcile("a", elements(2, 4), 4)
	_, _ = m.Reconcile("a", elements(3, 4), 4)

	got := m.Stats()
	want := Stats{Allocations: 2, Uploads: 3, Releases: 1}
	if got != want {
		t.Errorf("expected %+v; got %+v", want, got)
	}
}

func TestManagerReleaseAll(t *testing.T) {
	d := newFakeDevice()
	m := NewManager(d)

	_, _ = m.Reconcile("spheres", elements(2, 64), 64)
	_, _ = m.Reconcile("vertices", elements(3, 12), 12)
	_, _ = m.Reconcile("indices", nil, 4)

	m.ReleaseAll()

	if len(d.live) != 0 {
		t.Errorf("expected every buffer released; %d still live", len(d.live))
	}
	for _, slot := range []string{"spheres", "vertices", "indices"} {
		if m.Handle(slot) != nil {
			t.Errorf("expected slot %q to be unbound", slot)
		}
	}
	if d.releases != 2 {
		t.Errorf("expected 2 releases; got %d", d.releases)
	}
}
