package buffer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/engine/log"
)

var logger = log.New("buffer")

// Stats counts the device operations a Manager has issued.
type Stats struct {
	Allocations int
	Uploads     int
	Releases    int
}

type manager struct {
	mu     *sync.Mutex
	device Device

	slots      map[string]Handle
	order      []string
	generation uint64
	stats      Stats
}

// Manager is the sole owner of the structured buffers bound to the tracing kernel. Other components
// request reconciliation by slot name and read the resulting handles; they never create or free
// buffers themselves.
type Manager interface {
	// Reconcile reconciles the named slot against its source data.
	//
	// Parameters:
	//   - slot: the slot name, which is also the buffer label
	//   - data: the source bytes, a whole number of elements
	//   - stride: the element size in bytes
	//
	// Returns:
	//   - Handle: the live handle for the slot, or nil when the source is empty
	//   - error: an error if the device failed
	Reconcile(slot string, data []byte, stride int) (Handle, error)

	// Handle returns the live handle for a slot, or nil when the slot is unbound.
	//
	// Parameters:
	//   - slot: the slot name
	//
	// Returns:
	//   - Handle: the live handle or nil
	Handle(slot string) Handle

	// Generation returns a counter that advances whenever any slot's handle identity changes.
	// Bind groups built from an older generation must be rebuilt.
	//
	// Returns:
	//   - uint64: the current generation
	Generation() uint64

	// Stats returns the number of allocations, uploads and releases issued so far.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats

	// ReleaseAll frees every live buffer and leaves all slots unbound.
	ReleaseAll()
}

var _ Manager = &manager{}

// NewManager creates a Manager that allocates through the given device.
//
// Parameters:
//   - d: the device providing buffer memory
//
// Returns:
//   - Manager: the new manager with no live buffers
func NewManager(d Device) Manager {
	if d == nil {
		panic("buffer: manager requires a device")
	}
	return &manager{
		mu:     &sync.Mutex{},
		device: d,
		slots:  make(map[string]Handle),
	}
}

func (m *manager) Reconcile(slot string, data []byte, stride int) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.slots[slot]
	if _, known := m.slots[slot]; !known {
		m.order = append(m.order, slot)
	}

	counting := &countingDevice{Device: m.device}
	next, err := Reconcile(counting, slot, existing, data, stride)
	m.stats.Allocations += counting.allocations
	m.stats.Uploads += counting.uploads
	m.stats.Releases += counting.releases

	if next != existing {
		m.generation++
		switch {
		case next == nil:
			logger.Debugf("%s: released, slot unbound", slot)
		default:
			s := next.Shape()
			logger.Infof("%s: allocated %d elements x %d bytes", slot, s.Count, s.Stride)
		}
	}
	m.slots[slot] = next
	return next, err
}

func (m *manager) Handle(slot string) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[slot]
}

func (m *manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

func (m *manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *manager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, slot := range m.order {
		if h := m.slots[slot]; h != nil {
			m.device.ReleaseBuffer(h)
			m.stats.Releases++
			m.slots[slot] = nil
			m.generation++
		}
	}
}

// countingDevice forwards to the wrapped device and counts what a single reconcile did.
type countingDevice struct {
	Device
	allocations, uploads, releases int
}

func (c *countingDevice) CreateBuffer(label string, shape Shape) (Handle, error) {
	h, err := c.Device.CreateBuffer(label, shape)
	if err == nil {
		c.allocations++
	}
	return h, err
}

func (c *countingDevice) WriteBuffer(h Handle, data []byte) error {
	err := c.Device.WriteBuffer(h, data)
	if err == nil {
		c.uploads++
	}
	return err
}

func (c *countingDevice) ReleaseBuffer(h Handle) {
	c.Device.ReleaseBuffer(h)
	c.releases++
}
