package deploy

// FirstAllocatedPort is where every allocator starts. Services with an
// explicit external_port bypass the allocator entirely.
const FirstAllocatedPort = 50000

// PortAllocator hands out sequential host ports for one build-or-start
// invocation. It is monotonic and never reuses a value within a run.
type PortAllocator struct {
	next int
}

// NewPortAllocator returns an allocator seeded at FirstAllocatedPort.
func NewPortAllocator() *PortAllocator {
	return &PortAllocator{next: FirstAllocatedPort}
}

// Next returns the next free port value and advances the cursor.
func (a *PortAllocator) Next() int {
	p := a.next
	a.next++
	return p
}
