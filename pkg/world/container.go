package world

// Container is an ordered, fixed-capacity item collection. The skin
// browser's virtual container is one of these, entirely server-side.
type Container struct {
	uid      uint64
	capacity int
	items    []*Item
}

// NewContainer creates an empty container with the given uid and capacity.
func NewContainer(uid uint64, capacity int) *Container {
	return &Container{
		uid:      uid,
		capacity: capacity,
	}
}

// UID returns the container's network uid (0 for anonymous sub-containers).
func (c *Container) UID() uint64 { return c.uid }

// Capacity returns the fixed slot count.
func (c *Container) Capacity() int { return c.capacity }

// Len returns the number of occupied slots.
func (c *Container) Len() int { return len(c.items) }

// Clear removes all items.
func (c *Container) Clear() {
	c.items = c.items[:0]
}

// Insert appends an item into the next free slot. Returns false when full.
func (c *Container) Insert(it *Item) bool {
	if len(c.items) >= c.capacity {
		return false
	}
	c.items = append(c.items, it)
	return true
}

// Items returns a snapshot copy of the occupied slots in order.
func (c *Container) Items() []*Item {
	out := make([]*Item, len(c.items))
	copy(out, c.items)
	return out
}
