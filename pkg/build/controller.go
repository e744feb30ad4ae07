package build

import (
	"github.com/icrus-dev/irsplugin/pkg/sched"
	"github.com/icrus-dev/irsplugin/pkg/world"
)

// StateKind selects one of the two independently timed block states.
type StateKind int

const (
	StateDemolish StateKind = iota
	StateRotate
	stateCount
)

func (k StateKind) String() string {
	switch k {
	case StateDemolish:
		return "demolish"
	case StateRotate:
		return "rotate"
	default:
		return "unknown"
	}
}

// Phase is the lifecycle phase of one timed state.
type Phase int

const (
	PhaseUnarmed Phase = iota
	PhaseArmed
	PhaseExpired
)

func (p Phase) String() string {
	switch p {
	case PhaseUnarmed:
		return "unarmed"
	case PhaseArmed:
		return "armed"
	case PhaseExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Resolver looks up live blocks by id. Controllers never hold a block
// pointer; the block is resolved on every flag flip so a destroyed block
// is simply absent.
type Resolver interface {
	Block(id world.EntityID) (*world.BuildingBlock, bool)
}

// slot tracks one timed state of one block.
type slot struct {
	phase    Phase
	deadline int64 // valid while Armed with a finite window
	forever  bool  // Armed with no deadline (negative configured duration)
	timer    sched.Handle
}

// Controller owns the demolish/rotate decay state machine for a single
// block. Deadlines are always recomputed from the block's absolute
// creation time, never from "seconds since now", so recovery after an
// arbitrary downtime fast-forwards or expires instead of restarting the
// countdown.
type Controller struct {
	id        world.EntityID
	queue     *sched.Queue
	resolver  Resolver
	onExpired func(id world.EntityID, kind StateKind)
	slots     [stateCount]slot
}

// NewController creates a controller for the given block id. onExpired,
// when non-nil, is invoked once per state on entering Expired.
func NewController(id world.EntityID, queue *sched.Queue, resolver Resolver, onExpired func(world.EntityID, StateKind)) *Controller {
	return &Controller{
		id:        id,
		queue:     queue,
		resolver:  resolver,
		onExpired: onExpired,
	}
}

// ID returns the block id this controller observes.
func (c *Controller) ID() world.EntityID { return c.id }

// Arm (re)computes the state from the block's creation time and the
// configured total window, replacing any pending flip:
//
//	total == 0  → Expired immediately (feature-off shortcut)
//	total < 0   → Armed forever, never auto-expires
//	otherwise   → remaining = total - (now - createdAt); Expired when the
//	              window already elapsed, else Armed with deadline exactly
//	              createdAt + total
//
// Re-arming before expiry cancels the prior timer first; two Arm calls
// never produce two expiry side effects.
func (c *Controller) Arm(kind StateKind, createdAt, totalSeconds, now int64) {
	sl := &c.slots[kind]
	if sl.timer != 0 {
		c.queue.Cancel(sl.timer)
		sl.timer = 0
	}
	sl.forever = false
	sl.deadline = 0

	if totalSeconds == 0 {
		c.expire(kind)
		return
	}
	if totalSeconds < 0 {
		sl.phase = PhaseArmed
		sl.forever = true
		c.setFlag(kind, true)
		return
	}

	remaining := totalSeconds - (now - createdAt)
	if remaining <= 0 {
		c.expire(kind)
		return
	}
	sl.phase = PhaseArmed
	sl.deadline = createdAt + totalSeconds
	c.setFlag(kind, true)
	sl.timer = c.queue.Schedule(remaining, func() { c.expire(kind) })
}

// Cancel returns both states to Unarmed and drops pending flips without
// firing the expiry side effect. Used on destroy/unregister only.
func (c *Controller) Cancel() {
	for kind := StateKind(0); kind < stateCount; kind++ {
		sl := &c.slots[kind]
		if sl.timer != 0 {
			c.queue.Cancel(sl.timer)
			sl.timer = 0
		}
		sl.phase = PhaseUnarmed
		sl.deadline = 0
		sl.forever = false
	}
}

// expire transitions a state to Expired and flips the block capability
// flag off. Entering Expired twice is a no-op.
func (c *Controller) expire(kind StateKind) {
	sl := &c.slots[kind]
	if sl.phase == PhaseExpired {
		return
	}
	if sl.timer != 0 {
		c.queue.Cancel(sl.timer)
		sl.timer = 0
	}
	sl.phase = PhaseExpired
	sl.deadline = 0
	sl.forever = false
	c.setFlag(kind, false)
	if c.onExpired != nil {
		c.onExpired(c.id, kind)
	}
}

// setFlag flips the live block's capability flag. Absent blocks are a
// no-op; the flag setters themselves are idempotent.
func (c *Controller) setFlag(kind StateKind, v bool) {
	b, ok := c.resolver.Block(c.id)
	if !ok {
		return
	}
	switch kind {
	case StateDemolish:
		b.SetDemolishable(v)
	case StateRotate:
		b.SetRotatable(v)
	}
}

// Phase returns the current phase of a state.
func (c *Controller) Phase(kind StateKind) Phase { return c.slots[kind].phase }

// Deadline returns the absolute expiry deadline. ok is false when the
// state is not armed with a finite window.
func (c *Controller) Deadline(kind StateKind) (int64, bool) {
	sl := &c.slots[kind]
	if sl.phase != PhaseArmed || sl.forever {
		return 0, false
	}
	return sl.deadline, true
}

// HoldsForever reports whether a state is armed with no deadline.
func (c *Controller) HoldsForever(kind StateKind) bool {
	sl := &c.slots[kind]
	return sl.phase == PhaseArmed && sl.forever
}
