package build

import (
	"log"

	"github.com/icrus-dev/irsplugin/pkg/blockstore"
	"github.com/icrus-dev/irsplugin/pkg/sched"
	"github.com/icrus-dev/irsplugin/pkg/world"
)

// Window is one configured decay window. Enabled false means the feature
// is off entirely: the state is never armed and flags are left alone.
type Window struct {
	Seconds int64
	Enabled bool
}

// Windows holds both configured decay windows.
type Windows struct {
	Demolish Window
	Rotate   Window
}

// RecordStore is the slice of the persistent store the registry writes
// through. Incremental writes are best-effort; the bulk save at shutdown
// is the durable one.
type RecordStore interface {
	PutBlock(id world.EntityID, rec blockstore.BlockRecord) error
	DeleteBlock(id world.EntityID) error
	SaveBlocks(records map[world.EntityID]blockstore.BlockRecord, now int64) error
}

// Registry maps every live building block to its decay controller and its
// persisted record. All mutation happens on the single host event thread.
type Registry struct {
	queue       *sched.Queue
	clock       sched.Clock
	resolver    Resolver
	store       RecordStore // may be nil in tests
	windows     Windows
	records     map[world.EntityID]blockstore.BlockRecord
	controllers map[world.EntityID]*Controller
	onExpired   func(id world.EntityID, kind StateKind)
}

// NewRegistry creates a registry seeded with records previously loaded
// from the store. records may be nil.
func NewRegistry(queue *sched.Queue, clock sched.Clock, resolver Resolver, store RecordStore, windows Windows, records map[world.EntityID]blockstore.BlockRecord, onExpired func(world.EntityID, StateKind)) *Registry {
	if records == nil {
		records = make(map[world.EntityID]blockstore.BlockRecord)
	}
	return &Registry{
		queue:       queue,
		clock:       clock,
		resolver:    resolver,
		store:       store,
		windows:     windows,
		records:     records,
		controllers: make(map[world.EntityID]*Controller),
		onExpired:   onExpired,
	}
}

// OnBlockSpawned registers a newly spawned block. If a record already
// exists its CreatedAt is left untouched: a re-spawn notification must
// never reset the clock. Both timed states are (re)armed.
func (r *Registry) OnBlockSpawned(id world.EntityID, buildingID int64) {
	now := r.clock.Now()
	rec, ok := r.records[id]
	if !ok {
		rec = blockstore.BlockRecord{BuildingID: buildingID, CreatedAt: now}
		r.records[id] = rec
		if r.store != nil {
			if err := r.store.PutBlock(id, rec); err != nil {
				log.Printf("build: persist block %d: %v", id, err)
			}
		}
	}
	r.armBlock(id, rec, now)
}

// OnBlockKilled removes the record and cancels any pending flips. Unknown
// ids are a no-op.
func (r *Registry) OnBlockKilled(id world.EntityID) {
	if ctrl, ok := r.controllers[id]; ok {
		ctrl.Cancel()
		delete(r.controllers, id)
	}
	if _, ok := r.records[id]; ok {
		delete(r.records, id)
		if r.store != nil {
			if err := r.store.DeleteBlock(id); err != nil {
				log.Printf("build: delete block %d: %v", id, err)
			}
		}
	}
}

// RecoverAll re-registers every live block once at startup. Blocks with a
// persisted record are armed from their original creation time, so windows
// that elapsed during downtime expire immediately instead of restarting.
// Live blocks without a record are treated as freshly spawned. Records
// whose block is no longer live are left in place and pruned lazily by the
// next kill notice; no sweep ever scans for them.
func (r *Registry) RecoverAll(live []world.EntityID) {
	now := r.clock.Now()
	recovered, fresh := 0, 0
	for _, id := range live {
		rec, ok := r.records[id]
		if !ok {
			rec = blockstore.BlockRecord{CreatedAt: now}
			if b, found := r.resolver.Block(id); found {
				rec.BuildingID = b.BuildingID
			}
			r.records[id] = rec
			if r.store != nil {
				if err := r.store.PutBlock(id, rec); err != nil {
					log.Printf("build: persist block %d: %v", id, err)
				}
			}
			fresh++
		} else {
			recovered++
		}
		r.armBlock(id, rec, now)
	}
	if stale := len(r.records) - recovered - fresh; stale > 0 {
		log.Printf("build: recovery armed %d blocks (%d recovered, %d fresh), %d stale records retained", recovered+fresh, recovered, fresh, stale)
	} else {
		log.Printf("build: recovery armed %d blocks (%d recovered, %d fresh)", recovered+fresh, recovered, fresh)
	}
}

// armBlock (re)arms both windows on a block's controller, creating the
// controller on first use. Rotate is only armed for blocks whose
// definition allows rotation after placement.
func (r *Registry) armBlock(id world.EntityID, rec blockstore.BlockRecord, now int64) {
	ctrl, ok := r.controllers[id]
	if !ok {
		ctrl = NewController(id, r.queue, r.resolver, r.onExpired)
		r.controllers[id] = ctrl
	}
	if r.windows.Demolish.Enabled {
		ctrl.Arm(StateDemolish, rec.CreatedAt, r.windows.Demolish.Seconds, now)
	}
	if r.windows.Rotate.Enabled {
		if b, found := r.resolver.Block(id); found && b.CanRotateAfterPlacement {
			ctrl.Arm(StateRotate, rec.CreatedAt, r.windows.Rotate.Seconds, now)
		}
	}
}

// SetWindows replaces the configured windows and re-arms every tracked
// controller from its persisted creation time. Used on config reload.
func (r *Registry) SetWindows(w Windows) {
	r.windows = w
	now := r.clock.Now()
	for id := range r.controllers {
		if rec, ok := r.records[id]; ok {
			r.armBlock(id, rec, now)
		}
	}
	log.Printf("build: windows updated (demolish %v, rotate %v), %d controllers re-armed", w.Demolish, w.Rotate, len(r.controllers))
}

// Controller looks up the controller for a block id.
func (r *Registry) Controller(id world.EntityID) (*Controller, bool) {
	c, ok := r.controllers[id]
	return c, ok
}

// Record looks up the persisted record for a block id.
func (r *Registry) Record(id world.EntityID) (blockstore.BlockRecord, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// TrackedCount returns the number of persisted records held.
func (r *Registry) TrackedCount() int { return len(r.records) }

// ArmedCount returns how many controllers currently hold the given state
// armed (finite or forever).
func (r *Registry) ArmedCount(kind StateKind) int {
	n := 0
	for _, c := range r.controllers {
		if c.Phase(kind) == PhaseArmed {
			n++
		}
	}
	return n
}

// SaveAll bulk-saves the record table. Called at clean shutdown.
func (r *Registry) SaveAll() error {
	if r.store == nil {
		return nil
	}
	return r.store.SaveBlocks(r.records, r.clock.Now())
}

// Shutdown cancels every pending flip and saves the record table.
func (r *Registry) Shutdown() error {
	for _, c := range r.controllers {
		c.Cancel()
	}
	return r.SaveAll()
}
