package skins

import (
	"github.com/icrus-dev/irsplugin/pkg/world"
)

// DefaultCapacity matches the host's large generic loot panel.
const DefaultCapacity = 42

// Presenter is the opaque presentation boundary: it pushes the virtual
// container and the page indicator to the user's client. The session never
// knows how either is rendered.
type Presenter interface {
	PresentContainer(user world.UserID, items []*world.Item)
	DrawPager(user world.UserID, page, pageMax int)
	DismissContainer(user world.UserID)
}

// Session is one user's skin browse state: a fixed-capacity virtual
// container rebuilt per page, the item being customized, and the paging
// flags. Container contents are always a pure function of (target, page)
// and the shared catalog.
type Session struct {
	user      world.UserID
	catalog   *Catalog
	presenter Presenter
	container *world.Container

	target       *world.Item
	targetEntity world.Skinnable
	page         int
	visible      bool
	updating     bool
	hammerMode   bool
}

// NewSession creates a closed session with an empty virtual container.
func NewSession(user world.UserID, catalog *Catalog, presenter Presenter, containerUID uint64, capacity int) *Session {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Session{
		user:      user,
		catalog:   catalog,
		presenter: presenter,
		container: world.NewContainer(containerUID, capacity),
		page:      1,
	}
}

// User returns the owning user id.
func (s *Session) User() world.UserID { return s.user }

// Page returns the last committed page number.
func (s *Session) Page() int { return s.page }

// Visible reports whether the browse panel is open.
func (s *Session) Visible() bool { return s.visible }

// Updating reports whether a render is in progress.
func (s *Session) Updating() bool { return s.updating }

// HammerMode reports whether the browse targets a world object rather
// than a held item.
func (s *Session) HammerMode() bool { return s.hammerMode }

// Target returns the item currently being customized (nil when no browse
// is active).
func (s *Session) Target() *world.Item { return s.target }

// TargetEntity returns the world object targeted in hammer mode.
func (s *Session) TargetEntity() world.Skinnable { return s.targetEntity }

// Container exposes the virtual container for move interception and tests.
func (s *Session) Container() *world.Container { return s.container }

// SetHammerTarget puts the session in hammer mode aimed at a world object.
// The transient target item built from the object's shortname never enters
// a real inventory and is discarded on close.
func (s *Session) SetHammerTarget(entity world.Skinnable) {
	s.hammerMode = true
	s.targetEntity = entity
}

// pageMaxFor computes the page count for a variant list.
func (s *Session) pageMaxFor(n int) int {
	if n == 0 {
		return 1
	}
	c := s.container.Capacity()
	return (n + c - 1) / c
}

// RenderPage rebuilds the virtual container for (target, page) and hands
// it to the presenter.
//
// A render requested while one is already in progress is silently dropped:
// presenter side effects (a panel close callback, say) must not re-enter
// and corrupt the container mid-rebuild.
//
// An out-of-range page is clamped, but only the page indicator is redrawn
// with the clamped value; the container and the committed session state
// stay exactly as the last valid render left them.
func (s *Session) RenderPage(target *world.Item, page int) {
	if s.updating {
		return
	}
	s.updating = true
	defer func() { s.updating = false }()

	var variants []uint64
	if target != nil {
		variants, _ = s.catalog.Variants(target.Def.ItemID)
	}
	pageMax := s.pageMaxFor(len(variants))

	if page < 1 {
		s.presenter.DrawPager(s.user, 1, pageMax)
		return
	}
	if page > pageMax {
		s.presenter.DrawPager(s.user, pageMax, pageMax)
		return
	}

	s.target = target
	s.container.Clear()
	if len(variants) > 0 {
		capacity := s.container.Capacity()
		if page == 1 {
			// Slot 0 is the revert option: a duplicate of the target
			// itself with the default skin, keeping the item's own amount.
			s.container.Insert(target.Duplicate(target.Amount, world.DefaultSkin))
			end := capacity - 1
			if end > len(variants) {
				end = len(variants)
			}
			for _, skin := range variants[:end] {
				s.container.Insert(target.Duplicate(1, skin))
			}
		} else {
			// Later pages continue where page 1 left off (capacity-1
			// variants there, a full capacity per page after that) and
			// carry no revert slot.
			start := capacity*(page-1) - 1
			end := start + capacity
			if end > len(variants) {
				end = len(variants)
			}
			for _, skin := range variants[start:end] {
				s.container.Insert(target.Duplicate(1, skin))
			}
		}
	}
	s.page = page

	s.presenter.PresentContainer(s.user, s.container.Items())
	s.presenter.DrawPager(s.user, page, pageMax)
}

// Open marks the panel visible and performs an initial render: empty when
// no target is supplied, populated when the hammer path hands one over.
// No-op when already visible.
func (s *Session) Open(target *world.Item) {
	if s.visible {
		return
	}
	s.visible = true
	s.page = 1
	s.RenderPage(target, 1)
}

// Close dismisses the panel and resets all browse state, discarding any
// transient hammer-mode target. Closing a closed session is a no-op.
func (s *Session) Close() {
	if !s.visible {
		return
	}
	s.presenter.DismissContainer(s.user)
	s.page = 1
	s.target = nil
	s.targetEntity = nil
	s.hammerMode = false
	s.container.Clear()
	s.visible = false
}

// Release drops the virtual container contents. Called on unregistration;
// safe to call mid-render since the container itself stays allocated.
func (s *Session) Release() {
	s.container.Clear()
	s.target = nil
	s.targetEntity = nil
}
