package plugin

import (
	"fmt"
	"log"
	"strings"

	"github.com/icrus-dev/irsplugin/pkg/blockstore"
	"github.com/icrus-dev/irsplugin/pkg/build"
	"github.com/icrus-dev/irsplugin/pkg/events"
	"github.com/icrus-dev/irsplugin/pkg/sched"
	"github.com/icrus-dev/irsplugin/pkg/skins"
	"github.com/icrus-dev/irsplugin/pkg/world"
)

// Plugin wires the decay engine and the skin browser to a game server.
// Every method runs on the host's single event thread; the only
// concurrent readers are the web server handlers, which touch counters
// and snapshots only.
type Plugin struct {
	cfg     *Config
	cfgPath string
	state   *world.State
	store   *blockstore.Store // may be nil
	clock   sched.Clock
	queue   *sched.Queue
	bus     *events.Bus
	host    Host
	msgs    *Messages
	metrics *Metrics // may be nil
	audit   *Audit   // may be nil

	defs     *world.Defs
	catalog  *skins.Catalog
	blocks   *build.Registry
	sessions *skins.Registry

	auth  map[world.UserID]*authState
	prefs map[world.UserID]*blockstore.UserPrefs

	passwordMask string
	reload       chan *Config
}

// Options collects the collaborators a Plugin is built from. Config,
// State, Clock, Host, and Defs are required; the rest are optional.
type Options struct {
	Config     *Config
	ConfigPath string // enables whitelist persistence and hot reload
	State      *world.State
	Store      *blockstore.Store
	Clock      sched.Clock
	Host       Host
	Defs       *world.Defs
	Catalog    *skins.Catalog
	Bus        *events.Bus
	Metrics    *Metrics
	Audit      *Audit
}

// New builds a Plugin and loads persisted block records. A store load
// failure is fatal: running without the creation-time table would re-arm
// every window from scratch and hand out fresh decay windows on restart.
func New(opts Options) (*Plugin, error) {
	if opts.Config == nil || opts.State == nil || opts.Clock == nil || opts.Host == nil || opts.Defs == nil {
		return nil, fmt.Errorf("plugin: missing required options")
	}
	p := &Plugin{
		cfg:      opts.Config,
		cfgPath:  opts.ConfigPath,
		state:    opts.State,
		store:    opts.Store,
		clock:    opts.Clock,
		queue:    sched.NewQueue(opts.Clock),
		bus:      opts.Bus,
		host:     opts.Host,
		msgs:     NewMessages(),
		metrics:  opts.Metrics,
		audit:    opts.Audit,
		defs:     opts.Defs,
		catalog:  opts.Catalog,
		sessions: skins.NewRegistry(),
		auth:     make(map[world.UserID]*authState),
		prefs:    make(map[world.UserID]*blockstore.UserPrefs),
		reload:   make(chan *Config, 1),
	}
	if p.bus == nil {
		p.bus = events.NewBus()
	}
	if p.catalog == nil {
		p.catalog = skins.BuildCatalog(p.defs, nil)
	}
	if p.cfg.AuthPassword != "" {
		p.passwordMask = strings.Repeat("*", len(p.cfg.AuthPassword))
	}

	var records map[world.EntityID]blockstore.BlockRecord
	if p.store != nil {
		var err error
		records, err = p.store.LoadBlocks()
		if err != nil {
			return nil, fmt.Errorf("plugin: load block records: %w", err)
		}
	}
	var recStore build.RecordStore
	if p.store != nil {
		recStore = p.store
	}
	p.blocks = build.NewRegistry(p.queue, p.clock, p.state, recStore, p.cfg.Windows(), records, p.onDecayExpired)

	if p.metrics != nil {
		p.metrics.update = p.refreshGauges
	}
	log.Printf("plugin: initialized (%d block records, %d catalog skins)", p.blocks.TrackedCount(), p.catalog.Skins())
	return p, nil
}

// Bus returns the event bus (the web server subscribes on it).
func (p *Plugin) Bus() *events.Bus { return p.bus }

// Blocks returns the decay registry.
func (p *Plugin) Blocks() *build.Registry { return p.blocks }

// Sessions returns the skin browse session registry.
func (p *Plugin) Sessions() *skins.Registry { return p.sessions }

// Reload returns the channel WatchConfig feeds; Tick drains it.
func (p *Plugin) Reload() chan<- *Config { return p.reload }

// RecoverAll recomputes every decay window from its persisted creation
// time against the live entity set. Call once after the host has
// finished spawning the saved world.
func (p *Plugin) RecoverAll() {
	p.blocks.RecoverAll(p.state.BlockIDs())
}

// Tick runs one scheduler pump and applies any pending config reload.
// The host calls it from its event thread, typically once per frame.
func (p *Plugin) Tick() {
	select {
	case cfg := <-p.reload:
		p.applyConfig(cfg)
	default:
	}
	p.queue.RunDue()
	p.bus.Cleanup()
}

// applyConfig swaps in a reloaded config on the event thread and re-arms
// every decay window under the new durations.
func (p *Plugin) applyConfig(cfg *Config) {
	p.cfg = cfg
	p.passwordMask = ""
	if cfg.AuthPassword != "" {
		p.passwordMask = strings.Repeat("*", len(cfg.AuthPassword))
	}
	p.blocks.SetWindows(cfg.Windows())
	log.Printf("plugin: applied reloaded config (demolish=%v rotate=%v)",
		cfg.DemolishSeconds != nil, cfg.RotateSeconds != nil)
}

// Shutdown persists user prefs and the block table. The plugin is not
// usable afterwards.
func (p *Plugin) Shutdown() error {
	if p.store != nil {
		for id, prefs := range p.prefs {
			if err := p.store.PutUserPrefs(id, prefs); err != nil {
				log.Printf("plugin: save prefs for %d: %v", id, err)
			}
		}
	}
	err := p.blocks.Shutdown()
	if p.audit != nil {
		if cerr := p.audit.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (p *Plugin) onDecayExpired(id world.EntityID, kind build.StateKind) {
	evType := events.EvDemolishEnded
	if kind == build.StateRotate {
		evType = events.EvRotateEnded
	}
	p.bus.Emit(events.Event{Type: evType, Entity: id})
	if p.metrics != nil {
		p.metrics.decayExpired.WithLabelValues(kind.String()).Inc()
	}
}

func (p *Plugin) refreshGauges(m *Metrics) {
	m.blocksTracked.Set(float64(p.blocks.TrackedCount()))
	m.timersArmed.WithLabelValues(build.StateDemolish.String()).Set(float64(p.blocks.ArmedCount(build.StateDemolish)))
	m.timersArmed.WithLabelValues(build.StateRotate.String()).Set(float64(p.blocks.ArmedCount(build.StateRotate)))
	m.sessionsOpen.Set(float64(p.sessions.OpenCount()))
	m.usersConnected.Set(float64(len(p.state.Players())))
}

// --- skins.Presenter ---

// PresentContainer relays the rendered page contents to the host's loot
// panel.
func (p *Plugin) PresentContainer(user world.UserID, items []*world.Item) {
	p.host.PresentLoot(user, items)
	if p.metrics != nil {
		p.metrics.pagesRendered.Inc()
	}
}

// DrawPager relays the pager strip.
func (p *Plugin) DrawPager(user world.UserID, page, pageMax int) {
	p.host.DrawPager(user, page, pageMax)
	p.bus.EmitToUser(user, events.Event{Type: events.EvSkinBrowse, User: user, Page: page})
}

// DismissContainer tears the panel down.
func (p *Plugin) DismissContainer(user world.UserID) {
	p.host.DismissLoot(user)
}

// --- entity hooks ---

// OnEntitySpawned registers a placed building block. builder is the
// placing user when known (0 otherwise); a builder with a stored default
// skin for this block type gets it applied on placement.
func (p *Plugin) OnEntitySpawned(b *world.BuildingBlock, builder world.UserID) {
	if b == nil {
		return
	}
	p.state.AddBlock(b)
	p.blocks.OnBlockSpawned(b.ID, b.BuildingID)
	if builder != 0 {
		if prefs, ok := p.prefs[builder]; ok {
			if itemID, ok := p.catalog.ResolveItemID(b.Shortname); ok {
				if skin, ok := prefs.DefaultSkins[uint64(itemID)]; ok && skin != world.DefaultSkin {
					b.ApplySkin(skin)
				}
			}
		}
	}
	p.bus.Emit(events.Event{Type: events.EvEntitySpawned, Entity: b.ID, User: builder})
}

// OnEntityKill drops a destroyed block: cancels its timers, deletes its
// record, removes it from the arena. Defensive on unknown ids.
func (p *Plugin) OnEntityKill(id world.EntityID) {
	p.blocks.OnBlockKilled(id)
	p.state.RemoveBlock(id)
	p.bus.Emit(events.Event{Type: events.EvEntityKilled, Entity: id})
}

// --- user hooks ---

// OnUserConnected admits a user: loads their prefs, opens the password
// gate when configured, and registers a browse session.
func (p *Plugin) OnUserConnected(pl *world.Player) {
	if pl == nil {
		return
	}
	if pl.Language == "" {
		pl.Language = p.cfg.DefaultLanguage
	}
	p.state.AddPlayer(pl)

	prefs := blockstore.NewUserPrefs()
	if p.store != nil {
		stored, ok, err := p.store.LoadUserPrefs(pl.ID)
		switch {
		case err != nil:
			log.Printf("plugin: load prefs for %d: %v", pl.ID, err)
		case ok:
			prefs = stored
		default:
			if err := p.store.PutUserPrefs(pl.ID, prefs); err != nil {
				log.Printf("plugin: init prefs for %d: %v", pl.ID, err)
			}
		}
	}
	p.prefs[pl.ID] = prefs

	if p.cfg.AuthEnabled() {
		p.beginAuth(pl)
	}
	if p.cfg.SkinsEnabled {
		p.sessions.Register(pl.ID, p.catalog, p, p.state.NextContainerUID(), p.cfg.SkinCapacity)
	}
	p.bus.Emit(events.Event{Type: events.EvUserConnected, User: pl.ID, Text: pl.Name})
}

// OnUserDisconnected saves the user's prefs and tears everything down.
func (p *Plugin) OnUserDisconnected(id world.UserID) {
	if prefs, ok := p.prefs[id]; ok {
		if p.store != nil {
			if err := p.store.PutUserPrefs(id, prefs); err != nil {
				log.Printf("plugin: save prefs for %d: %v", id, err)
			}
		}
		delete(p.prefs, id)
	}
	if st, ok := p.auth[id]; ok {
		p.queue.Cancel(st.kickTimer)
		delete(p.auth, id)
	}
	p.sessions.Unregister(id)
	p.state.RemovePlayer(id)
	p.bus.Emit(events.Event{Type: events.EvUserDisconnected, User: id})
}

// --- chat and server-message hooks ---

// OnChat intercepts a chat line before it broadcasts. Returns true to
// suppress the original broadcast: unauthenticated users are silenced,
// and any line containing the plaintext auth password is re-broadcast
// with the password masked.
func (p *Plugin) OnChat(user world.UserID, message string) bool {
	if !p.cfg.AuthEnabled() {
		return false
	}
	pl, ok := p.state.Player(user)
	if !ok {
		return false
	}
	if !p.Authenticated(user) {
		p.host.Message(user, p.msgs.Get(pl.Language, MsgAuthChatForbidden))
		return true
	}
	if p.cfg.AuthPassword != "" && strings.Contains(message, p.cfg.AuthPassword) {
		masked := strings.ReplaceAll(message, p.cfg.AuthPassword, p.passwordMask)
		p.host.Broadcast(pl.Name, masked, user)
		p.bus.Emit(events.Event{Type: events.EvChat, User: user, Text: masked})
		return true
	}
	p.bus.Emit(events.Event{Type: events.EvChat, User: user, Text: message})
	return false
}

// OnServerMessage filters server-generated broadcast lines. Returns true
// to suppress. Covers the host's item-grant announcements ("X gave
// themselves ..."), optionally only for admins or a configured user list.
func (p *Plugin) OnServerMessage(message, senderName string) bool {
	if !p.cfg.HideGiveMessages {
		return false
	}
	if !strings.Contains(message, "gave") {
		return false
	}
	if len(p.cfg.HideGiveForPlayers) > 0 {
		pl, ok := p.state.PlayerByName(senderName)
		if !ok {
			return false
		}
		for _, id := range p.cfg.HideGiveForPlayers {
			if id == uint64(pl.ID) {
				return true
			}
		}
		return false
	}
	if p.cfg.HideGiveForAdmins {
		pl, ok := p.state.PlayerByName(senderName)
		if ok && !pl.Admin {
			return false
		}
	}
	return true
}

// --- skin browser hooks ---

// OnHammerHit targets a placed object for reskinning: the browse panel
// opens in hammer mode showing the variants for the object's item type.
// Returns true when the hit was consumed.
func (p *Plugin) OnHammerHit(user world.UserID, entity world.EntityID) bool {
	if !p.cfg.SkinsEnabled {
		return false
	}
	pl, ok := p.state.Player(user)
	if !ok || !p.Authenticated(user) {
		return false
	}
	s, ok := p.sessions.Lookup(user)
	if !ok {
		return false
	}
	b, ok := p.state.Block(entity)
	if !ok {
		return false
	}
	if !b.AtFullHealth() {
		p.host.Message(user, p.msgs.Get(pl.Language, MsgSkinNotFullHealth))
		return true
	}
	def, ok := p.defs.ByShortname(b.Shortname)
	if !ok {
		p.host.Message(user, p.msgs.Get(pl.Language, MsgSkinNoVariants, b.Shortname))
		return true
	}
	s.Close() // an item-mode panel may still be open
	s.SetHammerTarget(b)
	s.Open(world.NewItem(def, 1, b.Skin()))
	return true
}

// CanMoveItem intercepts an attempted inventory move. Returns true when
// the plugin consumed the move and the host must not perform it.
func (p *Plugin) CanMoveItem(user world.UserID, item *world.Item, targetContainer uint64, rootless bool) bool {
	s, ok := p.sessions.Lookup(user)
	if !ok || item == nil {
		return false
	}
	switch s.DecideMove(targetContainer, rootless) {
	case skins.MovePass:
		return false
	case skins.MoveSuppress:
		return true
	case skins.MoveRetarget:
		s.RenderPage(item, 1)
		return true
	case skins.MoveApplyItem:
		p.applySkinToItem(user, s, item)
		return true
	case skins.MoveApplyEntity:
		p.applySkinToEntity(user, s, item)
		return true
	}
	return false
}

// applySkinToItem stamps the picked skin onto the browse target item and
// remembers it as the user's default for that item type. The panel stays
// open so the user can keep browsing.
func (p *Plugin) applySkinToItem(user world.UserID, s *skins.Session, picked *world.Item) {
	target := s.Target()
	if target == nil {
		return
	}
	target.SkinID = picked.SkinID
	p.recordSkin(user, target.Def.ItemID, picked.SkinID, "item")
}

// applySkinToEntity stamps the picked skin onto the hammer-targeted
// object and closes the panel.
func (p *Plugin) applySkinToEntity(user world.UserID, s *skins.Session, picked *world.Item) {
	ent := s.TargetEntity()
	if ent != nil {
		ent.ApplySkin(picked.SkinID)
		var itemID int32
		if picked.Def != nil {
			itemID = picked.Def.ItemID
		}
		p.recordSkin(user, itemID, picked.SkinID, "entity")
	}
	s.Close()
}

func (p *Plugin) recordSkin(user world.UserID, itemID int32, skinID uint64, target string) {
	if prefs, ok := p.prefs[user]; ok {
		prefs.DefaultSkins[uint64(itemID)] = skinID
	}
	p.bus.Emit(events.Event{Type: events.EvSkinApplied, User: user, ItemID: itemID, SkinID: skinID})
	if p.metrics != nil {
		p.metrics.skinsApplied.Inc()
	}
	if p.audit != nil {
		if err := p.audit.Record(p.clock.Now(), user, itemID, skinID, target); err != nil {
			log.Printf("plugin: %v", err)
		}
	}
}
