package plugin

import (
	"strings"
	"testing"

	"github.com/icrus-dev/irsplugin/pkg/sched"
	"github.com/icrus-dev/irsplugin/pkg/skins"
	"github.com/icrus-dev/irsplugin/pkg/world"
)

// fakeHost records every callback for assertions.
type fakeHost struct {
	messages   map[world.UserID][]string
	broadcasts []string
	kicked     map[world.UserID]string
	presented  map[world.UserID][][]*world.Item
	pager      map[world.UserID][2]int
	dismissed  map[world.UserID]int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		messages:  make(map[world.UserID][]string),
		kicked:    make(map[world.UserID]string),
		presented: make(map[world.UserID][][]*world.Item),
		pager:     make(map[world.UserID][2]int),
		dismissed: make(map[world.UserID]int),
	}
}

func (h *fakeHost) Message(user world.UserID, text string) {
	h.messages[user] = append(h.messages[user], text)
}

func (h *fakeHost) Broadcast(name, text string, sender world.UserID) {
	h.broadcasts = append(h.broadcasts, name+": "+text)
}

func (h *fakeHost) Kick(user world.UserID, reason string) {
	h.kicked[user] = reason
}

func (h *fakeHost) PresentLoot(user world.UserID, items []*world.Item) {
	h.presented[user] = append(h.presented[user], items)
}

func (h *fakeHost) DrawPager(user world.UserID, page, pageMax int) {
	h.pager[user] = [2]int{page, pageMax}
}

func (h *fakeHost) DismissLoot(user world.UserID) {
	h.dismissed[user]++
}

func (h *fakeHost) lastMessage(user world.UserID) string {
	msgs := h.messages[user]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func (h *fakeHost) lastPresented(user world.UserID) []*world.Item {
	all := h.presented[user]
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

func testDefs() *world.Defs {
	return world.NewDefs([]*world.ItemDef{
		{ItemID: 1, Shortname: "rifle.ak", HasCondition: true, MaxCondition: 100},
		{ItemID: 2, Shortname: "foundation"},
	})
}

func testEntries() []skins.CatalogEntry {
	return []skins.CatalogEntry{
		{Shortname: "rifle.ak", SkinID: 1001},
		{Shortname: "rifle.ak", SkinID: 1002},
		{Shortname: "rifle.ak", SkinID: 1003},
		{Shortname: "foundation", SkinID: 2001},
		{Shortname: "foundation", SkinID: 2002},
	}
}

type pluginFixture struct {
	plugin *Plugin
	host   *fakeHost
	clock  *sched.ManualClock
	state  *world.State
}

func newFixture(t *testing.T, cfg *Config) *pluginFixture {
	t.Helper()
	host := newFakeHost()
	clock := sched.NewManualClock(1000)
	state := world.NewState()
	defs := testDefs()
	p, err := New(Options{
		Config:  cfg,
		State:   state,
		Clock:   clock,
		Host:    host,
		Defs:    defs,
		Catalog: skins.BuildCatalog(defs, testEntries()),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &pluginFixture{plugin: p, host: host, clock: clock, state: state}
}

func (f *pluginFixture) connect(id world.UserID, name string) *world.Player {
	pl := &world.Player{ID: id, Name: name, Language: "en"}
	f.plugin.OnUserConnected(pl)
	return pl
}

func authConfig() *Config {
	cfg := DefaultConfig()
	cfg.AuthPassword = "hunter2"
	return cfg
}

func openConfig() *Config {
	return DefaultConfig()
}

func TestAuthSuccessRegistersWhitelist(t *testing.T) {
	f := newFixture(t, authConfig())
	f.connect(7, "alice")

	if f.plugin.Authenticated(7) {
		t.Fatal("user authenticated before entering a password")
	}
	if got := f.host.lastMessage(7); !strings.Contains(got, "/auth") {
		t.Errorf("expected auth prompt, got %q", got)
	}

	f.plugin.HandleCommand(7, "auth", []string{"wrong"})
	if f.plugin.Authenticated(7) {
		t.Fatal("wrong password authenticated")
	}
	if got := f.host.lastMessage(7); !strings.Contains(got, "4") {
		t.Errorf("expected remaining-attempts message, got %q", got)
	}

	f.plugin.HandleCommand(7, "auth", []string{"hunter2"})
	if !f.plugin.Authenticated(7) {
		t.Fatal("correct password did not authenticate")
	}
	if !f.plugin.cfg.Whitelisted(7) {
		t.Error("auto-register did not whitelist the user")
	}

	// kick timer must be dead after success
	f.clock.Advance(f.plugin.cfg.AuthTimeoutSec + 1)
	f.plugin.Tick()
	if _, kicked := f.host.kicked[7]; kicked {
		t.Error("authenticated user was kicked by a stale timer")
	}

	// a whitelisted user reconnecting skips the gate
	f.plugin.OnUserDisconnected(7)
	f.connect(7, "alice")
	if !f.plugin.Authenticated(7) {
		t.Error("whitelisted user not pre-authenticated on reconnect")
	}
}

func TestAuthRetryLimitKicks(t *testing.T) {
	cfg := authConfig()
	cfg.AuthMaxRetries = 3
	f := newFixture(t, cfg)
	f.connect(9, "bob")

	for i := 0; i < 3; i++ {
		f.plugin.HandleCommand(9, "auth", []string{"nope"})
	}
	if _, ok := f.host.kicked[9]; !ok {
		t.Fatal("user not kicked after exhausting retries")
	}
}

func TestAuthTimeoutKicks(t *testing.T) {
	f := newFixture(t, authConfig())
	f.connect(5, "carol")

	f.clock.Advance(f.plugin.cfg.AuthTimeoutSec - 1)
	f.plugin.Tick()
	if _, ok := f.host.kicked[5]; ok {
		t.Fatal("kicked before the timeout elapsed")
	}

	f.clock.Advance(2)
	f.plugin.Tick()
	if _, ok := f.host.kicked[5]; !ok {
		t.Fatal("not kicked after the timeout elapsed")
	}
}

func TestAuthDisconnectCancelsKickTimer(t *testing.T) {
	f := newFixture(t, authConfig())
	f.connect(6, "dave")
	f.plugin.OnUserDisconnected(6)

	f.clock.Advance(f.plugin.cfg.AuthTimeoutSec + 1)
	f.plugin.Tick()
	if _, ok := f.host.kicked[6]; ok {
		t.Error("disconnected user kicked by a stale timer")
	}
}

func TestChatGateAndPasswordMasking(t *testing.T) {
	f := newFixture(t, authConfig())
	f.connect(3, "eve")

	if !f.plugin.OnChat(3, "hello") {
		t.Error("unauthenticated chat was not suppressed")
	}
	f.plugin.HandleCommand(3, "auth", []string{"hunter2"})

	if f.plugin.OnChat(3, "hello again") {
		t.Error("authenticated chat was suppressed")
	}

	if !f.plugin.OnChat(3, "the password is hunter2 btw") {
		t.Fatal("chat containing the password was not intercepted")
	}
	if len(f.host.broadcasts) == 0 {
		t.Fatal("masked line was not re-broadcast")
	}
	last := f.host.broadcasts[len(f.host.broadcasts)-1]
	if strings.Contains(last, "hunter2") {
		t.Errorf("password leaked into broadcast: %q", last)
	}
	if !strings.Contains(last, "*******") {
		t.Errorf("mask missing from broadcast: %q", last)
	}
}

func TestSkinCommandOpensAndPages(t *testing.T) {
	f := newFixture(t, openConfig())
	pl := f.connect(11, "frank")
	rifle, _ := testDefs().ByShortname("rifle.ak")
	pl.Held = world.NewItem(rifle, 1, 0)

	f.plugin.HandleCommand(11, "skin", nil)
	items := f.host.lastPresented(11)
	if len(items) != 4 { // revert slot + 3 variants
		t.Fatalf("presented %d items, want 4", len(items))
	}
	if items[0].SkinID != world.DefaultSkin {
		t.Errorf("slot 0 skin = %d, want revert slot", items[0].SkinID)
	}
	if got := f.host.pager[11]; got != [2]int{1, 1} {
		t.Errorf("pager = %v, want page 1 of 1", got)
	}

	// out-of-range next clamps: pager redrawn, no new page committed
	before := len(f.host.presented[11])
	f.plugin.HandleCommand(11, "_skin_next", nil)
	if len(f.host.presented[11]) != before {
		t.Error("clamped page was re-presented")
	}
	if got := f.host.pager[11]; got != [2]int{1, 1} {
		t.Errorf("pager after clamp = %v, want page 1 of 1", got)
	}
}

func TestCanMoveItemRetargetThenApply(t *testing.T) {
	f := newFixture(t, openConfig())
	f.connect(12, "grace")
	s, _ := f.plugin.Sessions().Lookup(12)

	f.plugin.HandleCommand(12, "skin", nil) // empty panel
	rifle, _ := testDefs().ByShortname("rifle.ak")
	held := world.NewItem(rifle, 1, 0)

	// dragging a real item into the virtual container retargets the browse
	if !f.plugin.CanMoveItem(12, held, s.Container().UID(), false) {
		t.Fatal("drag into browse container was not consumed")
	}
	if s.Target() != held {
		t.Fatal("session did not retarget onto the dragged item")
	}

	// picking a variant out applies its skin to the target
	pick := held.Duplicate(1, 1002)
	if !f.plugin.CanMoveItem(12, pick, 0, true) {
		t.Fatal("rootless pick was not consumed")
	}
	if held.SkinID != 1002 {
		t.Errorf("target skin = %d, want 1002", held.SkinID)
	}
	if !s.Visible() {
		t.Error("panel closed after an item apply")
	}
	if got := f.plugin.prefs[12].DefaultSkins[1]; got != 1002 {
		t.Errorf("default skin pref = %d, want 1002", got)
	}

	// ordinary inventory moves pass through
	if f.plugin.CanMoveItem(12, held, 999, false) {
		t.Error("unrelated move was consumed")
	}
}

func TestHammerModeAppliesToEntity(t *testing.T) {
	f := newFixture(t, openConfig())
	f.connect(13, "heidi")

	block := &world.BuildingBlock{
		ID: 500, BuildingID: 1, Shortname: "foundation",
		Health: 100, MaxHealth: 100, CanRotateAfterPlacement: true,
	}
	f.plugin.OnEntitySpawned(block, 0)

	if !f.plugin.OnHammerHit(13, 500) {
		t.Fatal("hammer hit on a full-health block was not consumed")
	}
	s, _ := f.plugin.Sessions().Lookup(13)
	if !s.HammerMode() || !s.Visible() {
		t.Fatal("session not open in hammer mode")
	}
	items := f.host.lastPresented(13)
	if len(items) != 3 { // revert + 2 foundation variants
		t.Fatalf("presented %d items, want 3", len(items))
	}

	// drops into the container are swallowed in hammer mode
	junk := items[1].Duplicate(1, items[1].SkinID)
	if !f.plugin.CanMoveItem(13, junk, s.Container().UID(), false) {
		t.Error("drop into container not swallowed in hammer mode")
	}

	pick := items[2].Duplicate(1, 2002)
	if !f.plugin.CanMoveItem(13, pick, 0, true) {
		t.Fatal("rootless pick was not consumed")
	}
	if block.Skin() != 2002 {
		t.Errorf("block skin = %d, want 2002", block.Skin())
	}
	if s.Visible() {
		t.Error("panel stayed open after an entity apply")
	}
	if f.host.dismissed[13] == 0 {
		t.Error("panel was not dismissed")
	}
}

func TestHammerHitDamagedBlockRefused(t *testing.T) {
	f := newFixture(t, openConfig())
	f.connect(14, "ivan")
	block := &world.BuildingBlock{
		ID: 501, BuildingID: 1, Shortname: "foundation",
		Health: 40, MaxHealth: 100,
	}
	f.plugin.OnEntitySpawned(block, 0)

	if !f.plugin.OnHammerHit(14, 501) {
		t.Fatal("hit on a known block should be consumed even when refused")
	}
	s, _ := f.plugin.Sessions().Lookup(14)
	if s.Visible() {
		t.Error("panel opened on a damaged block")
	}
	if f.host.lastMessage(14) == "" {
		t.Error("no refusal message sent")
	}
}

func TestDefaultSkinAppliedOnSpawn(t *testing.T) {
	f := newFixture(t, openConfig())
	f.connect(15, "judy")
	f.plugin.prefs[15].DefaultSkins[2] = 2001 // foundation item id

	block := &world.BuildingBlock{
		ID: 502, BuildingID: 2, Shortname: "foundation",
		Health: 100, MaxHealth: 100,
	}
	f.plugin.OnEntitySpawned(block, 15)
	if block.Skin() != 2001 {
		t.Errorf("spawned block skin = %d, want stored default 2001", block.Skin())
	}

	other := &world.BuildingBlock{
		ID: 503, BuildingID: 2, Shortname: "foundation",
		Health: 100, MaxHealth: 100,
	}
	f.plugin.OnEntitySpawned(other, 0)
	if other.Skin() != world.DefaultSkin {
		t.Errorf("builderless spawn skin = %d, want default", other.Skin())
	}
}

func TestGiveMessageSuppression(t *testing.T) {
	cfg := openConfig()
	cfg.HideGiveMessages = true
	cfg.HideGiveForAdmins = true
	f := newFixture(t, cfg)

	admin := f.connect(20, "admin")
	admin.Admin = true
	f.connect(21, "pleb")

	if !f.plugin.OnServerMessage("admin gave themselves 1000 x Wood", "admin") {
		t.Error("admin give message not suppressed")
	}
	if f.plugin.OnServerMessage("pleb gave themselves 1 x Rock", "pleb") {
		t.Error("non-admin give message suppressed with admin-only filter")
	}
	if f.plugin.OnServerMessage("server restarting soon", "admin") {
		t.Error("unrelated server message suppressed")
	}

	cfg.HideGiveForPlayers = []uint64{21}
	if !f.plugin.OnServerMessage("pleb gave themselves 1 x Rock", "pleb") {
		t.Error("listed player's give message not suppressed")
	}
	if f.plugin.OnServerMessage("admin gave themselves 1 x Rock", "admin") {
		t.Error("explicit player list should override the admin filter")
	}
}

func TestDisconnectReleasesSession(t *testing.T) {
	f := newFixture(t, openConfig())
	f.connect(30, "kim")
	f.plugin.HandleCommand(30, "skin", nil)
	if f.plugin.Sessions().OpenCount() != 1 {
		t.Fatal("panel not open")
	}

	f.plugin.OnUserDisconnected(30)
	if f.plugin.Sessions().Count() != 0 {
		t.Error("session survived disconnect")
	}
	if _, ok := f.state.Player(30); ok {
		t.Error("player survived disconnect")
	}
}

func TestConfigReloadRearmsWindows(t *testing.T) {
	f := newFixture(t, openConfig())
	block := &world.BuildingBlock{
		ID: 600, BuildingID: 3, Shortname: "foundation",
		Health: 100, MaxHealth: 100,
	}
	f.plugin.OnEntitySpawned(block, 0)
	if !block.Demolishable() {
		t.Fatal("demolish window not armed on spawn")
	}

	short := int64(10)
	next := DefaultConfig()
	next.DemolishSeconds = &short
	next.RotateSeconds = nil
	f.plugin.Reload() <- next
	f.plugin.Tick()

	f.clock.Advance(11)
	f.plugin.Tick()
	if block.Demolishable() {
		t.Error("shortened demolish window did not expire")
	}
}
