package plugin

import (
	"log"

	"github.com/icrus-dev/irsplugin/pkg/world"
)

// Host is the game-server surface the plugin calls back into: chat
// delivery, kicks, and the loot-panel primitives the skin browser draws
// with. The real server provides this; tests and the standalone binary
// use stand-ins.
type Host interface {
	// Message sends a chat line to one user.
	Message(user world.UserID, text string)
	// Broadcast sends a chat line to everyone, attributed to name.
	Broadcast(name, text string, sender world.UserID)
	// Kick disconnects a user with a reason shown to them.
	Kick(user world.UserID, reason string)
	// PresentLoot shows (or refreshes) a loot panel with the given items.
	PresentLoot(user world.UserID, items []*world.Item)
	// DrawPager draws the page-navigation strip over an open loot panel.
	DrawPager(user world.UserID, page, pageMax int)
	// DismissLoot closes the loot panel and tears down the pager.
	DismissLoot(user world.UserID)
}

// LogHost is a Host that logs every callback. The standalone binary runs
// with it so the plugin can be exercised without a game server attached.
type LogHost struct{}

func (LogHost) Message(user world.UserID, text string) {
	log.Printf("host: message to %d: %s", user, text)
}

func (LogHost) Broadcast(name, text string, sender world.UserID) {
	log.Printf("host: broadcast [%s/%d]: %s", name, sender, text)
}

func (LogHost) Kick(user world.UserID, reason string) {
	log.Printf("host: kick %d: %s", user, reason)
}

func (LogHost) PresentLoot(user world.UserID, items []*world.Item) {
	log.Printf("host: present loot to %d (%d items)", user, len(items))
}

func (LogHost) DrawPager(user world.UserID, page, pageMax int) {
	log.Printf("host: pager for %d: page %d/%d", user, page, pageMax)
}

func (LogHost) DismissLoot(user world.UserID) {
	log.Printf("host: dismiss loot for %d", user)
}
