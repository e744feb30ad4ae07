package events

import "github.com/icrus-dev/irsplugin/pkg/world"

// EventType classifies plugin events for subscribers.
type EventType int

const (
	EvEntitySpawned    EventType = iota // Building block registered
	EvEntityKilled                      // Building block destroyed
	EvUserConnected                     // User session opened
	EvUserDisconnected                  // User session closed
	EvDemolishEnded                     // Demolish window expired
	EvRotateEnded                       // Rotate window expired
	EvSkinBrowse                        // Skin browser page rendered
	EvSkinApplied                       // Skin applied to item or entity
	EvAuthPassed                        // Password authentication succeeded
	EvAuthFailed                        // Password authentication failed
	EvChat                              // Chat line passed through the gate
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EvEntitySpawned:
		return "entity_spawned"
	case EvEntityKilled:
		return "entity_killed"
	case EvUserConnected:
		return "user_connected"
	case EvUserDisconnected:
		return "user_disconnected"
	case EvDemolishEnded:
		return "demolish_ended"
	case EvRotateEnded:
		return "rotate_ended"
	case EvSkinBrowse:
		return "skin_browse"
	case EvSkinApplied:
		return "skin_applied"
	case EvAuthPassed:
		return "auth_passed"
	case EvAuthFailed:
		return "auth_failed"
	case EvChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Event is a structured plugin event. Subscribers decide how to encode it:
// the websocket feed sends JSON, the audit log stores rows, the logger
// formats text.
type Event struct {
	Type   EventType      `json:"type"`
	User   world.UserID   `json:"user,omitempty"`
	Entity world.EntityID `json:"entity,omitempty"`
	ItemID int32          `json:"item_id,omitempty"`
	SkinID uint64         `json:"skin_id,omitempty"`
	Page   int            `json:"page,omitempty"`
	Text   string         `json:"text,omitempty"`
}
