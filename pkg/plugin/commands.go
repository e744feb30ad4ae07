package plugin

import (
	"github.com/icrus-dev/irsplugin/pkg/world"
)

// HandleCommand dispatches a chat command (the leading slash already
// stripped). Returns true when the command belonged to the plugin.
// "_skin_prev" and "_skin_next" are the bound pager buttons.
func (p *Plugin) HandleCommand(user world.UserID, command string, args []string) bool {
	switch command {
	case "auth":
		p.cmdAuth(user, args)
		return true
	case "skin":
		p.cmdSkin(user)
		return true
	case "_skin_prev":
		p.cmdSkinPage(user, -1)
		return true
	case "_skin_next":
		p.cmdSkinPage(user, +1)
		return true
	}
	return false
}

// cmdSkin opens the browse panel on the user's held item, or empty when
// nothing is held.
func (p *Plugin) cmdSkin(user world.UserID) {
	pl, ok := p.state.Player(user)
	if !ok || !p.Authenticated(user) {
		return
	}
	if !p.cfg.SkinsEnabled {
		p.host.Message(user, p.msgs.Get(pl.Language, MsgSkinDisabled))
		return
	}
	s, ok := p.sessions.Lookup(user)
	if !ok {
		return
	}
	s.Open(pl.Held)
}

// cmdSkinPage moves an open panel one page in either direction. The
// session clamps out-of-range requests itself.
func (p *Plugin) cmdSkinPage(user world.UserID, delta int) {
	s, ok := p.sessions.Lookup(user)
	if !ok || !s.Visible() {
		return
	}
	s.RenderPage(s.Target(), s.Page()+delta)
}
