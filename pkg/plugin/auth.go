package plugin

import (
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/icrus-dev/irsplugin/pkg/events"
	"github.com/icrus-dev/irsplugin/pkg/sched"
	"github.com/icrus-dev/irsplugin/pkg/world"
)

// authState tracks one connected user's progress through the password
// gate. Whitelisted users are created pre-authenticated.
type authState struct {
	authenticated bool
	retries       int
	kickTimer     sched.Handle
}

// beginAuth starts the gate for a newly connected user: whitelisted
// users pass immediately, everyone else gets a prompt and a kick timer.
func (p *Plugin) beginAuth(pl *world.Player) {
	st := &authState{}
	p.auth[pl.ID] = st

	if p.cfg.Whitelisted(uint64(pl.ID)) {
		st.authenticated = true
		p.host.Message(pl.ID, p.msgs.Get(pl.Language, MsgAuthWhitelisted))
		return
	}

	p.host.Message(pl.ID, p.msgs.Get(pl.Language, MsgAuth, p.cfg.AuthTimeoutSec))
	id := pl.ID
	lang := pl.Language
	st.kickTimer = p.queue.Schedule(p.cfg.AuthTimeoutSec, func() {
		cur, ok := p.auth[id]
		if !ok || cur.authenticated {
			return
		}
		log.Printf("plugin: auth timeout for user %d", id)
		p.host.Kick(id, p.msgs.Get(lang, MsgAuthTimeout))
	})
}

// Authenticated reports whether a user has passed the gate. With the
// gate unconfigured everyone counts as authenticated.
func (p *Plugin) Authenticated(user world.UserID) bool {
	if !p.cfg.AuthEnabled() {
		return true
	}
	st, ok := p.auth[user]
	return ok && st.authenticated
}

// checkPassword verifies a candidate against the configured credential.
// A bcrypt hash takes precedence over the plaintext password.
func (p *Plugin) checkPassword(candidate string) bool {
	if p.cfg.AuthPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(p.cfg.AuthPasswordHash), []byte(candidate)) == nil
	}
	return p.cfg.AuthPassword != "" && candidate == p.cfg.AuthPassword
}

func (p *Plugin) cmdAuth(user world.UserID, args []string) {
	if !p.cfg.AuthEnabled() {
		return
	}
	pl, ok := p.state.Player(user)
	if !ok {
		return
	}
	st, ok := p.auth[user]
	if !ok || st.authenticated {
		return
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		p.host.Message(user, p.msgs.Get(pl.Language, MsgAuthInvalid))
		return
	}

	if !p.checkPassword(args[0]) {
		st.retries++
		p.bus.Emit(events.Event{Type: events.EvAuthFailed, User: user})
		if p.metrics != nil {
			p.metrics.authOutcomes.WithLabelValues("failed").Inc()
		}
		remaining := p.cfg.AuthMaxRetries - st.retries
		if remaining <= 0 {
			log.Printf("plugin: user %d exhausted auth attempts", user)
			p.queue.Cancel(st.kickTimer)
			p.host.Kick(user, p.msgs.Get(pl.Language, MsgAuthFailure))
			return
		}
		p.host.Message(user, p.msgs.Get(pl.Language, MsgAuthIncorrect, remaining))
		return
	}

	p.queue.Cancel(st.kickTimer)
	st.kickTimer = 0
	st.retries = 0
	st.authenticated = true
	p.bus.Emit(events.Event{Type: events.EvAuthPassed, User: user})
	if p.metrics != nil {
		p.metrics.authOutcomes.WithLabelValues("passed").Inc()
	}
	log.Printf("plugin: user %d authenticated", user)

	if p.cfg.AuthAutoRegister && !p.cfg.Whitelisted(uint64(user)) {
		p.cfg.AuthWhitelist = append(p.cfg.AuthWhitelist, uint64(user))
		if p.cfgPath != "" {
			if err := p.cfg.Save(p.cfgPath); err != nil {
				log.Printf("plugin: save whitelist: %v", err)
			}
		}
		p.host.Message(user, p.msgs.Get(pl.Language, MsgAuthRegistered))
		return
	}
	p.host.Message(user, p.msgs.Get(pl.Language, MsgAuthSuccess))
}
