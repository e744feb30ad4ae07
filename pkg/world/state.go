package world

// Player is a connected user as seen by the plugin.
type Player struct {
	ID        UserID
	Name      string
	Language  string // client-reported language tag, e.g. "en", "ko"
	Admin     bool
	Held      *Item
	Inventory *Container
}

// State is the host-owned entity arena. Registries never hold live block
// or player pointers; they look entries up by id on every access so a
// destroyed entity can never be touched through a stale reference.
type State struct {
	blocks  map[EntityID]*BuildingBlock
	players map[UserID]*Player
	nextUID uint64
}

// NewState creates an empty arena.
func NewState() *State {
	return &State{
		blocks:  make(map[EntityID]*BuildingBlock),
		players: make(map[UserID]*Player),
	}
}

// AddBlock registers a live building block.
func (s *State) AddBlock(b *BuildingBlock) {
	s.blocks[b.ID] = b
}

// RemoveBlock drops a block from the arena. No-op on unknown ids.
func (s *State) RemoveBlock(id EntityID) {
	delete(s.blocks, id)
}

// Block looks up a live block by id.
func (s *State) Block(id EntityID) (*BuildingBlock, bool) {
	b, ok := s.blocks[id]
	return b, ok
}

// BlockIDs returns the ids of all live blocks.
func (s *State) BlockIDs() []EntityID {
	ids := make([]EntityID, 0, len(s.blocks))
	for id := range s.blocks {
		ids = append(ids, id)
	}
	return ids
}

// BlockCount returns the number of live blocks.
func (s *State) BlockCount() int { return len(s.blocks) }

// AddPlayer registers a connected player.
func (s *State) AddPlayer(p *Player) {
	s.players[p.ID] = p
}

// RemovePlayer drops a player. No-op on unknown ids.
func (s *State) RemovePlayer(id UserID) {
	delete(s.players, id)
}

// Player looks up a connected player by id.
func (s *State) Player(id UserID) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// PlayerByName finds a connected player by display name.
func (s *State) PlayerByName(name string) (*Player, bool) {
	for _, p := range s.players {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Players returns all connected players.
func (s *State) Players() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	return out
}

// NextContainerUID hands out a fresh uid for a server-side container.
func (s *State) NextContainerUID() uint64 {
	s.nextUID++
	return s.nextUID
}
