package world

// EntityID is the stable network identity of a spawned entity.
type EntityID uint64

// UserID is the stable identity of a connected user.
type UserID uint64

// DefaultSkin is the skin id meaning "no skin / default appearance".
const DefaultSkin uint64 = 0

// Skinnable is anything that can carry a skin applied from the browser.
type Skinnable interface {
	ApplySkin(skin uint64)
	Skin() uint64
}

// ItemDef describes an item type as reported by the host item manager.
type ItemDef struct {
	ItemID           int32
	Shortname        string
	HasCondition     bool
	MaxCondition     float64
	ContentsCapacity int  // sub-container slots; 0 = item nests nothing
	IsProjectile     bool // ranged-weapon-like item with a magazine
	MagazineCapacity int
}

// Magazine is the loaded-ammunition payload of a projectile item.
type Magazine struct {
	AmmoType int32
	Contents int
}

// Item is a single item instance. Items built for the virtual browse
// container are transient and never enter a real inventory.
type Item struct {
	Def          *ItemDef
	Amount       int
	SkinID       uint64
	Condition    float64
	MaxCondition float64
	Contents     *Container
	Magazine     *Magazine
}

// NewItem creates an item instance from a definition with full condition
// and, where the definition calls for them, an empty sub-container and
// magazine.
func NewItem(def *ItemDef, amount int, skin uint64) *Item {
	it := &Item{
		Def:    def,
		Amount: amount,
		SkinID: skin,
	}
	if def.HasCondition {
		it.Condition = def.MaxCondition
		it.MaxCondition = def.MaxCondition
	}
	if def.ContentsCapacity > 0 {
		it.Contents = NewContainer(0, def.ContentsCapacity)
	}
	if def.IsProjectile {
		it.Magazine = &Magazine{}
	}
	return it
}

// Duplicate creates a presentation copy of the item: same type, same
// condition ratio, same sub-container capacity, same magazine payload,
// but with the given amount and skin. amount == 0 keeps the source amount.
// Condition and capacity are copied field by field, never shared.
func (it *Item) Duplicate(amount int, skin uint64) *Item {
	n := amount
	if n == 0 {
		n = it.Amount
	}
	dup := &Item{
		Def:    it.Def,
		Amount: n,
		SkinID: skin,
	}
	if it.Def.HasCondition {
		dup.Condition = it.Condition
		dup.MaxCondition = it.MaxCondition
	}
	if it.Contents != nil {
		dup.Contents = NewContainer(0, it.Contents.Capacity())
	}
	if it.Magazine != nil {
		dup.Magazine = &Magazine{
			AmmoType: it.Magazine.AmmoType,
			Contents: it.Magazine.Contents,
		}
	}
	return dup
}

// Defs resolves item definitions by shortname and by numeric id.
type Defs struct {
	byShortname map[string]*ItemDef
	byID        map[int32]*ItemDef
}

// NewDefs builds a definition lookup. Duplicate shortnames keep the first
// definition seen, matching host item-list enumeration order.
func NewDefs(defs []*ItemDef) *Defs {
	d := &Defs{
		byShortname: make(map[string]*ItemDef, len(defs)),
		byID:        make(map[int32]*ItemDef, len(defs)),
	}
	for _, def := range defs {
		if _, ok := d.byShortname[def.Shortname]; !ok {
			d.byShortname[def.Shortname] = def
		}
		if _, ok := d.byID[def.ItemID]; !ok {
			d.byID[def.ItemID] = def
		}
	}
	return d
}

// ByShortname looks up a definition by its short textual key.
func (d *Defs) ByShortname(name string) (*ItemDef, bool) {
	def, ok := d.byShortname[name]
	return def, ok
}

// ByID looks up a definition by numeric item id.
func (d *Defs) ByID(id int32) (*ItemDef, bool) {
	def, ok := d.byID[id]
	return def, ok
}

// Len returns the number of distinct item ids known.
func (d *Defs) Len() int { return len(d.byID) }
