package world

// BuildingGrade is the construction tier of a building block.
type BuildingGrade int

const (
	GradeTwigs BuildingGrade = iota
	GradeWood
	GradeStone
	GradeMetal
	GradeArmored
)

func (g BuildingGrade) String() string {
	switch g {
	case GradeTwigs:
		return "twigs"
	case GradeWood:
		return "wood"
	case GradeStone:
		return "stone"
	case GradeMetal:
		return "metal"
	case GradeArmored:
		return "armored"
	default:
		return "unknown"
	}
}

// BuildingBlock is a placed structural element. The block owns itself;
// decay controllers only observe it through the host arena.
type BuildingBlock struct {
	ID         EntityID
	BuildingID int64
	Shortname  string
	Grade      BuildingGrade
	Health     float64
	MaxHealth  float64

	// CanRotateAfterPlacement comes from the block definition; blocks
	// without it never get a rotate window.
	CanRotateAfterPlacement bool

	demolishable bool
	rotatable    bool
	skin         uint64
}

// SetDemolishable flips the demolishable flag. Idempotent.
func (b *BuildingBlock) SetDemolishable(v bool) { b.demolishable = v }

// Demolishable reports whether the block can currently be demolished.
func (b *BuildingBlock) Demolishable() bool { return b.demolishable }

// SetRotatable flips the rotatable flag. Idempotent.
func (b *BuildingBlock) SetRotatable(v bool) { b.rotatable = v }

// Rotatable reports whether the block can currently be re-oriented.
func (b *BuildingBlock) Rotatable() bool { return b.rotatable }

// ApplySkin sets the block's skin id.
func (b *BuildingBlock) ApplySkin(skin uint64) { b.skin = skin }

// Skin returns the block's current skin id.
func (b *BuildingBlock) Skin() uint64 { return b.skin }

// AtFullHealth reports whether the block is undamaged. The hammer browse
// path only opens for undamaged targets.
func (b *BuildingBlock) AtFullHealth() bool { return b.Health >= b.MaxHealth }
