package skins

// MoveAction classifies an attempted item move while a browse session is
// open. The host glue intercepts every move and asks the session what the
// move means; none of the browser's pseudo-moves ever materialize as real
// inventory transfers.
type MoveAction int

const (
	MovePass        MoveAction = iota // Not ours; let the host move the item
	MoveSuppress                      // Swallow the move entirely
	MoveRetarget                      // Re-render with the moved item as the new target
	MoveApplyItem                     // Apply the picked skin to the target item
	MoveApplyEntity                   // Apply the picked skin to the target entity
)

func (a MoveAction) String() string {
	switch a {
	case MovePass:
		return "pass"
	case MoveSuppress:
		return "suppress"
	case MoveRetarget:
		return "retarget"
	case MoveApplyItem:
		return "apply_item"
	case MoveApplyEntity:
		return "apply_entity"
	default:
		return "unknown"
	}
}

// DecideMove classifies a move given the destination container uid and
// whether the moved item has no containing parent (true for duplicates
// picked out of the virtual container — they live in no real inventory).
//
// Item mode: a real item dragged into the virtual container retargets the
// browse onto it; a rootless pick dragged out applies its skin. Hammer
// mode: drops into the container are swallowed, rootless picks apply to
// the targeted world object.
func (s *Session) DecideMove(targetContainer uint64, rootless bool) MoveAction {
	if !s.visible {
		return MovePass
	}
	if s.hammerMode {
		if targetContainer == s.container.UID() {
			return MoveSuppress
		}
		if rootless {
			return MoveApplyEntity
		}
		return MovePass
	}
	if targetContainer == s.container.UID() {
		return MoveRetarget
	}
	if rootless {
		return MoveApplyItem
	}
	return MovePass
}
