package catalog

import "fmt"

// LoadoutError reports a set of items that cannot be worn together.
type LoadoutError struct {
	Reason string
}

func (e *LoadoutError) Error() string {
	return "invalid loadout: " + e.Reason
}

// ValidateLoadout checks that items could be worn at the same time and returns
// the subset that takes part in combat.
//
// Items without a gear slot (resources, consumables) and utility items are
// dropped silently. Single slots allow one item, rings two, artifacts three and
// the same artifact may not be worn twice.
//
// Postcondition: Returns the gear items in input order, or a *LoadoutError.
func ValidateLoadout(items []Item) ([]Item, error) {
	worn := make([]Item, 0, len(items))
	counts := make(map[Slot]int)
	artifacts := make(map[string]bool)
	for _, it := range items {
		slot := it.Slot()
		if slot == SlotNone || slot == SlotUtility {
			continue
		}
		if counts[slot] >= slotCapacity[slot] {
			return nil, &LoadoutError{Reason: capacityReason(slot)}
		}
		if slot == SlotArtifact {
			if artifacts[it.Code] {
				return nil, &LoadoutError{Reason: fmt.Sprintf("cannot have more than one %s; equipping duplicate artifacts is not allowed", it.Code)}
			}
			artifacts[it.Code] = true
		}
		counts[slot]++
		worn = append(worn, it)
	}
	return worn, nil
}

func capacityReason(slot Slot) string {
	switch slot {
	case SlotRing:
		return "cannot have more than two ring items"
	case SlotArtifact:
		return "cannot have more than three artifact items"
	default:
		return fmt.Sprintf("cannot have more than one %s item", slot)
	}
}
