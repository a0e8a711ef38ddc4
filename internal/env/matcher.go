package env

// Contained reports whether the required tree is structurally satisfied by
// the available tree.
//
// The rules are evaluated in order by the shape of required:
//
//   - Map: every key of required must exist in available and its value must
//     be contained in the corresponding available value. The first failing
//     key short-circuits the whole call.
//
//   - Sequence vs non-sequence: required is read as a list of acceptable
//     values for a single configured value; the match succeeds iff available
//     equals one of them.
//
//   - Sequence vs sequence: a leading wildcard in required turns the match
//     into an existence-only check (any non-empty available sequence
//     passes). Otherwise elements of required are matched in order against
//     a working copy of available: a required scalar must be present in the
//     working copy (absence fails immediately, presence is counted but not
//     consumed, so duplicate scalar requirements may re-match one available
//     entry); a required map consumes the first working-copy entry holding
//     every one of its key/value pairs (no immediate failure when none
//     does). The match succeeds only when the total count of confirmed
//     matches equals the number of required elements.
//
//   - Scalar / wildcard: the wildcard matches anything; otherwise the two
//     scalars must be equal.
//
// The required-map-element rule inside sequences is exact pair equality,
// not recursive containment.
//
// Contained never mutates either tree and is safe for concurrent use.
func Contained(required, available *Tree) bool {
	switch required.kind {
	case Map:
		if available.kind != Map {
			return false
		}
		for _, k := range required.keys {
			av, ok := available.entries[k]
			if !ok || !Contained(required.entries[k], av) {
				return false
			}
		}
		return true

	case Sequence:
		if available.kind != Sequence {
			return sequenceHas(required.items, available)
		}
		if len(required.items) > 0 && required.items[0].IsWildcard() && len(available.items) > 0 {
			return true
		}

		working := make([]*Tree, len(available.items))
		copy(working, available.items)

		matched := 0
		for _, want := range required.items {
			if want.kind == Map {
				for i, have := range working {
					if have.kind == Map && pairsSubset(want, have) {
						working = append(working[:i], working[i+1:]...)
						matched++
						break
					}
				}
				continue
			}
			if !sequenceHas(working, want) {
				return false
			}
			matched++
		}
		return matched == len(required.items)

	case Null:
		// The wildcard matches any available value, and two wildcards are
		// trivially equal.
		return true

	default: // Scalar
		return required.Equal(available)
	}
}

// sequenceHas reports whether v equals any element of items.
func sequenceHas(items []*Tree, v *Tree) bool {
	for _, it := range items {
		if it.Equal(v) {
			return true
		}
	}
	return false
}

// pairsSubset reports whether every key/value pair of want is present,
// with an equal value, in have. Both nodes must be maps.
func pairsSubset(want, have *Tree) bool {
	for _, k := range want.keys {
		hv, ok := have.entries[k]
		if !ok || !want.entries[k].Equal(hv) {
			return false
		}
	}
	return true
}
