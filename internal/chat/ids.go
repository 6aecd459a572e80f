package chat

import "github.com/google/uuid"

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// removeID returns ids without the first occurrence of id and whether
// anything was removed.
func removeID(ids []uuid.UUID, id uuid.UUID) ([]uuid.UUID, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}

// pairKey is the canonical index key for an unordered user pair. It keeps
// direct conversations unique per pair regardless of argument order.
func pairKey(a, b uuid.UUID) string {
	if b.String() < a.String() {
		a, b = b, a
	}
	return a.String() + "|" + b.String()
}

// orderedPair returns the two ids in the same canonical order pairKey uses
func orderedPair(a, b uuid.UUID) []uuid.UUID {
	if b.String() < a.String() {
		a, b = b, a
	}
	return []uuid.UUID{a, b}
}
