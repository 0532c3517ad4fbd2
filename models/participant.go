package models

import "strings"

// PersonaIDPrefix namespaces synthetic profile ids. A participant id either
// carries this prefix (persona) or not (real user); the two id spaces never
// overlap.
const PersonaIDPrefix = "persona_"

// ParticipantKind tags a participant id as user or persona.
type ParticipantKind string

const (
	KindUser    ParticipantKind = "user"
	KindPersona ParticipantKind = "persona"
)

// ParticipantRef is a resolved participant id.
type ParticipantRef struct {
	ID   string
	Kind ParticipantKind
}

// IsPersonaID reports whether id belongs to the persona namespace.
func IsPersonaID(id string) bool {
	return strings.HasPrefix(id, PersonaIDPrefix)
}

// Ref classifies a participant id.
func Ref(id string) ParticipantRef {
	if IsPersonaID(id) {
		return ParticipantRef{ID: id, Kind: KindPersona}
	}
	return ParticipantRef{ID: id, Kind: KindUser}
}

// CanonicalPair orders two participant ids deterministically: a human always
// takes the first slot of a human/persona pair, otherwise lexicographic
// order. Both orderings of the same two ids yield the same result, which is
// what makes the pair key stable.
func CanonicalPair(a, b string) (string, string) {
	aPersona, bPersona := IsPersonaID(a), IsPersonaID(b)
	if aPersona != bPersona {
		if aPersona {
			return b, a
		}
		return a, b
	}
	if a > b {
		return b, a
	}
	return a, b
}

// PairKey is the canonical storage key for an unordered participant pair.
func PairKey(a, b string) string {
	p1, p2 := CanonicalPair(a, b)
	return p1 + "#" + p2
}
