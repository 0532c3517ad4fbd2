package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPairIsOrderIndependent(t *testing.T) {
	a1, b1 := CanonicalPair("u_ben", "u_anna")
	a2, b2 := CanonicalPair("u_anna", "u_ben")
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, "u_anna", a1, "human pairs sort lexicographically")

	assert.Equal(t, PairKey("u_ben", "u_anna"), PairKey("u_anna", "u_ben"))
}

func TestCanonicalPairKeepsHumanFirst(t *testing.T) {
	// "persona_x" sorts before "u_anna", but the human still takes slot one.
	p1, p2 := CanonicalPair("persona_luna", "u_anna")
	assert.Equal(t, "u_anna", p1)
	assert.Equal(t, "persona_luna", p2)

	p1, p2 = CanonicalPair("u_anna", "persona_luna")
	assert.Equal(t, "u_anna", p1)
	assert.Equal(t, "persona_luna", p2)

	assert.Equal(t, "u_anna#persona_luna", PairKey("persona_luna", "u_anna"))
}

func TestRefClassifiesIDs(t *testing.T) {
	assert.Equal(t, KindPersona, Ref("persona_luna").Kind)
	assert.Equal(t, KindUser, Ref("u_anna").Kind)
	assert.True(t, IsPersonaID("persona_luna"))
	assert.False(t, IsPersonaID("u_persona_fan"))
}
