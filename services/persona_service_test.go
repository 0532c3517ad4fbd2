package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil_server/models"
)

func catalogPersonas() []models.Persona {
	return []models.Persona{
		{
			PersonaID: "persona_luna", Name: "Luna", Age: 26, Gender: "female", City: "berlin",
			Preferences: models.MatchPreferences{Genders: []string{"male"}, AgeMin: 24, AgeMax: 40},
		},
		{
			PersonaID: "persona_viktor", Name: "Viktor", Age: 33, Gender: "male", City: "berlin",
			Preferences: models.MatchPreferences{Genders: []string{"female"}, AgeMin: 25, AgeMax: 45},
		},
		{
			PersonaID: "persona_noa", Name: "Noa", Age: 29, Gender: "female", City: "berlin",
			Preferences: models.MatchPreferences{Genders: []string{"female", "male"}, AgeMin: 21, AgeMax: 50},
		},
	}
}

func TestPersonaCatalogLookup(t *testing.T) {
	svc := NewPersonaService(catalogPersonas(), zerolog.Nop())

	p, err := svc.GetByID("persona_luna")
	require.NoError(t, err)
	assert.Equal(t, "Luna", p.Name)

	_, err = svc.GetByID("persona_ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.True(t, svc.IsPersonaID("persona_luna"))
	assert.False(t, svc.IsPersonaID("u_anna"))
}

func TestPickRandomFiltersBothDirections(t *testing.T) {
	svc := NewPersonaService(catalogPersonas(), zerolog.Nop())

	// A 28-year-old woman seeking women: only Noa accepts women back.
	seeker := &models.UserProfile{
		UserID: "u_anna", Gender: "female", Age: 28,
		Preferences: &models.MatchPreferences{Genders: []string{"female"}, AgeMin: 20, AgeMax: 40},
	}
	for i := 0; i < 20; i++ {
		p := svc.PickRandom(seeker, nil)
		require.NotNil(t, p)
		assert.Equal(t, "persona_noa", p.PersonaID)
	}

	// A seeker outside every persona's own age filter gets nothing.
	tooYoung := &models.UserProfile{
		UserID: "u_kid", Gender: "male", Age: 18,
		Preferences: &models.MatchPreferences{Genders: []string{"female"}, AgeMin: 18, AgeMax: 60},
	}
	assert.Nil(t, svc.PickRandom(tooYoung, nil))
}

func TestPickRandomHonorsExclusions(t *testing.T) {
	svc := NewPersonaService(catalogPersonas(), zerolog.Nop())
	seeker := &models.UserProfile{
		UserID: "u_ben", Gender: "male", Age: 30,
		Preferences: &models.MatchPreferences{Genders: []string{"female"}, AgeMin: 20, AgeMax: 40},
	}

	exclude := map[string]struct{}{"persona_luna": {}}
	for i := 0; i < 20; i++ {
		p := svc.PickRandom(seeker, exclude)
		require.NotNil(t, p)
		assert.Equal(t, "persona_noa", p.PersonaID, "excluded and non-matching personas never surface")
	}

	exclude["persona_noa"] = struct{}{}
	assert.Nil(t, svc.PickRandom(seeker, exclude))
}

func TestPickRandomRequiresSeekerPreferences(t *testing.T) {
	svc := NewPersonaService(catalogPersonas(), zerolog.Nop())
	assert.Nil(t, svc.PickRandom(&models.UserProfile{UserID: "u_x"}, nil))
}

func TestDefaultPersonasAreWellFormed(t *testing.T) {
	svc := NewPersonaService(models.DefaultPersonas(), zerolog.Nop())
	for _, p := range models.DefaultPersonas() {
		assert.True(t, models.IsPersonaID(p.PersonaID), "persona id %q must carry the namespace prefix", p.PersonaID)
		assert.NotEmpty(t, p.Name)
		assert.Greater(t, p.ReplyDelayMax, 0)
		assert.GreaterOrEqual(t, p.ReplyDelayMax, p.ReplyDelayMin)
		got, err := svc.GetByID(p.PersonaID)
		require.NoError(t, err)
		assert.Equal(t, p.Name, got.Name)
	}
}
