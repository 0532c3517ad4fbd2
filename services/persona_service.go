package services

import (
	"math/rand"

	"github.com/rs/zerolog"

	"veil_server/models"
)

// PersonaService is the read-only catalog of synthetic personas. The fixture
// set is indexed once at construction; there are no mutation operations.
type PersonaService struct {
	personas []models.Persona
	byID     map[string]*models.Persona
	Log      zerolog.Logger
}

func NewPersonaService(personas []models.Persona, log zerolog.Logger) *PersonaService {
	s := &PersonaService{
		personas: personas,
		byID:     make(map[string]*models.Persona, len(personas)),
		Log:      log.With().Str("service", "personas").Logger(),
	}
	for i := range s.personas {
		s.byID[s.personas[i].PersonaID] = &s.personas[i]
	}
	s.Log.Info().Int("count", len(personas)).Msg("persona catalog loaded")
	return s
}

// GetByID returns the persona or ErrNotFound.
func (s *PersonaService) GetByID(id string) (*models.Persona, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// IsPersonaID reports whether id is in the persona namespace. Pure predicate,
// no lookup.
func (s *PersonaService) IsPersonaID(id string) bool {
	return models.IsPersonaID(id)
}

// PickRandom returns a uniformly random persona accepted by the seeker's
// filter whose own filter accepts the seeker back, excluding the given ids.
// Nil when the filtered set is empty.
func (s *PersonaService) PickRandom(seeker *models.UserProfile, exclude map[string]struct{}) *models.Persona {
	prefs := seeker.Preferences
	if prefs == nil {
		return nil
	}

	var eligible []*models.Persona
	for i := range s.personas {
		p := &s.personas[i]
		if _, skip := exclude[p.PersonaID]; skip {
			continue
		}
		if !prefs.Accepts(p.Gender, p.Age) {
			continue
		}
		if !p.Preferences.Accepts(seeker.Gender, seeker.Age) {
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return nil
	}
	return eligible[rand.Intn(len(eligible))]
}
