package models

import "time"

// MatchPreferences is the filter a user (or persona) applies to candidates.
type MatchPreferences struct {
	Genders       []string `dynamodbav:"genders" json:"genders"`
	AgeMin        int      `dynamodbav:"ageMin" json:"ageMin"`
	AgeMax        int      `dynamodbav:"ageMax" json:"ageMax"`
	MaxDistanceKm int      `dynamodbav:"maxDistanceKm,omitempty" json:"maxDistanceKm,omitempty"`
}

// Accepts reports whether gender/age pass the filter. An empty gender list
// accepts any gender; AgeMax of zero means no upper bound.
func (p MatchPreferences) Accepts(gender string, age int) bool {
	if age < p.AgeMin || (p.AgeMax > 0 && age > p.AgeMax) {
		return false
	}
	if len(p.Genders) == 0 {
		return true
	}
	for _, g := range p.Genders {
		if g == gender {
			return true
		}
	}
	return false
}

// UserProfile is the stored profile for a real user.
type UserProfile struct {
	UserID            string            `dynamodbav:"userId" json:"userId"` // Partition key
	Email             string            `dynamodbav:"email,omitempty" json:"email,omitempty"`
	Name              string            `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Gender            string            `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
	Age               int               `dynamodbav:"age,omitempty" json:"age,omitempty"`
	City              string            `dynamodbav:"city,omitempty" json:"city,omitempty"`
	Bio               string            `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	Interests         []string          `dynamodbav:"interests,omitempty" json:"interests,omitempty"`
	Photos            []string          `dynamodbav:"photos,omitempty" json:"photos,omitempty"`
	Active            bool              `dynamodbav:"active" json:"active"` // Eligible for matching
	AIAssisted        bool              `dynamodbav:"aiAssisted,omitempty" json:"aiAssisted,omitempty"`
	LastActiveAt      time.Time         `dynamodbav:"lastActiveAt,omitempty" json:"lastActiveAt,omitempty"`
	Preferences       *MatchPreferences `dynamodbav:"preferences,omitempty" json:"preferences,omitempty"`
	Credits           int               `dynamodbav:"credits" json:"credits"`
	LastCreditRefresh string            `dynamodbav:"lastCreditRefresh,omitempty" json:"lastCreditRefresh,omitempty"` // RFC3339
	Matched           []string          `dynamodbav:"matched,omitempty" json:"matched,omitempty"`                     // Counterpart ids, user or persona
	Skipped           []string          `dynamodbav:"skipped,omitempty" json:"skipped,omitempty"`
	CreatedAt         time.Time         `dynamodbav:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// HasMatched reports whether counterpartID is already on the matched list.
func (u *UserProfile) HasMatched(counterpartID string) bool {
	for _, id := range u.Matched {
		if id == counterpartID {
			return true
		}
	}
	return false
}

// HasSkipped reports whether counterpartID is on the skip list.
func (u *UserProfile) HasSkipped(counterpartID string) bool {
	for _, id := range u.Skipped {
		if id == counterpartID {
			return true
		}
	}
	return false
}

// UsersTable is the DynamoDB table name for user profiles
const UsersTable = "Users"
