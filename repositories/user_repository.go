package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"veil_server/models"
	"veil_server/services"
)

// UserRepository is the DynamoDB implementation of services.UserStore.
type UserRepository struct {
	DB *services.DynamoService
}

func NewUserRepository(db *services.DynamoService) *UserRepository {
	return &UserRepository{DB: db}
}

func userKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
}

func (r *UserRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	item, err := r.DB.GetItem(ctx, models.UsersTable, userKey(userID))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.ErrNotFound
	}
	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user profile: %w", err)
	}
	return &profile, nil
}

// FindCandidates scans active profiles and applies the preference filter in
// both directions: the candidate must pass the seeker's filter and the seeker
// must pass the candidate's.
func (r *UserRepository) FindCandidates(ctx context.Context, seeker *models.UserProfile, exclude map[string]struct{}, activeSince time.Time) ([]models.UserProfile, error) {
	var scanned []models.UserProfile
	err := r.DB.ScanWithFilter(ctx, models.UsersTable,
		"active = :active",
		map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberBOOL{Value: true},
		},
		nil, nil, &scanned)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.UserProfile, 0, len(scanned))
	for _, c := range scanned {
		if c.UserID == seeker.UserID {
			continue
		}
		if _, skip := exclude[c.UserID]; skip {
			continue
		}
		if c.LastActiveAt.Before(activeSince) {
			continue
		}
		if c.City != seeker.City {
			continue
		}
		if seeker.Preferences != nil && !seeker.Preferences.Accepts(c.Gender, c.Age) {
			continue
		}
		if c.Preferences != nil && !c.Preferences.Accepts(seeker.Gender, seeker.Age) {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (r *UserRepository) AppendMatched(ctx context.Context, userID, counterpartID string) error {
	return r.appendToList(ctx, userID, "matched", counterpartID)
}

func (r *UserRepository) AppendSkipped(ctx context.Context, userID, counterpartID string) error {
	return r.appendToList(ctx, userID, "skipped", counterpartID)
}

// appendToList appends the id to a list attribute, guarded by a contains
// condition so repeat calls never duplicate the entry.
func (r *UserRepository) appendToList(ctx context.Context, userID, attr, id string) error {
	_, err := r.DB.UpdateItem(ctx, models.UsersTable, userKey(userID),
		"SET #list = list_append(if_not_exists(#list, :empty), :ids)",
		map[string]types.AttributeValue{
			":ids":   &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: id}}},
			":id":    &types.AttributeValueMemberS{Value: id},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
		map[string]string{"#list": attr},
		"attribute_exists(userId) AND NOT contains(#list, :id)",
		types.ReturnValueNone,
	)
	if errors.Is(err, services.ErrConflict) {
		// Already on the list, or the list attribute is absent and the
		// contains check cannot pass. Retry with a bare set for the latter.
		_, setErr := r.DB.UpdateItem(ctx, models.UsersTable, userKey(userID),
			"SET #list = :ids",
			map[string]types.AttributeValue{
				":ids": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: id}}},
			},
			map[string]string{"#list": attr},
			"attribute_exists(userId) AND attribute_not_exists(#list)",
			types.ReturnValueNone,
		)
		if errors.Is(setErr, services.ErrConflict) {
			return nil
		}
		return setErr
	}
	return err
}

// ListActiveIDs returns the ids of every matching-eligible profile.
func (r *UserRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	var scanned []models.UserProfile
	err := r.DB.ScanWithFilter(ctx, models.UsersTable,
		"active = :active",
		map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberBOOL{Value: true},
		},
		nil, nil, &scanned)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(scanned))
	for _, u := range scanned {
		ids = append(ids, u.UserID)
	}
	return ids, nil
}
