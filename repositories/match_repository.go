package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"veil_server/models"
	"veil_server/services"
)

// MatchRepository implements services.MatchStore. The canonical pair key is
// the partition key, so the table itself rejects a second live match for the
// same pair; reveal transitions are conditional updates that encode the state
// machine's legal moves.
type MatchRepository struct {
	DB *services.DynamoService
}

func NewMatchRepository(db *services.DynamoService) *MatchRepository {
	return &MatchRepository{DB: db}
}

func matchKey(pairKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: pairKey},
	}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (*models.Match, error) {
	var matches []models.Match
	err := r.DB.QueryItems(ctx, models.MatchesTable, models.MatchIDIndex,
		"matchId = :mid",
		map[string]types.AttributeValue{
			":mid": &types.AttributeValueMemberS{Value: matchID},
		},
		nil, 1, true, &matches)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, services.ErrNotFound
	}
	return &matches[0], nil
}

func (r *MatchRepository) GetByPairKey(ctx context.Context, pairKey string) (*models.Match, error) {
	item, err := r.DB.GetItem(ctx, models.MatchesTable, matchKey(pairKey))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.ErrNotFound
	}
	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	return &match, nil
}

func (r *MatchRepository) Create(ctx context.Context, m *models.Match) error {
	return r.DB.PutItem(ctx, models.MatchesTable, m, "attribute_not_exists(pairKey)")
}

func (r *MatchRepository) Delete(ctx context.Context, pairKey string) error {
	return r.DB.DeleteItem(ctx, models.MatchesTable, matchKey(pairKey))
}

func (r *MatchRepository) ListForUser(ctx context.Context, userID string) ([]models.Match, error) {
	var matches []models.Match
	err := r.DB.ScanWithFilter(ctx, models.MatchesTable,
		"user1Id = :id OR user2Id = :id",
		map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: userID},
		},
		nil, nil, &matches)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *MatchRepository) SetStatus(ctx context.Context, pairKey, status string) error {
	_, err := r.DB.UpdateItem(ctx, models.MatchesTable, matchKey(pairKey),
		"SET #s = :s",
		map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: status},
		},
		map[string]string{"#s": "status"},
		"attribute_exists(pairKey)",
		types.ReturnValueNone,
	)
	return err
}

// SetRevealRequested flips one slot's requested flag. The condition rejects a
// repeat request and any request on an already revealed match.
func (r *MatchRepository) SetRevealRequested(ctx context.Context, pairKey string, slot int, at time.Time) (*models.Match, error) {
	flag := "user1Requested"
	stamp := "user1RequestedAt"
	if slot == 2 {
		flag = "user2Requested"
		stamp = "user2RequestedAt"
	}

	attrs, err := r.DB.UpdateItem(ctx, models.MatchesTable, matchKey(pairKey),
		"SET reveal.#flag = :true, reveal.#stamp = :at",
		map[string]types.AttributeValue{
			":true":  &types.AttributeValueMemberBOOL{Value: true},
			":false": &types.AttributeValueMemberBOOL{Value: false},
			":at":    &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
		},
		map[string]string{"#flag": flag, "#stamp": stamp},
		"attribute_exists(pairKey) AND reveal.#flag = :false AND reveal.isRevealed = :false",
		types.ReturnValueAllNew,
	)
	if err != nil {
		return nil, err
	}
	return unmarshalMatch(attrs)
}

// SetRevealed completes the reveal once both sides have requested it.
func (r *MatchRepository) SetRevealed(ctx context.Context, pairKey string, at time.Time) (*models.Match, error) {
	attrs, err := r.DB.UpdateItem(ctx, models.MatchesTable, matchKey(pairKey),
		"SET reveal.isRevealed = :true, reveal.revealedAt = :at, #s = :revealed",
		map[string]types.AttributeValue{
			":true":     &types.AttributeValueMemberBOOL{Value: true},
			":false":    &types.AttributeValueMemberBOOL{Value: false},
			":at":       &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
			":revealed": &types.AttributeValueMemberS{Value: models.MatchStatusRevealed},
		},
		map[string]string{"#s": "status"},
		"attribute_exists(pairKey) AND reveal.user1Requested = :true AND reveal.user2Requested = :true AND reveal.isRevealed = :false",
		types.ReturnValueAllNew,
	)
	if err != nil {
		return nil, err
	}
	return unmarshalMatch(attrs)
}

func (r *MatchRepository) TouchLastMessage(ctx context.Context, pairKey string, at time.Time) error {
	_, err := r.DB.UpdateItem(ctx, models.MatchesTable, matchKey(pairKey),
		"SET lastMessageAt = :at",
		map[string]types.AttributeValue{
			":at": &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
		},
		nil,
		"attribute_exists(pairKey)",
		types.ReturnValueNone,
	)
	return err
}

func unmarshalMatch(attrs map[string]types.AttributeValue) (*models.Match, error) {
	var match models.Match
	if err := attributevalue.UnmarshalMap(attrs, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	return &match, nil
}
