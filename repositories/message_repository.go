package repositories

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"veil_server/models"
	"veil_server/services"
)

// MessageRepository implements services.MessageStore. Messages are keyed by
// match with the send timestamp as sort key, so a single query returns a
// conversation page in order.
type MessageRepository struct {
	DB *services.DynamoService
}

func NewMessageRepository(db *services.DynamoService) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Append(ctx context.Context, msg *models.Message) error {
	return r.DB.PutItem(ctx, models.MessagesTable, msg, "")
}

// ListByMatch returns up to limit messages newest first. Skip drops the
// newest entries, which is how the service pages backwards through history.
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string, limit, skip int) ([]models.Message, error) {
	fetch := 0
	if limit > 0 {
		fetch = limit + skip
	}
	var messages []models.Message
	err := r.DB.QueryItems(ctx, models.MessagesTable, "",
		"matchId = :mid",
		map[string]types.AttributeValue{
			":mid": &types.AttributeValueMemberS{Value: matchID},
		},
		nil, int32(fetch), false, &messages)
	if err != nil {
		return nil, err
	}
	if skip >= len(messages) {
		return nil, nil
	}
	return messages[skip:], nil
}

func (r *MessageRepository) GetByID(ctx context.Context, messageID string) (*models.Message, error) {
	var messages []models.Message
	err := r.DB.QueryItems(ctx, models.MessagesTable, models.MessageIDIndex,
		"messageId = :mid",
		map[string]types.AttributeValue{
			":mid": &types.AttributeValueMemberS{Value: messageID},
		},
		nil, 1, true, &messages)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, services.ErrNotFound
	}
	return &messages[0], nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, matchID, createdAt string, at time.Time) error {
	_, err := r.DB.UpdateItem(ctx, models.MessagesTable,
		map[string]types.AttributeValue{
			"matchId":   &types.AttributeValueMemberS{Value: matchID},
			"createdAt": &types.AttributeValueMemberS{Value: createdAt},
		},
		"SET isRead = :true, readAt = :at",
		map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
			":at":   &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
		},
		nil,
		"attribute_exists(matchId)",
		types.ReturnValueNone,
	)
	return err
}

func (r *MessageRepository) LatestForMatch(ctx context.Context, matchID string) (*models.Message, error) {
	messages, err := r.ListByMatch(ctx, matchID, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, matchID, receiverID string) (int, error) {
	return r.DB.QueryCount(ctx, models.MessagesTable,
		"matchId = :mid",
		"receiverId = :rid AND isRead = :false",
		map[string]types.AttributeValue{
			":mid":   &types.AttributeValueMemberS{Value: matchID},
			":rid":   &types.AttributeValueMemberS{Value: receiverID},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
		nil)
}
