package repositories

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"veil_server/models"
	"veil_server/services"
)

// ReplyRepository implements services.ReplyStore. Claiming is a conditional
// pending-to-processing transition, so two dispatcher ticks racing over the
// same reply settle on exactly one winner.
type ReplyRepository struct {
	DB *services.DynamoService
}

func NewReplyRepository(db *services.DynamoService) *ReplyRepository {
	return &ReplyRepository{DB: db}
}

func replyKey(replyID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"replyId": &types.AttributeValueMemberS{Value: replyID},
	}
}

func (r *ReplyRepository) Enqueue(ctx context.Context, reply *models.PendingReply) error {
	return r.DB.PutItem(ctx, models.PendingRepliesTable, reply, "attribute_not_exists(replyId)")
}

// DuePending scans for pending replies whose due time has passed, oldest
// first. The table only ever holds a short horizon of scheduled replies, so
// a filtered scan stays cheap.
func (r *ReplyRepository) DuePending(ctx context.Context, now time.Time, limit int) ([]models.PendingReply, error) {
	var replies []models.PendingReply
	err := r.DB.ScanWithFilter(ctx, models.PendingRepliesTable,
		"#s = :pending AND dueAt <= :now",
		map[string]types.AttributeValue{
			":pending": &types.AttributeValueMemberS{Value: models.ReplyStatusPending},
			":now":     &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339Nano)},
		},
		map[string]string{"#s": "status"},
		nil, &replies)
	if err != nil {
		return nil, err
	}
	sort.Slice(replies, func(i, j int) bool { return replies[i].DueAt.Before(replies[j].DueAt) })
	if limit > 0 && len(replies) > limit {
		replies = replies[:limit]
	}
	return replies, nil
}

func (r *ReplyRepository) Claim(ctx context.Context, replyID string) error {
	_, err := r.DB.UpdateItem(ctx, models.PendingRepliesTable, replyKey(replyID),
		"SET #s = :processing ADD attempts :one",
		map[string]types.AttributeValue{
			":processing": &types.AttributeValueMemberS{Value: models.ReplyStatusProcessing},
			":pending":    &types.AttributeValueMemberS{Value: models.ReplyStatusPending},
			":one":        &types.AttributeValueMemberN{Value: "1"},
		},
		map[string]string{"#s": "status"},
		"#s = :pending",
		types.ReturnValueNone,
	)
	return err
}

func (r *ReplyRepository) SetStatus(ctx context.Context, replyID, status string) error {
	_, err := r.DB.UpdateItem(ctx, models.PendingRepliesTable, replyKey(replyID),
		"SET #s = :s",
		map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: status},
		},
		map[string]string{"#s": "status"},
		"attribute_exists(replyId)",
		types.ReturnValueNone,
	)
	return err
}

// CancelForMatch cancels every still-pending reply of the match. Each cancel
// is conditional on the reply still being pending, so a dispatcher that
// claimed one mid-sweep keeps it.
func (r *ReplyRepository) CancelForMatch(ctx context.Context, matchID string) (int, error) {
	var replies []models.PendingReply
	err := r.DB.ScanWithFilter(ctx, models.PendingRepliesTable,
		"matchId = :mid AND #s = :pending",
		map[string]types.AttributeValue{
			":mid":     &types.AttributeValueMemberS{Value: matchID},
			":pending": &types.AttributeValueMemberS{Value: models.ReplyStatusPending},
		},
		map[string]string{"#s": "status"},
		nil, &replies)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, reply := range replies {
		_, err := r.DB.UpdateItem(ctx, models.PendingRepliesTable, replyKey(reply.ReplyID),
			"SET #s = :cancelled",
			map[string]types.AttributeValue{
				":cancelled": &types.AttributeValueMemberS{Value: models.ReplyStatusCancelled},
				":pending":   &types.AttributeValueMemberS{Value: models.ReplyStatusPending},
			},
			map[string]string{"#s": "status"},
			"#s = :pending",
			types.ReturnValueNone,
		)
		if errors.Is(err, services.ErrConflict) {
			continue
		}
		if err != nil {
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}
