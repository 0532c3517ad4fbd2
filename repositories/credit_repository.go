package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"veil_server/models"
	"veil_server/services"
)

// CreditRepository implements services.CreditStore. The cached balance lives
// on the user profile; the ledger is its own append-only table. Balance
// mutations are conditional updates so concurrent spends can never overdraw.
type CreditRepository struct {
	DB *services.DynamoService
}

func NewCreditRepository(db *services.DynamoService) *CreditRepository {
	return &CreditRepository{DB: db}
}

func (r *CreditRepository) Balance(ctx context.Context, userID string) (int, string, error) {
	item, err := r.DB.GetItem(ctx, models.UsersTable, userKey(userID))
	if err != nil {
		return 0, "", err
	}
	if item == nil {
		return 0, "", services.ErrNotFound
	}
	balance, err := numberAttr(item, "credits")
	if err != nil {
		return 0, "", err
	}
	refresh := ""
	if av, ok := item["lastCreditRefresh"].(*types.AttributeValueMemberS); ok {
		refresh = av.Value
	}
	return balance, refresh, nil
}

func (r *CreditRepository) Debit(ctx context.Context, userID string, amount int) (int, error) {
	attrs, err := r.DB.UpdateItem(ctx, models.UsersTable, userKey(userID),
		"SET credits = credits - :amt",
		map[string]types.AttributeValue{
			":amt": &types.AttributeValueMemberN{Value: strconv.Itoa(amount)},
		},
		nil,
		"attribute_exists(userId) AND credits >= :amt",
		types.ReturnValueAllNew,
	)
	if errors.Is(err, services.ErrConflict) {
		return 0, services.ErrInsufficientCredits
	}
	if err != nil {
		return 0, err
	}
	return numberAttr(attrs, "credits")
}

func (r *CreditRepository) Credit(ctx context.Context, userID string, amount int) (int, error) {
	attrs, err := r.DB.UpdateItem(ctx, models.UsersTable, userKey(userID),
		"SET credits = credits + :amt",
		map[string]types.AttributeValue{
			":amt": &types.AttributeValueMemberN{Value: strconv.Itoa(amount)},
		},
		nil,
		"attribute_exists(userId)",
		types.ReturnValueAllNew,
	)
	if err != nil {
		return 0, err
	}
	return numberAttr(attrs, "credits")
}

// ResetBalance sets the balance to the daily allotment, guarded by the stored
// refresh stamp. RFC3339 UTC timestamps compare correctly as strings, which
// is what makes the staleness condition expressible in DynamoDB.
func (r *CreditRepository) ResetBalance(ctx context.Context, userID string, allotment int, refreshedAt, staleBefore time.Time) (int, error) {
	attrs, err := r.DB.UpdateItem(ctx, models.UsersTable, userKey(userID),
		"SET credits = :allot, lastCreditRefresh = :ts",
		map[string]types.AttributeValue{
			":allot": &types.AttributeValueMemberN{Value: strconv.Itoa(allotment)},
			":ts":    &types.AttributeValueMemberS{Value: refreshedAt.UTC().Format(time.RFC3339)},
			":stale": &types.AttributeValueMemberS{Value: staleBefore.UTC().Format(time.RFC3339)},
		},
		nil,
		"attribute_exists(userId) AND (attribute_not_exists(lastCreditRefresh) OR lastCreditRefresh < :stale)",
		types.ReturnValueAllOld,
	)
	if err != nil {
		return 0, err
	}
	if _, ok := attrs["credits"]; !ok {
		return 0, nil
	}
	return numberAttr(attrs, "credits")
}

func (r *CreditRepository) AppendTransaction(ctx context.Context, txn *models.CreditTransaction) error {
	return r.DB.PutItem(ctx, models.CreditTransactionsTable, txn, "")
}

func (r *CreditRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	var txns []models.CreditTransaction
	err := r.DB.QueryItems(ctx, models.CreditTransactionsTable, "",
		"userId = :uid",
		map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		nil, int32(limit), false, &txns)
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func numberAttr(attrs map[string]types.AttributeValue, name string) (int, error) {
	av, ok := attrs[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("attribute '%s' missing or not numeric", name)
	}
	n, err := strconv.Atoi(av.Value)
	if err != nil {
		return 0, fmt.Errorf("attribute '%s' is not an integer: %w", name, err)
	}
	return n, nil
}
