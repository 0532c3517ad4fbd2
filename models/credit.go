package models

// Credit action kinds recorded on the ledger.
const (
	CreditActionDailyRefresh  = "daily_refresh"
	CreditActionFindMatch     = "find_match"
	CreditActionSkipMatch     = "skip_match"
	CreditActionRequestReveal = "request_reveal"
	CreditActionAcceptReveal  = "accept_reveal"
	CreditActionCancelReveal  = "cancel_reveal_request"
)

// CreditTransaction is one append-only ledger entry. The running sum of a
// user's Amount values always equals the balance cached on the profile.
type CreditTransaction struct {
	UserID    string `dynamodbav:"userId" json:"userId"`       // Partition key
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"` // Sort key, TimestampLayout
	TxnID     string `dynamodbav:"txnId" json:"txnId"`
	Action    string `dynamodbav:"action" json:"action"`
	Amount    int    `dynamodbav:"amount" json:"amount"`   // Signed
	Balance   int    `dynamodbav:"balance" json:"balance"` // Balance after applying Amount
	MatchID   string `dynamodbav:"matchId,omitempty" json:"matchId,omitempty"`
}

// CreditTransactionsTable is the DynamoDB table name for the credit ledger
const CreditTransactionsTable = "CreditTransactions"
