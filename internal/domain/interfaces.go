package domain

import (
	"context"
)

// DataGateway returns every row of a named sheet of the opened dataset.
type DataGateway interface {
	AllRecords(ctx context.Context, sheet string) ([]Record, error)
}

// LookupEngine resolves a query against the data gateway.
type LookupEngine interface {
	Query(ctx context.Context, req QueryRequest) (QueryResult, error)
}

// StateStore keeps the single pending expectation per user.
type StateStore interface {
	Get(ctx context.Context, userID string) (ConversationState, error)
	Set(ctx context.Context, userID string, state ConversationState) error
	Clear(ctx context.Context, userID string) error
}

// Messenger delivers rendered payloads to the end user.
type Messenger interface {
	Reply(ctx context.Context, replyToken, userID string, payloads []ReplyPayload) error
	Push(ctx context.Context, userID string, payloads []ReplyPayload) error
}
