package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
)

// ItemPutter is the subset of the DynamoDB client used by DynamoSink.
type ItemPutter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoSink writes audit entries to a DynamoDB table keyed by claim.
type DynamoSink struct {
	DB    ItemPutter
	Table string
}

// NewDynamoSink creates a DynamoDB sink.
func NewDynamoSink(db ItemPutter, table string) *DynamoSink {
	return &DynamoSink{DB: db, Table: table}
}

// dynamoItem is the stored shape of an audit entry.
type dynamoItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	ID           string `dynamodbav:"id"`
	Sequence     int64  `dynamodbav:"sequence"`
	ClaimID      string `dynamodbav:"claim_id"`
	Kind         string `dynamodbav:"kind"`
	ActorID      string `dynamodbav:"actor_id"`
	ActorName    string `dynamodbav:"actor_name"`
	ActorRole    string `dynamodbav:"actor_role"`
	OccurredAt   string `dynamodbav:"occurred_at"`
	Detail       string `dynamodbav:"detail"`
	ClaimVersion int    `dynamodbav:"claim_version"`
	Override     bool   `dynamodbav:"override"`
	FromStatus   string `dynamodbav:"from_status,omitempty"`
	ToStatus     string `dynamodbav:"to_status,omitempty"`
}

// MakeKeys constructs the partition and sort keys for an entry. Sort keys
// order a claim's entries chronologically.
func MakeKeys(entry claims.AuditEntry) (pk, sk string) {
	return fmt.Sprintf("CLAIM#%s", entry.ClaimID),
		fmt.Sprintf("AUDIT#%s#%s", entry.Timestamp.UTC().Format(time.RFC3339Nano), entry.ID)
}

// Name returns the sink name.
func (s *DynamoSink) Name() string { return "dynamodb" }

// Write puts the entry, ignoring duplicates of an already stored entry.
func (s *DynamoSink) Write(ctx context.Context, entry claims.AuditEntry) error {
	pk, sk := MakeKeys(entry)
	item, err := attributevalue.MarshalMap(dynamoItem{
		PK:           pk,
		SK:           sk,
		ID:           entry.ID,
		Sequence:     entry.Sequence,
		ClaimID:      entry.ClaimID,
		Kind:         string(entry.Kind),
		ActorID:      entry.ActorID,
		ActorName:    entry.ActorName,
		ActorRole:    string(entry.ActorRole),
		OccurredAt:   entry.Timestamp.UTC().Format(time.RFC3339Nano),
		Detail:       entry.Detail,
		ClaimVersion: entry.ClaimVersion,
		Override:     entry.Override,
		FromStatus:   string(entry.FromStatus),
		ToStatus:     string(entry.ToStatus),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry %s: %w", entry.ID, err)
	}

	_, err = s.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	var exists *types.ConditionalCheckFailedException
	if errors.As(err, &exists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to put audit entry %s: %w", entry.ID, err)
	}
	return nil
}
