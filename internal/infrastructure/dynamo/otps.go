package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/learnhub/user-service/internal/domain"
)

// OTPRepo is the durable pending-OTP store. One row per identity; a Put
// overwrites whatever code was outstanding, regardless of purpose. The
// expires_at attribute doubles as the DynamoDB TTL so stale rows age out
// even if nobody ever verifies them.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, p *domain.PendingOTP) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pending OTP: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OTPRepo) Get(ctx context.Context, identity string) (*domain.PendingOTP, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identity", identity),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pending OTP for %s: %w", identity, domain.ErrNotFound)
	}
	var p domain.PendingOTP
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// IncrementAttempts bumps the attempt counter atomically and returns the new
// count. The ADD expression means concurrent verifies on the same identity
// never lose an increment. Returns domain.ErrNotFound if no entry exists.
func (r *OTPRepo) IncrementAttempts(ctx context.Context, identity string) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("identity", identity),
		UpdateExpression:          aws.String("ADD attempts :one"),
		ConditionExpression:       aws.String("attribute_exists(identity)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, fmt.Errorf("pending OTP for %s: %w", identity, domain.ErrNotFound)
		}
		return 0, err
	}
	n, ok := out.Attributes["attempts"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("unexpected attempts attribute for %s", identity)
	}
	count, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *OTPRepo) Delete(ctx context.Context, identity string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identity", identity),
	})
	return err
}
