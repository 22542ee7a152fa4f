package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"notes-agent/internal/domain"
)

const (
	attrTitle     = "title"
	attrText      = "text"
	attrCreatedAt = "createdAt"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore keeps notes in a DynamoDB table whose partition key is title.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// NewDynamoStore creates a DynamoDB-backed note store.
func NewDynamoStore(api dynamodbAPI, tableName string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName, now: time.Now}, nil
}

// InsertIfAbsent writes the note with a condition on the title not existing.
// A failed condition means the note was already there.
func (d *DynamoStore) InsertIfAbsent(ctx context.Context, title, text string) (bool, error) {
	_, err := d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(d.tableName),
		Item:                     noteItem(domain.Note{Title: title, Text: text}, d.now()),
		ConditionExpression:      aws.String("attribute_not_exists(#t)"),
		ExpressionAttributeNames: map[string]string{"#t": attrTitle},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return false, fmt.Errorf("repository: InsertIfAbsent: %w", err)
	}
	return true, nil
}

// FetchByTitle performs a consistent read of one note.
func (d *DynamoStore) FetchByTitle(ctx context.Context, title string) (*domain.Note, error) {
	out, err := d.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			attrTitle: &types.AttributeValueMemberS{Value: title},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: FetchByTitle get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}
	note, err := itemToNote(out.Item)
	if err != nil {
		return nil, fmt.Errorf("repository: FetchByTitle unmarshal: %w", err)
	}
	return &note, nil
}

// ListTitles scans the whole table, projecting only titles.
func (d *DynamoStore) ListTitles(ctx context.Context) ([]string, error) {
	titles := []string{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := d.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:                aws.String(d.tableName),
			ProjectionExpression:     aws.String("#t"),
			ExpressionAttributeNames: map[string]string{"#t": attrTitle},
			ExclusiveStartKey:        startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: ListTitles scan: %w", err)
		}
		for _, item := range out.Items {
			title, err := strAttr(item, attrTitle)
			if err != nil {
				return nil, fmt.Errorf("repository: ListTitles unmarshal: %w", err)
			}
			titles = append(titles, title)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sort.Strings(titles)
	return titles, nil
}

func noteItem(n domain.Note, now time.Time) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrTitle:     &types.AttributeValueMemberS{Value: n.Title},
		attrText:      &types.AttributeValueMemberS{Value: n.Text},
		attrCreatedAt: &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
	}
}

func itemToNote(item map[string]types.AttributeValue) (domain.Note, error) {
	title, err := strAttr(item, attrTitle)
	if err != nil {
		return domain.Note{}, err
	}
	text, err := strAttr(item, attrText)
	if err != nil {
		return domain.Note{}, err
	}
	return domain.Note{Title: title, Text: text}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
