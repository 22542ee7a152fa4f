package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	putErr       error
	scanPages    []*dynamodb.ScanOutput
	scanErr      error
	lastGetInput *dynamodb.GetItemInput
	lastPutInput *dynamodb.PutItemInput
	scanInputs   []*dynamodb.ScanInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanInputs = append(f.scanInputs, in)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	idx := len(f.scanInputs) - 1
	if idx >= len(f.scanPages) {
		return &dynamodb.ScanOutput{}, nil
	}
	return f.scanPages[idx], nil
}

func makeNoteItem(title, text string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"title": &types.AttributeValueMemberS{Value: title},
		"text":  &types.AttributeValueMemberS{Value: text},
	}
}

func titleItem(title string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"title": &types.AttributeValueMemberS{Value: title}}
}

func mustNewDynamoStore(t *testing.T, db *fakeDynamo) *DynamoStore {
	t.Helper()
	s, err := NewDynamoStore(db, "notes-table")
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestDynamoInsertIfAbsent_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewDynamoStore(t, db)

	inserted, err := s.InsertIfAbsent(context.Background(), "Groceries", "milk, eggs")
	require.NoError(t, err)
	require.True(t, inserted)
	require.Equal(t, "attribute_not_exists(#t)", *db.lastPutInput.ConditionExpression)
	require.Equal(t, "title", db.lastPutInput.ExpressionAttributeNames["#t"])
	require.Equal(t, "milk, eggs", db.lastPutInput.Item["text"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "2026-10-17T09:00:00Z", db.lastPutInput.Item["createdAt"].(*types.AttributeValueMemberS).Value)
}

func TestDynamoInsertIfAbsent_ConditionFailedMeansExisting(t *testing.T) {
	db := &fakeDynamo{putErr: fmt.Errorf("operation error: %w", &types.ConditionalCheckFailedException{})}
	s := mustNewDynamoStore(t, db)

	inserted, err := s.InsertIfAbsent(context.Background(), "Groceries", "bread")
	require.NoError(t, err)
	require.False(t, inserted)
}

func TestDynamoInsertIfAbsent_OtherError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")}
	s := mustNewDynamoStore(t, db)

	_, err := s.InsertIfAbsent(context.Background(), "Groceries", "bread")
	require.Error(t, err)
	require.Contains(t, err.Error(), "InsertIfAbsent")
}

func TestDynamoFetchByTitle_HappyPath(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: makeNoteItem("Groceries", "milk, eggs")}}
	s := mustNewDynamoStore(t, db)

	note, err := s.FetchByTitle(context.Background(), "Groceries")
	require.NoError(t, err)
	require.Equal(t, "milk, eggs", note.Text)
	require.True(t, *db.lastGetInput.ConsistentRead)
	require.Equal(t, "Groceries", db.lastGetInput.Key["title"].(*types.AttributeValueMemberS).Value)
}

func TestDynamoFetchByTitle_Missing(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustNewDynamoStore(t, db)

	note, err := s.FetchByTitle(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, note)
}

func TestDynamoFetchByTitle_MalformedItem(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: titleItem("Groceries")}}
	s := mustNewDynamoStore(t, db)

	_, err := s.FetchByTitle(context.Background(), "Groceries")
	require.Error(t, err)
	require.Contains(t, err.Error(), "text")
}

func TestDynamoFetchByTitle_GetItemError(t *testing.T) {
	db := &fakeDynamo{getErr: errors.New("boom")}
	s := mustNewDynamoStore(t, db)

	_, err := s.FetchByTitle(context.Background(), "Groceries")
	require.Error(t, err)
	require.Contains(t, err.Error(), "FetchByTitle")
}

func TestDynamoListTitles_PaginatesAndSorts(t *testing.T) {
	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{
			Items:            []map[string]types.AttributeValue{titleItem("Zeta"), titleItem("Alpha")},
			LastEvaluatedKey: titleItem("Alpha"),
		},
		{
			Items: []map[string]types.AttributeValue{titleItem("Mid")},
		},
	}}
	s := mustNewDynamoStore(t, db)

	titles, err := s.ListTitles(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Alpha", "Mid", "Zeta"}, titles)
	require.Len(t, db.scanInputs, 2)
	require.Nil(t, db.scanInputs[0].ExclusiveStartKey)
	require.Equal(t, "Alpha", db.scanInputs[1].ExclusiveStartKey["title"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "#t", *db.scanInputs[0].ProjectionExpression)
}

func TestDynamoListTitles_Empty(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewDynamoStore(t, db)

	titles, err := s.ListTitles(context.Background())
	require.NoError(t, err)
	require.NotNil(t, titles)
	require.Empty(t, titles)
}

func TestDynamoListTitles_ScanError(t *testing.T) {
	db := &fakeDynamo{scanErr: errors.New("ResourceNotFoundException")}
	s := mustNewDynamoStore(t, db)

	_, err := s.ListTitles(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "ListTitles")
}

func TestNewDynamoStore_NilAPI(t *testing.T) {
	_, err := NewDynamoStore(nil, "notes-table")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNewDynamoStore_EmptyTableName(t *testing.T) {
	_, err := NewDynamoStore(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
