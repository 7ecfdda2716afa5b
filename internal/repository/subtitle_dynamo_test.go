package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subtitle-collector/internal/models"
)

// fakeDynamo keeps items keyed by video_id and honours the conditions the
// repo relies on.
type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func keyOf(key map[string]types.AttributeValue) string {
	return key["video_id"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	id := keyOf(in.Item)
	if _, ok := f.items[id]; ok && aws.ToString(in.ConditionExpression) != "" {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	item, ok := f.items[keyOf(in.Key)]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("missing")}
	}
	item["content"] = in.ExpressionAttributeValues[":c"]
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	id := keyOf(in.Key)
	if _, ok := f.items[id]; !ok {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("missing")}
	}
	delete(f.items, id)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	out := &dynamodb.ScanOutput{}
	for _, item := range f.items {
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func TestDynamoSubtitleRepo_InsertIfAbsent(t *testing.T) {
	fake := newFakeDynamo()
	repo := NewDynamoSubtitleRepo(fake, "Subtitle")
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, record("abc123", "2024-03-01 09:30:00", "first", "one")))
	assert.ErrorIs(t, repo.Insert(ctx, record("abc123", "2024-03-01 09:31:00", "second", "two")), ErrDuplicate)

	got, err := repo.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)

	var raw struct {
		VideoID string `dynamodbav:"video_id"`
	}
	require.NoError(t, attributevalue.UnmarshalMap(fake.items["abc123"], &raw))
	assert.Equal(t, "abc123", raw.VideoID)
}

func TestDynamoSubtitleRepo_GetMissing(t *testing.T) {
	repo := NewDynamoSubtitleRepo(newFakeDynamo(), "Subtitle")
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamoSubtitleRepo_List(t *testing.T) {
	repo := NewDynamoSubtitleRepo(newFakeDynamo(), "Subtitle")
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, record("a", "2024-03-01 09:00:00", "Two Sum", "x")))
	require.NoError(t, repo.Insert(ctx, record("b", "2024-03-02 09:00:00", "Stack", "x")))
	require.NoError(t, repo.Insert(ctx, record("c", "2024-03-03 09:00:00", "Three Sum", "x")))

	hits, total, err := repo.List(ctx, models.ListQuery{Search: "SUM", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, hits, 1)
	assert.Equal(t, "c", hits[0].VideoID)

	rest, _, err := repo.List(ctx, models.ListQuery{Limit: 10, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, rest)
}

func TestDynamoSubtitleRepo_ListClampsWindow(t *testing.T) {
	repo := NewDynamoSubtitleRepo(newFakeDynamo(), "Subtitle")
	ctx := context.Background()
	for i := 0; i < DefaultListLimit+5; i++ {
		require.NoError(t, repo.Insert(ctx, record(fmt.Sprintf("v%02d", i), "2024-03-01 09:00:00", "t", "x")))
	}

	negative, total, err := repo.List(ctx, models.ListQuery{Limit: 2, Offset: -40})
	require.NoError(t, err)
	assert.Equal(t, DefaultListLimit+5, total)
	require.Len(t, negative, 2)
	assert.Equal(t, "v00", negative[0].VideoID)

	unbounded, _, err := repo.List(ctx, models.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, unbounded, DefaultListLimit)
}

func TestDynamoSubtitleRepo_UpdateAndDelete(t *testing.T) {
	repo := NewDynamoSubtitleRepo(newFakeDynamo(), "Subtitle")
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, record("abc123", "2024-03-01 09:30:00", "t", "old")))

	require.NoError(t, repo.UpdateContent(ctx, "abc123", "new"))
	got, err := repo.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Content)

	assert.ErrorIs(t, repo.UpdateContent(ctx, "missing", "x"), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "abc123"))
	assert.ErrorIs(t, repo.Delete(ctx, "abc123"), ErrNotFound)
}
