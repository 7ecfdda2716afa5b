package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"subtitle-collector/internal/models"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoSubtitleRepo.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoSubtitleRepo stores records in a DynamoDB table whose partition key is video_id.
type DynamoSubtitleRepo struct {
	client DynamoAPI
	table  string
}

func NewDynamoSubtitleRepo(client DynamoAPI, table string) *DynamoSubtitleRepo {
	return &DynamoSubtitleRepo{client: client, table: table}
}

func (r *DynamoSubtitleRepo) key(videoID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"video_id": &types.AttributeValueMemberS{Value: videoID},
	}
}

func (r *DynamoSubtitleRepo) Get(ctx context.Context, videoID string) (*models.SubtitleRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(videoID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var rec models.SubtitleRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode dynamodb item: %w", err)
	}
	return &rec, nil
}

func (r *DynamoSubtitleRepo) Insert(ctx context.Context, rec *models.SubtitleRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to encode dynamodb item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(video_id)"),
	})
	if isConditionFailed(err) {
		return ErrDuplicate
	}
	return err
}

// List scans the whole table; filtering, ordering and paging happen in memory.
func (r *DynamoSubtitleRepo) List(ctx context.Context, q models.ListQuery) ([]*models.SubtitleRecord, int, error) {
	q = window(q)

	var all []*models.SubtitleRecord

	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.table)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, 0, err
		}
		var batch []*models.SubtitleRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, 0, fmt.Errorf("failed to decode dynamodb scan page: %w", err)
		}
		all = append(all, batch...)
	}

	matched := all[:0]
	needle := strings.ToLower(q.Search)
	for _, rec := range all {
		if needle == "" ||
			strings.Contains(strings.ToLower(rec.Title), needle) ||
			strings.Contains(strings.ToLower(rec.Content), needle) {
			matched = append(matched, rec)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].DateTime != matched[j].DateTime {
			return matched[i].DateTime > matched[j].DateTime
		}
		return matched[i].VideoID < matched[j].VideoID
	})

	total := len(matched)
	if q.Offset >= total {
		return nil, total, nil
	}
	end := total
	if q.Limit < total-q.Offset {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total, nil
}

func (r *DynamoSubtitleRepo) UpdateContent(ctx context.Context, videoID, content string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.table),
		Key:                      r.key(videoID),
		UpdateExpression:         aws.String("SET #c = :c"),
		ConditionExpression:      aws.String("attribute_exists(video_id)"),
		ExpressionAttributeNames: map[string]string{"#c": "content"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: content},
		},
	})
	if isConditionFailed(err) {
		return ErrNotFound
	}
	return err
}

func (r *DynamoSubtitleRepo) Delete(ctx context.Context, videoID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 r.key(videoID),
		ConditionExpression: aws.String("attribute_exists(video_id)"),
	})
	if isConditionFailed(err) {
		return ErrNotFound
	}
	return err
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return err != nil && errors.As(err, &ccf)
}
