package repository

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"subtitle-collector/internal/models"
)

// MongoSubtitleRepo keeps one document per video, using the video id as _id.
type MongoSubtitleRepo struct {
	collection *mongo.Collection
}

func NewMongoSubtitleRepo(collection *mongo.Collection) *MongoSubtitleRepo {
	return &MongoSubtitleRepo{collection: collection}
}

func (r *MongoSubtitleRepo) Get(ctx context.Context, videoID string) (*models.SubtitleRecord, error) {
	var rec models.SubtitleRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": videoID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *MongoSubtitleRepo) Insert(ctx context.Context, rec *models.SubtitleRecord) error {
	_, err := r.collection.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *MongoSubtitleRepo) List(ctx context.Context, q models.ListQuery) ([]*models.SubtitleRecord, int, error) {
	q = window(q)

	filter := bson.M{}
	if q.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "datetime", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var records []*models.SubtitleRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}
	return records, int(total), nil
}

func (r *MongoSubtitleRepo) UpdateContent(ctx context.Context, videoID, content string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": videoID}, bson.M{"$set": bson.M{"content": content}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoSubtitleRepo) Delete(ctx context.Context, videoID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": videoID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
