package mongodb

import (
	"context"
	"fmt"
	"time"

	"platform/models"
	"platform/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MomentStoreMongo хранит моменты в коллекции moments
type MomentStoreMongo struct {
	col *mongo.Collection
}

func NewMomentStore() *MomentStoreMongo {
	return &MomentStoreMongo{col: database.Collection(momentsCollection)}
}

func (s *MomentStoreMongo) findPage(ctx context.Context, filter bson.M, page models.PageRequest) (*models.MomentPage, error) {
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count moments: %w", err)
	}

	opts := options.Find().
		SetSort(sortSpec(page)).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find moments: %w", err)
	}

	moments := []models.Moment{}
	if err := cursor.All(ctx, &moments); err != nil {
		return nil, fmt.Errorf("failed to decode moments: %w", err)
	}
	return &models.MomentPage{Moments: moments, Total: total, Page: page.Page, Size: page.Size}, nil
}

func (s *MomentStoreMongo) Insert(ctx context.Context, moment *models.Moment) error {
	if moment.ID == "" {
		moment.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.col.InsertOne(ctx, moment); err != nil {
		return fmt.Errorf("failed to insert moment: %w", err)
	}
	return nil
}

func (s *MomentStoreMongo) Save(ctx context.Context, moment *models.Moment) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": moment.ID}, moment)
	if err != nil {
		return fmt.Errorf("failed to save moment: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("moment %s: %w", moment.ID, services.ErrNotFound)
	}
	return nil
}

func (s *MomentStoreMongo) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete moment: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("moment %s: %w", id, services.ErrNotFound)
	}
	return nil
}

func (s *MomentStoreMongo) FindByID(ctx context.Context, id string) (*models.Moment, error) {
	var m models.Moment
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("moment %s: %w", id, services.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find moment %s: %w", id, err)
	}
	return &m, nil
}

func (s *MomentStoreMongo) FindByIDIn(ctx context.Context, ids []string) ([]models.Moment, error) {
	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find moments: %w", err)
	}
	moments := []models.Moment{}
	if err := cursor.All(ctx, &moments); err != nil {
		return nil, fmt.Errorf("failed to decode moments: %w", err)
	}
	return moments, nil
}

func (s *MomentStoreMongo) FindByAuthorID(ctx context.Context, authorID int64, page models.PageRequest) (*models.MomentPage, error) {
	return s.findPage(ctx, bson.M{"authorId": authorID}, page)
}

func (s *MomentStoreMongo) FindByAuthorIDIn(ctx context.Context, authorIDs []int64, page models.PageRequest) (*models.MomentPage, error) {
	return s.findPage(ctx, bson.M{"authorId": bson.M{"$in": authorIDs}}, page)
}

func (s *MomentStoreMongo) FindAll(ctx context.Context, page models.PageRequest) (*models.MomentPage, error) {
	return s.findPage(ctx, bson.M{}, page)
}

func (s *MomentStoreMongo) FindPopular(ctx context.Context, minLikeCount int64, page models.PageRequest) (*models.MomentPage, error) {
	return s.findPage(ctx, bson.M{"likeCount": bson.M{"$gt": minLikeCount}}, page)
}

func (s *MomentStoreMongo) FindWithImages(ctx context.Context, page models.PageRequest) (*models.MomentPage, error) {
	filter := bson.M{"images": bson.M{"$exists": true, "$ne": ""}}
	return s.findPage(ctx, filter, page)
}

func (s *MomentStoreMongo) FindBetween(ctx context.Context, start, end time.Time) ([]models.Moment, error) {
	filter := bson.M{"created_at": bson.M{"$gte": start, "$lte": end}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find moments in range: %w", err)
	}
	moments := []models.Moment{}
	if err := cursor.All(ctx, &moments); err != nil {
		return nil, fmt.Errorf("failed to decode moments: %w", err)
	}
	return moments, nil
}

func (s *MomentStoreMongo) SearchByContent(ctx context.Context, keyword string) ([]models.Moment, error) {
	cursor, err := s.col.Find(ctx, bson.M{"$text": bson.M{"$search": keyword}})
	if err != nil {
		return nil, fmt.Errorf("failed to search moments: %w", err)
	}
	moments := []models.Moment{}
	if err := cursor.All(ctx, &moments); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return moments, nil
}

func (s *MomentStoreMongo) CountByAuthorID(ctx context.Context, authorID int64) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{"authorId": authorID})
	if err != nil {
		return 0, fmt.Errorf("failed to count moments: %w", err)
	}
	return count, nil
}

func (s *MomentStoreMongo) DeleteByAuthorID(ctx context.Context, authorID int64) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"authorId": authorID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete moments: %w", err)
	}
	return res.DeletedCount, nil
}
