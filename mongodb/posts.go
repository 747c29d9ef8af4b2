package mongodb

import (
	"context"
	"fmt"
	"time"

	"platform/metrics"
	"platform/models"
	"platform/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostStoreMongo хранит посты в коллекции posts. Отсутствие документа
// превращается в services.ErrNotFound, нарушение уникального индекса
// slug - в services.ErrConflict.
type PostStoreMongo struct {
	col *mongo.Collection
}

func NewPostStore() *PostStoreMongo {
	return &PostStoreMongo{col: database.Collection(postsCollection)}
}

func sortSpec(page models.PageRequest) bson.D {
	dir := 1
	if page.SortDesc {
		dir = -1
	}
	return bson.D{{Key: page.SortField, Value: dir}}
}

// findPage выполняет count + find по одному фильтру
func (s *PostStoreMongo) findPage(ctx context.Context, filter bson.M, page models.PageRequest) (*models.PostPage, error) {
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	opts := options.Find().
		SetSort(sortSpec(page)).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return &models.PostPage{Posts: posts, Total: total, Page: page.Page, Size: page.Size}, nil
}

func (s *PostStoreMongo) Insert(ctx context.Context, post *models.Post) (err error) {
	defer func(start time.Time) { metrics.RecordContentOperation(postsCollection, "insert", start, err) }(time.Now())

	if post.ID == "" {
		post.ID = primitive.NewObjectID().Hex()
	}
	_, err = s.col.InsertOne(ctx, post)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("slug %q is taken: %w", post.Slug, services.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (s *PostStoreMongo) Save(ctx context.Context, post *models.Post) (err error) {
	defer func(start time.Time) { metrics.RecordContentOperation(postsCollection, "save", start, err) }(time.Now())

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("slug %q is taken: %w", post.Slug, services.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", post.ID, services.ErrNotFound)
	}
	return nil
}

func (s *PostStoreMongo) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { metrics.RecordContentOperation(postsCollection, "delete", start, err) }(time.Now())

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post %s: %w", id, services.ErrNotFound)
	}
	return nil
}

func (s *PostStoreMongo) FindByID(ctx context.Context, id string) (post *models.Post, err error) {
	defer func(start time.Time) { metrics.RecordContentOperation(postsCollection, "find_by_id", start, err) }(time.Now())

	var p models.Post
	err = s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("post %s: %w", id, services.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post %s: %w", id, err)
	}
	return &p, nil
}

func (s *PostStoreMongo) FindBySlug(ctx context.Context, slug string) (post *models.Post, err error) {
	defer func(start time.Time) { metrics.RecordContentOperation(postsCollection, "find_by_slug", start, err) }(time.Now())

	var p models.Post
	err = s.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("post with slug %q: %w", slug, services.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by slug %q: %w", slug, err)
	}
	return &p, nil
}

func (s *PostStoreMongo) FindByIDIn(ctx context.Context, ids []string, page models.PageRequest) (result *models.PostPage, err error) {
	defer func(start time.Time) { metrics.RecordContentOperation(postsCollection, "find_by_id_in", start, err) }(time.Now())

	return s.findPage(ctx, bson.M{"_id": bson.M{"$in": ids}}, page)
}

func (s *PostStoreMongo) FindByAuthorID(ctx context.Context, authorID int64, page models.PageRequest) (*models.PostPage, error) {
	return s.findPage(ctx, bson.M{"authorId": authorID}, page)
}

func (s *PostStoreMongo) FindByAuthorIDIn(ctx context.Context, authorIDs []int64, status models.PostStatus, page models.PageRequest) (result *models.PostPage, err error) {
	defer func(start time.Time) {
		metrics.RecordContentOperation(postsCollection, "find_by_author_id_in", start, err)
	}(time.Now())

	filter := bson.M{
		"authorId": bson.M{"$in": authorIDs},
		"status":   status,
	}
	return s.findPage(ctx, filter, page)
}

func (s *PostStoreMongo) FindByStatus(ctx context.Context, status models.PostStatus, page models.PageRequest) (*models.PostPage, error) {
	return s.findPage(ctx, bson.M{"status": status}, page)
}

func (s *PostStoreMongo) FindByTagsIn(ctx context.Context, tags []string, status models.PostStatus, excludeID string, page models.PageRequest) (*models.PostPage, error) {
	filter := bson.M{
		"tags":   bson.M{"$in": tags},
		"status": status,
	}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return s.findPage(ctx, filter, page)
}

// TextSearch использует текстовый индекс по title и content, ищет
// только среди опубликованных постов
func (s *PostStoreMongo) TextSearch(ctx context.Context, keyword string) (posts []models.Post, err error) {
	defer func(start time.Time) { metrics.RecordContentOperation(postsCollection, "text_search", start, err) }(time.Now())

	filter := bson.M{
		"$text":  bson.M{"$search": keyword},
		"status": models.PostPublished,
	}
	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	posts = []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return posts, nil
}

// IncrementViews выполняет атомарный $inc счетчика просмотров
func (s *PostStoreMongo) IncrementViews(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { metrics.RecordContentOperation(postsCollection, "increment_views", start, err) }(time.Now())

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stats.views": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", id, services.ErrNotFound)
	}
	return nil
}

// PushComment добавляет комментарий одним обновлением массива
func (s *PostStoreMongo) PushComment(ctx context.Context, id string, comment models.Comment) (err error) {
	defer func(start time.Time) { metrics.RecordContentOperation(postsCollection, "push_comment", start, err) }(time.Now())

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"comments": comment},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to push comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", id, services.ErrNotFound)
	}
	return nil
}

// PullComment удаляет комментарий по id одним обновлением массива
func (s *PostStoreMongo) PullComment(ctx context.Context, id string, commentID string) (err error) {
	defer func(start time.Time) { metrics.RecordContentOperation(postsCollection, "pull_comment", start, err) }(time.Now())

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$pull": bson.M{"comments": bson.M{"id": commentID}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to pull comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", id, services.ErrNotFound)
	}
	if res.ModifiedCount == 0 {
		return fmt.Errorf("comment %s in post %s: %w", commentID, id, services.ErrNotFound)
	}
	return nil
}
