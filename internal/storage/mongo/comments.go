package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/gamerfeeds/internal/models"
	"github.com/pribylovaa/gamerfeeds/internal/storage"
)

// commentDoc — представление комментария в коллекции.
// ancestors — путь от корня до родителя; по нему удаляется поддерево.
type commentDoc struct {
	ID          int64     `bson:"_id"`
	Content     string    `bson:"content"`
	UserID      int64     `bson:"user_id"`
	Username    string    `bson:"username"`
	ParentID    *int64    `bson:"parent_id"`
	Ancestors   []int64   `bson:"ancestors"`
	ContentType string    `bson:"content_type"`
	ContentID   int64     `bson:"content_id"`
	Level       int32     `bson:"level"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d commentDoc) toModel() models.Comment {
	return models.Comment{
		ID:          d.ID,
		Content:     d.Content,
		UserID:      d.UserID,
		Username:    d.Username,
		ParentID:    d.ParentID,
		ContentType: models.ContentType(d.ContentType),
		ContentID:   d.ContentID,
		Level:       d.Level,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// nextID выдаёт следующий целочисленный идентификатор из коллекции counters.
func (m *Mongo) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": commentsCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}

	return counter.Seq, nil
}

// CreateComment создаёт корень или ответ. Ответ наследует цель и путь предков родителя.
// Внешних ключей нет: после вставки ответа родитель проверяется повторно,
// и если его успели удалить, ответ откатывается с ErrParentNotFound.
func (m *Mongo) CreateComment(ctx context.Context, c models.Comment) (*models.Comment, error) {
	const op = "storage.mongo.CreateComment"

	// Mongo хранит время с точностью до миллисекунд.
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := commentDoc{
		Content:     c.Content,
		UserID:      c.UserID,
		Username:    c.Username,
		Ancestors:   []int64{},
		ContentType: string(c.ContentType),
		ContentID:   c.ContentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if !c.IsRoot() {
		var parent commentDoc
		err := m.comments.FindOne(ctx, bson.M{"_id": *c.ParentID}).Decode(&parent)
		if err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
			}
			return nil, fmt.Errorf("%s: find parent: %w", op, err)
		}

		doc.ParentID = &parent.ID
		doc.Ancestors = append(append([]int64{}, parent.Ancestors...), parent.ID)
		doc.ContentType = parent.ContentType
		doc.ContentID = parent.ContentID
		doc.Level = parent.Level + 1
	}

	id, err := m.nextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: next id: %w", op, err)
	}
	doc.ID = id

	if m.beforeInsert != nil {
		m.beforeInsert(ctx)
	}

	if _, err := m.comments.InsertOne(ctx, doc); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if doc.ParentID != nil {
		n, err := m.comments.CountDocuments(ctx, bson.M{"_id": *doc.ParentID}, options.Count().SetLimit(1))
		if err != nil {
			_, _ = m.comments.DeleteOne(ctx, bson.M{"_id": doc.ID})
			return nil, fmt.Errorf("%s: recheck parent: %w", op, err)
		}
		if n == 0 {
			if _, err := m.comments.DeleteOne(ctx, bson.M{"_id": doc.ID}); err != nil {
				return nil, fmt.Errorf("%s: rollback orphan: %w", op, err)
			}
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}
	}

	out := doc.toModel()
	out.Replies = models.Forest{}
	return &out, nil
}

// UpdateContent меняет текст и updated_at.
func (m *Mongo) UpdateContent(ctx context.Context, id int64, content string, at time.Time) (*models.Comment, error) {
	const op = "storage.mongo.UpdateContent"

	var doc commentDoc
	err := m.comments.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "updated_at": at.UTC().Truncate(time.Millisecond)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// DeleteComment удаляет узел и всех его потомков (по ancestors).
// Повторный проход по ancestors забирает ответы, вставленные во время первого DeleteMany
// (их родитель ещё существовал, поэтому CreateComment их не откатил).
func (m *Mongo) DeleteComment(ctx context.Context, id int64) error {
	const op = "storage.mongo.DeleteComment"

	res, err := m.comments.DeleteMany(ctx, bson.M{
		"$or": bson.A{
			bson.M{"_id": id},
			bson.M{"ancestors": id},
		},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if _, err := m.comments.DeleteMany(ctx, bson.M{"ancestors": id}); err != nil {
		return fmt.Errorf("%s: sweep descendants: %w", op, err)
	}

	return nil
}

// CommentByID возвращает комментарий по идентификатору.
func (m *Mongo) CommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	const op = "storage.mongo.CommentByID"

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// ListByTarget возвращает все комментарии элемента контента, сначала новые.
func (m *Mongo) ListByTarget(ctx context.Context, target models.Target) ([]models.Comment, error) {
	const op = "storage.mongo.ListByTarget"

	out, err := m.find(ctx,
		bson.M{"content_type": string(target.Type), "content_id": target.ID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListByUser возвращает корневые комментарии пользователя. limit <= 0 трактуется как 1.
func (m *Mongo) ListByUser(ctx context.Context, userID int64, limit int32) ([]models.Comment, error) {
	const op = "storage.mongo.ListByUser"

	if limit <= 0 {
		limit = 1
	}

	out, err := m.find(ctx,
		bson.M{"user_id": userID, "parent_id": nil},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// CountByTarget считает комментарии всех уровней.
func (m *Mongo) CountByTarget(ctx context.Context, target models.Target) (int64, error) {
	const op = "storage.mongo.CountByTarget"

	n, err := m.comments.CountDocuments(ctx, bson.M{"content_type": string(target.Type), "content_id": target.ID})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (m *Mongo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Comment, error) {
	cur, err := m.comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Comment, 0)
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		out = append(out, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}

	return out, nil
}
