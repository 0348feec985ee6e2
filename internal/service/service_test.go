package service

// Тесты сервисного слоя (internal/service).
//
//  Проверяем:
//  - валидацию входов и правила записи (автор, суперпользователь, self-reply, глубина, цель);
//  - маппинг ошибок storage -> service;
//  - точечную синхронизацию закэшированной ветки вместо пересборки;
//  - публикацию событий.
//
// Моки хранилища лежат в /mocks (MockStorage):
//   mockgen -source=./internal/storage/storage.go -destination=./mocks/storage.go -package=mocks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/gamerfeeds/internal/cache"
	"github.com/pribylovaa/gamerfeeds/internal/commenttree"
	"github.com/pribylovaa/gamerfeeds/internal/config"
	"github.com/pribylovaa/gamerfeeds/internal/events"
	"github.com/pribylovaa/gamerfeeds/internal/models"
	"github.com/pribylovaa/gamerfeeds/internal/storage"
	"github.com/pribylovaa/gamerfeeds/mocks"
)

var (
	game  = models.Target{Type: models.ContentGame, ID: 10}
	news  = models.Target{Type: models.ContentNews, ID: 10}
	t0    = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	neo   = models.User{ID: 1, Username: "neo"}
	trin  = models.User{ID: 2, Username: "trinity"}
	admin = models.User{ID: 99, Username: "admin", IsSuperuser: true}
)

type published struct {
	topic string
	event any
}

// recPublisher запоминает опубликованные события.
type recPublisher struct {
	mu  sync.Mutex
	got []published
	err error
}

func (p *recPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, published{topic: topic, event: event})
	return p.err
}

func (p *recPublisher) Close() error { return nil }

type stubChecker struct {
	exists bool
	err    error
}

func (c *stubChecker) Exists(context.Context, models.Target) (bool, error) { return c.exists, c.err }

type env struct {
	svc     *Service
	st      *mocks.MockStorage
	cache   *cache.Memory
	pub     *recPublisher
	checker *stubChecker
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ctrl := gomock.NewController(t)
	e := &env{
		st:      mocks.NewMockStorage(ctrl),
		cache:   cache.NewMemory(time.Minute),
		pub:     &recPublisher{},
		checker: &stubChecker{exists: true},
	}

	e.svc = New(e.st, e.cache, e.pub, e.checker, config.Config{Limits: config.LimitsConfig{
		MaxDepth:         2,
		MaxContentLength: 20,
		UserComments:     20,
		UserCommentsMax:  100,
	}})
	e.svc.now = func() time.Time { return t0.Add(time.Hour) }

	return e
}

// row — плоская строка хранилища.
func row(id int64, parent *int64, user models.User, level int32, at time.Time) models.Comment {
	return models.Comment{
		ID:          id,
		Content:     "c",
		UserID:      user.ID,
		Username:    user.Username,
		ParentID:    parent,
		ContentType: game.Type,
		ContentID:   game.ID,
		Level:       level,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

// rows: 1(neo) -> 2(trinity) -> 3(neo); 4(trinity) — более новый корень.
func rows() []models.Comment {
	return []models.Comment{
		row(4, nil, trin, 0, t0.Add(4*time.Minute)),
		row(3, models.Int64(2), neo, 2, t0.Add(3*time.Minute)),
		row(2, models.Int64(1), trin, 1, t0.Add(2*time.Minute)),
		row(1, nil, neo, 0, t0.Add(time.Minute)),
	}
}

// warm кэширует ветку game; хранилище опрашивается ровно один раз.
func (e *env) warm(t *testing.T) models.Forest {
	t.Helper()

	e.st.EXPECT().ListByTarget(gomock.Any(), game).Return(rows(), nil).Times(1)

	f, err := e.svc.Thread(context.Background(), game)
	require.NoError(t, err)
	require.Equal(t, []int64{4, 1}, []int64{f[0].ID, f[1].ID})

	return f
}

func (e *env) cached(t *testing.T) models.Forest {
	t.Helper()

	f, ok, err := e.cache.Get(context.Background(), game)
	require.NoError(t, err)
	require.True(t, ok, "thread must stay cached")
	return f
}

func TestCreateComment_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		user models.User
		in   CreateCommentInput
		want error
	}{
		{"anonymous", models.User{}, CreateCommentInput{Target: game, Content: "x"}, ErrUnauthenticated},
		{"blank content", neo, CreateCommentInput{Target: game, Content: "   "}, ErrInvalidArgument},
		{"too long", neo, CreateCommentInput{Target: game, Content: "ааааааааааааааааааааа"}, ErrInvalidArgument},
		{"bad type", neo, CreateCommentInput{Target: models.Target{Type: "video", ID: 1}, Content: "x"}, ErrInvalidArgument},
		{"bad id", neo, CreateCommentInput{Target: models.Target{Type: models.ContentNews}, Content: "x"}, ErrInvalidArgument},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.CreateComment(ctx, tc.user, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}

	require.Empty(t, e.pub.got)
}

func TestCreateComment_TargetChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.checker.exists = false
	_, err := e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, Content: "hi"})
	require.ErrorIs(t, err, ErrTargetNotFound)

	e.checker.err = errors.New("catalog down")
	_, err = e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, Content: "hi"})
	require.ErrorIs(t, err, ErrInternal)
}

func TestCreateComment_ReplyRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.st.EXPECT().CommentByID(gomock.Any(), int64(404)).Return(nil, storage.ErrNotFound)
	_, err := e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, ParentID: models.Int64(404), Content: "hi"})
	require.ErrorIs(t, err, ErrParentNotFound)

	other := row(5, nil, trin, 0, t0)
	other.ContentType, other.ContentID = news.Type, news.ID
	e.st.EXPECT().CommentByID(gomock.Any(), int64(5)).Return(&other, nil)
	_, err = e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, ParentID: models.Int64(5), Content: "hi"})
	require.ErrorIs(t, err, ErrParentNotFound)

	own := row(1, nil, neo, 0, t0)
	e.st.EXPECT().CommentByID(gomock.Any(), int64(1)).Return(&own, nil)
	_, err = e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, ParentID: models.Int64(1), Content: "hi"})
	require.ErrorIs(t, err, ErrSelfReply)

	deep := row(3, models.Int64(2), trin, 2, t0)
	e.st.EXPECT().CommentByID(gomock.Any(), int64(3)).Return(&deep, nil)
	_, err = e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, ParentID: models.Int64(3), Content: "hi"})
	require.ErrorIs(t, err, ErrMaxDepthExceeded)

	e.st.EXPECT().CommentByID(gomock.Any(), int64(7)).Return(nil, errors.New("db down"))
	_, err = e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, ParentID: models.Int64(7), Content: "hi"})
	require.ErrorIs(t, err, ErrInternal)

	require.Empty(t, e.pub.got)
}

func TestCreateComment_Root_SyncsCacheAndPublishes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	before := e.warm(t)

	created := row(10, nil, neo, 0, t0.Add(time.Hour))
	created.Content = "first!"
	e.st.EXPECT().CreateComment(gomock.Any(), models.Comment{
		Content:     "first!",
		UserID:      neo.ID,
		Username:    neo.Username,
		ContentType: game.Type,
		ContentID:   game.ID,
	}).Return(&created, nil)

	got, err := e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, Content: "  first!  "})
	require.NoError(t, err)
	require.NotNil(t, got.Replies)
	require.Empty(t, got.Replies)

	after := e.cached(t)
	require.Len(t, after, 3)
	require.EqualValues(t, 10, after[0].ID)
	require.Len(t, before, 2, "previous forest is not mutated")

	require.Len(t, e.pub.got, 1)
	require.Equal(t, events.TopicCommentCreated, e.pub.got[0].topic)
	require.Equal(t, events.CommentCreated{Comment: got}, e.pub.got[0].event)
}

func TestCreateComment_Reply_PrependsUnderParent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.warm(t)

	parent := row(1, nil, neo, 0, t0.Add(time.Minute))
	e.st.EXPECT().CommentByID(gomock.Any(), int64(1)).Return(&parent, nil)

	created := row(11, models.Int64(1), trin, 1, t0.Add(time.Hour))
	e.st.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(&created, nil)

	_, err := e.svc.CreateComment(ctx, trin, CreateCommentInput{Target: game, ParentID: models.Int64(1), Content: "reply"})
	require.NoError(t, err)

	f := e.cached(t)
	require.EqualValues(t, 1, f[1].ID)
	require.Equal(t, []int64{11, 2}, []int64{f[1].Replies[0].ID, f[1].Replies[1].ID})
}

func TestCreateComment_StaleCache_Invalidated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Ветка в кэше не знает о родителе 50.
	require.NoError(t, e.cache.Set(ctx, game, models.Forest{}))

	parent := row(50, nil, trin, 0, t0)
	e.st.EXPECT().CommentByID(gomock.Any(), int64(50)).Return(&parent, nil)
	created := row(51, models.Int64(50), neo, 1, t0.Add(time.Minute))
	e.st.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(&created, nil)

	_, err := e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, ParentID: models.Int64(50), Content: "hi"})
	require.NoError(t, err)

	_, ok, err := e.cache.Get(ctx, game)
	require.NoError(t, err)
	require.False(t, ok)
	require.Len(t, e.pub.got, 1)
}

// occurrences считает узлы с данным id во всём лесу.
func occurrences(f models.Forest, id int64) int {
	n := 0
	commenttree.Walk(f, func(c models.Comment, _ int) bool {
		if c.ID == id {
			n++
		}
		return true
	})
	return n
}

// Читатель пересобирает ветку сразу после коммита новой строки, но до синхронизации кэша:
// собранный лес уже содержит узел, вставка не должна его дублировать.
func TestCreateComment_ConcurrentRebuild_NoDuplicate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created := row(5, nil, neo, 0, t0.Add(time.Hour))
	withNew := append([]models.Comment{created}, rows()...)

	e.st.EXPECT().ListByTarget(gomock.Any(), game).Return(withNew, nil).Times(1)
	e.st.EXPECT().CreateComment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ models.Comment) (*models.Comment, error) {
			f, err := e.svc.Thread(ctx, game)
			require.NoError(t, err)
			require.Equal(t, 1, occurrences(f, 5))

			c := created
			return &c, nil
		})

	_, err := e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, Content: "hi"})
	require.NoError(t, err)

	f := e.cached(t)
	require.Equal(t, 1, occurrences(f, 5))
	require.Equal(t, 5, commenttree.Count(f))
}

// Читатель получил строки до удаления, а кэш заполняет уже после него:
// устаревший лес не должен попасть в кэш.
func TestDeleteComment_ConcurrentRebuild_NotCached(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	root := row(4, nil, trin, 0, t0.Add(4*time.Minute))
	e.st.EXPECT().CommentByID(gomock.Any(), int64(4)).Return(&root, nil)
	e.st.EXPECT().DeleteComment(gomock.Any(), int64(4)).Return(nil)

	e.st.EXPECT().ListByTarget(gomock.Any(), game).DoAndReturn(
		func(ctx context.Context, _ models.Target) ([]models.Comment, error) {
			stale := rows()
			require.NoError(t, e.svc.DeleteComment(ctx, trin, 4))
			return stale, nil
		}).Times(1)

	f, err := e.svc.Thread(ctx, game)
	require.NoError(t, err)
	require.Equal(t, 1, occurrences(f, 4), "reader started before the delete")

	_, ok, err := e.cache.Get(ctx, game)
	require.NoError(t, err)
	require.False(t, ok, "stale forest must not be cached")

	e.st.EXPECT().ListByTarget(gomock.Any(), game).Return(rows()[1:], nil).Times(1)

	f, err = e.svc.Thread(ctx, game)
	require.NoError(t, err)
	require.Zero(t, occurrences(f, 4))
	require.Zero(t, occurrences(e.cached(t), 4))
}

func TestCreateComment_StorageErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.st.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(nil, storage.ErrParentNotFound)
	_, err := e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, Content: "hi"})
	require.ErrorIs(t, err, ErrParentNotFound)

	e.st.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
	_, err = e.svc.CreateComment(ctx, neo, CreateCommentInput{Target: game, Content: "hi"})
	require.ErrorIs(t, err, ErrInternal)
}

func TestCreateComment_PublishFailureIsNotFatal(t *testing.T) {
	e := newEnv(t)
	e.pub.err = errors.New("nats down")

	created := row(10, nil, neo, 0, t0)
	e.st.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(&created, nil)

	_, err := e.svc.CreateComment(context.Background(), neo, CreateCommentInput{Target: game, Content: "hi"})
	require.NoError(t, err)
}

func TestUpdateComment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.warm(t)

	orig := row(1, nil, neo, 0, t0.Add(time.Minute))

	t.Run("forbidden for non-author", func(t *testing.T) {
		e.st.EXPECT().CommentByID(gomock.Any(), int64(1)).Return(&orig, nil)
		_, err := e.svc.UpdateComment(ctx, admin, 1, "x")
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("not found", func(t *testing.T) {
		e.st.EXPECT().CommentByID(gomock.Any(), int64(77)).Return(nil, storage.ErrNotFound)
		_, err := e.svc.UpdateComment(ctx, neo, 77, "x")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := e.svc.UpdateComment(ctx, neo, 1, " ")
		require.ErrorIs(t, err, ErrInvalidArgument)
		_, err = e.svc.UpdateComment(ctx, neo, 0, "x")
		require.ErrorIs(t, err, ErrInvalidArgument)
		_, err = e.svc.UpdateComment(ctx, models.User{}, 1, "x")
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("author edits, position and replies kept", func(t *testing.T) {
		updated := orig
		updated.Content = "edited"
		updated.UpdatedAt = t0.Add(time.Hour)

		e.st.EXPECT().CommentByID(gomock.Any(), int64(1)).Return(&orig, nil)
		e.st.EXPECT().UpdateContent(gomock.Any(), int64(1), "edited", t0.Add(time.Hour)).Return(&updated, nil)

		got, err := e.svc.UpdateComment(ctx, neo, 1, " edited ")
		require.NoError(t, err)
		require.True(t, got.IsEdited())

		f := e.cached(t)
		require.EqualValues(t, 1, f[1].ID)
		require.Equal(t, "edited", f[1].Content)
		require.Len(t, f[1].Replies, 1)
		require.EqualValues(t, 3, f[1].Replies[0].Replies[0].ID)

		last := e.pub.got[len(e.pub.got)-1]
		require.Equal(t, events.TopicCommentUpdated, last.topic)
		require.Nil(t, last.event.(events.CommentUpdated).Comment.Replies)
	})
}

func TestDeleteComment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.warm(t)

	reply := row(2, models.Int64(1), trin, 1, t0.Add(2*time.Minute))

	t.Run("forbidden for stranger", func(t *testing.T) {
		e.st.EXPECT().CommentByID(gomock.Any(), int64(2)).Return(&reply, nil)
		err := e.svc.DeleteComment(ctx, neo, 2)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("superuser removes subtree", func(t *testing.T) {
		e.st.EXPECT().CommentByID(gomock.Any(), int64(2)).Return(&reply, nil)
		e.st.EXPECT().DeleteComment(gomock.Any(), int64(2)).Return(nil)

		require.NoError(t, e.svc.DeleteComment(ctx, admin, 2))

		f := e.cached(t)
		require.Len(t, f, 2)
		require.NotNil(t, f[1].Replies)
		require.Empty(t, f[1].Replies)

		last := e.pub.got[len(e.pub.got)-1]
		require.Equal(t, events.TopicCommentDeleted, last.topic)
		require.Equal(t, events.CommentDeleted{ID: 2, ContentType: game.Type, ContentID: game.ID}, last.event)
	})

	t.Run("author removes root", func(t *testing.T) {
		root := row(4, nil, trin, 0, t0.Add(4*time.Minute))
		e.st.EXPECT().CommentByID(gomock.Any(), int64(4)).Return(&root, nil)
		e.st.EXPECT().DeleteComment(gomock.Any(), int64(4)).Return(nil)

		require.NoError(t, e.svc.DeleteComment(ctx, trin, 4))
		require.Len(t, e.cached(t), 1)
	})

	t.Run("storage errors", func(t *testing.T) {
		own := row(1, nil, neo, 0, t0)
		e.st.EXPECT().CommentByID(gomock.Any(), int64(1)).Return(&own, nil)
		e.st.EXPECT().DeleteComment(gomock.Any(), int64(1)).Return(storage.ErrNotFound)
		require.ErrorIs(t, e.svc.DeleteComment(ctx, neo, 1), ErrNotFound)

		e.st.EXPECT().CommentByID(gomock.Any(), int64(8)).Return(nil, errors.New("boom"))
		require.ErrorIs(t, e.svc.DeleteComment(ctx, neo, 8), ErrInternal)
	})
}

func TestThread(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.warm(t)
	second, err := e.svc.Thread(ctx, game)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.Equal(t, []int64{2}, []int64{first[1].Replies[0].ID})
	require.NotNil(t, first[0].Replies)

	_, err = e.svc.Thread(ctx, models.Target{Type: "video", ID: 1})
	require.ErrorIs(t, err, ErrInvalidArgument)

	e.st.EXPECT().ListByTarget(gomock.Any(), news).Return(nil, nil)
	e.checker.exists = false
	_, err = e.svc.Thread(ctx, news)
	require.ErrorIs(t, err, ErrTargetNotFound)

	empty := models.Target{Type: models.ContentDiscussion, ID: 3}
	e.st.EXPECT().ListByTarget(gomock.Any(), empty).Return(nil, nil)
	e.checker.exists = true
	f, err := e.svc.Thread(ctx, empty)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Empty(t, f)

	broken := models.Target{Type: models.ContentGame, ID: 500}
	e.st.EXPECT().ListByTarget(gomock.Any(), broken).Return(nil, errors.New("db down"))
	_, err = e.svc.Thread(ctx, broken)
	require.ErrorIs(t, err, ErrInternal)
}

func TestSubtree(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.warm(t)

	replies, err := e.svc.Subtree(ctx, game, 2)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	require.EqualValues(t, 3, replies[0].ID)

	leaf, err := e.svc.Subtree(ctx, game, 4)
	require.NoError(t, err)
	require.Empty(t, leaf)

	_, err = e.svc.Subtree(ctx, game, 404)
	require.ErrorIs(t, err, ErrParentNotFound)
}

func TestCommentByID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.warm(t)

	c1 := row(1, nil, neo, 0, t0.Add(time.Minute))
	e.st.EXPECT().CommentByID(gomock.Any(), int64(1)).Return(&c1, nil)

	got, err := e.svc.CommentByID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	require.EqualValues(t, 3, got.Replies[0].Replies[0].ID)

	// Комментария нет в кэше: ветка пересобирается из хранилища.
	fresh := row(20, nil, trin, 0, t0.Add(time.Hour))
	e.st.EXPECT().CommentByID(gomock.Any(), int64(20)).Return(&fresh, nil)
	e.st.EXPECT().ListByTarget(gomock.Any(), game).Return(append([]models.Comment{fresh}, rows()...), nil)

	got, err = e.svc.CommentByID(ctx, 20)
	require.NoError(t, err)
	require.EqualValues(t, 20, got.ID)
	require.Len(t, e.cached(t), 3)

	e.st.EXPECT().CommentByID(gomock.Any(), int64(404)).Return(nil, storage.ErrNotFound)
	_, err = e.svc.CommentByID(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCommentsByUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	roots := []models.Comment{row(1, nil, neo, 0, t0.Add(time.Minute))}

	e.st.EXPECT().ListByUser(gomock.Any(), neo.ID, int32(20)).Return(roots, nil)
	e.st.EXPECT().ListByTarget(gomock.Any(), game).Return(rows(), nil).Times(1)

	got, err := e.svc.CommentsByUser(ctx, neo.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Replies, 1)

	e.st.EXPECT().ListByUser(gomock.Any(), neo.ID, int32(100)).Return(roots, nil)
	_, err = e.svc.CommentsByUser(ctx, neo.ID, 500)
	require.NoError(t, err)

	// Неизвестный пользователь неотличим от пользователя без комментариев.
	e.st.EXPECT().ListByUser(gomock.Any(), int64(404), int32(20)).Return(nil, nil)
	got, err = e.svc.CommentsByUser(ctx, 404, 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	_, err = e.svc.CommentsByUser(ctx, 0, 10)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = e.svc.CommentsByUser(ctx, neo.ID, -1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCountByTarget(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.st.EXPECT().CountByTarget(gomock.Any(), game).Return(int64(4), nil)
	n, err := e.svc.CountByTarget(ctx, game)
	require.NoError(t, err)
	require.EqualValues(t, 4, n)

	e.st.EXPECT().CountByTarget(gomock.Any(), news).Return(int64(0), errors.New("boom"))
	_, err = e.svc.CountByTarget(ctx, news)
	require.ErrorIs(t, err, ErrInternal)
}
