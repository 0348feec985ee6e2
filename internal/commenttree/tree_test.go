package commenttree

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

// Тесты синхронизатора дерева комментариев.
//
// Проверяем:
//   - неизвестный id -> лес без изменений (Replace/Remove);
//   - вставка в корень и под родителя на любой глубине (prepend);
//   - Replace сохраняет позицию и ответы, если у замены Replies == nil;
//   - Remove вырезает поддерево, соседи сохраняют порядок;
//   - Insert + Remove возвращает исходный лес;
//   - входной лес никогда не мутируется.

func node(id int64, parent *int64, replies ...models.Comment) models.Comment {
	if replies == nil {
		replies = []models.Comment{}
	}

	return models.Comment{
		ID:          id,
		ParentID:    parent,
		Content:     fmt.Sprintf("comment %d", id),
		ContentType: models.ContentNews,
		ContentID:   100,
		Replies:     models.Forest(replies),
	}
}

func pid(id int64) *int64 { return models.Int64(id) }

// sample:
//
//	1
//	├── 2
//	│   ├── 4
//	│   │   └── 6
//	│   └── 5
//	└── 3
//	7
func sample() models.Forest {
	return models.Forest{
		node(1, nil,
			node(2, pid(1),
				node(4, pid(2),
					node(6, pid(4)),
				),
				node(5, pid(2)),
			),
			node(3, pid(1)),
		),
		node(7, nil),
	}
}

func deepCopy(f models.Forest) models.Forest {
	if f == nil {
		return nil
	}

	out := make(models.Forest, len(f))
	for i, c := range f {
		c.Replies = deepCopy(c.Replies)
		out[i] = c
	}

	return out
}

func ids(f models.Forest) []int64 {
	var out []int64
	Walk(f, func(c models.Comment, _ int) bool {
		out = append(out, c.ID)
		return true
	})

	return out
}

func TestReplace_UnknownID_ReturnsForestUnchanged(t *testing.T) {
	t.Parallel()

	repl := node(999, nil)

	cases := []struct {
		name   string
		forest models.Forest
	}{
		{name: "nil forest", forest: nil},
		{name: "empty forest", forest: models.Forest{}},
		{name: "nested forest", forest: sample()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.forest, Replace(tc.forest, 42, &repl))
			require.Equal(t, tc.forest, Replace(tc.forest, 42, nil))
			require.Equal(t, tc.forest, Remove(tc.forest, 42))
		})
	}
}

func TestInsert_Root_Prepends(t *testing.T) {
	t.Parallel()

	f := sample()
	n := node(8, nil)

	got, err := Insert(f, n)
	require.NoError(t, err)

	want := append(models.Forest{n}, sample()...)
	require.Equal(t, want, got)

	got, err = Insert(nil, n)
	require.NoError(t, err)
	require.Equal(t, models.Forest{n}, got)
}

func TestInsert_UnderParent_AnyDepth(t *testing.T) {
	t.Parallel()

	n := node(8, pid(6))
	got, err := Insert(sample(), n)
	require.NoError(t, err)

	want := models.Forest{
		node(1, nil,
			node(2, pid(1),
				node(4, pid(2),
					node(6, pid(4), n),
				),
				node(5, pid(2)),
			),
			node(3, pid(1)),
		),
		node(7, nil),
	}
	require.Equal(t, want, got)

	// Вставка к родителю с уже имеющимися ответами — в начало списка.
	n2 := node(9, pid(2))
	got, err = Insert(sample(), n2)
	require.NoError(t, err)

	parent, ok := Find(got, 2)
	require.True(t, ok)
	require.Equal(t, []int64{9, 4, 5}, []int64{
		parent.Replies[0].ID, parent.Replies[1].ID, parent.Replies[2].ID,
	})
}

func TestInsert_MissingParent(t *testing.T) {
	t.Parallel()

	f := sample()
	got, err := Insert(f, node(8, pid(404)))
	require.ErrorIs(t, err, ErrParentNotFound)
	require.Equal(t, sample(), got)
}

func TestReplace_PreservesPositionAndReplies(t *testing.T) {
	t.Parallel()

	edited := models.Comment{
		ID:          2,
		ParentID:    pid(1),
		Content:     "edited",
		ContentType: models.ContentNews,
		ContentID:   100,
		UpdatedAt:   time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	got := Replace(sample(), 2, &edited)

	n, ok := Find(got, 2)
	require.True(t, ok)
	require.Equal(t, "edited", n.Content)
	require.Equal(t, []int64{4, 6, 5}, ids(n.Replies))

	// Позиция и весь остальной лес не изменились.
	require.Equal(t, ids(sample()), ids(got))
	other, _ := Find(got, 3)
	orig, _ := Find(sample(), 3)
	require.Equal(t, orig, other)
}

func TestReplace_ExplicitRepliesWin(t *testing.T) {
	t.Parallel()

	repl := node(2, pid(1)) // Replies: [] (не nil)
	got := Replace(sample(), 2, &repl)

	n, ok := Find(got, 2)
	require.True(t, ok)
	require.Empty(t, n.Replies)
	require.Equal(t, []int64{1, 2, 3, 7}, ids(got))
}

func TestRemove_ExcisesSubtree(t *testing.T) {
	t.Parallel()

	got := Remove(sample(), 2)
	require.Equal(t, []int64{1, 3, 7}, ids(got))

	got = Replace(sample(), 1, nil)
	require.Equal(t, []int64{7}, ids(got))

	got = Remove(sample(), 5)
	require.Equal(t, []int64{1, 2, 4, 6, 3, 7}, ids(got))

	got = Remove(Remove(sample(), 1), 7)
	require.Empty(t, got)
	require.NotNil(t, got)
}

func TestInsertThenRemove_RoundTrip(t *testing.T) {
	t.Parallel()

	parents := append([]int64{0}, ids(sample())...)
	for _, p := range parents {
		t.Run(fmt.Sprintf("parent=%d", p), func(t *testing.T) {
			t.Parallel()

			var parent *int64
			if p != 0 {
				parent = pid(p)
			}

			f := sample()
			inserted, err := Insert(f, node(50, parent))
			require.NoError(t, err)
			require.Equal(t, Count(f)+1, Count(inserted))

			require.Equal(t, f, Remove(inserted, 50))
		})
	}
}

func TestConcreteScenario(t *testing.T) {
	t.Parallel()

	f := models.Forest{node(1, nil, node(2, pid(1)))}

	got, err := Insert(f, node(3, pid(1)))
	require.NoError(t, err)
	require.Equal(t, models.Forest{node(1, nil, node(3, pid(1)), node(2, pid(1)))}, got)

	require.Equal(t, f, Replace(got, 3, nil))
}

func TestOperations_DoNotMutateInput(t *testing.T) {
	t.Parallel()

	f := sample()
	before := deepCopy(f)

	edited := node(4, pid(2))
	edited.Content = "edited"
	edited.Replies = nil

	_, err := Insert(f, node(10, pid(6)))
	require.NoError(t, err)
	_, err = Insert(f, node(11, nil))
	require.NoError(t, err)
	_ = Replace(f, 4, &edited)
	_ = Remove(f, 2)
	_ = Remove(f, 7)

	require.Equal(t, before, f)
}

func TestWalk_PreOrderWithDepth(t *testing.T) {
	t.Parallel()

	type visit struct {
		id    int64
		depth int
	}

	var got []visit
	Walk(sample(), func(c models.Comment, depth int) bool {
		got = append(got, visit{c.ID, depth})
		return true
	})

	require.Equal(t, []visit{{1, 0}, {2, 1}, {4, 2}, {6, 3}, {5, 2}, {3, 1}, {7, 0}}, got)

	// Остановка обхода.
	var seen []int64
	Walk(sample(), func(c models.Comment, _ int) bool {
		seen = append(seen, c.ID)
		return c.ID != 4
	})
	require.Equal(t, []int64{1, 2, 4}, seen)
}

func TestFind(t *testing.T) {
	t.Parallel()

	n, ok := Find(sample(), 4)
	require.True(t, ok)
	require.Equal(t, []int64{4, 6}, ids(models.Forest{*n}))

	_, ok = Find(sample(), 404)
	require.False(t, ok)
	require.Equal(t, 7, Count(sample()))
}
