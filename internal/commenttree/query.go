package commenttree

import (
	"cmp"
	"slices"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

// Find возвращает копию первого узла с данным id (вместе с поддеревом).
func Find(f models.Forest, id int64) (*models.Comment, bool) {
	var found *models.Comment
	Walk(f, func(c models.Comment, _ int) bool {
		if c.ID == id {
			found = &c
			return false
		}
		return true
	})

	return found, found != nil
}

// Walk обходит лес в прямом порядке. depth корней = 0.
// Если fn вернула false, обход прекращается.
func Walk(f models.Forest, fn func(c models.Comment, depth int) bool) {
	walk(f, 0, fn)
}

func walk(list models.Forest, depth int, fn func(models.Comment, int) bool) bool {
	for _, c := range list {
		if !fn(c, depth) {
			return false
		}
		if !walk(c.Replies, depth+1, fn) {
			return false
		}
	}

	return true
}

// Count — общее число узлов леса.
func Count(f models.Forest) int {
	n := 0
	Walk(f, func(models.Comment, int) bool {
		n++
		return true
	})

	return n
}

// Build собирает лес из плоского списка строк хранилища.
//
// Соседи упорядочиваются от новых к старым (created_at DESC, id DESC).
// Строки, чей родитель отсутствует во входе, отбрасываются вместе с
// их потомками. Replies у каждого узла не nil, поэтому лист кодируется
// как "replies": [].
func Build(flat []models.Comment) models.Forest {
	roots := make([]models.Comment, 0)
	children := make(map[int64][]models.Comment)

	for _, c := range flat {
		c.Replies = nil
		if c.IsRoot() {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	seen := make(map[int64]struct{}, len(flat))
	return assemble(roots, children, seen)
}

func assemble(list []models.Comment, children map[int64][]models.Comment, seen map[int64]struct{}) models.Forest {
	slices.SortStableFunc(list, newestFirst)

	out := make(models.Forest, 0, len(list))
	for _, c := range list {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		c.Replies = assemble(children[c.ID], children, seen)
		out = append(out, c)
	}

	return out
}

func newestFirst(a, b models.Comment) int {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	}

	return cmp.Compare(b.ID, a.ID)
}
