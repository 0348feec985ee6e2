// Package commenttree синхронизирует лес комментариев с точечными изменениями,
// пришедшими от бэкенда: вставка, замена и удаление узла.
//
// Все функции чистые: входной лес не изменяется, результат разделяет
// с входом неизменённые поддеревья. Поиск идёт в прямом порядке (узел,
// затем его ответы по порядку), поэтому при дублирующихся ID всегда
// выбирается первый встреченный узел.
package commenttree

import (
	"errors"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

// ErrParentNotFound — родитель вставляемого узла отсутствует в лесу.
var ErrParentNotFound = errors.New("commenttree: parent not found")

// Insert добавляет node в начало списка корней (ParentID == nil) или
// в начало ответов его родителя.
//
// Если родителя в лесу нет, возвращается исходный лес без изменений и
// ErrParentNotFound: политику (тихо проигнорировать, перезагрузить ветку,
// показать ошибку) выбирает вызывающий.
func Insert(f models.Forest, node models.Comment) (models.Forest, error) {
	if node.IsRoot() {
		return prepend(f, node), nil
	}

	out, ok := insertUnder(f, *node.ParentID, node)
	if !ok {
		return f, ErrParentNotFound
	}

	return out, nil
}

// Replace заменяет первый (в прямом порядке) узел с данным id на node,
// сохраняя его позицию среди соседей. Если node.Replies == nil, у замены
// остаются ответы исходного узла.
//
// node == nil удаляет узел вместе со всем поддеревом.
// Неизвестный id — не ошибка: лес возвращается как есть.
func Replace(f models.Forest, id int64, node *models.Comment) models.Forest {
	out, _ := replace(f, id, node)
	return out
}

// Remove — то же, что Replace(f, id, nil).
func Remove(f models.Forest, id int64) models.Forest {
	return Replace(f, id, nil)
}

func insertUnder(list models.Forest, parentID int64, node models.Comment) (models.Forest, bool) {
	for i := range list {
		if list[i].ID == parentID {
			out := clone(list)
			out[i].Replies = prepend(list[i].Replies, node)
			return out, true
		}

		if replies, ok := insertUnder(list[i].Replies, parentID, node); ok {
			out := clone(list)
			out[i].Replies = replies
			return out, true
		}
	}

	return list, false
}

func replace(list models.Forest, id int64, node *models.Comment) (models.Forest, bool) {
	for i := range list {
		if list[i].ID == id {
			if node == nil {
				out := make(models.Forest, 0, len(list)-1)
				out = append(out, list[:i]...)
				return append(out, list[i+1:]...), true
			}

			repl := *node
			if repl.Replies == nil {
				repl.Replies = list[i].Replies
			}

			out := clone(list)
			out[i] = repl
			return out, true
		}

		if replies, ok := replace(list[i].Replies, id, node); ok {
			out := clone(list)
			out[i].Replies = replies
			return out, true
		}
	}

	return list, false
}

// prepend возвращает новый срез [node, list...]; list не трогается.
func prepend(list models.Forest, node models.Comment) models.Forest {
	out := make(models.Forest, 0, len(list)+1)
	out = append(out, node)
	return append(out, list...)
}

// clone копирует один уровень; поддеревья разделяются.
func clone(list models.Forest) models.Forest {
	out := make(models.Forest, len(list))
	copy(out, list)
	return out
}
