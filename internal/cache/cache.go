// cache хранит собранные ветки комментариев (лес на элемент контента)
// и синхронизирует их точечными изменениями вместо полной пересборки.
package cache

import (
	"context"
	"errors"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

// ErrContention — не удалось применить изменение из-за конкурентных записей;
// ключ инвалидирован, следующая выборка пересоберёт ветку из хранилища.
var ErrContention = errors.New("cache: contention")

// ApplyFunc — точечное изменение леса (commenttree.Insert/Replace/Remove).
type ApplyFunc func(models.Forest) (models.Forest, error)

// ThreadCache — контракт кэша веток.
type ThreadCache interface {
	// Get возвращает лес и признак его наличия в кэше.
	Get(ctx context.Context, target models.Target) (models.Forest, bool, error)
	// Set сохраняет лес целиком.
	Set(ctx context.Context, target models.Target, forest models.Forest) error
	// Generation — поколение ветки. Растёт при каждом Apply и Invalidate,
	// в том числе когда самой ветки в кэше нет.
	Generation(ctx context.Context, target models.Target) (uint64, error)
	// Fill сохраняет лес, только если поколение ветки всё ещё равно gen.
	// false — между чтением поколения и Fill ветку изменили, лес не сохранён.
	Fill(ctx context.Context, target models.Target, forest models.Forest, gen uint64) (bool, error)
	// Apply применяет fn к закэшированному лесу и сохраняет результат.
	// Ветки нет в кэше — лес не трогается. Ошибка fn инвалидирует ключ и возвращается вызывающему.
	Apply(ctx context.Context, target models.Target, fn ApplyFunc) error
	// Invalidate удаляет ветку из кэша.
	Invalidate(ctx context.Context, target models.Target) error
	// Close освобождает ресурсы.
	Close() error
}

// Noop — кэш, который ничего не хранит (cache.driver = none).
type Noop struct{}

func (Noop) Get(context.Context, models.Target) (models.Forest, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, models.Target, models.Forest) error { return nil }
func (Noop) Generation(context.Context, models.Target) (uint64, error) { return 0, nil }
func (Noop) Fill(context.Context, models.Target, models.Forest, uint64) (bool, error) {
	return false, nil
}
func (Noop) Apply(context.Context, models.Target, ApplyFunc) error { return nil }
func (Noop) Invalidate(context.Context, models.Target) error { return nil }
func (Noop) Close() error { return nil }
