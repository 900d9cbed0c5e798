// Package refresh отбрасывает результаты устаревших загрузок: применяется
// только ответ последнего запущенного запроса.
package refresh

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded возвращается, если за время загрузки стартовал более новый запрос.
var ErrSuperseded = errors.New("superseded by a newer request")

// Latest нумерует запросы и отменяет предыдущий при старте нового.
// Нулевое значение готово к использованию.
type Latest[T any] struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Run выполняет fetch и передаёт результат в apply, если запрос всё ещё последний.
// apply вызывается под блокировкой, поэтому результаты применяются в порядке запуска.
func (l *Latest[T]) Run(ctx context.Context, fetch func(context.Context) (T, error), apply func(T, error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	l.seq++
	id := l.seq
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.mu.Unlock()

	res, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seq != id {
		return ErrSuperseded
	}
	l.cancel = nil

	if apply != nil {
		apply(res, err)
	}
	return err
}

// Seq возвращает номер последнего запущенного запроса.
func (l *Latest[T]) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}
