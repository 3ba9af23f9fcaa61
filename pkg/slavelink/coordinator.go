package slavelink

import (
	"context"
	"fmt"
	"sync"
)

// Coordinator гарантирует, что в процессе выполняется не более одной работы,
// владеет сигналом отмены и единой точкой завершения: сброс прогресса,
// возврат в Idle и уведомление слоя представления происходят ровно один раз
// независимо от того, завершилась работа успехом, отменой или ошибкой.
type Coordinator struct {
	events Events

	mu     sync.Mutex
	state  JobState
	kind   JobKind
	cancel context.CancelFunc
}

// NewCoordinator создаёт координатор с заданными колбэками событий.
func NewCoordinator(events Events) *Coordinator {
	return &Coordinator{events: events}
}

// State возвращает текущее состояние работы.
func (c *Coordinator) State() JobState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Kind возвращает вид текущей работы (JobNone, если работа не идёт).
func (c *Coordinator) Kind() JobKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind
}

// Busy сообщает, идёт ли сейчас работа.
func (c *Coordinator) Busy() bool {
	return c.State() != StateIdle
}

// Start запускает работу fn в отдельной горутине. Если работа уже идёт,
// возвращает ErrAlreadyRunning, не затрагивая её. Сигнал отмены каждый раз
// создаётся заново: отмена предыдущей работы не действует на следующую.
func (c *Coordinator) Start(kind JobKind, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.state = StateRunning
	c.kind = kind
	c.cancel = cancel
	c.mu.Unlock()

	c.events.log(fmt.Sprintf("Старт: %s", kind))

	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("slavelink: внутренняя ошибка работы: %v", r)
			}
			c.finish(kind, err)
		}()
		err = fn(ctx)
	}()

	return nil
}

// Cancel взводит сигнал отмены. Канал при этом не закрывается принудительно:
// работа сама замечает сигнал на своих контрольных точках и сворачивается.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return
	}
	c.state = StateCancelRequested
	if c.cancel != nil {
		c.cancel()
	}
}

// finish — единственная точка завершения работы: сброс прогресса,
// уведомление слоя представления и лишь затем возврат в Idle, чтобы
// наблюдатель состояния не увидел Idle раньше события завершения.
func (c *Coordinator) finish(kind JobKind, err error) {
	c.events.progress("", 0)
	if c.events.OnDone != nil {
		c.events.OnDone(kind, err)
	}

	c.mu.Lock()
	c.state = StateIdle
	c.kind = JobNone
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
}

// checkCancel возвращает ErrCancelled, если контекст уже отменён.
// Используется рабочими процессами на каждой контрольной точке.
func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}
