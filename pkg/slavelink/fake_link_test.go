package slavelink

import (
	"sync"
	"time"
)

// fakeLink — фиктивный канал для тестов: записи накапливаются, чтение идёт
// по заранее заданному сценарию. Пустой элемент сценария изображает таймаут
// чтения (n==0 без ошибки), исчерпанный сценарий — тишину на линии.
type fakeLink struct {
	mu        sync.Mutex
	writes    [][]byte
	reconfigs []LinkConfig
	script    [][]byte
	tick      time.Duration // имитация таймаута чтения
	writeErr  error
	closed    int
}

func newFakeLink() *fakeLink {
	return &fakeLink{tick: time.Millisecond}
}

func (f *fakeLink) Reconfigure(cfg LinkConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconfigs = append(f.reconfigs, cfg)
	return nil
}

func (f *fakeLink) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	f.writes = append(f.writes, cp)
	return nil
}

func (f *fakeLink) Read(p []byte) (int, error) {
	f.mu.Lock()
	var chunk []byte
	if len(f.script) > 0 {
		chunk = f.script[0]
		f.script = f.script[1:]
	}
	tick := f.tick
	f.mu.Unlock()

	if len(chunk) == 0 {
		time.Sleep(tick)
		return 0, nil
	}
	return copy(p, chunk), nil
}

func (f *fakeLink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// allBytes возвращает все записанные байты одним срезом.
func (f *fakeLink) allBytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []byte
	for _, w := range f.writes {
		out = append(out, w...)
	}
	return out
}

func (f *fakeLink) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}
