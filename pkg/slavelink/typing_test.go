package slavelink

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestTypeLineByteCount проверяет, что для строки длиной N на канал уходит
// ровно N+1 байт: по байту на символ и завершающий CR.
func TestTypeLineByteCount(t *testing.T) {
	link := newFakeLink()
	if err := typeLine(context.Background(), link, "PRINT 1", 0, 0); err != nil {
		t.Fatalf("typeLine: %v", err)
	}
	got := link.allBytes()
	if len(got) != len("PRINT 1")+1 {
		t.Fatalf("записано %d байт, ожидалось %d", len(got), len("PRINT 1")+1)
	}
	if got[len(got)-1] != cr {
		t.Errorf("последний байт %02X, ожидался CR", got[len(got)-1])
	}
	// Каждый символ должен уйти отдельной записью (отдельный drain).
	if link.writeCount() != len("PRINT 1")+1 {
		t.Errorf("записей %d, ожидалось %d", link.writeCount(), len("PRINT 1")+1)
	}
}

// TestTypeLineTiming проверяет нижнюю границу времени набора:
// не меньше len(L)*charDelay + lineDelay.
func TestTypeLineTiming(t *testing.T) {
	const (
		charDelay = 3 * time.Millisecond
		lineDelay = 10 * time.Millisecond
	)
	link := newFakeLink()
	text := "RUN"

	start := time.Now()
	if err := typeLine(context.Background(), link, text, charDelay, lineDelay); err != nil {
		t.Fatalf("typeLine: %v", err)
	}
	elapsed := time.Since(start)

	min := time.Duration(len(text))*charDelay + lineDelay
	if elapsed < min {
		t.Errorf("набор занял %v, ожидалось не меньше %v", elapsed, min)
	}
}

// TestTypeLineReplacesUntypable проверяет замену символов вне печатаемого
// ASCII на '?'.
func TestTypeLineReplacesUntypable(t *testing.T) {
	link := newFakeLink()
	if err := typeLine(context.Background(), link, "A\tБ日B", 0, 0); err != nil {
		t.Fatalf("typeLine: %v", err)
	}
	got := link.allBytes()
	want := []byte{'A', '?', '?', '?', 'B', cr}
	if len(got) != len(want) {
		t.Fatalf("записано % X, ожидалось % X", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("байт %d: %02X, ожидался %02X", i, got[i], want[i])
		}
	}
}

// TestTypeLineCancelled проверяет, что отмена наблюдается перед очередным
// символом, без отката уже набранных байтов.
func TestTypeLineCancelled(t *testing.T) {
	link := newFakeLink()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := typeLine(ctx, link, "LIST", 0, 0)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("ожидалась ErrCancelled, получено %v", err)
	}
	if link.writeCount() != 0 {
		t.Errorf("после немедленной отмены записей быть не должно, есть %d", link.writeCount())
	}
}

// TestTypeLinesProgress проверяет построчный отчёт прогресса.
func TestTypeLinesProgress(t *testing.T) {
	link := newFakeLink()
	var calls []int
	err := typeLines(context.Background(), link, []string{"10 A=1", "20 B=2"}, 0, 0, func(done, total int) {
		if total != 2 {
			t.Errorf("total=%d, ожидалось 2", total)
		}
		calls = append(calls, done)
	})
	if err != nil {
		t.Fatalf("typeLines: %v", err)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("прогресс %v, ожидалось [1 2]", calls)
	}
}
