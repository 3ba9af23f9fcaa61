package slavelink

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// cr — завершитель строки, который машина ожидает после каждой набранной строки.
const cr = 0x0D

// encodeTypable переводит строку в байты, пригодные для ведомого режима:
// однобайтовая кодировка, всё вне печатаемого ASCII заменяется на '?'.
func encodeTypable(s string) ([]byte, error) {
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	raw, _, err := transform.Bytes(enc, []byte(s))
	if err != nil {
		return nil, fmt.Errorf("slavelink: ошибка кодирования строки: %w", err)
	}
	for i, b := range raw {
		if b < 0x20 || b > 0x7E {
			raw[i] = '?'
		}
	}
	return raw, nil
}

// typeLine набирает одну строку текста на машине: каждый символ пишется
// отдельным байтом с паузой charDelay, затем CR с паузой lineDelay.
// Сигнал отмены проверяется перед каждым символом; при отмене уже
// набранные байты остаются на стороне машины — отката нет.
func typeLine(ctx context.Context, link Link, text string, charDelay, lineDelay time.Duration) error {
	raw, err := encodeTypable(text)
	if err != nil {
		return err
	}
	for _, b := range raw {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		if err := link.Write([]byte{b}); err != nil {
			return err
		}
		if err := pause(ctx, charDelay); err != nil {
			return err
		}
	}
	if err := checkCancel(ctx); err != nil {
		return err
	}
	if err := link.Write([]byte{cr}); err != nil {
		return err
	}
	return pause(ctx, lineDelay)
}

// typeLines набирает последовательность строк, проверяя отмену перед каждой.
func typeLines(ctx context.Context, link Link, lines []string, charDelay, lineDelay time.Duration, progress func(done, total int)) error {
	for i, line := range lines {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		if err := typeLine(ctx, link, line, charDelay, lineDelay); err != nil {
			return err
		}
		if progress != nil {
			progress(i+1, len(lines))
		}
	}
	return nil
}

// pause спит d, прерываясь по сигналу отмены.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ErrCancelled
	case <-time.After(d):
		return nil
	}
}
