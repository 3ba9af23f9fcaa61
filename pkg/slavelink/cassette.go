package slavelink

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Константы контейнера K7 и кассетного обмена. Байтовые значения заголовка и
// смещение 0x0010 — контракт совместимости, установленный эмпирически:
// их надлежит сохранять, а не выводить заново.
const (
	headerMagicByte = 0xD3
	headerMagicLen  = 10
	headerNameLen   = 6

	// HeaderSize — полный размер синтезируемого заголовка K7.
	HeaderSize = headerMagicLen + headerNameLen

	// sendOffset — фиксированное смещение начала передаваемых данных:
	// первые 16 байт файла считаются заголовком, который машина
	// не ожидает получить по каналу.
	sendOffset = 0x0010

	sendChunkSize   = 128
	endMarkerLen    = 13
	sendSettleDelay = 250 * time.Millisecond

	receivePollTimeout = 200 * time.Millisecond
	receiveIdleTimeout = 1250 * time.Millisecond
)

// BuildHeader синтезирует 16-байтовый заголовок K7: 10 повторов байта 0xD3
// и 6-байтовое поле имени, полученное из основы имени выходного файла.
func BuildHeader(stem string) []byte {
	header := make([]byte, 0, HeaderSize)
	for i := 0; i < headerMagicLen; i++ {
		header = append(header, headerMagicByte)
	}
	return append(header, sanitizeCassetteName(stem)...)
}

// sanitizeCassetteName приводит основу имени файла к полю имени кассеты:
// верхний регистр, всё вне [A-Z0-9] заменяется на '_', усечение до 6
// символов, дополнение нулевыми байтами до ровно 6 байт.
func sanitizeCassetteName(stem string) []byte {
	name := make([]byte, 0, headerNameLen)
	for _, r := range strings.ToUpper(stem) {
		if len(name) == headerNameLen {
			break
		}
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			name = append(name, byte(r))
		default:
			name = append(name, '_')
		}
	}
	for len(name) < headerNameLen {
		name = append(name, 0x00)
	}
	return name
}

// sendCassette передаёт содержимое файла сырым потоком начиная со смещения
// 0x0010, блоками по 128 байт без межблочных пауз: этот режим опирается на
// аппаратные характеристики канала, а не на поштучную выдержку. После
// последнего блока выдерживается пауза и передаётся 13-байтовый нулевой
// маркер конца — чтобы детектор конца потока на машине гарантированно
// увидел завершающие байты простоя, даже если ОС склеила последний блок.
func sendCassette(ctx context.Context, link Link, data []byte, ev Events) error {
	if len(data) < sendOffset {
		return fmt.Errorf("%w: файл короче %d байт", ErrEmptyPayload, sendOffset)
	}
	payload := data[sendOffset:]

	total := len(payload)
	for off := 0; off < total; off += sendChunkSize {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		end := off + sendChunkSize
		if end > total {
			end = total
		}
		if err := link.Write(payload[off:end]); err != nil {
			return err
		}
		ev.progress("отправка кассеты", float64(end)/float64(total))
	}

	if err := pause(ctx, sendSettleDelay); err != nil {
		return err
	}
	if err := link.Write(make([]byte, endMarkerLen)); err != nil {
		return err
	}
	return pause(ctx, sendSettleDelay)
}

// receiveCassette захватывает входящий сырой поток. Канал опрашивается с
// коротким таймаутом чтения; приём завершается успешно, когда после хотя бы
// одного принятого байта новых не появляется в течение таймаута простоя.
// При отмене возвращается уже накопленный буфер вместе с ErrCancelled —
// частично принятая программа может пригодиться для диагностики. Если не
// принято ни одного байта, возвращается ErrNoData.
func receiveCassette(ctx context.Context, link Link, ev Events) ([]byte, error) {
	var captured []byte
	lastActivity := time.Now()
	buf := make([]byte, 512)

	for {
		if err := checkCancel(ctx); err != nil {
			if len(captured) == 0 {
				return nil, ErrNoData
			}
			return captured, err
		}

		n, err := link.Read(buf)
		if err != nil {
			if len(captured) > 0 {
				return captured, err
			}
			return nil, err
		}
		if n > 0 {
			captured = append(captured, buf[:n]...)
			lastActivity = time.Now()
			ev.progress(fmt.Sprintf("приём кассеты: %d байт", len(captured)), 0)
			continue
		}
		if len(captured) > 0 && time.Since(lastActivity) >= receiveIdleTimeout {
			return captured, nil
		}
	}
}
