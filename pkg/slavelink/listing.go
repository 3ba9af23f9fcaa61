package slavelink

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// ReadListing читает текстовый листинг и возвращает его строки в UTF-8.
// Листинги ретро-программ часто лежат в однобайтовых кодировках DOS/Windows,
// поэтому файл прогоняется через декодер по метке кодировки; пустая метка
// означает, что файл уже в UTF-8.
func ReadListing(path string, encodingLabel string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("slavelink: ошибка чтения листинга: %w", err)
	}

	if encodingLabel != "" {
		r, err := charset.NewReaderLabel(encodingLabel, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("slavelink: неизвестная кодировка %q: %w", encodingLabel, err)
		}
		if data, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("slavelink: ошибка декодирования листинга: %w", err)
		}
	}

	raw := strings.Split(string(data), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, strings.TrimRight(line, "\r"))
	}
	// Хвостовые пустые строки не набираем: машине они не нужны.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
