package slavelink

import (
	"fmt"
	"sort"
	"time"

	"go.bug.st/serial"
)

// LinkConfig описывает кадрирование и скорость последовательного канала.
// Канал всегда находится ровно в одной из двух именованных конфигураций:
// "клавиатурной" (8N2) или "передаточной" (7E1), либо закрыт.
type LinkConfig struct {
	BaudRate    int
	DataBits    int
	Parity      serial.Parity
	StopBits    serial.StopBits
	ReadTimeout time.Duration
}

// TypingConfig возвращает клавиатурную конфигурацию канала: 8 бит данных,
// без контроля чётности, 2 стоп-бита. Программный UART машины в ведомом
// режиме принимает байты именно в таком кадре.
func TypingConfig(baud int) LinkConfig {
	return LinkConfig{
		BaudRate:    baud,
		DataBits:    8,
		Parity:      serial.NoParity,
		StopBits:    serial.TwoStopBits,
		ReadTimeout: time.Second,
	}
}

// TransferConfig возвращает передаточную конфигурацию канала: 7 бит данных,
// чётность even, 1 стоп-бит. Используется подпротоколом двоичной передачи
// и кассетным обменом.
func TransferConfig(baud int) LinkConfig {
	return LinkConfig{
		BaudRate:    baud,
		DataBits:    7,
		Parity:      serial.EvenParity,
		StopBits:    serial.OneStopBit,
		ReadTimeout: 200 * time.Millisecond,
	}
}

// Link определяет интерфейс последовательного канала для рабочих процессов.
// Реализация для тестов подменяется фиктивным каналом (см. fake_link_test.go).
type Link interface {
	// Reconfigure меняет кадрирование и скорость на уже открытом канале,
	// без закрытия и повторного открытия порта.
	Reconfigure(cfg LinkConfig) error

	// Write записывает байты и дожидается их физической передачи (drain),
	// чтобы последующие временные задержки отсчитывались от реального
	// момента отправки.
	Write(p []byte) error

	// Read читает не более len(p) байт, блокируясь не дольше таймаута
	// чтения из текущей конфигурации. По таймауту возвращает n==0 без ошибки.
	Read(p []byte) (int, error)

	// Close закрывает канал. Повторный вызов безопасен.
	Close() error
}

// serialLink реализует Link поверх go.bug.st/serial.
type serialLink struct {
	port serial.Port
}

// OpenLink открывает последовательный порт в заданной конфигурации.
func OpenLink(portName string, cfg LinkConfig) (Link, error) {
	if portName == "" {
		return nil, fmt.Errorf("%w: порт не выбран", ErrPortUnavailable)
	}
	port, err := serial.Open(portName, modeOf(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPortUnavailable, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("%w: %v", ErrPortUnavailable, err)
	}
	return &serialLink{port: port}, nil
}

// ListPorts возвращает отсортированный список последовательных портов системы.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}

func modeOf(cfg LinkConfig) *serial.Mode {
	return &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   cfg.Parity,
		StopBits: cfg.StopBits,
	}
}

func (l *serialLink) Reconfigure(cfg LinkConfig) error {
	// Вызывающий обязан дождаться отправки буфера (Write уже делает drain),
	// иначе смена кадрирования исказит хвост передачи.
	if err := l.port.SetMode(modeOf(cfg)); err != nil {
		return fmt.Errorf("%w: %v", ErrPortUnavailable, err)
	}
	if err := l.port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		return fmt.Errorf("%w: %v", ErrPortUnavailable, err)
	}
	return nil
}

func (l *serialLink) Write(p []byte) error {
	if _, err := l.port.Write(p); err != nil {
		return fmt.Errorf("%w: %v", ErrLinkIO, err)
	}
	if err := l.port.Drain(); err != nil {
		return fmt.Errorf("%w: %v", ErrLinkIO, err)
	}
	return nil
}

func (l *serialLink) Read(p []byte) (int, error) {
	n, err := l.port.Read(p)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrLinkIO, err)
	}
	return n, nil
}

func (l *serialLink) Close() error {
	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	return err
}
