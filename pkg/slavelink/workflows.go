package slavelink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Engine — фасад транспортного движка: владеет настройками обмена,
// координатором работ и сессией клавиатуры. Слой представления запускает
// рабочие процессы, получает события прогресса/журнала и может запросить
// отмену; всё остальное движок делает сам.
type Engine struct {
	events   Events
	coord    *Coordinator
	keyboard *KeyboardSession

	// open подменяется в тестах фиктивным каналом.
	open func(portName string, cfg LinkConfig) (Link, error)

	mu       sync.Mutex
	settings Settings
	listEnc  string // метка кодировки листингов, "" — UTF-8
}

// NewEngine создаёт движок с заданными настройками и колбэками событий.
func NewEngine(settings Settings, events Events) *Engine {
	return &Engine{
		events:   events,
		coord:    NewCoordinator(events),
		keyboard: NewKeyboardSession(events.OnLog),
		open:     OpenLink,
		settings: settings,
	}
}

// UpdateSettings заменяет настройки обмена. Идущую работу не затрагивает:
// она выполняется со снимком настроек, взятым на старте.
func (e *Engine) UpdateSettings(s Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
}

// SetListingEncoding задаёт метку кодировки листингов ("cp866", "windows-1252"...).
func (e *Engine) SetListingEncoding(label string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listEnc = label
}

// Settings возвращает снимок текущих настроек.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Busy сообщает, выполняется ли сейчас работа.
func (e *Engine) Busy() bool { return e.coord.Busy() }

// Cancel запрашивает кооперативную отмену текущей работы.
func (e *Engine) Cancel() { e.coord.Cancel() }

// StartKeyboard открывает сессию клавиатуры. Во время передачи запрещено:
// канал принадлежит работе.
func (e *Engine) StartKeyboard() error {
	if e.coord.Busy() {
		return ErrAlreadyRunning
	}
	s := e.Settings()
	return e.keyboard.Start(s.PortName, s.TypingBaud)
}

// StopKeyboard закрывает сессию клавиатуры.
func (e *Engine) StopKeyboard() { e.keyboard.Stop() }

// Keyboard возвращает сессию клавиатуры для ретрансляции нажатий.
func (e *Engine) Keyboard() *KeyboardSession { return e.keyboard }

// start запускает работу через координатор, предварительно принудительно
// завершив сессию клавиатуры: передачи имеют приоритет над ретрансляцией,
// и канал переходит к работе строго последовательно (закрыть, затем открыть).
func (e *Engine) start(kind JobKind, fn func(ctx context.Context) error) error {
	if e.keyboard.Active() {
		e.events.log("Сессия клавиатуры принудительно завершена: стартует передача")
		e.keyboard.Stop()
	}
	return e.coord.Start(kind, fn)
}

// TypeListing набирает текстовый листинг построчно в ведомом режиме и
// завершает передачу командой выхода из ведомого режима.
func (e *Engine) TypeListing(path string) error {
	s := e.Settings()
	e.mu.Lock()
	enc := e.listEnc
	e.mu.Unlock()

	lines, err := ReadListing(path, enc)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return ErrEmptyInput
	}

	return e.start(JobTypeListing, func(ctx context.Context) error {
		link, err := e.open(s.PortName, TypingConfig(s.TypingBaud))
		if err != nil {
			return err
		}
		defer link.Close()

		err = typeLines(ctx, link, lines, s.CharDelay, s.LineDelay, func(done, total int) {
			e.events.progress("набор листинга", float64(done)/float64(total))
		})
		if err != nil {
			return err
		}
		return typeLine(ctx, link, slaveOffStatement, s.CharDelay, s.LineDelay)
	})
}

// SendLoader набирает BASIC-загрузчик без последующей двоичной передачи.
func (e *Engine) SendLoader() error {
	s := e.Settings()
	return e.start(JobSendLoader, func(ctx context.Context) error {
		link, err := e.open(s.PortName, TypingConfig(s.TypingBaud))
		if err != nil {
			return err
		}
		defer link.Close()
		return e.typeLoader(ctx, link, s)
	})
}

// SendBinary передаёт двоичный файл подпротоколом загрузчика. Загрузчик
// должен уже выполняться на машине (набран отдельно либо запущен вручную).
func (e *Engine) SendBinary(path string) error {
	s := e.Settings()
	data, err := readBinary(path)
	if err != nil {
		return err
	}
	return e.start(JobSendBinary, func(ctx context.Context) error {
		link, err := e.open(s.PortName, TransferConfig(s.TransferBaud))
		if err != nil {
			return err
		}
		defer link.Close()
		return sendBinary(ctx, link, data, s, e.events)
	})
}

// SendLoaderAndBinary — полный цикл: набор загрузчика, затем двоичная
// передача по перенастроенному каналу. Сбой передачи не возобновляется:
// повторный запуск начинается заново со стадии загрузчика.
func (e *Engine) SendLoaderAndBinary(path string) error {
	s := e.Settings()
	data, err := readBinary(path)
	if err != nil {
		return err
	}
	return e.start(JobSendLoaderAndBinary, func(ctx context.Context) error {
		link, err := e.open(s.PortName, TypingConfig(s.TypingBaud))
		if err != nil {
			return err
		}
		defer link.Close()

		if err := e.typeLoader(ctx, link, s); err != nil {
			return err
		}
		if !s.AutoRun {
			e.events.log("Автозапуск выключен: запустите загрузчик командой RUN на машине")
		}
		return sendBinary(ctx, link, data, s, e.events)
	})
}

// typeLoader набирает строки загрузчика с отчётом прогресса.
func (e *Engine) typeLoader(ctx context.Context, link Link, s Settings) error {
	lines := BuildLoaderProgram(s.LoadAddress, s.TransferBaud, s.AutoRun)
	e.events.log(fmt.Sprintf("Загрузчик: адрес %d, скорость %d бод", s.LoadAddress, s.TransferBaud))
	return typeLines(ctx, link, lines, s.CharDelay, s.LineDelay, func(done, total int) {
		e.events.progress("набор загрузчика", float64(done)/float64(total))
	})
}

// SendCassette отправляет кассетный образ сырым потоком со смещения 0x0010.
func (e *Engine) SendCassette(path string) error {
	s := e.Settings()
	data, err := readBinary(path)
	if err != nil {
		return err
	}
	if len(data) < sendOffset {
		return fmt.Errorf("%w: файл короче %d байт", ErrEmptyPayload, sendOffset)
	}
	return e.start(JobSendCassette, func(ctx context.Context) error {
		// Кассетный поток — 8-битные данные, поэтому клавиатурный кадр 8N2
		// на скорости передачи.
		link, err := e.open(s.PortName, TypingConfig(s.TransferBaud))
		if err != nil {
			return err
		}
		defer link.Close()
		return sendCassette(ctx, link, data, e.events)
	})
}

// ReceiveCassette захватывает входящий кассетный поток и сохраняет его в
// outPath с синтезированным заголовком K7. При отмене уже принятые байты
// сохраняются по возможности — это единственная работа с частичной
// сохранностью результата. Если данные не поступали вовсе, файл не пишется.
func (e *Engine) ReceiveCassette(outPath string) error {
	s := e.Settings()
	return e.start(JobReceiveCassette, func(ctx context.Context) error {
		cfg := TypingConfig(s.TransferBaud)
		cfg.ReadTimeout = receivePollTimeout
		link, err := e.open(s.PortName, cfg)
		if err != nil {
			return err
		}
		defer link.Close()

		data, err := receiveCassette(ctx, link, e.events)
		switch {
		case err == nil:
			if werr := saveCassette(outPath, data); werr != nil {
				return werr
			}
			e.events.log(fmt.Sprintf("Принято %d байт, записано в %s", len(data), outPath))
			return nil
		case errors.Is(err, ErrCancelled) && len(data) > 0:
			if werr := saveCassette(outPath, data); werr != nil {
				e.events.log(fmt.Sprintf("Не удалось сохранить частичный приём: %v", werr))
			} else {
				e.events.log(fmt.Sprintf("Приём отменён, частичный результат (%d байт) записан в %s", len(data), outPath))
			}
			return err
		case errors.Is(err, ErrNoData):
			e.events.log("Данные не поступали, файл не записан")
			return nil
		default:
			return err
		}
	})
}

// DisableSlave набирает команду выхода из ведомого режима.
func (e *Engine) DisableSlave() error {
	s := e.Settings()
	return e.start(JobDisableSlave, func(ctx context.Context) error {
		link, err := e.open(s.PortName, TypingConfig(s.TypingBaud))
		if err != nil {
			return err
		}
		defer link.Close()
		return typeLine(ctx, link, slaveOffStatement, s.CharDelay, s.LineDelay)
	})
}

// readBinary читает файл целиком с быстрой проверкой на пустоту.
func readBinary(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("slavelink: ошибка чтения файла: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	return data, nil
}

// saveCassette записывает заголовок K7 и принятые данные в выходной файл.
func saveCassette(path string, data []byte) error {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := append(BuildHeader(stem), data...)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("slavelink: ошибка записи кассеты: %w", err)
	}
	return nil
}
