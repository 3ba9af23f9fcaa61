package slavelink

import (
	"fmt"
	"sync"
)

// Коды специальных клавиш машины в ведомом режиме. Таблица фиксирована
// прошивкой; печатаемый ASCII 0x20–0x7E проходит без преобразования.
var keyCodes = map[string]byte{
	"BREAK":  0x01,
	"HOME":   0x0B,
	"CLR":    0x0C,
	"RETURN": 0x0D,
	"INS":    0x12,
	"DEL":    0x16,
	"LEFT":   0x1C,
	"RIGHT":  0x1D,
	"UP":     0x1E,
	"DOWN":   0x1F,
	"SPACE":  0x20,
}

// KeyNames возвращает имена специальных клавиш, известных сессии.
func KeyNames() []string {
	return []string{"BREAK", "HOME", "CLR", "RETURN", "INS", "DEL", "LEFT", "RIGHT", "UP", "DOWN", "SPACE"}
}

// macros — десять макрослотов: литеральные байтовые строки, отправляемые
// одной командой. Состав исторический, воспроизводится как есть.
var macros = [10][]byte{
	[]byte("?TIME$\r"),
	[]byte("LIST\r"),
	[]byte("RUN\r"),
	[]byte("CONT\r"),
	[]byte("NEW\r"),
	[]byte("CLOAD\r"),
	[]byte("CSAVE\""),
	[]byte("?MEM\r"),
	[]byte("POKE "),
	[]byte("EXEC "),
}

// MacroLabel возвращает читаемое представление макрослота для UI.
func MacroLabel(slot int) string {
	if slot < 0 || slot >= len(macros) {
		return ""
	}
	label := make([]byte, 0, len(macros[slot]))
	for _, b := range macros[slot] {
		if b == cr {
			continue
		}
		label = append(label, b)
	}
	return string(label)
}

// KeyboardSession — долгоживущая сессия ретрансляции клавиатуры: канал
// открыт в клавиатурной конфигурации и держится до Stop либо до
// принудительного завершения координатором перед запуском передачи.
// Записи выполняются синхронно на вызывающем контексте: каждое нажатие —
// короткая неблокирующая запись, собственного фонового цикла у сессии нет.
type KeyboardSession struct {
	log func(string)

	// open подменяется в тестах фиктивным каналом.
	open func(portName string, cfg LinkConfig) (Link, error)

	mu   sync.Mutex
	link Link
}

// NewKeyboardSession создаёт сессию. log может быть nil.
func NewKeyboardSession(log func(string)) *KeyboardSession {
	return &KeyboardSession{log: log, open: OpenLink}
}

// Start открывает канал в клавиатурной конфигурации. Повторный Start при
// активной сессии — ошибка.
func (k *KeyboardSession) Start(portName string, typingBaud int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.link != nil {
		return fmt.Errorf("slavelink: сессия клавиатуры уже активна")
	}
	link, err := k.open(portName, TypingConfig(typingBaud))
	if err != nil {
		return err
	}
	k.link = link
	k.logf("Сессия клавиатуры открыта (%s)", portName)
	return nil
}

// Stop завершает сессию и закрывает канал. Безопасен при неактивной сессии.
func (k *KeyboardSession) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stopLocked()
}

// Active сообщает, открыта ли сессия.
func (k *KeyboardSession) Active() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.link != nil
}

// SendByte отправляет один код клавиши. Любая ошибка канала завершает
// сессию: канал закрывается, состояние сбрасывается, ошибка отдаётся
// вызывающему. Повторных попыток нет.
func (k *KeyboardSession) SendByte(code byte) error {
	return k.send([]byte{code})
}

// SendKey отправляет специальную клавишу по имени из таблицы кодов.
func (k *KeyboardSession) SendKey(name string) error {
	code, ok := keyCodes[name]
	if !ok {
		return fmt.Errorf("slavelink: неизвестная клавиша %q", name)
	}
	return k.send([]byte{code})
}

// SendText отправляет строку как последовательность печатаемых байтов.
func (k *KeyboardSession) SendText(text string) error {
	raw, err := encodeTypable(text)
	if err != nil {
		return err
	}
	return k.send(raw)
}

// SendMacro отправляет содержимое макрослота 0–9.
func (k *KeyboardSession) SendMacro(slot int) error {
	if slot < 0 || slot >= len(macros) {
		return fmt.Errorf("slavelink: нет макрослота %d", slot)
	}
	return k.send(macros[slot])
}

func (k *KeyboardSession) send(p []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.link == nil {
		return ErrSessionInactive
	}
	if err := k.link.Write(p); err != nil {
		k.stopLocked()
		k.logf("Сессия клавиатуры завершена из-за ошибки канала: %v", err)
		return err
	}
	return nil
}

func (k *KeyboardSession) stopLocked() {
	if k.link == nil {
		return
	}
	k.link.Close()
	k.link = nil
	k.logf("Сессия клавиатуры закрыта")
}

func (k *KeyboardSession) logf(format string, args ...interface{}) {
	if k.log != nil {
		k.log(fmt.Sprintf(format, args...))
	}
}
