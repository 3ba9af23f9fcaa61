package slavelink

import (
	"bytes"
	"errors"
	"testing"
)

// newTestKeyboard возвращает сессию с фиктивным каналом.
func newTestKeyboard() (*KeyboardSession, *fakeLink) {
	link := newFakeLink()
	k := NewKeyboardSession(nil)
	k.open = func(portName string, cfg LinkConfig) (Link, error) {
		return link, nil
	}
	return k, link
}

// TestKeyCodes проверяет фиксированную таблицу специальных клавиш.
func TestKeyCodes(t *testing.T) {
	want := map[string]byte{
		"HOME":   0x0B,
		"CLR":    0x0C,
		"INS":    0x12,
		"DEL":    0x16,
		"BREAK":  0x01,
		"RETURN": 0x0D,
		"SPACE":  0x20,
		"LEFT":   0x1C,
		"RIGHT":  0x1D,
		"UP":     0x1E,
		"DOWN":   0x1F,
	}
	for name, code := range want {
		if keyCodes[name] != code {
			t.Errorf("клавиша %s: код %02X, ожидался %02X", name, keyCodes[name], code)
		}
	}
}

// TestKeyboardSendKey: код клавиши уходит одной записью.
func TestKeyboardSendKey(t *testing.T) {
	k, link := newTestKeyboard()
	if err := k.Start("COM1", 1200); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := k.SendKey("HOME"); err != nil {
		t.Fatalf("SendKey: %v", err)
	}
	if got := link.allBytes(); !bytes.Equal(got, []byte{0x0B}) {
		t.Errorf("отправлено % X, ожидалось 0B", got)
	}

	if err := k.SendKey("NOSUCH"); err == nil {
		t.Error("неизвестная клавиша должна давать ошибку")
	}
}

// TestKeyboardMacro: первый макрослот отправляет ?TIME$ с RETURN.
func TestKeyboardMacro(t *testing.T) {
	k, link := newTestKeyboard()
	if err := k.Start("COM1", 1200); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := k.SendMacro(0); err != nil {
		t.Fatalf("SendMacro: %v", err)
	}
	if got := link.allBytes(); !bytes.Equal(got, []byte("?TIME$\r")) {
		t.Errorf("макрос 0 отправил %q", got)
	}

	if err := k.SendMacro(10); err == nil {
		t.Error("слот вне диапазона должен давать ошибку")
	}
}

// TestKeyboardLinkErrorTerminatesSession: ошибка канала закрывает сессию
// и отдаётся вызывающему; повторных попыток нет.
func TestKeyboardLinkErrorTerminatesSession(t *testing.T) {
	k, link := newTestKeyboard()
	if err := k.Start("COM1", 1200); err != nil {
		t.Fatalf("Start: %v", err)
	}

	link.writeErr = ErrLinkIO
	if err := k.SendText("LIST"); !errors.Is(err, ErrLinkIO) {
		t.Fatalf("ожидалась ErrLinkIO, получено %v", err)
	}
	if k.Active() {
		t.Error("сессия должна была завершиться после ошибки канала")
	}
	if link.closed != 1 {
		t.Errorf("канал закрыт %d раз, ожидался 1", link.closed)
	}

	if err := k.SendByte('A'); !errors.Is(err, ErrSessionInactive) {
		t.Errorf("после завершения ожидалась ErrSessionInactive, получено %v", err)
	}
}

// TestKeyboardDoubleStart: повторный Start при активной сессии — ошибка.
func TestKeyboardDoubleStart(t *testing.T) {
	k, _ := newTestKeyboard()
	if err := k.Start("COM1", 1200); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := k.Start("COM1", 1200); err == nil {
		t.Error("повторный Start должен давать ошибку")
	}
	k.Stop()
	k.Stop() // идемпотентно
}
