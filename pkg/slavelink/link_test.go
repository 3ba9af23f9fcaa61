package slavelink

import (
	"testing"

	"go.bug.st/serial"
)

// TestNamedConfigs фиксирует два кадрирования канала: клавиатурное 8N2 и
// передаточное 7E1. Другие варианты протоколом не предусмотрены.
func TestNamedConfigs(t *testing.T) {
	typing := TypingConfig(1200)
	if typing.BaudRate != 1200 || typing.DataBits != 8 ||
		typing.Parity != serial.NoParity || typing.StopBits != serial.TwoStopBits {
		t.Errorf("клавиатурная конфигурация %+v, ожидалось 8N2", typing)
	}

	transfer := TransferConfig(8000)
	if transfer.BaudRate != 8000 || transfer.DataBits != 7 ||
		transfer.Parity != serial.EvenParity || transfer.StopBits != serial.OneStopBit {
		t.Errorf("передаточная конфигурация %+v, ожидалось 7E1", transfer)
	}
}

// TestOpenLinkNoPort: пустое имя порта — ErrPortUnavailable без обращения
// к системе.
func TestOpenLinkNoPort(t *testing.T) {
	if _, err := OpenLink("", TypingConfig(1200)); err == nil {
		t.Fatal("ожидалась ошибка")
	}
}
