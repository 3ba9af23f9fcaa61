package slavelink

import (
	"context"
	"fmt"
	"strconv"
)

// Команда выхода из ведомого режима: вызов системной подпрограммы ПЗУ.
// Это контракт с машиной, значение менять нельзя.
const slaveOffStatement = "EXEC 23444"

// Регистры программного UART машины и опорная частота его делителя.
// Значения зафиксированы прошивкой, поверять их не по чему — только соблюдать.
const (
	uartModeAddr   = 16940
	uartRateAddr   = 16941
	uartEvenParity = 2
	uartClock      = 921600
)

// baudDivisor возвращает делитель программного UART для заданной скорости.
func baudDivisor(baud int) int {
	if baud <= 0 {
		return 0
	}
	return uartClock / baud
}

// BuildLoaderProgram порождает текст BASIC-загрузчика: 10 нумерованных строк
// и, при autoRun, завершающую немедленную команду RUN. Программа при запуске
// выходит из ведомого режима (освобождая канал для INPUT), перенастраивает
// UART машины на скорость передачи с чётностью even, читает количество байт,
// затем по одному десятичному значению на строку, и передаёт управление на
// адрес загрузки. Чистая функция своих аргументов.
//
// Нумерация и синтаксис строк — протокольный контракт с интерпретатором
// машины, воспроизводится дословно.
func BuildLoaderProgram(addr uint16, transferBaud int, autoRun bool) []string {
	lines := []string{
		"10 " + slaveOffStatement,
		fmt.Sprintf("20 AD=%d", addr),
		fmt.Sprintf("30 BD=%d", baudDivisor(transferBaud)),
		fmt.Sprintf("40 POKE %d,%d", uartModeAddr, uartEvenParity),
		fmt.Sprintf("50 POKE %d,BD", uartRateAddr),
		"60 INPUT N",
		"70 FOR I=0 TO N-1",
		"80 INPUT V:POKE AD+I,V",
		"90 NEXT I",
		"100 EXEC AD",
	}
	if autoRun {
		lines = append(lines, "RUN")
	}
	return lines
}

// sendBinary выполняет подпротокол двоичной передачи: после того как
// загрузчик набран и (при autoRun) запущен, канал переводится в кадрирование
// 7E1 на скорости передачи, выдерживается пауза стабилизации, затем пишется
// десятичное количество байт и по одному десятичному значению на строку.
// Прогресс отдаётся на первом байте, последнем и каждом 32-м — чаще незачем,
// чтобы не захлёбывался слой представления.
func sendBinary(ctx context.Context, link Link, data []byte, s Settings, ev Events) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}

	if err := link.Reconfigure(TransferConfig(s.TransferBaud)); err != nil {
		return err
	}
	// Машина перенастраивает свой UART не мгновенно.
	if err := pause(ctx, s.SettleDelay); err != nil {
		return err
	}

	if err := writeDecimalLine(link, len(data)); err != nil {
		return err
	}
	if err := pause(ctx, s.ByteDelay); err != nil {
		return err
	}

	total := len(data)
	for i, b := range data {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		if err := writeDecimalLine(link, int(b)); err != nil {
			return err
		}
		if err := pause(ctx, s.ByteDelay); err != nil {
			return err
		}
		if i == 0 || i == total-1 || i%32 == 0 {
			ev.progress("передача двоичного файла", float64(i+1)/float64(total))
		}
	}
	return nil
}

// writeDecimalLine пишет десятичное ASCII-представление значения и CR.
func writeDecimalLine(link Link, v int) error {
	return link.Write(append([]byte(strconv.Itoa(v)), cr))
}
