// Package slavelink реализует обмен с ретро-ЭВМ по последовательному каналу:
// эмуляцию клавиатурного ввода в "ведомом" режиме (входящие байты
// интерпретируются машиной как нажатия клавиш), передачу двоичных программ
// через BASIC-загрузчик и обмен кассетными образами (K7) сырым потоком байтов.
//
// Пакет не зависит от слоя представления: прогресс и журнал отдаются через
// колбэки, рабочие процессы запускаются координатором в отдельной горутине
// и отменяются кооперативно через context.
package slavelink
