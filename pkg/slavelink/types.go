package slavelink

import "time"

// JobKind определяет вид рабочего процесса.
type JobKind int

const (
	JobNone JobKind = iota
	JobTypeListing
	JobSendLoader
	JobSendBinary
	JobSendLoaderAndBinary
	JobSendCassette
	JobReceiveCassette
	JobDisableSlave
)

// String возвращает человекочитаемое имя вида работы (для журнала и UI).
func (k JobKind) String() string {
	switch k {
	case JobTypeListing:
		return "набор листинга"
	case JobSendLoader:
		return "отправка загрузчика"
	case JobSendBinary:
		return "передача двоичного файла"
	case JobSendLoaderAndBinary:
		return "загрузчик + двоичный файл"
	case JobSendCassette:
		return "отправка кассеты"
	case JobReceiveCassette:
		return "приём кассеты"
	case JobDisableSlave:
		return "выход из ведомого режима"
	default:
		return "простой"
	}
}

// JobState описывает состояние текущей работы координатора.
type JobState int

const (
	StateIdle JobState = iota
	StateRunning
	StateCancelRequested
)

// Settings содержит параметры обмена, задаваемые оператором.
// Значения времени — реальные задержки, требуемые программным UART машины.
type Settings struct {
	PortName     string
	TypingBaud   int           // скорость клавиатурного канала (8N2)
	TransferBaud int           // скорость передаточного канала (7E1)
	CharDelay    time.Duration // пауза после каждого набранного символа
	LineDelay    time.Duration // пауза после завершающего CR строки
	SettleDelay  time.Duration // пауза после смены кадрирования
	ByteDelay    time.Duration // пауза после каждого байта двоичной передачи
	LoadAddress  uint16        // адрес загрузки двоичной программы
	AutoRun      bool          // добавлять RUN после загрузчика
}

// Events — колбэки движка для слоя представления. Любое поле может быть nil.
type Events struct {
	// OnProgress сообщает метку фазы и долю выполнения в диапазоне [0,1].
	OnProgress func(phase string, fraction float64)

	// OnLog передаёт строку журнала.
	OnLog func(msg string)

	// OnDone вызывается ровно один раз по завершении работы: err==nil при
	// успехе, ErrCancelled при отмене, иначе причина сбоя.
	OnDone func(kind JobKind, err error)
}

func (e Events) progress(phase string, fraction float64) {
	if e.OnProgress != nil {
		e.OnProgress(phase, fraction)
	}
}

func (e Events) log(msg string) {
	if e.OnLog != nil {
		e.OnLog(msg)
	}
}
