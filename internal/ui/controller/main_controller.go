package controller

import (
	"errors"
	"fmt"

	"retrolink/internal/domain/ports"
	"retrolink/internal/service/transfer"
	"retrolink/internal/ui/viewmodel"
	"retrolink/pkg/slavelink"
)

// MainController связывает представление с прикладным сервисом: принимает
// действия пользователя, события движка и обновляет ViewModel.
type MainController struct {
	vm  *viewmodel.MainViewModel
	svc *transfer.Service
	log ports.Logger

	onUpdate func()       // перерисовка окна
	onLog    func(string) // добавление строки в журнал окна
}

// NewMainController создаёт контроллер главного окна.
func NewMainController(vm *viewmodel.MainViewModel, svc *transfer.Service, log ports.Logger) *MainController {
	return &MainController{vm: vm, svc: svc, log: log}
}

// ViewModel возвращает модель представления.
func (c *MainController) ViewModel() *viewmodel.MainViewModel { return c.vm }

// SetOnUpdate задаёт callback перерисовки окна.
func (c *MainController) SetOnUpdate(fn func()) { c.onUpdate = fn }

// SetOnLog задаёт callback вывода строки журнала.
func (c *MainController) SetOnLog(fn func(string)) { c.onLog = fn }

// Initialize наполняет модель стартовыми данными.
func (c *MainController) Initialize() {
	c.vm.Port = c.svc.Config().Port
	c.RefreshPorts()
}

// RefreshPorts перечитывает список последовательных портов.
func (c *MainController) RefreshPorts() {
	list, err := c.svc.Ports()
	if err != nil {
		c.log.Warn("Не удалось получить список портов: %v", err)
		c.appendLog(fmt.Sprintf("Ошибка перечисления портов: %v", err))
		return
	}
	c.vm.PortList = list
	c.update()
}

// SelectPort применяет выбор порта оператором.
func (c *MainController) SelectPort(port string) {
	c.vm.Port = port
	if err := c.svc.SelectPort(port); err != nil {
		c.appendLog(fmt.Sprintf("Ошибка применения порта: %v", err))
	}
}

// --- запуск рабочих процессов ---

func (c *MainController) TypeListing(path string) { c.startJob(c.svc.TypeListing, path) }
func (c *MainController) SendBinary(path string)  { c.startJob(c.svc.SendBinary, path) }
func (c *MainController) SendLoaderAndBinary(path string) {
	c.startJob(c.svc.SendLoaderAndBinary, path)
}
func (c *MainController) SendCassette(path string) { c.startJob(c.svc.SendCassette, path) }

// SendLoader набирает только загрузчик.
func (c *MainController) SendLoader() {
	c.startJob(func(string) error { return c.svc.SendLoader() }, "")
}

// ReceiveCassette начинает приём кассеты с автоматическим именем файла.
func (c *MainController) ReceiveCassette() {
	c.startJob(c.svc.ReceiveCassette, "")
}

// DisableSlave выводит машину из ведомого режима.
func (c *MainController) DisableSlave() {
	c.startJob(func(string) error { return c.svc.DisableSlave() }, "")
}

// Cancel запрашивает отмену текущей работы.
func (c *MainController) Cancel() {
	c.svc.Cancel()
	c.appendLog("Запрошена отмена...")
}

func (c *MainController) startJob(start func(string) error, arg string) {
	if err := start(arg); err != nil {
		if errors.Is(err, slavelink.ErrAlreadyRunning) {
			c.appendLog("Дождитесь завершения текущей операции")
		} else {
			c.appendLog(fmt.Sprintf("Ошибка запуска: %v", err))
		}
		return
	}
	c.vm.Busy = true
	c.vm.KeyboardActive = c.svc.Keyboard().Active()
	c.vm.UpdateUIState()
	c.update()
}

// --- клавиатура ---

// ToggleKeyboard открывает либо закрывает сессию клавиатуры.
func (c *MainController) ToggleKeyboard() {
	if c.svc.Keyboard().Active() {
		c.svc.StopKeyboard()
	} else if err := c.svc.StartKeyboard(); err != nil {
		c.appendLog(fmt.Sprintf("Сессия клавиатуры: %v", err))
	}
	c.vm.KeyboardActive = c.svc.Keyboard().Active()
	c.update()
}

// SendLine отправляет строку и RETURN через сессию клавиатуры.
func (c *MainController) SendLine(text string) {
	kb := c.svc.Keyboard()
	if err := kb.SendText(text); err != nil {
		c.keyboardError(err)
		return
	}
	if err := kb.SendKey("RETURN"); err != nil {
		c.keyboardError(err)
	}
}

// SendKey отправляет специальную клавишу.
func (c *MainController) SendKey(name string) {
	if err := c.svc.Keyboard().SendKey(name); err != nil {
		c.keyboardError(err)
	}
}

// SendMacro отправляет макрослот.
func (c *MainController) SendMacro(slot int) {
	if err := c.svc.Keyboard().SendMacro(slot); err != nil {
		c.keyboardError(err)
	}
}

func (c *MainController) keyboardError(err error) {
	c.appendLog(fmt.Sprintf("Ошибка сессии клавиатуры: %v", err))
	c.vm.KeyboardActive = c.svc.Keyboard().Active()
	c.update()
}

// --- события движка (приходят из фоновой горутины работы) ---

// HandleProgress принимает событие прогресса движка.
func (c *MainController) HandleProgress(phase string, fraction float64) {
	c.vm.Phase = phase
	c.vm.Progress = fraction
	c.update()
}

// HandleLog принимает строку журнала движка.
func (c *MainController) HandleLog(msg string) {
	c.log.Info("%s", msg)
	c.appendLog(msg)
}

// HandleDone принимает завершение работы и снимает блокировку управления.
func (c *MainController) HandleDone(kind slavelink.JobKind, err error) {
	switch {
	case err == nil:
		c.vm.Status = fmt.Sprintf("Готово: %s", kind)
	case errors.Is(err, slavelink.ErrCancelled):
		c.vm.Status = fmt.Sprintf("Отменено: %s", kind)
	default:
		c.vm.Status = fmt.Sprintf("Ошибка: %v", err)
	}
	c.appendLog(c.vm.Status)

	c.vm.Busy = false
	c.vm.Phase = ""
	c.vm.Progress = 0
	c.vm.UpdateUIState()
	c.update()
}

func (c *MainController) update() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

func (c *MainController) appendLog(msg string) {
	if c.onLog != nil {
		c.onLog(msg)
	}
}
