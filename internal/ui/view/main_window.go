package view

import (
	"github.com/lxn/walk"
	d "github.com/lxn/walk/declarative"

	"retrolink/internal/ui/controller"
	"retrolink/pkg/slavelink"
)

// MainWindowView отвечает за отображение главного окна и обработку
// пользовательских событий; вся логика — в контроллере.
type MainWindowView struct {
	mw   *walk.MainWindow
	ctrl *controller.MainController

	portCombo   *walk.ComboBox
	refreshBtn  *walk.PushButton
	listingBtn  *walk.PushButton
	loaderBtn   *walk.PushButton
	loadBinBtn  *walk.PushButton
	binBtn      *walk.PushButton
	casSendBtn  *walk.PushButton
	casRecvBtn  *walk.PushButton
	slaveOffBtn *walk.PushButton
	cancelBtn   *walk.PushButton

	phaseLabel  *walk.Label
	progressBar *walk.ProgressBar
	statusLabel *walk.Label

	kbToggleBtn *walk.PushButton
	kbLineEdit  *walk.LineEdit
	kbGroup     *walk.GroupBox

	logView *walk.TextEdit
}

// NewMainWindowView создаёт представление главного окна.
func NewMainWindowView(ctrl *controller.MainController) *MainWindowView {
	return &MainWindowView{ctrl: ctrl}
}

// Create создаёт и инициализирует главное окно.
func (w *MainWindowView) Create() error {
	w.ctrl.SetOnUpdate(w.updateUI)
	w.ctrl.SetOnLog(w.appendLog)

	macroButtons := make([]d.Widget, 0, 10)
	for slot := 0; slot < 10; slot++ {
		slot := slot
		macroButtons = append(macroButtons, d.PushButton{
			Text:      slavelink.MacroLabel(slot),
			MaxSize:   d.Size{Width: 70},
			OnClicked: func() { w.ctrl.SendMacro(slot) },
		})
	}

	keyButtons := make([]d.Widget, 0, len(slavelink.KeyNames()))
	for _, name := range slavelink.KeyNames() {
		name := name
		keyButtons = append(keyButtons, d.PushButton{
			Text:      name,
			MaxSize:   d.Size{Width: 60},
			OnClicked: func() { w.ctrl.SendKey(name) },
		})
	}

	err := d.MainWindow{
		AssignTo: &w.mw,
		Title:    "RetroLink",
		Size:     d.Size{Width: 560, Height: 640},
		MinSize:  d.Size{Width: 560, Height: 640},
		Layout:   d.VBox{Margins: d.Margins{Left: 6, Top: 6, Right: 6, Bottom: 6}, Spacing: 6},
		Children: []d.Widget{
			// --- Порт ---
			d.GroupBox{
				Title:  "Порт",
				Layout: d.HBox{Spacing: 5},
				Children: []d.Widget{
					d.ComboBox{
						AssignTo:              &w.portCombo,
						Editable:              true,
						MinSize:               d.Size{Width: 220},
						ToolTipText:           "Последовательный порт машины",
						OnCurrentIndexChanged: w.onPortChanged,
						OnTextChanged:         w.onPortChanged,
					},
					d.PushButton{
						AssignTo:  &w.refreshBtn,
						Text:      "Обновить",
						OnClicked: w.ctrl.RefreshPorts,
					},
				},
			},
			// --- Передачи ---
			d.GroupBox{
				Title:  "Передача",
				Layout: d.VBox{Spacing: 5},
				Children: []d.Widget{
					d.Composite{
						Layout: d.HBox{MarginsZero: true, Spacing: 5},
						Children: []d.Widget{
							d.PushButton{AssignTo: &w.listingBtn, Text: "Листинг...", OnClicked: w.onTypeListing},
							d.PushButton{AssignTo: &w.loaderBtn, Text: "Загрузчик", OnClicked: w.ctrl.SendLoader},
							d.PushButton{AssignTo: &w.loadBinBtn, Text: "Загрузчик+BIN...", OnClicked: w.onSendLoaderAndBinary},
							d.PushButton{AssignTo: &w.binBtn, Text: "BIN...", OnClicked: w.onSendBinary},
						},
					},
					d.Composite{
						Layout: d.HBox{MarginsZero: true, Spacing: 5},
						Children: []d.Widget{
							d.PushButton{AssignTo: &w.casSendBtn, Text: "Кассета на машину...", OnClicked: w.onSendCassette},
							d.PushButton{AssignTo: &w.casRecvBtn, Text: "Кассета с машины", OnClicked: w.ctrl.ReceiveCassette},
							d.PushButton{AssignTo: &w.slaveOffBtn, Text: "Выкл. ведомый", OnClicked: w.ctrl.DisableSlave},
							d.PushButton{AssignTo: &w.cancelBtn, Text: "Отмена", Enabled: false, OnClicked: w.ctrl.Cancel},
						},
					},
					d.Label{AssignTo: &w.phaseLabel, Text: ""},
					d.ProgressBar{AssignTo: &w.progressBar, MaxValue: 1000},
					d.Label{AssignTo: &w.statusLabel, Text: "Готов"},
				},
			},
			// --- Клавиатура ---
			d.GroupBox{
				AssignTo: &w.kbGroup,
				Title:    "Удалённая клавиатура (выкл)",
				Layout:   d.VBox{Spacing: 5},
				Children: []d.Widget{
					d.Composite{
						Layout: d.HBox{MarginsZero: true, Spacing: 5},
						Children: []d.Widget{
							d.PushButton{AssignTo: &w.kbToggleBtn, Text: "Подключить", OnClicked: w.ctrl.ToggleKeyboard},
							d.LineEdit{AssignTo: &w.kbLineEdit, ToolTipText: "Строка для отправки с RETURN"},
							d.PushButton{Text: "Отправить", OnClicked: w.onSendLine},
						},
					},
					d.Composite{Layout: d.HBox{MarginsZero: true, Spacing: 3}, Children: keyButtons},
					d.Composite{Layout: d.HBox{MarginsZero: true, Spacing: 3}, Children: macroButtons},
				},
			},
			// --- Журнал ---
			d.GroupBox{
				Title:  "Журнал",
				Layout: d.VBox{MarginsZero: true},
				Children: []d.Widget{
					d.TextEdit{
						AssignTo: &w.logView,
						ReadOnly: true,
						VScroll:  true,
						Font:     d.Font{Family: "Consolas", PointSize: 9},
						MinSize:  d.Size{Height: 160},
					},
				},
			},
		},
	}.Create()
	if err != nil {
		return err
	}

	w.ctrl.Initialize()
	return nil
}

// Run запускает главный цикл обработки сообщений окна.
func (w *MainWindowView) Run() {
	w.mw.Run()
}

// updateUI переносит состояние из ViewModel в виджеты. Вызывается и из
// фоновых горутин движка, поэтому всегда через Synchronize.
func (w *MainWindowView) updateUI() {
	w.mw.Synchronize(func() {
		vm := w.ctrl.ViewModel()

		if len(vm.PortList) > 0 {
			current := w.portCombo.Text()
			w.portCombo.SetModel(vm.PortList)
			if current == "" {
				current = vm.Port
			}
			w.portCombo.SetText(current)
		}

		for _, btn := range []*walk.PushButton{
			w.listingBtn, w.loaderBtn, w.loadBinBtn, w.binBtn,
			w.casSendBtn, w.casRecvBtn, w.slaveOffBtn,
		} {
			btn.SetEnabled(vm.ControlsEnabled)
		}
		w.cancelBtn.SetEnabled(vm.CancelEnabled)

		w.phaseLabel.SetText(vm.Phase)
		w.progressBar.SetValue(int(vm.Progress * 1000))
		if vm.Status != "" {
			w.statusLabel.SetText(vm.Status)
		}

		if vm.KeyboardActive {
			w.kbGroup.SetTitle("Удалённая клавиатура (вкл)")
			w.kbToggleBtn.SetText("Отключить")
		} else {
			w.kbGroup.SetTitle("Удалённая клавиатура (выкл)")
			w.kbToggleBtn.SetText("Подключить")
		}
	})
}

// appendLog добавляет строку в журнал окна.
func (w *MainWindowView) appendLog(msg string) {
	w.mw.Synchronize(func() {
		w.logView.AppendText(msg + "\r\n")
	})
}

func (w *MainWindowView) onPortChanged() {
	w.ctrl.SelectPort(w.portCombo.Text())
}

func (w *MainWindowView) onSendLine() {
	w.ctrl.SendLine(w.kbLineEdit.Text())
	w.kbLineEdit.SetText("")
}

func (w *MainWindowView) onTypeListing() {
	if path, ok := w.pickFile("Листинг BASIC (*.bas;*.txt)|*.bas;*.txt|Все файлы (*.*)|*.*"); ok {
		w.ctrl.TypeListing(path)
	}
}

func (w *MainWindowView) onSendBinary() {
	if path, ok := w.pickFile("Двоичные файлы (*.bin)|*.bin|Все файлы (*.*)|*.*"); ok {
		w.ctrl.SendBinary(path)
	}
}

func (w *MainWindowView) onSendLoaderAndBinary() {
	if path, ok := w.pickFile("Двоичные файлы (*.bin)|*.bin|Все файлы (*.*)|*.*"); ok {
		w.ctrl.SendLoaderAndBinary(path)
	}
}

func (w *MainWindowView) onSendCassette() {
	if path, ok := w.pickFile("Кассетные образы (*.k7;*.cas)|*.k7;*.cas|Все файлы (*.*)|*.*"); ok {
		w.ctrl.SendCassette(path)
	}
}

// pickFile показывает диалог выбора файла.
func (w *MainWindowView) pickFile(filter string) (string, bool) {
	dlg := new(walk.FileDialog)
	dlg.Title = "Выбор файла"
	dlg.Filter = filter
	ok, err := dlg.ShowOpen(w.mw)
	if err != nil || !ok {
		return "", false
	}
	return dlg.FilePath, true
}
