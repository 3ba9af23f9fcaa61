package viewmodel

// MainViewModel хранит состояние главного окна. View только отображает эти
// поля; меняет их контроллер.
type MainViewModel struct {
	PortList []string
	Port     string

	Busy           bool
	Phase          string
	Progress       float64 // [0,1]
	KeyboardActive bool
	Status         string

	// ControlsEnabled гасит кнопки запуска на время работы.
	ControlsEnabled bool
	CancelEnabled   bool
}

// NewMainViewModel создает модель с разблокированными элементами управления.
func NewMainViewModel() *MainViewModel {
	return &MainViewModel{ControlsEnabled: true}
}

// UpdateUIState пересчитывает производные флаги из основного состояния.
func (vm *MainViewModel) UpdateUIState() {
	vm.ControlsEnabled = !vm.Busy
	vm.CancelEnabled = vm.Busy
}
