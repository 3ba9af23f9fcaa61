package view

import (
	"retrolink/internal/ui/controller"
)

// Run создаёт главное окно и входит в цикл обработки сообщений.
func Run(mainCtrl *controller.MainController) error {
	w := NewMainWindowView(mainCtrl)
	if err := w.Create(); err != nil {
		return err
	}
	w.Run()
	return nil
}
