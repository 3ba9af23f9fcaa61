package ui

import (
	"retrolink/internal/ui/controller"
	"retrolink/internal/ui/view"
)

// Run запускает графическое приложение с переданным контроллером.
func Run(mainCtrl *controller.MainController) error {
	return view.Run(mainCtrl)
}
