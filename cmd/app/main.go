package main

import (
	"retrolink/internal/config"
	"retrolink/internal/infrastructure/logger"
	"retrolink/internal/service/transfer"
	"retrolink/internal/ui"
	"retrolink/internal/ui/controller"
	"retrolink/internal/ui/viewmodel"
	"retrolink/pkg/slavelink"
)

const configPath = "retrolink.toml"

func main() {
	// 1. Журнал (инфраструктура)
	log := logger.NewStdLogger("RetroLink: ")
	log.Info("Запуск приложения")

	// 2. Настройки
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Ошибка загрузки настроек: %v", err)
	}

	// 3. Движок. События замыкаются на контроллер, который создаётся ниже.
	var mainCtrl *controller.MainController
	events := slavelink.Events{
		OnProgress: func(phase string, fraction float64) {
			if mainCtrl != nil {
				mainCtrl.HandleProgress(phase, fraction)
			}
		},
		OnLog: func(msg string) {
			if mainCtrl != nil {
				mainCtrl.HandleLog(msg)
			}
		},
		OnDone: func(kind slavelink.JobKind, err error) {
			if mainCtrl != nil {
				mainCtrl.HandleDone(kind, err)
			}
		},
	}
	engine := slavelink.NewEngine(cfg.Settings(), events)

	// 4. Прикладной сервис
	svc := transfer.NewService(engine, log, configPath, cfg)

	// 5. Модель представления и контроллер
	mainVM := viewmodel.NewMainViewModel()
	mainCtrl = controller.NewMainController(mainVM, svc, log)

	// 6. Графический интерфейс
	log.Info("Инициализация завершена, запуск GUI")
	if err := ui.Run(mainCtrl); err != nil {
		log.Fatal("Ошибка GUI: %v", err)
	}
}
