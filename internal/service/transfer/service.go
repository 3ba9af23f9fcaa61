// Package transfer — прикладной сервис между слоем представления и
// транспортным движком: применение настроек, перечисление портов и запуск
// рабочих процессов.
package transfer

import (
	"fmt"
	"path/filepath"
	"time"

	"retrolink/internal/config"
	"retrolink/internal/domain/ports"
	"retrolink/pkg/slavelink"
)

// Service связывает настройки, движок и журнал.
type Service struct {
	engine  *slavelink.Engine
	log     ports.Logger
	cfgPath string
	cfg     config.Config
}

// NewService создаёт сервис поверх готового движка.
func NewService(engine *slavelink.Engine, log ports.Logger, cfgPath string, cfg config.Config) *Service {
	engine.UpdateSettings(cfg.Settings())
	engine.SetListingEncoding(cfg.ListingEncoding)
	return &Service{engine: engine, log: log, cfgPath: cfgPath, cfg: cfg}
}

// Ports возвращает список последовательных портов системы.
func (s *Service) Ports() ([]string, error) {
	return slavelink.ListPorts()
}

// Config возвращает текущие настройки.
func (s *Service) Config() config.Config {
	return s.cfg
}

// Apply применяет и сохраняет новые настройки. Идущую работу не трогает.
func (s *Service) Apply(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	s.engine.UpdateSettings(cfg.Settings())
	s.engine.SetListingEncoding(cfg.ListingEncoding)
	if err := config.Save(s.cfgPath, cfg); err != nil {
		// Настройки применены, не сохранились — работе это не мешает.
		s.log.Warn("Настройки не сохранены: %v", err)
	}
	return nil
}

// SelectPort меняет порт и сохраняет выбор.
func (s *Service) SelectPort(port string) error {
	cfg := s.cfg
	cfg.Port = port
	return s.Apply(cfg)
}

// Busy сообщает, идёт ли работа.
func (s *Service) Busy() bool { return s.engine.Busy() }

// Cancel запрашивает отмену текущей работы.
func (s *Service) Cancel() { s.engine.Cancel() }

// Keyboard возвращает сессию клавиатуры.
func (s *Service) Keyboard() *slavelink.KeyboardSession { return s.engine.Keyboard() }

// StartKeyboard открывает сессию клавиатуры на настроенном порту.
func (s *Service) StartKeyboard() error { return s.engine.StartKeyboard() }

// StopKeyboard закрывает сессию клавиатуры.
func (s *Service) StopKeyboard() { s.engine.StopKeyboard() }

// TypeListing запускает набор листинга.
func (s *Service) TypeListing(path string) error { return s.engine.TypeListing(path) }

// SendLoader запускает набор загрузчика.
func (s *Service) SendLoader() error { return s.engine.SendLoader() }

// SendBinary запускает двоичную передачу.
func (s *Service) SendBinary(path string) error { return s.engine.SendBinary(path) }

// SendLoaderAndBinary запускает полный цикл загрузки.
func (s *Service) SendLoaderAndBinary(path string) error { return s.engine.SendLoaderAndBinary(path) }

// SendCassette запускает отправку кассетного образа.
func (s *Service) SendCassette(path string) error { return s.engine.SendCassette(path) }

// ReceiveCassette запускает приём кассеты в каталог результатов; имя файла
// строится по текущему времени, если не задано явно.
func (s *Service) ReceiveCassette(name string) error {
	if name == "" {
		name = fmt.Sprintf("capture-%s.k7", time.Now().Format("20060102-150405"))
	}
	return s.engine.ReceiveCassette(filepath.Join(s.cfg.OutputDir, name))
}

// DisableSlave запускает выход машины из ведомого режима.
func (s *Service) DisableSlave() error { return s.engine.DisableSlave() }
