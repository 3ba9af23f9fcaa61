// Консольный запуск рабочих процессов без GUI: удобно для скриптов и
// отладки протокола.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"retrolink/internal/config"
	"retrolink/pkg/slavelink"
)

func main() {
	var (
		cfgPath = flag.String("config", "retrolink.toml", "путь к файлу настроек")
		port    = flag.String("port", "", "последовательный порт (перекрывает настройки)")
		op      = flag.String("op", "", "операция: ports|listing|loader|bin|loaderbin|cassend|casrecv|slaveoff")
		file    = flag.String("file", "", "входной файл (листинг, BIN или K7)")
		out     = flag.String("out", "capture.k7", "выходной файл для casrecv")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("настройки: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	if *op == "ports" {
		ports, err := slavelink.ListPorts()
		if err != nil {
			log.Fatalf("перечисление портов: %v", err)
		}
		fmt.Println(strings.Join(ports, "\n"))
		return
	}

	done := make(chan error, 1)
	engine := slavelink.NewEngine(cfg.Settings(), slavelink.Events{
		OnProgress: func(phase string, fraction float64) {
			if phase != "" {
				fmt.Printf("\r%s: %3.0f%%", phase, fraction*100)
			}
		},
		OnLog: func(msg string) { fmt.Println(msg) },
		OnDone: func(kind slavelink.JobKind, err error) {
			fmt.Println()
			done <- err
		},
	})
	engine.SetListingEncoding(cfg.ListingEncoding)

	switch *op {
	case "listing":
		err = engine.TypeListing(requireFile(*file))
	case "loader":
		err = engine.SendLoader()
	case "bin":
		err = engine.SendBinary(requireFile(*file))
	case "loaderbin":
		err = engine.SendLoaderAndBinary(requireFile(*file))
	case "cassend":
		err = engine.SendCassette(requireFile(*file))
	case "casrecv":
		err = engine.ReceiveCassette(*out)
	case "slaveoff":
		err = engine.DisableSlave()
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("запуск: %v", err)
	}

	if err := <-done; err != nil {
		log.Fatalf("операция завершилась с ошибкой: %v", err)
	}
	fmt.Println("Готово")
}

func requireFile(path string) string {
	if path == "" {
		log.Fatal("не задан входной файл (-file)")
	}
	return path
}
