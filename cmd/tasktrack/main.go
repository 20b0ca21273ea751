package main

import (
	"os"

	"github.com/charmbracelet/log"

	"tasktrack/app"
	"tasktrack/config"
	"tasktrack/store"
	"tasktrack/tui"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "tasktrack"})

	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		logger.Fatal("failed to load config", "path", configPath, "err", err)
	}

	doc := store.Load(cfg.StatePath)
	svc := app.NewService(doc)

	if err := tui.Run(svc, cfg); err != nil {
		logger.Fatal("error running program", "err", err)
	}
}
