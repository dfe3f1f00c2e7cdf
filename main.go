package main

import (
	"fmt"
	"os"

	"github.com/wakin721/Neri/cmd"
	"github.com/wakin721/Neri/internal/conf"
	"github.com/wakin721/Neri/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.Config{Debug: settings.Debug}
	if settings.Main.Log.Enabled {
		logCfg.FilePath = settings.Main.Log.Path
		logCfg.MaxSizeMB = settings.Main.Log.MaxSize
		logCfg.MaxBackups = settings.Main.Log.MaxBackups
	}
	logging.Init(logCfg)
	defer func() {
		if err := logging.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing log file: %v\n", err)
		}
	}()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
