// GAN Video Studio: live side-by-side preview of a video run through a generator

package main

import (
	"flag"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"gan-video-studio/internal/config"
	"gan-video-studio/internal/gui"
	"gan-video-studio/internal/io"
	"gan-video-studio/internal/model"
)

const (
	AppName    = "GAN Video Studio"
	AppID      = "com.ganvideostudio.app"
	AppVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	modelPath := flag.String("model", "", "Generator model file (overrides config)")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	cfg.Debug = cfg.Debug || *debugMode

	logger := initLogger(cfg.Debug)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": cfg.Debug,
		"model":      cfg.ModelPath,
		"output":     cfg.OutputPath,
	}).Info("Starting GAN Video Studio")

	generator, err := model.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load generator")
	}
	defer generator.Close()

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.MediaVideoIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp := gui.NewApplication(myApp, cfg, gui.Dependencies{
		Opener:      io.NewCaptureOpener(logger),
		Recorder:    io.NewRecorderOpener(logger),
		Transformer: generator,
		Snapshots:   io.NewSnapshotWriter(logger),
	}, logger)
	mainApp.ShowAndRun()

	logger.Info("Application shutting down gracefully")
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
