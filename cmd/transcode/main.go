// Headless transcoder: runs a video through the generator and records the result

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"gan-video-studio/internal/config"
	"gan-video-studio/internal/core"
	"gan-video-studio/internal/io"
	"gan-video-studio/internal/model"
	"gan-video-studio/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	modelPath := flag.String("model", "", "Generator model file (overrides config)")
	outputPath := flag.String("o", "", "Output video path (overrides config)")
	logPath := flag.String("log", "transcode.log", "Log file; the terminal is used by the progress view")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input video | camera:N>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := args[0]

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	if *outputPath != "" {
		cfg.OutputPath = *outputPath
	}
	cfg.Debug = cfg.Debug || *debugMode

	logger, closeLog, err := initLogger(*logPath, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(input, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

func run(input string, cfg config.Config, logger *logrus.Logger) error {
	generator, err := model.New(cfg, logger)
	if err != nil {
		return err
	}
	defer generator.Close()

	controller := core.NewController(
		io.NewCaptureOpener(logger),
		io.NewRecorderOpener(logger),
		generator,
		core.DiscardPreview{},
		logger,
		cfg.PipelineOptions(),
	)

	if err := controller.OpenVideo(input); err != nil {
		return err
	}
	if err := controller.StartPlayback(true); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(controller), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		controller.Cancel()
		return err
	}

	info, err := controller.Wait(context.Background())
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"state":          info.State.String(),
		"frames":         info.FrameIndex,
		"frames_written": info.FramesWritten,
		"output":         info.OutputPath,
	}).Info("TRANSCODE: Finished")

	fmt.Printf("%s: %d frames processed, %d written to %s\n",
		info.State, info.FrameIndex, info.FramesWritten, info.OutputPath)
	if info.Err != nil {
		return info.Err
	}
	return nil
}

func initLogger(path string, debugMode bool) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(f)

	closed := false
	return logger, func() {
		if !closed {
			closed = true
			f.Close()
		}
	}, nil
}
