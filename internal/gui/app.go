// Main window: playback controls around the side-by-side preview
package gui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"gan-video-studio/internal/config"
	"gan-video-studio/internal/core"
)

// SnapshotSaver writes a single frame to an image file
type SnapshotSaver interface {
	Save(frame core.Frame, path string) error
}

// Dependencies are the native components the window drives
type Dependencies struct {
	Opener      core.SourceOpener
	Recorder    core.SinkOpener
	Transformer core.Transformer
	Snapshots   SnapshotSaver
}

// Application represents the main window and its controller
type Application struct {
	app    fyne.App
	window fyne.Window
	cfg    config.Config
	logger *logrus.Logger

	controller *core.Controller
	snapshots  SnapshotSaver

	preview     *PreviewPanel
	menuHandler *MenuHandler

	openBtn     *widget.Button
	cameraBtn   *widget.Button
	playBtn     *widget.Button
	stopBtn     *widget.Button
	snapshotBtn *widget.Button
	statusLabel *widget.Label
	statsLabel  *widget.Label
}

func NewApplication(app fyne.App, cfg config.Config, deps Dependencies, logger *logrus.Logger) *Application {
	window := app.NewWindow("GAN Video Studio")
	window.Resize(fyne.NewSize(float32(2*cfg.PreviewWidth+80), float32(cfg.PreviewHeight+200)))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		cfg:       cfg,
		logger:    logger,
		snapshots: deps.Snapshots,
	}

	a.preview = NewPreviewPanel(cfg.PreviewWidth, cfg.PreviewHeight, logger)
	a.controller = core.NewController(deps.Opener, deps.Recorder, deps.Transformer, a.preview, logger, cfg.PipelineOptions())

	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()
	a.applySession(a.controller.Snapshot())

	return a
}

func (a *Application) initializeGUI() {
	a.openBtn = widget.NewButtonWithIcon("Open Video", theme.FolderOpenIcon(), a.openVideo)
	a.cameraBtn = widget.NewButtonWithIcon("Open Camera", theme.MediaVideoIcon(), a.openCamera)
	a.playBtn = widget.NewButtonWithIcon("Play", theme.MediaPlayIcon(), a.play)
	a.playBtn.Importance = widget.HighImportance
	a.stopBtn = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), a.stop)
	a.snapshotBtn = widget.NewButtonWithIcon("Save Snapshot", theme.DocumentSaveIcon(), a.saveSnapshot)

	a.statusLabel = widget.NewLabel("")
	a.statusLabel.Wrapping = fyne.TextWrapWord
	a.statsLabel = widget.NewLabel("")

	a.menuHandler = NewMenuHandler(a.window, a.logger)
}

func (a *Application) setupLayout() {
	controls := container.NewHBox(
		a.openBtn,
		a.cameraBtn,
		widget.NewSeparator(),
		a.playBtn,
		a.stopBtn,
		widget.NewSeparator(),
		a.snapshotBtn,
	)

	top := container.NewVBox(
		widget.NewCard("Controls", "", controls),
		widget.NewSeparator(),
	)
	bottom := widget.NewCard("Status", "", container.NewVBox(a.statusLabel, a.statsLabel))

	content := container.NewBorder(top, bottom, nil, nil, container.NewPadded(a.preview.GetContainer()))

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(content)
}

func (a *Application) setupCallbacks() {
	a.preview.SetSessionCallback(a.applySession)

	a.menuHandler.SetCallbacks(MenuCallbacks{
		OnOpenVideo:    a.openVideo,
		OnOpenCamera:   a.openCamera,
		OnSaveSnapshot: a.saveSnapshot,
	})

	a.window.SetCloseIntercept(func() {
		a.cleanup()
		a.app.Quit()
	})
}

// applySession runs on the UI goroutine
func (a *Application) applySession(info core.SessionInfo) {
	_, hasFrame := a.preview.LastTransformed()
	states := controlsFor(info, hasFrame && a.snapshots != nil)

	setEnabled(a.openBtn, states.open)
	setEnabled(a.cameraBtn, states.open)
	setEnabled(a.playBtn, states.play)
	setEnabled(a.stopBtn, states.stop)
	setEnabled(a.snapshotBtn, states.snapshot)
	a.menuHandler.SetSnapshotEnabled(states.snapshot)

	a.statusLabel.SetText(statusText(info))
	if info.Stats.Ticks > 0 {
		a.statsLabel.SetText(fmt.Sprintf("Frame %d, %.1f fps, transform %v avg",
			info.FrameIndex, info.Stats.ProcessingFPS(), info.Stats.AvgTransform.Round(100_000)))
	} else {
		a.statsLabel.SetText("")
	}

	switch {
	case info.State == core.StateCancelled && errors.Is(info.Err, core.ErrTransform):
		a.showError("Playback Stopped", info.Err)
	case info.State == core.StatePlaying && errors.Is(info.Err, core.ErrEncode):
		a.showError("Recording Stopped", info.Err)
	}
}

func setEnabled(btn *widget.Button, enabled bool) {
	if enabled {
		btn.Enable()
	} else {
		btn.Disable()
	}
}

func (a *Application) openVideo() {
	a.menuHandler.ChooseVideo(a.load)
}

func (a *Application) openCamera() {
	a.menuHandler.ChooseCamera(a.load)
}

func (a *Application) load(path string) {
	a.logger.WithField("path", path).Info("GUI: Loading source")
	if err := a.controller.OpenVideo(path); err != nil {
		a.applySession(a.controller.Snapshot())
		a.showError("Failed to Open Video", err)
	}
}

func (a *Application) play() {
	message := fmt.Sprintf("Save output video to %s?", a.cfg.OutputPath)
	dialog.ShowConfirm("Record Output", message, func(record bool) {
		if err := a.controller.StartPlayback(record); err != nil {
			a.showError("Failed to Start Playback", err)
		}
	}, a.window)
}

func (a *Application) stop() {
	if err := a.controller.Cancel(); err != nil {
		a.showError("Failed to Stop", err)
	}
}

func (a *Application) saveSnapshot() {
	frame, ok := a.preview.LastTransformed()
	if !ok || a.snapshots == nil {
		a.showError("No Frame", errors.New("no transformed frame to save"))
		return
	}
	a.menuHandler.ChooseSnapshotPath(func(path string) {
		if err := a.snapshots.Save(frame, path); err != nil {
			a.showError("Failed to Save Snapshot", err)
			return
		}
		a.statusLabel.SetText(fmt.Sprintf("Snapshot saved to %s", path))
	})
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error("GUI: " + title)
	dialog.ShowError(err, a.window)
}

func (a *Application) cleanup() {
	a.logger.Info("GUI: Cleaning up application")
	if err := a.controller.Cancel(); err != nil {
		a.logger.WithError(err).Warn("GUI: Cancel on close failed")
	}
}

func (a *Application) ShowAndRun() {
	a.window.ShowAndRun()
}
