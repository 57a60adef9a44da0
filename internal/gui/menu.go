package gui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

var (
	videoExtensions    = []string{".mp4", ".avi", ".mov", ".mkv"}
	snapshotExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}
)

type MenuCallbacks struct {
	OnOpenVideo    func()
	OnOpenCamera   func()
	OnSaveSnapshot func()
}

// MenuHandler owns the main menu and the file pickers behind it
type MenuHandler struct {
	window    fyne.Window
	logger    *logrus.Logger
	callbacks MenuCallbacks

	snapshotItem *fyne.MenuItem
	mainMenu     *fyne.MainMenu
}

func NewMenuHandler(window fyne.Window, logger *logrus.Logger) *MenuHandler {
	return &MenuHandler{
		window: window,
		logger: logger,
	}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	mh.snapshotItem = fyne.NewMenuItem("Save Snapshot...", func() {
		if mh.callbacks.OnSaveSnapshot != nil {
			mh.callbacks.OnSaveSnapshot()
		}
	})
	mh.snapshotItem.Disabled = true

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Video...", func() {
			if mh.callbacks.OnOpenVideo != nil {
				mh.callbacks.OnOpenVideo()
			}
		}),
		fyne.NewMenuItem("Open Camera...", func() {
			if mh.callbacks.OnOpenCamera != nil {
				mh.callbacks.OnOpenCamera()
			}
		}),
		fyne.NewMenuItemSeparator(),
		mh.snapshotItem,
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	mh.mainMenu = fyne.NewMainMenu(fileMenu, helpMenu)
	return mh.mainMenu
}

func (mh *MenuHandler) SetCallbacks(callbacks MenuCallbacks) {
	mh.callbacks = callbacks
}

func (mh *MenuHandler) SetSnapshotEnabled(enabled bool) {
	if mh.snapshotItem == nil || mh.snapshotItem.Disabled == !enabled {
		return
	}
	mh.snapshotItem.Disabled = !enabled
	mh.mainMenu.Refresh()
}

// ChooseVideo shows a file picker and hands the chosen path to onChosen
func (mh *MenuHandler) ChooseVideo(onChosen func(string)) {
	mh.logger.Info("GUI: Opening file dialog for video selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		onChosen(path)
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(videoExtensions))
	fileDialog.Show()
}

// ChooseCamera asks for a device index and hands "camera:<id>" to onChosen
func (mh *MenuHandler) ChooseCamera(onChosen func(string)) {
	entry := widget.NewEntry()
	entry.SetText("0")
	entry.Validator = validateDeviceID

	items := []*widget.FormItem{
		widget.NewFormItem("Device", entry),
	}
	dialog.ShowForm("Open Camera", "Open", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		onChosen(cameraPath(entry.Text))
	}, mh.window)
}

// ChooseSnapshotPath shows a save dialog for an image file
func (mh *MenuHandler) ChooseSnapshotPath(onChosen func(string)) {
	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		onChosen(path)
	}, mh.window)

	fileDialog.SetFileName("snapshot.png")
	fileDialog.SetFilter(storage.NewExtensionFileFilter(snapshotExtensions))
	fileDialog.Show()
}

func validateDeviceID(text string) error {
	id, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || id < 0 {
		return fmt.Errorf("device must be a non-negative number")
	}
	return nil
}

func cameraPath(text string) string {
	return "camera:" + strings.TrimSpace(text)
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabel("GAN Video Studio"),
		widget.NewSeparator(),
		widget.NewLabel("Plays a video or camera feed through an image-to-image"),
		widget.NewLabel("generator and shows the result next to the source."),
		widget.NewSeparator(),
		widget.NewLabel("Built with Go, Fyne v2.6, and OpenCV"),
	)

	aboutDialog := dialog.NewCustom("About", "Close", content, mh.window)
	aboutDialog.Resize(fyne.NewSize(400, 240))
	aboutDialog.Show()
}

func (mh *MenuHandler) showError(title string, err error) {
	mh.logger.WithError(err).Error("GUI: " + title)
	dialog.ShowError(err, mh.window)
}
