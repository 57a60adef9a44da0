// Still-image export of preview frames
package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"gan-video-studio/internal/core"
)

var snapshotFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// SnapshotWriter saves single frames as image files
type SnapshotWriter struct {
	logger *logrus.Logger
}

func NewSnapshotWriter(logger *logrus.Logger) *SnapshotWriter {
	return &SnapshotWriter{
		logger: logger,
	}
}

func (sw *SnapshotWriter) Save(frame core.Frame, path string) error {
	sw.logger.WithField("path", path).Debug("SNAPSHOT: Saving frame")

	if frame.Empty() {
		return fmt.Errorf("cannot save empty frame")
	}
	if !IsSupportedSnapshotFormat(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	mat, err := gocv.ImageToMatRGB(frame.Image)
	if err != nil {
		return fmt.Errorf("failed to convert frame %d: %w", frame.Index, err)
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("failed to save image: %s", path)
	}

	sw.logger.WithFields(logrus.Fields{
		"path":        path,
		"frame_index": frame.Index,
		"width":       mat.Cols(),
		"height":      mat.Rows(),
	}).Info("SNAPSHOT: Frame saved")
	return nil
}

// IsSupportedSnapshotFormat checks the file extension against what IMWrite handles
func IsSupportedSnapshotFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range snapshotFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// SnapshotFormats lists the accepted extensions for file dialogs
func SnapshotFormats() []string {
	return append([]string(nil), snapshotFormats...)
}
