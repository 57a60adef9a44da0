package gui

import (
	"fmt"
	"path/filepath"
	"strings"

	"gan-video-studio/internal/core"
)

// statusText is the label line for a session update
func statusText(info core.SessionInfo) string {
	name := displayName(info.Path)

	switch info.State {
	case core.StateIdle:
		return "Open a video or camera to begin"
	case core.StateLoaded:
		return fmt.Sprintf("Video: %s (%s)", name, streamSummary(info.Stream))
	case core.StatePlaying:
		if info.Recording {
			return fmt.Sprintf("Playing: %s, recording to %s", name, filepath.Base(info.OutputPath))
		}
		return fmt.Sprintf("Playing: %s", name)
	case core.StateCompleted:
		msg := "End of video!"
		if info.FramesWritten > 0 {
			msg += fmt.Sprintf(" %d frames saved to %s", info.FramesWritten, filepath.Base(info.OutputPath))
		}
		if info.Err != nil {
			msg += " (recording stopped early)"
		}
		return msg
	case core.StateCancelled:
		if info.Err != nil {
			return fmt.Sprintf("Stopped: %s: %v", name, info.Err)
		}
		return fmt.Sprintf("Stopped: %s", name)
	}
	return info.State.String()
}

func displayName(path string) string {
	if strings.HasPrefix(path, "camera:") {
		return path
	}
	return filepath.Base(path)
}

func streamSummary(si core.StreamInfo) string {
	parts := []string{fmt.Sprintf("%dx%d", si.Width, si.Height)}
	if si.FPS > 0 {
		parts = append(parts, fmt.Sprintf("%.1f fps", si.FPS))
	}
	if si.KnownLength() {
		parts = append(parts, fmt.Sprintf("%d frames", si.TotalFrames))
	} else {
		parts = append(parts, "live")
	}
	return strings.Join(parts, ", ")
}

// controlStates reports which buttons are usable in each state
type controlStates struct {
	open     bool
	play     bool
	stop     bool
	snapshot bool
}

func controlsFor(info core.SessionInfo, hasTransformed bool) controlStates {
	switch info.State {
	case core.StateLoaded:
		return controlStates{open: true, play: true, snapshot: hasTransformed}
	case core.StatePlaying:
		return controlStates{open: true, stop: true, snapshot: hasTransformed}
	case core.StateCompleted, core.StateCancelled:
		return controlStates{open: true, snapshot: hasTransformed}
	}
	return controlStates{open: true}
}
