package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
)

// ErrNoPlayer is returned when the platform has no known sound player.
var ErrNoPlayer = errors.New("no sound player available")

// soundCmd is an external command that plays the alert sound.
type soundCmd struct {
	name string
	args []string
}

// soundCommand picks the player for goos. exists reports whether a file is
// present and is only consulted on Linux, where two players are tried.
func soundCommand(goos string, exists func(string) bool) (soundCmd, bool) {
	switch goos {
	case "darwin":
		return soundCmd{"afplay", []string{"/System/Library/Sounds/Submarine.aiff"}}, true
	case "linux":
		if exists("/usr/bin/paplay") {
			return soundCmd{"paplay", []string{"/usr/share/sounds/freedesktop/stereo/complete.oga"}}, true
		}
		if exists("/usr/bin/aplay") {
			return soundCmd{"aplay", []string{"/usr/share/sounds/sound-icons/prompt.wav"}}, true
		}
	case "windows":
		return soundCmd{"powershell.exe", []string{"-c",
			`(New-Object Media.SoundPlayer 'C:\Windows\Media\notify.wav').PlaySync();`}}, true
	}
	return soundCmd{}, false
}

// SoundAlerter plays a short sound without waiting for it to finish.
type SoundAlerter struct {
	goos   string
	exists func(string) bool
	start  func(name string, args ...string) error
	logger *slog.Logger
}

// NewSoundAlerter creates a [SoundAlerter] for the current platform.
func NewSoundAlerter(logger *slog.Logger) *SoundAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SoundAlerter{
		goos:   runtime.GOOS,
		exists: fileExists,
		start:  startDetached,
		logger: logger,
	}
}

// Alert starts the platform player. The sound keeps playing after Alert
// returns; ctx is not used to stop it.
func (a *SoundAlerter) Alert(ctx context.Context) error {
	cmd, ok := soundCommand(a.goos, a.exists)
	if !ok {
		return fmt.Errorf("%w on %s", ErrNoPlayer, a.goos)
	}
	if err := a.start(cmd.name, cmd.args...); err != nil {
		return fmt.Errorf("start %s: %w", cmd.name, err)
	}
	a.logger.Debug("notification sound started", "player", cmd.name)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// startDetached starts the command and reaps it in the background.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
