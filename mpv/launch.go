package mpv

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/user/shorts-clipper-cli/deps"
)

// Args returns the mpv arguments used to preview videoPath.
func Args(videoPath string, loop bool) []string {
	args := []string{"--force-window=yes", "--keep-open=yes"}
	if loop {
		args = append(args, "--loop-file=inf")
	}
	return append(args, videoPath)
}

// Launch starts mpv with the specified clip.
// It checks that mpv is installed first and returns an error with install link if not.
// Returns the *exec.Cmd for the running process which can be used to wait or clean up.
func Launch(videoPath string, loop bool) (*exec.Cmd, error) {
	if err := deps.CheckMpv(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("clip not found: %w", err)
	}

	cmd := exec.Command("mpv", Args(videoPath, loop)...)

	// Start the process (non-blocking)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return cmd, nil
}
