package media

import (
	"context"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// RunStream runs a compiled ffmpeg-go stream and kills the ffmpeg process if
// ctx is cancelled before it exits.
func RunStream(ctx context.Context, s *ffmpeg.Stream) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := s.Compile()
	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}
