package deps

import (
	"fmt"
	"os/exec"
)

const (
	MpvInstallURL    = "https://mpv.io/installation/"
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
	YtDlpInstallURL  = "https://github.com/yt-dlp/yt-dlp#installation"
)

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// Dependency is an external binary the CLI shells out to.
type Dependency struct {
	Name       string
	InstallURL string
	// Purpose is shown by the doctor command.
	Purpose string
	// Optional dependencies only gate a single command.
	Optional bool
}

// All lists every external binary, in the order doctor reports them.
var All = []Dependency{
	{Name: "ffmpeg", InstallURL: FfmpegInstallURL, Purpose: "cutting, cropping and captioning clips"},
	{Name: "ffprobe", InstallURL: FfmpegInstallURL, Purpose: "reading video duration and size"},
	{Name: "yt-dlp", InstallURL: YtDlpInstallURL, Purpose: "fetching transcripts and videos"},
	{Name: "mpv", InstallURL: MpvInstallURL, Purpose: "previewing clips", Optional: true},
}

// Check returns the resolved path of d, or a *DependencyError.
func (d Dependency) Check() (string, error) {
	path, err := lookPath(d.Name)
	if err != nil {
		return "", &DependencyError{Name: d.Name, InstallURL: d.InstallURL}
	}
	return path, nil
}

func check(name, url string) error {
	_, err := Dependency{Name: name, InstallURL: url}.Check()
	return err
}

// CheckMpv checks if mpv is installed and available in PATH
func CheckMpv() error {
	return check("mpv", MpvInstallURL)
}

// CheckFfmpeg checks if ffmpeg is installed and available in PATH
func CheckFfmpeg() error {
	return check("ffmpeg", FfmpegInstallURL)
}

// CheckFfprobe checks if ffprobe is installed and available in PATH
func CheckFfprobe() error {
	return check("ffprobe", FfmpegInstallURL)
}

// CheckYtDlp checks if yt-dlp is installed and available in PATH
func CheckYtDlp() error {
	return check("yt-dlp", YtDlpInstallURL)
}

// CheckAll checks the required dependencies and returns a slice of errors
// for missing ones. Optional dependencies are not checked.
func CheckAll() []error {
	var errs []error
	for _, d := range All {
		if d.Optional {
			continue
		}
		if _, err := d.Check(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
