package calibration

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentProfileVersion is bumped whenever the profile layout changes.
const CurrentProfileVersion = 1

// DefaultProfileFileName is the profile file name in the user's home directory.
const DefaultProfileFileName = ".parsearch_calibration.yaml"

// CalibrationProfile records the fastest worker count measured on this
// machine for a given dataset size.
type CalibrationProfile struct {
	ProfileVersion  int       `yaml:"profile_version"`
	NumCPU          int       `yaml:"num_cpu"`
	GOOS            string    `yaml:"goos"`
	GOARCH          string    `yaml:"goarch"`
	GoVersion       string    `yaml:"go_version"`
	WordSize        int       `yaml:"word_size"`
	DatasetSize     int       `yaml:"dataset_size"`
	OptimalWorkers  int       `yaml:"optimal_workers"`
	CalibrationTime string    `yaml:"calibration_time,omitempty"`
	CalibratedAt    time.Time `yaml:"calibrated_at"`
}

// ProfileMaxAge is how long a saved calibration is trusted for adaptive runs.
const ProfileMaxAge = 30 * 24 * time.Hour

// NewProfile creates a profile stamped with the current hardware and time.
func NewProfile() *CalibrationProfile {
	p := &CalibrationProfile{}
	p.stamp()
	return p
}

// stamp records the current hardware, toolchain and time in p.
func (p *CalibrationProfile) stamp() {
	p.ProfileVersion = CurrentProfileVersion
	p.NumCPU = runtime.NumCPU()
	p.GOOS = runtime.GOOS
	p.GOARCH = runtime.GOARCH
	p.GoVersion = runtime.Version()
	p.WordSize = 32 << (^uint(0) >> 63)
	p.CalibratedAt = time.Now()
}

// GetDefaultProfilePath returns the profile path in the home directory,
// falling back to the working directory.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// SaveProfile writes the profile as YAML.
func (p *CalibrationProfile) SaveProfile(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p CalibrationProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", path, err)
	}
	if p.ProfileVersion == 0 {
		return nil, fmt.Errorf("profile %s has no version", path)
	}
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path, or returns a fresh one and
// false if it cannot be read.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	p, err := loadProfile(path)
	if err != nil {
		return NewProfile(), false
	}
	return p, true
}

// IsValid reports whether the profile was produced on matching hardware by a
// compatible version.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	return p.ProfileVersion == CurrentProfileVersion &&
		p.NumCPU == runtime.NumCPU() &&
		p.GOARCH == runtime.GOARCH &&
		p.WordSize == 32<<(^uint(0)>>63) &&
		p.OptimalWorkers > 0
}

// IsStale reports whether the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// WorkersFor returns the calibrated worker count if it divides size.
func (p *CalibrationProfile) WorkersFor(size int) (int, bool) {
	if !p.IsValid() || size%p.OptimalWorkers != 0 {
		return 0, false
	}
	return p.OptimalWorkers, true
}

func (p *CalibrationProfile) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Calibration profile v%d (%s/%s, %d CPUs, %s)\n",
		p.ProfileVersion, p.GOOS, p.GOARCH, p.NumCPU, p.GoVersion)
	fmt.Fprintf(&b, "  dataset size:    %d\n", p.DatasetSize)
	fmt.Fprintf(&b, "  optimal workers: %d\n", p.OptimalWorkers)
	fmt.Fprintf(&b, "  calibrated at:   %s", p.CalibratedAt.Format(time.RFC3339))
	return b.String()
}
