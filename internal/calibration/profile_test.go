package calibration

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestNewProfile(t *testing.T) {
	t.Parallel()
	profile := NewProfile()

	if profile == nil {
		t.Fatal("NewProfile returned nil")
	}
	if profile.NumCPU != runtime.NumCPU() {
		t.Errorf("NumCPU = %d, want %d", profile.NumCPU, runtime.NumCPU())
	}
	if profile.GOARCH != runtime.GOARCH {
		t.Errorf("GOARCH = %s, want %s", profile.GOARCH, runtime.GOARCH)
	}
	if profile.GOOS != runtime.GOOS {
		t.Errorf("GOOS = %s, want %s", profile.GOOS, runtime.GOOS)
	}
	if profile.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %s, want %s", profile.GoVersion, runtime.Version())
	}
	if profile.ProfileVersion != CurrentProfileVersion {
		t.Errorf("ProfileVersion = %d, want %d", profile.ProfileVersion, CurrentProfileVersion)
	}
	if profile.CalibratedAt.IsZero() {
		t.Error("CalibratedAt is zero")
	}
}

func TestProfileSaveLoad(t *testing.T) {
	t.Parallel()
	profilePath := filepath.Join(t.TempDir(), "nested", "profile.yaml")

	original := NewProfile()
	original.DatasetSize = 1 << 20
	original.OptimalWorkers = 8
	original.CalibrationTime = "1.2s"

	if err := original.SaveProfile(profilePath); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	data, err := os.ReadFile(profilePath)
	if err != nil {
		t.Fatalf("profile file was not created: %v", err)
	}
	if !strings.Contains(string(data), "optimal_workers: 8") {
		t.Errorf("profile should be YAML with snake_case keys, got:\n%s", data)
	}

	loaded, err := loadProfile(profilePath)
	if err != nil {
		t.Fatalf("loadProfile failed: %v", err)
	}
	if loaded.OptimalWorkers != 8 || loaded.DatasetSize != 1<<20 {
		t.Errorf("loaded %+v, want workers 8 and size %d", loaded, 1<<20)
	}
	if loaded.NumCPU != original.NumCPU {
		t.Errorf("NumCPU = %d, want %d", loaded.NumCPU, original.NumCPU)
	}
	if !loaded.CalibratedAt.Equal(original.CalibratedAt) {
		t.Errorf("CalibratedAt = %v, want %v", loaded.CalibratedAt, original.CalibratedAt)
	}
}

func TestProfileIsValid(t *testing.T) {
	t.Parallel()
	valid := NewProfile()
	valid.OptimalWorkers = 2
	if !valid.IsValid() {
		t.Error("expected calibrated profile to be valid")
	}

	uncalibrated := NewProfile()
	if uncalibrated.IsValid() {
		t.Error("expected profile without a worker count to be invalid")
	}

	wrongCPU := *valid
	wrongCPU.NumCPU = 999
	if wrongCPU.IsValid() {
		t.Error("expected profile with wrong CPU count to be invalid")
	}

	wrongArch := *valid
	wrongArch.GOARCH = "invalid_arch"
	if wrongArch.IsValid() {
		t.Error("expected profile with wrong GOARCH to be invalid")
	}

	wrongVersion := *valid
	wrongVersion.ProfileVersion = 999
	if wrongVersion.IsValid() {
		t.Error("expected profile with wrong version to be invalid")
	}

	var nilProfile *CalibrationProfile
	if nilProfile.IsValid() {
		t.Error("expected nil profile to be invalid")
	}
}

func TestProfileWorkersFor(t *testing.T) {
	t.Parallel()
	p := NewProfile()
	p.OptimalWorkers = 4

	if k, ok := p.WorkersFor(1024); !ok || k != 4 {
		t.Errorf("WorkersFor(1024) = %d, %v; want 4, true", k, ok)
	}
	if _, ok := p.WorkersFor(1022); ok {
		t.Error("WorkersFor should refuse a size the worker count does not divide")
	}
}

func TestProfileIsStale(t *testing.T) {
	t.Parallel()
	profile := NewProfile()

	if profile.IsStale(time.Hour) {
		t.Error("expected fresh profile to not be stale")
	}
	profile.CalibratedAt = time.Now().Add(-2 * time.Hour)
	if !profile.IsStale(time.Hour) {
		t.Error("expected old profile to be stale")
	}
	var nilProfile *CalibrationProfile
	if !nilProfile.IsStale(time.Hour) {
		t.Error("expected nil profile to be stale")
	}
}

func TestProfileString(t *testing.T) {
	t.Parallel()
	profile := NewProfile()
	profile.OptimalWorkers = 6
	str := profile.String()
	if !strings.Contains(str, "optimal workers: 6") {
		t.Errorf("String() should mention the worker count: %s", str)
	}
}

func TestLoadNonExistentProfile(t *testing.T) {
	t.Parallel()
	if _, err := loadProfile("/nonexistent/path/to/profile.yaml"); err == nil {
		t.Error("expected error loading nonexistent profile")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("num_cpu: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadProfile(invalid); err == nil {
		t.Error("expected error loading malformed YAML")
	}

	unversioned := filepath.Join(dir, "unversioned.yaml")
	if err := os.WriteFile(unversioned, []byte("optimal_workers: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadProfile(unversioned); err == nil {
		t.Error("expected error loading a profile without version")
	}
}

func TestLoadOrCreateProfile(t *testing.T) {
	t.Parallel()
	profilePath := filepath.Join(t.TempDir(), "profile.yaml")

	profile, loaded := LoadOrCreateProfile(profilePath)
	if loaded {
		t.Error("expected loaded to be false for nonexistent file")
	}
	if profile == nil {
		t.Fatal("expected profile to not be nil")
	}

	profile.OptimalWorkers = 3
	if err := profile.SaveProfile(profilePath); err != nil {
		t.Fatalf("failed to save profile: %v", err)
	}

	profile2, loaded2 := LoadOrCreateProfile(profilePath)
	if !loaded2 {
		t.Error("expected loaded to be true for existing file")
	}
	if profile2.OptimalWorkers != 3 {
		t.Errorf("loaded profile has wrong worker count: %d", profile2.OptimalWorkers)
	}
}

func TestGetDefaultProfilePath(t *testing.T) {
	t.Parallel()
	path := GetDefaultProfilePath()
	if filepath.Base(path) != DefaultProfileFileName {
		t.Errorf("path %s doesn't end with %s", path, DefaultProfileFileName)
	}
}
