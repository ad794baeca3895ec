package calibration

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/parsearch/internal/config"
	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/search"
)

func TestGenerateWorkerCandidates(t *testing.T) {
	t.Parallel()
	candidates := GenerateWorkerCandidates(720)
	require.NotEmpty(t, candidates)
	assert.Equal(t, 1, candidates[0])
	for _, k := range candidates {
		assert.Zero(t, 720%k)
		assert.LessOrEqual(t, k, 2*runtime.NumCPU())
	}
}

func TestBenchmark(t *testing.T) {
	t.Parallel()
	results := Benchmark(context.Background(), search.New(), 1024, []int{1, 2, 4, 3}, 2)

	require.Len(t, results, 4)
	for _, r := range results[:3] {
		assert.NoError(t, r.Err, "workers=%d", r.Workers)
	}
	assert.True(t, apperrors.IsConfigError(results[3].Err), "3 does not divide 1024")
}

func TestBenchmarkStopsOnCanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Benchmark(ctx, search.New(), 64, []int{1, 2, 4}, 3)
	require.Len(t, results, 1)
	var interrupted apperrors.InterruptedError
	assert.True(t, errors.As(results[0].Err, &interrupted))
}

func TestBest(t *testing.T) {
	t.Parallel()
	results := []Result{
		{Workers: 1, Duration: 5 * time.Millisecond},
		{Workers: 2, Err: errors.New("x")},
		{Workers: 4, Duration: 2 * time.Millisecond},
		{Workers: 8, Duration: 3 * time.Millisecond},
	}
	best, ok := Best(results)
	require.True(t, ok)
	assert.Equal(t, 4, best.Workers)

	_, ok = Best([]Result{{Workers: 1, Err: errors.New("x")}})
	assert.False(t, ok)
}

func TestRunCalibrationSavesProfile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	cfg := config.AppConfig{Size: 4096, Timeout: time.Minute, CalibrationProfile: path}
	var out bytes.Buffer

	code := RunCalibration(context.Background(), cfg, search.New(), &out)

	require.Equal(t, apperrors.ExitSuccess, code, out.String())
	assert.Contains(t, out.String(), "Calibration Summary")
	assert.Contains(t, out.String(), "(Optimal)")

	profile, err := loadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 4096, profile.DatasetSize)
	assert.Zero(t, 4096%profile.OptimalWorkers)

	applied, ok := LoadCachedCalibration(cfg, 4096)
	require.True(t, ok)
	assert.Equal(t, profile.OptimalWorkers, applied.Workers)
}

func TestRunCalibrationReplacesEarlierProfile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	old := NewProfile()
	old.DatasetSize = 64
	old.OptimalWorkers = 1
	old.CalibratedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, old.SaveProfile(path))

	cfg := config.AppConfig{Size: 1024, Timeout: time.Minute, CalibrationProfile: path}
	var out bytes.Buffer
	require.Equal(t, apperrors.ExitSuccess, RunCalibration(context.Background(), cfg, search.New(), &out), out.String())
	assert.Contains(t, out.String(), "Replacing calibration from")
	assert.Contains(t, out.String(), "(1 workers for 64 elements)")

	profile, err := loadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, profile.DatasetSize)
	assert.WithinDuration(t, time.Now(), profile.CalibratedAt, time.Minute)
	assert.False(t, profile.IsStale(ProfileMaxAge))
}

func TestLoadCachedCalibrationIgnoresStaleProfile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	p := NewProfile()
	p.OptimalWorkers = 4
	p.CalibratedAt = time.Now().Add(-ProfileMaxAge - time.Hour)
	require.NoError(t, p.SaveProfile(path))

	got, ok := LoadCachedCalibration(config.AppConfig{CalibrationProfile: path}, 64)
	assert.False(t, ok)
	assert.Zero(t, got.Workers)
}

func TestLoadCachedCalibration(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	p := NewProfile()
	p.OptimalWorkers = 4
	require.NoError(t, p.SaveProfile(path))

	cfg := config.AppConfig{CalibrationProfile: path}

	got, ok := LoadCachedCalibration(cfg, 64)
	assert.True(t, ok)
	assert.Equal(t, 4, got.Workers)

	_, ok = LoadCachedCalibration(cfg, 66)
	assert.False(t, ok, "profile workers must divide the dataset size")

	cfg.Workers = 2
	got, ok = LoadCachedCalibration(cfg, 64)
	assert.False(t, ok, "explicit workers win over the profile")
	assert.Equal(t, 2, got.Workers)

	_, ok = LoadCachedCalibration(config.AppConfig{CalibrationProfile: filepath.Join(t.TempDir(), "none.yaml")}, 64)
	assert.False(t, ok)
}
