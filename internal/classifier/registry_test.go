package classifier

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardioshield/predictor/internal/logger"
	"github.com/cardioshield/predictor/internal/models"
)

func testSVM() *SVM {
	return &SVM{Type: KindSVM, Features: nFeatures, Kernel: KernelLinear,
		SupportVectors: [][]float64{unitVector(0)}, DualCoef: []float64{0.5}, Intercept: -25}
}

func TestRegistry_BothModelsPresent(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "Random Forest.json", testForest())
	writeArtifact(t, dir, "Support Vector Machine.json", testSVM())

	reg := NewRegistry(dir, DefaultSlots, logger.NewNop())

	status := reg.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "Random Forest", status[0].Name)
	assert.Equal(t, "SVM", status[1].Name)
	assert.Equal(t, map[string]bool{"Random Forest": true, "SVM": true}, reg.Availability())

	rf, err := reg.Get("Random Forest")
	require.NoError(t, err)
	assert.Equal(t, KindRandomForest, rf.Kind())

	svm, err := reg.Get("SVM")
	require.NoError(t, err)
	assert.Equal(t, KindSVM, svm.Kind())
}

func TestRegistry_MissingFileDisablesOnlyThatModel(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "Random Forest.json", testForest())

	reg := NewRegistry(dir, DefaultSlots, logger.NewNop())

	_, err := reg.Get("Random Forest")
	require.NoError(t, err)

	_, err = reg.Get("SVM")
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Contains(t, err.Error(), "SVM")

	status := reg.Status()
	require.Len(t, status, 2)
	assert.True(t, status[0].Available)
	assert.False(t, status[1].Available)
	assert.Equal(t, "Support Vector Machine.json", status[1].File)
	assert.Contains(t, status[1].Error, "model file not found")
}

func TestRegistry_NoFilesStillStarts(t *testing.T) {
	reg := NewRegistry(filepath.Join(t.TempDir(), "does-not-exist"), DefaultSlots, nil)

	for _, name := range []string{"Random Forest", "SVM"} {
		_, err := reg.Get(name)
		assert.ErrorIs(t, err, ErrModelUnavailable)
	}
}

func TestRegistry_BrokenFileTreatedAsUnavailable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Random Forest.json"), []byte(`{"type":"random_forest"}`), 0o644))

	reg := NewRegistry(dir, DefaultSlots, logger.NewNop())

	_, err := reg.Get("Random Forest")
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Contains(t, reg.Status()[0].Error, "invalid model artifact")
}

func TestRegistry_UnknownModel(t *testing.T) {
	reg := NewRegistry(t.TempDir(), DefaultSlots, logger.NewNop())

	_, err := reg.Get("Logistic Regression")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestRegistry_ReloadPicksUpNewFile(t *testing.T) {
	dir := t.TempDir()
	var hookCalls int32
	var lastStatus []models.ModelStatus

	reg := NewRegistry(dir, DefaultSlots, logger.NewNop(), WithReloadHook(func(s []models.ModelStatus) {
		atomic.AddInt32(&hookCalls, 1)
		lastStatus = s
	}))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hookCalls))

	_, err := reg.Get("SVM")
	require.ErrorIs(t, err, ErrModelUnavailable)

	writeArtifact(t, dir, "Support Vector Machine.json", testSVM())
	assert.Equal(t, 1, reg.Reload())

	_, err = reg.Get("SVM")
	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hookCalls))
	assert.True(t, lastStatus[1].Available)

	// Removing the file disables the model again on the next reload
	require.NoError(t, os.Remove(filepath.Join(dir, "Support Vector Machine.json")))
	assert.Equal(t, 0, reg.Reload())
	_, err = reg.Get("SVM")
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestWatcher_ReloadsOnCreate(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry(dir, DefaultSlots, logger.NewNop())

	w, err := NewWatcher(reg, 20*time.Millisecond, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	writeArtifact(t, dir, "Random Forest.json", testForest())

	assert.Eventually(t, func() bool {
		_, err := reg.Get("Random Forest")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_CreatesMissingDirAndReloads(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	reg := NewRegistry(dir, DefaultSlots, logger.NewNop(), WithRetryInterval(0))

	w, err := NewWatcher(reg, 20*time.Millisecond, logger.NewNop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	writeArtifact(t, dir, "Random Forest.json", testForest())

	assert.Eventually(t, func() bool {
		_, err := reg.Get("Random Forest")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_StartFailsWhenDirCannotBeCreated(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	reg := NewRegistry(filepath.Join(blocker, "models"), DefaultSlots, logger.NewNop())
	w, err := NewWatcher(reg, 0, nil)
	require.NoError(t, err)
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}

func TestRegistry_GetRetriesMissingModelAfterInterval(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	reg := NewRegistry(dir, DefaultSlots, logger.NewNop(), WithRetryInterval(10*time.Millisecond))

	_, err := reg.Get("Random Forest")
	require.ErrorIs(t, err, ErrModelUnavailable)

	// Directory and file appear after startup, with no watcher running
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeArtifact(t, dir, "Random Forest.json", testForest())
	time.Sleep(20 * time.Millisecond)

	model, err := reg.Get("Random Forest")
	require.NoError(t, err)
	assert.Equal(t, KindRandomForest, model.Kind())
	assert.True(t, reg.Availability()["Random Forest"])
}

func TestRegistry_GetWithinIntervalDoesNotReload(t *testing.T) {
	dir := t.TempDir()
	var hookCalls int32
	reg := NewRegistry(dir, DefaultSlots, logger.NewNop(),
		WithRetryInterval(time.Hour),
		WithReloadHook(func([]models.ModelStatus) { atomic.AddInt32(&hookCalls, 1) }),
	)

	writeArtifact(t, dir, "Random Forest.json", testForest())
	_, err := reg.Get("Random Forest")
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hookCalls))
}

func TestRegistry_ConcurrentReloadsAreSerialized(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "Random Forest.json", testForest())
	reg := NewRegistry(dir, DefaultSlots, logger.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Reload()
		}()
	}

	// The last reload to finish sees the newest directory state
	writeArtifact(t, dir, "Support Vector Machine.json", testSVM())
	wg.Wait()
	assert.Equal(t, 2, reg.Reload())
	assert.Equal(t, map[string]bool{"Random Forest": true, "SVM": true}, reg.Availability())
}
