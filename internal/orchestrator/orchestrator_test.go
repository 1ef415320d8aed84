package orchestrator

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genweave/genweave/internal/config"
	"github.com/genweave/genweave/internal/engine"
	"github.com/genweave/genweave/internal/errors"
	"github.com/genweave/genweave/internal/guard"
	"github.com/genweave/genweave/internal/logging"
	"github.com/genweave/genweave/internal/project"
	"github.com/genweave/genweave/internal/resourcemap"
)

// stubEngine records launches and returns a fixed result.
type stubEngine struct {
	result   bool
	delay    time.Duration
	mutex    sync.Mutex
	launches int
	lastOpts engine.Options
	inFlight int32
	overlap  int32
}

func (s *stubEngine) Launch(_ context.Context, opts engine.Options) bool {
	if atomic.AddInt32(&s.inFlight, 1) != 1 {
		atomic.StoreInt32(&s.overlap, 1)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mutex.Lock()
	s.launches++
	s.lastOpts = opts
	s.mutex.Unlock()

	atomic.AddInt32(&s.inFlight, -1)
	return s.result
}

func (s *stubEngine) launchCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.launches
}

func (s *stubEngine) options() engine.Options {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastOpts
}

func testLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LevelError,
		Output: io.Discard,
	})
}

func testProject(t *testing.T) *project.Project {
	t.Helper()
	dir := t.TempDir()
	return &project.Project{
		BaseDir:            dir,
		OutputDir:          filepath.Join(dir, "target", "classes"),
		TestOutputDir:      filepath.Join(dir, "target", "test-classes"),
		CompileSourceRoots: []string{filepath.Join(dir, "src")},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Languages:             []config.Language{{Name: "mydsl"}},
		FailOnValidationError: true,
		CompilerSourceLevel:   "1.6",
		CompilerTargetLevel:   "1.6",
	}
}

func newOrchestrator(eng engine.Engine) (*Orchestrator, *resourcemap.Store) {
	store := resourcemap.NewStore()
	return New(guard.New(), store, eng, testLogger()), store
}

func TestRun_Succeeds(t *testing.T) {
	eng := &stubEngine{result: true}
	o, _ := newOrchestrator(eng)

	outcome, err := o.Run(context.Background(), testConfig(), testProject(t))

	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, outcome)
	assert.Equal(t, 1, eng.launchCount())
}

func TestRun_SkipShortCircuits(t *testing.T) {
	eng := &stubEngine{result: false}
	o, store := newOrchestrator(eng)

	cfg := testConfig()
	cfg.Skip = true
	cfg.AutoFillResourceMap = true
	cfg.ProjectMappings = []config.ProjectMapping{{ProjectName: "a", Path: "/a"}}

	outcome, err := o.Run(context.Background(), cfg, testProject(t))

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Equal(t, 0, eng.launchCount())
	assert.Equal(t, 0, store.Len())
}

func TestRun_FailurePolicy(t *testing.T) {
	t.Run("fail on validation error", func(t *testing.T) {
		eng := &stubEngine{result: false}
		o, _ := newOrchestrator(eng)

		_, err := o.Run(context.Background(), testConfig(), testProject(t))

		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		assert.Equal(t, 1, eng.launchCount())
	})

	t.Run("soft failure", func(t *testing.T) {
		eng := &stubEngine{result: false}
		o, _ := newOrchestrator(eng)

		cfg := testConfig()
		cfg.FailOnValidationError = false

		outcome, err := o.Run(context.Background(), cfg, testProject(t))

		require.NoError(t, err)
		assert.Equal(t, OutcomeSoftFailed, outcome)
	})
}

func TestRun_SourceRootDefaults(t *testing.T) {
	eng := &stubEngine{result: true}
	o, _ := newOrchestrator(eng)
	proj := testProject(t)

	_, err := o.Run(context.Background(), testConfig(), proj)
	require.NoError(t, err)

	opts := eng.options()
	assert.Equal(t, proj.CompileSourceRoots, opts.SourceDirs)
	assert.Equal(t, proj.CompileSourceRoots, opts.JavaSourceDirs)
}

func TestRun_ExplicitSourceRootsReplaceDefaults(t *testing.T) {
	eng := &stubEngine{result: true}
	o, _ := newOrchestrator(eng)
	proj := testProject(t)

	cfg := testConfig()
	cfg.SourceRoots = []string{"/custom/models"}

	_, err := o.Run(context.Background(), cfg, proj)
	require.NoError(t, err)

	opts := eng.options()
	// Setting source roots replaces the default entirely, no merging;
	// java source roots still default independently.
	assert.Equal(t, []string{"/custom/models"}, opts.SourceDirs)
	assert.Equal(t, proj.CompileSourceRoots, opts.JavaSourceDirs)
}

func TestRun_ResourceMapAutoFillAndOverrides(t *testing.T) {
	eng := &stubEngine{result: true}
	o, store := newOrchestrator(eng)
	proj := testProject(t)
	proj.Modules = []string{"core"}

	cfg := testConfig()
	cfg.AutoFillResourceMap = true
	cfg.ProjectMappings = []config.ProjectMapping{
		{ProjectName: proj.Name(), Path: "/overridden/location"},
		{ProjectName: "partial", Path: ""},
	}

	_, err := o.Run(context.Background(), cfg, proj)
	require.NoError(t, err)

	// Explicit mapping wins over the auto-discovered project entry.
	uri, ok := store.Get(proj.Name())
	require.True(t, ok)
	assert.Equal(t, resourcemap.CanonicalURI("/overridden/location"), uri)

	coreURI, ok := store.Get("core")
	require.True(t, ok)
	assert.Equal(t, resourcemap.CanonicalURI(proj.ModuleDir("core")), coreURI)

	_, ok = store.Get("partial")
	assert.False(t, ok)

	// The engine sees the populated map.
	assert.Equal(t, store.Snapshot(), eng.options().ResourceMap)
}

func TestRun_AutoFillDisabledByDefault(t *testing.T) {
	eng := &stubEngine{result: true}
	o, store := newOrchestrator(eng)

	_, err := o.Run(context.Background(), testConfig(), testProject(t))
	require.NoError(t, err)

	assert.Equal(t, 0, store.Len())
}

func TestRun_ClasspathExcludesOutputDirs(t *testing.T) {
	eng := &stubEngine{result: true}
	o, _ := newOrchestrator(eng)
	proj := testProject(t)

	cfg := testConfig()
	cfg.Classpath = []string{
		"/lib/a.jar",
		proj.OutputDir,
		"",
		proj.TestOutputDir,
		"/lib/a.jar",
	}

	_, err := o.Run(context.Background(), cfg, proj)
	require.NoError(t, err)

	assert.Equal(t, []string{"/lib/a.jar"}, eng.options().ClasspathEntries)
}

func TestRun_TempDirCreated(t *testing.T) {
	eng := &stubEngine{result: true}
	o, _ := newOrchestrator(eng)
	proj := testProject(t)

	_, err := o.Run(context.Background(), testConfig(), proj)
	require.NoError(t, err)

	tempDir := eng.options().TempDir
	assert.Equal(t, filepath.Join(proj.BaseDir, "target", "genweave-temp"), tempDir)

	info, statErr := os.Stat(tempDir)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestRun_TempDirCreationFailureIsFatal(t *testing.T) {
	eng := &stubEngine{result: true}
	o, _ := newOrchestrator(eng)
	proj := testProject(t)

	// Occupy the temp dir path with a plain file so MkdirAll fails and
	// the directory still does not exist afterwards.
	blocker := filepath.Join(proj.BaseDir, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	cfg := testConfig()
	cfg.TmpDirectory = blocker

	_, err := o.Run(context.Background(), cfg, proj)

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Equal(t, 0, eng.launchCount())
}

func TestRun_ExistingTempDirIsReused(t *testing.T) {
	eng := &stubEngine{result: true}
	o, _ := newOrchestrator(eng)
	proj := testProject(t)

	existing := filepath.Join(proj.BaseDir, "already-there")
	require.NoError(t, os.MkdirAll(existing, 0755))

	cfg := testConfig()
	cfg.TmpDirectory = existing

	_, err := o.Run(context.Background(), cfg, proj)

	require.NoError(t, err)
	assert.Equal(t, existing, eng.options().TempDir)
}

func TestRun_ClusteringPassedThrough(t *testing.T) {
	eng := &stubEngine{result: true}
	o, _ := newOrchestrator(eng)

	cfg := testConfig()
	cfg.Clustering = &config.ClusteringConfig{
		MinimumFreeMemory:        50,
		MinimumClusterSize:       20,
		MinimumPercentFreeMemory: 10,
	}

	_, err := o.Run(context.Background(), cfg, testProject(t))
	require.NoError(t, err)

	clustering := eng.options().Clustering
	require.NotNil(t, clustering)
	assert.Equal(t, 50, clustering.MinimumFreeMemory)
	assert.Equal(t, 20, clustering.MinimumClusterSize)
	assert.Equal(t, 10, clustering.MinimumPercentFreeMemory)
}

func TestRun_NoClusteringMeansNil(t *testing.T) {
	eng := &stubEngine{result: true}
	o, _ := newOrchestrator(eng)

	_, err := o.Run(context.Background(), testConfig(), testProject(t))
	require.NoError(t, err)

	assert.Nil(t, eng.options().Clustering)
}

func TestRun_LookupFilterCompiled(t *testing.T) {
	eng := &stubEngine{result: true}
	o, _ := newOrchestrator(eng)

	cfg := testConfig()
	cfg.ClasspathLookupFilter = `\.jar$`

	_, err := o.Run(context.Background(), cfg, testProject(t))
	require.NoError(t, err)

	filter := eng.options().ClasspathLookupFilter
	require.NotNil(t, filter)
	assert.True(t, filter.MatchString("/lib/a.jar"))
	assert.False(t, filter.MatchString("/lib/a.zip"))
}

func TestRun_ConcurrentRunsSerialize(t *testing.T) {
	eng := &stubEngine{result: true, delay: 5 * time.Millisecond}
	o, store := newOrchestrator(eng)

	cfg := testConfig()
	cfg.AutoFillResourceMap = true

	const runs = 4
	projects := make([]*project.Project, runs)
	for i := range projects {
		projects[i] = testProject(t)
	}

	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(p *project.Project) {
			defer wg.Done()
			_, err := o.Run(context.Background(), cfg, p)
			assert.NoError(t, err)
		}(projects[i])
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&eng.overlap), "guarded bodies overlapped")
	assert.Equal(t, runs, eng.launchCount())
	// One registration per project, distinct directory names, no lost
	// updates.
	assert.Equal(t, runs, store.Len())
}

func TestRun_ResourceMapAccumulatesAcrossRuns(t *testing.T) {
	eng := &stubEngine{result: true}
	o, store := newOrchestrator(eng)

	cfg := testConfig()
	cfg.AutoFillResourceMap = true

	first := testProject(t)
	second := testProject(t)

	_, err := o.Run(context.Background(), cfg, first)
	require.NoError(t, err)
	_, err = o.Run(context.Background(), cfg, second)
	require.NoError(t, err)

	_, ok := store.Get(first.Name())
	assert.True(t, ok)
	_, ok = store.Get(second.Name())
	assert.True(t, ok)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "succeeded", OutcomeSucceeded.String())
	assert.Equal(t, "soft-failed", OutcomeSoftFailed.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
