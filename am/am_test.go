package am

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty directory so user config never leaks in
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"output.base", "output.package", "output.java", "output.class", "framework.android_jar", "log.verbosity"} {
		t.Setenv(EnvVar(key), "")
		os.Unsetenv(EnvVar(key))
	}
	return home
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "gen", cfg.Output.Base)
	assert.Empty(t, cfg.Output.Package)
	assert.True(t, cfg.Output.Java)
	assert.True(t, cfg.Output.Class)
	assert.Empty(t, cfg.Framework.AndroidJar)
	assert.Empty(t, cfg.Input.Manifests)
	assert.Equal(t, 0, cfg.Log.Verbosity)
	assert.Equal(t, cfg, Default())
}

func TestLoadFrom_ProjectConfigUpward(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	path := writeConfig(t, root, `
[input]
manifests = ["res/declarations.yaml"]

[output]
base = "build/generated"
package = "com.example.lib"
java = false
`)
	nested := filepath.Join(root, "src", "main")
	require.NoError(t, os.MkdirAll(nested, 0755))

	loaded, err := LoadFrom(nested)
	require.NoError(t, err)
	assert.Equal(t, "com.example.lib", loaded.Output.Package)
	assert.False(t, loaded.Output.Java)
	assert.True(t, loaded.Output.Class, "unset keys keep their default")
	assert.Equal(t, []string{path}, loaded.Files)

	// Relative paths from the file resolve against its directory
	assert.Equal(t, filepath.Join(root, "build/generated"), loaded.Output.Base)
	assert.Equal(t, []string{filepath.Join(root, "res/declarations.yaml")}, loaded.Input.Manifests)

	assert.Equal(t, SourceInfo{Source: SourceProject, Path: path}, loaded.Sources["output.base"])
}

func TestLoadFrom_UserConfigBelowProject(t *testing.T) {
	home := isolate(t)
	userDir := filepath.Join(home, UserConfigDir)
	require.NoError(t, os.MkdirAll(userDir, 0755))
	writeConfig(t, userDir, `
[output]
base = "user-out"
package = "com.user"

[framework]
android_jar = "/sdk/android.jar"
`)
	project := t.TempDir()
	writeConfig(t, project, `
[output]
package = "com.project"
`)

	loaded, err := LoadFrom(project)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(userDir, "user-out"), loaded.Output.Base)
	assert.Equal(t, "com.project", loaded.Output.Package)
	assert.Equal(t, "/sdk/android.jar", loaded.Framework.AndroidJar)
	assert.Len(t, loaded.Files, 2)
	assert.Equal(t, SourceUser, loaded.Sources["framework.android_jar"].Source)
	assert.Equal(t, SourceProject, loaded.Sources["output.package"].Source)
}

func TestLoadFrom_EnvironmentWins(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	writeConfig(t, project, `
[output]
package = "com.project"
`)
	t.Setenv("RESGEN_OUTPUT_PACKAGE", "com.env")
	t.Setenv("RESGEN_OUTPUT_CLASS", "false")
	t.Setenv("RESGEN_LOG_VERBOSITY", "2")

	loaded, err := LoadFrom(project)
	require.NoError(t, err)
	assert.Equal(t, "com.env", loaded.Output.Package)
	assert.False(t, loaded.Output.Class)
	assert.Equal(t, 2, loaded.Log.Verbosity)

	sources := make(map[string]SettingInfo)
	for _, s := range loaded.Settings() {
		sources[s.Key] = s
	}
	assert.Equal(t, SourceEnvironment, sources["output.package"].Source)
	assert.Equal(t, "RESGEN_OUTPUT_PACKAGE", sources["output.package"].SourcePath)
	assert.Equal(t, SourceDefault, sources["output.base"].Source)
}

func TestLoadFrom_MalformedConfig(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	writeConfig(t, project, "[output\nbase = ")

	_, err := LoadFrom(project)
	assert.Error(t, err)
}

func TestSettingsSorted(t *testing.T) {
	isolate(t)
	loaded, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	settings := loaded.Settings()
	require.NotEmpty(t, settings)
	for i := 1; i < len(settings); i++ {
		assert.Less(t, settings[i-1].Key, settings[i].Key)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Output.Package = "com.example.lib"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with package", func(*Config) {}, false},
		{"package left to manifest", func(c *Config) { c.Output.Package = "" }, false},
		{"invalid package", func(c *Config) { c.Output.Package = "com.1x" }, true},
		{"empty base", func(c *Config) { c.Output.Base = "" }, true},
		{"no outputs", func(c *Config) { c.Output.Java, c.Output.Class = false, false }, true},
		{"java only", func(c *Config) { c.Output.Class = false }, false},
		{"negative verbosity", func(c *Config) { c.Log.Verbosity = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, WriteDefault(path, "com.example.lib"))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	want := Default()
	want.Output.Package = "com.example.lib"
	assert.Equal(t, want.Output, cfg.Output)
	assert.Equal(t, want.Framework, cfg.Framework)
	assert.Equal(t, want.Log, cfg.Log)
	assert.Empty(t, cfg.Input.Manifests)
}

func TestSaveRotatesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	for i, pkg := range []string{"a.one", "a.two", "a.three", "a.four", "a.five"} {
		require.NoError(t, WriteDefault(path, pkg), "write %d", i)
	}

	current, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a.five", current.Output.Package)

	for n, want := range map[int]string{1: "a.four", 2: "a.three", 3: "a.two"} {
		cfg, err := LoadFromFile(backupPath(path, n))
		require.NoError(t, err)
		assert.Equal(t, want, cfg.Output.Package, ".back%d", n)
	}
	_, err = os.Stat(path + ".back4")
	assert.True(t, os.IsNotExist(err))

	assert.True(t, IsBackupFile(backupPath(path, 2)))
	assert.False(t, IsBackupFile(path))
}

func TestWatcherReloadsOnChange(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "[output]\npackage = \"com.before\"\n")
	manifest := filepath.Join(dir, "declarations.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("declarations: []\n"), 0644))

	w, err := NewWatcher(dir, configPath, manifest)
	require.NoError(t, err)
	defer w.Close()
	w.SetDebounce(10 * time.Millisecond)

	reloaded := make(chan *Config, 4)
	w.OnReload(func(cfg *Config) error {
		reloaded <- cfg
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(configPath, []byte("[output]\npackage = \"com.after\"\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "com.after", cfg.Output.Package)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after config change")
	}
}

func TestLoadExplicit(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nbase = \"out\"\n"), 0644))

	loaded, err := LoadExplicit(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out"), loaded.Output.Base)
	assert.Equal(t, []string{path}, loaded.Files)

	_, err = LoadExplicit(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestWatcherReloadsDoNotOverlap(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	defer w.Close()
	w.SetLoader(func() (*Loaded, error) {
		return &Loaded{Config: Default()}, nil
	})

	var active, peak, calls atomic.Int32
	w.OnReload(func(*Config) error {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		active.Add(-1)
		calls.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.reload())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, int32(1), peak.Load(), "a reload started while another was running")
}

func TestLoadFromFile(t *testing.T) {
	isolate(t)
	t.Setenv(EnvVar("output.package"), "com.from.env")
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\npackage = \"com.from.file\"\nclass = false\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "com.from.file", cfg.Output.Package, "environment is not consulted")
	assert.False(t, cfg.Output.Class)
	assert.True(t, cfg.Output.Java, "unset keys keep their defaults")
	assert.Equal(t, "gen", cfg.Output.Base)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
