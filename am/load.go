package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/resgen/errors"
)

// Loaded is a configuration together with where its values came from
type Loaded struct {
	*Config
	Viper *viper.Viper
	// Sources maps keys set by a config file to that file
	Sources map[string]SourceInfo
	// Files lists the config files merged, lowest precedence first
	Files []string
}

// LoadFrom reads the configuration as seen from dir: defaults, the user
// config, the nearest resgen.toml at or above dir, then RESGEN_* variables.
func LoadFrom(dir string) (*Loaded, error) {
	return load(configPaths(dir))
}

// LoadExplicit is LoadFrom with a given project config file in place of the
// upward search. The file must exist.
func LoadExplicit(path string) (*Loaded, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WrapIOf(err, "config file %s", path)
	}
	var paths []configSource
	if user := UserConfigPath(); user != "" {
		paths = append(paths, configSource{user, SourceUser})
	}
	return load(append(paths, configSource{path, SourceProject}))
}

func load(paths []configSource) (*Loaded, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	loaded := &Loaded{Viper: v, Sources: make(map[string]SourceInfo)}
	if err := loaded.mergeConfigFiles(paths); err != nil {
		return nil, err
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	loaded.Config = cfg
	loaded.resolvePaths()
	return loaded, nil
}

// resolvePaths makes relative paths taken from a config file relative to
// that file's directory, so a project config works from any subdirectory.
func (l *Loaded) resolvePaths() {
	resolve := func(key string, p *string) {
		src, ok := l.Sources[key]
		if !ok || *p == "" || filepath.IsAbs(*p) || src.Path == "" {
			return
		}
		if os.Getenv(EnvVar(key)) != "" {
			return
		}
		*p = filepath.Join(filepath.Dir(src.Path), *p)
	}
	resolve("output.base", &l.Output.Base)
	resolve("framework.android_jar", &l.Framework.AndroidJar)
	resolve("framework.attrs_file", &l.Framework.AttrsFile)
	for i := range l.Input.Manifests {
		resolve("input.manifests", &l.Input.Manifests[i])
	}
}

// LoadWithViper decodes configuration from a prepared viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path over the
// defaults alone. Neither the user config nor environment variables are
// consulted, so the result is what the file itself says.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return LoadWithViper(v)
}

// FindProjectConfig searches for resgen.toml by walking up from dir.
// Returns the path of the first file found, or empty string if none.
func FindProjectConfig(dir string) string {
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// UserConfigPath returns ~/.resgen/resgen.toml, or empty string when the
// home directory is unknown
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, ConfigFileName)
}

// configSource pairs a config file with the source it represents
type configSource struct {
	path   string
	source ConfigSource
}

// configPaths lists candidate files in precedence order (lowest first)
func configPaths(dir string) []configSource {
	var paths []configSource
	if user := UserConfigPath(); user != "" {
		paths = append(paths, configSource{user, SourceUser})
	}
	if project := FindProjectConfig(dir); project != "" {
		paths = append(paths, configSource{project, SourceProject})
	}
	return paths
}

// mergeConfigFiles merges existing files in precedence order. A file that
// exists but cannot be parsed is an error, never skipped.
func (l *Loaded) mergeConfigFiles(paths []configSource) error {
	for _, cs := range paths {
		if _, err := os.Stat(cs.path); err != nil {
			continue
		}
		fileViper := viper.New()
		fileViper.SetConfigFile(cs.path)
		fileViper.SetConfigType("toml")
		if err := fileViper.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", cs.path)
		}
		// Merged as config rather than Set so RESGEN_* variables keep precedence
		if err := l.Viper.MergeConfigMap(fileViper.AllSettings()); err != nil {
			return errors.Wrapf(err, "failed to merge config file %s", cs.path)
		}
		for _, key := range fileViper.AllKeys() {
			l.Sources[key] = SourceInfo{Source: cs.source, Path: cs.path}
		}
		l.Files = append(l.Files, cs.path)
	}
	return nil
}
