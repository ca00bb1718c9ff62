// Package am loads the resgen configuration: built-in defaults, an optional
// user file, the nearest project resgen.toml and RESGEN_* environment
// variables, in increasing order of precedence.
package am

// Config represents the resgen configuration
type Config struct {
	Input     InputConfig     `mapstructure:"input" toml:"input" json:"input" yaml:"input"`
	Output    OutputConfig    `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
	Framework FrameworkConfig `mapstructure:"framework" toml:"framework" json:"framework" yaml:"framework"`
	Log       LogConfig       `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// InputConfig lists the declaration manifests replayed on generate
type InputConfig struct {
	Manifests []string `mapstructure:"manifests" toml:"manifests" json:"manifests" yaml:"manifests"`
}

// OutputConfig configures where and how the R class is written
type OutputConfig struct {
	Base    string `mapstructure:"base" toml:"base" json:"base" yaml:"base"`             // Output root; files land in base/<package dir>/
	Package string `mapstructure:"package" toml:"package" json:"package" yaml:"package"` // Java package; may also come from the manifest
	Java    bool   `mapstructure:"java" toml:"java" json:"java" yaml:"java"`             // Write R.java
	Class   bool   `mapstructure:"class" toml:"class" json:"class" yaml:"class"`         // Write R.class and R$<type>.class
}

// FrameworkConfig points at the platform attribute identifiers used for
// styleables. Both may be set; the jar is consulted first.
type FrameworkConfig struct {
	AndroidJar string `mapstructure:"android_jar" toml:"android_jar" json:"android_jar" yaml:"android_jar"` // SDK platforms/android-NN/android.jar
	AttrsFile  string `mapstructure:"attrs_file" toml:"attrs_file" json:"attrs_file" yaml:"attrs_file"`     // YAML, TOML or JSON attribute table
}

// LogConfig configures the global logger
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity" json:"verbosity" yaml:"verbosity"` // Same scale as repeated -v flags
}

// File names and locations
const (
	ConfigFileName = "resgen.toml"
	EnvPrefix      = "RESGEN"
	UserConfigDir  = ".resgen"

	DefaultDirPermissions = 0755
)
