package am

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.manifests", []string{})

	v.SetDefault("output.base", "gen")
	v.SetDefault("output.package", "")
	v.SetDefault("output.java", true)
	v.SetDefault("output.class", true)

	// Empty means no platform attributes: every styleable member must be local
	v.SetDefault("framework.android_jar", "")
	v.SetDefault("framework.attrs_file", "")

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// defaults always decode
		panic(err)
	}
	return cfg
}
