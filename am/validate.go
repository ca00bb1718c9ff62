package am

import (
	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/res"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Output.Base == "" {
		return errors.New("output.base cannot be empty")
	}

	// Package is optional here - a manifest may supply it
	if c.Output.Package != "" && !res.ValidPackage(c.Output.Package) {
		return errors.Newf("output.package %q is not a valid java package", c.Output.Package)
	}

	if !c.Output.Java && !c.Output.Class {
		return errors.WithHint(
			errors.New("output.java and output.class are both disabled"),
			"enable at least one output encoding")
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	return nil
}
