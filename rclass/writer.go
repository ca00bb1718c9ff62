// Package rclass emits the placeholder R class of a library package, as Java
// source and as JVM class files, from one allocated symbol table.
package rclass

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/framework"
	"github.com/teranos/resgen/logger"
	"github.com/teranos/resgen/res"
	"github.com/teranos/resgen/symbols"
)

// Options configures a Writer.
type Options struct {
	// Base is the output root; files land under Base/<package dir>/.
	Base string
	// Package is the Java package of the generated R class.
	Package string

	IncludeJava  bool
	IncludeClass bool
}

// Result describes one flush.
type Result struct {
	Table *symbols.Table
	// Java is the R.java path, empty when Java output is disabled.
	Java string
	// Classes lists the class files written, outer class first.
	Classes []string
}

// Writer accumulates declarations and writes both encodings of the R class.
// It is a symbols.Sink.
type Writer struct {
	*symbols.Accumulator

	opts   Options
	logger *zap.SugaredLogger
}

// NewWriter creates a writer. resolver supplies platform attribute
// identifiers for styleables and may be nil.
func NewWriter(opts Options, resolver framework.Resolver) (*Writer, error) {
	if !res.ValidPackage(opts.Package) {
		return nil, errors.Mark(
			errors.Newf("invalid java package %q", opts.Package),
			errors.ErrInvalidDeclaration)
	}
	return &Writer{
		Accumulator: symbols.NewAccumulator(resolver),
		opts:        opts,
		logger:      logger.ComponentLogger("rclass").With(logger.FieldPackage, opts.Package),
	}, nil
}

// Options returns the writer configuration.
func (w *Writer) Options() Options {
	return w.opts
}

// Flush allocates identifiers once and writes every enabled encoding from
// the same table. All files are staged first and moved into place together,
// so a failure leaves the previous output as it was. Attribute lookup
// failures and file system failures are reported as I/O errors; the original
// kind stays visible through errors.Is.
func (w *Writer) Flush(ctx context.Context) (*Result, error) {
	table, err := w.Build(ctx)
	if err != nil {
		if errors.IsAttrLookupError(err) {
			return nil, errors.WrapIOf(err, "failed to generate R for %s", w.opts.Package)
		}
		return nil, errors.Wrapf(err, "failed to generate R for %s", w.opts.Package)
	}
	w.logger.Debugw("allocated symbols",
		logger.FieldTypes, len(table.Groups),
		logger.FieldCount, table.Len())

	var tx transaction
	result := &Result{Table: table}
	if w.opts.IncludeClass {
		paths, err := stageClasses(&tx, table, w.opts.Base, w.opts.Package)
		if err != nil {
			tx.discard()
			return nil, errors.WrapIO(err, "failed to write R class files")
		}
		result.Classes = paths
	}
	if w.opts.IncludeJava {
		path, err := stageJava(&tx, table, w.opts.Base, w.opts.Package)
		if err != nil {
			tx.discard()
			return nil, errors.WrapIO(err, "failed to write R.java")
		}
		result.Java = path
	}
	if err := tx.commit(); err != nil {
		return nil, errors.WrapIOf(err, "failed to replace R output for %s", w.opts.Package)
	}

	if len(result.Classes) > 0 {
		w.logger.Debugw("wrote class files", logger.FieldPath, ClassDir(w.opts.Base, w.opts.Package), logger.FieldCount, len(result.Classes))
	}
	if result.Java != "" {
		w.logger.Debugw("wrote java source", logger.FieldPath, result.Java)
	}
	return result, nil
}
