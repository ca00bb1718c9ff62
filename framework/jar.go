package framework

import (
	"context"
	"io"
	"sync"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/teranos/resgen/classfile"
	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/logger"
	"github.com/teranos/resgen/res"
)

// Jar resolves platform identifiers from the android/R$<type> classes of an
// SDK android.jar. Each type's class is read once, on first lookup.
type Jar struct {
	path   string
	logger *zap.SugaredLogger

	mu     sync.Mutex
	loaded map[res.Type]map[string]int32
}

// NewJar creates a resolver over the android.jar at path. The file is not
// opened until the first lookup.
func NewJar(path string) *Jar {
	return &Jar{
		path:   path,
		logger: logger.ComponentLogger("framework.jar"),
		loaded: make(map[res.Type]map[string]int32),
	}
}

// Path returns the android.jar location.
func (j *Jar) Path() string {
	return j.path
}

// Resolve implements Resolver.
func (j *Jar) Resolve(ctx context.Context, t res.Type, name string) (int32, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	ids, err := j.ids(t)
	if err != nil {
		return 0, false, err
	}
	id, ok := ids[name]
	return id, ok, nil
}

func (j *Jar) ids(t res.Type) (map[string]int32, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if ids, ok := j.loaded[t]; ok {
		return ids, nil
	}
	ids, err := j.load(t)
	if err != nil {
		return nil, err
	}
	j.loaded[t] = ids
	return ids, nil
}

func (j *Jar) load(t res.Type) (map[string]int32, error) {
	zr, err := zip.OpenReader(j.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", j.path)
	}
	defer zr.Close()

	entry := "android/R$" + t.String() + ".class"
	for _, f := range zr.File {
		if f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s in %s", entry, j.path)
		}
		ids, err := decodeIDs(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s in %s", entry, j.path)
		}
		j.logger.Debugw("loaded framework identifiers",
			logger.FieldPath, j.path,
			logger.FieldType, t.String(),
			logger.FieldCount, len(ids))
		return ids, nil
	}

	// A platform without this type simply defines no identifiers for it
	j.logger.Debugw("framework class not present", logger.FieldPath, j.path, logger.FieldFile, entry)
	return map[string]int32{}, nil
}

func decodeIDs(r io.Reader) (map[string]int32, error) {
	class, err := classfile.Decode(r)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int32, len(class.Fields))
	for _, f := range class.Fields {
		if f.Array {
			continue
		}
		ids[f.Name] = f.Value
	}
	return ids, nil
}
