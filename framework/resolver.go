// Package framework resolves identifiers that the Android platform already
// assigned, such as android:attr/textColor = 0x01010098.
//
// The allocator only needs the narrow Resolver capability; Table serves tests
// and pre-extracted attribute dumps, Jar reads an SDK android.jar directly.
package framework

import (
	"context"

	"github.com/teranos/resgen/res"
)

// Resolver looks up a platform identifier by type and bare name.
// found is false when the platform defines no such resource; err is reserved
// for failures reading the backing artifact.
type Resolver interface {
	Resolve(ctx context.Context, t res.Type, name string) (id int32, found bool, err error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, t res.Type, name string) (int32, bool, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, t res.Type, name string) (int32, bool, error) {
	return f(ctx, t, name)
}

// None resolves nothing. Used when no SDK artifact is configured.
var None Resolver = ResolverFunc(func(context.Context, res.Type, string) (int32, bool, error) {
	return 0, false, nil
})

// Chain consults resolvers in order; the first one that finds the name wins.
// Any error stops the chain.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(ctx context.Context, t res.Type, name string) (int32, bool, error) {
	for _, r := range c {
		if r == nil {
			continue
		}
		id, found, err := r.Resolve(ctx, t, name)
		if err != nil {
			return 0, false, err
		}
		if found {
			return id, true, nil
		}
	}
	return 0, false, nil
}
