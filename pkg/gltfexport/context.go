package gltfexport

import (
	"context"
	"fmt"

	"github.com/chazu/facet/pkg/cad"
)

type exportOutcome struct {
	res *Result
	err error
}

// ExportContext runs ExportScene on its own goroutine over a deep copy of
// objects, so the caller may keep editing the originals. If ctx ends first
// ctx.Err() is returned and the in-flight result is discarded when it
// completes.
func ExportContext(ctx context.Context, objects []cad.Object, opts ...Option) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot := cad.CloneAll(objects)

	ch := make(chan exportOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- exportOutcome{err: fmt.Errorf("gltfexport: panic during export: %v", r)}
			}
		}()
		res, err := ExportScene(snapshot, opts...)
		ch <- exportOutcome{res: res, err: err}
	}()

	select {
	case out := <-ch:
		return out.res, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
