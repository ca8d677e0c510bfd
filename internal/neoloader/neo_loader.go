package neoloader

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

// Source resolves NEOs by designation. Unknown designations are simply absent
// from the returned map.
type Source interface {
	GetByDesignations(ctx context.Context, designations []string) (map[string]*domain.NearEarthObject, error)
}

type NEOLoader struct {
	Loader *dataloader.Loader
}

func NewNEOLoader(source Source) *NEOLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		designations := keys.Keys()

		neos, err := source.GetByDesignations(ctx, designations)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Build results in the same order as keys
		results := make([]*dataloader.Result, len(keys))
		for i, designation := range designations {
			if neo, ok := neos[designation]; ok {
				results[i] = &dataloader.Result{Data: neo}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond))

	return &NEOLoader{Loader: loader}
}

// Load resolves a single designation; a nil NEO means it is unknown.
func (l *NEOLoader) Load(ctx context.Context, designation string) (*domain.NearEarthObject, error) {
	data, err := l.Loader.Load(ctx, dataloader.StringKey(designation))()
	if err != nil {
		return nil, err
	}
	return asNEO(data)
}

// LoadMany resolves every designation in one batch. The returned slice is
// aligned with designations.
func (l *NEOLoader) LoadMany(ctx context.Context, designations []string) ([]*domain.NearEarthObject, error) {
	data, errs := l.Loader.LoadMany(ctx, dataloader.NewKeysFromStrings(designations))()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("load neo %q: %w", designations[i], err)
		}
	}

	neos := make([]*domain.NearEarthObject, len(data))
	for i, item := range data {
		neo, err := asNEO(item)
		if err != nil {
			return nil, err
		}
		neos[i] = neo
	}
	return neos, nil
}

func asNEO(data any) (*domain.NearEarthObject, error) {
	if data == nil {
		return nil, nil
	}
	neo, ok := data.(*domain.NearEarthObject)
	if !ok {
		return nil, fmt.Errorf("unexpected loader value %T", data)
	}
	return neo, nil
}
