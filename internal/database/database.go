// Package database links loaded NEOs and close approaches and answers queries
// over them in memory.
package database

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/idumahg/NearEarthObjects/internal/domain"
	"github.com/idumahg/NearEarthObjects/internal/filters"
	"github.com/idumahg/NearEarthObjects/internal/neoloader"
)

// ErrDuplicateDesignation is returned when two NEOs share a designation.
var ErrDuplicateDesignation = errors.New("duplicate neo designation")

// NEODatabase holds the loaded records. Every approach it keeps is linked to
// its NEO, and every NEO lists its approaches in input order.
type NEODatabase struct {
	neos       []domain.NearEarthObject
	approaches []domain.CloseApproach

	byDesignation map[string]*domain.NearEarthObject
	byName        map[string]*domain.NearEarthObject
	loader        *neoloader.NEOLoader
	logger        *zap.SugaredLogger
}

// New takes ownership of neos and approaches and links them by designation.
// Approaches whose designation matches no NEO are dropped.
func New(ctx context.Context, neos []domain.NearEarthObject, approaches []domain.CloseApproach, logger *zap.SugaredLogger) (*NEODatabase, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	db := &NEODatabase{
		neos:          neos,
		byDesignation: make(map[string]*domain.NearEarthObject, len(neos)),
		byName:        make(map[string]*domain.NearEarthObject),
		logger:        logger,
	}

	for i := range db.neos {
		neo := &db.neos[i]
		neo.Approaches = nil
		if _, exists := db.byDesignation[neo.Designation]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateDesignation, neo.Designation)
		}
		db.byDesignation[neo.Designation] = neo
		if neo.Name != nil {
			if _, exists := db.byName[*neo.Name]; !exists {
				db.byName[*neo.Name] = neo
			}
		}
	}
	db.loader = neoloader.NewNEOLoader(db)

	if err := db.link(ctx, approaches); err != nil {
		return nil, err
	}
	logger.Debugw("database ready", "neos", len(db.neos), "approaches", len(db.approaches))
	return db, nil
}

func (db *NEODatabase) link(ctx context.Context, approaches []domain.CloseApproach) error {
	if len(approaches) == 0 {
		return nil
	}
	designations := make([]string, len(approaches))
	for i := range approaches {
		designations[i] = approaches[i].Designation
	}
	linked, err := db.loader.LoadMany(ctx, designations)
	if err != nil {
		return fmt.Errorf("link approaches: %w", err)
	}

	kept := approaches[:0]
	dropped := 0
	for i := range approaches {
		if linked[i] == nil {
			dropped++
			continue
		}
		approach := approaches[i]
		approach.NEO = linked[i]
		kept = append(kept, approach)
	}
	if dropped > 0 {
		db.logger.Warnw("dropped close approaches without a matching neo", "count", dropped)
	}
	db.approaches = kept

	for i := range db.approaches {
		approach := &db.approaches[i]
		approach.NEO.Approaches = append(approach.NEO.Approaches, approach)
	}
	return nil
}

// GetByDesignations resolves designations against the index. Unknown
// designations are left out.
func (db *NEODatabase) GetByDesignations(_ context.Context, designations []string) (map[string]*domain.NearEarthObject, error) {
	found := make(map[string]*domain.NearEarthObject, len(designations))
	for _, designation := range designations {
		if neo, ok := db.byDesignation[designation]; ok {
			found[designation] = neo
		}
	}
	return found, nil
}

// GetNEOByDesignation returns the NEO with the given primary designation, or nil.
func (db *NEODatabase) GetNEOByDesignation(ctx context.Context, designation string) (*domain.NearEarthObject, error) {
	return db.loader.Load(ctx, designation)
}

// GetNEOByName returns the NEO with the given IAU name, or nil. Names are
// matched exactly and the empty name never matches.
func (db *NEODatabase) GetNEOByName(name string) *domain.NearEarthObject {
	if name == "" {
		return nil
	}
	return db.byName[name]
}

// NEOs yields every NEO in load order.
func (db *NEODatabase) NEOs() iter.Seq[*domain.NearEarthObject] {
	return func(yield func(*domain.NearEarthObject) bool) {
		for i := range db.neos {
			if !yield(&db.neos[i]) {
				return
			}
		}
	}
}

// Approaches yields every linked approach in load order.
func (db *NEODatabase) Approaches() iter.Seq[*domain.CloseApproach] {
	return db.Query()
}

// Query yields, in load order, the approaches that match every filter.
func (db *NEODatabase) Query(filterSet ...filters.Filter) iter.Seq[*domain.CloseApproach] {
	return func(yield func(*domain.CloseApproach) bool) {
		for i := range db.approaches {
			approach := &db.approaches[i]
			if !filters.MatchAll(approach, filterSet) {
				continue
			}
			if !yield(approach) {
				return
			}
		}
	}
}

// Len returns the number of NEOs and linked approaches.
func (db *NEODatabase) Len() (neos int, approaches int) {
	return len(db.neos), len(db.approaches)
}
