// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/dexmill/dex"
	"github.com/AleutianAI/dexmill/hierarchy"
)

// MemberFunc extracts the locally declared members of one class.
type MemberFunc[T any] func(*hierarchy.ClassDef) []T

// Options configures Collection behavior.
type Options struct {
	// WorkerCount is the number of parallel build workers.
	// Default: runtime.NumCPU()
	WorkerCount int

	// Logger receives build-phase logging. May be nil to disable.
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		WorkerCount: runtime.NumCPU(),
	}
}

// Option is a functional option for configuring a Collection.
type Option func(*Options)

// WithWorkerCount sets the number of parallel build workers.
func WithWorkerCount(n int) Option {
	return func(o *Options) {
		o.WorkerCount = n
	}
}

// WithLogger sets the build-phase logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Collection owns the class-to-pool mapping and builds it, either for
// the whole program or incrementally for one class's hierarchy.
//
// Thread Safety: BuildAll, BuildForHierarchy and MarkIfNotSeen are safe
// for concurrent use. The intended discipline is strict build-then-query:
// all build calls must have joined before HasSeen queries run.
type Collection[T any] struct {
	provider    hierarchy.Provider
	equivalence Equivalence[T]
	members     MemberFunc[T]
	opts        Options

	mu    sync.Mutex
	pools map[*hierarchy.ClassDef]*MemberPool[T]
	// claimed records classes a build unit has been submitted for.
	// Claiming before submitting is what keeps two overlapping
	// incremental builds from double-building the same class.
	claimed map[*hierarchy.ClassDef]struct{}

	// markMu serializes MarkIfNotSeen's check-then-declare so that of two
	// concurrent callers on the same (class, signature) pair exactly one
	// observes "not seen".
	markMu sync.Mutex
}

// NewCollection creates an empty collection over the given type graph,
// equivalence policy and member extractor.
func NewCollection[T any](p hierarchy.Provider, equivalence Equivalence[T], members MemberFunc[T], opts ...Option) *Collection[T] {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.WorkerCount <= 0 {
		options.WorkerCount = runtime.NumCPU()
	}
	return &Collection[T]{
		provider:    p,
		equivalence: equivalence,
		members:     members,
		opts:        options,
		pools:       make(map[*hierarchy.ClassDef]*MemberPool[T]),
		claimed:     make(map[*hierarchy.ClassDef]struct{}),
	}
}

// NewMethodCollection creates a collection of method pools under the
// name-plus-prototype signature policy.
func NewMethodCollection(p hierarchy.Provider, opts ...Option) *Collection[*dex.Method] {
	return NewCollection(p, MethodSignature{}, func(def *hierarchy.ClassDef) []*dex.Method {
		return def.Methods
	}, opts...)
}

// NewFieldCollection creates a collection of field pools under the
// name-plus-type signature policy.
func NewFieldCollection(p hierarchy.Provider, opts ...Option) *Collection[*dex.Field] {
	return NewCollection(p, FieldSignature{}, func(def *hierarchy.ClassDef) []*dex.Field {
		return def.Fields
	}, opts...)
}

// BuildAll builds a member pool for every loaded class.
//
// Description:
//
//	Classes are scheduled in top-down hierarchy order (a class only
//	after its supertype and interfaces), one independent unit per class
//	on a bounded worker pool. Each unit declares the class's local
//	members, links its pool to its neighbor pools and registers itself
//	as a subtype of those neighbors. BuildAll blocks until every unit
//	has completed.
//
// Outputs:
//   - error: the first unit failure, surfaced after all in-flight units
//     finish; units are never cancelled. A non-nil error means the
//     collection must not be used.
//
// Thread Safety: safe for concurrent use.
func (c *Collection[T]) BuildAll(ctx context.Context) error {
	buildID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "pool.Collection.BuildAll",
		trace.WithAttributes(
			attribute.String("build_id", buildID),
			attribute.Int("classes", len(c.provider.Classes())),
		),
	)
	defer span.End()

	if c.opts.Logger != nil {
		c.opts.Logger.Debug("building member pool collection",
			slog.String("build_id", buildID),
			slog.Int("classes", len(c.provider.Classes())),
			slog.Int("workers", c.opts.WorkerCount))
	}

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(c.opts.WorkerCount)

	scheduled := 0
	_ = hierarchy.TopDown(ctx, c.provider, func(def *hierarchy.ClassDef) error {
		if !c.claim(def) {
			return nil
		}
		scheduled++
		g.Go(func() error {
			return c.buildClass(def)
		})
		return nil
	})

	err := g.Wait()
	recordBuildMetrics(ctx, time.Since(start), scheduled, err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("building member pools: %w", err)
	}
	span.SetAttributes(attribute.Int("pools_built", scheduled))
	return nil
}

// BuildForHierarchy builds pools for one class's hierarchy: its inclusive
// supertypes and exclusive subtypes, skipping classes already built or
// claimed by another build. Returns the class's pool once every unit
// submitted by this call has completed.
//
// A class claimed by a concurrent in-flight build may not have a
// completed pool when this call returns; in that case the returned error
// is ErrPoolNotFound and the caller should retry after the other build
// joins.
func (c *Collection[T]) BuildForHierarchy(ctx context.Context, class *hierarchy.ClassDef) (*MemberPool[T], error) {
	buildID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "pool.Collection.BuildForHierarchy",
		trace.WithAttributes(
			attribute.String("build_id", buildID),
			attribute.String("class", class.Type.String()),
		),
	)
	defer span.End()

	stop := func(def *hierarchy.ClassDef) bool {
		return c.isClaimed(def)
	}

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(c.opts.WorkerCount)

	scheduled := 0
	submit := func(def *hierarchy.ClassDef) {
		if !c.claim(def) {
			return
		}
		scheduled++
		g.Go(func() error {
			return c.buildClass(def)
		})
	}
	for def := range hierarchy.SuperTypesInclusive(ctx, c.provider, class, stop) {
		submit(def)
	}
	for def := range hierarchy.SubTypesExclusive(ctx, c.provider, class, stop) {
		submit(def)
	}

	err := g.Wait()
	recordBuildMetrics(ctx, time.Since(start), scheduled, err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("building member pool hierarchy for %s: %w", class.Type, err)
	}

	pool, ok := c.poolFor(class)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, class.Type)
	}
	span.SetAttributes(attribute.Int("pools_built", scheduled))
	return pool, nil
}

// buildClass is one unit of build work: declare local members, link to
// neighbor pools, register as their subtype. Pools for not-yet-built
// neighbors are created eagerly; the neighbor's own unit fills them in.
func (c *Collection[T]) buildClass(def *hierarchy.ClassDef) error {
	p := c.ensurePool(def)

	for _, member := range c.members(def) {
		if err := p.Declare(member); err != nil {
			return fmt.Errorf("declare %v in %s: %w", member, def.Type, err)
		}
	}

	if def.SuperType != nil {
		if superDef := c.provider.DefinitionFor(def.SuperType); superDef != nil {
			superPool := c.ensurePool(superDef)
			if err := p.LinkSupertype(superPool); err != nil {
				return fmt.Errorf("link supertype of %s: %w", def.Type, err)
			}
			if err := superPool.LinkSubtype(p); err != nil {
				return fmt.Errorf("register %s as subtype of %s: %w", def.Type, def.SuperType, err)
			}
		}
	}

	for _, itf := range def.Interfaces {
		itfDef := c.provider.DefinitionFor(itf)
		if itfDef == nil {
			continue
		}
		itfPool := c.ensurePool(itfDef)
		if err := p.LinkInterface(itfPool); err != nil {
			return fmt.Errorf("link interface %s of %s: %w", itf, def.Type, err)
		}
		if err := itfPool.LinkSubtype(p); err != nil {
			return fmt.Errorf("register %s as subtype of %s: %w", def.Type, itf, err)
		}
	}
	return nil
}

// MarkIfNotSeen atomically checks HasSeen for the class's pool and, if
// the signature has not been seen anywhere in the family, records it as
// a local declaration. Returns whether the signature was already seen.
//
// Of two concurrent callers on the same (class, signature) pair, exactly
// one observes "not seen" (false) and exactly one local declaration
// results.
func (c *Collection[T]) MarkIfNotSeen(class *hierarchy.ClassDef, member T) (bool, error) {
	p, ok := c.poolFor(class)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrPoolNotFound, class.Type)
	}

	c.markMu.Lock()
	defer c.markMu.Unlock()
	if p.HasSeen(member) {
		return true, nil
	}
	if err := p.Declare(member); err != nil {
		return false, err
	}
	return false, nil
}

// HasPool reports whether the class has a completed-or-in-progress pool.
func (c *Collection[T]) HasPool(class *hierarchy.ClassDef) bool {
	_, ok := c.poolFor(class)
	return ok
}

// Pool returns the class's member pool, or ErrPoolNotFound if no build
// has created one.
func (c *Collection[T]) Pool(class *hierarchy.ClassDef) (*MemberPool[T], error) {
	p, ok := c.poolFor(class)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, class.Type)
	}
	return p, nil
}

// Size returns the number of pools in the collection.
func (c *Collection[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pools)
}

func (c *Collection[T]) ensurePool(def *hierarchy.ClassDef) *MemberPool[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pools[def]; ok {
		return p
	}
	p := NewMemberPool(c.equivalence)
	c.pools[def] = p
	return p
}

func (c *Collection[T]) poolFor(def *hierarchy.ClassDef) (*MemberPool[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pools[def]
	return p, ok
}

// claim reserves def for the calling build; it returns false if another
// build already claimed it.
func (c *Collection[T]) claim(def *hierarchy.ClassDef) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.claimed[def]; ok {
		return false
	}
	c.claimed[def] = struct{}{}
	return true
}

func (c *Collection[T]) isClaimed(def *hierarchy.ClassDef) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.claimed[def]
	return ok
}
