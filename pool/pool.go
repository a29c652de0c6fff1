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

import "sync"

// MemberPool is one class's record of member signatures known to exist,
// linked to the pools of its hierarchy neighbors.
//
// Link mutations are append-only and guarded against duplication: the
// supertype link is set at most once, and each interface/subtype link is
// added at most once. A second identical link attempt is a contract
// violation.
//
// Thread Safety: link and declare operations are safe under the
// concurrent build phase; queries are safe once the build has joined.
type MemberPool[T any] struct {
	equivalence Equivalence[T]

	mu         sync.Mutex
	superType  *MemberPool[T]
	interfaces map[*MemberPool[T]]struct{}
	subTypes   map[*MemberPool[T]]struct{}
	members    map[string]struct{}
}

// NewMemberPool creates an empty pool under the given equivalence policy.
func NewMemberPool[T any](equivalence Equivalence[T]) *MemberPool[T] {
	return &MemberPool[T]{
		equivalence: equivalence,
		interfaces:  make(map[*MemberPool[T]]struct{}),
		subTypes:    make(map[*MemberPool[T]]struct{}),
		members:     make(map[string]struct{}),
	}
}

// LinkSupertype sets the pool's supertype link. The link is immutable
// once set; a second call returns ErrSupertypeLinked.
func (p *MemberPool[T]) LinkSupertype(superType *MemberPool[T]) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.superType != nil {
		return ErrSupertypeLinked
	}
	p.superType = superType
	return nil
}

// LinkInterface adds an implemented-interface pool link. Adding the same
// link twice returns ErrDuplicateLink.
func (p *MemberPool[T]) LinkInterface(itf *MemberPool[T]) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.interfaces[itf]; exists {
		return ErrDuplicateLink
	}
	p.interfaces[itf] = struct{}{}
	return nil
}

// LinkSubtype adds a known-subtype pool link. Adding the same link twice
// returns ErrDuplicateLink.
func (p *MemberPool[T]) LinkSubtype(sub *MemberPool[T]) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.subTypes[sub]; exists {
		return ErrDuplicateLink
	}
	p.subTypes[sub] = struct{}{}
	return nil
}

// Declare records a locally declared signature. Declaring an equivalent
// signature twice returns ErrDuplicateMember.
func (p *MemberPool[T]) Declare(member T) error {
	return p.declareKey(p.equivalence.Key(member))
}

func (p *MemberPool[T]) declareKey(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.members[key]; exists {
		return ErrDuplicateMember
	}
	p.members[key] = struct{}{}
	return nil
}

// HasSeenDirectly reports whether the signature is declared locally,
// for callers that handle inheritance themselves.
func (p *MemberPool[T]) HasSeenDirectly(member T) bool {
	return p.hasKey(p.equivalence.Key(member))
}

// HasSeen reports whether the signature is declared locally, reachable
// upward through zero or more supertype/interface links, or reachable
// downward through zero or more subtype links.
//
// Both directions are required: a pass asking "could this signature ever
// be invoked polymorphically within this family" must see inherited
// members (upward) as well as overriding or introducing subclasses
// (downward). Checking only one direction under-reports liveness.
//
// The traversal uses an explicit worklist with a visited set keyed by
// pool identity: hierarchy depth is typically small but not bounded by
// contract, and the interface diamond makes the link structure a DAG.
func (p *MemberPool[T]) HasSeen(member T) bool {
	key := p.equivalence.Key(member)
	return p.hasSeenUpward(key) || p.hasSeenDownward(key)
}

func (p *MemberPool[T]) hasSeenUpward(key string) bool {
	visited := map[*MemberPool[T]]struct{}{p: {}}
	worklist := []*MemberPool[T]{p}

	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if current.hasKey(key) {
			return true
		}

		current.mu.Lock()
		if current.superType != nil {
			if _, seen := visited[current.superType]; !seen {
				visited[current.superType] = struct{}{}
				worklist = append(worklist, current.superType)
			}
		}
		for itf := range current.interfaces {
			if _, seen := visited[itf]; !seen {
				visited[itf] = struct{}{}
				worklist = append(worklist, itf)
			}
		}
		current.mu.Unlock()
	}
	return false
}

func (p *MemberPool[T]) hasSeenDownward(key string) bool {
	visited := map[*MemberPool[T]]struct{}{p: {}}
	worklist := []*MemberPool[T]{p}

	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if current.hasKey(key) {
			return true
		}

		current.mu.Lock()
		for sub := range current.subTypes {
			if _, seen := visited[sub]; !seen {
				visited[sub] = struct{}{}
				worklist = append(worklist, sub)
			}
		}
		current.mu.Unlock()
	}
	return false
}

func (p *MemberPool[T]) hasKey(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, exists := p.members[key]
	return exists
}

// LocalCount returns the number of locally declared signatures.
func (p *MemberPool[T]) LocalCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.members)
}
