// Package keys builds the structured cache keys used by the read-through
// visibility cache. Every key carries the actor scope so a decision
// computed for one actor can never be served to another; batch id sets
// are canonicalized before hashing so permutations of the same set hit
// the same entry.
package keys

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

const (
	viewKeyPrefix   = "view"
	batchKeyPrefix  = "batch"
	markerKeyPrefix = "inv"

	guestScope = "guest"
)

// ActorScope returns the cache key segment identifying the actor.
func ActorScope(actor types.Actor) string {
	id, err := actor.ID()
	if err != nil {
		return guestScope
	}
	return "u:" + strconv.FormatInt(id, 10)
}

// ViewKey returns the cache key for a single-target view. The key begins
// with the entity prefix of the target so that exact prefix invalidation
// can drop every view of the mutated entity across all actor scopes.
func ViewKey(actor types.Actor, target types.Target, params map[string]string) string {
	var b strings.Builder
	b.WriteString(EntityPrefix(types.EntityRef{Kind: target.Kind.Entity(), ID: target.ID}))
	b.WriteString(string(target.Kind))
	b.WriteString("/")
	b.WriteString(ActorScope(actor))
	b.WriteString("/p:")
	b.WriteString(paramsFingerprint(params))
	return b.String()
}

// BatchKey returns the cache key for a multi-id view. Ids are
// deduplicated and sorted before hashing, so any permutation of the same
// set maps to the same entry. Batch keys have no usable entity prefix;
// staleness is detected against invalidation markers instead.
func BatchKey(actor types.Actor, kind types.Kind, ids []int64, params map[string]string) string {
	var b strings.Builder
	b.WriteString(batchKeyPrefix)
	b.WriteString("/")
	b.WriteString(string(kind))
	b.WriteString("/")
	b.WriteString(ActorScope(actor))
	b.WriteString("/ids:")
	b.WriteString(idSetFingerprint(ids))
	b.WriteString("/p:")
	b.WriteString(paramsFingerprint(params))
	return b.String()
}

// EntityPrefix returns the key prefix shared by every single-target view
// of the given entity.
func EntityPrefix(ref types.EntityRef) string {
	return viewKeyPrefix + "/" + ref.String() + "/"
}

// InvalidationKey returns the key of the invalidation marker for the
// given entity.
func InvalidationKey(ref types.EntityRef) string {
	return markerKeyPrefix + "/" + ref.String()
}

// idSetFingerprint canonicalizes ids (sorted, deduplicated) and hashes
// them into a stable fingerprint.
func idSetFingerprint(ids []int64) string {
	sorted := append([]int64(nil), ids...) // copy input to avoid mutating it
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	h := newCacheKeyHasher()
	for _, id := range sorted {
		h.WriteInt64(id)
	}
	return h.Sum()
}

// paramsFingerprint hashes request parameters in sorted key order so two
// equal parameter maps always produce the same fingerprint.
func paramsFingerprint(params map[string]string) string {
	if len(params) == 0 {
		return "0"
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	h := newCacheKeyHasher()
	for _, name := range names {
		h.WriteString(name)
		h.WriteString("=")
		h.WriteString(params[name])
		h.WriteString("&")
	}
	return h.Sum()
}
