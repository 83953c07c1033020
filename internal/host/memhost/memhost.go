// Package memhost is an in-memory implementation of host.Host, shipped
// alongside the engine so it is runnable and testable end-to-end without
// a real database underneath — the same role lib/db/engines/maple plays
// for db.KVDB.
package memhost

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/lsetdb/lset/internal/host"
	ilset "github.com/lsetdb/lset/internal/lset"
)

// topEntry is everything memhost keeps for one top-record key: the
// record itself, its sub-records (keyed by digest), and the bin flags
// the engine has asserted. mu guards mutation of this entry; memhost
// does not hold it across an entire engine call (the Host interface
// gives it no call-span hook to do so) — only around the individual
// mutating operations, so two calls racing on the same key can still
// interleave. Spec §5 assigns full per-key serialization to the host;
// this is a partial, good-enough-for-testing approximation of that
// contract (see DESIGN.md).
type topEntry struct {
	mu    sync.Mutex
	rec   *host.TopRecord
	subs  map[host.Digest]*host.SubRecord
	flags map[string]host.BinFlags
}

// MemHost is a concurrent, process-local host.Host backed by an
// xsync.MapOf keyed by top-record key, mirroring the sharded-map
// approach lib/db/engines/maple/internal uses for its own record table.
type MemHost struct {
	tops *xsync.MapOf[string, *topEntry]
}

// New returns an empty MemHost.
func New() *MemHost {
	return &MemHost{tops: xsync.NewMapOf[string, *topEntry]()}
}

func (h *MemHost) entry(key string, create bool) (*topEntry, bool) {
	if e, ok := h.tops.Load(key); ok {
		return e, true
	}
	if !create {
		return nil, false
	}
	e := &topEntry{
		rec:   &host.TopRecord{Key: key, Bins: map[string]any{}},
		subs:  map[host.Digest]*host.SubRecord{},
		flags: map[string]host.BinFlags{},
	}
	actual, _ := h.tops.LoadOrStore(key, e)
	return actual, true
}

// OpenTop implements host.Host.
func (h *MemHost) OpenTop(key string) (*host.TopRecord, bool, error) {
	e, ok := h.tops.Load(key)
	if !ok {
		return nil, false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec, true, nil
}

// UpdateTop implements host.Host.
func (h *MemHost) UpdateTop(rec *host.TopRecord) error {
	e, _ := h.entry(rec.Key, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec = rec
	return nil
}

// RemoveTop implements host.Host.
func (h *MemHost) RemoveTop(key string) error {
	h.tops.Delete(key)
	return nil
}

// NewDigest implements host.Host using a random UUID as the content
// identifier — memhost has no actual content-addressing scheme, just a
// unique handle per sub-record.
func (h *MemHost) NewDigest() host.Digest {
	return host.Digest(uuid.NewString())
}

// SetRecordType implements host.Host. memhost has no on-disk record
// header to flag; this is a no-op kept to satisfy the interface the way
// a real host would require it.
func (h *MemHost) SetRecordType(rec *host.TopRecord) {}

// SetBinFlags implements host.Host, recording the flags asserted on bin
// so tests can assert on them.
func (h *MemHost) SetBinFlags(rec *host.TopRecord, bin string, flags host.BinFlags) {
	e, _ := h.entry(rec.Key, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flags[bin] |= flags
}

// BinFlags returns the flags asserted on bin, for test assertions.
func (h *MemHost) BinFlags(topKey, bin string) host.BinFlags {
	e, ok := h.tops.Load(topKey)
	if !ok {
		return host.BinFlagNone
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flags[bin]
}

// CreateSubRecord implements host.Host.
func (h *MemHost) CreateSubRecord(topKey string) (*host.SubRecord, error) {
	e, ok := h.entry(topKey, true)
	if !ok {
		return nil, fmt.Errorf("memhost: no such top record %q", topKey)
	}
	sub := &host.SubRecord{Digest: h.NewDigest(), Bins: map[string]any{}}
	e.mu.Lock()
	e.subs[sub.Digest] = sub
	e.mu.Unlock()
	return sub, nil
}

// OpenSubRecord implements host.Host.
func (h *MemHost) OpenSubRecord(topKey string, digest host.Digest) (*host.SubRecord, error) {
	e, ok := h.tops.Load(topKey)
	if !ok {
		return nil, fmt.Errorf("memhost: no such top record %q", topKey)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	sub, ok := e.subs[digest]
	if !ok {
		return nil, fmt.Errorf("memhost: no such sub-record %s", digest)
	}
	return sub, nil
}

// UpdateSubRecord implements host.Host. Sub-records are held by
// reference, so whatever the caller mutated through context.go is
// already visible; nothing further to persist.
func (h *MemHost) UpdateSubRecord(sub *host.SubRecord) error {
	return nil
}

// CloseSubRecord implements host.Host as a no-op; memhost has no
// handle/connection cost to release.
func (h *MemHost) CloseSubRecord(sub *host.SubRecord) error {
	return nil
}

// RemoveSubRecord implements host.Host. Removing the Existence
// Sub-Record cascades removal of every sub-record sharing its
// EsrDigest, the way a real LDT host ties sub-record lifetime to the
// ESR (spec §3 "Sub-record (LDR)").
func (h *MemHost) RemoveSubRecord(topKey string, digest host.Digest) error {
	e, ok := h.tops.Load(topKey)
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	sub, ok := e.subs[digest]
	if !ok {
		return nil
	}
	delete(e.subs, digest)

	if pm, ok := propertyMapOf(sub); ok && pm.RecType == ilset.RecTypeESR {
		esrDigest := pm.SelfDigest
		for d, s := range e.subs {
			if spm, ok := propertyMapOf(s); ok && spm.EsrDigest == esrDigest {
				delete(e.subs, d)
			}
		}
	}
	return nil
}

// propertyMapOf locates the PropertyMap among a sub-record's bins,
// regardless of which bin name carries it — memhost stays agnostic of
// the engine's specific bin-naming scheme.
func propertyMapOf(sub *host.SubRecord) (ilset.PropertyMap, bool) {
	for _, v := range sub.Bins {
		if pm, ok := v.(ilset.PropertyMap); ok {
			return pm, true
		}
	}
	return ilset.PropertyMap{}, false
}

// Now implements host.Host.
func (h *MemHost) Now() int64 {
	return time.Now().UnixNano()
}
