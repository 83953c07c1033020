// Package dbhost is a host.Host implementation backed by a db.KVDB, the
// same persistence interface the teacher's maple engine implements. It
// plays the role for a real (persistent) backend that internal/host/memhost
// plays for testing: one adapter translating the engine's TopRecord/
// SubRecord calls onto a flat key-value store.
//
// TopRecord and SubRecord bins hold concretely typed internal values
// (*lset.Descriptor, lset.PropertyMap, []any of JSON-shaped values), so a
// byte-value store needs a codec that preserves type identity across the
// round trip. gob does this natively once every concrete type that ever
// crosses an interface{} boundary is registered — the same mechanism
// rpc/serializer/gobimpl.go already uses to round-trip common.Message.
package dbhost

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lsetdb/lset/internal/host"
	ilset "github.com/lsetdb/lset/internal/lset"
	"github.com/lsetdb/lset/lib/db"
)

func init() {
	gob.Register(&ilset.Descriptor{})
	gob.Register(&ilset.LdtControlMap{})
	gob.Register(ilset.PropertyMap{})
	gob.Register(ilset.LsetMap{})
	gob.Register(ilset.CellAnchor{})
	gob.Register([]interface{}{})
	gob.Register(map[string]interface{}{})
}

// subDataPrefix/subIndexSuffix namespace the two kinds of keys dbhost
// writes into the backing KVDB alongside the user's own top-record keys.
const (
	subDataPrefix  = "\x01lset-sub\x01"
	subIndexSuffix = "\x01lset-subindex"
)

// DBHost adapts a db.KVDB into a host.Host. writeIdx is a process-local
// monotonic counter standing in for the logical timestamp db.KVDB's write
// operations require; dbhost has no replication or recovery log to derive
// one from, so — like the teacher's lstore did for the same interface —
// it just counts up.
type DBHost struct {
	db       db.KVDB
	writeIdx atomic.Uint64
}

// New adapts backing into a host.Host.
func New(backing db.KVDB) *DBHost {
	return &DBHost{db: backing}
}

func (h *DBHost) nextIdx() uint64 {
	return h.writeIdx.Add(1)
}

// storedTop is the on-disk envelope for a TopRecord. db.KVDB has no
// per-bin attribute concept, so the bin flags the engine asserts via
// SetBinFlags are carried alongside the bins rather than dropped.
type storedTop struct {
	Bins  map[string]any
	Flags map[string]host.BinFlags
}

// storedSub is the on-disk envelope for a SubRecord.
type storedSub struct {
	Bins map[string]any
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(b []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
}

func subDataKey(digest host.Digest) string {
	return subDataPrefix + string(digest)
}

func subIndexKey(topKey string) string {
	return topKey + subIndexSuffix
}

// OpenTop implements host.Host.
func (h *DBHost) OpenTop(key string) (*host.TopRecord, bool, error) {
	raw, ok := h.db.Get(key)
	if !ok {
		return nil, false, nil
	}
	var st storedTop
	if err := decodeGob(raw, &st); err != nil {
		return nil, false, fmt.Errorf("dbhost: decode top record %q: %w", key, err)
	}
	return &host.TopRecord{Key: key, Bins: st.Bins}, true, nil
}

// UpdateTop implements host.Host, preserving whatever flags were last
// asserted via SetBinFlags.
func (h *DBHost) UpdateTop(rec *host.TopRecord) error {
	st := storedTop{Bins: rec.Bins, Flags: h.loadFlags(rec.Key)}
	raw, err := encodeGob(st)
	if err != nil {
		return fmt.Errorf("dbhost: encode top record %q: %w", rec.Key, err)
	}
	h.db.Set(rec.Key, raw, h.nextIdx())
	return nil
}

// RemoveTop implements host.Host.
func (h *DBHost) RemoveTop(key string) error {
	h.db.Delete(key, h.nextIdx())
	return nil
}

// NewDigest implements host.Host using a random UUID, the same scheme
// memhost uses — dbhost has no real content-addressing scheme either.
func (h *DBHost) NewDigest() host.Digest {
	return host.Digest(uuid.NewString())
}

// SetRecordType implements host.Host as a no-op; db.KVDB has no on-disk
// record header to flag.
func (h *DBHost) SetRecordType(rec *host.TopRecord) {}

// SetBinFlags implements host.Host, merging flags into the record
// currently stored under rec.Key so the next UpdateTop call picks them
// up.
func (h *DBHost) SetBinFlags(rec *host.TopRecord, bin string, flags host.BinFlags) {
	current := h.loadFlags(rec.Key)
	current[bin] |= flags
	raw, err := encodeGob(storedTop{Bins: rec.Bins, Flags: current})
	if err != nil {
		return
	}
	h.db.Set(rec.Key, raw, h.nextIdx())
}

func (h *DBHost) loadFlags(key string) map[string]host.BinFlags {
	raw, ok := h.db.Get(key)
	if !ok {
		return map[string]host.BinFlags{}
	}
	var st storedTop
	if err := decodeGob(raw, &st); err != nil || st.Flags == nil {
		return map[string]host.BinFlags{}
	}
	return st.Flags
}

// CreateSubRecord implements host.Host, allocating a fresh digest,
// persisting an empty sub-record under it, and recording the digest in
// topKey's sub-record index for later enumeration (needed for ESR
// cascade removal; db.KVDB has no prefix-scan to derive this from).
func (h *DBHost) CreateSubRecord(topKey string) (*host.SubRecord, error) {
	digest := h.NewDigest()
	sub := &host.SubRecord{Digest: digest, Bins: map[string]any{}}

	raw, err := encodeGob(storedSub{Bins: sub.Bins})
	if err != nil {
		return nil, fmt.Errorf("dbhost: encode sub-record %s: %w", digest, err)
	}
	h.db.Set(subDataKey(digest), raw, h.nextIdx())

	idx := h.loadSubIndex(topKey)
	idx = append(idx, digest)
	if err := h.saveSubIndex(topKey, idx); err != nil {
		return nil, err
	}
	return sub, nil
}

// OpenSubRecord implements host.Host.
func (h *DBHost) OpenSubRecord(topKey string, digest host.Digest) (*host.SubRecord, error) {
	if !containsDigest(h.loadSubIndex(topKey), digest) {
		return nil, fmt.Errorf("dbhost: no such sub-record %s for top record %q", digest, topKey)
	}
	raw, ok := h.db.Get(subDataKey(digest))
	if !ok {
		return nil, fmt.Errorf("dbhost: no such sub-record %s", digest)
	}
	var st storedSub
	if err := decodeGob(raw, &st); err != nil {
		return nil, fmt.Errorf("dbhost: decode sub-record %s: %w", digest, err)
	}
	return &host.SubRecord{Digest: digest, Bins: st.Bins}, nil
}

// UpdateSubRecord implements host.Host. The digest alone addresses the
// backing key, so no topKey is needed here.
func (h *DBHost) UpdateSubRecord(sub *host.SubRecord) error {
	raw, err := encodeGob(storedSub{Bins: sub.Bins})
	if err != nil {
		return fmt.Errorf("dbhost: encode sub-record %s: %w", sub.Digest, err)
	}
	h.db.Set(subDataKey(sub.Digest), raw, h.nextIdx())
	return nil
}

// CloseSubRecord implements host.Host as a no-op; dbhost has no
// handle/connection cost to release beyond the KVDB call already made.
func (h *DBHost) CloseSubRecord(sub *host.SubRecord) error {
	return nil
}

// RemoveSubRecord implements host.Host. Removing the Existence
// Sub-Record cascades removal of every sub-record sharing its
// EsrDigest, mirroring memhost's cascade (spec §3 "Sub-record (LDR)").
func (h *DBHost) RemoveSubRecord(topKey string, digest host.Digest) error {
	idx := h.loadSubIndex(topKey)
	if !containsDigest(idx, digest) {
		return nil
	}

	sub, err := h.OpenSubRecord(topKey, digest)
	if err != nil {
		return nil
	}
	idx = removeDigest(idx, digest)
	h.db.Delete(subDataKey(digest), h.nextIdx())

	if pm, ok := propertyMapOf(sub); ok && pm.RecType == ilset.RecTypeESR {
		esrDigest := pm.SelfDigest
		var kept []host.Digest
		for _, d := range idx {
			raw, ok := h.db.Get(subDataKey(d))
			if !ok {
				continue
			}
			var st storedSub
			if err := decodeGob(raw, &st); err != nil {
				kept = append(kept, d)
				continue
			}
			if spm, ok := propertyMapOf(&host.SubRecord{Digest: d, Bins: st.Bins}); ok && spm.EsrDigest == esrDigest {
				h.db.Delete(subDataKey(d), h.nextIdx())
				continue
			}
			kept = append(kept, d)
		}
		idx = kept
	}

	return h.saveSubIndex(topKey, idx)
}

func (h *DBHost) loadSubIndex(topKey string) []host.Digest {
	raw, ok := h.db.Get(subIndexKey(topKey))
	if !ok {
		return nil
	}
	var idx []host.Digest
	if err := decodeGob(raw, &idx); err != nil {
		return nil
	}
	return idx
}

func (h *DBHost) saveSubIndex(topKey string, idx []host.Digest) error {
	raw, err := encodeGob(idx)
	if err != nil {
		return fmt.Errorf("dbhost: encode sub-record index for %q: %w", topKey, err)
	}
	h.db.Set(subIndexKey(topKey), raw, h.nextIdx())
	return nil
}

func containsDigest(digests []host.Digest, target host.Digest) bool {
	for _, d := range digests {
		if d == target {
			return true
		}
	}
	return false
}

func removeDigest(digests []host.Digest, target host.Digest) []host.Digest {
	out := digests[:0]
	for _, d := range digests {
		if d != target {
			out = append(out, d)
		}
	}
	return out
}

// propertyMapOf locates the PropertyMap among a sub-record's bins,
// regardless of which bin name carries it.
func propertyMapOf(sub *host.SubRecord) (ilset.PropertyMap, bool) {
	for _, v := range sub.Bins {
		if pm, ok := v.(ilset.PropertyMap); ok {
			return pm, true
		}
	}
	return ilset.PropertyMap{}, false
}

// Now implements host.Host.
func (h *DBHost) Now() int64 {
	return time.Now().UnixNano()
}
