package lset

import "github.com/lsetdb/lset/internal/host"

// Context is the sub-record context (spec §4.6): an open-handle tracker
// that batches open/close/dirty-mark calls against a single top record and
// guarantees release on every exit path, including error. A Context is
// created once per top-level API call and must never be cached across
// calls.
type Context struct {
	h      host.Host
	topKey string
	open   map[host.Digest]*host.SubRecord
	dirty  map[host.Digest]bool
}

// NewContext creates a Context for a single API call against topKey.
func NewContext(h host.Host, topKey string) *Context {
	return &Context{
		h:      h,
		topKey: topKey,
		open:   make(map[host.Digest]*host.SubRecord),
		dirty:  make(map[host.Digest]bool),
	}
}

// Open returns the sub-record for digest, opening it via the host on first
// use and caching the handle for the remainder of the call.
func (c *Context) Open(digest host.Digest) (*host.SubRecord, error) {
	if sub, ok := c.open[digest]; ok {
		return sub, nil
	}
	sub, err := c.h.OpenSubRecord(c.topKey, digest)
	if err != nil {
		return nil, newErr("subrecord.open", ErrSubRecOpen, "failed to open sub-record %s: %v", digest, err)
	}
	c.open[digest] = sub
	return sub, nil
}

// Create allocates a new sub-record via the host and registers it as open
// and dirty, so it is flushed on Close.
func (c *Context) Create() (*host.SubRecord, error) {
	sub, err := c.h.CreateSubRecord(c.topKey)
	if err != nil {
		return nil, newErr("subrecord.create", ErrSubRecOpen, "failed to create sub-record: %v", err)
	}
	c.open[sub.Digest] = sub
	c.dirty[sub.Digest] = true
	return sub, nil
}

// MarkDirty records that an already-open sub-record was mutated and must
// be persisted on Close.
func (c *Context) MarkDirty(digest host.Digest) {
	c.dirty[digest] = true
}

// Remove deletes a sub-record immediately and drops it from the tracked
// set, so Close will neither update nor close it again.
func (c *Context) Remove(digest host.Digest) error {
	if err := c.h.RemoveSubRecord(c.topKey, digest); err != nil {
		return newErr("subrecord.remove", ErrSubRecDelete, "failed to remove sub-record %s: %v", digest, err)
	}
	delete(c.open, digest)
	delete(c.dirty, digest)
	return nil
}

// Close flushes every dirty sub-record and releases every open handle. It
// is safe to call multiple times and must run on every exit path,
// including error — callers defer it immediately after NewContext.
func (c *Context) Close() error {
	var firstErr error
	for digest, sub := range c.open {
		if c.dirty[digest] {
			if err := c.h.UpdateSubRecord(sub); err != nil && firstErr == nil {
				firstErr = newErr("subrecord.update", ErrSubRecOpen, "failed to update sub-record %s: %v", digest, err)
			}
		}
		if err := c.h.CloseSubRecord(sub); err != nil && firstErr == nil {
			firstErr = newErr("subrecord.close", ErrSubRecOpen, "failed to close sub-record %s: %v", digest, err)
		}
	}
	c.open = make(map[host.Digest]*host.SubRecord)
	c.dirty = make(map[host.Digest]bool)
	return firstErr
}
