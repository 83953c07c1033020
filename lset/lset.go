// Package lset is the public API surface of the LSET engine: a
// server-resident, persistent set data structure embedded in a
// key-value database record (component 10 of the engine design).
//
// A Set is a thin, stateless handle binding a host.Host runtime to a
// udf.Registry of function bindings; every method takes the top-record
// key and bin name explicitly, the way the underlying engine calls do.
// The actual descriptor validation, layout drivers, hash-cell state
// machine, and sub-record management live in internal/lset and are not
// exported — callers only ever see this package and internal/host.
package lset

import (
	"github.com/lsetdb/lset/internal/host"
	ilset "github.com/lsetdb/lset/internal/lset"
	"github.com/lsetdb/lset/lib/telemetry"
	"github.com/lsetdb/lset/lib/udf"
)

// Context is the sub-record context (spec §4.6): an open-handle tracker
// shared across repeated calls against the same top record. Passing nil
// to any Set method lets that single call manage its own context.
type Context = ilset.Context

// NewContext opens a Context for topKey, to be shared across a sequence
// of calls that should batch their sub-record I/O together.
func NewContext(h host.Host, topKey string) *Context {
	return ilset.NewContext(h, topKey)
}

// Error is the typed error every Set method raises (spec §7).
type Error = ilset.Error

// ErrorCode enumerates the taxonomy of failure kinds (spec §7).
type ErrorCode = ilset.ErrorCode

// IsNotFound reports whether err is a NotFound error (get/remove miss).
func IsNotFound(err error) bool { return ilset.IsNotFound(err) }

// IsUniqueKeyViolation reports whether err is a duplicate-insert error.
func IsUniqueKeyViolation(err error) bool { return ilset.IsUniqueKeyViolation(err) }

// UserModule is either a registered module name (string) or a map
// recognizing a "Package" entry naming a packaged-settings profile
// (spec §4.8).
type UserModule = ilset.UserModule

// Set binds a host runtime and a function registry, exposing every LSET
// operation from spec §6 as a method. It carries no per-instance state
// of its own — every LSET lives in the host, addressed by (topRec, bin).
type Set struct {
	host     host.Host
	registry *udf.Registry
}

// New builds a Set over h. A nil registry is replaced with an empty one
// (valid for atomic-keyed sets with no registered functions).
func New(h host.Host, registry *udf.Registry) *Set {
	if registry == nil {
		registry = udf.NewRegistry()
	}
	return &Set{host: h, registry: registry}
}

// Create initializes a new LSET descriptor in bin on the record named
// topRec, applying userModule's settings if supplied.
func (s *Set) Create(topRec, bin string, userModule UserModule) error {
	return ilset.Create(s.host, s.registry, topRec, bin, userModule)
}

// Add inserts value, raising an ErrUniqueKeyViolation Error if a member
// with the same extracted key already exists.
func (s *Set) Add(topRec, bin string, value any, userModule UserModule, src *Context) error {
	return telemetry.TimeAdd(func() error {
		err := ilset.Add(s.host, s.registry, topRec, bin, value, userModule, src)
		if err == nil {
			telemetry.IncItems(1)
		}
		return err
	})
}

// AddAll inserts every element of values in order; the first failure
// aborts the remaining inserts.
func (s *Set) AddAll(topRec, bin string, values []any, userModule UserModule, src *Context) error {
	return telemetry.TimeAdd(func() error {
		err := ilset.AddAll(s.host, s.registry, topRec, bin, values, userModule, src)
		if err == nil {
			telemetry.IncItems(int64(len(values)))
		}
		return err
	})
}

// Get returns the member matching key, raising NotFound on a miss or on
// a hit the optional filter rejects.
func (s *Set) Get(topRec, bin string, key any, userModule UserModule, filterName string, filterArgs []any, src *Context) (any, error) {
	return ilset.Get(s.host, s.registry, topRec, bin, key, userModule, filterName, filterArgs, src)
}

// Exists reports whether a member with the given key is present. It
// never errors on a miss.
func (s *Set) Exists(topRec, bin string, key any, src *Context) (bool, error) {
	return ilset.Exists(s.host, s.registry, topRec, bin, key, src)
}

// Scan returns every member passing the optional filter.
func (s *Set) Scan(topRec, bin string, userModule UserModule, filterName string, filterArgs []any, src *Context) ([]any, error) {
	var values []any
	err := telemetry.TimeScan(func() error {
		var err error
		values, err = ilset.Scan(s.host, s.registry, topRec, bin, userModule, filterName, filterArgs, src)
		return err
	})
	return values, err
}

// Remove deletes the member matching key, returning it when returnVal is
// true. A miss, or a hit the optional filter rejects, raises NotFound.
func (s *Set) Remove(topRec, bin string, key any, userModule UserModule, filterName string, filterArgs []any, returnVal bool, src *Context) (any, error) {
	return ilset.Remove(s.host, s.registry, topRec, bin, key, userModule, filterName, filterArgs, returnVal, src)
}

// Destroy removes the descriptor and, for SubRecord layout, cascades
// removal of every attached sub-record via the ESR.
func (s *Set) Destroy(topRec, bin string, src *Context) error {
	return ilset.Destroy(s.host, topRec, bin, src)
}

// Size returns the logical member count.
func (s *Set) Size(topRec, bin string) (int64, error) {
	return ilset.Size(s.host, topRec, bin)
}

// Config returns a snapshot of every configurable option plus the
// descriptor's live counters.
func (s *Set) Config(topRec, bin string) (map[string]any, error) {
	return ilset.Config(s.host, topRec, bin)
}

// GetCapacity returns the advisory capacity ceiling (0 means unbounded).
func (s *Set) GetCapacity(topRec, bin string) (int64, error) {
	return ilset.GetCapacity(s.host, topRec, bin)
}

// SetCapacity sets the advisory capacity ceiling. Capacity is not
// enforced at insert time (spec §1 non-goal).
func (s *Set) SetCapacity(topRec, bin string, n int64) error {
	return ilset.SetCapacity(s.host, topRec, bin, n)
}

// Dump renders a human-readable diagnostic report for bin.
func (s *Set) Dump(topRec, bin string) (string, error) {
	return ilset.Dump(s.host, topRec, bin)
}
