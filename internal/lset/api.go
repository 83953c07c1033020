package lset

import (
	"fmt"
	"strings"

	"github.com/lsetdb/lset/internal/host"
	"github.com/lsetdb/lset/lib/udf"
)

// This file implements component 10, the public API surface (spec §6):
// create, add, add_all, get, exists, scan, remove, destroy, size, config,
// get_capacity, set_capacity, dump. Every call runs descriptor validation
// (validate.go) first, dispatches to whichever layout driver the
// descriptor names (toprec.go or subrec.go), and persists the top record
// on any mutating success. Package lset (root) wraps these as methods on
// a Set so callers never touch this package directly.

// openContext returns ctx if the caller supplied one, else opens a fresh
// one scoped to this single call (spec §4.6: "a missing context is
// lazily created per call").
func openContext(h host.Host, topKey string, ctx *Context) (c *Context, owned bool) {
	if ctx != nil {
		return ctx, false
	}
	return NewContext(h, topKey), true
}

// Create initializes a new LSET descriptor in bin, applying userModule's
// settings if supplied (spec §4.8).
func Create(h host.Host, registry *udf.Registry, topKey, bin string, userModule UserModule) error {
	rec, desc, err := validateRecBinAndMap(h, topKey, bin, false)
	if err != nil {
		return err
	}
	if desc != nil {
		return newErr("create", ErrBinAlreadyExists, "bin %q already exists", bin)
	}
	if rec == nil {
		rec = &host.TopRecord{Key: topKey, Bins: map[string]any{}}
	}

	nd := NewDescriptor(bin, h.Now())
	if err := ApplySettings(registry, &nd.Lset, userModule); err != nil {
		return err
	}

	if nd.Lset.StoreMode == StoreModeBinary {
		return newErr("create", ErrInputParm, "binary storage mode is not implemented")
	}

	ctl := loadLdtControl(rec)
	if nd.Lset.SetTypeStore == SetTypeRecord && ctl != nil && ctl.TopRecLayoutBin != "" && ctl.TopRecLayoutBin != bin {
		return newErr("create", ErrBinAlreadyExists, "record already hosts a TopRecord-layout LSET in bin %q", ctl.TopRecLayoutBin)
	}
	if ctl == nil {
		ctl = &LdtControlMap{Magic: Magic, VInfo: EngineVersion, SelfDigest: string(h.NewDigest())}
	}
	ctl.LdtCount++
	if nd.Lset.SetTypeStore == SetTypeRecord {
		ctl.TopRecLayoutBin = bin
	}
	rec.Bins[LdtControlBin] = ctl
	h.SetBinFlags(rec, LdtControlBin, host.BinFlagHidden)

	rec.Bins[bin] = nd
	h.SetRecordType(rec)
	h.SetBinFlags(rec, bin, host.BinFlagControl)
	if err := h.UpdateTop(rec); err != nil {
		return newErr("create", ErrTopRecUpdate, "failed to persist top record: %v", err)
	}
	return nil
}

// loadLdtControl returns the record's shared LdtControlBin entry, or nil if
// the record hosts no LDT yet.
func loadLdtControl(rec *host.TopRecord) *LdtControlMap {
	ctl, _ := rec.Bins[LdtControlBin].(*LdtControlMap)
	return ctl
}

// Add inserts value, raising UniqueKeyViolation if its extracted key is
// already a member.
func Add(h host.Host, registry *udf.Registry, topKey, bin string, value any, userModule UserModule, ctx *Context) (err error) {
	rec, desc, verr := validateRecBinAndMap(h, topKey, bin, true)
	if verr != nil {
		return verr
	}

	c, owned := openContext(h, topKey, ctx)
	defer func() {
		if owned {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	fc := NewFunctionContext(registry, &desc.Lset, "", nil)
	if desc.Lset.SetTypeStore == SetTypeRecord {
		err = topRecInsert(h, rec, desc, fc, value)
	} else {
		err = subRecInsert(c, topKey, desc, fc, value, h.Now())
	}
	if err != nil {
		return err
	}

	rec.Bins[bin] = desc
	h.SetBinFlags(rec, bin, host.BinFlagControl)
	if uerr := h.UpdateTop(rec); uerr != nil {
		err = newErr("add", ErrTopRecUpdate, "failed to persist top record: %v", uerr)
	}
	return err
}

// AddAll inserts every element of values in order. The first failure
// aborts the remaining inserts; already-inserted elements are kept (spec
// §7 "for add_all, the first failure aborts the remaining inserts with
// the offending element's index in the diagnostic").
func AddAll(h host.Host, registry *udf.Registry, topKey, bin string, values []any, userModule UserModule, ctx *Context) (err error) {
	rec, desc, verr := validateRecBinAndMap(h, topKey, bin, true)
	if verr != nil {
		return verr
	}

	c, owned := openContext(h, topKey, ctx)
	defer func() {
		if owned {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	fc := NewFunctionContext(registry, &desc.Lset, "", nil)
	now := h.Now()

	for i, value := range values {
		var insertErr error
		if desc.Lset.SetTypeStore == SetTypeRecord {
			insertErr = topRecInsert(h, rec, desc, fc, value)
		} else {
			insertErr = subRecInsert(c, topKey, desc, fc, value, now)
		}
		if insertErr != nil {
			if e, ok := insertErr.(*Error); ok {
				err = newErr("add_all", e.Code, "insert failed at index %d: %s", i, e.Msg)
			} else {
				err = newErr("add_all", ErrInternal, "insert failed at index %d: %v", i, insertErr)
			}
			break
		}
	}

	rec.Bins[bin] = desc
	h.SetBinFlags(rec, bin, host.BinFlagControl)
	if uerr := h.UpdateTop(rec); uerr != nil && err == nil {
		err = newErr("add_all", ErrTopRecUpdate, "failed to persist top record: %v", uerr)
	}
	return err
}

// Get returns the member matching key, applying the optional filter
// after the match (spec §4.4/§4.5 "on hit, apply untransform and
// optional filter"). A miss, or a hit the filter rejects, raises
// NotFound.
func Get(h host.Host, registry *udf.Registry, topKey, bin string, key any, userModule UserModule, filterName string, filterArgs []any, ctx *Context) (value any, err error) {
	rec, desc, verr := validateRecBinAndMap(h, topKey, bin, true)
	if verr != nil {
		return nil, verr
	}

	c, owned := openContext(h, topKey, ctx)
	defer func() {
		if owned {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	fc := NewFunctionContext(registry, &desc.Lset, filterName, filterArgs)
	var found bool
	if desc.Lset.SetTypeStore == SetTypeRecord {
		value, found, err = topRecSearch(rec, desc, fc, key)
	} else {
		value, found, err = subRecSearch(c, desc, fc, key)
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newErr("get", ErrNotFound, "no member for key %v", key)
	}

	keep, ferr := fc.Filter(value)
	if ferr != nil {
		return nil, ferr
	}
	if !keep {
		return nil, newErr("get", ErrNotFound, "no member for key %v", key)
	}
	return value, nil
}

// Exists reports whether a member with the given key is present. It
// never raises on a miss (spec §7: "exists never raises on miss — it
// returns 0").
func Exists(h host.Host, registry *udf.Registry, topKey, bin string, key any, ctx *Context) (exists bool, err error) {
	rec, desc, verr := validateRecBinAndMap(h, topKey, bin, true)
	if verr != nil {
		return false, verr
	}

	c, owned := openContext(h, topKey, ctx)
	defer func() {
		if owned {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	fc := NewFunctionContext(registry, &desc.Lset, "", nil)
	if desc.Lset.SetTypeStore == SetTypeRecord {
		_, exists, err = topRecSearch(rec, desc, fc, key)
	} else {
		_, exists, err = subRecSearch(c, desc, fc, key)
	}
	return exists, err
}

// Scan returns every member passing the optional filter.
func Scan(h host.Host, registry *udf.Registry, topKey, bin string, userModule UserModule, filterName string, filterArgs []any, ctx *Context) (values []any, err error) {
	rec, desc, verr := validateRecBinAndMap(h, topKey, bin, true)
	if verr != nil {
		return nil, verr
	}

	c, owned := openContext(h, topKey, ctx)
	defer func() {
		if owned {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	fc := NewFunctionContext(registry, &desc.Lset, filterName, filterArgs)
	out := make([]any, 0, desc.Property.ItemCount)
	if desc.Lset.SetTypeStore == SetTypeRecord {
		err = topRecScan(rec, desc, fc, &out)
	} else {
		err = subRecScan(c, desc, fc, &out)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes the member matching key, honoring the same filter gate
// as Get before mutating anything. returnVal controls whether the
// removed value is returned or discarded.
func Remove(h host.Host, registry *udf.Registry, topKey, bin string, key any, userModule UserModule, filterName string, filterArgs []any, returnVal bool, ctx *Context) (removed any, err error) {
	rec, desc, verr := validateRecBinAndMap(h, topKey, bin, true)
	if verr != nil {
		return nil, verr
	}

	c, owned := openContext(h, topKey, ctx)
	defer func() {
		if owned {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	fc := NewFunctionContext(registry, &desc.Lset, filterName, filterArgs)

	var value any
	var found bool
	if desc.Lset.SetTypeStore == SetTypeRecord {
		value, found, err = topRecSearch(rec, desc, fc, key)
	} else {
		value, found, err = subRecSearch(c, desc, fc, key)
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newErr("remove", ErrNotFound, "no member for key %v", key)
	}
	if keep, ferr := fc.Filter(value); ferr != nil {
		return nil, ferr
	} else if !keep {
		return nil, newErr("remove", ErrNotFound, "no member for key %v", key)
	}

	if desc.Lset.SetTypeStore == SetTypeRecord {
		removed, found, err = topRecRemove(rec, desc, fc, key)
	} else {
		removed, found, err = subRecRemove(c, desc, fc, key)
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newErr("remove", ErrNotFound, "no member for key %v", key)
	}

	rec.Bins[bin] = desc
	h.SetBinFlags(rec, bin, host.BinFlagControl)
	if uerr := h.UpdateTop(rec); uerr != nil {
		return nil, newErr("remove", ErrTopRecUpdate, "failed to persist top record: %v", uerr)
	}

	if !returnVal {
		return nil, nil
	}
	return removed, nil
}

// Destroy removes the descriptor and, for SubRecord layout, cascades the
// removal of every attached sub-record via the ESR.
func Destroy(h host.Host, topKey, bin string, ctx *Context) (err error) {
	rec, desc, verr := validateRecBinAndMap(h, topKey, bin, true)
	if verr != nil {
		return verr
	}

	c, owned := openContext(h, topKey, ctx)
	defer func() {
		if owned {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	if desc.Lset.SetTypeStore == SetTypeRecord {
		topRecDestroy(rec, desc, bin)
	} else if err = subRecDestroy(c, rec, desc, bin); err != nil {
		return err
	}

	if ctl := loadLdtControl(rec); ctl != nil {
		ctl.LdtCount--
		if desc.Lset.SetTypeStore == SetTypeRecord && ctl.TopRecLayoutBin == bin {
			ctl.TopRecLayoutBin = ""
		}
		if ctl.LdtCount <= 0 {
			delete(rec.Bins, LdtControlBin)
		} else {
			rec.Bins[LdtControlBin] = ctl
			h.SetBinFlags(rec, LdtControlBin, host.BinFlagHidden)
		}
	}

	if uerr := h.UpdateTop(rec); uerr != nil {
		return newErr("destroy", ErrTopRecUpdate, "failed to persist top record: %v", uerr)
	}
	return nil
}

// Size returns the logical member count.
func Size(h host.Host, topKey, bin string) (int64, error) {
	_, desc, err := validateRecBinAndMap(h, topKey, bin, true)
	if err != nil {
		return 0, err
	}
	return desc.Property.ItemCount, nil
}

// Config returns every configurable option from spec §4.8 plus the
// descriptor's live counters (spec §11 "config").
func Config(h host.Host, topKey, bin string) (map[string]any, error) {
	_, desc, err := validateRecBinAndMap(h, topKey, bin, true)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"Modulo":          desc.Lset.Modulo,
		"Threshold":       desc.Lset.Threshold,
		"HashCellMaxList": desc.Lset.HashCellMaxList,
		"SetTypeStore":    desc.Lset.SetTypeStore,
		"StoreState":      desc.Lset.StoreState,
		"StoreMode":       desc.Lset.StoreMode,
		"KeyType":         desc.Lset.KeyType,
		"KeyFunction":     desc.Lset.KeyFunction,
		"Transform":       desc.Lset.Transform,
		"UnTransform":     desc.Lset.UnTransform,
		"UserModule":      desc.Lset.UserModule,
		"StoreLimit":      desc.Lset.StoreLimit,
		"ItemCount":       desc.Property.ItemCount,
		"SubRecCount":     desc.Property.SubRecCount,
	}, nil
}

// GetCapacity returns the advisory capacity ceiling (0 means unbounded).
func GetCapacity(h host.Host, topKey, bin string) (int64, error) {
	_, desc, err := validateRecBinAndMap(h, topKey, bin, true)
	if err != nil {
		return 0, err
	}
	return desc.Lset.StoreLimit, nil
}

// SetCapacity sets the advisory capacity ceiling. Enforcement at insert
// time is a declared non-goal (spec §1); this only records the value.
func SetCapacity(h host.Host, topKey, bin string, n int64) error {
	if n < 0 {
		return newErr("set_capacity", ErrInputParm, "capacity must be >= 0, got %d", n)
	}

	rec, desc, err := validateRecBinAndMap(h, topKey, bin, true)
	if err != nil {
		return err
	}

	desc.Lset.StoreLimit = n
	rec.Bins[bin] = desc
	h.SetBinFlags(rec, bin, host.BinFlagControl)
	if uerr := h.UpdateTop(rec); uerr != nil {
		return newErr("set_capacity", ErrTopRecUpdate, "failed to persist top record: %v", uerr)
	}
	return nil
}

// DescriptorFor returns the raw descriptor for bin, for diagnostic
// tooling and conformance tests (internal/lsettest) that need to assert
// on cell-level invariants beyond the public API's scope.
func DescriptorFor(h host.Host, topKey, bin string) (*Descriptor, error) {
	_, desc, err := validateRecBinAndMap(h, topKey, bin, true)
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// Dump renders a human-readable diagnostic report: the property map, the
// LsetMap, and, for a SubRecord-layout instance in regular state, a
// per-cell-state histogram (spec §11 "dump").
func Dump(h host.Host, topKey, bin string) (string, error) {
	_, desc, err := validateRecBinAndMap(h, topKey, bin, true)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "LSET bin %q on record %q\n", bin, topKey)
	fmt.Fprintf(&b, "  Property: Magic=0x%X LdtType=%s Version=%d RecType=%s ItemCount=%d SubRecCount=%d EsrDigest=%s\n",
		desc.Property.Magic, desc.Property.LdtType, desc.Property.Version, desc.Property.RecType,
		desc.Property.ItemCount, desc.Property.SubRecCount, desc.Property.EsrDigest)
	fmt.Fprintf(&b, "  LsetMap: SetTypeStore=%s StoreState=%s StoreMode=%s KeyType=%s Modulo=%d Threshold=%d HashCellMaxList=%d StoreLimit=%d\n",
		desc.Lset.SetTypeStore, desc.Lset.StoreState, desc.Lset.StoreMode, desc.Lset.KeyType,
		desc.Lset.Modulo, desc.Lset.Threshold, desc.Lset.HashCellMaxList, desc.Lset.StoreLimit)

	if desc.Lset.SetTypeStore == SetTypeSubRecord && desc.Lset.StoreState == StoreStateRegular {
		var empty, list, digest, tree int
		for _, cell := range desc.Lset.HashDirectory {
			switch cell.State {
			case CellEmpty:
				empty++
			case CellList:
				list++
			case CellDigest:
				digest++
			case CellTree:
				tree++
			}
		}
		fmt.Fprintf(&b, "  Cells: Empty=%d List=%d Digest=%d Tree=%d\n", empty, list, digest, tree)
	}

	return b.String(), nil
}
