package lset

import (
	"fmt"

	"github.com/lsetdb/lset/internal/host"
	"github.com/lsetdb/lset/internal/lset/hashing"
	"github.com/lsetdb/lset/lib/telemetry"
)

// subRecInsert adds value to a SubRecord-layout LSET (spec §6 SubRecord
// layout). While compact, members sit inline in the descriptor's
// CompactList; crossing Threshold triggers a rehash into the Modulo-sized
// hash directory, after which inserts route through the per-cell state
// machine in cell.go.
func subRecInsert(ctx *Context, topKey string, desc *Descriptor, fc *FunctionContext, value any, now int64) error {
	key, err := fc.ExtractKey(value)
	if err != nil {
		return err
	}

	if desc.Lset.StoreState == StoreStateCompact {
		idx, err := searchList(fc, desc.Lset.CompactList, key)
		if err != nil {
			return err
		}
		if idx >= 0 {
			return newErr("add", ErrUniqueKeyViolation, "key already present")
		}

		transformed, err := fc.Transform(value)
		if err != nil {
			return err
		}
		desc.Lset.CompactList = append(desc.Lset.CompactList, transformed)
		desc.Lset.TotalCount++
		desc.Property.ItemCount++

		if desc.Lset.TotalCount >= desc.Lset.Threshold {
			return telemetry.TimeRehash(func() error {
				return subRecRehashToRegular(ctx, topKey, desc, fc, now)
			})
		}
		return nil
	}

	cell := subRecCell(desc, key)
	if err := cellInsert(ctx, topKey, &desc.Property, &desc.Lset, cell, fc, value, now); err != nil {
		return err
	}
	desc.Lset.TotalCount++
	desc.Property.ItemCount++
	return nil
}

// subRecRehashToRegular redistributes the compact list across a fresh
// Modulo-sized hash directory and flips StoreState to regular. Members
// are already transformed and already known unique, so they are placed
// directly via cellPlace.
func subRecRehashToRegular(ctx *Context, topKey string, desc *Descriptor, fc *FunctionContext, now int64) error {
	old := desc.Lset.CompactList
	desc.Lset.CompactList = nil
	desc.Lset.StoreState = StoreStateRegular
	desc.Lset.HashDirectory = make([]CellAnchor, desc.Lset.Modulo)

	for _, raw := range old {
		val, err := fc.UnTransform(raw)
		if err != nil {
			return err
		}
		key, err := fc.ExtractKey(val)
		if err != nil {
			return err
		}
		cell := subRecCell(desc, key)
		if err := cellPlace(ctx, topKey, &desc.Property, &desc.Lset, cell, raw, now); err != nil {
			return err
		}
	}
	return nil
}

// subRecCell returns a pointer to the hash directory cell owning key.
func subRecCell(desc *Descriptor, key any) *CellAnchor {
	bucket := hashing.Default.Bucket(fmt.Sprint(key), desc.Lset.Modulo)
	return &desc.Lset.HashDirectory[bucket]
}

// subRecSearch locates a member by key (spec §6 SubRecord layout
// "Search").
func subRecSearch(ctx *Context, desc *Descriptor, fc *FunctionContext, key any) (value any, found bool, err error) {
	if desc.Lset.StoreState == StoreStateCompact {
		idx, err := searchList(fc, desc.Lset.CompactList, key)
		if err != nil || idx < 0 {
			return nil, false, err
		}
		val, err := fc.UnTransform(desc.Lset.CompactList[idx])
		return val, err == nil, err
	}
	return cellSearch(ctx, subRecCell(desc, key), fc, key)
}

// subRecRemove deletes a member by key (spec §6 SubRecord layout
// "Remove"), using swap-with-last + truncate while compact.
func subRecRemove(ctx *Context, desc *Descriptor, fc *FunctionContext, key any) (removed any, found bool, err error) {
	if desc.Lset.StoreState == StoreStateCompact {
		idx, err := searchList(fc, desc.Lset.CompactList, key)
		if err != nil || idx < 0 {
			return nil, false, err
		}
		val, err := fc.UnTransform(desc.Lset.CompactList[idx])
		if err != nil {
			return nil, false, err
		}
		desc.Lset.CompactList = removeAt(desc.Lset.CompactList, idx)
		desc.Property.ItemCount--
		return val, true, nil
	}

	cell := subRecCell(desc, key)
	val, found, err := cellRemove(ctx, cell, fc, key)
	if err != nil || !found {
		return nil, false, err
	}
	desc.Property.ItemCount--
	return val, true, nil
}

// subRecScan iterates the compact list or, in regular state, every
// directory cell, appending untransformed, filtered members to out (spec
// §6 SubRecord layout "Scan").
func subRecScan(ctx *Context, desc *Descriptor, fc *FunctionContext, out *[]any) error {
	if desc.Lset.StoreState == StoreStateCompact {
		for _, raw := range desc.Lset.CompactList {
			val, err := fc.UnTransform(raw)
			if err != nil {
				return err
			}
			keep, err := fc.Filter(val)
			if err != nil {
				return err
			}
			if keep {
				*out = append(*out, val)
			}
		}
		return nil
	}

	for i := range desc.Lset.HashDirectory {
		if err := cellScan(ctx, &desc.Lset.HashDirectory[i], fc, out); err != nil {
			return err
		}
	}
	return nil
}

// subRecDestroy removes the ESR, whose host cascade takes every attached
// sub-record down with it, then clears the directory and nulls the user
// bin (spec §6 SubRecord layout "Destroy").
func subRecDestroy(ctx *Context, rec *host.TopRecord, desc *Descriptor, binName string) error {
	if desc.Property.EsrDigest != "" {
		if err := ctx.h.RemoveSubRecord(ctx.topKey, host.Digest(desc.Property.EsrDigest)); err != nil {
			return newErr("destroy", ErrSubRecDelete, "failed to remove ESR: %v", err)
		}
	}
	desc.Lset.CompactList = nil
	desc.Lset.HashDirectory = nil
	delete(rec.Bins, binName)
	return nil
}
