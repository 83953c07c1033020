package lset

import (
	"fmt"

	"github.com/lsetdb/lset/internal/lset/hashing"

	"github.com/lsetdb/lset/internal/host"
	"github.com/lsetdb/lset/lib/telemetry"
)

// compactBin is the single hidden bin holding inline members while a
// TopRecord-layout LSET is in the compact phase.
const compactBin = "LSetBin_0"

// bucketBin names the hidden numbered bin for hash bucket i (spec §6
// "Persisted layout").
func bucketBin(i uint32) string {
	return fmt.Sprintf("LSetBin_%d", i)
}

// bucketForKey computes the destination bin for key under the regular
// phase, using the descriptor's configured bucket count.
func bucketForKey(desc *Descriptor, key any) string {
	b := hashing.Default.Bucket(fmt.Sprint(key), desc.Lset.Modulo)
	return bucketBin(b)
}

// topRecBinFor returns the bin a key currently lives in, accounting for
// the compact/regular phase.
func topRecBinFor(desc *Descriptor, key any) string {
	if desc.Lset.StoreState == StoreStateCompact {
		return compactBin
	}
	return bucketForKey(desc, key)
}

// topRecInsert adds value to a TopRecord-layout LSET (spec §6 TopRecord
// layout, "Insert"), triggering a compact-to-regular rehash once the
// descriptor's total insert count reaches the configured Threshold.
func topRecInsert(h host.Host, rec *host.TopRecord, desc *Descriptor, fc *FunctionContext, value any) error {
	key, err := fc.ExtractKey(value)
	if err != nil {
		return err
	}

	bin := topRecBinFor(desc, key)
	list, _ := rec.Bins[bin].([]any)

	idx, err := searchList(fc, list, key)
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

	list = append(list, transformed)
	rec.Bins[bin] = list
	h.SetBinFlags(rec, bin, host.BinFlagHidden)

	desc.Lset.TotalCount++
	desc.Property.ItemCount++

	if desc.Lset.StoreState == StoreStateCompact && desc.Lset.TotalCount >= desc.Lset.Threshold {
		return telemetry.TimeRehash(func() error {
			return rehashToRegular(h, rec, desc, fc)
		})
	}
	return nil
}

// rehashToRegular redistributes the compact list across Modulo numbered
// bins and flips StoreState to regular (spec §6 "Threshold-triggered
// rehash"). Members are already transformed, so they are moved without
// re-applying the transform function.
func rehashToRegular(h host.Host, rec *host.TopRecord, desc *Descriptor, fc *FunctionContext) error {
	old, _ := rec.Bins[compactBin].([]any)
	delete(rec.Bins, compactBin)
	desc.Lset.StoreState = StoreStateRegular

	for _, raw := range old {
		val, err := fc.UnTransform(raw)
		if err != nil {
			return err
		}
		key, err := fc.ExtractKey(val)
		if err != nil {
			return err
		}
		bin := bucketForKey(desc, key)
		list, _ := rec.Bins[bin].([]any)
		rec.Bins[bin] = append(list, raw)
		h.SetBinFlags(rec, bin, host.BinFlagHidden)
	}
	return nil
}

// topRecSearch locates a member by key (spec §6 "Search"). The returned
// value has already been untransformed.
func topRecSearch(rec *host.TopRecord, desc *Descriptor, fc *FunctionContext, key any) (value any, found bool, err error) {
	bin := topRecBinFor(desc, key)
	list, _ := rec.Bins[bin].([]any)

	idx, err := searchList(fc, list, key)
	if err != nil || idx < 0 {
		return nil, false, err
	}
	val, err := fc.UnTransform(list[idx])
	return val, err == nil, err
}

// topRecRemove deletes a member by key using swap-with-last + truncate
// (spec §6 "Search / remove").
func topRecRemove(rec *host.TopRecord, desc *Descriptor, fc *FunctionContext, key any) (removed any, found bool, err error) {
	bin := topRecBinFor(desc, key)
	list, _ := rec.Bins[bin].([]any)

	idx, err := searchList(fc, list, key)
	if err != nil || idx < 0 {
		return nil, false, err
	}

	val, err := fc.UnTransform(list[idx])
	if err != nil {
		return nil, false, err
	}

	rec.Bins[bin] = removeAt(list, idx)
	desc.Property.ItemCount--
	return val, true, nil
}

// topRecScan iterates every occupied bin and appends untransformed,
// filtered members to out (spec §6 "Scan").
func topRecScan(rec *host.TopRecord, desc *Descriptor, fc *FunctionContext, out *[]any) error {
	appendBin := func(list []any) error {
		for _, raw := range list {
			if raw == nil {
				continue
			}
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

	if desc.Lset.StoreState == StoreStateCompact {
		list, _ := rec.Bins[compactBin].([]any)
		return appendBin(list)
	}

	for i := uint32(0); i < desc.Lset.Modulo; i++ {
		list, _ := rec.Bins[bucketBin(i)].([]any)
		if len(list) == 0 {
			continue
		}
		if err := appendBin(list); err != nil {
			return err
		}
	}
	return nil
}

// topRecDestroy nulls out every hidden bucket bin and the user-named
// descriptor bin (spec §6 "Destroy").
func topRecDestroy(rec *host.TopRecord, desc *Descriptor, binName string) {
	if desc.Lset.StoreState == StoreStateCompact {
		delete(rec.Bins, compactBin)
	} else {
		for i := uint32(0); i < desc.Lset.Modulo; i++ {
			delete(rec.Bins, bucketBin(i))
		}
	}
	delete(rec.Bins, binName)
}
