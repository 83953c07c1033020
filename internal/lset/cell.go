package lset

import "github.com/lsetdb/lset/internal/host"

// cellInsert advances a single CellAnchor through the hash-cell state
// machine (spec §4.5):
//
//	Empty  --insert-->            List (inline array of 1)
//	List   --insert, size < max--> List (append)
//	List   --insert, size = max--> Digest (promote into a sub-record)
//	Digest --insert-->            Digest (append to sub-record's list)
//
// Uniqueness is enforced against whichever list currently represents the
// cell's members.
func cellInsert(ctx *Context, topKey string, prop *PropertyMap, lm *LsetMap, cell *CellAnchor, fc *FunctionContext, value any, now int64) error {
	key, err := fc.ExtractKey(value)
	if err != nil {
		return err
	}

	found, err := cellContainsKey(ctx, cell, fc, key)
	if err != nil {
		return err
	}
	if found {
		return newErr("add", ErrUniqueKeyViolation, "key already present")
	}

	transformed, err := fc.Transform(value)
	if err != nil {
		return err
	}
	return cellPlace(ctx, topKey, prop, lm, cell, transformed, now)
}

// cellContainsKey reports whether key is already present in cell, without
// mutating it.
func cellContainsKey(ctx *Context, cell *CellAnchor, fc *FunctionContext, key any) (bool, error) {
	switch cell.State {
	case CellEmpty:
		return false, nil
	case CellList:
		idx, err := searchList(fc, cell.List, key)
		return idx >= 0, err
	case CellDigest:
		sub, err := ctx.Open(host.Digest(cell.Digest))
		if err != nil {
			return false, err
		}
		idx, err := searchList(fc, subRecordList(sub), key)
		return idx >= 0, err
	case CellTree:
		return false, newErr("add", ErrInternal, "encountered reserved Tree cell state")
	default:
		return false, newErr("add", ErrInternal, "unknown cell state %d", cell.State)
	}
}

// cellPlace inserts an already-transformed, already unique-checked value
// into cell, carrying out whatever state transition is due (spec §4.5).
// Used both by cellInsert and by the compact-to-regular rehash, which
// redistributes already-transformed members without re-checking
// uniqueness against their origin cell.
func cellPlace(ctx *Context, topKey string, prop *PropertyMap, lm *LsetMap, cell *CellAnchor, transformed any, now int64) error {
	switch cell.State {
	case CellEmpty:
		cell.State = CellList
		cell.List = []any{transformed}
		cell.ItemCount = 1
		return nil

	case CellList:
		if len(cell.List) < lm.HashCellMaxList {
			cell.List = append(cell.List, transformed)
			cell.ItemCount++
			return nil
		}

		// promote: move the inline list plus the new value into a sub-record
		newList := make([]any, 0, len(cell.List)+1)
		newList = append(newList, cell.List...)
		newList = append(newList, transformed)

		digest, err := createSubRecord(ctx, topKey, prop, newList, now)
		if err != nil {
			return err
		}

		cell.State = CellDigest
		cell.Digest = string(digest)
		cell.List = nil
		cell.ItemCount = int64(len(newList))
		cell.SubRecCount = 1
		return nil

	case CellDigest:
		sub, err := ctx.Open(host.Digest(cell.Digest))
		if err != nil {
			return err
		}
		list := subRecordList(sub)
		list = append(list, transformed)
		setSubRecordList(ctx, sub, list)
		cell.ItemCount++
		return nil

	case CellTree:
		// reserved state; the engine never produces it (spec §9)
		return newErr("add", ErrInternal, "encountered reserved Tree cell state")

	default:
		return newErr("add", ErrInternal, "unknown cell state %d", cell.State)
	}
}

// cellSearch locates a member by key within a cell (spec §4.5 "Search").
// The returned value has already been untransformed.
func cellSearch(ctx *Context, cell *CellAnchor, fc *FunctionContext, key any) (value any, found bool, err error) {
	switch cell.State {
	case CellEmpty:
		return nil, false, nil

	case CellList:
		idx, err := searchList(fc, cell.List, key)
		if err != nil || idx < 0 {
			return nil, false, err
		}
		val, err := fc.UnTransform(cell.List[idx])
		return val, err == nil, err

	case CellDigest:
		sub, err := ctx.Open(host.Digest(cell.Digest))
		if err != nil {
			return nil, false, err
		}
		list := subRecordList(sub)
		idx, err := searchList(fc, list, key)
		if err != nil || idx < 0 {
			return nil, false, err
		}
		val, err := fc.UnTransform(list[idx])
		return val, err == nil, err

	case CellTree:
		return nil, false, newErr("search", ErrInternal, "encountered reserved Tree cell state")

	default:
		return nil, false, newErr("search", ErrInternal, "unknown cell state %d", cell.State)
	}
}

// cellRemove deletes a member by key from a cell (spec §4.5 "Remove"),
// using swap-with-last + truncate uniformly (spec §9). A List cell whose
// list becomes empty returns to Empty state; a Digest cell stays in Digest
// state even if its sub-record's list becomes empty — empty sub-record
// reclamation is an open question this engine does not implement (see
// DESIGN.md).
func cellRemove(ctx *Context, cell *CellAnchor, fc *FunctionContext, key any) (removed any, found bool, err error) {
	switch cell.State {
	case CellEmpty:
		return nil, false, nil

	case CellList:
		idx, err := searchList(fc, cell.List, key)
		if err != nil || idx < 0 {
			return nil, false, err
		}
		val, err := fc.UnTransform(cell.List[idx])
		if err != nil {
			return nil, false, err
		}
		cell.List = removeAt(cell.List, idx)
		cell.ItemCount--
		if len(cell.List) == 0 {
			cell.State = CellEmpty
		}
		return val, true, nil

	case CellDigest:
		sub, err := ctx.Open(host.Digest(cell.Digest))
		if err != nil {
			return nil, false, err
		}
		list := subRecordList(sub)
		idx, err := searchList(fc, list, key)
		if err != nil || idx < 0 {
			return nil, false, err
		}
		val, err := fc.UnTransform(list[idx])
		if err != nil {
			return nil, false, err
		}
		list = removeAt(list, idx)
		setSubRecordList(ctx, sub, list)
		cell.ItemCount--
		return val, true, nil

	case CellTree:
		return nil, false, newErr("remove", ErrInternal, "encountered reserved Tree cell state")

	default:
		return nil, false, newErr("remove", ErrInternal, "unknown cell state %d", cell.State)
	}
}

// cellScan appends every member of a cell to out, after untransform and
// the optional per-call filter (spec §4.5 "Scan").
func cellScan(ctx *Context, cell *CellAnchor, fc *FunctionContext, out *[]any) error {
	var list []any

	switch cell.State {
	case CellEmpty:
		return nil
	case CellList:
		list = cell.List
	case CellDigest:
		sub, err := ctx.Open(host.Digest(cell.Digest))
		if err != nil {
			return err
		}
		list = subRecordList(sub)
	case CellTree:
		return newErr("scan", ErrInternal, "encountered reserved Tree cell state")
	default:
		return newErr("scan", ErrInternal, "unknown cell state %d", cell.State)
	}

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
