package lset

import "github.com/lsetdb/lset/internal/host"

// validateRecBinAndMap runs the descriptor validation every entry point
// performs (spec §4.7). It opens the top record, and, if the named bin is
// present, decodes and sanity-checks its descriptor.
//
// If mustExist is true, the top record and a valid descriptor must already
// exist. If mustExist is false, either an absent bin or a valid descriptor
// is accepted, but a present-and-corrupt descriptor is still rejected —
// this is the path create() uses.
func validateRecBinAndMap(h host.Host, topKey, binName string, mustExist bool) (*host.TopRecord, *Descriptor, error) {
	if binName == "" {
		return nil, nil, newErr("validate", ErrNullBinName, "bin name must not be empty")
	}
	if len(binName) > MaxBinNameLen {
		return nil, nil, newErr("validate", ErrBinNameTooLong, "bin name %q exceeds %d characters", binName, MaxBinNameLen)
	}

	rec, found, err := h.OpenTop(topKey)
	if err != nil {
		return nil, nil, newErr("validate", ErrInternal, "failed to open top record: %v", err)
	}
	if !found {
		if mustExist {
			return nil, nil, newErr("validate", ErrTopRecNotFound, "top record %q does not exist", topKey)
		}
		return nil, nil, nil
	}

	raw, ok := rec.Bins[binName]
	if !ok {
		if mustExist {
			return rec, nil, newErr("validate", ErrBinDoesNotExist, "bin %q does not exist", binName)
		}
		return rec, nil, nil
	}

	desc, ok := raw.(*Descriptor)
	if !ok {
		return rec, nil, newErr("validate", ErrBinDamaged, "bin %q does not hold an LSET descriptor", binName)
	}

	if desc.Property.Magic != Magic || desc.Property.LdtType != LdtType {
		return rec, nil, newErr("validate", ErrBinDamaged, "bin %q failed magic/type check", binName)
	}

	if desc.Property.Version > EngineVersion {
		return rec, nil, newErr("validate", ErrVersionMismatch, "descriptor version %d newer than engine version %d", desc.Property.Version, EngineVersion)
	}

	return rec, desc, nil
}
