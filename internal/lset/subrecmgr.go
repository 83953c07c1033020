package lset

import (
	"github.com/lsetdb/lset/internal/host"
	"github.com/lsetdb/lset/lib/telemetry"
)

// Sub-record property bin keys (spec §6 "Persisted layout").
const (
	SubRecPropBin    = "SR_PROP_BIN"
	SubRecControlBin = "LdrControlBin" // reserved
	SubRecListBin    = "LdrListBin"
)

// ensureESR lazily creates the Existence Sub-Record tying every sub-record
// of this LSET instance together (spec §3 "ESR"). A no-op once
// prop.EsrDigest is already set.
func ensureESR(ctx *Context, topKey string, prop *PropertyMap) error {
	if prop.EsrDigest != "" {
		return nil
	}

	esr, err := ctx.Create()
	if err != nil {
		return err
	}

	esrProp := PropertyMap{
		Magic:        Magic,
		LdtType:      LdtType,
		Version:      EngineVersion,
		RecType:      RecTypeESR,
		ParentDigest: topKey,
		SelfDigest:   string(esr.Digest),
	}
	esrProp.EsrDigest = string(esr.Digest)
	esr.Bins = map[string]any{SubRecPropBin: esrProp}
	ctx.MarkDirty(esr.Digest)

	prop.EsrDigest = string(esr.Digest)
	return nil
}

// createSubRecord allocates a new overflow sub-record seeded with list,
// attaching it to the ESR (creating the ESR on first use) and recording
// its property map (spec §4.5 "Sub-record creation").
func createSubRecord(ctx *Context, topKey string, prop *PropertyMap, list []any, now int64) (host.Digest, error) {
	if err := ensureESR(ctx, topKey, prop); err != nil {
		return "", err
	}

	sub, err := ctx.Create()
	if err != nil {
		return "", err
	}

	sub.Bins = map[string]any{
		SubRecPropBin: PropertyMap{
			Magic:        Magic,
			LdtType:      LdtType,
			Version:      EngineVersion,
			RecType:      RecTypeSubRec,
			ParentDigest: topKey,
			SelfDigest:   string(sub.Digest),
			EsrDigest:    prop.EsrDigest,
			CreateTime:   0,
		},
		SubRecListBin: list,
	}
	ctx.MarkDirty(sub.Digest)

	prop.SubRecCount++
	telemetry.IncSubRecCreated()
	return sub.Digest, nil
}

// subRecordList reads the value list out of an opened sub-record.
func subRecordList(sub *host.SubRecord) []any {
	list, _ := sub.Bins[SubRecListBin].([]any)
	return list
}

// setSubRecordList writes a new value list into an opened sub-record and
// marks it dirty so the context flushes it on Close.
func setSubRecordList(ctx *Context, sub *host.SubRecord, list []any) {
	sub.Bins[SubRecListBin] = list
	ctx.MarkDirty(sub.Digest)
}
