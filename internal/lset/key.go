package lset

import (
	"fmt"
	"github.com/lsetdb/lset/lib/udf"
)

// FunctionContext bundles the per-call function bindings the engine
// consults during search/insert/scan/remove: which key extractor,
// transform/untransform pair, and scan/remove filter apply. It replaces
// the module-level mutable globals described in spec §9's design notes —
// no state here survives between calls; a fresh FunctionContext is built
// per API entry point from the stored LsetMap plus whatever filter the
// caller passed for that one call.
type FunctionContext struct {
	registry *udf.Registry

	keyFuncName string
	transform   string
	untransform string

	filterName string
	filterArgs []any
}

// NewFunctionContext builds a FunctionContext from a descriptor's function
// bindings and an optional per-call filter.
func NewFunctionContext(registry *udf.Registry, lm *LsetMap, filterName string, filterArgs []any) *FunctionContext {
	return &FunctionContext{
		registry:    registry,
		keyFuncName: lm.KeyFunction,
		transform:   lm.Transform,
		untransform: lm.UnTransform,
		filterName:  filterName,
		filterArgs:  filterArgs,
	}
}

// ExtractKey produces a comparable key from a user value (spec §4.1):
// atomic values are their own key, else a registered key function applies,
// else the value is rendered as a canonical string.
func (fc *FunctionContext) ExtractKey(value any) (any, error) {
	if isAtomic(value) {
		return value, nil
	}

	if fc.keyFuncName != "" {
		fn, ok := fc.registry.KeyFunction(fc.keyFuncName)
		if !ok {
			return nil, newErr("key.extract", ErrUserModuleNotFound, "key function %q not registered", fc.keyFuncName)
		}
		key, err := fn(value)
		if err != nil {
			return nil, newErr("key.extract", ErrUserModuleBad, "key function %q failed: %v", fc.keyFuncName, err)
		}
		return key, nil
	}

	return canonicalString(value), nil
}

// isAtomic reports whether v is a scalar type usable directly as a key
// (spec §4.1 rule 1).
func isAtomic(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// canonicalString renders a structured value as a deterministic string,
// the fallback key when no user KeyFunction is registered (spec §4.1
// rule 3).
func canonicalString(v any) string {
	return fmt.Sprintf("%+v", v)
}

// sameKeyType reports whether two extracted keys are comparable — cross
// type comparisons never match (spec §4.1).
func sameKeyType(a, b any) bool {
	return fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

// keysEqual reports whether two extracted keys denote the same member.
func keysEqual(a, b any) bool {
	return sameKeyType(a, b) && a == b
}
