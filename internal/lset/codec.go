package lset

// Transform applies the registered transform function to a value before
// it is stored, if one is registered for this descriptor (spec §4.3 value
// codec). Values with no registered transform pass through unchanged.
func (fc *FunctionContext) Transform(value any) (any, error) {
	if fc.transform == "" {
		return value, nil
	}
	fn, ok := fc.registry.Transform(fc.transform)
	if !ok {
		return nil, newErr("codec.transform", ErrUserModuleNotFound, "transform %q not registered", fc.transform)
	}
	out, err := fn(value)
	if err != nil {
		return nil, newErr("codec.transform", ErrUserModuleBad, "transform %q failed: %v", fc.transform, err)
	}
	return out, nil
}

// UnTransform applies the registered untransform function to a stored
// value before it is returned or compared against a search key.
func (fc *FunctionContext) UnTransform(value any) (any, error) {
	if fc.untransform == "" {
		return value, nil
	}
	fn, ok := fc.registry.UnTransform(fc.untransform)
	if !ok {
		return nil, newErr("codec.untransform", ErrUserModuleNotFound, "untransform %q not registered", fc.untransform)
	}
	out, err := fn(value)
	if err != nil {
		return nil, newErr("codec.untransform", ErrUserModuleBad, "untransform %q failed: %v", fc.untransform, err)
	}
	return out, nil
}

// Filter applies the per-call scan/remove filter, if one was supplied.
// A value with no filter configured always passes.
func (fc *FunctionContext) Filter(value any) (bool, error) {
	if fc.filterName == "" {
		return true, nil
	}
	fn, ok := fc.registry.Filter(fc.filterName)
	if !ok {
		return false, newErr("codec.filter", ErrUserModuleNotFound, "filter %q not registered", fc.filterName)
	}
	ok2, err := fn(value, fc.filterArgs)
	if err != nil {
		return false, newErr("codec.filter", ErrUserModuleBad, "filter %q failed: %v", fc.filterName, err)
	}
	return ok2, nil
}
