package lset

// searchList scans a value list linearly (spec §4.3). For each non-nil
// slot it applies untransform, extracts the key, and compares against
// searchKey. It returns the zero-based index of the first match, or -1.
func searchList(fc *FunctionContext, list []any, searchKey any) (int, error) {
	for i, raw := range list {
		if raw == nil {
			continue
		}
		val, err := fc.UnTransform(raw)
		if err != nil {
			return -1, err
		}
		key, err := fc.ExtractKey(val)
		if err != nil {
			return -1, err
		}
		if keysEqual(key, searchKey) {
			return i, nil
		}
	}
	return -1, nil
}

// removeAt removes the element at index i from list using swap-with-last
// + truncate (spec §9 "List delete strategy": order-breaking but O(1),
// adopted uniformly since LSET membership, not order, is the contract).
func removeAt(list []any, i int) []any {
	last := len(list) - 1
	list[i] = list[last]
	return list[:last]
}
