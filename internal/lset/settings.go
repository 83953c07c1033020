package lset

import "github.com/lsetdb/lset/lib/udf"

// UserModule is the optional settings argument create() accepts (spec
// §4.8): either a string naming a registered user module whose
// AdjustSettings hook runs, or a map recognizing a "Package" entry naming
// a packaged-settings profile. Unknown map entries are ignored.
type UserModule = any

// ApplySettings applies an optional user module to lm, mutating it in
// place. A nil userModule leaves the engine defaults untouched.
func ApplySettings(registry *udf.Registry, lm *LsetMap, userModule UserModule) error {
	if userModule == nil {
		return nil
	}

	switch m := userModule.(type) {
	case string:
		mod, ok := registry.Module(m)
		if !ok {
			return newErr("settings", ErrUserModuleNotFound, "user module %q not registered", m)
		}
		lm.UserModule = m
		s := settingsFromLsetMap(lm)
		if mod.AdjustSettings != nil {
			mod.AdjustSettings(&s)
		}
		applySettingsToLsetMap(lm, s)
		return nil

	case map[string]any:
		pkgName, ok := m["Package"].(string)
		if !ok {
			// no recognized entries; unknown keys are ignored per spec §4.8
			return nil
		}
		fn, ok := registry.Package(pkgName)
		if !ok {
			return newErr("settings", ErrUserModuleNotFound, "package %q not registered", pkgName)
		}
		s := settingsFromLsetMap(lm)
		fn(&s)
		applySettingsToLsetMap(lm, s)
		return nil

	default:
		return newErr("settings", ErrUserModuleBad, "unsupported user module type %T", userModule)
	}
}

func settingsFromLsetMap(lm *LsetMap) udf.Settings {
	return udf.Settings{
		Modulo:          lm.Modulo,
		Threshold:       lm.Threshold,
		HashCellMaxList: lm.HashCellMaxList,
		SetTypeStore:    int(lm.SetTypeStore),
		KeyType:         int(lm.KeyType),
		StoreMode:       int(lm.StoreMode),
		StoreLimit:      lm.StoreLimit,
		KeyFunction:     lm.KeyFunction,
		Transform:       lm.Transform,
		UnTransform:     lm.UnTransform,
	}
}

func applySettingsToLsetMap(lm *LsetMap, s udf.Settings) {
	lm.Modulo = s.Modulo
	lm.Threshold = s.Threshold
	lm.HashCellMaxList = s.HashCellMaxList
	lm.SetTypeStore = SetTypeStore(s.SetTypeStore)
	lm.KeyType = KeyType(s.KeyType)
	lm.StoreMode = StoreMode(s.StoreMode)
	lm.StoreLimit = s.StoreLimit
	lm.KeyFunction = s.KeyFunction
	lm.Transform = s.Transform
	lm.UnTransform = s.UnTransform
}
