// Package udf implements the user-defined-function registry the LSET
// engine treats as an external collaborator: transform/untransform pairs,
// key-extraction functions, scan/remove filters, and the settings-adjust
// hooks invoked by create's optional user module.
package udf

import "sync"

// TransformFunc converts a value before it is stored.
type TransformFunc func(value any) (any, error)

// UnTransformFunc converts a stored value back before it is returned.
type UnTransformFunc func(value any) (any, error)

// KeyFunc extracts a comparable key from a structured value.
type KeyFunc func(value any) (any, error)

// FilterFunc is applied during scan/remove/get to further restrict matches.
type FilterFunc func(value any, fargs []any) (bool, error)

// Settings mirrors the subset of LsetMap fields a user module or packaged
// settings entry is allowed to adjust (spec §4.8's table). It is the
// neutral shape internal/lset's settings.go translates to and from a
// LsetMap, kept dependency-free here so this package never imports the
// engine.
type Settings struct {
	Modulo          uint32
	Threshold       int64
	HashCellMaxList int
	SetTypeStore    int // 0 = ST_RECORD (TopRecord layout), 1 = ST_SUBRECORD (SubRecord layout)
	KeyType         int // 0 = KT_ATOMIC, 1 = KT_COMPLEX
	StoreMode       int // 0 = SM_LIST (default), 1 = SM_BINARY (rejected by lset.Create, unimplemented)
	StoreLimit      int64
	KeyFunction     string
	Transform       string
	UnTransform     string
}

// AdjustSettingsFunc mutates Settings in place, as a user module's
// adjust_settings function or a packaged-settings table entry would.
type AdjustSettingsFunc func(s *Settings)

// Module is a named user module: a settings-adjust hook plus whatever
// transform/key/filter functions it is expected to have registered under
// its own names before create() references them.
type Module struct {
	Name           string
	AdjustSettings AdjustSettingsFunc
}

// Registry is the shared function registry consulted by the engine.
// A single Registry instance is normally passed to every call for a given
// host; it has no notion of "current call" state, unlike the source's
// module-level globals (see FunctionContext in internal/lset/key.go).
type Registry struct {
	mu           sync.RWMutex
	transforms   map[string]TransformFunc
	untransforms map[string]UnTransformFunc
	keyFuncs     map[string]KeyFunc
	filters      map[string]FilterFunc
	modules      map[string]*Module
	packages     map[string]AdjustSettingsFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		transforms:   make(map[string]TransformFunc),
		untransforms: make(map[string]UnTransformFunc),
		keyFuncs:     make(map[string]KeyFunc),
		filters:      make(map[string]FilterFunc),
		modules:      make(map[string]*Module),
		packages:     make(map[string]AdjustSettingsFunc),
	}
}

func (r *Registry) RegisterTransform(name string, fn TransformFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[name] = fn
}

func (r *Registry) RegisterUnTransform(name string, fn UnTransformFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.untransforms[name] = fn
}

func (r *Registry) RegisterKeyFunction(name string, fn KeyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keyFuncs[name] = fn
}

func (r *Registry) RegisterFilter(name string, fn FilterFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[name] = fn
}

func (r *Registry) RegisterModule(m *Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[m.Name] = m
}

func (r *Registry) RegisterPackage(name string, fn AdjustSettingsFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[name] = fn
}

func (r *Registry) Transform(name string) (TransformFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.transforms[name]
	return fn, ok
}

func (r *Registry) UnTransform(name string) (UnTransformFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.untransforms[name]
	return fn, ok
}

func (r *Registry) KeyFunction(name string) (KeyFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.keyFuncs[name]
	return fn, ok
}

func (r *Registry) Filter(name string) (FilterFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.filters[name]
	return fn, ok
}

func (r *Registry) Module(name string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

func (r *Registry) Package(name string) (AdjustSettingsFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.packages[name]
	return fn, ok
}
