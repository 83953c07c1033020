package udf

// DefaultSettings returns the engine defaults as a Settings value, the
// starting point create() adjusts via a user module or packaged entry.
func DefaultSettings() Settings {
	return Settings{
		Modulo:          128,
		Threshold:       101,
		HashCellMaxList: 4,
		SetTypeStore:    0,
		KeyType:         0,
	}
}

// NewDefaultRegistry returns a Registry pre-populated with the packaged
// settings profiles a deployment typically ships, analogous to the
// teacher's own db engines shipping a default hash function rather than
// requiring every caller to supply one.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.RegisterPackage("StandardSet", func(s *Settings) {
		s.Modulo = 128
		s.Threshold = 101
		s.HashCellMaxList = 4
	})

	r.RegisterPackage("LargeSet", func(s *Settings) {
		s.Modulo = 337
		s.Threshold = 1000
		s.HashCellMaxList = 32
		s.SetTypeStore = 1 // ST_SUBRECORD
	})

	r.RegisterPackage("SmallSet", func(s *Settings) {
		s.Modulo = 17
		s.Threshold = 17
		s.HashCellMaxList = 2
	})

	return r
}
