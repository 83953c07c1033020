// Package host declares the external-collaborator contract the LSET engine
// is built against: record open/update/remove, sub-record lifecycle,
// digest generation, and record-type flagging. It is the Go analogue of the
// db.KVDB interface the teacher's store layer is built against — one
// interface, with two concrete implementations shipped alongside it
// (internal/host/memhost, in memory, and internal/host/dbhost, over a
// db.KVDB), so the engine is runnable and testable end-to-end.
package host

// Digest is a host-generated content identifier for a sub-record.
type Digest string

// BinFlags mirrors the database-level bin attributes the engine must
// re-assert on every write (spec §9 "Record-type flagging").
type BinFlags int

const (
	BinFlagNone       BinFlags = 0
	BinFlagRestricted BinFlags = 1 << iota
	BinFlagHidden
	BinFlagControl
)

// TopRecord is the user's primary record, addressed by an opaque key. Bins
// hold arbitrary values — including the PropertyMap/LsetMap descriptor
// tuple and, for the TopRecord layout, the hidden numbered bucket bins.
type TopRecord struct {
	Key  string
	Bins map[string]any
}

// SubRecord is a child record created on demand during cell promotion,
// identified by its Digest and tied to its top record's ESR.
type SubRecord struct {
	Digest Digest
	Bins   map[string]any
}

// Host is the set of operations the engine requires from its runtime.
// Every method is synchronous: the engine runs single-threaded and
// cooperatively within one host-provided call (spec §5), so the host is
// responsible for serializing concurrent calls against the same top
// record, not the engine.
type Host interface {
	// OpenTop opens the top record for key. found is false if no such
	// record exists yet (not an error).
	OpenTop(key string) (rec *TopRecord, found bool, err error)
	// UpdateTop persists rec, creating it if it did not already exist.
	UpdateTop(rec *TopRecord) error
	// RemoveTop deletes the top record for key.
	RemoveTop(key string) error

	// NewDigest generates a fresh content identifier for a sub-record.
	NewDigest() Digest

	// SetRecordType flags rec as carrying at least one LDT bin.
	SetRecordType(rec *TopRecord)
	// SetBinFlags (re-)asserts flags on bin; host APIs do not persist
	// flags across value replacement, so the engine calls this after
	// every assignment to a flagged bin.
	SetBinFlags(rec *TopRecord, bin string, flags BinFlags)

	// CreateSubRecord allocates a new sub-record attached to the top
	// record identified by topKey.
	CreateSubRecord(topKey string) (*SubRecord, error)
	// OpenSubRecord opens an existing sub-record by digest.
	OpenSubRecord(topKey string, digest Digest) (*SubRecord, error)
	// UpdateSubRecord persists a dirty sub-record.
	UpdateSubRecord(sub *SubRecord) error
	// CloseSubRecord releases a sub-record handle. Implementations may
	// treat this as a no-op beyond bookkeeping; persistence happens in
	// UpdateSubRecord.
	CloseSubRecord(sub *SubRecord) error
	// RemoveSubRecord deletes a sub-record. Used both for individual
	// cell teardown (not currently exercised, see DESIGN.md open
	// question on empty sub-record reclamation) and, transitively, for
	// ESR cascade removal.
	RemoveSubRecord(topKey string, digest Digest) error

	// Now returns the current host time for CreateTime stamps.
	Now() int64
}
