package lset

// Engine-wide constants. Descriptor fields are stored and dumped under
// their Go field names; there is no single-letter field-name table.
const (
	Magic         = 0x4C53 // "LS"
	EngineVersion = 1
	LdtType       = "LSET"

	MaxBinNameLen = 14

	DefaultModulo          = 128
	DefaultThreshold       = 101
	DefaultHashCellMaxList = 4
)

// RecType discriminates the role a record plays within an LSET instance.
type RecType int

const (
	RecTypeTop RecType = iota
	RecTypeSubRec
	RecTypeESR
)

func (t RecType) String() string {
	switch t {
	case RecTypeTop:
		return "Top"
	case RecTypeSubRec:
		return "SubRec"
	case RecTypeESR:
		return "ESR"
	default:
		return "Unknown"
	}
}

// SetTypeStore selects the persistence layout chosen at create time.
type SetTypeStore int

const (
	SetTypeRecord    SetTypeStore = iota // ST_RECORD: TopRecord layout
	SetTypeSubRecord                     // ST_SUBRECORD: SubRecord layout
)

func (s SetTypeStore) String() string {
	switch s {
	case SetTypeRecord:
		return "ST_RECORD"
	case SetTypeSubRecord:
		return "ST_SUBRECORD"
	default:
		return "Unknown"
	}
}

// StoreState is the compact/regular phase of a given LSET instance.
type StoreState int

const (
	StoreStateCompact StoreState = iota
	StoreStateRegular
)

func (s StoreState) String() string {
	switch s {
	case StoreStateCompact:
		return "SS_COMPACT"
	case StoreStateRegular:
		return "SS_REGULAR"
	default:
		return "Unknown"
	}
}

// StoreMode selects list vs binary packed storage. Binary mode has no write
// path: Create rejects it with ErrInputParm; see api.go.
type StoreMode int

const (
	StoreModeList StoreMode = iota
	StoreModeBinary
)

func (m StoreMode) String() string {
	switch m {
	case StoreModeList:
		return "SM_LIST"
	case StoreModeBinary:
		return "SM_BINARY"
	default:
		return "Unknown"
	}
}

// KeyType distinguishes atomic (string/number) keys from complex values
// requiring a registered key function or canonical rendering.
type KeyType int

const (
	KeyTypeAtomic KeyType = iota
	KeyTypeComplex
)

func (k KeyType) String() string {
	switch k {
	case KeyTypeAtomic:
		return "KT_ATOMIC"
	case KeyTypeComplex:
		return "KT_COMPLEX"
	default:
		return "Unknown"
	}
}

// PropertyMap holds fields common to every LDT kind, stored as the first
// element of the two-tuple descriptor in the user-named bin.
type PropertyMap struct {
	ItemCount    int64
	SubRecCount  int64
	Version      int
	LdtType      string
	Magic        int
	BinName      string
	RecType      RecType
	EsrDigest    string // empty until first sub-record is created
	ParentDigest string // sub-records only
	SelfDigest   string // sub-records only
	CreateTime   int64
}

// LsetMap holds LSET-specific configuration and storage state, stored as
// the second element of the two-tuple descriptor.
type LsetMap struct {
	SetTypeStore SetTypeStore
	StoreState   StoreState
	StoreMode    StoreMode
	KeyType      KeyType

	Modulo          uint32
	Threshold       int64
	HashCellMaxList int

	// CompactList holds inline members while StoreState == Compact.
	// Only meaningful for the SubRecord layout; TopRecord layout keeps its
	// compact-state members in LSetBin_0 instead.
	CompactList []any

	// HashDirectory holds exactly Modulo CellAnchors while
	// StoreState == Regular, SubRecord layout only.
	HashDirectory []CellAnchor

	UserModule string
	KeyFunction string
	Transform   string
	UnTransform string

	TotalCount int64 // insertions including tombstoned slots
	StoreLimit int64 // advisory capacity ceiling, 0 = unbounded

	LdrEntryCountMax int64
	LdrByteEntrySize int64
	LdrByteCountMax  int64
	BinaryStoreSize  int64
}

// CellState is the discriminant of a CellAnchor in the SubRecord layout's
// regular-state hash directory.
type CellState int

const (
	CellEmpty CellState = iota
	CellList
	CellDigest
	CellTree // reserved; rejected as ErrInternal if observed, see cell.go
)

// CellAnchor is the per-bucket control structure in the SubRecord layout's
// hash directory. Only the field matching State is populated.
type CellAnchor struct {
	State CellState

	List []any // CellList

	Digest string // CellDigest

	Tree []string // CellTree, reserved — never populated by this engine

	ItemCount   int64
	SubRecCount int64
}

// Descriptor is the full two-tuple control structure for one LSET bin.
type Descriptor struct {
	Property PropertyMap
	Lset     LsetMap
}

// LdtControlBin is the hidden, record-level bin shared across every LDT
// instance hosted in a record (spec §6 "Persisted layout"). Unlike
// PropertyMap/LsetMap, which are per-bin, this bin is per-record: it is
// created on the record's first LDT and updated (never recreated) by
// every subsequent create/destroy in that record.
const LdtControlBin = "LDTCONTROLBIN"

// LdtControlMap is the value stored under LdtControlBin.
type LdtControlMap struct {
	LdtCount   int
	VInfo      int
	Magic      int
	SelfDigest string

	// TopRecLayoutBin is the name of the bin currently holding the
	// record's TopRecord-layout LSET, reserving the shared LSetBin_*
	// namespace (spec §9 "One-LSET-per-record restriction"). Empty if no
	// TopRecord-layout LSET has claimed it.
	TopRecLayoutBin string
}

// NewDescriptor builds a fresh descriptor with engine defaults, to be
// refined by Settings (settings.go) before first persist.
func NewDescriptor(binName string, now int64) *Descriptor {
	return &Descriptor{
		Property: PropertyMap{
			Version:    EngineVersion,
			LdtType:    LdtType,
			Magic:      Magic,
			BinName:    binName,
			RecType:    RecTypeTop,
			CreateTime: now,
		},
		Lset: LsetMap{
			SetTypeStore:    SetTypeRecord,
			StoreState:      StoreStateCompact,
			StoreMode:       StoreModeList,
			KeyType:         KeyTypeAtomic,
			Modulo:          DefaultModulo,
			Threshold:       DefaultThreshold,
			HashCellMaxList: DefaultHashCellMaxList,
		},
	}
}
