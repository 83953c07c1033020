// Package lsettest is a reusable conformance suite for the LSET engine,
// mirroring the factory-function-per-backend shape the teacher uses for
// its own db.KVDB implementations: a single RunLSetTests entry point run
// once per (host, registry) combination, exercising the public lset.Set
// API against both persistence layouts and both shipped host.Host
// backends (memhost, dbhost).
package lsettest

import (
	"encoding/gob"
	"fmt"
	"testing"

	"github.com/lsetdb/lset/internal/host"
	"github.com/lsetdb/lset/internal/host/memhost"
	ilset "github.com/lsetdb/lset/internal/lset"
	"github.com/lsetdb/lset/lib/udf"
	"github.com/lsetdb/lset/lset"
)

// idVal crosses the host.Host interface{} boundary (see testComplexKeyFunction),
// so per the dbhost codec contract it must be gob-registered by its owner.
func init() {
	gob.Register(idVal{})
}

// Factory builds a fresh Set over a fresh host, plus the registry bound
// to it and the host itself, so a test can register additional
// functions or modules before calling Create, or open the descriptor
// directly for cell-level assertions.
type Factory func() (*lset.Set, *udf.Registry, host.Host)

// MemHostFactory is the reference Factory: a fresh memhost.MemHost
// behind a registry pre-loaded with the packaged settings profiles.
func MemHostFactory() (*lset.Set, *udf.Registry, host.Host) {
	h := memhost.New()
	reg := udf.NewDefaultRegistry()
	return lset.New(h, reg), reg, h
}

// RunLSetTests runs every conformance scenario under a t.Run(name, ...)
// group, against a fresh Set (and fresh registry/host) per scenario so
// the scenarios never interfere with each other's state.
func RunLSetTests(t *testing.T, name string, factory Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("BasicAddGetExists", func(t *testing.T) { testBasic(t, factory) })
		t.Run("AddAllAbortsOnDuplicate", func(t *testing.T) { testAddAll(t, factory) })
		t.Run("RemoveAndReAdd", func(t *testing.T) { testRemoveReAdd(t, factory) })
		t.Run("TopRecordThresholdRehash", func(t *testing.T) { testTopRecRehash(t, factory) })
		t.Run("SubRecordCellPromotion", func(t *testing.T) { testSubRecCellPromotion(t, factory) })
		t.Run("SubRecordEmptyReclamation", func(t *testing.T) { testSubRecEmptyReclamation(t, factory) })
		t.Run("ComplexValueKeyFunction", func(t *testing.T) { testComplexKeyFunction(t, factory) })
		t.Run("DestroyCascade", func(t *testing.T) { testDestroyCascade(t, factory) })
		t.Run("ScanWithFilter", func(t *testing.T) { testScanFilter(t, factory) })
		t.Run("BinaryStoreModeRejected", func(t *testing.T) { testBinaryStoreModeRejected(t, factory) })
	})
}

func testBasic(t *testing.T, factory Factory) {
	s, _, _ := factory()
	const topRec, bin = "rec-basic", "myset"

	if err := s.Create(topRec, bin, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Add(topRec, bin, "a", nil, nil); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := s.Add(topRec, bin, "b", nil, nil); err != nil {
		t.Fatalf("add b: %v", err)
	}
	if err := s.Add(topRec, bin, "a", nil, nil); !lset.IsUniqueKeyViolation(err) {
		t.Fatalf("re-adding a: got %v, want UniqueKeyViolation", err)
	}

	size, err := s.Size(topRec, bin)
	if err != nil || size != 2 {
		t.Fatalf("size = %d, err = %v, want 2, nil", size, err)
	}

	if ok, err := s.Exists(topRec, bin, "a", nil); err != nil || !ok {
		t.Fatalf("exists(a) = %v, %v, want true, nil", ok, err)
	}
	if ok, err := s.Exists(topRec, bin, "c", nil); err != nil || ok {
		t.Fatalf("exists(c) = %v, %v, want false, nil", ok, err)
	}

	v, err := s.Get(topRec, bin, "a", nil, "", nil, nil)
	if err != nil || v != "a" {
		t.Fatalf("get(a) = %v, %v, want a, nil", v, err)
	}
	if _, err := s.Get(topRec, bin, "c", nil, "", nil, nil); !lset.IsNotFound(err) {
		t.Fatalf("get(c): got %v, want NotFound", err)
	}
}

func testAddAll(t *testing.T, factory Factory) {
	s, _, _ := factory()
	const topRec, bin = "rec-addall", "myset"
	if err := s.Create(topRec, bin, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := s.AddAll(topRec, bin, []any{10, 20, 30, 10}, nil, nil)
	if !lset.IsUniqueKeyViolation(err) {
		t.Fatalf("add_all: got %v, want UniqueKeyViolation", err)
	}

	size, err := s.Size(topRec, bin)
	if err != nil || size != 3 {
		t.Fatalf("size = %d, err = %v, want 3, nil", size, err)
	}

	vals, err := s.Scan(topRec, bin, nil, "", nil, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	assertSetEqual(t, vals, []any{10, 20, 30})
}

func testRemoveReAdd(t *testing.T, factory Factory) {
	s, _, _ := factory()
	const topRec, bin = "rec-remove", "myset"
	if err := s.Create(topRec, bin, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, v := range []any{"a", "b", "c"} {
		if err := s.Add(topRec, bin, v, nil, nil); err != nil {
			t.Fatalf("add %v: %v", v, err)
		}
	}

	removed, err := s.Remove(topRec, bin, "b", nil, "", nil, true, nil)
	if err != nil || removed != "b" {
		t.Fatalf("remove(b) = %v, %v, want b, nil", removed, err)
	}

	vals, err := s.Scan(topRec, bin, nil, "", nil, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	assertSetEqual(t, vals, []any{"a", "c"})

	if err := s.Add(topRec, bin, "b", nil, nil); err != nil {
		t.Fatalf("re-add b: %v", err)
	}

	if _, err := s.Remove(topRec, bin, "z", nil, "", nil, true, nil); !lset.IsNotFound(err) {
		t.Fatalf("remove(z): got %v, want NotFound", err)
	}
}

func testTopRecRehash(t *testing.T, factory Factory) {
	s, reg, _ := factory()
	const topRec, bin = "rec-toprec-rehash", "myset"

	reg.RegisterModule(&udf.Module{
		Name: "lsettest-toprec-threshold3",
		AdjustSettings: func(st *udf.Settings) {
			st.Threshold = 3
			st.SetTypeStore = int(ilset.SetTypeRecord)
		},
	})

	if err := s.Create(topRec, bin, "lsettest-toprec-threshold3"); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, v := range []any{1, 2, 3} {
		if err := s.Add(topRec, bin, v, nil, nil); err != nil {
			t.Fatalf("add %v: %v", v, err)
		}
	}

	size, err := s.Size(topRec, bin)
	if err != nil || size != 3 {
		t.Fatalf("size = %d, err = %v, want 3, nil", size, err)
	}

	vals, err := s.Scan(topRec, bin, nil, "", nil, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	assertSetEqual(t, vals, []any{1, 2, 3})
}

func testSubRecCellPromotion(t *testing.T, factory Factory) {
	s, reg, h := factory()
	const topRec, bin = "rec-subrec-cells", "myset"

	reg.RegisterModule(&udf.Module{
		Name: "lsettest-subrec-small",
		AdjustSettings: func(st *udf.Settings) {
			st.Modulo = 7
			st.Threshold = 3
			st.HashCellMaxList = 2
			st.SetTypeStore = int(ilset.SetTypeSubRecord)
		},
	})

	if err := s.Create(topRec, bin, "lsettest-subrec-small"); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i <= 20; i++ {
		if err := s.Add(topRec, bin, i, nil, nil); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	size, err := s.Size(topRec, bin)
	if err != nil || size != 21 {
		t.Fatalf("size = %d, err = %v, want 21, nil", size, err)
	}

	desc, err := ilset.DescriptorFor(h, topRec, bin)
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	if len(desc.Lset.HashDirectory) != 7 {
		t.Fatalf("hash directory has %d cells, want 7", len(desc.Lset.HashDirectory))
	}

	var sum int64
	for i, cell := range desc.Lset.HashDirectory {
		switch cell.State {
		case ilset.CellEmpty:
		case ilset.CellList:
			if len(cell.List) > 2 {
				t.Fatalf("cell %d: List holds %d members, want <= HashCellMaxList(2)", i, len(cell.List))
			}
		case ilset.CellDigest:
		default:
			t.Fatalf("cell %d: unexpected state %v", i, cell.State)
		}
		sum += cell.ItemCount
	}
	if sum != 21 {
		t.Fatalf("sum of cell item counts = %d, want 21", sum)
	}

	vals, err := s.Scan(topRec, bin, nil, "", nil, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := make([]any, 21)
	for i := range want {
		want[i] = i
	}
	assertSetEqual(t, vals, want)
}

// testSubRecEmptyReclamation drives one hash cell's sub-record down to an
// empty member list and back up, asserting the descriptor's SubRecCount
// never moves: an emptied sub-record stays allocated rather than being
// reclaimed (DESIGN.md "Empty sub-record reclamation"), and re-adding into
// it reuses the existing sub-record instead of creating a fresh one.
func testSubRecEmptyReclamation(t *testing.T, factory Factory) {
	s, reg, h := factory()
	const topRec, bin = "rec-subrec-empty", "myset"

	reg.RegisterModule(&udf.Module{
		Name: "lsettest-subrec-single-cell",
		AdjustSettings: func(st *udf.Settings) {
			st.Modulo = 1
			st.Threshold = 2
			st.HashCellMaxList = 1
			st.SetTypeStore = int(ilset.SetTypeSubRecord)
		},
	})

	if err := s.Create(topRec, bin, "lsettest-subrec-single-cell"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Add(topRec, bin, "a", nil, nil); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := s.Add(topRec, bin, "b", nil, nil); err != nil {
		t.Fatalf("add b: %v", err)
	}

	desc, err := ilset.DescriptorFor(h, topRec, bin)
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	if len(desc.Lset.HashDirectory) != 1 || desc.Lset.HashDirectory[0].State != ilset.CellDigest {
		t.Fatalf("cell 0 state = %v, want promoted to CellDigest", desc.Lset.HashDirectory[0])
	}
	subRecCount := desc.Property.SubRecCount
	if subRecCount == 0 {
		t.Fatalf("SubRecCount = 0, want > 0 after cell promotion")
	}

	if _, err := s.Remove(topRec, bin, "a", nil, "", nil, true, nil); err != nil {
		t.Fatalf("remove a: %v", err)
	}
	if _, err := s.Remove(topRec, bin, "b", nil, "", nil, true, nil); err != nil {
		t.Fatalf("remove b: %v", err)
	}

	desc, err = ilset.DescriptorFor(h, topRec, bin)
	if err != nil {
		t.Fatalf("descriptor after empty: %v", err)
	}
	if desc.Lset.HashDirectory[0].State != ilset.CellDigest {
		t.Fatalf("cell 0 state after emptying = %v, want still CellDigest (not reclaimed)", desc.Lset.HashDirectory[0].State)
	}
	if desc.Property.SubRecCount != subRecCount {
		t.Fatalf("SubRecCount after emptying = %d, want unchanged %d", desc.Property.SubRecCount, subRecCount)
	}

	if err := s.Add(topRec, bin, "a", nil, nil); err != nil {
		t.Fatalf("re-add a: %v", err)
	}

	desc, err = ilset.DescriptorFor(h, topRec, bin)
	if err != nil {
		t.Fatalf("descriptor after re-add: %v", err)
	}
	if desc.Property.SubRecCount != subRecCount {
		t.Fatalf("SubRecCount after re-add = %d, want unchanged %d (reused sub-record)", desc.Property.SubRecCount, subRecCount)
	}

	vals, err := s.Scan(topRec, bin, nil, "", nil, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	assertSetEqual(t, vals, []any{"a"})
}

type idVal struct {
	ID string
	V  int
}

func testComplexKeyFunction(t *testing.T, factory Factory) {
	s, reg, _ := factory()
	const topRec, bin = "rec-keyfunc", "myset"

	reg.RegisterKeyFunction("lsettest-id-key", func(v any) (any, error) {
		iv, ok := v.(idVal)
		if !ok {
			return nil, fmt.Errorf("value is not idVal: %T", v)
		}
		return iv.ID, nil
	})
	reg.RegisterModule(&udf.Module{
		Name: "lsettest-id-module",
		AdjustSettings: func(st *udf.Settings) {
			st.KeyFunction = "lsettest-id-key"
			st.KeyType = int(ilset.KeyTypeComplex)
		},
	})

	if err := s.Create(topRec, bin, "lsettest-id-module"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Add(topRec, bin, idVal{ID: "x", V: 1}, nil, nil); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := s.Add(topRec, bin, idVal{ID: "x", V: 2}, nil, nil); !lset.IsUniqueKeyViolation(err) {
		t.Fatalf("add second with same id: got %v, want UniqueKeyViolation", err)
	}
	if err := s.Add(topRec, bin, idVal{ID: "y", V: 1}, nil, nil); err != nil {
		t.Fatalf("add distinct id: %v", err)
	}

	size, err := s.Size(topRec, bin)
	if err != nil || size != 2 {
		t.Fatalf("size = %d, err = %v, want 2, nil", size, err)
	}
}

func testDestroyCascade(t *testing.T, factory Factory) {
	s, reg, _ := factory()
	const topRec, bin = "rec-destroy", "myset"

	reg.RegisterModule(&udf.Module{
		Name: "lsettest-destroy-subrec",
		AdjustSettings: func(st *udf.Settings) {
			st.Modulo = 4
			st.Threshold = 2
			st.HashCellMaxList = 1
			st.SetTypeStore = int(ilset.SetTypeSubRecord)
		},
	})

	if err := s.Create(topRec, bin, "lsettest-destroy-subrec"); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := s.Add(topRec, bin, i, nil, nil); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	if err := s.Destroy(topRec, bin, nil); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	if _, err := s.Size(topRec, bin); !isBinDoesNotExist(err) {
		t.Fatalf("size after destroy: got %v, want BinDoesNotExist", err)
	}
	if _, err := s.Exists(topRec, bin, 1, nil); !isBinDoesNotExist(err) {
		t.Fatalf("exists after destroy: got %v, want BinDoesNotExist", err)
	}
	if _, err := s.Get(topRec, bin, 1, nil, "", nil, nil); !isBinDoesNotExist(err) {
		t.Fatalf("get after destroy: got %v, want BinDoesNotExist", err)
	}
}

func testScanFilter(t *testing.T, factory Factory) {
	s, reg, _ := factory()
	const topRec, bin = "rec-scan-filter", "myset"

	reg.RegisterFilter("lsettest-even", func(v any, _ []any) (bool, error) {
		n, ok := v.(int)
		return ok && n%2 == 0, nil
	})

	if err := s.Create(topRec, bin, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.AddAll(topRec, bin, []any{1, 2, 3, 4, 5, 6}, nil, nil); err != nil {
		t.Fatalf("add_all: %v", err)
	}

	vals, err := s.Scan(topRec, bin, nil, "lsettest-even", nil, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	assertSetEqual(t, vals, []any{2, 4, 6})
}

// testBinaryStoreModeRejected confirms a user module requesting SM_BINARY
// is rejected at create rather than silently coerced to list mode.
func testBinaryStoreModeRejected(t *testing.T, factory Factory) {
	s, reg, _ := factory()
	const topRec, bin = "rec-binary-mode", "myset"

	reg.RegisterModule(&udf.Module{
		Name: "lsettest-binary-mode",
		AdjustSettings: func(st *udf.Settings) {
			st.StoreMode = int(ilset.StoreModeBinary)
		},
	})

	err := s.Create(topRec, bin, "lsettest-binary-mode")
	e, ok := err.(*lset.Error)
	if !ok || e.Code != ilset.ErrInputParm {
		t.Fatalf("create with SM_BINARY: got %v, want ErrInputParm", err)
	}

	_, err = s.Size(topRec, bin)
	if e, ok := err.(*lset.Error); !ok || e.Code != ilset.ErrTopRecNotFound {
		t.Fatalf("size after rejected create: got %v, want TopRecNotFound", err)
	}
}

func isBinDoesNotExist(err error) bool {
	e, ok := err.(*lset.Error)
	return ok && e.Code == ilset.ErrBinDoesNotExist
}

// assertSetEqual compares got and want as sets, ignoring order.
func assertSetEqual(t *testing.T, got, want []any) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d elements %v, want %d elements %v", len(got), got, len(want), want)
	}
	remaining := append([]any{}, want...)
	for _, g := range got {
		idx := -1
		for i, w := range remaining {
			if w == g {
				idx = i
				break
			}
		}
		if idx < 0 {
			t.Fatalf("unexpected element %v in %v, want set %v", g, got, want)
		}
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
}
