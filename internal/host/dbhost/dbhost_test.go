package dbhost_test

import (
	"testing"

	"github.com/lsetdb/lset/internal/host"
	"github.com/lsetdb/lset/internal/host/dbhost"
	"github.com/lsetdb/lset/internal/lsettest"
	"github.com/lsetdb/lset/lib/db/engines/maple"
	"github.com/lsetdb/lset/lib/udf"
	"github.com/lsetdb/lset/lset"
)

// mapleFactory runs the full lset conformance suite against a fresh
// maple-backed dbhost, proving the gob round trip preserves every
// descriptor/cell-anchor/property-map value the engine persists through
// a real db.KVDB rather than an in-memory map.
func mapleFactory() (*lset.Set, *udf.Registry, host.Host) {
	h := dbhost.New(maple.NewMapleDB(nil))
	reg := udf.NewDefaultRegistry()
	return lset.New(h, reg), reg, h
}

func TestDBHost(t *testing.T) {
	lsettest.RunLSetTests(t, "maple", mapleFactory)
}
