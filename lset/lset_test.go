package lset_test

import (
	"testing"

	"github.com/lsetdb/lset/internal/lsettest"
)

func TestLSet(t *testing.T) {
	lsettest.RunLSetTests(t, "memhost", lsettest.MemHostFactory)
}
