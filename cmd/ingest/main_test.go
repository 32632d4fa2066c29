package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_DealsIntoMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	assert.Equal(t, 0, run([]string{"-source", "deals", "-env", filepath.Join(t.TempDir(), "none.env")}))
}

func TestRun_UnknownSource(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	assert.Equal(t, 2, run([]string{"-source", "weather", "-env", filepath.Join(t.TempDir(), "none.env")}))
}

func TestRun_LiveWithoutKeyFails(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TM_API_KEY", "")
	assert.Equal(t, 1, run([]string{"-source", "live", "-env", filepath.Join(t.TempDir(), "none.env")}))
}
