package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func missingEnv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "none.env")
}

func TestRun_BadFlag(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-nope"}))
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("STORE_DRIVER", "bogus")
	assert.Equal(t, 2, run([]string{"-env", missingEnv(t)}))
}

func TestRun_CacheInitFailureReturnsAfterCleanup(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_URL", "ftp://not-redis")
	assert.Equal(t, 1, run([]string{"-env", missingEnv(t)}))
}
