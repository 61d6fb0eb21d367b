package records

import (
	"testing"

	"flygen/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	b, err := Open(&infra.Config{RecordBackend: infra.RecordBackendNone}, nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = Open(&infra.Config{RecordBackend: infra.RecordBackendMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	b, err = Open(&infra.Config{RecordBackend: infra.RecordBackendPostgres}, &stubSQL{})
	require.NoError(t, err)
	assert.IsType(t, &PostgresBackend{}, b)

	_, err = Open(&infra.Config{RecordBackend: infra.RecordBackendPostgres}, nil)
	assert.Error(t, err)

	_, err = Open(&infra.Config{RecordBackend: "etcd"}, nil)
	assert.Error(t, err)
}
