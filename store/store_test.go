package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadBeforeSaveIsAbsent(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "snapshot.cbor"))
	require.NoError(t, err)

	data, ok, err := s.Load()
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, data)
}

func TestFileStore_SaveThenLoadRoundTrips(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "snapshot.cbor"))
	require.NoError(t, err)

	require.NoError(t, s.Save([]byte("hello")))

	data, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), data)
}

func TestFileStore_SaveOverwritesPriorSnapshot(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "snapshot.cbor"))
	require.NoError(t, err)

	require.NoError(t, s.Save([]byte("first")))
	require.NoError(t, s.Save([]byte("second")))

	data, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("second"), data)
}

func TestNewFileStore_RejectsMissingParentDir(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist", "snapshot.cbor"))
	require.Error(t, err)
}
