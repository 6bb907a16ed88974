package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "settings", []byte(`{"language":"en"}`)))

	data, err := s.Get(ctx, "settings")
	require.NoError(t, err)
	require.JSONEq(t, `{"language":"en"}`, string(data))
}

func TestPutReplacesExistingBlob(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "categories", []byte(`[1]`)))
	require.NoError(t, s.Put(ctx, "categories", []byte(`[1,2]`)))

	data, err := s.Get(ctx, "categories")
	require.NoError(t, err)
	require.Equal(t, "[1,2]", string(data))
}

func TestGetMissingBlobReturnsErrNotFound(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "x", []byte("1")))
	require.NoError(t, s.Delete(ctx, "x"))
	require.NoError(t, s.Delete(ctx, "x"))

	_, err = s.Get(ctx, "x")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenCreatesParentDirAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "voxpad.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "k", []byte("v")))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(data))
}

func TestDefaultPathUsesXDGStateHome(t *testing.T) {
	xdgStateHome := t.TempDir()
	t.Setenv("XDG_STATE_HOME", xdgStateHome)
	t.Setenv("HOME", t.TempDir())

	path, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdgStateHome, "voxpad", "voxpad.db"), path)
}

func TestDefaultPathFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "state", "voxpad", "voxpad.db"), path)
}
