package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	s, err := New(filepath.Join(root, "uploads"), filepath.Join(root, "output"))
	require.NoError(t, err)
	return s
}

func TestNew_CreatesDirectories(t *testing.T) {
	s := newTestStore(t)
	for _, dir := range []string{s.UploadDir(), s.OutputDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestUploadName(t *testing.T) {
	now := time.Date(2020, 12, 11, 15, 30, 45, 0, time.UTC)
	assert.Equal(t, "upload_2020-12-11_1530.pdf", UploadName(now, ".pdf"))
	assert.Equal(t, "upload_2020-12-11_1530.csv", ReplaceExt(UploadName(now, ".pdf"), ".csv"))
}

func TestSaveUpload_Uniquifies(t *testing.T) {
	s := newTestStore(t)

	first, err := s.SaveUpload("upload.pdf", []byte("one"))
	require.NoError(t, err)
	second, err := s.SaveUpload("upload.pdf", []byte("two"))
	require.NoError(t, err)
	third, err := s.SaveUpload("upload.pdf", []byte("three"))
	require.NoError(t, err)

	assert.Equal(t, "upload.pdf", first)
	assert.Equal(t, "upload_1.pdf", second)
	assert.Equal(t, "upload_2.pdf", third)

	data, err := os.ReadFile(filepath.Join(s.UploadDir(), second))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestUniquify(t *testing.T) {
	dir := t.TempDir()

	name, err := Uniquify(dir, "out.csv")
	require.NoError(t, err)
	assert.Equal(t, "out.csv", name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.csv"), nil, 0o644))
	name, err = Uniquify(dir, "out.csv")
	require.NoError(t, err)
	assert.Equal(t, "out_1.csv", name)

	_, err = Uniquify(dir, "../out.csv")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestCreateAndOpenOutput(t *testing.T) {
	s := newTestStore(t)

	f, name, err := s.CreateOutput("result.csv")
	require.NoError(t, err)
	_, err = f.WriteString("unit_code\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rf, info, err := s.OpenOutput(name)
	require.NoError(t, err)
	defer rf.Close()
	data, err := io.ReadAll(rf)
	require.NoError(t, err)
	assert.Equal(t, "unit_code\n", string(data))
	assert.Equal(t, int64(len(data)), info.Size())

	require.NoError(t, s.RemoveOutput(name))
	_, _, err = s.OpenOutput(name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenOutput_RejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", ".", "..", "../uploads/x.pdf", "a/b.csv", `a\b.csv`} {
		_, _, err := s.OpenOutput(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}
