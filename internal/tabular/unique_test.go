package tabular

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/walkthrough.report/internal/fsutil"
)

func TestUniqueFilenameNoCollision(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	path, err := UniqueFilename(mfs, "/out", "summary.csv")
	require.NoError(t, err)
	assert.Equal(t, "/out/summary.csv", path)
	assert.True(t, mfs.Exists("/out"), "directory should be created")
}

func TestUniqueFilenameSuffixesInOrder(t *testing.T) {
	dir := t.TempDir()
	fs := fsutil.OSFileSystem{}

	create := func(p string) {
		w, err := fs.Create(p)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	create(filepath.Join(dir, "summary.csv"))

	var got []string
	for i := 0; i < 3; i++ {
		p, err := UniqueFilename(fs, dir, "summary.csv")
		require.NoError(t, err)
		got = append(got, filepath.Base(p))
		create(p)
	}
	assert.Equal(t, []string{"summary_0.csv", "summary_1.csv", "summary_2.csv"}, got)
}

func TestUniqueFilenameCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	fs := fsutil.OSFileSystem{}
	p, err := UniqueFilename(fs, dir, "density.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "density.txt"), p)
	assert.True(t, fs.Exists(dir))
}
