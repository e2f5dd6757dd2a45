package gff

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoader_LoadFile(t *testing.T) {
	res, err := NewLoader("../../testdata/ref.gff3").Load()
	require.NoError(t, err)

	assert.Len(t, res.Records, 14)
	assert.Empty(t, res.Malformed)
	assert.Zero(t, res.SkippedCount())
}

func TestLoader_LoadHierarchy(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoader("../../testdata/pred.gff3")
	l.SetLogger(zap.New(core))

	h, res, err := l.LoadHierarchy(BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, h.GeneCount())
	assert.Equal(t, 3, h.TranscriptCount())
	assert.Equal(t, 6, h.ExonCount())
	require.Len(t, h.Orphans(), 1)
	assert.Equal(t, 14, h.Orphans()[0].Line)

	require.Len(t, res.Malformed, 1)
	assert.Equal(t, 16, res.Malformed[0].Line)
	assert.Equal(t, map[string]int{"five_prime_UTR": 1}, res.Skipped)

	assert.Equal(t, 1, logs.FilterMessage("skipping malformed record").Len())
	skipped := logs.FilterMessage("skipping unsupported feature type").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, zapcore.WarnLevel, skipped[0].Level)
	assert.Equal(t, 1, logs.FilterField(zap.String("kind", string(WarnOrphanReference))).Len())
	assert.Equal(t, 1, logs.FilterMessage("loaded annotation").Len())
}

func TestLoader_Gzip(t *testing.T) {
	plain, err := os.ReadFile("../../testdata/ref.gff3")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ref.gff3.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write(plain)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	h, _, err := NewLoader(path).LoadHierarchy(BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, h.GeneCount())
	assert.Equal(t, 8, h.ExonCount())
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader("../../testdata/does-not-exist.gff3").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
