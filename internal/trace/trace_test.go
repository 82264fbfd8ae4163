package trace

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/pagesim/internal/page"
)

func TestParse_NumbersAndWrites(t *testing.T) {
	got, err := Parse("1 2w, 3W\n# comment line\n4 # trailing\n")
	require.NoError(t, err)
	require.Equal(t, []page.Access{
		{Number: 1},
		{Number: 2, Write: true},
		{Number: 3, Write: true},
		{Number: 4},
	}, got)
}

func TestParse_Empty(t *testing.T) {
	got, err := Parse("  \n# nothing\n")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestParse_LongSingleLine(t *testing.T) {
	// 120 KiB on one line, well past bufio.Scanner's default token size.
	line := strings.Repeat("12345 ", 20000)

	got, err := Parse(line)
	require.NoError(t, err)
	require.Len(t, got, 20000)
	require.Equal(t, page.Access{Number: 12345}, got[19999])

	got, err = Parse(line + "\n7w")
	require.NoError(t, err)
	require.Len(t, got, 20001)
	require.Equal(t, page.Access{Number: 7, Write: true}, got[20000])
}

func TestReadFile_LongSingleLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oneline.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("3 1w ", 15000)+"\n"), 0o644))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 30000)
	require.Equal(t, page.Access{Number: 1, Write: true}, got[29999])
}

func TestParse_InvalidToken(t *testing.T) {
	for _, in := range []string{"1 x", "1\n-2", "w", "99999999999", "3ww"} {
		_, err := Parse(in)
		require.ErrorIs(t, err, ErrInvalidToken, in)
	}

	_, err := Parse("1 2\n3 abc")
	require.ErrorContains(t, err, "line 2")
}

func TestFormat_ParsesBack(t *testing.T) {
	in := []page.Access{{Number: 0}, {Number: 7, Write: true}, {Number: 3}}
	require.Equal(t, "0 7w 3", Format(in))

	got, err := Parse(Format(in))
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestCodecFor(t *testing.T) {
	require.Equal(t, CodecSnappy, CodecFor("a/b.sz"))
	require.Equal(t, CodecSnappy, CodecFor("b.SNAPPY"))
	require.Equal(t, CodecLZ4, CodecFor("trace.lz4"))
	require.Equal(t, CodecPlain, CodecFor("trace.txt"))
	require.Equal(t, CodecPlain, CodecFor("trace"))
}

func TestFile_AllCodecs(t *testing.T) {
	dir := t.TempDir()
	accesses := Random(rand.New(rand.NewPCG(1, 2)), 100, 8, 0.25)

	for _, name := range []string{"trace.txt", "trace.sz", "trace.lz4"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, accesses), name)

		got, err := ReadFile(path)
		require.NoError(t, err, name)
		require.Equal(t, accesses, got, name)
	}
}

func TestFile_CompressedIsNotPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.lz4")
	require.NoError(t, WriteFile(path, page.Reads([]uint32{1, 2, 3})))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = Parse(string(raw))
	require.Error(t, err)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRandom(t *testing.T) {
	a := Random(rand.New(rand.NewPCG(5, 6)), 50, 4, 0)
	b := Random(rand.New(rand.NewPCG(5, 6)), 50, 4, 0)
	require.Equal(t, a, b)
	require.Len(t, a, 50)
	for _, x := range a {
		require.Less(t, x.Number, uint32(4))
		require.False(t, x.Write)
	}

	require.Nil(t, Random(rand.New(rand.NewPCG(1, 1)), 0, 4, 0))
	require.Nil(t, Random(rand.New(rand.NewPCG(1, 1)), 10, 0, 0))
}
