package streamreader

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// plainBzip2Hex is `bzip2 -9` applied to plain, captured once so the test
// doesn't need a bzip2 encoder (the standard library only decodes bzip2,
// never encodes it).
const plainBzip2Hex = "425a6839314159265359c1c6d593000001ce8000102001288004001000200021a1a36a10c0898377ca211e2ee48a70a121838dab26"

const plain = ">r1\nACGTACGT\n"

func writeFile(t *testing.T, suffix string, write func(w io.Writer)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), fmt.Sprintf("test-%d%s", time.Now().UnixNano(), suffix))
	fh, err := os.Create(path)
	require.NoError(t, err)
	write(fh)
	require.NoError(t, fh.Close())
	return path
}

func drain(t *testing.T, r Reader) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 4)
	for !r.AtEnd() {
		n, err := r.ReadInto(buf)
		require.NoError(t, err)
		out = append(out, buf[:n]...)
		if n == 0 && r.AtEnd() {
			break
		}
	}
	return out
}

func TestOpenRaw(t *testing.T) {
	path := writeFile(t, ".fa", func(w io.Writer) { _, _ = io.WriteString(w, plain) })
	r, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	require.Equal(t, rawAlignment, r.Alignment())
	require.Equal(t, []byte(plain), drain(t, r))
}

func TestOpenGzip(t *testing.T) {
	path := writeFile(t, ".fa.gz", func(w io.Writer) {
		gw := gzip.NewWriter(w)
		_, _ = gw.Write([]byte(plain))
		_ = gw.Close()
	})
	r, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	require.Equal(t, 0, r.Alignment())
	require.Equal(t, []byte(plain), drain(t, r))
}

func TestOpenBzip2(t *testing.T) {
	raw, err := hex.DecodeString(plainBzip2Hex)
	require.NoError(t, err)

	path := writeFile(t, ".fa.bz2", func(w io.Writer) { _, _ = w.Write(raw) })
	r, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	require.Equal(t, 0, r.Alignment())
	require.Equal(t, []byte(plain), drain(t, r))
}

func TestOpenStdin(t *testing.T) {
	orig := os.Stdin
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	os.Stdin = pr
	defer func() { os.Stdin = orig }()

	go func() {
		_, _ = io.WriteString(pw, plain)
		_ = pw.Close()
	}()

	r, err := Open("-")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	require.Equal(t, []byte(plain), drain(t, r))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist.fa"))
	require.Error(t, err)
	var invalid *InvalidHandleError
	require.ErrorAs(t, err, &invalid)
}
