package fastq

import (
	"testing"

	"github.com/stretchr/testify/require"

	"seqcache/core/cacheman"
	"seqcache/core/recparser"
)

// memReader is a streamreader.Reader over a fixed byte slice, for tests that
// don't need a real file or transport.
type memReader struct {
	data  []byte
	pos   int
	atEnd bool
}

func newMemReader(s string) *memReader { return &memReader{data: []byte(s)} }

func (r *memReader) ReadInto(buf []byte) (int, error) {
	n := copy(buf, r.data[r.pos:])
	r.pos += n
	if r.pos >= len(r.data) {
		r.atEnd = true
	}
	return n, nil
}

func (r *memReader) Alignment() int { return 0 }
func (r *memReader) AtEnd() bool    { return r.atEnd }
func (r *memReader) Close() error   { return nil }

func newParser(t *testing.T, data string, bufSize int) *Parser {
	t.Helper()
	m, err := cacheman.NewManager(newMemReader(data), 1, bufSize)
	require.NoError(t, err)
	return New(m.Handle(0), nil)
}

func TestSingleRecord(t *testing.T) {
	p := newParser(t, "@r1\nACGT\n+\n!!!!\n", 64)
	rec, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "r1", rec.Name)
	require.Equal(t, "ACGT", rec.Sequence)
	require.Equal(t, "!!!!", rec.Accuracy)
}

func TestPlusLineMayRepeatName(t *testing.T) {
	p := newParser(t, "@r1\nACGT\n+r1\n!!!!\n", 64)
	rec, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "r1", rec.Name)
}

func TestPairedMateSuffixStripped(t *testing.T) {
	p := newParser(t, "@r1/1\nACGT\n+\n!!!!\n@r1/2\nTTTT\n+\n####\n", 64)

	first, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "r1", first.Name)
	require.Equal(t, "/1", first.Annotations)

	second, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "r1", second.Name)
	require.Equal(t, "/2", second.Annotations)
	require.Equal(t, first.Name, second.Name, "paired reads share the same stripped name")
}

func TestMateSuffixPreservesExistingAnnotation(t *testing.T) {
	p := newParser(t, "@r1/1 note\nACGT\n+\n!!!!\n", 64)
	rec, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "r1", rec.Name)
	require.Equal(t, "note", rec.Annotations, "an existing annotation wins over the mate marker")
}

func TestWrongSigilIsFormatError(t *testing.T) {
	p := newParser(t, ">r1\nACGT\n+\n!!!!\n", 64)
	_, err := p.Next()
	var fe *recparser.FormatError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "fastq", fe.Format)
}

func TestMismatchedLengthsIsFormatError(t *testing.T) {
	p := newParser(t, "@r1\nACGT\n+\n!!\n", 64)
	_, err := p.Next()
	var fe *recparser.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestMissingPlusLineIsFormatError(t *testing.T) {
	p := newParser(t, "@r1\nACGT\nnotplus\n!!!!\n", 64)
	_, err := p.Next()
	var fe *recparser.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestMalformedRecordDoesNotStopSubsequentReads(t *testing.T) {
	p := newParser(t, "@r1\nACGT\n+\n!!\n@r2\nTTTT\n+\n####\n", 64)

	_, err := p.Next()
	require.Error(t, err)
	require.False(t, p.Done(), "a format error is not terminal")

	rec, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "r2", rec.Name)
	require.Equal(t, "TTTT", rec.Sequence)
}

func TestBytesConsumedCoversAllFourLines(t *testing.T) {
	const data = "@r1\nACGT\n+\n!!!!\n"
	p := newParser(t, data, 64)
	rec, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, len(data), rec.BytesConsumed)
}

func TestEmptyInputIsImmediatelyDone(t *testing.T) {
	p := newParser(t, "", 64)
	_, err := p.Next()
	require.ErrorIs(t, err, recparser.ErrNoMoreReads)
	require.True(t, p.Done())
}
