package fasta

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

func TestSingleRecordAnnotations(t *testing.T) {
	p := newParser(t, ">r1 some note\nACGT\nACGT\n", 64)
	rec, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "r1", rec.Name)
	require.Equal(t, "some note", rec.Annotations)
	require.Equal(t, "ACGTACGT", rec.Sequence)
	require.Equal(t, "", rec.Accuracy)
}

func TestHeaderWithoutAnnotations(t *testing.T) {
	p := newParser(t, ">r1\nACGT\n", 64)
	rec, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "r1", rec.Name)
	require.Equal(t, "", rec.Annotations)
}

func TestMultipleRecords(t *testing.T) {
	p := newParser(t, ">r1\nACGT\n>r2\nTTTT\nGGGG\n", 64)

	first, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "r1", first.Name)
	require.Equal(t, "ACGT", first.Sequence)

	second, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "r2", second.Name)
	require.Equal(t, "TTTTGGGG", second.Sequence)

	_, err = p.Next()
	require.ErrorIs(t, err, recparser.ErrNoMoreReads)
	require.True(t, p.Done())
}

func TestSequenceWhitespaceStripped(t *testing.T) {
	p := newParser(t, ">r1\nAC GT\n AC GT \n", 64)
	rec, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "ACGTACGT", rec.Sequence)
}

func TestZeroLengthSequenceRejected(t *testing.T) {
	p := newParser(t, ">r1\n>r2\nACGT\n", 64)
	_, err := p.Next()
	var fe *recparser.FormatError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "fasta", fe.Format)
}

func TestRecordNotStartingWithSigil(t *testing.T) {
	p := newParser(t, "garbage\n>r1\nACGT\n", 64)
	_, err := p.Next()
	var fe *recparser.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestBytesConsumedCoversWholeRecord(t *testing.T) {
	const data = ">r1 note\nACGT\nACGT\n"
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
