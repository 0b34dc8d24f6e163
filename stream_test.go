package memlog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to open a stream writer in a temporary directory
func newTestStream(t *testing.T, size int64) (*StreamWriter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stream.log")
	w, err := NewStreamWriter(path, size)
	require.NoError(t, err, "open stream writer")
	return w, path
}

func TestStreamCapacityIsPageRounded(t *testing.T) {
	ps := int64(os.Getpagesize())
	for _, size := range []int64{1, 1000, ps, ps + 1} {
		w, path := newTestStream(t, size)
		assert.GreaterOrEqual(t, w.Capacity(), size)
		assert.Zero(t, w.Capacity()%ps)
		assert.Equal(t, w.Capacity(), w.Available())

		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, w.Capacity(), fi.Size(), "backing file pre-sized to capacity")
		require.NoError(t, w.Close())
	}
}

func TestStreamWriteWithinCapacity(t *testing.T) {
	w, path := newTestStream(t, 1000)
	before := w.Available()

	n, err := w.Write([]byte("hello "))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	n, err = w.WriteString("world\n")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	assert.Equal(t, before-12, w.Available())
	assert.Equal(t, int64(12), w.Offset())
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(got))
}

func TestStreamWriteTruncatesAtCapacity(t *testing.T) {
	w, path := newTestStream(t, 1)
	capacity := w.Capacity()

	payload := bytes.Repeat([]byte{'x'}, int(capacity)+100)
	n, err := w.Write(payload)
	require.NoError(t, err, "short write is not an error")
	assert.Equal(t, int(capacity), n)
	assert.Zero(t, w.Available())

	n, err = w.Write([]byte("more"))
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = w.WriteString("more")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, w.Close())
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload[:capacity], got)
}

func TestStreamFillLoop(t *testing.T) {
	w, path := newTestStream(t, 1000)
	var want []byte
	line := []byte("Test writing a string\n")
	for i := 0; w.Available() > 0; i++ {
		r := w.Available()
		n, err := w.Write(line)
		require.NoError(t, err)
		if r < int64(len(line)) {
			assert.Equal(t, int(r), n)
		} else {
			assert.Equal(t, len(line), n)
		}
		want = append(want, line[:n]...)
	}
	assert.Equal(t, w.Capacity(), w.Offset())
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStreamPrintf(t *testing.T) {
	w, path := newTestStream(t, 100)
	n, err := w.Printf("Test writing a string i=%d\n", 7)
	require.NoError(t, err)
	assert.Equal(t, len("Test writing a string i=7\n"), n)
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Test writing a string i=7\n", string(got))
}

func TestStreamPrintfTruncatesLikeWrite(t *testing.T) {
	w, path := newTestStream(t, 1)
	fill := bytes.Repeat([]byte{'-'}, int(w.Capacity())-3)
	_, err := w.Write(fill)
	require.NoError(t, err)

	n, err := w.Printf("%05d", 42)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Zero(t, w.Available())
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "000", string(got[len(fill):]))
}

func TestStreamPrintfEncodingError(t *testing.T) {
	cases := []struct {
		name   string
		format string
		args   []any
	}{
		{"missing operand", "value=%d\n", nil},
		{"extra operand", "value\n", []any{1}},
		{"bad verb", "value=%z\n", []any{1}},
		{"wrong type", "value=%d\n", []any{"one"}},
		{"panicking stringer", "value=%v\n", []any{panicStringer{}}},
		{"index out of range", "%[3]d\n", []any{1, 2}},
		{"width not an int", "%*d\n", []any{"x", 1}},
		{"negative precision", "%.*d\n", []any{-1, 5}},
		{"trailing percent", "100%", nil},
		{"slice of strings as int", "%d\n", []any{[]string{"a"}}},
		{"map key as int", "%d\n", []any{map[string]int{"a": 1}}},
		{"wrap verb", "%w\n", []any{os.ErrClosed}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, _ := newTestStream(t, 100)
			defer w.Close()

			n, err := w.Printf(c.format, c.args...)
			assert.ErrorIs(t, err, ErrEncoding)
			assert.NotErrorIs(t, err, ErrCapacityExhausted)
			assert.Zero(t, n)
			assert.Zero(t, w.Offset(), "nothing written on format failure")
		})
	}
}

type panicStringer struct{}

func (panicStringer) String() string { panic("boom") }

type hexWord uint16

func (h hexWord) Format(s fmt.State, _ rune) { fmt.Fprintf(s, "0x%04x", uint16(h)) }

type namedStringer struct{ name string }

func (n *namedStringer) String() string { return n.name }

// Caller data that looks like fmt's error markers is ordinary text.
func TestStreamPrintfMarkerLikeData(t *testing.T) {
	w, path := newTestStream(t, 100)
	n, err := w.Printf("msg=%s\n", "%!d(string=x)")
	require.NoError(t, err)
	assert.Equal(t, len("msg=%!d(string=x)\n"), n)

	_, err = w.Printf("100%%!d(\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "msg=%!d(string=x)\n100%!d(\n", string(got))
}

func TestStreamPrintfVerbs(t *testing.T) {
	cases := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{"reordered", "%[2]d %[1]d", []any{1, 2}, "2 1"},
		{"star width", "%*d|", []any{4, 7}, "   7|"},
		{"star precision", "%.*f", []any{1, 3.14159}, "3.1"},
		{"width and precision", "%6.2f", []any{3.14159}, "  3.14"},
		{"type", "%T", []any{3}, "int"},
		{"formatter", "%v", []any{hexWord(42)}, "0x002a"},
		{"error", "err=%v", []any{errors.New("disk full")}, "err=disk full"},
		{"nil stringer", "%s", []any{(*namedStringer)(nil)}, "<nil>"},
		{"stringer", "%q", []any{&namedStringer{name: "a"}}, `"a"`},
		{"bytes as string", "%s", []any{[]byte("raw")}, "raw"},
		{"int slice", "%x", []any{[]int{10, 11}}, "[a b]"},
		{"nil value", "%v", []any{nil}, "<nil>"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := appendFormatted([]byte("> "), c.format, c.args...)
			require.NoError(t, err)
			assert.Equal(t, "> "+c.want, string(got))
		})
	}
}

func TestScanFormat(t *testing.T) {
	uses, err := scanFormat("%d %*s %[1]x %%", []any{1, 2, "a"})
	require.NoError(t, err)
	assert.Equal(t, []operandUse{{0, 'd'}, {1, 0}, {2, 's'}, {0, 'x'}}, uses)

	_, err = scanFormat("%d", nil)
	assert.ErrorIs(t, err, errMissing)
	_, err = scanFormat("%d", []any{1, 2})
	assert.ErrorIs(t, err, errExtra)
	_, err = scanFormat("%[2]d", []any{1, 2})
	assert.NoError(t, err, "reordered formats may leave operands unused")
	_, err = scanFormat("%[x]d", []any{1})
	assert.ErrorIs(t, err, errBadIndex)
	_, err = scanFormat("%99999999d", []any{1})
	assert.ErrorIs(t, err, errNoVerb)
}

func TestStreamCloseTruncatesToWritten(t *testing.T) {
	w, path := newTestStream(t, 10000)
	_, err := w.WriteString("abc")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fi.Size())
}

func TestStreamCloseEmpty(t *testing.T) {
	w, path := newTestStream(t, 10)
	require.NoError(t, w.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, fi.Size())
}

func TestStreamOpenTruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.log")
	require.NoError(t, os.WriteFile(path, []byte("old content that is long"), 0o644))

	w, err := NewStreamWriter(path, 10)
	require.NoError(t, err)
	_, err = w.WriteString("new")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestStreamUseAfterClose(t *testing.T) {
	w, _ := newTestStream(t, 10)
	require.NoError(t, w.Close())

	_, err := w.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = w.WriteString("x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = w.Printf("%d", 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, w.Close(), ErrClosed)
}

func TestStreamOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewStreamWriter("", 10)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewStreamWriter(filepath.Join(dir, "zero.log"), 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NoFileExists(t, filepath.Join(dir, "zero.log"), "no file created on invalid size")

	_, err = NewStreamWriter(filepath.Join(dir, "missing", "dir.log"), 10)
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestStreamStats(t *testing.T) {
	w, _ := newTestStream(t, 1)
	defer w.Close()

	_, err := w.Write(make([]byte, w.Capacity()/4))
	require.NoError(t, err)
	st := w.GetStats()
	assert.Equal(t, w.Capacity(), st.Capacity)
	assert.Equal(t, w.Capacity()/4, st.Used)
	assert.InDelta(t, 25.0, st.Utilization, 0.01)
}
