package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/scanner"
)

func TestScanner_Lookahead(t *testing.T) {
	t.Parallel()

	s := scanner.New([]byte("abc"), "f.txt", nil)

	b, ok := s.Peek(0)
	assert.True(t, ok)
	assert.Equal(t, byte('a'), b)

	b, ok = s.Peek(2)
	assert.True(t, ok)
	assert.Equal(t, byte('c'), b)

	_, ok = s.Peek(3)
	assert.False(t, ok)
	_, ok = s.Peek(-1)
	assert.False(t, ok)

	assert.Equal(t, 0, s.Offset(), "peek never moves the cursor")
	assert.True(t, s.PeekIs(1, 'b'))
	assert.True(t, s.HasPrefix("ab"))
	assert.False(t, s.HasPrefix("abcd"))
}

func TestScanner_Consumption(t *testing.T) {
	t.Parallel()

	s := scanner.New([]byte("hello world"), "", nil)

	assert.False(t, s.Attempt("help"))
	assert.Equal(t, 0, s.Offset())
	assert.True(t, s.Attempt("hello"))
	assert.Equal(t, 1, s.SkipSpaces())

	b, ok := s.Eat()
	require.True(t, ok)
	assert.Equal(t, byte('w'), b)

	prev, ok := s.PrevByte()
	require.True(t, ok)
	assert.Equal(t, byte('w'), prev)

	s.Consume(-3)
	assert.Equal(t, 7, s.Offset())

	s.Consume(100)
	assert.True(t, s.EOF())
	assert.Equal(t, 11, s.Offset())

	_, ok = s.Eat()
	assert.False(t, ok)
}

func TestScanner_Until(t *testing.T) {
	t.Parallel()

	s := scanner.New([]byte("key: value\nnext"), "cfg", nil)

	span, err := s.Until(':')
	require.NoError(t, err)
	assert.Equal(t, "key", span.String())
	assert.Equal(t, scanner.Location{Line: 1, Column: 1}, span.Location)
	assert.True(t, s.PeekIs(0, ':'))

	rest := s.UntilLineEnd()
	assert.Equal(t, ": value", rest.String())
	assert.True(t, s.AttemptByte('\n'))
	assert.True(t, s.AtLineStart())

	_, err = s.Until('}')
	require.Error(t, err)
	assert.Equal(t, "cfg:2:5: unexpected EOF", err.Error())
	assert.True(t, s.EOF())
}

func TestScanner_Expect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		lit     string
		wantErr string
	}{
		{"match", "{{ x", "{{", ""},
		{"mismatch", "{x", "{{", `t.tmpl:1:1: expected "{{", got "{x"`},
		{"mismatch stops at newline", "a\nb", "ab", `t.tmpl:1:1: expected "ab", got "a"`},
		{"eof", "", "}}", `t.tmpl:1:1: expected "}}", got EOF`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := scanner.New([]byte(tt.src), "t.tmpl", reporter.New())
			err := s.Expect(tt.lit)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, len(tt.lit), s.Offset())
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.ErrorIs(t, err, reporter.ErrFailure)
		})
	}
}

func TestScanner_Locations(t *testing.T) {
	t.Parallel()

	src := []byte("ab\ncd\n\nef")
	s := scanner.New(src, "", nil)

	tests := []struct {
		offset int
		want   scanner.Location
	}{
		{0, scanner.Location{Line: 1, Column: 1}},
		{1, scanner.Location{Line: 1, Column: 2}},
		{2, scanner.Location{Line: 1, Column: 3}},
		{3, scanner.Location{Line: 2, Column: 1}},
		{6, scanner.Location{Line: 3, Column: 1}},
		{8, scanner.Location{Line: 4, Column: 2}},
		{9, scanner.Location{Line: 4, Column: 3}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.LocationAt(tt.offset), "offset %d", tt.offset)
	}

	s.Consume(4)
	assert.Equal(t, 1, s.Column())
	assert.Equal(t, "ab\nc", s.SpanFrom(0).String())
}

func TestScanner_NewAt(t *testing.T) {
	t.Parallel()

	rep := reporter.New()
	body := scanner.Span{Text: []byte("x\nyz"), Location: scanner.Location{Line: 5, Column: 3}}
	s := scanner.FromSpan(body, "post.md", rep)

	assert.Equal(t, scanner.Location{Line: 5, Column: 3}, s.Location())
	assert.Equal(t, scanner.Location{Line: 5, Column: 4}, s.LocationAt(1))
	assert.Equal(t, scanner.Location{Line: 6, Column: 2}, s.LocationAt(3))

	s.Consume(3)
	err := s.Fail("bad %s", "thing")
	assert.Equal(t, "post.md:6:2: bad thing", err.Error())
	assert.Same(t, rep.Err(), mustFailure(t, err))
}

func TestScanner_Note(t *testing.T) {
	t.Parallel()

	rep := reporter.New()
	s := scanner.New([]byte("abc"), "a.tmpl", rep)

	s.Note(scanner.Location{Line: 1, Column: 1}, "ignored without a failure")
	assert.Nil(t, rep.Err())

	err := s.FailAt(scanner.Location{Line: 1, Column: 2}, "boom")
	s.Note(scanner.Location{Line: 1, Column: 1}, "in template included from here")
	assert.Equal(t, "a.tmpl:1:2: boom\na.tmpl:1:1: note: in template included from here", err.Error())
}

func mustFailure(t *testing.T, err error) *reporter.Failure {
	t.Helper()

	failure, ok := reporter.AsFailure(err)
	require.True(t, ok)
	return failure
}
