package lexer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLexer(src string) *Lexer {
	return New(NewReader(bytes.NewReader([]byte(src))))
}

func TestSkipsWhitespaceAndComments(t *testing.T) {
	l := newTestLexer("   \t ; a comment\nLDA")
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Newline, tok)
	l.Eat()

	tok, err = l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Ident, tok)
	assert.Equal(t, "LDA", l.String())
}

func TestDecimalNumber(t *testing.T) {
	l := newTestLexer("1234")
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Number, tok)
	assert.EqualValues(t, 1234, l.Number())
}

func TestHexNumber(t *testing.T) {
	l := newTestLexer("$1A2B")
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Number, tok)
	assert.EqualValues(t, 0x1A2B, l.Number())
}

func TestBinaryNumber(t *testing.T) {
	l := newTestLexer("%1011")
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Number, tok)
	assert.EqualValues(t, 0b1011, l.Number())
}

func TestCharLiteral(t *testing.T) {
	l := newTestLexer("'A'")
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Number, tok)
	assert.EqualValues(t, 'A', l.Number())
}

func TestCharLiteralRequiresClosingQuote(t *testing.T) {
	l := newTestLexer("'AB")
	_, err := l.Peek()
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	l := newTestLexer(`"hello, world"`)
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, String, tok)
	assert.Equal(t, "hello, world", l.String())
}

func TestMacroArgument(t *testing.T) {
	l := newTestLexer("?2")
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Argument, tok)
	assert.EqualValues(t, 2, l.Number())
}

func TestIdentifierAllowsDigitsUnderscoreDot(t *testing.T) {
	l := newTestLexer(".loop_1")
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Ident, tok)
	assert.Equal(t, ".loop_1", l.String())
}

func TestIdentifierTooLongIsError(t *testing.T) {
	l := newTestLexer("abcdefghijklmnopq") // 17 bytes
	_, err := l.Peek()
	assert.Error(t, err)
}

func TestSingleCharacterTokenIsUpperCased(t *testing.T) {
	l := newTestLexer("(")
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Token('('), tok)
}

func TestNewlineAdvancesLineOnEat(t *testing.T) {
	l := newTestLexer("\n\n")
	assert.Equal(t, 1, l.Line())
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Newline, tok)
	l.Eat()
	assert.Equal(t, 2, l.Line())
}

func TestPeekIsIdempotentUntilEat(t *testing.T) {
	l := newTestLexer("LDA")
	tok1, _ := l.Peek()
	tok2, _ := l.Peek()
	assert.Equal(t, tok1, tok2)
	assert.Equal(t, "LDA", l.String())
}

func TestEOFAtEndOfInput(t *testing.T) {
	l := newTestLexer("")
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, EOF, tok)
}

func TestPrependStringExpandsLocalLabel(t *testing.T) {
	l := newTestLexer(".loop")
	_, err := l.Peek()
	require.NoError(t, err)
	l.PrependString("outer")
	assert.Equal(t, "outer.loop", l.String())
}

func TestRewindRestartsAtLineOne(t *testing.T) {
	l := newTestLexer("LDA\nSTA")
	l.Peek()
	l.Eat()
	l.Peek()
	l.Eat()
	l.Peek()
	l.Eat()

	require.NoError(t, l.Rewind())
	assert.Equal(t, 1, l.Line())
	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, Ident, tok)
	assert.Equal(t, "LDA", l.String())
}

func TestMalformedNumericLiteralIsError(t *testing.T) {
	l := newTestLexer("12G")
	_, err := l.Peek()
	assert.Error(t, err)
}
