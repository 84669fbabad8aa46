package expr

import (
	"bytes"
	"testing"

	"github.com/possum2kit/p2/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSrc(t *testing.T, text string) *lexer.Lexer {
	t.Helper()
	return lexer.New(lexer.NewReader(bytes.NewReader([]byte(text))))
}

func noSymbols(string) (int32, bool) { return 0, false }

func symbols(m map[string]int32) Lookup {
	return func(name string) (int32, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestSimpleAddition(t *testing.T) {
	v, resolved, err := Eval(newSrc(t, "1+2\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.EqualValues(t, 3, v)
}

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	v, _, err := Eval(newSrc(t, "2+3*4\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 14, v)
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	v, _, err := Eval(newSrc(t, "(2+3)*4\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 20, v)
}

func TestUnaryMinus(t *testing.T) {
	v, _, err := Eval(newSrc(t, "-5+10\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 5, v)
}

func TestDoubleNegation(t *testing.T) {
	v, _, err := Eval(newSrc(t, "- -5\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 5, v)
}

func TestLoHiByteExtraction(t *testing.T) {
	v, _, err := Eval(newSrc(t, "<$1234\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 0x34, v)

	v, _, err = Eval(newSrc(t, ">$1234\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 0x12, v)
}

func TestStarIsCurrentPCWhenUsedAsLeaf(t *testing.T) {
	v, _, err := Eval(newSrc(t, "*+2\n"), 0x8000, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 0x8002, v)
}

func TestAndOrPrecedenceBelowArithmetic(t *testing.T) {
	// AND (prec 4) binds looser than + (prec 2): 1 and 3+4 == 1 and 7 == 1.
	v, _, err := Eval(newSrc(t, "1 and 3+4\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
}

func TestOrBindsLooserThanAnd(t *testing.T) {
	// 1 or 0 and 0 == 1 or (0 and 0) == 1 or 0 == 1.
	v, _, err := Eval(newSrc(t, "1 or 0 and 0\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
}

func TestNotBindsTighterThanAnd(t *testing.T) {
	v, _, err := Eval(newSrc(t, "not 0 and 1\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, -1&1, v)
}

func TestShiftOperators(t *testing.T) {
	v, _, err := Eval(newSrc(t, "1 asl 4\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 16, v)

	v, _, err = Eval(newSrc(t, "16 lsr 4\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
}

func TestArithmeticShiftIsSignPreserving(t *testing.T) {
	v, _, err := Eval(newSrc(t, "-16 asr 1\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, -8, v)
}

func TestTruncatedDivisionAndModulo(t *testing.T) {
	v, _, err := Eval(newSrc(t, "-7 / 2\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, -3, v)

	v, _, err = Eval(newSrc(t, "-7 mod 2\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, -1, v)
}

func TestResolvedSymbolLookup(t *testing.T) {
	v, resolved, err := Eval(newSrc(t, "FOO+1\n"), 0, symbols(map[string]int32{"FOO": 41}))
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.EqualValues(t, 42, v)
}

func TestUnresolvedSymbolYieldsPlaceholderAndUnresolvedFlag(t *testing.T) {
	v, resolved, err := Eval(newSrc(t, "UNDEF+1\n"), 0, noSymbols)
	require.NoError(t, err)
	assert.False(t, resolved)
	assert.EqualValues(t, 2, v) // placeholder 1, plus 1
}

func TestUnmatchedCloseParenEndsExpressionWithoutConsuming(t *testing.T) {
	src := newSrc(t, "5),X\n")
	v, _, err := Eval(src, 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 5, v)

	tok, err := src.Peek()
	require.NoError(t, err)
	assert.Equal(t, lexer.Token(')'), tok)
}

func TestUnbalancedOpenParenIsError(t *testing.T) {
	_, _, err := Eval(newSrc(t, "(1+2\n"), 0, noSymbols)
	assert.Error(t, err)
}

func TestTwoConsecutiveOperatorsIsError(t *testing.T) {
	_, _, err := Eval(newSrc(t, "1++\n"), 0, noSymbols)
	assert.Error(t, err)
}

func TestCommaEndsExpressionWithoutConsuming(t *testing.T) {
	src := newSrc(t, "1,2\n")
	v, _, err := Eval(src, 0, noSymbols)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	tok, err := src.Peek()
	require.NoError(t, err)
	assert.Equal(t, lexer.Token(','), tok)
}
