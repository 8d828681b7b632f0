package surrogate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripPreservesLengthBeforeInjection(t *testing.T) {
	code := "// comment\nuint@me x;\n"
	blanked := stripCommentsAndStrings(code)
	blanked = stripAnnotations(blanked)
	blanked = stripMapTags(blanked)
	blanked = stripReveals(blanked)
	require.Equal(t, len(code), len(blanked))
	for i := range code {
		if code[i] == '\n' {
			assert.Equal(t, byte('\n'), blanked[i])
		}
	}
}

func TestStripCommentsAndStrings(t *testing.T) {
	code := "let x = 1; // secret\nlet s = \"hello\";\n"
	out := stripCommentsAndStrings(code)
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "hello")
	assert.Equal(t, len(code), len(out))
	assert.True(t, strings.HasPrefix(out, "let x = 1; "))
}

func TestStripAnnotations(t *testing.T) {
	code := "uint@alice balance;\nfinal uint total;\n"
	out := stripAnnotations(code)
	assert.NotContains(t, out, "@alice")
	assert.NotContains(t, out, "final ")
	assert.Contains(t, out, "uint")
	assert.Equal(t, len(code), len(out))
}

func TestStripAnnotationsDoesNotTouchWordPrefixes(t *testing.T) {
	code := "finalize(); addressBook x;"
	out := stripAnnotations(code)
	assert.Contains(t, out, "finalize")
	assert.Contains(t, out, "addressBook")
}

func TestStripMapTags(t *testing.T) {
	code := "mapping(address!owner => uint) balances;\n"
	out := stripMapTags(code)
	assert.NotContains(t, out, "!owner")
	assert.Equal(t, len(code), len(out))
}

func TestStripRevealsNested(t *testing.T) {
	code := "x = reveal(reveal(y, bob), alice);\n"
	out := stripReveals(code)
	assert.NotContains(t, out, "reveal")
	assert.Contains(t, out, "y")
	assert.Equal(t, len(code), len(out))
}

func TestStripRevealsSimple(t *testing.T) {
	code := "z = reveal(balance, all);\n"
	out := stripReveals(code)
	assert.Equal(t, len(code), len(out))
	assert.NotContains(t, out, "reveal(")
}

func TestInjectMeDecl(t *testing.T) {
	code := "contract Wallet {\n    uint x;\n}\n"
	out := injectMeDecl(code)
	assert.True(t, strings.HasPrefix(out, "contract Wallet {"+meDecl+"\n"))
	assert.True(t, strings.HasSuffix(out, "    uint x;\n}\n"))
}

func TestInjectMeDeclMultipleContracts(t *testing.T) {
	code := "contract A {\n    uint x;\n}\n\ncontract B {\n    uint y;\n}\n"
	out := injectMeDecl(code)
	assert.True(t, strings.HasPrefix(out, "contract A {"+meDecl+"\n"))
	assert.Contains(t, out, "contract B {"+meDecl+"\n")
	assert.Equal(t, 2, strings.Count(out, meDecl))
}

func TestStripEndToEnd(t *testing.T) {
	code := "contract Wallet {\n    uint@me balance;\n    mapping(address!owner => uint@owner) m;\n}\n"
	out := Strip(code)
	assert.NotContains(t, out, "@me")
	assert.NotContains(t, out, "!owner")
	assert.Contains(t, out, "msg.sender")
	assert.Equal(t, strings.Count(code, "\n"), strings.Count(out, "\n"))
}

func TestStripIdempotentAfterInjection(t *testing.T) {
	code := "contract C {\n    uint@me x;\n}\n"
	once := Strip(code)
	twice := Strip(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, meDecl))
}
