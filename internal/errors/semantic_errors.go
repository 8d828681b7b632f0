package errors

import (
	"fmt"
	"strings"

	"github.com/m-unkel/zkay-go/internal/ast"
)

// CompilerErrorBuilder provides a fluent interface for building a CompilerError.
type CompilerErrorBuilder struct {
	err CompilerError
}

// NewError starts a builder for a hard error at pos.
func NewError(code, message string, pos ast.Position) *CompilerErrorBuilder {
	return &CompilerErrorBuilder{
		err: CompilerError{Level: Error, Code: code, Message: message, Position: pos, Length: 1},
	}
}

// NewWarning starts a builder for a warning at pos.
func NewWarning(code, message string, pos ast.Position) *CompilerErrorBuilder {
	return &CompilerErrorBuilder{
		err: CompilerError{Level: Warning, Code: code, Message: message, Position: pos, Length: 1},
	}
}

func (b *CompilerErrorBuilder) WithLength(length int) *CompilerErrorBuilder {
	b.err.Length = length
	return b
}

func (b *CompilerErrorBuilder) WithSuggestion(message string) *CompilerErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

func (b *CompilerErrorBuilder) WithNote(note string) *CompilerErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *CompilerErrorBuilder) WithHelp(help string) *CompilerErrorBuilder {
	b.err.HelpText = help
	return b
}

func (b *CompilerErrorBuilder) Build() CompilerError {
	return b.err
}

// Syntax builds a parse-time syntax error.
func Syntax(message string, pos ast.Position) CompilerError {
	return NewError(ErrorSyntax, message, pos).Build()
}

// UnknownIdentifier builds the error raised by the symbol resolver when an
// identifier does not resolve in any enclosing scope, with spelling
// suggestions drawn from names already in scope.
func UnknownIdentifier(name string, pos ast.Position, similar []string) CompilerError {
	b := NewError(ErrorUnknownIdentifier, fmt.Sprintf("unknown identifier '%s'", name), pos).
		WithLength(len(name))
	if len(similar) == 1 {
		b = b.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similar[0]))
	} else if len(similar) > 1 {
		b = b.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '")))
	}
	return b.Build()
}

// DuplicateDeclaration builds the error raised when a name is declared twice in one scope.
func DuplicateDeclaration(name string, pos ast.Position) CompilerError {
	return NewError(ErrorDuplicateDeclaration, fmt.Sprintf("'%s' is already declared in this scope", name), pos).
		WithLength(len(name)).
		Build()
}

// ReturnMissing builds the error raised by the return checker when a
// function declares a return type but a path falls off the end without
// returning a value.
func ReturnMissing(functionName string, pos ast.Position) CompilerError {
	return NewError(ErrorReturnMissing, fmt.Sprintf("function '%s' does not return a value on all paths", functionName), pos).
		WithSuggestion("add a return statement on every path").
		Build()
}

// UnreachableCode builds the warning raised by the return checker for
// statements that follow an unconditional return.
func UnreachableCode(pos ast.Position) CompilerError {
	return NewWarning(ErrorUnreachableCode, "unreachable code", pos).
		WithNote("this statement follows a path that always returns").
		Build()
}

// TypeMismatch builds the error raised by the type checker when an
// expression's annotated type does not match what its context requires.
func TypeMismatch(expected, actual string, pos ast.Position) CompilerError {
	return NewError(ErrorTypeMismatch, fmt.Sprintf("type mismatch: expected %s, found %s", expected, actual), pos).
		Build()
}

// TypeOther builds a catch-all type-system error (bad operand kinds, arity
// mismatches, indexing a non-mapping type, and the like).
func TypeOther(message string, pos ast.Position) CompilerError {
	return NewError(ErrorTypeOther, message, pos).Build()
}

// Require builds the error raised when a require(...) argument is not a
// public bool.
func Require(actual string, pos ast.Position) CompilerError {
	return NewError(ErrorRequire, fmt.Sprintf("require() expects a public bool argument, found %s", actual), pos).
		Build()
}

// Reclassify builds the error raised for a malformed reveal(expr, owner):
// one that reveals an already public expr to all, or one with no owner.
func Reclassify(fromLabel, toOwner string, pos ast.Position) CompilerError {
	return NewError(ErrorReclassify, fmt.Sprintf("cannot reveal value owned by %s to %s", fromLabel, toOwner), pos).
		WithNote("revealing a value that is already public to all has no effect").
		Build()
}

// NonInlineableRecursion builds the error raised when a hybrid function
// calls a recursive function that requires verification whenever it is
// reachable from outside the contract.
func NonInlineableRecursion(functionName string, pos ast.Position) CompilerError {
	return NewError(ErrorNonInlineableRecursion, fmt.Sprintf("non-inlineable call to recursive private function '%s'", functionName), pos).
		Build()
}

// DlogNotFound builds the error raised when the baby-step giant-step search
// exhausts the full 32-bit scalar range without finding a match.
func DlogNotFound(pos ast.Position) CompilerError {
	return NewError(ErrorDlogNotFound, "discrete logarithm not found in search range", pos).Build()
}

// UnusedVariable builds the warning for a declared-but-unread variable.
func UnusedVariable(name string, pos ast.Position) CompilerError {
	return NewWarning(WarningUnusedVariable, fmt.Sprintf("variable '%s' is declared but never used", name), pos).
		WithLength(len(name)).
		Build()
}

// levenshteinDistance is used by the resolver to rank spelling suggestions
// for unknown identifiers.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min3(matrix[i-1][j]+1, matrix[i][j-1]+1, matrix[i-1][j-1]+cost)
		}
	}
	return matrix[len(a)][len(b)]
}

// SimilarNames returns candidates within edit distance 2 of target.
func SimilarNames(target string, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if levenshteinDistance(target, c) <= 2 && len(c) > 1 {
			out = append(out, c)
		}
	}
	return out
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
