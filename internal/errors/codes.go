package errors

// Error codes for the zkay front-end.
//
// Error code ranges:
// E0001-E0099: Parsing errors
// E0100-E0199: Symbol resolution errors
// E0200-E0299: Flow control errors (return checker)
// E0300-E0399: Type system errors
// E0400-E0499: Declassification (reveal) errors
// E0500-E0599: Hybrid-function / non-inlineable recursion errors
// E0600-E0699: Discrete-log solver errors
// E0800-E0899: Warning codes

const (
	// E0001: Lexer/parser syntax error
	ErrorSyntax = "E0001"

	// E0100: Identifier used but not defined in the current scope
	ErrorUnknownIdentifier = "E0100"

	// E0101: Identifier defined more than once in the same scope
	ErrorDuplicateDeclaration = "E0101"

	// E0200: Function declares a return type but a path reaches the end without returning
	ErrorReturnMissing = "E0200"

	// E0201: Statement is unreachable because a prior statement always returns
	ErrorUnreachableCode = "E0201"

	// E0300: Expression type does not match what the context requires
	ErrorTypeMismatch = "E0300"

	// E0301: Any other type-system violation (bad operand kinds, arity, etc.)
	ErrorTypeOther = "E0301"

	// E0302: require(...) argument is not a public bool
	ErrorRequire = "E0302"

	// E0400: reveal(...) used where the source label cannot be declassified to the target owner
	ErrorReclassify = "E0400"

	// E0500: call to a recursive function that requires verification only reachable externally
	ErrorNonInlineableRecursion = "E0500"

	// E0600: baby-step giant-step search exhausted the full scalar range without a match
	ErrorDlogNotFound = "E0600"

	// Warning codes (reserved range: E0800-E0899)

	// W0001: variable declared but never read
	WarningUnusedVariable = "W0001"
)

// GetErrorDescription returns a human-readable description of the error code.
func GetErrorDescription(code string) string {
	switch code {
	case ErrorSyntax:
		return "Syntax error while parsing source"
	case ErrorUnknownIdentifier:
		return "Identifier is used but not defined in the current scope"
	case ErrorDuplicateDeclaration:
		return "Identifier is already declared in this scope"
	case ErrorReturnMissing:
		return "Function declares a return type but not every path returns a value"
	case ErrorUnreachableCode:
		return "Statement is unreachable"
	case ErrorTypeMismatch:
		return "Expression type does not match the type required by its context"
	case ErrorTypeOther:
		return "Type system violation"
	case ErrorRequire:
		return "require() argument must be a public bool"
	case ErrorReclassify:
		return "reveal() cannot declassify this expression to the requested owner"
	case ErrorNonInlineableRecursion:
		return "call to a recursive function that requires verification when reachable externally"
	case ErrorDlogNotFound:
		return "discrete logarithm search exhausted its range without a match"
	case WarningUnusedVariable:
		return "variable is declared but never used"
	default:
		return "unknown error code"
	}
}

// IsWarning reports whether code identifies a warning rather than a hard error.
func IsWarning(code string) bool {
	return len(code) > 0 && (code[0] == 'W' || (code >= "E0800" && code < "E0900"))
}

// GetErrorCategory returns the category name for an error code's range.
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "Parsing"
	case code >= "E0100" && code < "E0200":
		return "Symbol Resolution"
	case code >= "E0200" && code < "E0300":
		return "Flow Control"
	case code >= "E0300" && code < "E0400":
		return "Type System"
	case code >= "E0400" && code < "E0500":
		return "Declassification"
	case code >= "E0500" && code < "E0600":
		return "Hybrid Functions"
	case code >= "E0600" && code < "E0700":
		return "Discrete Log"
	case code >= "E0800" && code < "E0900":
		return "Warning"
	case len(code) > 0 && code[0] == 'W':
		return "Warning"
	default:
		return "Unknown"
	}
}
