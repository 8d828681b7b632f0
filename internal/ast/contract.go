package ast

// SourceUnit is the root of the tree: one compiled file, holding the node
// tracker that owns every Metadata record beneath it.
type SourceUnit struct {
	NodeBase
	Contracts []*Contract
	Tracker   *NodeTracker
}

// Contract is a single contract declaration: a name, its state variables,
// and its functions (a constructor is stored among them as a function named
// "constructor" with no return type).
type Contract struct {
	NodeBase
	Name      string
	StateVars []*StateVarDecl

	// Globals is an extension point mirroring the original implementation's
	// unconditional GlobalVars injection into every contract's state
	// variable list. Nothing in this language currently populates it; it
	// exists so a back-end extension has somewhere to put implicit globals
	// without changing Contract's shape.
	Globals []*StateVarDecl

	Functions []*FunctionDecl
}

// StateVarDecl declares one contract-level storage variable.
type StateVarDecl struct {
	NodeBase
	Name string
	Type *TypeExpr
}

// Param is one function parameter.
type Param struct {
	NodeBase
	Name string
	Type *TypeExpr
}

// FunctionDecl is a function or constructor declaration. Fields after Body
// are derived by later passes (D resolves CalledFunctions' targets, I sets
// the three verification/recursion flags) rather than by the parser.
type FunctionDecl struct {
	NodeBase
	Name       string
	IsExternal bool // reachable from outside the contract
	Params     []*Param
	ReturnType *TypeExpr // nil means the function returns no value
	Body       *Block

	// Derived by component I (hybrid-function detection).
	RequiresVerification           bool
	RequiresVerificationIfExternal bool
	IsRecursive                    bool

	// CalledFunctions is the set of function names this function calls
	// directly, as resolved by component D. Keyed by name rather than by
	// *FunctionDecl so indirect propagation (component I pass 2) can walk
	// it without needing every callee already resolved.
	CalledFunctions map[string]bool
}
