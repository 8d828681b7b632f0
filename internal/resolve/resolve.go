// Package resolve implements symbol resolution (component D): binding
// every identifier to the declaration it refers to in a scoped symbol
// table, and failing with UnknownIdentifier on anything that doesn't
// resolve.
package resolve

import (
	"github.com/m-unkel/zkay-go/internal/ast"
	zkerrors "github.com/m-unkel/zkay-go/internal/errors"
)

// Kind distinguishes what a Symbol names.
type Kind int

const (
	KindStateVar Kind = iota
	KindParam
	KindLocal
	KindFunction
)

// Symbol is one bound name: what it is, and (for variables) its declared
// type expression.
type Symbol struct {
	Name string
	Kind Kind
	Type *ast.TypeExpr
	Fn   *ast.FunctionDecl // set when Kind == KindFunction
}

// Table is a scoped symbol table: a map plus a link to the enclosing
// scope, exactly the teacher's SymbolTable shape (internal/semantic/
// symbols.go's scoped-map-plus-parent-chain pattern), generalized to this
// language's four symbol kinds instead of kanso's four.
type Table struct {
	symbols map[string]*Symbol
	parent  *Table
}

// NewTable creates a table nested in parent (nil for the outermost scope).
func NewTable(parent *Table) *Table {
	return &Table{symbols: make(map[string]*Symbol), parent: parent}
}

// Define adds sym to this scope, returning false if the name is already
// bound in this exact scope (shadowing an outer scope's name is allowed).
func (t *Table) Define(sym *Symbol) bool {
	if _, exists := t.symbols[sym.Name]; exists {
		return false
	}
	t.symbols[sym.Name] = sym
	return true
}

// Lookup searches this scope and every enclosing scope.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for s := t; s != nil; s = s.parent {
		if sym, ok := s.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Names returns every name visible from this scope, used to build spelling
// suggestions for UnknownIdentifier diagnostics.
func (t *Table) Names() []string {
	var out []string
	for s := t; s != nil; s = s.parent {
		for name := range s.symbols {
			out = append(out, name)
		}
	}
	return out
}

// Resolver walks a contract binding every IdentExpr and CallExpr.Callee to
// a symbol table entry, and fills FunctionDecl.CalledFunctions as it goes
// so component I's propagation pass has a name-keyed call graph ready.
type Resolver struct {
	globals *Table
	errs    []zkerrors.CompilerError
}

// NewResolver builds the top-level scope for contract: one entry per state
// variable (and per injected global) and one per function name.
func NewResolver(contract *ast.Contract) *Resolver {
	g := NewTable(nil)
	for _, sv := range contract.StateVars {
		g.Define(&Symbol{Name: sv.Name, Kind: KindStateVar, Type: sv.Type})
	}
	for _, sv := range contract.Globals {
		g.Define(&Symbol{Name: sv.Name, Kind: KindStateVar, Type: sv.Type})
	}
	for _, fn := range contract.Functions {
		g.Define(&Symbol{Name: fn.Name, Kind: KindFunction, Fn: fn})
	}
	return &Resolver{globals: g}
}

// Errors returns every UnknownIdentifier diagnostic raised so far.
func (r *Resolver) Errors() []zkerrors.CompilerError { return r.errs }

// ResolveFunction binds every identifier reachable from fn's body.
func (r *Resolver) ResolveFunction(fn *ast.FunctionDecl) {
	scope := NewTable(r.globals)
	for _, p := range fn.Params {
		scope.Define(&Symbol{Name: p.Name, Kind: KindParam, Type: p.Type})
	}
	if fn.CalledFunctions == nil {
		fn.CalledFunctions = map[string]bool{}
	}
	r.resolveBlock(fn.Body, scope, fn)
}

func (r *Resolver) resolveBlock(b *ast.Block, parent *Table, fn *ast.FunctionDecl) {
	scope := NewTable(parent)
	for _, item := range b.Items {
		r.resolveStmt(item, scope, fn)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt, scope *Table, fn *ast.FunctionDecl) {
	switch v := s.(type) {
	case *ast.VarDeclStmt:
		r.resolveExpr(v.Init, scope, fn)
		scope.Define(&Symbol{Name: v.Name, Kind: KindLocal, Type: v.Type})
	case *ast.RequireStmt:
		r.resolveExpr(v.Cond, scope, fn)
	case *ast.AssignStmt:
		r.resolveExpr(v.Target, scope, fn)
		r.resolveExpr(v.Value, scope, fn)
	case *ast.ExprStmt:
		r.resolveExpr(v.Value, scope, fn)
	case *ast.ReturnStmt:
		if v.Value != nil {
			r.resolveExpr(v.Value, scope, fn)
		}
	case *ast.IfStmt:
		r.resolveExpr(v.Cond, scope, fn)
		r.resolveBlock(v.Then, scope, fn)
		if v.Else != nil {
			r.resolveStmt(v.Else, scope, fn)
		}
	case *ast.WhileStmt:
		r.resolveExpr(v.Cond, scope, fn)
		r.resolveBlock(v.Body, scope, fn)
	case *ast.ForStmt:
		loopScope := NewTable(scope)
		if v.Init != nil {
			r.resolveStmt(v.Init, loopScope, fn)
		}
		if v.Cond != nil {
			r.resolveExpr(v.Cond, loopScope, fn)
		}
		if v.Post != nil {
			r.resolveStmt(v.Post, loopScope, fn)
		}
		r.resolveBlock(v.Body, loopScope, fn)
	case *ast.Block:
		r.resolveBlock(v, scope, fn)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// no identifiers
	}
}

func (r *Resolver) resolveExpr(e ast.Expr, scope *Table, fn *ast.FunctionDecl) {
	switch v := e.(type) {
	case *ast.IdentExpr:
		if _, ok := scope.Lookup(v.Name); !ok {
			r.errs = append(r.errs, zkerrors.UnknownIdentifier(v.Name, v.Pos(), zkerrors.SimilarNames(v.Name, scope.Names())))
		}
	case *ast.MeExpr, *ast.LiteralExpr:
		// always resolved
	case *ast.BinaryExpr:
		r.resolveExpr(v.Left, scope, fn)
		r.resolveExpr(v.Right, scope, fn)
	case *ast.UnaryExpr:
		r.resolveExpr(v.Value, scope, fn)
	case *ast.CallExpr:
		if fn != nil {
			fn.CalledFunctions[v.Callee] = true
		}
		if _, ok := r.globals.Lookup(v.Callee); !ok {
			r.errs = append(r.errs, zkerrors.UnknownIdentifier(v.Callee, v.Pos(), zkerrors.SimilarNames(v.Callee, r.globals.Names())))
		}
		for _, a := range v.Args {
			r.resolveExpr(a, scope, fn)
		}
	case *ast.IndexExpr:
		r.resolveExpr(v.Base, scope, fn)
		r.resolveExpr(v.Index, scope, fn)
	case *ast.ReclassifyExpr:
		r.resolveExpr(v.Value, scope, fn)
		if v.Owner != nil && v.Owner.Kind == ast.OwnerLabel {
			if _, ok := scope.Lookup(v.Owner.Owner); !ok {
				r.errs = append(r.errs, zkerrors.UnknownIdentifier(v.Owner.Owner, v.Owner.Pos(), zkerrors.SimilarNames(v.Owner.Owner, scope.Names())))
			}
		}
	}
}

// ResolveContract resolves every function in contract and returns every
// UnknownIdentifier diagnostic raised, continuing across independent
// functions per spec §7's policy (a failure in one function does not stop
// resolution of the others).
func ResolveContract(contract *ast.Contract) []zkerrors.CompilerError {
	r := NewResolver(contract)
	for _, fn := range contract.Functions {
		r.ResolveFunction(fn)
	}
	return r.Errors()
}
