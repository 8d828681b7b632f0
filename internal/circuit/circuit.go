// Package circuit implements the circuit-constraint IR (component J): the
// linear list of circuit statements a hybrid function's body lowers to, and
// the Builder that records them while tracking a guard stack. This is a
// literal transcription of original_source/zkay/compiler/privacy/
// circuit_generation/circuit_constraints.py's CircuitStatement variants,
// encoded the teacher's way — a closed interface with one concrete struct
// per variant (internal/ir/types.go's Instruction-per-opcode style) — and
// printed with the teacher's indent-stack Printer convention
// (internal/ir/printer.go).
package circuit

import (
	"fmt"
	"strings"

	"github.com/m-unkel/zkay-go/internal/ast"
)

// Statement is the sealed set of circuit-statement variants. There is no
// evaluation here — the IR is purely a record of what the back-end's
// circuit generator must emit.
type Statement interface {
	isCircuitStatement()
	String() string
}

// Comment is a free-text annotation with no semantic effect.
type Comment struct{ Text string }

func (c *Comment) isCircuitStatement() {}
func (c *Comment) String() string      { return "// " + c.Text }

// IndentBlock groups Body under a named heading, purely for readability —
// the guard semantics of its contents are unaffected by the grouping.
type IndentBlock struct {
	Name string
	Body []Statement
}

func (b *IndentBlock) isCircuitStatement() {}
func (b *IndentBlock) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s {\n", b.Name)
	for _, s := range b.Body {
		for _, line := range strings.Split(s.String(), "\n") {
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// Call records an inlined invocation of another hybrid function.
type Call struct{ FunctionName string }

func (c *Call) isCircuitStatement() {}
func (c *Call) String() string      { return fmt.Sprintf("call %s()", c.FunctionName) }

// VarDecl introduces a fresh circuit-local variable bound to an expression.
type VarDecl struct {
	LHS  string
	Expr ast.Expr
}

func (v *VarDecl) isCircuitStatement() {}
func (v *VarDecl) String() string      { return fmt.Sprintf("decl %s = <expr@%s>", v.LHS, v.Expr.Pos()) }

// GuardPush opens a new conjunct on the guard stack; GuardPop closes the
// most recently opened one. Cond names the circuit variable carrying the
// guard condition's witness value.
type GuardPush struct {
	Cond   string
	IsTrue bool
}

func (g *GuardPush) isCircuitStatement() {}
func (g *GuardPush) String() string {
	if g.IsTrue {
		return fmt.Sprintf("guard+ %s", g.Cond)
	}
	return fmt.Sprintf("guard+ !%s", g.Cond)
}

// GuardPop closes the innermost open guard. It carries no payload; the
// Builder's stack discipline supplies the matching condition implicitly.
type GuardPop struct{}

func (g *GuardPop) isCircuitStatement() {}
func (g *GuardPop) String() string      { return "guard-" }

// Assignment records lhs := rhs inside the circuit, conjoined with every
// currently active guard.
type Assignment struct {
	LHS ast.Expr
	RHS ast.Expr
}

func (a *Assignment) isCircuitStatement() {}
func (a *Assignment) String() string {
	return fmt.Sprintf("assign <expr@%s> = <expr@%s>", a.LHS.Pos(), a.RHS.Pos())
}

// EncConstraint records an ElGamal-encryption constraint: cipher must equal
// Enc(plain, rnd, pk).
type EncConstraint struct {
	Plain  string
	Rnd    string
	PK     string
	Cipher string
}

func (e *EncConstraint) isCircuitStatement() {}
func (e *EncConstraint) String() string {
	return fmt.Sprintf("enc %s = Enc(%s, r=%s, pk=%s)", e.Cipher, e.Plain, e.Rnd, e.PK)
}

// EqConstraint records that two circuit variables must be equal. Equality
// constraints are commutative (tgt == val and val == tgt constrain
// identically) but Tgt/Val are kept distinct because the IndentBlock name
// that wraps them is meant to read naturally in source order.
type EqConstraint struct {
	Tgt string
	Val string
}

func (e *EqConstraint) isCircuitStatement() {}
func (e *EqConstraint) String() string      { return fmt.Sprintf("eq %s == %s", e.Tgt, e.Val) }

// Builder accumulates a flat Statement list plus a guard stack, exactly
// spec §3.5/§4.J's model: "every emitted constraint is conceptually
// conjoined with the current guard conjunction." The Builder itself does
// not conjoin anything — it only maintains the bookkeeping (GuardPush/
// GuardPop pairing, final-empty-stack invariant) a back-end needs to do so.
type Builder struct {
	stmts []Statement
	depth int
}

// NewBuilder returns an empty circuit builder.
func NewBuilder() *Builder { return &Builder{} }

// Emit appends s to the statement list in source order.
func (b *Builder) Emit(s Statement) { b.stmts = append(b.stmts, s) }

// PushGuard appends a GuardPush and increments the tracked stack depth.
func (b *Builder) PushGuard(cond string, isTrue bool) {
	b.Emit(&GuardPush{Cond: cond, IsTrue: isTrue})
	b.depth++
}

// PopGuard appends a GuardPop and decrements the tracked stack depth. It
// panics on an unbalanced pop — a Builder bug, not a user-facing error,
// since only component J's own back-end-facing code calls this directly.
func (b *Builder) PopGuard() {
	if b.depth == 0 {
		panic("circuit: PopGuard with no matching PushGuard")
	}
	b.Emit(&GuardPop{})
	b.depth--
}

// Depth returns the current guard-stack depth, used by callers (and tests)
// to verify spec §8 invariant 6: depth never goes negative and ends at
// zero for a well-formed function.
func (b *Builder) Depth() int { return b.depth }

// Balanced reports whether every PushGuard has a matching PopGuard so far.
func (b *Builder) Balanced() bool { return b.depth == 0 }

// Statements returns the accumulated statement list in emission order.
func (b *Builder) Statements() []Statement { return b.stmts }

// String renders every statement in order, one per line, using each
// variant's own String (IndentBlock recurses through its own nested
// indent), matching the teacher's Printer's flat top-to-bottom traversal.
func (b *Builder) String() string {
	var sb strings.Builder
	for _, s := range b.stmts {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
