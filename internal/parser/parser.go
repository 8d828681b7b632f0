package parser

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/m-unkel/zkay-go/internal/ast"
	zkerrors "github.com/m-unkel/zkay-go/internal/errors"
)

// parser is a hand-written recursive-descent/Pratt parser over the
// tokenize()d source, mirroring the teacher's internal/parser/
// parser_pratt.go precedence-climbing convention, building this package's
// own ast.Node tree and registering every node with a shared NodeTracker as
// it goes (the parser-time half of spec §3.3's node lifecycle: "AST nodes
// are created by the parser").
type parser struct {
	toks    []Token
	pos     int
	tracker *ast.NodeTracker
}

// ParseSource builds a *ast.SourceUnit from source. filename is used only
// for lexer diagnostics. The returned SourceUnit has not yet had
// ast.SetParents run on it; callers (component M's pipeline) are
// responsible for that, exactly as spec §5 describes the parse→set_parents
// ordering.
func ParseSource(filename, source string) (*ast.SourceUnit, *zkerrors.CompilerError) {
	toks, err := tokenize(filename, source)
	if err != nil {
		e := zkerrors.Syntax(err.Error(), ast.Position{Line: 1, Column: 1})
		return nil, &e
	}

	p := &parser{toks: toks, tracker: ast.NewNodeTracker()}
	unit, perr := p.parseSourceUnit()
	if perr != nil {
		return nil, perr
	}
	unit.Tracker = p.tracker
	return unit, nil
}

func toPos(lp lexer.Position) ast.Position {
	return ast.Position{Line: lp.Line, Column: lp.Column}
}

func (p *parser) cur() Token  { return p.toks[p.pos] }
func (p *parser) peekKind() TokenKind { return p.toks[p.pos].Kind }

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) check(k TokenKind) bool { return p.peekKind() == k }

func (p *parser) match(k TokenKind) (Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return Token{}, false
}

func (p *parser) expect(k TokenKind, what string) (Token, *zkerrors.CompilerError) {
	if tok, ok := p.match(k); ok {
		return tok, nil
	}
	cur := p.cur()
	err := zkerrors.Syntax(fmt.Sprintf("expected %s, found %q", what, cur.Text), toPos(cur.Pos))
	return Token{}, &err
}

func (p *parser) reg(start Token, end Token) *ast.Metadata {
	return p.tracker.Register(toPos(start.Pos), toPos(end.Pos))
}

// regFrom registers a node spanning from an already-parsed expression's own
// start position through end, used where the Pratt loop only has the
// built left-hand expression (not its original token) at hand.
func (p *parser) regFrom(startPos ast.Position, end Token) *ast.Metadata {
	return p.tracker.Register(startPos, toPos(end.Pos))
}

// parseSourceUnit parses zero or more contracts until EOF.
func (p *parser) parseSourceUnit() (*ast.SourceUnit, *zkerrors.CompilerError) {
	start := p.cur()
	var contracts []*ast.Contract
	for !p.check(TokEOF) {
		c, err := p.parseContract()
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	end := p.cur()
	return &ast.SourceUnit{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Contracts: contracts}, nil
}

func (p *parser) parseContract() (*ast.Contract, *zkerrors.CompilerError) {
	start := p.cur()
	if _, err := p.expect(KwContract, "'contract'"); err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "contract name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(PLBrace, "'{'"); err != nil {
		return nil, err
	}

	contract := &ast.Contract{Name: name.Text}
	for !p.check(PRBrace) {
		if p.check(KwFn) || p.check(KwExternal) || p.check(KwConstructor) {
			fn, ferr := p.parseFunction()
			if ferr != nil {
				return nil, ferr
			}
			contract.Functions = append(contract.Functions, fn)
			continue
		}
		sv, serr := p.parseStateVar()
		if serr != nil {
			return nil, serr
		}
		contract.StateVars = append(contract.StateVars, sv)
	}
	end := p.cur()
	if _, err := p.expect(PRBrace, "'}'"); err != nil {
		return nil, err
	}
	contract.Meta = p.reg(start, end)
	return contract, nil
}

func (p *parser) parseStateVar() (*ast.StateVarDecl, *zkerrors.CompilerError) {
	start := p.cur()
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "variable name")
	if err != nil {
		return nil, err
	}
	end, err := p.expect(PSemi, "';'")
	if err != nil {
		return nil, err
	}
	return &ast.StateVarDecl{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Name: name.Text, Type: ty}, nil
}

func (p *parser) parseFunction() (*ast.FunctionDecl, *zkerrors.CompilerError) {
	start := p.cur()
	isExternal := false
	if _, ok := p.match(KwExternal); ok {
		isExternal = true
	}

	isCtor := false
	var name Token
	if _, ok := p.match(KwConstructor); ok {
		isCtor = true
		name = Token{Text: "constructor", Pos: start.Pos}
	} else {
		if _, err := p.expect(KwFn, "'fn'"); err != nil {
			return nil, err
		}
		n, err := p.expect(TokIdent, "function name")
		if err != nil {
			return nil, err
		}
		name = n
	}

	if _, err := p.expect(PLParen, "'('"); err != nil {
		return nil, err
	}
	var params []*ast.Param
	for !p.check(PRParen) {
		if len(params) > 0 {
			if _, err := p.expect(PComma, "','"); err != nil {
				return nil, err
			}
		}
		pstart := p.cur()
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		pname, err := p.expect(TokIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Param{NodeBase: ast.NodeBase{Meta: p.reg(pstart, pname)}, Name: pname.Text, Type: ty})
	}
	if _, err := p.expect(PRParen, "')'"); err != nil {
		return nil, err
	}

	var retType *ast.TypeExpr
	if !isCtor {
		if _, ok := p.match(OpMinus); ok {
			if _, err := p.expect(OpGt, "'>' (as part of '->')"); err != nil {
				return nil, err
			}
			ty, err := p.parseType()
			if err != nil {
				return nil, err
			}
			retType = ty
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	end := p.toks[p.pos-1]

	return &ast.FunctionDecl{
		NodeBase:   ast.NodeBase{Meta: p.reg(start, end)},
		Name:       name.Text,
		IsExternal: isExternal,
		Params:     params,
		ReturnType: retType,
		Body:       body,
	}, nil
}

// parseType parses an elementary or mapping type, optionally followed by
// an `@owner` privacy annotation (spec §3.2's T@L surface syntax).
func (p *parser) parseType() (*ast.TypeExpr, *zkerrors.CompilerError) {
	start := p.cur()
	var te *ast.TypeExpr
	switch {
	case p.check(KwBool):
		p.advance()
		te = &ast.TypeExpr{Kind: ast.BoolType}
	case p.check(KwAddress):
		p.advance()
		te = &ast.TypeExpr{Kind: ast.AddressType}
	case p.check(KwUint):
		p.advance()
		width := 256
		if tok, ok := p.match(TokInteger); ok {
			w, _ := strconv.Atoi(tok.Text)
			width = w
		}
		te = &ast.TypeExpr{Kind: ast.UintType, Width: width}
	case p.check(KwMapping):
		p.advance()
		m, err := p.parseMappingType()
		if err != nil {
			return nil, err
		}
		te = m
	default:
		cur := p.cur()
		err := zkerrors.Syntax(fmt.Sprintf("expected a type, found %q", cur.Text), toPos(cur.Pos))
		return nil, &err
	}

	if _, ok := p.match(PAt); ok {
		label, lerr := p.parseLabel()
		if lerr != nil {
			return nil, lerr
		}
		te.Label = label
	}
	end := p.toks[p.pos-1]
	te.Meta = p.reg(start, end)
	return te, nil
}

// parseMappingType parses `mapping ( address [ ! tag ] => ValueType )`.
func (p *parser) parseMappingType() (*ast.TypeExpr, *zkerrors.CompilerError) {
	if _, err := p.expect(PLParen, "'('"); err != nil {
		return nil, err
	}
	if _, err := p.expect(KwAddress, "'address' as a mapping key"); err != nil {
		return nil, err
	}
	tag := ""
	if _, ok := p.match(OpBang); ok {
		tagTok, err := p.expect(TokIdent, "owner-key tag name")
		if err != nil {
			return nil, err
		}
		tag = tagTok.Text
	}
	if _, err := p.expect(OpAssign, "'=>'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(OpGt, "'=>'"); err != nil {
		return nil, err
	}
	value, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(PRParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.TypeExpr{Kind: ast.MappingType, KeyTag: tag, Value: value}, nil
}

// parseLabel parses the owner spelled after `@`: `all`, `me`, or an
// identifier naming an in-scope address.
func (p *parser) parseLabel() (*ast.LabelExpr, *zkerrors.CompilerError) {
	start := p.cur()
	switch {
	case p.check(KwAll):
		p.advance()
		return &ast.LabelExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, start)}, Kind: ast.AllLabel}, nil
	case p.check(KwMe):
		p.advance()
		return &ast.LabelExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, start)}, Kind: ast.MeLabel}, nil
	case p.check(TokIdent):
		p.advance()
		return &ast.LabelExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, start)}, Kind: ast.OwnerLabel, Owner: start.Text}, nil
	default:
		err := zkerrors.Syntax(fmt.Sprintf("expected a privacy label ('all', 'me', or an identifier), found %q", start.Text), toPos(start.Pos))
		return nil, &err
	}
}

func (p *parser) parseBlock() (*ast.Block, *zkerrors.CompilerError) {
	start, err := p.expect(PLBrace, "'{'")
	if err != nil {
		return nil, err
	}
	var items []ast.Stmt
	for !p.check(PRBrace) {
		s, serr := p.parseStmt()
		if serr != nil {
			return nil, serr
		}
		items = append(items, s)
	}
	end, err := p.expect(PRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	return &ast.Block{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Items: items}, nil
}

func (p *parser) parseStmt() (ast.Stmt, *zkerrors.CompilerError) {
	switch {
	case p.check(PLBrace):
		return p.parseBlock()
	case p.check(KwRequire):
		return p.parseRequire()
	case p.check(KwReturn):
		return p.parseReturn()
	case p.check(KwIf):
		return p.parseIf()
	case p.check(KwWhile):
		return p.parseWhile()
	case p.check(KwFor):
		return p.parseFor()
	case p.check(KwBreak):
		start := p.advance()
		end, err := p.expect(PSemi, "';'")
		if err != nil {
			return nil, err
		}
		return &ast.BreakStmt{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}}, nil
	case p.check(KwContinue):
		start := p.advance()
		end, err := p.expect(PSemi, "';'")
		if err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}}, nil
	case isTypeStart(p.peekKind()):
		return p.parseVarDecl()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func isTypeStart(k TokenKind) bool {
	return k == KwBool || k == KwUint || k == KwAddress || k == KwMapping
}

func (p *parser) parseVarDecl() (ast.Stmt, *zkerrors.CompilerError) {
	start := p.cur()
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(OpAssign, "'='"); err != nil {
		return nil, err
	}
	init, eerr := p.parseExpr(0)
	if eerr != nil {
		return nil, eerr
	}
	end, err := p.expect(PSemi, "';'")
	if err != nil {
		return nil, err
	}
	return &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Name: name.Text, Type: ty, Init: init}, nil
}

func (p *parser) parseRequire() (ast.Stmt, *zkerrors.CompilerError) {
	start := p.advance()
	if _, err := p.expect(PLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(PRParen, "')'"); err != nil {
		return nil, err
	}
	end, err := p.expect(PSemi, "';'")
	if err != nil {
		return nil, err
	}
	return &ast.RequireStmt{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Cond: cond}, nil
}

func (p *parser) parseReturn() (ast.Stmt, *zkerrors.CompilerError) {
	start := p.advance()
	var value ast.Expr
	if !p.check(PSemi) {
		v, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		value = v
	}
	end, err := p.expect(PSemi, "';'")
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Value: value}, nil
}

func (p *parser) parseIf() (ast.Stmt, *zkerrors.CompilerError) {
	start := p.advance()
	if _, err := p.expect(PLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(PRParen, "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt
	end := p.toks[p.pos-1]
	if _, ok := p.match(KwElse); ok {
		if p.check(KwIf) {
			e, eerr := p.parseIf()
			if eerr != nil {
				return nil, eerr
			}
			elseStmt = e
		} else {
			e, eerr := p.parseBlock()
			if eerr != nil {
				return nil, eerr
			}
			elseStmt = e
		}
		end = p.toks[p.pos-1]
	}
	return &ast.IfStmt{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Cond: cond, Then: then, Else: elseStmt}, nil
}

func (p *parser) parseWhile() (ast.Stmt, *zkerrors.CompilerError) {
	start := p.advance()
	if _, err := p.expect(PLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(PRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	end := p.toks[p.pos-1]
	return &ast.WhileStmt{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Cond: cond, Body: body}, nil
}

func (p *parser) parseFor() (ast.Stmt, *zkerrors.CompilerError) {
	start := p.advance()
	if _, err := p.expect(PLParen, "'('"); err != nil {
		return nil, err
	}
	var init ast.Stmt
	if !p.check(PSemi) {
		var ierr *zkerrors.CompilerError
		if isTypeStart(p.peekKind()) {
			init, ierr = p.parseVarDecl()
		} else {
			init, ierr = p.parseExprOrAssignStmt()
		}
		if ierr != nil {
			return nil, ierr
		}
	} else {
		if _, err := p.expect(PSemi, "';'"); err != nil {
			return nil, err
		}
	}

	var cond ast.Expr
	if !p.check(PSemi) {
		c, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		cond = c
	}
	if _, err := p.expect(PSemi, "';'"); err != nil {
		return nil, err
	}

	var post ast.Stmt
	if !p.check(PRParen) {
		pstart := p.cur()
		target, terr := p.parseExpr(0)
		if terr != nil {
			return nil, terr
		}
		if _, ok := p.match(OpAssign); ok {
			value, verr := p.parseExpr(0)
			if verr != nil {
				return nil, verr
			}
			post = &ast.AssignStmt{NodeBase: ast.NodeBase{Meta: p.reg(pstart, p.toks[p.pos-1])}, Target: target, Value: value}
		} else {
			post = &ast.ExprStmt{NodeBase: ast.NodeBase{Meta: p.reg(pstart, p.toks[p.pos-1])}, Value: target}
		}
	}
	if _, err := p.expect(PRParen, "')'"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	end := p.toks[p.pos-1]
	return &ast.ForStmt{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Init: init, Cond: cond, Post: post, Body: body}, nil
}

// parseExprOrAssignStmt parses an expression-led statement, disambiguating
// an assignment from a bare expression statement by checking for `=`
// immediately after the expression, then requiring the trailing `;`.
func (p *parser) parseExprOrAssignStmt() (ast.Stmt, *zkerrors.CompilerError) {
	start := p.cur()
	e, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, ok := p.match(OpAssign); ok {
		value, verr := p.parseExpr(0)
		if verr != nil {
			return nil, verr
		}
		end, eerr := p.expect(PSemi, "';'")
		if eerr != nil {
			return nil, eerr
		}
		return &ast.AssignStmt{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Target: e, Value: value}, nil
	}
	end, eerr := p.expect(PSemi, "';'")
	if eerr != nil {
		return nil, eerr
	}
	return &ast.ExprStmt{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Value: e}, nil
}

// Binding powers for the Pratt expression parser, lowest to highest —
// kanso's parser_pratt.go convention of a precedence table consulted by a
// single parseExpr(minBP) loop rather than one function per grammar level.
var binaryPrecedence = map[TokenKind]int{
	OpOr:      1,
	OpAnd:     2,
	OpEq:      3,
	OpNe:      3,
	OpLt:      4,
	OpLe:      4,
	OpGt:      4,
	OpGe:      4,
	OpPlus:    5,
	OpMinus:   5,
	OpStar:    6,
	OpSlash:   6,
	OpPercent: 6,
}

var opText = map[TokenKind]string{
	OpOr: "||", OpAnd: "&&", OpEq: "==", OpNe: "!=",
	OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpPlus: "+", OpMinus: "-", OpStar: "*", OpSlash: "/", OpPercent: "%",
}

func (p *parser) parseExpr(minBP int) (ast.Expr, *zkerrors.CompilerError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		bp, ok := binaryPrecedence[p.peekKind()]
		if !ok || bp < minBP {
			return left, nil
		}
		opTok := p.advance()
		right, rerr := p.parseExpr(bp + 1)
		if rerr != nil {
			return nil, rerr
		}
		left = &ast.BinaryExpr{
			NodeBase: ast.NodeBase{Meta: p.regFrom(left.Pos(), p.toks[p.pos-1])},
			Op:       opText[opTok.Kind],
			Left:     left,
			Right:    right,
		}
	}
}

func (p *parser) parseUnary() (ast.Expr, *zkerrors.CompilerError) {
	if p.check(OpMinus) || p.check(OpBang) {
		start := p.advance()
		opStr := "-"
		if start.Kind == OpBang {
			opStr = "!"
		}
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, p.toks[p.pos-1])}, Op: opStr, Value: v}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, *zkerrors.CompilerError) {
	start := p.cur()
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.match(PLBracket); ok {
			idx, ierr := p.parseExpr(0)
			if ierr != nil {
				return nil, ierr
			}
			end, eerr := p.expect(PRBracket, "']'")
			if eerr != nil {
				return nil, eerr
			}
			e = &ast.IndexExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Base: e, Index: idx}
			continue
		}
		return e, nil
	}
}

func (p *parser) parsePrimary() (ast.Expr, *zkerrors.CompilerError) {
	start := p.cur()
	switch {
	case p.check(TokInteger):
		p.advance()
		v := new(big.Int)
		v.SetString(start.Text, 10)
		return &ast.LiteralExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, start)}, IntVal: v}, nil
	case p.check(KwTrue):
		p.advance()
		return &ast.LiteralExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, start)}, IsBool: true, BoolVal: true}, nil
	case p.check(KwFalse):
		p.advance()
		return &ast.LiteralExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, start)}, IsBool: true, BoolVal: false}, nil
	case p.check(KwMe):
		p.advance()
		return &ast.MeExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, start)}}, nil
	case p.check(KwReveal):
		return p.parseReveal()
	case p.check(PLParen):
		p.advance()
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(PRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case p.check(TokIdent):
		p.advance()
		if _, ok := p.match(PLParen); ok {
			var args []ast.Expr
			for !p.check(PRParen) {
				if len(args) > 0 {
					if _, err := p.expect(PComma, "','"); err != nil {
						return nil, err
					}
				}
				a, aerr := p.parseExpr(0)
				if aerr != nil {
					return nil, aerr
				}
				args = append(args, a)
			}
			end, eerr := p.expect(PRParen, "')'")
			if eerr != nil {
				return nil, eerr
			}
			return &ast.CallExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Callee: start.Text, Args: args}, nil
		}
		return &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, start)}, Name: start.Text}, nil
	default:
		err := zkerrors.Syntax(fmt.Sprintf("expected an expression, found %q", start.Text), toPos(start.Pos))
		return nil, &err
	}
}

// parseReveal parses `reveal ( Expr , Label )`. Nested reveals
// (`reveal(reveal(e, a), b)`) fall out of this naturally since Value is
// parsed with a full parseExpr that itself recurses into parsePrimary.
func (p *parser) parseReveal() (ast.Expr, *zkerrors.CompilerError) {
	start := p.advance()
	if _, err := p.expect(PLParen, "'('"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(PComma, "','"); err != nil {
		return nil, err
	}
	owner, oerr := p.parseLabel()
	if oerr != nil {
		return nil, oerr
	}
	end, eerr := p.expect(PRParen, "')'")
	if eerr != nil {
		return nil, eerr
	}
	return &ast.ReclassifyExpr{NodeBase: ast.NodeBase{Meta: p.reg(start, end)}, Value: value, Owner: owner}, nil
}
