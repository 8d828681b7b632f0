package ast

// Walk visits every node reachable from root exactly once, calling visit
// with each node and its direct parent (visit(root, nil) for the root
// itself). Traversal order is child-first, source order — this is what
// lets an arena of nodes with integer back-references be walked safely
// even though the reference graph (parent pointers) contains cycles: the
// walk never follows a parent pointer, only the forward tree structure.
func Walk(root Node, visit func(node, parent Node)) {
	visit(root, nil)
	walkChildren(root, visit)
}

func walkChildren(n Node, visit func(node, parent Node)) {
	for _, c := range children(n) {
		if c == nil {
			continue
		}
		visit(c, n)
		walkChildren(c, visit)
	}
}

func children(n Node) []Node {
	switch v := n.(type) {
	case *SourceUnit:
		out := make([]Node, 0, len(v.Contracts))
		for _, c := range v.Contracts {
			out = append(out, c)
		}
		return out
	case *Contract:
		out := make([]Node, 0, len(v.StateVars)+len(v.Globals)+len(v.Functions))
		for _, s := range v.StateVars {
			out = append(out, s)
		}
		for _, s := range v.Globals {
			out = append(out, s)
		}
		for _, f := range v.Functions {
			out = append(out, f)
		}
		return out
	case *StateVarDecl:
		return []Node{v.Type}
	case *FunctionDecl:
		out := make([]Node, 0, len(v.Params)+2)
		for _, p := range v.Params {
			out = append(out, p)
		}
		if v.ReturnType != nil {
			out = append(out, v.ReturnType)
		}
		if v.Body != nil {
			out = append(out, v.Body)
		}
		return out
	case *Param:
		return []Node{v.Type}
	case *TypeExpr:
		var out []Node
		if v.Value != nil {
			out = append(out, v.Value)
		}
		if v.Label != nil {
			out = append(out, v.Label)
		}
		return out
	case *Block:
		out := make([]Node, 0, len(v.Items))
		for _, it := range v.Items {
			out = append(out, it)
		}
		return out
	case *VarDeclStmt:
		var out []Node
		if v.Type != nil {
			out = append(out, v.Type)
		}
		if v.Init != nil {
			out = append(out, v.Init)
		}
		return out
	case *RequireStmt:
		return []Node{v.Cond}
	case *AssignStmt:
		return []Node{v.Target, v.Value}
	case *ExprStmt:
		return []Node{v.Value}
	case *ReturnStmt:
		if v.Value != nil {
			return []Node{v.Value}
		}
		return nil
	case *IfStmt:
		out := []Node{v.Cond, v.Then}
		if v.Else != nil {
			out = append(out, v.Else)
		}
		return out
	case *WhileStmt:
		return []Node{v.Cond, v.Body}
	case *ForStmt:
		var out []Node
		if v.Init != nil {
			out = append(out, v.Init)
		}
		if v.Cond != nil {
			out = append(out, v.Cond)
		}
		if v.Post != nil {
			out = append(out, v.Post)
		}
		out = append(out, v.Body)
		return out
	case *BreakStmt, *ContinueStmt:
		return nil
	case *BinaryExpr:
		return []Node{v.Left, v.Right}
	case *UnaryExpr:
		return []Node{v.Value}
	case *CallExpr:
		out := make([]Node, 0, len(v.Args))
		for _, a := range v.Args {
			out = append(out, a)
		}
		return out
	case *IndexExpr:
		return []Node{v.Base, v.Index}
	case *ReclassifyExpr:
		out := []Node{v.Value}
		if v.Owner != nil {
			out = append(out, v.Owner)
		}
		return out
	case *LiteralExpr, *IdentExpr, *MeExpr, *LabelExpr:
		return nil
	default:
		return nil
	}
}

// SetParents walks unit and records every node's ParentID in its Metadata,
// the Go counterpart of the original pipeline's `set_parents` pass.
func SetParents(unit *SourceUnit) {
	Walk(unit, func(node, parent Node) {
		if parent == nil {
			return
		}
		unit.Tracker.SetParent(node.ID(), parent.ID())
	})
}
