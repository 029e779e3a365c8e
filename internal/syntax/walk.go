package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if isNil(node) || !v(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, f := range n.Funcs {
			Walk(f, v)
		}

	case *FuncDecl:
		Walk(n.Name, v)
		for _, p := range n.Params {
			Walk(p, v)
		}
		if n.Result != nil {
			Walk(n.Result, v)
		}
		Walk(n.Body, v)

	case *Param:
		Walk(n.Name, v)
		Walk(n.Type, v)

	case *VarDecl:
		Walk(n.Name, v)
		Walk(n.Type, v)
		Walk(n.Value, v)

	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, v)
		}

	case *IfStmt:
		Walk(n.Cond, v)
		Walk(n.Then, v)
		if n.Else != nil {
			Walk(n.Else, v)
		}

	case *WhileStmt:
		Walk(n.Cond, v)
		Walk(n.Body, v)

	case *DoWhileStmt:
		Walk(n.Body, v)
		Walk(n.Cond, v)

	case *ForStmt:
		Walk(n.Var, v)
		Walk(n.Range, v)
		Walk(n.Body, v)

	case *ReturnStmt:
		if n.Result != nil {
			Walk(n.Result, v)
		}

	case *RunStmt:
		Walk(n.Body, v)

	case *ExprStmt:
		Walk(n.X, v)

	case *ParenExpr:
		Walk(n.X, v)

	case *Binary:
		Walk(n.X, v)
		Walk(n.Y, v)

	case *Unary:
		Walk(n.X, v)

	case *Assign:
		Walk(n.Target, v)
		Walk(n.Value, v)

	case *IncDec:
		Walk(n.Target, v)

	case *Call:
		Walk(n.Fun, v)
		for _, a := range n.Args {
			Walk(a, v)
		}

	case *RangeExpr:
		Walk(n.From, v)
		Walk(n.To, v)
		if n.Step != nil {
			Walk(n.Step, v)
		}

	case *RunExpr:
		Walk(n.Body, v)

	// Leaves: Name, IntLit, FloatLit, StringLit, BoolLit, TypeName, BranchStmt
	}
}

// isNil reports whether node is nil or a typed nil pointer, which optional
// children such as FuncDecl.Result hold when absent.
func isNil(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *TypeName:
		return n == nil
	case *BlockStmt:
		return n == nil
	case *Name:
		return n == nil
	}
	return false
}

// Inspect traverses an AST, calling f for each node.
// If f returns false, children are not visited.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, f)
}

// Find returns the first node for which pred returns true, or nil.
func Find(node Node, pred func(Node) bool) Node {
	var found Node
	Walk(node, func(n Node) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// CountNodes returns the total number of nodes in the AST.
func CountNodes(node Node) int {
	count := 0
	Walk(node, func(n Node) bool {
		count++
		return true
	})
	return count
}
