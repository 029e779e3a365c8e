package syntax

import (
	"encoding/json"
	"io"
)

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

type object = map[string]interface{}

func toJSON(node Node) interface{} {
	if isNil(node) {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return object{
			"type":  "Program",
			"pos":   n.pos.String(),
			"funcs": mapSlice(n.Funcs, func(f *FuncDecl) interface{} { return toJSON(f) }),
		}

	case *FuncDecl:
		return object{
			"type":   "FuncDecl",
			"pos":    n.pos.String(),
			"name":   n.Name.Value,
			"params": mapSlice(n.Params, func(f *Param) interface{} { return toJSON(f) }),
			"result": typeString(n.Result),
			"body":   toJSON(n.Body),
		}

	case *Param:
		return object{
			"type":      "Param",
			"pos":       n.pos.String(),
			"name":      n.Name.Value,
			"paramtype": typeString(n.Type),
		}

	case *TypeName:
		return typeString(n)

	case *VarDecl:
		return object{
			"type":    "VarDecl",
			"pos":     n.pos.String(),
			"mutable": n.Mutable,
			"name":    n.Name.Value,
			"vartype": typeString(n.Type),
			"value":   toJSON(n.Value),
		}

	case *BlockStmt:
		return object{
			"type":  "BlockStmt",
			"pos":   n.pos.String(),
			"stmts": mapSlice(n.Stmts, func(s Stmt) interface{} { return toJSON(s) }),
		}

	case *IfStmt:
		m := object{
			"type": "IfStmt",
			"pos":  n.pos.String(),
			"cond": toJSON(n.Cond),
			"then": toJSON(n.Then),
		}
		if n.Else != nil {
			m["else"] = toJSON(n.Else)
		}
		return m

	case *WhileStmt:
		return object{
			"type": "WhileStmt",
			"pos":  n.pos.String(),
			"cond": toJSON(n.Cond),
			"body": toJSON(n.Body),
		}

	case *DoWhileStmt:
		return object{
			"type": "DoWhileStmt",
			"pos":  n.pos.String(),
			"body": toJSON(n.Body),
			"cond": toJSON(n.Cond),
		}

	case *ForStmt:
		return object{
			"type":  "ForStmt",
			"pos":   n.pos.String(),
			"var":   n.Var.Value,
			"range": toJSON(n.Range),
			"body":  toJSON(n.Body),
		}

	case *ReturnStmt:
		m := object{
			"type": "ReturnStmt",
			"pos":  n.pos.String(),
		}
		if n.Result != nil {
			m["result"] = toJSON(n.Result)
		}
		return m

	case *BranchStmt:
		return object{
			"type": "BranchStmt",
			"pos":  n.pos.String(),
			"tok":  n.Tok.Text(),
		}

	case *RunStmt:
		return object{
			"type": "RunStmt",
			"pos":  n.pos.String(),
			"body": toJSON(n.Body),
		}

	case *ExprStmt:
		return object{
			"type": "ExprStmt",
			"pos":  n.pos.String(),
			"x":    toJSON(n.X),
		}

	case *Name:
		return object{
			"type":  "Name",
			"pos":   n.pos.String(),
			"value": n.Value,
		}

	case *IntLit:
		return object{
			"type":  "IntLit",
			"pos":   n.pos.String(),
			"value": n.Value,
		}

	case *FloatLit:
		return object{
			"type":   "FloatLit",
			"pos":    n.pos.String(),
			"value":  formatFloatLit(&FloatLit{Value: n.Value}),
			"suffix": n.Suffix,
		}

	case *StringLit:
		return object{
			"type":  "StringLit",
			"pos":   n.pos.String(),
			"value": n.Value,
		}

	case *BoolLit:
		return object{
			"type":  "BoolLit",
			"pos":   n.pos.String(),
			"value": n.Value,
		}

	case *ParenExpr:
		return object{
			"type": "ParenExpr",
			"pos":  n.pos.String(),
			"x":    toJSON(n.X),
		}

	case *Binary:
		return object{
			"type": "Binary",
			"pos":  n.pos.String(),
			"op":   n.Op.Text(),
			"x":    toJSON(n.X),
			"y":    toJSON(n.Y),
		}

	case *Unary:
		return object{
			"type": "Unary",
			"pos":  n.pos.String(),
			"op":   n.Op.Text(),
			"x":    toJSON(n.X),
		}

	case *Assign:
		return object{
			"type":   "Assign",
			"pos":    n.pos.String(),
			"op":     n.Op.Text(),
			"target": n.Target.Value,
			"value":  toJSON(n.Value),
		}

	case *IncDec:
		return object{
			"type":   "IncDec",
			"pos":    n.pos.String(),
			"op":     n.Op.Text(),
			"prefix": n.Prefix,
			"target": n.Target.Value,
		}

	case *Call:
		return object{
			"type": "Call",
			"pos":  n.pos.String(),
			"fun":  n.Fun.Value,
			"args": mapSlice(n.Args, func(a Expr) interface{} { return toJSON(a) }),
		}

	case *RangeExpr:
		m := object{
			"type": "RangeExpr",
			"pos":  n.pos.String(),
			"op":   n.Op.Text(),
			"from": toJSON(n.From),
			"to":   toJSON(n.To),
		}
		if n.Step != nil {
			m["step"] = toJSON(n.Step)
		}
		return m

	case *RunExpr:
		return object{
			"type": "RunExpr",
			"pos":  n.pos.String(),
			"body": toJSON(n.Body),
		}

	default:
		return object{"type": "Unknown"}
	}
}

func mapSlice[T any](s []T, f func(T) interface{}) []interface{} {
	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = f(v)
	}
	return result
}
