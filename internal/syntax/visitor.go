package syntax

import "fmt"

// ExprVisitor computes a result of type R for every expression variant.
// Adding an expression node adds a method here, so every visitor that does
// not handle it stops compiling.
type ExprVisitor[R any] interface {
	VisitName(*Name) (R, error)
	VisitIntLit(*IntLit) (R, error)
	VisitFloatLit(*FloatLit) (R, error)
	VisitStringLit(*StringLit) (R, error)
	VisitBoolLit(*BoolLit) (R, error)
	VisitParenExpr(*ParenExpr) (R, error)
	VisitBinary(*Binary) (R, error)
	VisitUnary(*Unary) (R, error)
	VisitAssign(*Assign) (R, error)
	VisitIncDec(*IncDec) (R, error)
	VisitCall(*Call) (R, error)
	VisitRangeExpr(*RangeExpr) (R, error)
	VisitRunExpr(*RunExpr) (R, error)
}

// StmtVisitor computes a result of type R for every statement variant.
type StmtVisitor[R any] interface {
	VisitFuncDecl(*FuncDecl) (R, error)
	VisitVarDecl(*VarDecl) (R, error)
	VisitBlockStmt(*BlockStmt) (R, error)
	VisitIfStmt(*IfStmt) (R, error)
	VisitWhileStmt(*WhileStmt) (R, error)
	VisitDoWhileStmt(*DoWhileStmt) (R, error)
	VisitForStmt(*ForStmt) (R, error)
	VisitReturnStmt(*ReturnStmt) (R, error)
	VisitBranchStmt(*BranchStmt) (R, error)
	VisitRunStmt(*RunStmt) (R, error)
	VisitExprStmt(*ExprStmt) (R, error)
}

// AcceptExpr dispatches x to the matching method of v.
func AcceptExpr[R any](v ExprVisitor[R], x Expr) (R, error) {
	switch x := x.(type) {
	case *Name:
		return v.VisitName(x)
	case *IntLit:
		return v.VisitIntLit(x)
	case *FloatLit:
		return v.VisitFloatLit(x)
	case *StringLit:
		return v.VisitStringLit(x)
	case *BoolLit:
		return v.VisitBoolLit(x)
	case *ParenExpr:
		return v.VisitParenExpr(x)
	case *Binary:
		return v.VisitBinary(x)
	case *Unary:
		return v.VisitUnary(x)
	case *Assign:
		return v.VisitAssign(x)
	case *IncDec:
		return v.VisitIncDec(x)
	case *Call:
		return v.VisitCall(x)
	case *RangeExpr:
		return v.VisitRangeExpr(x)
	case *RunExpr:
		return v.VisitRunExpr(x)
	}
	panic(fmt.Sprintf("syntax: unknown expression %T", x))
}

// AcceptStmt dispatches s to the matching method of v.
func AcceptStmt[R any](v StmtVisitor[R], s Stmt) (R, error) {
	switch s := s.(type) {
	case *FuncDecl:
		return v.VisitFuncDecl(s)
	case *VarDecl:
		return v.VisitVarDecl(s)
	case *BlockStmt:
		return v.VisitBlockStmt(s)
	case *IfStmt:
		return v.VisitIfStmt(s)
	case *WhileStmt:
		return v.VisitWhileStmt(s)
	case *DoWhileStmt:
		return v.VisitDoWhileStmt(s)
	case *ForStmt:
		return v.VisitForStmt(s)
	case *ReturnStmt:
		return v.VisitReturnStmt(s)
	case *BranchStmt:
		return v.VisitBranchStmt(s)
	case *RunStmt:
		return v.VisitRunStmt(s)
	case *ExprStmt:
		return v.VisitExprStmt(s)
	}
	panic(fmt.Sprintf("syntax: unknown statement %T", s))
}
