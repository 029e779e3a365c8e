package syntax

// Parser is a predictive recursive-descent parser over a token sequence.
// It stops at the first syntax error: the error is latched, the cursor jumps
// to the END token, and every production unwinds without consuming more input.
type Parser struct {
	toks []Token
	i    int
	tok  Token // toks[i]

	prevLine int // line of the last consumed token

	err *SyntaxError

	// Context tracking
	xnest int // parenthesis depth; line breaks are insignificant when > 0
	loops int // enclosing loops within the current function or run expression
	runx  int // enclosing run expressions
}

// Parse builds a Program from tokens, which must end with an END token.
// It fails with a *SyntaxError on the first unexpected token.
func Parse(tokens []Token) (*Program, error) {
	p := newParser(tokens)
	prog := p.program()
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

// ParseSource scans and parses src. The error is a *LexicalError or a *SyntaxError.
func ParseSource(src []byte) (*Program, error) {
	toks, err := Scan(src)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

func newParser(tokens []Token) *Parser {
	if n := len(tokens); n == 0 || tokens[n-1].Kind != END {
		var pos Pos
		if n > 0 {
			pos = tokens[n-1].Pos
		}
		tokens = append(tokens[:n:n], Token{Kind: END, Pos: pos})
	}
	return &Parser{toks: tokens, tok: tokens[0]}
}

// ----------------------------------------------------------------------------
// Token navigation

func (p *Parser) next() {
	p.prevLine = p.tok.Line()
	if p.i < len(p.toks)-1 {
		p.i++
		p.tok = p.toks[p.i]
	}
}

// got reports whether the current token is of kind k and, if so, consumes it.
func (p *Parser) got(k Kind) bool {
	if p.tok.Kind == k {
		p.next()
		return true
	}
	return false
}

// want consumes a token of kind k or reports a syntax error.
func (p *Parser) want(k Kind) {
	if !p.got(k) {
		p.errorExpected(describeKind(k))
	}
}

// newline reports whether the current token starts a new line outside
// parentheses, where a line break may end an expression.
func (p *Parser) newline() bool {
	return p.xnest == 0 && p.tok.Line() > p.prevLine
}

// breaksExpr reports whether the current token begins a new expression on
// its own line instead of continuing the previous one.
func (p *Parser) breaksExpr() bool {
	switch p.tok.Kind {
	case PLUS, MINUS, INCREMENT, DECREMENT, LEFT_PAREN:
		return p.newline()
	}
	return false
}

// ----------------------------------------------------------------------------
// Error handling

// errorExpected latches a syntax error at the current token and moves the
// cursor to END.
func (p *Parser) errorExpected(expected string) {
	if p.err == nil {
		p.err = &SyntaxError{Pos: p.tok.Pos, Expected: expected, Found: p.tok.describe()}
	}
	p.i = len(p.toks) - 1
	p.tok = p.toks[p.i]
}

func describeKind(k Kind) string {
	switch k {
	case NUM, DECIMAL, STRING, ID, END:
		return k.Text()
	}
	return "'" + k.Text() + "'"
}

// ----------------------------------------------------------------------------
// Declarations

func (p *Parser) program() *Program {
	prog := &Program{}
	prog.pos = p.tok.Pos
	for p.tok.Kind != END {
		if p.got(SEMICOLON) {
			continue
		}
		if p.tok.Kind != FUN {
			p.errorExpected("'fun'")
			break
		}
		prog.Funcs = append(prog.Funcs, p.funcDecl())
	}
	return prog
}

// funcDecl parses: fun Name(Params) [: Type] Block
func (p *Parser) funcDecl() *FuncDecl {
	d := &FuncDecl{}
	d.pos = p.tok.Pos

	p.want(FUN)
	d.Name = p.name()
	d.Params = p.paramList()
	if p.got(COLON) {
		d.Result = p.typeName()
	}

	p.loops = 0
	d.Body = p.blockStmt()
	return d
}

// paramList parses (p1: T1, p2: T2, ...)
func (p *Parser) paramList() []*Param {
	p.want(LEFT_PAREN)
	p.xnest++

	var params []*Param
	if p.tok.Kind != RIGHT_PAREN {
		for {
			f := &Param{}
			f.pos = p.tok.Pos
			f.Name = p.name()
			p.want(COLON)
			f.Type = p.typeName()
			params = append(params, f)
			if !p.got(COMMA) {
				break
			}
		}
	}

	p.xnest--
	p.want(RIGHT_PAREN)
	return params
}

// name parses an identifier.
func (p *Parser) name() *Name {
	n := &Name{Value: p.tok.Lexeme}
	n.pos = p.tok.Pos
	if p.tok.Kind != ID {
		p.errorExpected("identifier")
		n.Value = "_"
		return n
	}
	p.next()
	return n
}

// typeName parses one of Int, Float, String, Boolean, Unit.
func (p *Parser) typeName() *TypeName {
	t := &TypeName{Kind: p.tok.Kind}
	t.pos = p.tok.Pos
	if !p.tok.Kind.IsTypeName() {
		p.errorExpected("type")
		t.Kind = UNIT
		return t
	}
	p.next()
	return t
}

// ----------------------------------------------------------------------------
// Statements

// blockStmt parses { stmts... }
func (p *Parser) blockStmt() *BlockStmt {
	b := &BlockStmt{}
	b.pos = p.tok.Pos
	p.want(LEFT_BRACE)

	xnest := p.xnest
	p.xnest = 0
	b.Stmts = p.stmtList()
	p.xnest = xnest

	b.Rbrace = p.tok.Pos
	p.want(RIGHT_BRACE)
	return b
}

// stmtList parses statements up to a closing brace. Statements on the same
// line must be separated by ';'.
func (p *Parser) stmtList() []Stmt {
	var list []Stmt
	for p.tok.Kind != RIGHT_BRACE && p.tok.Kind != END {
		if p.got(SEMICOLON) {
			continue
		}
		list = append(list, p.stmt())
		switch p.tok.Kind {
		case SEMICOLON, RIGHT_BRACE, END:
		default:
			if p.tok.Line() == p.prevLine {
				p.errorExpected("';' or newline")
			}
		}
	}
	return list
}

func (p *Parser) stmt() Stmt {
	switch p.tok.Kind {
	case VAR, VAL:
		return p.varDecl()
	case IF:
		return p.ifStmt()
	case WHILE:
		return p.whileStmt()
	case DO:
		return p.doWhileStmt()
	case FOR:
		return p.forStmt()
	case RETURN:
		return p.returnStmt()
	case BREAK, CONTINUE:
		return p.branchStmt()
	case LEFT_BRACE:
		return p.blockStmt()
	case RUN:
		s := &RunStmt{}
		s.pos = p.tok.Pos
		p.next()
		s.Body = p.blockStmt()
		return s
	}

	s := &ExprStmt{}
	s.pos = p.tok.Pos
	s.X = p.expr()
	return s
}

// varDecl parses: (var|val) Name: Type = Value
func (p *Parser) varDecl() *VarDecl {
	d := &VarDecl{Mutable: p.tok.Kind == VAR}
	d.pos = p.tok.Pos
	p.next()

	d.Name = p.name()
	p.want(COLON)
	d.Type = p.typeName()
	p.want(ASSIGN)
	d.Value = p.expr()
	return d
}

// cond parses a parenthesized condition.
func (p *Parser) cond() Expr {
	p.want(LEFT_PAREN)
	p.xnest++
	x := p.expr()
	p.xnest--
	p.want(RIGHT_PAREN)
	return x
}

// ifStmt parses: if (Cond) Block [else (If | Block)]
func (p *Parser) ifStmt() *IfStmt {
	s := &IfStmt{}
	s.pos = p.tok.Pos
	p.want(IF)

	s.Cond = p.cond()
	s.Then = p.blockStmt()
	if p.got(ELSE) {
		if p.tok.Kind == IF {
			s.Else = p.ifStmt()
		} else {
			s.Else = p.blockStmt()
		}
	}
	return s
}

// loopBody parses a block in loop context.
func (p *Parser) loopBody() *BlockStmt {
	p.loops++
	b := p.blockStmt()
	p.loops--
	return b
}

// whileStmt parses: while (Cond) Block
func (p *Parser) whileStmt() *WhileStmt {
	s := &WhileStmt{}
	s.pos = p.tok.Pos
	p.want(WHILE)
	s.Cond = p.cond()
	s.Body = p.loopBody()
	return s
}

// doWhileStmt parses: do Block while (Cond)
func (p *Parser) doWhileStmt() *DoWhileStmt {
	s := &DoWhileStmt{}
	s.pos = p.tok.Pos
	p.want(DO)
	s.Body = p.loopBody()
	p.want(WHILE)
	s.Cond = p.cond()
	return s
}

// forStmt parses: for (Name in From (..|until|downTo) To [step Step]) Block
func (p *Parser) forStmt() *ForStmt {
	s := &ForStmt{}
	s.pos = p.tok.Pos
	p.want(FOR)

	p.want(LEFT_PAREN)
	p.xnest++
	s.Var = p.name()
	p.want(IN)

	r := &RangeExpr{}
	r.pos = p.tok.Pos
	r.From = p.expr()
	switch p.tok.Kind {
	case RANGE, UNTIL, DOWNTO:
		r.Op = p.tok.Kind
		p.next()
	default:
		p.errorExpected("'..', 'until' or 'downTo'")
	}
	r.To = p.expr()
	if p.got(STEP) {
		r.Step = p.expr()
	}
	s.Range = r
	p.xnest--
	p.want(RIGHT_PAREN)

	s.Body = p.loopBody()
	return s
}

// returnStmt parses: return [Expr]
func (p *Parser) returnStmt() *ReturnStmt {
	s := &ReturnStmt{}
	s.pos = p.tok.Pos
	if p.runx > 0 {
		p.errorExpected("expression inside run block")
		return s
	}
	p.want(RETURN)

	switch p.tok.Kind {
	case RIGHT_BRACE, SEMICOLON, END:
	default:
		if !p.newline() {
			s.Result = p.expr()
		}
	}
	return s
}

// branchStmt parses: break or continue
func (p *Parser) branchStmt() *BranchStmt {
	s := &BranchStmt{Tok: p.tok.Kind}
	s.pos = p.tok.Pos
	if p.loops == 0 {
		p.errorExpected("statement inside a loop")
		return s
	}
	p.next()
	return s
}

// ----------------------------------------------------------------------------
// Expressions

func (p *Parser) expr() Expr {
	return p.assignment()
}

// assignment parses: Name AssignOp Assignment | LogicalOr
func (p *Parser) assignment() Expr {
	x := p.binaryExpr(0)
	if !p.tok.Kind.IsAssignOp() {
		return x
	}

	target, ok := x.(*Name)
	if !ok {
		p.errorExpected("identifier before " + describeKind(p.tok.Kind))
		return x
	}
	a := &Assign{Op: p.tok.Kind, Target: target}
	a.pos = x.Pos()
	p.next()
	a.Value = p.assignment()
	return a
}

// binaryLevels lists the binary operators from lowest to highest precedence.
var binaryLevels = [][]Kind{
	{OR},
	{AND},
	{EQ, NE},
	{LT, GT, LE, GE},
	{PLUS, MINUS},
	{MUL, DIV, MOD},
}

// binaryExpr parses the binary operators of precedence level and above,
// folding left-associatively.
func (p *Parser) binaryExpr(level int) Expr {
	if level == len(binaryLevels) {
		return p.unaryExpr()
	}

	x := p.binaryExpr(level + 1)
	for p.atOperator(binaryLevels[level]) && !p.breaksExpr() {
		op := &Binary{Op: p.tok.Kind, X: x}
		op.pos = x.Pos()
		p.next()
		op.Y = p.binaryExpr(level + 1)
		x = op
	}
	return x
}

func (p *Parser) atOperator(ops []Kind) bool {
	for _, k := range ops {
		if p.tok.Kind == k {
			return true
		}
	}
	return false
}

// unaryExpr parses: (! | - | +) Unary | (++ | --) Name | Postfix
func (p *Parser) unaryExpr() Expr {
	switch p.tok.Kind {
	case NOT, MINUS, PLUS:
		op := &Unary{Op: p.tok.Kind}
		op.pos = p.tok.Pos
		p.next()
		op.X = p.unaryExpr()
		return op

	case INCREMENT, DECREMENT:
		x := &IncDec{Op: p.tok.Kind, Prefix: true}
		x.pos = p.tok.Pos
		p.next()
		x.Target = p.name()
		return x
	}
	return p.postfixExpr()
}

// postfixExpr parses: Primary [++ | --]
func (p *Parser) postfixExpr() Expr {
	x := p.primaryExpr()
	if (p.tok.Kind == INCREMENT || p.tok.Kind == DECREMENT) && !p.breaksExpr() {
		target, ok := x.(*Name)
		if !ok {
			p.errorExpected("identifier before " + describeKind(p.tok.Kind))
			return x
		}
		inc := &IncDec{Op: p.tok.Kind, Target: target}
		inc.pos = x.Pos()
		p.next()
		return inc
	}
	return x
}

func (p *Parser) primaryExpr() Expr {
	tok := p.tok
	switch tok.Kind {
	case NUM:
		p.next()
		lit := &IntLit{Value: tok.Literal.(int64)}
		lit.pos = tok.Pos
		return lit

	case DECIMAL:
		p.next()
		lit := &FloatLit{Value: tok.Literal.(float64), Suffix: tok.Suffix}
		lit.pos = tok.Pos
		return lit

	case STRING:
		p.next()
		lit := &StringLit{Value: tok.Literal.(string)}
		lit.pos = tok.Pos
		return lit

	case TRUE, FALSE:
		p.next()
		lit := &BoolLit{Value: tok.Kind == TRUE}
		lit.pos = tok.Pos
		return lit

	case ID:
		n := p.name()
		if p.tok.Kind == LEFT_PAREN && !p.breaksExpr() {
			return p.callExpr(n)
		}
		return n

	case LEFT_PAREN:
		p.next()
		p.xnest++
		x := &ParenExpr{X: p.expr()}
		x.pos = tok.Pos
		p.xnest--
		p.want(RIGHT_PAREN)
		return x

	case RUN:
		return p.runExpr()
	}

	p.errorExpected("expression")
	n := &Name{Value: "_"}
	n.pos = tok.Pos
	return n
}

// callExpr parses Fun(Args...)
func (p *Parser) callExpr(fun *Name) *Call {
	call := &Call{Fun: fun}
	call.pos = fun.Pos()

	p.want(LEFT_PAREN)
	p.xnest++
	if p.tok.Kind != RIGHT_PAREN {
		call.Args = append(call.Args, p.expr())
		for p.got(COMMA) {
			call.Args = append(call.Args, p.expr())
		}
	}
	p.xnest--
	p.want(RIGHT_PAREN)
	return call
}

// runExpr parses run { ... } in expression position. Its body may not
// return from the enclosing function or branch out of enclosing loops.
func (p *Parser) runExpr() *RunExpr {
	x := &RunExpr{}
	x.pos = p.tok.Pos
	p.want(RUN)

	loops := p.loops
	p.loops = 0
	p.runx++
	x.Body = p.blockStmt()
	p.runx--
	p.loops = loops
	return x
}
