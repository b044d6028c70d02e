package ast

// BinaryExpression covers arithmetic, comparison, equality, bitwise,
// shift, `in` and `instanceof` operators.
type BinaryExpression struct {
	base
	Operator string
	Left     Expression
	Right    Expression
}

func (n *BinaryExpression) exprMarker() {}
func (n *BinaryExpression) Clone() Node {
	cp := *n
	cp.Left, cp.Right = cloneExpr(n.Left), cloneExpr(n.Right)
	return &cp
}

// LogicalExpression covers `&&`, `||`, `??`, which short-circuit and so
// are evaluated differently from strict BinaryExpression operators.
type LogicalExpression struct {
	base
	Operator string
	Left     Expression
	Right    Expression
}

func (n *LogicalExpression) exprMarker() {}
func (n *LogicalExpression) Clone() Node {
	cp := *n
	cp.Left, cp.Right = cloneExpr(n.Left), cloneExpr(n.Right)
	return &cp
}

// UnaryExpression covers prefix `+ - ! ~ typeof void delete`.
type UnaryExpression struct {
	base
	Operator string
	Argument Expression
}

func (n *UnaryExpression) exprMarker() {}
func (n *UnaryExpression) Clone() Node {
	cp := *n
	cp.Argument = cloneExpr(n.Argument)
	return &cp
}

// UpdateExpression covers `++`/`--`, prefix or postfix.
type UpdateExpression struct {
	base
	Operator string
	Argument Expression
	Prefix   bool
}

func (n *UpdateExpression) exprMarker() {}
func (n *UpdateExpression) Clone() Node {
	cp := *n
	cp.Argument = cloneExpr(n.Argument)
	return &cp
}

// AssignmentExpression covers `=` and all compound assignment operators.
// Target is a Pattern so destructuring assignment (`[a,b]=x`) is
// representable directly.
type AssignmentExpression struct {
	base
	Operator string
	Target   Pattern
	Value    Expression
}

func (n *AssignmentExpression) exprMarker() {}
func (n *AssignmentExpression) Clone() Node {
	cp := *n
	cp.Target = clonePattern(n.Target)
	cp.Value = cloneExpr(n.Value)
	return &cp
}

// ConditionalExpression is `test ? cons : alt`.
type ConditionalExpression struct {
	base
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (n *ConditionalExpression) exprMarker() {}
func (n *ConditionalExpression) Clone() Node {
	cp := *n
	cp.Test, cp.Consequent, cp.Alternate = cloneExpr(n.Test), cloneExpr(n.Consequent), cloneExpr(n.Alternate)
	return &cp
}

// SequenceExpression is the comma operator: `a, b, c`.
type SequenceExpression struct {
	base
	Expressions []Expression
}

func (n *SequenceExpression) exprMarker() {}
func (n *SequenceExpression) Clone() Node {
	cp := *n
	cp.Expressions = cloneExprs(n.Expressions)
	return &cp
}

// MemberExpression is `obj.prop`, `obj[expr]`, or `obj?.prop`/`obj?.[expr]`.
// CacheSlots backs the per-call-site inline cache described in internal/interp;
// it is populated and consulted only by the evaluator.
type MemberExpression struct {
	base
	Object     Expression
	Property   Expression // Identifier when !Computed, else an arbitrary Expression
	Computed   bool
	Optional   bool // `?.`
	CacheSlots [4]InlineCacheSlot
}

// InlineCacheSlot remembers one (shape, slot offset) pair observed at this
// member expression's call site.
type InlineCacheSlot struct {
	Shape  interface{} // *runtime.Shape, typed as interface{} to avoid an ast->runtime import cycle
	Offset int
	Valid  bool
}

func (n *MemberExpression) exprMarker() {}
func (n *MemberExpression) patternMarker() {} // assignment target, e.g. `obj.x = 1`
func (n *MemberExpression) Clone() Node {
	cp := *n
	cp.Object, cp.Property = cloneExpr(n.Object), cloneExpr(n.Property)
	cp.CacheSlots = [4]InlineCacheSlot{} // a clone starts with a cold cache
	return &cp
}

// CallExpression is `callee(args)`, possibly optional-chained.
type CallExpression struct {
	base
	Callee    Expression
	Arguments []Expression
	Optional  bool
}

func (n *CallExpression) exprMarker() {}
func (n *CallExpression) Clone() Node {
	cp := *n
	cp.Callee = cloneExpr(n.Callee)
	cp.Arguments = cloneExprs(n.Arguments)
	return &cp
}

// NewExpression is `new callee(args)`.
type NewExpression struct {
	base
	Callee    Expression
	Arguments []Expression
}

func (n *NewExpression) exprMarker() {}
func (n *NewExpression) Clone() Node {
	cp := *n
	cp.Callee = cloneExpr(n.Callee)
	cp.Arguments = cloneExprs(n.Arguments)
	return &cp
}

// YieldExpression is `yield expr` or `yield* expr` inside a generator.
type YieldExpression struct {
	base
	Argument Expression // nil for bare `yield`
	Delegate bool       // yield*
}

func (n *YieldExpression) exprMarker() {}
func (n *YieldExpression) Clone() Node {
	cp := *n
	cp.Argument = cloneExpr(n.Argument)
	return &cp
}

// AwaitExpression is `await expr` inside an async function.
type AwaitExpression struct {
	base
	Argument Expression
}

func (n *AwaitExpression) exprMarker() {}
func (n *AwaitExpression) Clone() Node {
	cp := *n
	cp.Argument = cloneExpr(n.Argument)
	return &cp
}
