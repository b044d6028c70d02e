package interp

import (
	"math"
	"math/big"
	"strings"

	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// evalBinary implements the arithmetic/comparison/equality/
// bitwise operator table. BigInt operands stay BigInt throughout (mixing
// BigInt and Number is a TypeError, matching ECMAScript).
func (it *Interpreter) evalBinary(ctx *runtime.Context, op string, left, right runtime.Value) (runtime.Value, *runtime.Exception) {
	switch op {
	case "+":
		return addValues(ctx, left, right)
	case "-", "*", "/", "%", "**":
		return arithmetic(ctx, op, left, right)
	case "<", ">", "<=", ">=":
		return relational(ctx, op, left, right)
	case "==":
		eq, exc := looseEquals(ctx, left, right)
		return runtime.BoolValue(eq), exc
	case "!=":
		eq, exc := looseEquals(ctx, left, right)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.BoolValue(!eq), nil
	case "===":
		return runtime.BoolValue(StrictEquals(left, right)), nil
	case "!==":
		return runtime.BoolValue(!StrictEquals(left, right)), nil
	case "&", "|", "^", "<<", ">>", ">>>":
		return bitwise(ctx, op, left, right)
	case "instanceof":
		return instanceOf(ctx, left, right)
	case "in":
		return inOperator(ctx, left, right)
	}
	return runtime.Undefined, ctx.NewSyntaxError("unsupported binary operator %q", op)
}

// addValues implements `+`'s ToPrimitive-then-string-or-number dance.
func addValues(ctx *runtime.Context, left, right runtime.Value) (runtime.Value, *runtime.Exception) {
	lp, exc := runtime.ToPrimitive(ctx, left, runtime.PreferDefault)
	if exc != nil {
		return runtime.Undefined, exc
	}
	rp, exc := runtime.ToPrimitive(ctx, right, runtime.PreferDefault)
	if exc != nil {
		return runtime.Undefined, exc
	}
	_, lIsStr := lp.(runtime.String)
	_, rIsStr := rp.(runtime.String)
	if lIsStr || rIsStr {
		ls, exc := runtime.ToString(ctx, lp)
		if exc != nil {
			return runtime.Undefined, exc
		}
		rs, exc := runtime.ToString(ctx, rp)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return ls + rs, nil
	}
	if lb, ok := lp.(runtime.BigInt); ok {
		rb, ok2 := rp.(runtime.BigInt)
		if !ok2 {
			return runtime.Undefined, ctx.NewTypeError("Cannot mix BigInt and other types")
		}
		return runtime.NewBigInt(new(big.Int).Add(lb.V, rb.V)), nil
	}
	ln, exc := runtime.ToNumber(ctx, lp)
	if exc != nil {
		return runtime.Undefined, exc
	}
	rn, exc := runtime.ToNumber(ctx, rp)
	if exc != nil {
		return runtime.Undefined, exc
	}
	return ln + rn, nil
}

func arithmetic(ctx *runtime.Context, op string, left, right runtime.Value) (runtime.Value, *runtime.Exception) {
	if lb, ok := left.(runtime.BigInt); ok {
		rb, ok2 := right.(runtime.BigInt)
		if !ok2 {
			return runtime.Undefined, ctx.NewTypeError("Cannot mix BigInt and other types, use explicit conversions")
		}
		return bigIntArithmetic(ctx, op, lb, rb)
	}
	ln, exc := runtime.ToNumber(ctx, left)
	if exc != nil {
		return runtime.Undefined, exc
	}
	rn, exc := runtime.ToNumber(ctx, right)
	if exc != nil {
		return runtime.Undefined, exc
	}
	lf, rf := float64(ln), float64(rn)
	switch op {
	case "-":
		return runtime.Number(lf - rf), nil
	case "*":
		return runtime.Number(lf * rf), nil
	case "/":
		return runtime.Number(lf / rf), nil
	case "%":
		return runtime.Number(math.Mod(lf, rf)), nil
	case "**":
		if rf == 0 {
			return runtime.Number(1), nil // pow(x, 0) === 1 even for NaN
		}
		return runtime.Number(math.Pow(lf, rf)), nil
	}
	return runtime.Undefined, ctx.NewSyntaxError("unsupported arithmetic operator %q", op)
}

func bigIntArithmetic(ctx *runtime.Context, op string, l, r runtime.BigInt) (runtime.Value, *runtime.Exception) {
	switch op {
	case "-":
		return runtime.NewBigInt(new(big.Int).Sub(l.V, r.V)), nil
	case "*":
		return runtime.NewBigInt(new(big.Int).Mul(l.V, r.V)), nil
	case "/":
		if r.V.Sign() == 0 {
			return runtime.Undefined, ctx.NewRangeError("Division by zero")
		}
		return runtime.NewBigInt(new(big.Int).Quo(l.V, r.V)), nil
	case "%":
		if r.V.Sign() == 0 {
			return runtime.Undefined, ctx.NewRangeError("Division by zero")
		}
		return runtime.NewBigInt(new(big.Int).Rem(l.V, r.V)), nil
	case "**":
		if r.V.Sign() < 0 {
			return runtime.Undefined, ctx.NewRangeError("Exponent must be non-negative")
		}
		return runtime.NewBigInt(new(big.Int).Exp(l.V, r.V, nil)), nil
	}
	return runtime.Undefined, ctx.NewSyntaxError("unsupported BigInt operator %q", op)
}

func relational(ctx *runtime.Context, op string, left, right runtime.Value) (runtime.Value, *runtime.Exception) {
	lp, exc := runtime.ToPrimitive(ctx, left, runtime.PreferNumber)
	if exc != nil {
		return runtime.Undefined, exc
	}
	rp, exc := runtime.ToPrimitive(ctx, right, runtime.PreferNumber)
	if exc != nil {
		return runtime.Undefined, exc
	}
	ls, lIsStr := lp.(runtime.String)
	rs, rIsStr := rp.(runtime.String)
	if lIsStr && rIsStr {
		var cmp bool
		switch op {
		case "<":
			cmp = ls < rs
		case ">":
			cmp = ls > rs
		case "<=":
			cmp = ls <= rs
		case ">=":
			cmp = ls >= rs
		}
		return runtime.BoolValue(cmp), nil
	}
	ln, exc := runtime.ToNumber(ctx, lp)
	if exc != nil {
		return runtime.Undefined, exc
	}
	rn, exc := runtime.ToNumber(ctx, rp)
	if exc != nil {
		return runtime.Undefined, exc
	}
	if math.IsNaN(float64(ln)) || math.IsNaN(float64(rn)) {
		return runtime.False, nil
	}
	var cmp bool
	switch op {
	case "<":
		cmp = ln < rn
	case ">":
		cmp = ln > rn
	case "<=":
		cmp = ln <= rn
	case ">=":
		cmp = ln >= rn
	}
	return runtime.BoolValue(cmp), nil
}

func bitwise(ctx *runtime.Context, op string, left, right runtime.Value) (runtime.Value, *runtime.Exception) {
	if op == "<<" || op == ">>" || op == ">>>" {
		l, exc := runtime.ToInt32(ctx, left)
		if exc != nil {
			return runtime.Undefined, exc
		}
		r, exc := runtime.ToUint32(ctx, right)
		if exc != nil {
			return runtime.Undefined, exc
		}
		shift := r & 31
		switch op {
		case "<<":
			return runtime.Number(int32(uint32(l) << shift)), nil
		case ">>":
			return runtime.Number(l >> shift), nil
		case ">>>":
			return runtime.Number(uint32(l) >> shift), nil
		}
	}
	l, exc := runtime.ToInt32(ctx, left)
	if exc != nil {
		return runtime.Undefined, exc
	}
	r, exc := runtime.ToInt32(ctx, right)
	if exc != nil {
		return runtime.Undefined, exc
	}
	switch op {
	case "&":
		return runtime.Number(l & r), nil
	case "|":
		return runtime.Number(l | r), nil
	case "^":
		return runtime.Number(l ^ r), nil
	}
	return runtime.Undefined, ctx.NewSyntaxError("unsupported bitwise operator %q", op)
}

// StrictEquals implements `===`: type then value, with NaN!=NaN and
// +0===-0.
func StrictEquals(a, b runtime.Value) bool {
	switch av := a.(type) {
	case runtime.Number:
		bv, ok := b.(runtime.Number)
		return ok && float64(av) == float64(bv)
	case runtime.String:
		bv, ok := b.(runtime.String)
		return ok && av == bv
	case runtime.Boolean:
		bv, ok := b.(runtime.Boolean)
		return ok && av == bv
	case runtime.BigInt:
		bv, ok := b.(runtime.BigInt)
		return ok && av.V.Cmp(bv.V) == 0
	default:
		return a == b
	}
}

func looseEquals(ctx *runtime.Context, a, b runtime.Value) (bool, *runtime.Exception) {
	if sameType(a, b) {
		return StrictEquals(a, b), nil
	}
	if runtime.IsNullOrUndefined(a) && runtime.IsNullOrUndefined(b) {
		return true, nil
	}
	if runtime.IsNullOrUndefined(a) || runtime.IsNullOrUndefined(b) {
		return false, nil
	}
	an, aIsNum := a.(runtime.Number)
	bs, bIsStr := b.(runtime.String)
	if aIsNum && bIsStr {
		bn, exc := runtime.ToNumber(ctx, bs)
		if exc != nil {
			return false, exc
		}
		return float64(an) == float64(bn), nil
	}
	as, aIsStr := a.(runtime.String)
	bn, bIsNum := b.(runtime.Number)
	if aIsStr && bIsNum {
		an, exc := runtime.ToNumber(ctx, as)
		if exc != nil {
			return false, exc
		}
		return float64(an) == float64(bn), nil
	}
	if ab, ok := a.(runtime.Boolean); ok {
		n, exc := runtime.ToNumber(ctx, ab)
		if exc != nil {
			return false, exc
		}
		return looseEquals(ctx, n, b)
	}
	if bb, ok := b.(runtime.Boolean); ok {
		n, exc := runtime.ToNumber(ctx, bb)
		if exc != nil {
			return false, exc
		}
		return looseEquals(ctx, a, n)
	}
	if _, ok := a.(*runtime.Object); ok {
		if isPrimitive(b) {
			ap, exc := runtime.ToPrimitive(ctx, a, runtime.PreferDefault)
			if exc != nil {
				return false, exc
			}
			return looseEquals(ctx, ap, b)
		}
	}
	if _, ok := b.(*runtime.Object); ok {
		if isPrimitive(a) {
			bp, exc := runtime.ToPrimitive(ctx, b, runtime.PreferDefault)
			if exc != nil {
				return false, exc
			}
			return looseEquals(ctx, a, bp)
		}
	}
	return false, nil
}

func isPrimitive(v runtime.Value) bool {
	_, ok := v.(*runtime.Object)
	return !ok
}

func sameType(a, b runtime.Value) bool {
	switch a.(type) {
	case runtime.Number:
		_, ok := b.(runtime.Number)
		return ok
	case runtime.String:
		_, ok := b.(runtime.String)
		return ok
	case runtime.Boolean:
		_, ok := b.(runtime.Boolean)
		return ok
	case runtime.BigInt:
		_, ok := b.(runtime.BigInt)
		return ok
	case *runtime.Symbol:
		_, ok := b.(*runtime.Symbol)
		return ok
	case *runtime.Object:
		_, ok := b.(*runtime.Object)
		return ok
	default:
		return runtime.IsNullOrUndefined(a) && runtime.IsNullOrUndefined(b) && a.Type() == b.Type()
	}
}

func instanceOf(ctx *runtime.Context, left, right runtime.Value) (runtime.Value, *runtime.Exception) {
	ctor, ok := right.(*runtime.Object)
	if !ok || !ctor.IsCallable() {
		return runtime.Undefined, ctx.NewTypeError("Right-hand side of 'instanceof' is not callable")
	}
	obj, ok := left.(*runtime.Object)
	if !ok {
		return runtime.False, nil
	}
	protoVal, exc := ctor.Get(ctx, "prototype", ctor)
	if exc != nil {
		return runtime.Undefined, exc
	}
	proto, ok := protoVal.(*runtime.Object)
	if !ok {
		return runtime.Undefined, ctx.NewTypeError("Function has non-object prototype in instanceof check")
	}
	for cur := obj.Prototype(); cur != nil; cur = cur.Prototype() {
		if cur == proto {
			return runtime.True, nil
		}
	}
	return runtime.False, nil
}

func inOperator(ctx *runtime.Context, left, right runtime.Value) (runtime.Value, *runtime.Exception) {
	obj, ok := right.(*runtime.Object)
	if !ok {
		return runtime.Undefined, ctx.NewTypeError("Cannot use 'in' operator to search in non-object")
	}
	name, exc := runtime.ToString(ctx, left)
	if exc != nil {
		return runtime.Undefined, exc
	}
	return runtime.BoolValue(obj.Has(string(name))), nil
}

// evalUnary implements prefix `+ - ! ~ typeof void delete`.
func (it *Interpreter) evalUnary(ctx *runtime.Context, n *ast.UnaryExpression) (runtime.Value, *runtime.Exception) {
	if n.Operator == "typeof" {
		return it.evalTypeof(ctx, n.Argument)
	}
	if n.Operator == "delete" {
		return it.evalDelete(ctx, n.Argument)
	}
	v, exc := it.evalExpression(ctx, n.Argument)
	if exc != nil {
		return runtime.Undefined, exc
	}
	switch n.Operator {
	case "void":
		return runtime.Undefined, nil
	case "!":
		return runtime.BoolValue(!runtime.ToBoolean(v)), nil
	case "-":
		if bi, ok := v.(runtime.BigInt); ok {
			return runtime.NewBigInt(new(big.Int).Neg(bi.V)), nil
		}
		num, exc := runtime.ToNumber(ctx, v)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return -num, nil
	case "+":
		num, exc := runtime.ToNumber(ctx, v)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return num, nil
	case "~":
		if bi, ok := v.(runtime.BigInt); ok {
			return runtime.NewBigInt(new(big.Int).Not(bi.V)), nil
		}
		i32, exc := runtime.ToInt32(ctx, v)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.Number(^i32), nil
	}
	return runtime.Undefined, ctx.NewSyntaxError("unsupported unary operator %q", n.Operator)
}

// coerceToPropertyKey renders a computed-property/index value as the
// string key the Object/Shape layer expects, with a fast path for the
// already-common Number-index case.
func coerceToPropertyKey(ctx *runtime.Context, v runtime.Value) (string, *runtime.Exception) {
	if n, ok := v.(runtime.Number); ok {
		return runtime.Number(n).String(), nil
	}
	s, exc := runtime.ToString(ctx, v)
	if exc != nil {
		return "", exc
	}
	return string(s), nil
}

// trimNumericString reports whether s, once trimmed of surrounding
// whitespace, consists only of decimal digits whose value fits in a uint32,
// and returns that value. Leading zeros are accepted ("007" gives 7), so
// the digits need not be the canonical rendering of the index.
func trimNumericString(s string) (uint32, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	var n uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n > math.MaxUint32 {
			return 0, false
		}
	}
	return uint32(n), true
}
