package runtime

import (
	"github.com/bloch-labs/bloch-go/ast"
	"github.com/bloch-labs/bloch-go/errs"
)

func (ev *Evaluator) eval(e ast.Expression) Value {
	switch ex := e.(type) {
	case *ast.IntegerLiteral:
		return IntValue(ex.Value)
	case *ast.LongLiteral:
		return LongValue(ex.Value)
	case *ast.FloatLiteral:
		return FloatValue(ex.Value)
	case *ast.BitLiteral:
		return BitValue(ex.Value)
	case *ast.CharLiteral:
		return CharValue(ex.Value)
	case *ast.StringLiteral:
		return StringValue(ex.Value)
	case *ast.BooleanLiteral:
		return BoolValue(ex.Value)
	case *ast.NullLiteral:
		return NullValue()
	case *ast.Identifier:
		if v, ok := ev.env.Get(ex.Name); ok {
			return v
		}
		if this, ok := ev.env.Get("this"); ok && this.Kind == KindObject {
			if v, ok := this.Obj.Fields[ex.Name]; ok {
				return v
			}
		}
		errs.Panic(errs.Runtime, ex.Position, "undeclared identifier '%s'", ex.Name)
	case *ast.ThisExpr:
		v, _ := ev.env.Get("this")
		return v
	case *ast.SuperExpr:
		v, _ := ev.env.Get("this")
		return v
	case *ast.ParenExpr:
		return ev.eval(ex.Inner)
	case *ast.PrefixExpr:
		return ev.evalPrefix(ex)
	case *ast.PostfixExpr:
		return ev.evalPostfix(ex)
	case *ast.BinaryExpr:
		return ev.evalBinary(ex)
	case *ast.CastExpr:
		return ev.evalCast(ex)
	case *ast.CallExpr:
		return ev.evalCall(ex)
	case *ast.MemberExpr:
		return ev.evalMember(ex)
	case *ast.IndexExpr:
		col := ev.eval(ex.Collection)
		idx := ev.eval(ex.Index)
		i := int(idx.Int)
		if idx.Kind == KindFloat {
			i = int(idx.Float)
		}
		if i < 0 || i >= len(col.Arr) {
			errs.Panic(errs.Runtime, ex.Position, "array index %d out of bounds [0,%d)", i, len(col.Arr))
		}
		return col.Arr[i]
	case *ast.NewExpr:
		return ev.evalNew(ex)
	case *ast.ArrayLiteral:
		elems := make([]Value, len(ex.Elements))
		for i, el := range ex.Elements {
			elems[i] = ev.eval(el)
		}
		return ArrayValue(elems)
	case *ast.AssignExpr:
		return ev.evalAssign(ex)
	case *ast.TernaryExpr:
		if ev.eval(ex.Cond).IsTruthy() {
			return ev.eval(ex.Then)
		}
		return ev.eval(ex.Else)
	case *ast.MeasureExpr:
		return ev.execMeasure(ex.Target)
	}
	errs.Panic(errs.Runtime, e.Pos(), "unsupported expression at runtime")
	return Value{}
}

func (ev *Evaluator) evalPrefix(ex *ast.PrefixExpr) Value {
	v := ev.eval(ex.Operand)
	switch ex.Operator {
	case "-":
		if v.Kind == KindFloat {
			return FloatValue(-v.Float)
		}
		return reWrap(v, -v.Int)
	case "!":
		return BoolValue(!v.IsTruthy())
	case "~":
		return reWrap(v, ^v.Int)
	}
	errs.Panic(errs.Runtime, ex.Position, "unknown unary operator '%s'", ex.Operator)
	return Value{}
}

func reWrap(v Value, i int64) Value {
	v.Int = i
	return v
}

func (ev *Evaluator) evalPostfix(ex *ast.PostfixExpr) Value {
	id, ok := ex.Operand.(*ast.Identifier)
	if !ok {
		errs.Panic(errs.Runtime, ex.Position, "'%s' requires a variable operand", ex.Operator)
	}
	old, _ := ev.env.Get(id.Name)
	delta := int64(1)
	if ex.Operator == "--" {
		delta = -1
	}
	var updated Value
	if old.Kind == KindFloat {
		if ex.Operator == "--" {
			updated = FloatValue(old.Float - 1)
		} else {
			updated = FloatValue(old.Float + 1)
		}
	} else {
		updated = reWrap(old, old.Int+delta)
	}
	ev.env.Set(id.Name, updated)
	return old
}

func (ev *Evaluator) evalBinary(ex *ast.BinaryExpr) Value {
	if ex.Operator == "&&" {
		l := ev.eval(ex.Left)
		if !l.IsTruthy() {
			return BoolValue(false)
		}
		return BoolValue(ev.eval(ex.Right).IsTruthy())
	}
	if ex.Operator == "||" {
		l := ev.eval(ex.Left)
		if l.IsTruthy() {
			return BoolValue(true)
		}
		return BoolValue(ev.eval(ex.Right).IsTruthy())
	}
	l := ev.eval(ex.Left)
	r := ev.eval(ex.Right)
	switch ex.Operator {
	case "+":
		if l.Kind == KindString || r.Kind == KindString {
			return StringValue(l.Printable() + r.Printable())
		}
	}
	if l.Kind == KindFloat || r.Kind == KindFloat {
		return evalFloatBinary(ex.Operator, l.AsNumeric(), r.AsNumeric())
	}
	switch ex.Operator {
	case "==":
		return BoolValue(valuesEqual(l, r))
	case "!=":
		return BoolValue(!valuesEqual(l, r))
	case "<":
		return BoolValue(l.Int < r.Int)
	case ">":
		return BoolValue(l.Int > r.Int)
	case "<=":
		return BoolValue(l.Int <= r.Int)
	case ">=":
		return BoolValue(l.Int >= r.Int)
	case "+":
		return widerInt(l, r, l.Int+r.Int)
	case "-":
		return widerInt(l, r, l.Int-r.Int)
	case "*":
		return widerInt(l, r, l.Int*r.Int)
	case "/":
		if r.Int == 0 {
			errs.Panic(errs.Runtime, ex.Position, "division by zero")
		}
		return widerInt(l, r, l.Int/r.Int)
	case "%":
		if r.Int == 0 {
			errs.Panic(errs.Runtime, ex.Position, "division by zero")
		}
		return widerInt(l, r, l.Int%r.Int)
	case "&":
		if l.Kind == KindBoolean || r.Kind == KindBoolean {
			return BoolValue(l.IsTruthy() && r.IsTruthy())
		}
		return widerInt(l, r, l.Int&r.Int)
	case "|":
		if l.Kind == KindBoolean || r.Kind == KindBoolean {
			return BoolValue(l.IsTruthy() || r.IsTruthy())
		}
		return widerInt(l, r, l.Int|r.Int)
	case "^":
		if l.Kind == KindBoolean || r.Kind == KindBoolean {
			return BoolValue(l.IsTruthy() != r.IsTruthy())
		}
		return widerInt(l, r, l.Int^r.Int)
	}
	errs.Panic(errs.Runtime, ex.Position, "unknown binary operator '%s'", ex.Operator)
	return Value{}
}

func evalFloatBinary(op string, l, r float64) Value {
	switch op {
	case "==":
		return BoolValue(l == r)
	case "!=":
		return BoolValue(l != r)
	case "<":
		return BoolValue(l < r)
	case ">":
		return BoolValue(l > r)
	case "<=":
		return BoolValue(l <= r)
	case ">=":
		return BoolValue(l >= r)
	case "+":
		return FloatValue(l + r)
	case "-":
		return FloatValue(l - r)
	case "*":
		return FloatValue(l * r)
	case "/":
		return FloatValue(l / r)
	}
	return FloatValue(0)
}

// widerInt re-wraps an integer result in the wider of l/r's Kind (bit <
// int < long), matching the semantic analyser's promotion rule.
func widerInt(l, r Value, result int64) Value {
	rank := func(k Kind) int {
		switch k {
		case KindBit:
			return 0
		case KindInt:
			return 1
		case KindLong:
			return 2
		}
		return 1
	}
	if rank(l.Kind) >= rank(r.Kind) {
		if l.Kind == KindBit {
			return IntValue(result)
		}
		return Value{Kind: l.Kind, Int: result}
	}
	if r.Kind == KindBit {
		return IntValue(result)
	}
	return Value{Kind: r.Kind, Int: result}
}

func valuesEqual(l, r Value) bool {
	if l.Kind == KindObject && r.Kind == KindObject {
		if l.Obj == nil || r.Obj == nil {
			return l.Obj == r.Obj
		}
		return l.Obj.ID == r.Obj.ID
	}
	if l.Kind == KindNull || r.Kind == KindNull {
		return (l.Kind == KindNull && r.Kind == KindNull) || (l.Kind == KindObject && l.Obj == nil) || (r.Kind == KindObject && r.Obj == nil)
	}
	return l.Int == r.Int && l.Bool == r.Bool && l.Str == r.Str && l.Char == r.Char
}

func (ev *Evaluator) evalCast(ex *ast.CastExpr) Value {
	v := ev.eval(ex.Operand)
	prim, ok := ex.TargetType.(*ast.PrimitiveType)
	if !ok {
		return v
	}
	switch prim.Kind {
	case ast.IntKind:
		return IntValue(int64(v.AsNumeric()))
	case ast.LongKind:
		return LongValue(int64(v.AsNumeric()))
	case ast.FloatKind:
		return FloatValue(v.AsNumeric())
	case ast.BitKind:
		return BitValue(int(v.AsNumeric()))
	case ast.StringKind:
		return StringValue(v.Printable())
	default:
		return v
	}
}

func (ev *Evaluator) evalMember(ex *ast.MemberExpr) Value {
	obj := ev.eval(ex.Object)
	if obj.Kind != KindObject || obj.Obj == nil {
		errs.Panic(errs.Runtime, ex.Position, "cannot access member '%s' on a null reference", ex.Member)
	}
	v, ok := obj.Obj.Fields[ex.Member]
	if !ok {
		errs.Panic(errs.Runtime, ex.Position, "object has no field '%s'", ex.Member)
	}
	return v
}

func (ev *Evaluator) evalAssign(ex *ast.AssignExpr) Value {
	v := ev.eval(ex.Value)
	switch tgt := ex.Target.(type) {
	case *ast.Identifier:
		if ev.env.Set(tgt.Name, v) {
			return v
		}
		if this, ok := ev.env.Get("this"); ok && this.Kind == KindObject {
			this.Obj.Fields[tgt.Name] = v
			return v
		}
		errs.Panic(errs.Runtime, ex.Position, "undeclared identifier '%s'", tgt.Name)
	case *ast.MemberExpr:
		obj := ev.eval(tgt.Object)
		if obj.Kind != KindObject || obj.Obj == nil {
			errs.Panic(errs.Runtime, ex.Position, "cannot assign member '%s' on a null reference", tgt.Member)
		}
		obj.Obj.Fields[tgt.Member] = v
	case *ast.IndexExpr:
		col := ev.eval(tgt.Collection)
		idx := ev.eval(tgt.Index)
		i := int(idx.Int)
		if i < 0 || i >= len(col.Arr) {
			errs.Panic(errs.Runtime, ex.Position, "array index %d out of bounds [0,%d)", i, len(col.Arr))
		}
		col.Arr[i] = v
	default:
		errs.Panic(errs.Runtime, ex.Position, "invalid assignment target")
	}
	return v
}
