package engine

import (
	"fmt"
	"strconv"
)

// Operation is the arithmetic operator of an expression cell
type Operation string

const (
	Addition       Operation = "addition"
	Subtraction    Operation = "subtraction"
	Multiplication Operation = "multiplication"
	Division       Operation = "division"
)

// Symbol returns the display glyph for the operation
func (o Operation) Symbol() string {
	switch o {
	case Addition:
		return "+"
	case Subtraction:
		return "-"
	case Multiplication:
		return "×"
	case Division:
		return "÷"
	}
	return "?"
}

// Expression is a cell value: a literal integer or a binary arithmetic expression.
// Value is the authoritative evaluated result.
type Expression struct {
	Display   string    `json:"display"`
	Value     int       `json:"value"`
	Operation Operation `json:"operation,omitempty"`
	Operands  []int     `json:"operands,omitempty"`
}

// Literal builds a plain integer cell value
func Literal(v int) Expression {
	return Expression{Display: strconv.Itoa(v), Value: v}
}

// NewExpression builds a binary expression and evaluates it.
// The second return is false when the operands do not evaluate (division by zero,
// non-integer quotient, unknown operation).
func NewExpression(op Operation, a, b int) (Expression, bool) {
	e := Expression{
		Display:   fmt.Sprintf("%d%s%d", a, op.Symbol(), b),
		Operation: op,
		Operands:  []int{a, b},
	}
	v, ok := evaluate(op, e.Operands)
	if !ok {
		return Expression{}, false
	}
	e.Value = v
	return e, true
}

// IsLiteral reports whether the value carries no operation
func (e Expression) IsLiteral() bool {
	return e.Operation == ""
}

// Evaluate returns the numeric value of the expression. Malformed expressions, and
// expressions whose operands disagree with Value, report ok=false.
func (e Expression) Evaluate() (int, bool) {
	if e.IsLiteral() {
		if len(e.Operands) != 0 {
			return 0, false
		}
		return e.Value, true
	}
	v, ok := evaluate(e.Operation, e.Operands)
	if !ok || v != e.Value {
		return 0, false
	}
	return v, true
}

func evaluate(op Operation, operands []int) (int, bool) {
	if len(operands) != 2 {
		return 0, false
	}
	a, b := operands[0], operands[1]
	switch op {
	case Addition:
		return a + b, true
	case Subtraction:
		return a - b, true
	case Multiplication:
		return a * b, true
	case Division:
		if b == 0 || a%b != 0 {
			return 0, false
		}
		return a / b, true
	}
	return 0, false
}

func (e Expression) clone() Expression {
	e.Operands = append([]int(nil), e.Operands...)
	if len(e.Operands) == 0 {
		e.Operands = nil
	}
	return e
}
