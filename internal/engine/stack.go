package engine

import "github.com/Mika83AC/ad-hoc-json-filter/internal/queryir"

// stackOp is an operator stack entry.
type stackOp uint8

const (
	stackOpen stackOp = iota
	stackAnd
	stackOr
	stackUnsupported
)

func opFor(o queryir.Operator) stackOp {
	switch o.Kind {
	case queryir.AND:
		return stackAnd
	case queryir.OR:
		return stackOr
	default:
		return stackUnsupported
	}
}

// precedence matches queryir.Operator.Precedence. The barrier has none.
func (o stackOp) precedence() int {
	switch o {
	case stackAnd:
		return 2
	case stackOr:
		return 1
	default:
		return 0
	}
}

// Stacks is the scratch space of one evaluation.
//
// A Stacks must not be used by two evaluations at once. Evaluate resets it
// before use, so a Stacks can be reused indefinitely by one goroutine.
type Stacks struct {
	operands  []bool
	operators []stackOp
}

// NewStacks creates stacks sized for depth entries each.
func NewStacks(depth int) *Stacks {
	if depth < 4 {
		depth = 4
	}
	return &Stacks{
		operands:  make([]bool, 0, depth),
		operators: make([]stackOp, 0, depth),
	}
}

// Reset empties both stacks, keeping their capacity.
func (s *Stacks) Reset() {
	s.operands = s.operands[:0]
	s.operators = s.operators[:0]
}

func (s *Stacks) pushOperand(v bool) {
	s.operands = append(s.operands, v)
}

func (s *Stacks) pushOperator(op stackOp) {
	s.operators = append(s.operators, op)
}

// top returns the top operator without popping it.
func (s *Stacks) top() (stackOp, bool) {
	if len(s.operators) == 0 {
		return 0, false
	}
	return s.operators[len(s.operators)-1], true
}

func (s *Stacks) popOperator() stackOp {
	op := s.operators[len(s.operators)-1]
	s.operators = s.operators[:len(s.operators)-1]
	return op
}

// apply pops one operator and two operands and pushes the combination.
func (s *Stacks) apply(index int) *EvalError {
	if len(s.operators) == 0 {
		return newEvalError(ErrCodeStackUnderflow, index, "no operator to apply")
	}
	if len(s.operands) < 2 {
		op := s.popOperator()
		if op == stackOpen {
			return newEvalError(ErrCodeUnclosedGroup, index, "\"(\" is never closed")
		}
		return newEvalError(ErrCodeStackUnderflow, index, "connector needs two operands, have %d", len(s.operands))
	}

	op := s.popOperator()
	n := len(s.operands)
	left, right := s.operands[n-2], s.operands[n-1]
	s.operands = s.operands[:n-2]

	switch op {
	case stackAnd:
		s.operands = append(s.operands, left && right)
	case stackOr:
		s.operands = append(s.operands, left || right)
	case stackOpen:
		return newEvalError(ErrCodeUnclosedGroup, index, "\"(\" is never closed")
	default:
		return newEvalError(ErrCodeUnsupportedOperator, index, "unsupported connective")
	}
	return nil
}

// result returns the final value: true for no operands, the operand itself
// for one, and an error for more.
func (s *Stacks) result() (bool, *EvalError) {
	switch len(s.operands) {
	case 0:
		return true, nil
	case 1:
		return s.operands[0], nil
	default:
		return false, newEvalError(ErrCodeDanglingOperands, -1, "%d results left, want 1", len(s.operands))
	}
}
