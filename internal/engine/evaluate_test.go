package engine

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/queryir"
)

// Hand-built instructions for exercising the machine directly.
var (
	tt  = queryir.Condition{Key: "true", Pred: func(any) bool { return true }}
	ff  = queryir.Condition{Key: "false", Pred: func(any) bool { return false }}
	and = queryir.Operator{Kind: queryir.AND, Symbol: "&&"}
	or  = queryir.Operator{Kind: queryir.OR, Symbol: "||"}
	xor = queryir.Operator{Kind: queryir.Unsupported, Symbol: "^^"}
	lp  = queryir.Open{}
	rp  = queryir.Close{}
)

func program(instrs ...queryir.Instruction) *queryir.Program {
	return &queryir.Program{ID: "test", Instructions: instrs}
}

func TestEvaluate_Machine(t *testing.T) {
	tests := []struct {
		name string
		prog *queryir.Program
		want bool
		code EvalErrorCode
	}{
		{"empty program", program(), true, ""},
		{"nil program", nil, true, ""},
		{"single true", program(tt), true, ""},
		{"single false", program(ff), false, ""},
		{"and", program(tt, and, ff), false, ""},
		{"or", program(ff, or, tt), true, ""},
		{"and binds tighter", program(tt, or, ff, and, ff), true, ""},
		{"and binds tighter reversed", program(ff, and, ff, or, tt), true, ""},
		{"left associative", program(tt, and, tt, and, ff), false, ""},
		{"group overrides", program(lp, tt, or, ff, rp, and, ff), false, ""},
		{"nested groups", program(ff, or, lp, tt, and, lp, ff, or, tt, rp, rp), true, ""},
		{"empty group", program(lp, rp), true, ""},
		{"group of one", program(lp, ff, rp), false, ""},

		{"unmatched close", program(tt, rp), false, ErrCodeUnmatchedClose},
		{"unmatched close after or", program(tt, or, tt, rp), false, ErrCodeUnmatchedClose},
		{"unclosed group", program(lp, tt), false, ErrCodeUnclosedGroup},
		{"unclosed group after and", program(tt, and, lp, tt), false, ErrCodeUnclosedGroup},
		{"leading connector", program(and, tt), false, ErrCodeStackUnderflow},
		{"trailing connector", program(tt, or), false, ErrCodeStackUnderflow},
		{"connector before close", program(lp, tt, or, rp), false, ErrCodeStackUnderflow},
		{"unsupported connective", program(tt, xor, tt), false, ErrCodeUnsupportedOperator},
		{"unsupported inside or", program(tt, or, tt, xor, tt), false, ErrCodeUnsupportedOperator},
		{"dangling operands", program(tt, tt), false, ErrCodeDanglingOperands},
		{"condition then empty group", program(tt, and, lp, rp), false, ErrCodeStackUnderflow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(nil, tc.prog, NewStacks(0)))

			got, err := Explain(nil, tc.prog)
			assert.Equal(t, tc.want, got)
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsEvalError(err))
			assert.Equal(t, tc.code, EvalErrorCodeOf(err))
		})
	}
}

func TestEvaluate_ConditionsAreEager(t *testing.T) {
	var calls atomic.Int32
	counted := queryir.Condition{Pred: func(any) bool {
		calls.Add(1)
		return true
	}}

	// true || x: x is still evaluated
	assert.True(t, Evaluate(nil, program(counted, or, counted), NewStacks(0)))
	assert.Equal(t, int32(2), calls.Load())
}

func TestEvaluate_PassesRecord(t *testing.T) {
	isAdult := queryir.Condition{Pred: func(r any) bool {
		return r.(map[string]any)["age"].(float64) >= 18
	}}
	prog := program(isAdult)

	assert.True(t, Evaluate(map[string]any{"age": 30.0}, prog, NewStacks(1)))
	assert.False(t, Evaluate(map[string]any{"age": 3.0}, prog, NewStacks(1)))
}

func TestEvaluate_PredicatePanicIsFalse(t *testing.T) {
	boom := queryir.Condition{Pred: func(any) bool { panic("boom") }}

	got, err := Explain(nil, program(tt, or, boom))
	assert.False(t, got)
	assert.Equal(t, ErrCodePredicatePanic, EvalErrorCodeOf(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestEvaluate_StacksReusedAfterFailure(t *testing.T) {
	st := NewStacks(2)

	assert.False(t, Evaluate(nil, program(lp, tt, and), st), "leaves junk behind")
	assert.True(t, Evaluate(nil, program(tt), st), "reset before next use")
	assert.False(t, Evaluate(nil, program(tt, tt, tt), st))
	assert.True(t, Evaluate(nil, program(ff, or, tt), st))
}

func TestEvalError_Error(t *testing.T) {
	err := newEvalError(ErrCodeUnmatchedClose, 3, "no (")
	assert.Equal(t, "UNMATCHED_CLOSE: no ( (instruction 3)", err.Error())

	err = newEvalError(ErrCodeDanglingOperands, -1, "2 results left")
	assert.Equal(t, "DANGLING_OPERANDS: 2 results left", err.Error())

	assert.False(t, IsEvalError(nil))
	assert.Equal(t, EvalErrorCode(""), EvalErrorCodeOf(assert.AnError))
}

func TestEvaluator_Concurrent(t *testing.T) {
	isEven := queryir.Condition{Pred: func(r any) bool { return r.(int)%2 == 0 }}
	isSmall := queryir.Condition{Pred: func(r any) bool { return r.(int) < 50 }}
	ev := NewEvaluator(program(lp, isEven, and, isSmall, rp, or, ff))
	assert.Equal(t, 7, ev.Program().Len())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				want := i%2 == 0 && i < 50
				if got := ev.Match(i); got != want {
					t.Errorf("Match(%d) = %v, want %v", i, got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestEvaluator_Explain(t *testing.T) {
	ev := NewEvaluator(program(tt, xor, tt))

	ok, err := ev.Explain(nil)
	assert.False(t, ok)
	assert.Equal(t, ErrCodeUnsupportedOperator, EvalErrorCodeOf(err))
	assert.False(t, ev.Match(nil))
}
