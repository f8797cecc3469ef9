package engine

import "math/rand"

const valueAttempts = 16

var (
	smallPrimes = []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}
	nonPrimes   = []int{1, 4, 6, 8, 9, 10, 12, 14, 15, 16, 18, 20, 21, 22, 25}
)

// MatchingValue builds a value that validates true under the rule
func (r Rule) MatchingValue(rng *rand.Rand, useExpressions bool) Expression {
	for i := 0; i < valueAttempts; i++ {
		if e, ok := r.matchingCandidate(rng, useExpressions); ok && r.Matches(e) {
			return e
		}
	}
	return r.fallbackMatching()
}

// NonMatchingValue builds a value that validates false under the rule
func (r Rule) NonMatchingValue(rng *rand.Rand, useExpressions bool) Expression {
	for i := 0; i < valueAttempts; i++ {
		if e, ok := r.nonMatchingCandidate(rng, useExpressions); ok && !r.Matches(e) {
			return e
		}
	}
	return r.fallbackNonMatching()
}

// MatchingValues returns count values that satisfy the rule
func (r Rule) MatchingValues(rng *rand.Rand, count int, useExpressions bool) []Expression {
	out := make([]Expression, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, r.MatchingValue(rng, useExpressions))
	}
	return out
}

func (r Rule) matchingCandidate(rng *rand.Rand, useExpressions bool) (Expression, bool) {
	t := r.Target
	switch r.Kind {
	case RuleEven:
		return present(rng, rng.Intn(10)*2+2, useExpressions)
	case RuleOdd:
		return present(rng, rng.Intn(10)*2+1, useExpressions)
	case RulePrime:
		return present(rng, smallPrimes[rng.Intn(len(smallPrimes))], useExpressions)
	case RuleEqualsTarget:
		if !useExpressions {
			return Literal(t), true
		}
		return expressionFor(rng, t, []Operation{Addition, Subtraction, Multiplication, Division})
	case RuleAdditionsOf:
		if rng.Float64() > 0.4 {
			return additionFor(rng, t)
		}
		return subtractionFor(rng, t)
	case RuleSubtractionsOf:
		return subtractionFor(rng, t)
	case RuleMultiplesOf:
		pairs := FactorPairs(t)
		if len(pairs) == 0 {
			return Expression{}, false
		}
		p := pairs[rng.Intn(len(pairs))]
		if rng.Intn(2) == 0 {
			p[0], p[1] = p[1], p[0]
		}
		return NewExpression(Multiplication, p[0], p[1])
	case RuleFactorsOf:
		factors := Factors(t)
		if len(factors) == 0 {
			return Expression{}, false
		}
		f := factors[rng.Intn(len(factors))]
		if useExpressions && rng.Intn(2) == 0 {
			return NewExpression(Division, t, t/f)
		}
		return Literal(f), true
	case RuleGreaterThan:
		return present(rng, t+1+rng.Intn(20), useExpressions)
	case RuleLessThan:
		lo := t - 20
		if lo < 0 {
			lo = 0
		}
		if t-lo <= 0 {
			return Expression{}, false
		}
		return present(rng, lo+rng.Intn(t-lo), useExpressions)
	}
	return Expression{}, false
}

func (r Rule) nonMatchingCandidate(rng *rand.Rand, useExpressions bool) (Expression, bool) {
	t := r.Target
	switch r.Kind {
	case RuleEven:
		return present(rng, rng.Intn(10)*2+1, useExpressions)
	case RuleOdd:
		return present(rng, rng.Intn(10)*2+2, useExpressions)
	case RulePrime:
		return present(rng, nonPrimes[rng.Intn(len(nonPrimes))], useExpressions)
	case RuleEqualsTarget:
		return present(rng, nearMiss(rng, t), useExpressions)
	case RuleAdditionsOf:
		return additionFor(rng, nearMiss(rng, t))
	case RuleSubtractionsOf:
		return subtractionFor(rng, nearMiss(rng, t))
	case RuleMultiplesOf:
		a, b := 1+rng.Intn(6), 1+rng.Intn(6)
		if a*b == t {
			b++
		}
		return NewExpression(Multiplication, a, b)
	case RuleFactorsOf:
		if t <= 0 {
			return Literal(0), true
		}
		return Literal(2 + rng.Intn(t+4)), true
	case RuleGreaterThan:
		if t < 1 {
			return Literal(t), true
		}
		lo := t - 19
		if lo < 1 {
			lo = 1
		}
		return present(rng, lo+rng.Intn(t-lo+1), useExpressions)
	case RuleLessThan:
		return present(rng, t+rng.Intn(21), useExpressions)
	}
	return Expression{}, false
}

func (r Rule) fallbackMatching() Expression {
	switch r.Kind {
	case RuleEven, RulePrime:
		return Literal(2)
	case RuleOdd, RuleFactorsOf:
		return Literal(1)
	case RuleGreaterThan:
		return Literal(r.Target + 1)
	case RuleLessThan:
		return Literal(r.Target - 1)
	}
	return Literal(r.Target)
}

func (r Rule) fallbackNonMatching() Expression {
	switch r.Kind {
	case RuleEven, RulePrime:
		return Literal(1)
	case RuleOdd:
		return Literal(2)
	case RuleGreaterThan, RuleLessThan:
		return Literal(r.Target)
	case RuleFactorsOf:
		if r.Target <= 0 {
			return Literal(0)
		}
	}
	return Literal(r.Target + 1)
}

// nearMiss returns a positive value within five of t but never t
func nearMiss(rng *rand.Rand, t int) int {
	offset := rng.Intn(5) + 1
	if rng.Intn(2) == 0 && t-offset > 0 {
		return t - offset
	}
	return t + offset
}

// present renders v as a literal, or as an addition/subtraction equal to v
func present(rng *rand.Rand, v int, useExpressions bool) (Expression, bool) {
	if !useExpressions || rng.Intn(2) == 0 {
		return Literal(v), true
	}
	return expressionFor(rng, v, []Operation{Addition, Subtraction})
}

// expressionFor picks one of ops and builds an expression evaluating to v
func expressionFor(rng *rand.Rand, v int, ops []Operation) (Expression, bool) {
	switch ops[rng.Intn(len(ops))] {
	case Addition:
		return additionFor(rng, v)
	case Subtraction:
		return subtractionFor(rng, v)
	case Multiplication:
		pairs := FactorPairs(v)
		if len(pairs) == 0 {
			return additionFor(rng, v)
		}
		p := pairs[rng.Intn(len(pairs))]
		return NewExpression(Multiplication, p[0], p[1])
	default:
		divisor := rng.Intn(5) + 1
		return NewExpression(Division, v*divisor, divisor)
	}
}

func additionFor(rng *rand.Rand, v int) (Expression, bool) {
	if v <= 0 {
		return subtractionFor(rng, v)
	}
	a := rng.Intn(v)
	return NewExpression(Addition, a, v-a)
}

func subtractionFor(rng *rand.Rand, v int) (Expression, bool) {
	d := rng.Intn(10) + 1
	return NewExpression(Subtraction, v+d, d)
}
