package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// RuleKind identifies one member of the closed rule catalogue
type RuleKind string

const (
	RuleEven           RuleKind = "even"
	RuleOdd            RuleKind = "odd"
	RulePrime          RuleKind = "prime"
	RuleEqualsTarget   RuleKind = "equalsTarget"
	RuleFactorsOf      RuleKind = "factorsOf"
	RuleMultiplesOf    RuleKind = "multiplesOf"
	RuleAdditionsOf    RuleKind = "additionsOf"
	RuleSubtractionsOf RuleKind = "subtractionsOf"
	RuleGreaterThan    RuleKind = "greaterThan"
	RuleLessThan       RuleKind = "lessThan"
)

// RuleKinds lists every supported kind in catalogue order
var RuleKinds = []RuleKind{
	RuleEven, RuleOdd, RulePrime, RuleAdditionsOf, RuleSubtractionsOf,
	RuleMultiplesOf, RuleFactorsOf, RuleEqualsTarget, RuleGreaterThan, RuleLessThan,
}

type ruleDef struct {
	name        string
	description string
	needsTarget bool
	// targetMin/targetMax bound generated targets; targetChoices overrides the range.
	targetMin, targetMax int
	targetChoices        []int
}

var ruleDefs = map[RuleKind]ruleDef{
	RuleEven:           {name: "Even Numbers", description: "Collect all even numbers"},
	RuleOdd:            {name: "Odd Numbers", description: "Collect all odd numbers"},
	RulePrime:          {name: "Prime Numbers", description: "Collect all prime numbers"},
	RuleEqualsTarget:   {name: "Equals", description: "Collect everything that equals [target]", needsTarget: true, targetMin: 6, targetMax: 20},
	RuleFactorsOf:      {name: "Factors Of", description: "Collect all factors of [target]", needsTarget: true, targetChoices: []int{12, 16, 18, 20, 24, 30, 36, 42, 48}},
	RuleMultiplesOf:    {name: "Multiples Of", description: "Collect all expressions that multiply to [target]", needsTarget: true, targetMin: 2, targetMax: 12},
	RuleAdditionsOf:    {name: "Additions Of", description: "Collect all expressions that add up to [target]", needsTarget: true, targetMin: 5, targetMax: 20},
	RuleSubtractionsOf: {name: "Subtractions Of", description: "Collect all expressions that subtract to [target]", needsTarget: true, targetMin: 1, targetMax: 10},
	RuleGreaterThan:    {name: "Greater Than", description: "Collect all numbers greater than [target]", needsTarget: true, targetMin: 20, targetMax: 60},
	RuleLessThan:       {name: "Less Than", description: "Collect all numbers less than [target]", needsTarget: true, targetMin: 20, targetMax: 60},
}

// Valid reports whether the kind is part of the catalogue
func (k RuleKind) Valid() bool {
	_, ok := ruleDefs[k]
	return ok
}

// NeedsTarget reports whether the kind is parameterized by a target number
func (k RuleKind) NeedsTarget() bool {
	return ruleDefs[k].needsTarget
}

// GenerateTarget draws a target from the kind's range. ok is false for kinds without targets.
func (k RuleKind) GenerateTarget(rng *rand.Rand) (int, bool) {
	def, known := ruleDefs[k]
	if !known || !def.needsTarget {
		return 0, false
	}
	if len(def.targetChoices) > 0 {
		return def.targetChoices[rng.Intn(len(def.targetChoices))], true
	}
	return def.targetMin + rng.Intn(def.targetMax-def.targetMin+1), true
}

// Rule is a rule kind bound to its per-level target
type Rule struct {
	Kind   RuleKind `json:"kind"`
	Target int      `json:"target,omitempty"`
}

// Constructors, one per kind.

func Even() Rule { return Rule{Kind: RuleEven} }
func Odd() Rule { return Rule{Kind: RuleOdd} }
func Prime() Rule { return Rule{Kind: RulePrime} }
func EqualsTarget(t int) Rule { return Rule{Kind: RuleEqualsTarget, Target: t} }
func FactorsOf(t int) Rule { return Rule{Kind: RuleFactorsOf, Target: t} }
func MultiplesOf(t int) Rule { return Rule{Kind: RuleMultiplesOf, Target: t} }
func AdditionsOf(t int) Rule { return Rule{Kind: RuleAdditionsOf, Target: t} }
func SubtractionsOf(t int) Rule { return Rule{Kind: RuleSubtractionsOf, Target: t} }
func GreaterThan(t int) Rule { return Rule{Kind: RuleGreaterThan, Target: t} }
func LessThan(t int) Rule { return Rule{Kind: RuleLessThan, Target: t} }

// NewRule binds a kind to a target, drawing one from rng when target is zero
func NewRule(kind RuleKind, target int, rng *rand.Rand) (Rule, error) {
	if !kind.Valid() {
		return Rule{}, fmt.Errorf("unknown rule kind %q", kind)
	}
	if !kind.NeedsTarget() {
		return Rule{Kind: kind}, nil
	}
	if target == 0 {
		target, _ = kind.GenerateTarget(rng)
	}
	if kind == RuleFactorsOf && target <= 0 {
		return Rule{}, fmt.Errorf("rule %s needs a positive target, got %d", kind, target)
	}
	return Rule{Kind: kind, Target: target}, nil
}

// ID returns the stable identifier of the rule category
func (r Rule) ID() string {
	return string(r.Kind)
}

// Name returns the human-readable rule name
func (r Rule) Name() string {
	def, ok := ruleDefs[r.Kind]
	if !ok {
		return "Unknown Rule"
	}
	if def.needsTarget {
		return def.name + " " + strconv.Itoa(r.Target)
	}
	return def.name
}

// Description returns the rule description with its target substituted
func (r Rule) Description() string {
	def, ok := ruleDefs[r.Kind]
	if !ok {
		return ""
	}
	return strings.ReplaceAll(def.description, "[target]", strconv.Itoa(r.Target))
}

// Validate is the rule predicate over an evaluated value. It is pure and total.
func (r Rule) Validate(value int) bool {
	switch r.Kind {
	case RuleEven:
		return value%2 == 0
	case RuleOdd:
		return value%2 != 0
	case RulePrime:
		return IsPrime(value)
	case RuleEqualsTarget, RuleMultiplesOf, RuleAdditionsOf, RuleSubtractionsOf:
		return value == r.Target
	case RuleFactorsOf:
		if value == 0 {
			return false
		}
		return r.Target%value == 0
	case RuleGreaterThan:
		return value > r.Target
	case RuleLessThan:
		return value < r.Target
	}
	return false
}

// Matches evaluates a cell value against the rule. Expressions that fail to evaluate never match.
func (r Rule) Matches(e Expression) bool {
	v, ok := e.Evaluate()
	if !ok {
		return false
	}
	return r.Validate(v)
}

type ruleJSON struct {
	Kind        RuleKind `json:"kind"`
	Target      int      `json:"target,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
}

// MarshalJSON includes the derived name and description for presentation
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(ruleJSON{Kind: r.Kind, Target: r.Target, Name: r.Name(), Description: r.Description()})
}

// UnmarshalJSON reads kind and target; derived fields are ignored
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw ruleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Kind = raw.Kind
	r.Target = raw.Target
	return nil
}

// IsPrime checks primality by trial division up to the square root
func IsPrime(n int) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := 5; i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// Factors returns every positive divisor of n in ascending order
func Factors(n int) []int {
	var out []int
	for i := 1; i <= n; i++ {
		if n%i == 0 {
			out = append(out, i)
		}
	}
	return out
}

// FactorPairs returns the pairs (a, b) with a <= b and a*b == n
func FactorPairs(n int) [][2]int {
	var out [][2]int
	for i := 1; i*i <= n; i++ {
		if n%i == 0 {
			out = append(out, [2]int{i, n / i})
		}
	}
	return out
}
