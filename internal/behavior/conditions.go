package behavior

import (
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"vira-wilds/sim/internal/geom"
	"vira-wilds/sim/stats"
)

const (
	// ConditionTargetInRange succeeds when the actor's resolved target lies
	// within value x view height.
	ConditionTargetInRange = "target_in_range"
	// ConditionExpr evaluates the node's Expr against Env.
	ConditionExpr = "expr"
)

// Facts is the read-only view of one actor that conditions evaluate against.
type Facts struct {
	Pos        geom.Vec2
	Target     geom.Vec2
	HasTarget  bool
	ViewHeight float64
	HP         float64
	MaxHP      float64
	Speed      float64
	Stats      stats.Block
}

// Env is the variable set visible to expression conditions.
type Env struct {
	HasTarget  bool               `expr:"has_target"`
	Distance   float64            `expr:"distance"`
	ViewHeight float64            `expr:"view_height"`
	HP         float64            `expr:"hp"`
	MaxHP      float64            `expr:"max_hp"`
	HPRatio    float64            `expr:"hp_ratio"`
	Speed      float64            `expr:"speed"`
	Value      float64            `expr:"value"`
	Stats      map[string]float64 `expr:"stats"`
}

func compileExpr(source string) (*vm.Program, error) {
	return expr.Compile(source, expr.Env(Env{}), expr.AsBool())
}

func (t *Tree) condition(n *Node, facts *Facts) bool {
	switch n.Name {
	case ConditionTargetInRange:
		return targetInRange(n.Value, facts)
	case ConditionExpr:
		program := t.programs[n]
		if program == nil {
			return false
		}
		result, err := expr.Run(program, newEnv(n, facts))
		if err != nil {
			return false
		}
		ok, _ := result.(bool)
		return ok
	default:
		return false
	}
}

func targetInRange(value *float64, facts *Facts) bool {
	if !facts.HasTarget {
		return false
	}
	scale := 1.0
	if value != nil {
		scale = *value
	}
	limit := math.Max(scale, 0) * math.Max(facts.ViewHeight, 1)
	return facts.Pos.Dist(facts.Target) <= limit
}

func newEnv(n *Node, facts *Facts) Env {
	env := Env{
		HasTarget:  facts.HasTarget,
		Distance:   math.Inf(1),
		ViewHeight: facts.ViewHeight,
		HP:         facts.HP,
		MaxHP:      facts.MaxHP,
		Speed:      facts.Speed,
		Stats:      facts.Stats.Map(),
	}
	if facts.HasTarget {
		env.Distance = facts.Pos.Dist(facts.Target)
	}
	if facts.MaxHP > 0 {
		env.HPRatio = facts.HP / facts.MaxHP
	}
	if n.Value != nil {
		env.Value = *n.Value
	}
	return env
}
