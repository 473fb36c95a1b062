// Package behavior evaluates declarative behavior trees into the set of
// movement actions an actor wants to run this frame.
package behavior

import "math"

// NodeType tags the variant stored in a Node.
type NodeType string

const (
	NodeSelector  NodeType = "selector"
	NodeSequence  NodeType = "sequence"
	NodeCondition NodeType = "condition"
	NodeAction    NodeType = "action"
)

// Node is one authored behavior tree node. Which fields are meaningful
// depends on Type:
//
//	selector, sequence: Children
//	condition:          Name, Value, Expr (when Name is "expr")
//	action:             Name, Multiple, Params, Extra
type Node struct {
	Type     NodeType
	Children []*Node

	Name  string
	Value *float64
	Expr  string

	Multiple bool
	Params   Params
	Extra    map[string]any
}

// Params is a movement parameter table.
type Params map[string]float64

// Get returns the value for key or def when absent.
func (p Params) Get(key string, def float64) float64 {
	if value, ok := p[key]; ok {
		return value
	}
	return def
}

// Equal reports whether both tables hold exactly the same keys and values.
func (p Params) Equal(other Params) bool {
	if len(p) != len(other) {
		return false
	}
	for key, value := range p {
		candidate, ok := other[key]
		if !ok {
			return false
		}
		if candidate != value && !(math.IsNaN(candidate) && math.IsNaN(value)) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy; nil stays nil.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for key, value := range p {
		out[key] = value
	}
	return out
}

// Action is a desired named action with its resolved parameters.
type Action struct {
	Name   string
	Params Params
}

// Same reports identity by name and parameter table.
func (a Action) Same(other Action) bool {
	return a.Name == other.Name && a.Params.Equal(other.Params)
}

// Selector builds a selector node.
func Selector(children ...*Node) *Node {
	return &Node{Type: NodeSelector, Children: children}
}

// Sequence builds a sequence node.
func Sequence(children ...*Node) *Node {
	return &Node{Type: NodeSequence, Children: children}
}

// Condition builds a named condition node with an optional parameter.
func Condition(name string, value *float64) *Node {
	return &Node{Type: NodeCondition, Name: name, Value: value}
}

// ExprCondition builds a condition evaluated from an expression.
func ExprCondition(expression string) *Node {
	return &Node{Type: NodeCondition, Name: ConditionExpr, Expr: expression}
}

// ActionNode builds an action node.
func ActionNode(name string, multiple bool, params Params) *Node {
	return &Node{Type: NodeAction, Name: name, Multiple: multiple, Params: params}
}

// Float is a convenience for optional condition parameters.
func Float(v float64) *float64 {
	return &v
}
