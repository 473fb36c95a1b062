package behavior

import (
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
)

// branch is the result slot one node writes while ticking: the primary
// action it selected, if any, plus the always-firing secondary actions.
type branch struct {
	primary   *Action
	secondary []Action
}

// Evaluate walks the tree against facts and returns the ordered, distinct
// desired actions. The primary action comes first. A failed root or an empty
// result yields nil; the caller substitutes idle.
func (t *Tree) Evaluate(facts Facts) []Action {
	if t == nil || t.root == nil {
		return nil
	}
	var result branch
	status, err := t.node(t.root, &facts, &result).Tick()
	if err != nil || status != bt.Success {
		return nil
	}
	return collect(result)
}

// node builds the go-behaviortree graph for n. The graph is rebuilt per
// evaluation so that each node's result slot belongs to a single actor.
func (t *Tree) node(n *Node, facts *Facts, out *branch) bt.Node {
	switch n.Type {
	case NodeSelector, NodeSequence:
		slots := make([]branch, len(n.Children))
		children := make([]bt.Node, len(n.Children))
		for i, child := range n.Children {
			children[i] = t.node(child, facts, &slots[i])
		}
		if n.Type == NodeSelector {
			return bt.New(selectorTick(slots, out), children...)
		}
		return bt.New(sequenceTick(slots, out), children...)
	case NodeCondition:
		return bt.New(func([]bt.Node) (bt.Status, error) {
			if t.condition(n, facts) {
				return bt.Success, nil
			}
			return bt.Failure, nil
		})
	case NodeAction:
		params := t.params[n]
		return bt.New(func([]bt.Node) (bt.Status, error) {
			action := Action{Name: n.Name, Params: params}
			out.primary = &action
			if n.Multiple {
				out.secondary = append(out.secondary, action)
			}
			return bt.Success, nil
		})
	default:
		return bt.New(func([]bt.Node) (bt.Status, error) {
			return bt.Failure, fmt.Errorf("%w: unknown node type %q", ErrInvalidNode, n.Type)
		})
	}
}

// sequenceTick fails on the first failing child and discards everything the
// earlier children produced. On success the last child with a primary action
// wins and every secondary accumulates.
func sequenceTick(slots []branch, out *branch) bt.Tick {
	return func(children []bt.Node) (bt.Status, error) {
		*out = branch{}
		for i, child := range children {
			status, err := child.Tick()
			if err != nil {
				*out = branch{}
				return bt.Failure, err
			}
			if status != bt.Success {
				*out = branch{}
				return bt.Failure, nil
			}
			if slots[i].primary != nil {
				out.primary = slots[i].primary
			}
			out.secondary = append(out.secondary, slots[i].secondary...)
		}
		return bt.Success, nil
	}
}

// selectorTick keeps the first successful child's primary action but still
// ticks every child so secondaries from all successful branches are kept.
func selectorTick(slots []branch, out *branch) bt.Tick {
	return func(children []bt.Node) (bt.Status, error) {
		*out = branch{}
		matched := false
		for i, child := range children {
			status, err := child.Tick()
			if err != nil {
				*out = branch{}
				return bt.Failure, err
			}
			if status != bt.Success {
				continue
			}
			matched = true
			if out.primary == nil {
				out.primary = slots[i].primary
			}
			out.secondary = append(out.secondary, slots[i].secondary...)
		}
		if !matched {
			return bt.Failure, nil
		}
		return bt.Success, nil
	}
}

func collect(result branch) []Action {
	if result.primary == nil && len(result.secondary) == 0 {
		return nil
	}
	actions := make([]Action, 0, 1+len(result.secondary))
	if result.primary != nil {
		actions = append(actions, *result.primary)
	}
	for _, action := range result.secondary {
		if containsAction(actions, action) {
			continue
		}
		actions = append(actions, action)
	}
	return actions
}

func containsAction(actions []Action, action Action) bool {
	for _, existing := range actions {
		if existing.Same(action) {
			return true
		}
	}
	return false
}
