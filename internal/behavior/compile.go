package behavior

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/vm"
)

// ErrInvalidNode reports a structurally broken tree.
var ErrInvalidNode = errors.New("behavior: invalid node")

// Tree is a compiled behavior tree. It is immutable once compiled and is
// shared by every actor spawned from the same template.
type Tree struct {
	root     *Node
	params   map[*Node]Params
	programs map[*Node]*vm.Program
}

// Compile validates root and precomputes everything evaluation needs: merged
// action parameters and compiled expression conditions.
func Compile(root *Node) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrInvalidNode)
	}
	tree := &Tree{
		root:     root,
		params:   make(map[*Node]Params),
		programs: make(map[*Node]*vm.Program),
	}
	if err := tree.compile(root, string(root.Type)); err != nil {
		return nil, err
	}
	return tree, nil
}

// MustCompile is Compile for trees built in code.
func MustCompile(root *Node) *Tree {
	tree, err := Compile(root)
	if err != nil {
		panic(err)
	}
	return tree
}

// Root returns the authored root node.
func (t *Tree) Root() *Node {
	if t == nil {
		return nil
	}
	return t.root
}

func (t *Tree) compile(n *Node, path string) error {
	if n == nil {
		return fmt.Errorf("%w: nil node at %s", ErrInvalidNode, path)
	}
	switch n.Type {
	case NodeSelector, NodeSequence:
		for i, child := range n.Children {
			childPath := fmt.Sprintf("%s[%d]", path, i)
			if child != nil {
				childPath = fmt.Sprintf("%s[%d].%s", path, i, child.Type)
			}
			if err := t.compile(child, childPath); err != nil {
				return err
			}
		}
	case NodeCondition:
		if n.Name == "" {
			return fmt.Errorf("%w: condition without name at %s", ErrInvalidNode, path)
		}
		if n.Name == ConditionExpr {
			program, err := compileExpr(n.Expr)
			if err != nil {
				return fmt.Errorf("behavior: compile expr at %s: %w", path, err)
			}
			t.programs[n] = program
		}
	case NodeAction:
		if n.Name == "" {
			return fmt.Errorf("%w: action without name at %s", ErrInvalidNode, path)
		}
		t.params[n] = mergeParams(n.Params, n.Extra)
	default:
		return fmt.Errorf("%w: unknown node type %q at %s", ErrInvalidNode, n.Type, path)
	}
	return nil
}

// mergeParams folds numeric passthrough fields into the parameter table. A
// plain cooldown doubles as dash_cooldown for older dash definitions.
func mergeParams(params Params, extra map[string]any) Params {
	merged := params.Clone()
	for key, value := range extra {
		number, ok := numeric(value)
		if !ok {
			continue
		}
		if merged == nil {
			merged = make(Params, len(extra))
		}
		merged[key] = number
	}
	if cooldown, ok := merged["cooldown"]; ok {
		if _, set := merged["dash_cooldown"]; !set {
			merged["dash_cooldown"] = cooldown
		}
	}
	return merged
}

func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// FirstAction returns the first action in depth-first order whose name known
// accepts. Spawned actors start out running it.
func (t *Tree) FirstAction(known func(string) bool) (string, bool) {
	if t == nil {
		return "", false
	}
	return firstAction(t.root, known)
}

func firstAction(n *Node, known func(string) bool) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type {
	case NodeAction:
		if known == nil || known(n.Name) {
			return n.Name, true
		}
	case NodeSelector, NodeSequence:
		for _, child := range n.Children {
			if name, ok := firstAction(child, known); ok {
				return name, true
			}
		}
	}
	return "", false
}
