package defs

import "vira-wilds/sim/internal/behavior"

// TraitFile is the authoring shape of trait/*.yaml.
type TraitFile struct {
	ID    string             `yaml:"id" json:"id" jsonschema:"required,minLength=1"`
	Stats map[string]float64 `yaml:"stats,omitempty" json:"stats,omitempty"`
	Flags []string           `yaml:"flags,omitempty" json:"flags,omitempty"`
	Tags  map[string]any     `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// BehaviorFile is the authoring shape of behaviour/*.yaml.
type BehaviorFile struct {
	ID       string   `yaml:"id" json:"id" jsonschema:"required,minLength=1"`
	Behavior NodeFile `yaml:"behavior" json:"behavior" jsonschema:"required"`
}

// NodeFile is one authored behavior tree node. Unknown keys on action nodes
// are kept in Extra and numeric ones become action parameters.
type NodeFile struct {
	Type     string             `yaml:"type" json:"type" jsonschema:"required,enum=selector,enum=sequence,enum=condition,enum=action"`
	Children []NodeFile         `yaml:"children,omitempty" json:"children,omitempty"`
	Name     string             `yaml:"name,omitempty" json:"name,omitempty"`
	Value    *float64           `yaml:"value,omitempty" json:"value,omitempty"`
	Expr     string             `yaml:"expr,omitempty" json:"expr,omitempty"`
	Multiple bool               `yaml:"multiple,omitempty" json:"multiple,omitempty"`
	Params   map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Extra    map[string]any     `yaml:",inline" json:"-"`
}

// ActorFile is the authoring shape of enemy/, friend/, and misc/*.yaml.
type ActorFile struct {
	ID         string             `yaml:"id" json:"id" jsonschema:"required,minLength=1"`
	Name       string             `yaml:"name,omitempty" json:"name,omitempty"`
	Kind       string             `yaml:"kind,omitempty" json:"kind,omitempty" jsonschema:"enum=enemy,enum=friend,enum=misc"`
	Visuals    VisualsFile        `yaml:"visuals,omitempty" json:"visuals,omitempty"`
	Hitbox     HitboxFile         `yaml:"hitbox" json:"hitbox" jsonschema:"required"`
	Traits     []string           `yaml:"traits,omitempty" json:"traits,omitempty"`
	TraitTags  map[string]any     `yaml:"trait_tags,omitempty" json:"trait_tags,omitempty"`
	Stats      map[string]float64 `yaml:"stats,omitempty" json:"stats,omitempty"`
	Speed      *float64           `yaml:"speed,omitempty" json:"speed,omitempty"`
	Collides   *bool              `yaml:"collides,omitempty" json:"collides,omitempty"`
	Behavior   *NodeFile          `yaml:"behavior,omitempty" json:"behavior,omitempty"`
	BehaviorID string             `yaml:"behavior_id,omitempty" json:"behavior_id,omitempty"`
}

// VisualsFile carries presentation data the simulation passes through.
type VisualsFile struct {
	Sprite     string         `yaml:"sprite,omitempty" json:"sprite,omitempty"`
	DrawParams map[string]any `yaml:"draw_params,omitempty" json:"draw_params,omitempty"`
}

// HitboxFile is authored as a size plus a center offset.
type HitboxFile struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w" jsonschema:"minimum=0"`
	H float64 `yaml:"h" json:"h" jsonschema:"minimum=0"`
}

func (f *NodeFile) node() *behavior.Node {
	n := &behavior.Node{
		Type:     behavior.NodeType(f.Type),
		Name:     f.Name,
		Value:    f.Value,
		Expr:     f.Expr,
		Multiple: f.Multiple,
	}
	if len(f.Params) > 0 {
		n.Params = make(behavior.Params, len(f.Params))
		for key, value := range f.Params {
			n.Params[key] = value
		}
	}
	if len(f.Extra) > 0 {
		n.Extra = make(map[string]any, len(f.Extra))
		for key, value := range f.Extra {
			n.Extra[key] = value
		}
	}
	for i := range f.Children {
		n.Children = append(n.Children, f.Children[i].node())
	}
	return n
}
