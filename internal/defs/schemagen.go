package defs

import (
	reflectschema "github.com/invopop/jsonschema"
)

// AuthoringSchema describes one bundled schema file and the authoring struct
// it validates.
type AuthoringSchema struct {
	File        string
	Title       string
	Description string

	value any
}

// AuthoringSchemas lists the bundled schema files in load order.
func AuthoringSchemas() []AuthoringSchema {
	return []AuthoringSchema{
		{
			File:        "trait.schema.json",
			Title:       "Trait Definition",
			Description: "trait/*.yaml: stat contributions, flags, and tags shared by actors.",
			value:       new(TraitFile),
		},
		{
			File:        "node.schema.json",
			Title:       "Behavior Node",
			Description: "One node of a behavior tree.",
			value:       new(NodeFile),
		},
		{
			File:        "behavior.schema.json",
			Title:       "Behavior Definition",
			Description: "behaviour/*.yaml: named behavior trees actors reference by id.",
			value:       new(BehaviorFile),
		},
		{
			File:        "actor.schema.json",
			Title:       "Actor Definition",
			Description: "enemy/, friend/, and misc/*.yaml actor templates.",
			value:       new(ActorFile),
		},
	}
}

// Reflect derives a JSON Schema from the authoring struct tags. It covers
// property names, types, and required fields; the bundled files add the
// per-node-type rules on top.
func (a AuthoringSchema) Reflect() *reflectschema.Schema {
	reflector := reflectschema.Reflector{
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
	}
	schema := reflector.Reflect(a.value)
	schema.Title = a.Title
	schema.Description = a.Description
	return schema
}
