package defs

import "vira-wilds/sim/stats"

var builtinTraits = []struct {
	id    string
	flags []string
}{
	{id: "target_player", flags: []string{"target_player"}},
	{id: FlagNoMapCollision, flags: []string{FlagNoMapCollision}},
}

// appendBuiltinTraits adds the built-in single-flag traits unless content
// already defines a trait with the same id.
func appendBuiltinTraits(traits []TraitDef) []TraitDef {
	for _, builtin := range builtinTraits {
		defined := false
		for i := range traits {
			if traits[i].ID == builtin.id {
				defined = true
				break
			}
		}
		if defined {
			continue
		}
		traits = append(traits, TraitDef{
			ID:    builtin.id,
			Stats: stats.Block{},
			Flags: append([]string(nil), builtin.flags...),
		})
	}
	return traits
}
