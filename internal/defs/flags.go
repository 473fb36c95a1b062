package defs

// Flags is the per-template bitmask of targeting and collision exemptions.
// It is computed once at load time from trait flag names.
type Flags uint16

const (
	FlagTargetPlayer Flags = 1 << iota
	FlagTargetNearestEntity
	FlagTargetNearestEnemy
	FlagTargetNearestFriend
	FlagTargetNearestMisc
	FlagNoEntityCollision
	FlagNoEnemyCollision
	FlagNoFriendCollision
	FlagNoMiscCollision
	FlagNoPlayerCollision
)

// Trait flag names with a dedicated bit. no_map_collision is a trait flag as
// well but clears the template's terrain collision instead.
var flagNames = map[string]Flags{
	"target_player":         FlagTargetPlayer,
	"target_nearest_entity": FlagTargetNearestEntity,
	"target_nearest_enemy":  FlagTargetNearestEnemy,
	"target_nearest_friend": FlagTargetNearestFriend,
	"target_nearest_misc":   FlagTargetNearestMisc,
	"no_entity_collision":   FlagNoEntityCollision,
	"no_enemy_collision":    FlagNoEnemyCollision,
	"no_friend_collision":   FlagNoFriendCollision,
	"no_misc_collision":     FlagNoMiscCollision,
	"no_player_collision":   FlagNoPlayerCollision,
}

// FlagNoMapCollision is the trait flag that disables terrain collision.
const FlagNoMapCollision = "no_map_collision"

// ParseFlag resolves a trait flag name to its bit.
func ParseFlag(name string) (Flags, bool) {
	flag, ok := flagNames[name]
	return flag, ok
}

// Has reports whether every bit in mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask && mask != 0
}

func (f Flags) TargetsPlayer() bool {
	return f.Has(FlagTargetPlayer)
}

func (f Flags) NoEntityCollision() bool {
	return f.Has(FlagNoEntityCollision)
}

func (f Flags) NoPlayerCollision() bool {
	return f.Has(FlagNoPlayerCollision)
}

// IgnoresKind reports whether dynamic collision against actors of kind is
// disabled, either globally or for that kind specifically.
func (f Flags) IgnoresKind(kind Kind) bool {
	if f.NoEntityCollision() {
		return true
	}
	switch kind {
	case KindEnemy:
		return f.Has(FlagNoEnemyCollision)
	case KindFriend:
		return f.Has(FlagNoFriendCollision)
	case KindMisc:
		return f.Has(FlagNoMiscCollision)
	}
	return false
}

// TargetMask packs the nearest-target flags into four bits.
func (f Flags) TargetMask() TargetMask {
	var mask TargetMask
	if f.Has(FlagTargetNearestEntity) {
		mask |= MaskAny
	}
	if f.Has(FlagTargetNearestEnemy) {
		mask |= MaskEnemy
	}
	if f.Has(FlagTargetNearestFriend) {
		mask |= MaskFriend
	}
	if f.Has(FlagTargetNearestMisc) {
		mask |= MaskMisc
	}
	return mask
}

// TargetMask selects which actor kinds an actor may target.
type TargetMask uint8

const (
	MaskAny TargetMask = 1 << iota
	MaskEnemy
	MaskFriend
	MaskMisc

	maskSpecific = MaskEnemy | MaskFriend | MaskMisc
)

// Eligible is the single kind-eligibility rule shared by target resolution
// and contact damage. Any specific kind bit restricts targets to the kinds
// named; otherwise the any-entity bit admits every kind.
func (m TargetMask) Eligible(kind Kind) bool {
	if m&maskSpecific != 0 {
		return m&kindMask(kind) != 0
	}
	return m&MaskAny != 0
}

func kindMask(kind Kind) TargetMask {
	switch kind {
	case KindEnemy:
		return MaskEnemy
	case KindFriend:
		return MaskFriend
	case KindMisc:
		return MaskMisc
	}
	return 0
}
