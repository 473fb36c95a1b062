package defs

import (
	"fmt"
	"strings"
)

// Kind classifies an actor template for targeting and collision filters.
type Kind uint8

const (
	KindEnemy Kind = iota
	KindFriend
	KindMisc
)

var kindNames = [...]string{
	KindEnemy:  "enemy",
	KindFriend: "friend",
	KindMisc:   "misc",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a lowercase authoring name (also the content directory
// name) to a Kind.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "enemy":
		return KindEnemy, true
	case "friend":
		return KindFriend, true
	case "misc":
		return KindMisc, true
	default:
		return 0, false
	}
}

// Kinds lists every kind in directory load order.
func Kinds() []Kind {
	return []Kind{KindEnemy, KindFriend, KindMisc}
}
