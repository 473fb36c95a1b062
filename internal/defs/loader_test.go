package defs

import (
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vira-wilds/sim/internal/geom"
)

func file(body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(body)}
}

func TestLoadDefaultContent(t *testing.T) {
	store, err := LoadDefault(LoadOptions{})
	require.NoError(t, err)

	virat, ok := store.TemplateByID("virat")
	require.True(t, ok)
	assert.Equal(t, KindEnemy, virat.Kind)
	assert.Equal(t, "Virat", virat.Name)
	assert.Equal(t, geom.R(-8, -10, 16, 12), virat.Hitbox)
	assert.Equal(t, 90.0, virat.Speed)
	assert.True(t, virat.Collides)
	assert.True(t, virat.Flags.TargetsPlayer())
	assert.Equal(t, "wilds", virat.Tags["faction"])
	require.NotNil(t, virat.Behavior)

	spawn := store.SpawnStats(virat)
	assert.Equal(t, 12.0, spawn.Get("hp", 0))
	assert.Equal(t, 5.0, spawn.Get("damage", 0))
	assert.False(t, virat.Stats.Has("damage"), "template base stats stay unmerged")

	stalker, ok := store.TemplateByID("stalker")
	require.True(t, ok)
	assert.Same(t, virat.Behavior, stalker.Behavior, "referenced behaviors are shared")
	stalkerStats := store.SpawnStats(stalker)
	assert.Equal(t, 75.0, stalkerStats.Get("speed", 0), "trait speed adds to the base stat")
	assert.Equal(t, 18.0, stalkerStats.Get("hp", 0))
	assert.Equal(t, MaskFriend, stalker.Flags.TargetMask())
	assert.True(t, stalker.Flags.IgnoresKind(KindEnemy))
	assert.Equal(t, "friend", stalker.Tags["prey"])

	virabird, ok := store.TemplateByID("virabird")
	require.True(t, ok)
	assert.False(t, virabird.Collides)

	villager, ok := store.TemplateByID("villager")
	require.True(t, ok)
	assert.Equal(t, KindFriend, villager.Kind)
	assert.Equal(t, "village", villager.Tags["faction"])
	assert.Equal(t, 20.0, store.SpawnStats(villager).Get("hp", 0))

	crate, ok := store.TemplateByID("crate")
	require.True(t, ok)
	assert.Nil(t, crate.Behavior)

	wisp, ok := store.TemplateByID("wisp")
	require.True(t, ok)
	assert.Equal(t, KindMisc, wisp.Kind, "directory decides the kind")
	assert.True(t, wisp.Flags.NoEntityCollision())
	assert.False(t, wisp.Collides)

	_, ok = store.TraitByID("target_player")
	assert.True(t, ok)
	_, ok = store.TraitByID(FlagNoMapCollision)
	assert.True(t, ok)
}

func TestLoadWarnsOnKindOverride(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	fsys := fstest.MapFS{
		"misc/lamp.yaml": file("id: lamp\nkind: enemy\nhitbox: {w: 4, h: 4}\n"),
	}

	store, err := Load(fsys, LoadOptions{Logger: logger})
	require.NoError(t, err)

	lamp, ok := store.TemplateByID("lamp")
	require.True(t, ok)
	assert.Equal(t, KindMisc, lamp.Kind)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["actor"] == "lamp" {
			warned = true
		}
	}
	assert.True(t, warned, "expected a kind override warning")
}

func TestLoadDefaults(t *testing.T) {
	fsys := fstest.MapFS{
		"enemy/blob.yml":    file("id: blob\nhitbox: {x: 1, y: 2, w: 10, h: 4}\n"),
		"enemy/readme.txt":  file("not a definition"),
		"trait/notes.md":    file("# ignored"),
		"behaviour/.keep":   file(""),
		"friend/nested/x.y": file("ignored"),
	}

	store, err := Load(fsys, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, store.TemplateCount())

	blob, ok := store.TemplateByID("blob")
	require.True(t, ok)
	assert.Equal(t, "blob", blob.Name)
	assert.Equal(t, DefaultSpeed, blob.Speed)
	assert.True(t, blob.Collides)
	assert.Equal(t, Flags(0), blob.Flags)
	assert.Equal(t, geom.R(-9, -4, 10, 4), blob.Hitbox)
	assert.Equal(t, 2, store.TraitCount(), "only built-in traits")
}

func TestLoadRejectsUnknownReferences(t *testing.T) {
	_, err := Load(fstest.MapFS{
		"enemy/a.yaml": file("id: a\nhitbox: {w: 1, h: 1}\ntraits: [missing]\n"),
	}, LoadOptions{})
	require.ErrorIs(t, err, ErrMissingDefinition)

	_, err = Load(fstest.MapFS{
		"enemy/a.yaml": file("id: a\nhitbox: {w: 1, h: 1}\nbehavior_id: nope\n"),
	}, LoadOptions{})
	require.ErrorIs(t, err, ErrMissingDefinition)
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"missing hitbox": {
			"enemy/a.yaml": file("id: a\n"),
		},
		"negative hitbox": {
			"enemy/a.yaml": file("id: a\nhitbox: {w: -1, h: 1}\n"),
		},
		"unknown node type": {
			"behaviour/b.yaml": file("id: b\nbehavior: {type: parallel, children: []}\n"),
		},
		"action without name": {
			"behaviour/b.yaml": file("id: b\nbehavior: {type: action}\n"),
		},
		"expr without source": {
			"behaviour/b.yaml": file("id: b\nbehavior: {type: condition, name: expr}\n"),
		},
		"expr that does not compile": {
			"behaviour/b.yaml": file("id: b\nbehavior: {type: condition, name: expr, expr: 'nope > 1'}\n"),
		},
		"non-numeric stat": {
			"trait/t.yaml": file("id: t\nstats: {hp: lots}\n"),
		},
		"bad kind": {
			"enemy/a.yaml": file("id: a\nkind: boss\nhitbox: {w: 1, h: 1}\n"),
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(fsys, LoadOptions{})
			require.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	_, err := Load(fstest.MapFS{
		"trait/a.yaml": file("id: same\n"),
		"trait/b.yaml": file("id: same\n"),
	}, LoadOptions{})
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = Load(fstest.MapFS{
		"enemy/a.yaml": file("id: twin\nhitbox: {w: 1, h: 1}\n"),
		"misc/b.yaml":  file("id: twin\nhitbox: {w: 1, h: 1}\n"),
	}, LoadOptions{})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestContentTraitShadowsBuiltin(t *testing.T) {
	store, err := Load(fstest.MapFS{
		"trait/target_player.yaml": file("id: target_player\nflags: [target_player]\nstats: {damage: 1}\n"),
	}, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, store.TraitCount())

	def, ok := store.TraitByID("target_player")
	require.True(t, ok)
	assert.Equal(t, 1.0, def.Stats.Get("damage", 0))
}

func TestActionExtrasBecomeParams(t *testing.T) {
	store, err := Load(fstest.MapFS{
		"behaviour/dash.yaml": file("id: dash\nbehavior: {type: action, name: dash_at_target, cooldown: 0.9, label: lunge}\n"),
	}, LoadOptions{})
	require.NoError(t, err)

	def, ok := store.BehaviorByID("dash")
	require.True(t, ok)
	node := def.Tree.Root()
	assert.Equal(t, "lunge", node.Extra["label"])

	actions := def.Tree.Evaluate(behaviorFacts())
	require.Len(t, actions, 1)
	assert.Equal(t, 0.9, actions[0].Params["dash_cooldown"])
}

func TestSkipValidationStillDecodes(t *testing.T) {
	store, err := Load(fstest.MapFS{
		"enemy/a.yaml": file("id: a\nhitbox: {w: 3, h: 2}\n"),
	}, LoadOptions{SkipValidation: true})
	require.NoError(t, err)
	assert.Equal(t, 1, store.TemplateCount())
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(t.TempDir()+"/absent", LoadOptions{})
	require.Error(t, err)
}
