package defs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"vira-wilds/sim/internal/behavior"
	"vira-wilds/sim/internal/geom"
	"vira-wilds/sim/stats"
)

// Content directories under a definition root. Actor directories are named
// after their Kind.
const (
	DirBehaviors = "behaviour"
	DirTraits    = "trait"
)

// LoadOptions tunes Load.
type LoadOptions struct {
	// Logger receives authoring warnings. Nil discards them.
	Logger logrus.FieldLogger
	// SkipValidation disables JSON Schema checks.
	SkipValidation bool
}

type sourceFile struct {
	path string
	data []byte
}

type loader struct {
	fsys    fs.FS
	log     logrus.FieldLogger
	schemas *schemaSet

	traits    []TraitDef
	behaviors []BehaviorDef
	templates []ActorTemplate

	traitLookup    map[string]int
	behaviorLookup map[string]int
}

// LoadDir loads definitions from a directory on disk.
func LoadDir(root string, opts LoadOptions) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("defs: open %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("defs: %q is not a directory", root)
	}
	return Load(os.DirFS(root), opts)
}

// Load reads behaviors, traits, and actor templates from fsys and returns the
// resolved store. Missing directories are treated as empty. Any unresolvable
// reference fails the whole load.
func Load(fsys fs.FS, opts LoadOptions) (*Store, error) {
	l := &loader{
		fsys:           fsys,
		log:            opts.Logger,
		traitLookup:    make(map[string]int),
		behaviorLookup: make(map[string]int),
	}
	if l.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		l.log = discard
	}
	if !opts.SkipValidation {
		schemas, err := loadSchemas()
		if err != nil {
			return nil, err
		}
		l.schemas = schemas
	}

	if err := l.loadBehaviors(); err != nil {
		return nil, err
	}
	if err := l.loadTraits(); err != nil {
		return nil, err
	}
	for _, kind := range Kinds() {
		if err := l.loadActors(kind); err != nil {
			return nil, err
		}
	}

	store, err := NewStore(l.traits, l.behaviors, l.templates)
	if err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{
		"traits":    store.TraitCount(),
		"behaviors": store.BehaviorCount(),
		"actors":    store.TemplateCount(),
	}).Debug("definitions loaded")
	return store, nil
}

func (l *loader) schema(pick func(*schemaSet) *jsonschema.Schema) *jsonschema.Schema {
	if l.schemas == nil {
		return nil
	}
	return pick(l.schemas)
}

func (l *loader) loadBehaviors() error {
	files, err := readYAMLDir(l.fsys, DirBehaviors)
	if err != nil {
		return err
	}
	schema := l.schema(func(s *schemaSet) *jsonschema.Schema { return s.behavior })
	for _, file := range files {
		var raw BehaviorFile
		if err := decodeDocument(schema, file, &raw); err != nil {
			return err
		}
		tree, err := behavior.Compile(raw.Behavior.node())
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, file.path, err)
		}
		if _, exists := l.behaviorLookup[raw.ID]; exists {
			return fmt.Errorf("%w: behavior %q in %s", ErrDuplicateID, raw.ID, file.path)
		}
		l.behaviorLookup[raw.ID] = len(l.behaviors)
		l.behaviors = append(l.behaviors, BehaviorDef{ID: raw.ID, Tree: tree})
	}
	return nil
}

func (l *loader) loadTraits() error {
	files, err := readYAMLDir(l.fsys, DirTraits)
	if err != nil {
		return err
	}
	schema := l.schema(func(s *schemaSet) *jsonschema.Schema { return s.trait })
	for _, file := range files {
		var raw TraitFile
		if err := decodeDocument(schema, file, &raw); err != nil {
			return err
		}
		if _, exists := l.traitLookup[raw.ID]; exists {
			return fmt.Errorf("%w: trait %q in %s", ErrDuplicateID, raw.ID, file.path)
		}
		l.traitLookup[raw.ID] = len(l.traits)
		l.traits = append(l.traits, TraitDef{
			ID:    raw.ID,
			Stats: stats.NewBlock(raw.Stats),
			Flags: raw.Flags,
			Tags:  raw.Tags,
		})
	}

	before := len(l.traits)
	l.traits = appendBuiltinTraits(l.traits)
	for i := before; i < len(l.traits); i++ {
		l.traitLookup[l.traits[i].ID] = i
	}
	return nil
}

func (l *loader) loadActors(kind Kind) error {
	files, err := readYAMLDir(l.fsys, kind.String())
	if err != nil {
		return err
	}
	schema := l.schema(func(s *schemaSet) *jsonschema.Schema { return s.actor })
	for _, file := range files {
		var raw ActorFile
		if err := decodeDocument(schema, file, &raw); err != nil {
			return err
		}
		template, err := l.compileActor(kind, file.path, raw)
		if err != nil {
			return err
		}
		l.templates = append(l.templates, template)
	}
	return nil
}

func (l *loader) compileActor(kind Kind, source string, raw ActorFile) (ActorTemplate, error) {
	if raw.Kind != "" {
		if declared, ok := ParseKind(raw.Kind); !ok || declared != kind {
			l.log.WithFields(logrus.Fields{
				"actor":     raw.ID,
				"declared":  raw.Kind,
				"directory": kind.String(),
				"file":      source,
			}).Warn("actor kind override ignored; using directory kind")
		}
	}

	traitIndices := make([]int, 0, len(raw.Traits))
	traitDefs := make([]*TraitDef, 0, len(raw.Traits))
	for _, id := range raw.Traits {
		idx, ok := l.traitLookup[id]
		if !ok {
			return ActorTemplate{}, fmt.Errorf("%w: trait %q referenced by actor %q", ErrMissingDefinition, id, raw.ID)
		}
		traitIndices = append(traitIndices, idx)
		traitDefs = append(traitDefs, &l.traits[idx])
	}

	tags := make(map[string]any, len(raw.TraitTags))
	for key, value := range raw.TraitTags {
		tags[key] = value
	}
	for _, def := range traitDefs {
		for key, value := range def.Tags {
			if _, exists := tags[key]; !exists {
				tags[key] = value
			}
		}
	}

	var tree *behavior.Tree
	switch {
	case raw.Behavior != nil:
		compiled, err := behavior.Compile(raw.Behavior.node())
		if err != nil {
			return ActorTemplate{}, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, source, err)
		}
		tree = compiled
	case raw.BehaviorID != "":
		idx, ok := l.behaviorLookup[raw.BehaviorID]
		if !ok {
			return ActorTemplate{}, fmt.Errorf("%w: behavior %q referenced by actor %q", ErrMissingDefinition, raw.BehaviorID, raw.ID)
		}
		tree = l.behaviors[idx].Tree
	}

	speed := DefaultSpeed
	if raw.Speed != nil {
		speed = *raw.Speed
	}
	collides := true
	if raw.Collides != nil {
		collides = *raw.Collides
	}
	flags, collides := ComposeFlags(traitDefs, collides)

	name := raw.Name
	if name == "" {
		name = raw.ID
	}

	return ActorTemplate{
		ID:       raw.ID,
		Name:     name,
		Kind:     kind,
		Hitbox:   authoredHitbox(raw.Hitbox),
		Traits:   traitIndices,
		Tags:     tags,
		Behavior: tree,
		Stats:    stats.NewBlock(raw.Stats),
		Speed:    speed,
		Collides: collides,
		Flags:    flags,
		Sprite:   raw.Visuals.Sprite,
	}, nil
}

// authoredHitbox converts the authored size and center offset into a hitbox
// relative to the actor position, which sits at the sprite's feet.
func authoredHitbox(h HitboxFile) geom.Rect {
	return geom.R(-h.W+h.X, -h.H*1.5+h.Y, h.W, h.H)
}

func readYAMLDir(fsys fs.FS, dir string) ([]sourceFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("defs: read dir %q: %w", dir, err)
	}
	files := make([]sourceFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("defs: read %q: %w", p, err)
		}
		files = append(files, sourceFile{path: p, data: data})
	}
	return files, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func decodeDocument(schema *jsonschema.Schema, file sourceFile, out any) error {
	if schema != nil {
		var generic any
		if err := yaml.Unmarshal(file.data, &generic); err != nil {
			return fmt.Errorf("defs: decode %q: %w", file.path, err)
		}
		value, err := jsonValue(generic)
		if err != nil {
			return fmt.Errorf("defs: normalise %q: %w", file.path, err)
		}
		if err := schema.Validate(value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, file.path, err)
		}
	}
	if err := yaml.Unmarshal(file.data, out); err != nil {
		return fmt.Errorf("defs: decode %q: %w", file.path, err)
	}
	return nil
}
