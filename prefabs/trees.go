package prefabs

import (
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/milk9111/npcsim/behavior"
	"github.com/milk9111/npcsim/component"
)

// LoadTree compiles trees/<name>.yaml. Script conditions inside it are
// resolved through LoadScript.
func LoadTree(name string, log *zap.Logger) (*behavior.Tree, error) {
	file := treePath(name)
	data, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", file, err)
	}
	tree, err := behavior.ParseTree(data,
		behavior.WithScriptLoader(LoadScript),
		behavior.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", file, err)
	}
	if tree.Name == "" {
		tree.Name = strings.TrimSuffix(path.Base(file), ".yaml")
	}
	return tree, nil
}

// LoadTrees compiles the tree named by every archetype. Archetypes without
// a tree keep the built-in one. Trees are per NPC type, so two archetypes
// of one type must agree on the tree.
func LoadTrees(spec ArchetypesSpec, log *zap.Logger) (map[component.NPCType]*behavior.Tree, error) {
	trees := make(map[component.NPCType]*behavior.Tree, len(spec.Archetypes))
	chosen := make(map[component.NPCType]string, len(spec.Archetypes))
	for name, a := range spec.Archetypes {
		if a.Tree == "" {
			continue
		}
		if prev, ok := chosen[a.Type]; ok {
			if prev != a.Tree {
				return nil, fmt.Errorf("prefabs: archetype %s: %s npcs already use tree %s", name, a.Type, prev)
			}
			continue
		}
		chosen[a.Type] = a.Tree
		tree, err := LoadTree(a.Tree, log)
		if err != nil {
			return nil, fmt.Errorf("prefabs: archetype %s: %w", name, err)
		}
		trees[a.Type] = tree
	}
	return trees, nil
}

func treePath(name string) string {
	s := relPath(name)
	if !strings.HasPrefix(s, "trees/") {
		s = "trees/" + s
	}
	if !strings.HasSuffix(s, ".yaml") {
		s += ".yaml"
	}
	return s
}
