package behavior

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
)

// RawTree is the YAML shape of a behavior tree file:
//
//	name: hostile
//	root:
//	  selector:
//	    - sequence:
//	        - condition: has_target
//	        - condition: {target_in_range: 2}
//	        - action: attack
//	    - action: wander
type RawTree struct {
	Name string `yaml:"name"`
	Root any    `yaml:"root"`
}

// ScriptLoader returns the source of a script referenced by a tree file.
type ScriptLoader func(path string) ([]byte, error)

type compiler struct {
	loadScript ScriptLoader
	log        *zap.Logger
	scripts    map[string]*Script
}

// CompileOption configures ParseTree and Compile.
type CompileOption func(*compiler)

func WithScriptLoader(l ScriptLoader) CompileOption {
	return func(c *compiler) { c.loadScript = l }
}

func WithLogger(log *zap.Logger) CompileOption {
	return func(c *compiler) {
		if log != nil {
			c.log = log
		}
	}
}

type nodeBuilder func(c *compiler, arg any) (Node, error)

// nodeRegistry is filled in init: its builders recurse back through named.
var nodeRegistry map[string]nodeBuilder

func init() {
	nodeRegistry = map[string]nodeBuilder{
		"selector": func(c *compiler, arg any) (Node, error) {
			children, err := c.children(arg)
			if err != nil {
				return nil, err
			}
			return Selector{Children: children}, nil
		},
		"sequence": func(c *compiler, arg any) (Node, error) {
			children, err := c.children(arg)
			if err != nil {
				return nil, err
			}
			return Sequence{Children: children}, nil
		},
		"inverter": func(c *compiler, arg any) (Node, error) {
			child, err := c.node(arg)
			if err != nil {
				return nil, err
			}
			return Inverter{Child: child}, nil
		},
		"condition": func(c *compiler, arg any) (Node, error) {
			p, err := c.predicate(arg)
			if err != nil {
				return nil, err
			}
			return Condition{Pred: p}, nil
		},
		"action": func(c *compiler, arg any) (Node, error) {
			a, err := parseAction(arg)
			if err != nil {
				return nil, err
			}
			return Action{Act: a}, nil
		},
		"succeed": func(*compiler, any) (Node, error) { return AlwaysSucceed{}, nil },
		"fail":    func(*compiler, any) (Node, error) { return AlwaysFail{}, nil },
	}
}

var predicateRegistry = map[string]func(arg any) (Predicate, error){
	"has_target":     func(any) (Predicate, error) { return HasTarget{}, nil },
	"target_visible": func(any) (Predicate, error) { return TargetVisible{}, nil },
	"is_at_home":     func(any) (Predicate, error) { return IsAtHome{}, nil },
	"too_far_from_home": func(any) (Predicate, error) {
		return TooFarFromHome{}, nil
	},
	"is_provoked":      func(any) (Predicate, error) { return IsProvoked{}, nil },
	"in_wander_radius": func(any) (Predicate, error) { return InWanderRadius{}, nil },
	"can_attack":       func(any) (Predicate, error) { return CanAttack{}, nil },
	"target_in_range": func(arg any) (Predicate, error) {
		r, ok := asFloat(arg)
		if !ok {
			return nil, fmt.Errorf("target_in_range wants a number, got %v", arg)
		}
		return TargetInRange{Range: r}, nil
	},
	"health_below": func(arg any) (Predicate, error) {
		v, ok := asFloat(arg)
		if !ok {
			return nil, fmt.Errorf("health_below wants a number, got %v", arg)
		}
		return HealthBelow{Threshold: v}, nil
	},
}

var actionRegistry = map[string]func(arg any) (component.NPCAction, error){
	"idle":        func(any) (component.NPCAction, error) { return component.ActIdle{}, nil },
	"wander":      func(any) (component.NPCAction, error) { return component.ActWander{}, nil },
	"chase":       func(any) (component.NPCAction, error) { return component.ActChase{}, nil },
	"attack":      func(any) (component.NPCAction, error) { return component.ActAttack{}, nil },
	"flee":        func(any) (component.NPCAction, error) { return component.ActFlee{}, nil },
	"return_home": func(any) (component.NPCAction, error) { return component.ActReturnHome{}, nil },
	"trade":       func(any) (component.NPCAction, error) { return component.ActTrade{}, nil },
	"patrol": func(arg any) (component.NPCAction, error) {
		if arg == nil {
			return component.ActPatrol{}, nil
		}
		list, ok := arg.([]any)
		if !ok {
			return nil, fmt.Errorf("patrol wants a list of points, got %v", arg)
		}
		points := make([]common.Vec2, 0, len(list))
		for _, item := range list {
			p, err := asPoint(item)
			if err != nil {
				return nil, err
			}
			points = append(points, p)
		}
		return component.ActPatrol{Waypoints: points}, nil
	},
	"move_to": func(arg any) (component.NPCAction, error) {
		p, err := asPoint(arg)
		if err != nil {
			return nil, err
		}
		return component.ActMoveTo{Dest: p}, nil
	},
}

// ParseTree decodes and compiles a YAML tree definition.
func ParseTree(data []byte, opts ...CompileOption) (*Tree, error) {
	var raw RawTree
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("behavior: parse tree: %w", err)
	}
	return Compile(raw, opts...)
}

// Compile turns a decoded tree definition into a Tree.
func Compile(raw RawTree, opts ...CompileOption) (*Tree, error) {
	c := &compiler{log: zap.NewNop(), scripts: map[string]*Script{}}
	for _, opt := range opts {
		opt(c)
	}
	if raw.Root == nil {
		return nil, fmt.Errorf("behavior: tree %q: missing root", raw.Name)
	}
	root, err := c.node(raw.Root)
	if err != nil {
		return nil, fmt.Errorf("behavior: tree %q: %w", raw.Name, err)
	}
	return NewTree(raw.Name, root), nil
}

func (c *compiler) node(v any) (Node, error) {
	switch t := v.(type) {
	case string:
		// bare "succeed" / "fail"
		return c.named(t, nil)
	case map[string]any:
		if len(t) != 1 {
			return nil, fmt.Errorf("node must have exactly one kind, got %s", keys(t))
		}
		for k, arg := range t {
			return c.named(k, arg)
		}
	}
	return nil, fmt.Errorf("unexpected node %v", v)
}

func (c *compiler) named(kind string, arg any) (Node, error) {
	build, ok := nodeRegistry[strings.TrimSpace(kind)]
	if !ok {
		return nil, fmt.Errorf("unknown node %q", kind)
	}
	return build(c, arg)
}

func (c *compiler) children(arg any) ([]Node, error) {
	list, ok := arg.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of children, got %v", arg)
	}
	out := make([]Node, 0, len(list))
	for i, item := range list {
		n, err := c.node(item)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (c *compiler) predicate(arg any) (Predicate, error) {
	var (
		name  string
		param any
	)
	switch t := arg.(type) {
	case string:
		name = t
	case map[string]any:
		if len(t) != 1 {
			return nil, fmt.Errorf("condition must name one predicate, got %s", keys(t))
		}
		for k, v := range t {
			name, param = k, v
		}
	default:
		return nil, fmt.Errorf("unexpected condition %v", arg)
	}
	name = strings.TrimSpace(name)
	if name == "script" {
		return c.script(param)
	}
	build, ok := predicateRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown condition %q", name)
	}
	return build(param)
}

func (c *compiler) script(arg any) (Predicate, error) {
	path, ok := arg.(string)
	if !ok || strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("script wants a path, got %v", arg)
	}
	if s, ok := c.scripts[path]; ok {
		return s, nil
	}
	if c.loadScript == nil {
		return nil, fmt.Errorf("script %q: no script loader configured", path)
	}
	src, err := c.loadScript(path)
	if err != nil {
		return nil, err
	}
	s, err := CompileScript(path, src, c.log)
	if err != nil {
		return nil, err
	}
	c.scripts[path] = s
	return s, nil
}

func parseAction(arg any) (component.NPCAction, error) {
	var (
		name  string
		param any
	)
	switch t := arg.(type) {
	case string:
		name = t
	case map[string]any:
		if len(t) != 1 {
			return nil, fmt.Errorf("action must name one behavior, got %s", keys(t))
		}
		for k, v := range t {
			name, param = k, v
		}
	default:
		return nil, fmt.Errorf("unexpected action %v", arg)
	}
	build, ok := actionRegistry[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", name)
	}
	return build(param)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	default:
		return 0, false
	}
}

func asPoint(v any) (common.Vec2, error) {
	switch t := v.(type) {
	case []any:
		if len(t) == 2 {
			x, okX := asFloat(t[0])
			y, okY := asFloat(t[1])
			if okX && okY {
				return common.V(x, y), nil
			}
		}
	case map[string]any:
		x, okX := asFloat(t["x"])
		y, okY := asFloat(t["y"])
		if okX && okY {
			return common.V(x, y), nil
		}
	}
	return common.Vec2{}, fmt.Errorf("expected a point [x, y], got %v", v)
}

func keys(m map[string]any) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
