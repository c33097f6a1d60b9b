package prefabs

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml trees/*.yaml
var PrefabsFS embed.FS

// Dir is the on-disk prefab directory consulted before the embedded copy,
// so edited files win over what was compiled in.
var Dir = "prefabs"

// LoadScript reads a tengo script named "near.tengo", "scripts/near.tengo"
// or "prefabs/scripts/near.tengo".
func LoadScript(name string) ([]byte, error) {
	return read(ScriptsFS, scriptPath(name))
}

// Load reads a prefab file relative to the prefab root.
func Load(name string) ([]byte, error) {
	return read(PrefabsFS, relPath(name))
}

func read(embedded embed.FS, rel string) ([]byte, error) {
	if data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(rel))); err == nil {
		return data, nil
	}
	return embedded.ReadFile(rel)
}

// relPath makes name relative to the prefab root.
func relPath(name string) string {
	return strings.TrimPrefix(filepath.ToSlash(name), "prefabs/")
}

func scriptPath(name string) string {
	return "scripts/" + strings.TrimPrefix(relPath(name), "scripts/")
}
