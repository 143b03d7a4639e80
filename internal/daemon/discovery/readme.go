package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/openclaw/dashd/errors"
)

// readmeNames are checked in order when loading a skill README.
var readmeNames = []string{"README.md", "README", "readme.md", "README.txt"}

// SkillReadme loads the full README text for one skill on demand. The base
// scan only captures the first line; this is the lazy path behind the REST
// endpoint.
func SkillReadme(workspaceRoot, skillsRoot, name string) (string, error) {
	// Reject traversal in the client-supplied name.
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid skill name")
	}

	dir := filepath.Join(workspaceRoot, skillsRoot, name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", errors.SkillNotFound(name)
	}

	for _, candidate := range readmeNames {
		data, err := os.ReadFile(filepath.Join(dir, candidate))
		if err == nil {
			return string(data), nil
		}
	}
	return "", errors.SkillNotFound(name).WithDetail("reason", "no readme")
}
