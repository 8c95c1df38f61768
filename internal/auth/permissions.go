package auth

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Permissions maps role -> []permission
type Permissions map[string][]string

type permissionsFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPermissions loads a permissions.yml file and returns a role->permissions map.
func LoadPermissions(path string) (Permissions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf permissionsFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, err
	}
	return Permissions(pf.Roles), nil
}

// DefaultPermissions is used when no permissions file is configured.
// All staff can read clinical lists; administrators additionally
// manage the staff roster.
func DefaultPermissions() Permissions {
	clinical := []string{
		"patient:view", "patient:manage",
		"consultation:view", "consultation:manage",
		"discharge:view", "discharge:process",
		"appointment:view", "appointment:manage",
	}
	return Permissions{
		"doctor":        clinical,
		"nurse":         clinical,
		"administrator": append([]string{"user:view", "user:manage"}, clinical...),
	}
}
