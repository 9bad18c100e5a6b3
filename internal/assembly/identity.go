// Package assembly parses and formats assembly identities, the
// qualification suffix of runtime type names:
//
//	System.Private.CoreLib, Version=8.0.0.0, Culture=neutral, PublicKeyToken=7cec85d7bea7798e
package assembly

import (
	"fmt"
	"strconv"
	"strings"

	semver "github.com/Masterminds/semver/v3"
)

// Version is a four-part assembly version. The first three parts are kept
// as a semantic version so they can be checked against constraints; the
// revision is carried alongside.
type Version struct {
	sv       *semver.Version
	revision uint64
}

// ParseVersion parses "major[.minor[.build[.revision]]]".
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || len(parts) > 4 || parts[0] == "" {
		return Version{}, fmt.Errorf("invalid assembly version %q", s)
	}
	for len(parts) < 4 {
		parts = append(parts, "0")
	}
	sv, err := semver.NewVersion(strings.Join(parts[:3], "."))
	if err != nil {
		return Version{}, fmt.Errorf("invalid assembly version %q: %w", s, err)
	}
	revision, err := strconv.ParseUint(parts[3], 10, 16)
	if err != nil {
		return Version{}, fmt.Errorf("invalid assembly version %q: revision: %w", s, err)
	}
	return Version{sv: sv, revision: revision}, nil
}

// MustParseVersion is ParseVersion for literals known to be valid.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) IsZero() bool { return v.sv == nil }

func (v Version) String() string {
	if v.sv == nil {
		return "0.0.0.0"
	}
	return fmt.Sprintf("%d.%d.%d.%d", v.sv.Major(), v.sv.Minor(), v.sv.Patch(), v.revision)
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(other Version) int {
	a, b := v.semver(), other.semver()
	if c := a.Compare(b); c != 0 {
		return c
	}
	switch {
	case v.revision < other.revision:
		return -1
	case v.revision > other.revision:
		return 1
	}
	return 0
}

// Satisfies checks the major.minor.build part against a constraint.
func (v Version) Satisfies(c *semver.Constraints) bool {
	if c == nil {
		return true
	}
	return c.Check(v.semver())
}

func (v Version) semver() *semver.Version {
	if v.sv == nil {
		return semver.New(0, 0, 0, "", "")
	}
	return v.sv
}

// ParseConstraint parses a version constraint such as ">= 8.0, < 9".
// An empty string means no constraint.
func ParseConstraint(s string) (*semver.Constraints, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", s, err)
	}
	return c, nil
}

// Identity is the display name of an assembly.
type Identity struct {
	Name           string
	Version        Version
	Culture        string
	PublicKeyToken string
}

// Parse parses an assembly display name. Unknown properties are ignored.
func Parse(s string) (Identity, error) {
	fields := strings.Split(s, ",")
	id := Identity{Name: strings.TrimSpace(fields[0])}
	if id.Name == "" {
		return Identity{}, fmt.Errorf("invalid assembly name %q: missing name", s)
	}
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return Identity{}, fmt.Errorf("invalid assembly name %q: property %q", s, strings.TrimSpace(field))
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch strings.ToLower(key) {
		case "version":
			v, err := ParseVersion(value)
			if err != nil {
				return Identity{}, fmt.Errorf("invalid assembly name %q: %w", s, err)
			}
			id.Version = v
		case "culture":
			id.Culture = value
		case "publickeytoken":
			if !strings.EqualFold(value, "null") {
				id.PublicKeyToken = strings.ToLower(value)
			}
		}
	}
	return id, nil
}

func (id Identity) String() string {
	var sb strings.Builder
	sb.WriteString(id.Name)
	if !id.Version.IsZero() {
		sb.WriteString(", Version=")
		sb.WriteString(id.Version.String())
	}
	if id.Culture != "" {
		sb.WriteString(", Culture=")
		sb.WriteString(id.Culture)
	}
	if id.Culture != "" || id.PublicKeyToken != "" {
		token := id.PublicKeyToken
		if token == "" {
			token = "null"
		}
		sb.WriteString(", PublicKeyToken=")
		sb.WriteString(token)
	}
	return sb.String()
}
