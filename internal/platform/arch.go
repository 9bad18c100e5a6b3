// Package platform classifies the machine architecture a module targets.
package platform

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/funvibe/gneedle/internal/config"
)

// Architecture is the target machine of a module.
type Architecture int

const (
	I386 Architecture = iota
	AMD64
	IA64
	ARM
	ARM64
)

var architectureNames = map[Architecture]string{
	I386:  "i386",
	AMD64: "amd64",
	IA64:  "ia64",
	ARM:   "arm",
	ARM64: "arm64",
}

func (a Architecture) String() string {
	if name, ok := architectureNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Architecture(%d)", int(a))
}

// Valid reports whether a is one of the known architectures.
func (a Architecture) Valid() bool {
	_, ok := architectureNames[a]
	return ok
}

// OutOfRangeError reports a configuration value outside its known set.
type OutOfRangeError struct {
	Setting string
	Value   string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf(config.OutOfRange, e.Setting, e.Value)
}

func NewOutOfRangeError(setting, value string) *OutOfRangeError {
	return &OutOfRangeError{Setting: setting, Value: value}
}

// ParseArchitecture accepts Go and machine spellings ("amd64", "x86_64",
// "aarch64", ...).
func ParseArchitecture(s string) (Architecture, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "386", "i386", "i486", "i586", "i686", "x86":
		return I386, nil
	case "amd64", "x86_64", "x64":
		return AMD64, nil
	case "ia64":
		return IA64, nil
	case "arm", "armv6l", "armv7l", "armv7":
		return ARM, nil
	case "arm64", "aarch64", "armv8", "armv8l":
		return ARM64, nil
	}
	return 0, NewOutOfRangeError("architecture", s)
}

// ProcessArchitecture is the architecture this process was built for.
func ProcessArchitecture() (Architecture, error) {
	arch, err := ParseArchitecture(runtime.GOARCH)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ArchitectureNotSupported, err)
	}
	return arch, nil
}
