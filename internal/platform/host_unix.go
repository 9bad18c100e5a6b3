//go:build linux || darwin || freebsd || netbsd || openbsd

package platform

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/funvibe/gneedle/internal/config"
)

// HostArchitecture asks the kernel for the machine type, which differs from
// ProcessArchitecture when the process runs under emulation.
func HostArchitecture() (Architecture, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ProcessArchitecture()
	}
	arch, err := ParseArchitecture(unix.ByteSliceToString(uts.Machine[:]))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ArchitectureNotSupported, err)
	}
	return arch, nil
}
