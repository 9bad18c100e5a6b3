//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package platform

// HostArchitecture falls back to the process architecture where the kernel
// cannot be asked.
func HostArchitecture() (Architecture, error) {
	return ProcessArchitecture()
}
