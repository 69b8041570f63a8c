//go:build linux

package health

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SystemResetter reboots the machine through the kernel. The process
// needs CAP_SYS_BOOT. On success Reset does not return.
type SystemResetter struct{}

// Reset syncs filesystems and requests an immediate restart.
func (SystemResetter) Reset() error {
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}
