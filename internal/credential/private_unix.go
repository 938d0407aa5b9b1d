//go:build unix

package credential

import (
	"fmt"
	"os"
	"syscall"
)

// checkPrivate accepts only files that belong to the current user and that
// nobody else can read or write.
func checkPrivate(info os.FileInfo) error {
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return fmt.Errorf("mode %#o is open to other users", perm)
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok && int(st.Uid) != os.Getuid() {
		return fmt.Errorf("owned by uid %d", st.Uid)
	}
	return nil
}
