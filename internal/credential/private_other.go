//go:build !unix

package credential

import "os"

// Windows ACLs are not expressed in FileMode; the directory under the user's
// profile is the only guard there.
func checkPrivate(os.FileInfo) error { return nil }
