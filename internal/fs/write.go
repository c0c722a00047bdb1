package fs

import (
	"os"
)

// DefaultFileMode is used when the permissions of the file being replaced
// cannot be determined.
const DefaultFileMode os.FileMode = 0o644

// stat is a variable for os.Stat to allow mocking in tests.
var stat = os.Stat

// RewriteFile replaces the contents of an existing file in a single write,
// keeping its permission bits.
func RewriteFile(path string, data []byte) error {
	mode := DefaultFileMode
	if info, err := stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
