package discovery

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"

	"takeoutscout/internal/classify"
	"takeoutscout/internal/textutil"
)

const identitySuffixLen = 12

// ResolvePath returns the absolute, symlink-resolved form of path. Paths that
// do not exist resolve to their cleaned absolute form.
func ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// Identity derives the stable document identity for a source path.
func Identity(path string) (string, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return "", err
	}
	return identityFor(resolved), nil
}

// identityFor depends only on the path string so a source that has since
// been moved or removed keeps the identity it was saved under. Archive
// extensions are dropped; any other name, such as a directory called
// "Takeout.old", is kept whole.
func identityFor(resolved string) string {
	sum := md5.Sum([]byte(resolved))
	suffix := hex.EncodeToString(sum[:])[:identitySuffixLen]

	base := filepath.Base(resolved)
	if classify.IsArchiveName(base) {
		base = classify.ArchiveStem(base)
	}
	return textutil.SanitizeIdentifier(base) + "_" + suffix
}

func documentName(identity string) string {
	return identity + ".json"
}
