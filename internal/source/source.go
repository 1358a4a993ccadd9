package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Kind identifies the container format of a source.
type Kind string

const (
	KindZip       Kind = "zip"
	KindTar       Kind = "tar"
	KindTarGzip   Kind = "tgz"
	KindTarZstd   Kind = "tzst"
	KindDirectory Kind = "directory"
)

var (
	// ErrArchiveRead marks a container that could not be opened or parsed.
	ErrArchiveRead = errors.New("archive read error")
	// ErrUnsupported marks a path whose container format is not recognized.
	ErrUnsupported = errors.New("unsupported source")
	// ErrMemberRead marks a single member that could not be read.
	ErrMemberRead = errors.New("member read error")
)

// Member is one regular file inside a source.
type Member struct {
	Path    string
	Size    int64
	ModTime time.Time

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the member content.
func (m Member) Open() (io.ReadCloser, error) {
	if m.open == nil {
		return nil, fmt.Errorf("%w: %s: no content available", ErrMemberRead, m.Path)
	}
	return m.open()
}

// WalkFunc receives each member. Returning an error stops the walk and the
// error is returned from Walk unchanged.
type WalkFunc func(Member) error

// Source is a uniform view over an archive or a directory.
type Source interface {
	Path() string
	Kind() Kind
	Walk(fn WalkFunc) error
	Close() error
}

// DetectKind inspects the path on disk and its name to pick a container kind.
func DetectKind(path string) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %w", ErrArchiveRead, path, err)
	}
	if info.IsDir() {
		return KindDirectory, nil
	}
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return KindZip, nil
	case strings.HasSuffix(lower, ".tgz"), strings.HasSuffix(lower, ".tar.gz"):
		return KindTarGzip, nil
	case strings.HasSuffix(lower, ".tzst"), strings.HasSuffix(lower, ".tar.zst"):
		return KindTarZstd, nil
	case strings.HasSuffix(lower, ".tar"):
		return KindTar, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// Open detects the container kind and returns a ready Source. Zip central
// directories are parsed eagerly so a corrupt zip fails here with
// ErrArchiveRead; tar streams are validated lazily during Walk.
func Open(path string) (Source, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindDirectory:
		return openDirectory(path)
	case KindZip:
		return openZip(path)
	default:
		return openTar(path, kind)
	}
}

// Collect walks src and returns every member in container order. Members
// returned this way can only be opened for zip and directory sources.
func Collect(src Source) ([]Member, error) {
	var members []Member
	err := src.Walk(func(m Member) error {
		members = append(members, m)
		return nil
	})
	return members, err
}

// NormalizePath converts a container-native member name to the forward-slash,
// root-relative, NFC-normalized form used everywhere else.
func NormalizePath(name string) string {
	p := strings.ReplaceAll(name, `\`, "/")
	for {
		switch {
		case strings.HasPrefix(p, "./"):
			p = p[2:]
			continue
		case strings.HasPrefix(p, "/"):
			p = p[1:]
			continue
		}
		break
	}
	return norm.NFC.String(p)
}
