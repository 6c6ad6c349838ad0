// Package directory provisions the storage root of a website and exposes it
// under well-known tags.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
)

// DirMode is applied explicitly after creation so the process umask has no effect.
const DirMode os.FileMode = 0o777

var (
	ErrCreateDirectory = errors.New("failed to create website directory")
	ErrEmptySlug       = errors.New("website has no directory slug")
)

// subdirs are created below every website root, keyed by their tag.
var subdirs = map[string]string{
	constants.PathMedia:  "media",
	constants.PathCache:  "cache",
	constants.PathViews:  "views",
	constants.PathConfig: "config",
}

type Directory struct {
	fs   afero.Fs
	base string
}

func New(fs afero.Fs, base string) *Directory {
	return &Directory{fs: fs, base: filepath.Clean(base)}
}

// NewOS returns a Directory on the host filesystem.
func NewOS(base string) *Directory {
	return New(afero.NewOsFs(), base)
}

// Path returns the storage root of website.
func (d *Directory) Path(website *model.Website) string {
	return filepath.Join(d.base, website.Slug)
}

// Register creates the storage root of website when missing and registers it
// and its subdirectories into paths. Registering twice changes nothing.
func (d *Directory) Register(ctx context.Context, website *model.Website, paths *Paths) error {
	if website.Slug == "" {
		return ErrEmptySlug
	}

	root := d.Path(website)

	err := d.ensure(root)
	if err != nil {
		return err
	}

	roots := map[string]string{constants.PathRoot: root}

	for tag, name := range subdirs {
		dir := filepath.Join(root, name)

		err = d.ensure(dir)
		if err != nil {
			return err
		}

		roots[tag] = dir
	}

	for tag, path := range roots {
		paths.RegisterRoot(tag, path)
	}

	log.Debug(ctx, "Registered website directories", slog.String("root", root))

	return nil
}

func (d *Directory) ensure(dir string) error {
	info, err := d.fs.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	err = d.fs.MkdirAll(dir, DirMode)
	if err != nil {
		return errs.Wrap(ErrCreateDirectory, err)
	}

	err = d.fs.Chmod(dir, DirMode)
	if err != nil {
		return errs.Wrap(ErrCreateDirectory, err)
	}

	return nil
}
