package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem provides the filesystem operations required to inspect and remove working areas.
type FileSystem interface {
	Lstat(path string) (fs.FileInfo, error)
	RemoveAll(path string) error
	Chmod(path string, mode fs.FileMode) error
	Abs(path string) (string, error)
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Lstat retrieves file metadata without following symbolic links.
func (OSFileSystem) Lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

// RemoveAll removes a path and any children it contains.
func (OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Chmod changes the mode of a path.
func (OSFileSystem) Chmod(path string, mode fs.FileMode) error {
	return os.Chmod(path, mode)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}
