package ports

import "io"

// FileStore holds attachment bytes outside the database.
type FileStore interface {
	// Save writes content under a generated storage name and returns it.
	Save(originalName string, content io.Reader) (string, error)
	// Open returns a reader over a stored file.
	Open(fileName string) (io.ReadCloser, error)
	// Remove deletes a stored file. Removing a missing file is not an error.
	Remove(fileName string) error
}
