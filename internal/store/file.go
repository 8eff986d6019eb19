package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps the message in a single text file. The file's absence is
// the Empty state. Writes go to a temp file in the same directory followed
// by a rename, so readers never observe a truncated message.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. The file is not
// created until the first Write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Write implements Store.
func (s *FileStore) Write(msg Message) error {
	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, ".daybreak-message-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(msg.Text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write message: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	// The generation time travels as the file's mtime.
	if !msg.GeneratedAt.IsZero() {
		if err := os.Chtimes(tmpName, msg.GeneratedAt, msg.GeneratedAt); err != nil {
			os.Remove(tmpName)
			return fmt.Errorf("set message time: %w", err)
		}
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace message file: %w", err)
	}
	return nil
}

// Read implements Store.
func (s *FileStore) Read() (Message, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Message{}, ErrEmpty
	}
	if err != nil {
		return Message{}, fmt.Errorf("stat message file: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Message{}, ErrEmpty
	}
	if err != nil {
		return Message{}, fmt.Errorf("read message file: %w", err)
	}

	return Message{Text: string(data), GeneratedAt: info.ModTime()}, nil
}
