package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"errday/pkg/utils"
)

const (
	AppName  = "errday"
	DataFile = "tasks.json"
)

// Backend is the stable storage behind a Store. The full collection is the
// unit of persistence: Save always receives every task.
type Backend interface {
	Load() ([]Task, error)
	Save(tasks []Task) error
	Location() string
}

// DefaultDataPath resolves the per-user data file, falling back to the
// working directory when the platform data directory is unavailable
func DefaultDataPath() string {
	path, err := xdg.DataFile(filepath.Join(AppName, DataFile))
	if err != nil {
		utils.Log("Could not resolve data directory, using %s: %v", DataFile, err)
		return DataFile
	}
	return path
}

// ExpandPath expands a leading tilde to the home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return homeDir + path[1:], nil
}

// FileBackend stores the collection as pretty-printed JSON
type FileBackend struct {
	path string
}

// NewFileBackend prepares a JSON file backend, creating its directory
func NewFileBackend(path string) (*FileBackend, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	// Create the directory structure if it doesn't exist
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	return &FileBackend{path: path}, nil
}

func (b *FileBackend) Location() string {
	return b.path
}

// Load reads the collection. A missing file is an empty collection.
func (b *FileBackend) Load() ([]Task, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse %s: %w", b.path, err)
	}
	return tasks, nil
}

// Save writes the collection through a temp file so a failed write never
// truncates the previous state
func (b *FileBackend) Save(tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
