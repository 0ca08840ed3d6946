package fs

import (
	"os"
	"path/filepath"

	"github.com/rangeflow-io/rangeflow/io/fs/file"
)

type LocalFs struct{}

func NewLocalFs() *LocalFs {
	return &LocalFs{}
}

func (l *LocalFs) OpenFile(path string) (file.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return file.NewLocalFile(f), nil
}

func (l *LocalFs) CreateFile(path string) (file.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return file.NewLocalFile(f), nil
}

func (l *LocalFs) List(prefix string) ([]FileEntry, error) {
	var entries []FileEntry
	err := filepath.Walk(prefix, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			entries = append(entries, FileEntry{Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (l *LocalFs) Exist(path string) (bool, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *LocalFs) DeleteFile(path string) error {
	return os.Remove(path)
}
