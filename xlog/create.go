package xlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const logDirName = "logs"

var (
	logFiles   = make(map[string]*os.File)
	filesMutex sync.RWMutex
)

func CreateLogDir(baseDir string) error {
	if err := os.MkdirAll(filepath.Join(baseDir, logDirName), 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	return nil
}

// CreateLogFile opens <baseDir>/logs/<fileName> for appending. Opening the same
// name twice returns the already open file.
func CreateLogFile(baseDir, fileName string) (*os.File, error) {
	filesMutex.Lock()
	defer filesMutex.Unlock()
	if f, ok := logFiles[fileName]; ok {
		return f, nil
	}

	if err := CreateLogDir(baseDir); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filepath.Join(baseDir, logDirName, fileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	logFiles[fileName] = file
	return file, nil
}

// TeeToFile sends all subsequent log output to the named log file and to extra.
func TeeToFile(baseDir, fileName string, extra ...io.Writer) (*os.File, error) {
	file, err := CreateLogFile(baseDir, fileName)
	if err != nil {
		return nil, err
	}
	SetOutput(append([]io.Writer{file}, extra...)...)
	return file, nil
}

// CloseLogFiles flushes the global logger and closes every opened log file.
func CloseLogFiles() {
	Sync()

	filesMutex.Lock()
	defer filesMutex.Unlock()
	for name, file := range logFiles {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing log file %s: %v\n", name, err)
		}
	}
	clear(logFiles)
	SetOutput(os.Stderr)
}
