package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// goleveldb tags every LOG line with the component that wrote it.
var levelLogTags = []string{"db@open", "journal@", "version@"}

// DetectEngine guesses the engine that wrote the store at path by looking at
// the files it left behind. A directory that only carries the files shared by
// all LSM engines (CURRENT, MANIFEST-*, *.log) is treated as RocksDB when it
// has no info LOG, the way rockyardkv writes it. A LOG that names neither
// engine is refused.
func DetectEngine(path string) (Engine, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrStoreNotFound, path)
		}
		return "", fmt.Errorf("failed to read store directory: %w", err)
	}

	var (
		options  []string
		manifest bool
		ldb      bool
		infoLog  bool
	)
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasPrefix(name, "MARKER.format-version"):
			return EnginePebble, nil
		case name == "KEYREGISTRY", strings.HasSuffix(name, ".vlog"):
			return EngineBadger, nil
		case strings.HasPrefix(name, "OPTIONS-"):
			options = append(options, name)
		case strings.HasPrefix(name, "MANIFEST-"):
			manifest = true
		case strings.HasSuffix(name, ".ldb"):
			ldb = true
		case name == "LOG":
			infoLog = true
		}
	}

	for _, name := range options {
		data, err := os.ReadFile(filepath.Join(path, name))
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(string(data), "pebble_version"):
			return EnginePebble, nil
		case strings.Contains(string(data), "rocksdb_version"):
			return EngineRocksDB, nil
		}
	}

	if ldb {
		return EngineLevelDB, nil
	}
	if infoLog {
		return detectFromLog(path)
	}
	if manifest || len(options) > 0 {
		return EngineRocksDB, nil
	}
	return "", fmt.Errorf("%w: no engine files in %s", ErrUnknownEngine, path)
}

func detectFromLog(path string) (Engine, error) {
	data, err := os.ReadFile(filepath.Join(path, "LOG"))
	if err != nil {
		return "", fmt.Errorf("failed to read info log: %w", err)
	}
	text := string(data)
	if strings.Contains(text, "RocksDB version") {
		return EngineRocksDB, nil
	}
	for _, tag := range levelLogTags {
		if strings.Contains(text, tag) {
			return EngineLevelDB, nil
		}
	}
	return "", fmt.Errorf("%w: unrecognized info log in %s, pass --engine", ErrUnknownEngine, path)
}
