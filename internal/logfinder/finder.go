// Package logfinder locates the game client's log directory and current log
// file.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

// EnvLogDir is the environment variable name for specifying log directory.
const EnvLogDir = "CHATNOTIFY_LOGDIR"

// LatestLogName is the file the client writes the running session to.
const LatestLogName = "latest.log"

// Sentinel errors.
var (
	ErrLogDirNotFound = errors.New("log directory not found")
	ErrNoLogFiles     = errors.New("no log files found")
)

// DefaultLogDirs returns candidate client log directories in priority order
// for the current OS.
func DefaultLogDirs() []string {
	return defaultLogDirs(runtime.GOOS, os.Getenv)
}

func defaultLogDirs(goos string, getenv func(string) string) []string {
	home := getenv("HOME")
	if home == "" {
		home = getenv("USERPROFILE")
	}

	var dirs []string
	switch goos {
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" && home != "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		if appData != "" {
			dirs = append(dirs, filepath.Join(appData, ".minecraft", "logs"))
		}
	case "darwin":
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Application Support", "minecraft", "logs"))
		}
	default:
		if home != "" {
			dirs = append(dirs,
				filepath.Join(home, ".minecraft", "logs"),
				filepath.Join(home, ".var", "app", "com.mojang.Minecraft", ".minecraft", "logs"),
			)
		}
	}
	return dirs
}

// FindLogDir returns the client log directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. CHATNOTIFY_LOGDIR environment variable
//  3. Auto-detect from DefaultLogDirs()
//
// Returns ErrLogDirNotFound if no valid directory is found.
// The returned path has symlinks resolved for consistency.
func FindLogDir(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveAndValidateLogDir(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: specified directory is invalid or contains no log files", ErrLogDirNotFound)
	}

	if envDir := os.Getenv(EnvLogDir); envDir != "" {
		if resolved := resolveAndValidateLogDir(envDir); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to invalid directory", ErrLogDirNotFound, EnvLogDir)
	}

	for _, dir := range DefaultLogDirs() {
		if resolved := resolveAndValidateLogDir(dir); resolved != "" {
			return resolved, nil
		}
	}

	return "", ErrLogDirNotFound
}

// logCandidate holds a log file path and its cached modification time.
// This avoids race conditions where files are deleted between stat and sort.
type logCandidate struct {
	path    string
	modTime int64
}

// FindLatestLogFile returns the path of latest.log in dir when it exists,
// otherwise the most recently modified *.log file.
//
// Returns ErrNoLogFiles if no log files are found.
func FindLatestLogFile(dir string) (string, error) {
	latest := filepath.Join(dir, LatestLogName)
	if info, err := os.Lstat(latest); err == nil && info.Mode().IsRegular() {
		return latest, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		return "", fmt.Errorf("globbing log files: %w", err)
	}

	// Stat files once and cache results to avoid race conditions
	candidates := make([]logCandidate, 0, len(matches))
	for _, m := range matches {
		info, err := os.Lstat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, logCandidate{
			path:    m,
			modTime: info.ModTime().UnixNano(),
		})
	}

	if len(candidates) == 0 {
		return "", ErrNoLogFiles
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})

	return candidates[0].path, nil
}

// isValidLogDir reports whether dir exists and holds at least one log file.
func isValidLogDir(dir string) bool {
	return resolveAndValidateLogDir(dir) != ""
}

// resolveAndValidateLogDir resolves symlinks and validates the directory.
// Returns the resolved path if valid, empty string otherwise.
func resolveAndValidateLogDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	// Broken or looping symlinks are treated as invalid.
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return ""
	}

	matches, err := filepath.Glob(filepath.Join(resolved, "*.log"))
	if err != nil || len(matches) == 0 {
		return ""
	}

	return resolved
}
