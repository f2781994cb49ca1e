package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// PathResolver finds data files whether codeflow runs from a checkout, an
// installed binary or a symlink to one.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver creates a resolver rooted at the running executable.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      getConfigDir(homeDir),
	}
	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", execPath, pr.configDir)
	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux", "darwin":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "codeflow")
		}
		return filepath.Join(homeDir, ".config", "codeflow")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "codeflow")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "codeflow")
	default:
		return filepath.Join(homeDir, ".codeflow")
	}
}

// ResolveDataFile finds a data file. Absolute paths and paths that exist
// relative to the working directory win; otherwise the path is tried
// relative to the executable, its parent, and the config directory, and
// finally by base name in each of their data/ directories.
// The first candidate is returned if none exists.
func (pr *PathResolver) ResolveDataFile(path string) string {
	candidates := pr.dataFileCandidates(path)
	for _, c := range candidates {
		if FileExists(c) {
			log.Debugf("Resolved %s to %s", path, c)
			return c
		}
	}
	log.Debugf("No candidate for %s exists", path)
	return candidates[0]
}

func (pr *PathResolver) dataFileCandidates(path string) []string {
	if filepath.IsAbs(path) {
		return []string{path}
	}
	candidates := []string{path}
	if cwd, err := os.Getwd(); err == nil {
		candidates[0] = filepath.Join(cwd, path)
	}

	roots := []string{pr.executableDir, filepath.Dir(pr.executableDir), pr.configDir}
	for _, root := range roots {
		candidates = append(candidates, filepath.Join(root, path))
	}
	base := filepath.Base(path)
	for _, root := range roots {
		candidates = append(candidates, filepath.Join(root, "data", base))
	}
	return candidates
}

// GetExecutableDir returns the directory containing the executable
func (pr *PathResolver) GetExecutableDir() string {
	return pr.executableDir
}

// GetConfigDir returns the config directory
func (pr *PathResolver) GetConfigDir() string {
	return pr.configDir
}

// GetRuntimeInfo returns debug information about the current runtime environment
func (pr *PathResolver) GetRuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()
	info := map[string]string{
		"executable_path": pr.executablePath,
		"executable_dir":  pr.executableDir,
		"current_dir":     cwd,
		"home_dir":        pr.homeDir,
		"config_dir":      pr.configDir,
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
	}
	for _, envVar := range []string{"XDG_CONFIG_HOME", "APPDATA"} {
		if value := os.Getenv(envVar); value != "" {
			info["env_"+strings.ToLower(envVar)] = value
		}
	}
	return info
}
