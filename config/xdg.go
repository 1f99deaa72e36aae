package config

import (
	"os"
	"path/filepath"

	"github.com/gy212/cheekai-core/errors"
)

// XDGBaseDirs provides XDG Base Directory paths
type XDGBaseDirs struct {
	ConfigHome string
	DataHome   string
	CacheHome  string
}

// GetXDGBaseDirs returns the XDG Base Directory paths
func GetXDGBaseDirs() XDGBaseDirs {
	return XDGBaseDirs{
		ConfigHome: getXDGConfigHome(),
		DataHome:   getXDGDataHome(),
		CacheHome:  getXDGCacheHome(),
	}
}

// GetXDGBaseDirsWithEnvelope returns the XDG Base Directory paths with structured error reporting.
// Returns an error envelope if HOME environment variable is not set.
func GetXDGBaseDirsWithEnvelope(correlationID string) (XDGBaseDirs, error) {
	home := os.Getenv("HOME")
	if home == "" {
		envelope := errors.NewErrorEnvelope("CONFIG_XDG_ERROR", "HOME environment variable not set")
		envelope = errors.SafeWithSeverity(envelope, errors.SeverityHigh)
		envelope = envelope.WithCorrelationID(correlationID)
		envelope = errors.SafeWithContext(envelope, map[string]interface{}{
			"component":  "config",
			"operation":  "get_xdg_dirs",
			"error_type": "missing_home_env",
		})
		return XDGBaseDirs{}, envelope
	}

	return GetXDGBaseDirs(), nil
}

func getXDGConfigHome() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return configHome
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config")
	}
	return ""
}

func getXDGDataHome() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return dataHome
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share")
	}
	return ""
}

func getXDGCacheHome() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return cacheHome
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".cache")
	}
	return ""
}

// GetAppConfigDir returns the config directory for a given app name
// Uses XDG Base Directory specification: $XDG_CONFIG_HOME/appName or ~/.config/appName
func GetAppConfigDir(appName string) string {
	xdg := GetXDGBaseDirs()
	return filepath.Join(xdg.ConfigHome, appName)
}

// GetAppDataDir returns the data directory for a given app name
// Uses XDG Base Directory specification: $XDG_DATA_HOME/appName or ~/.local/share/appName
func GetAppDataDir(appName string) string {
	xdg := GetXDGBaseDirs()
	return filepath.Join(xdg.DataHome, appName)
}

// GetAppCacheDir returns the cache directory for a given app name
// Uses XDG Base Directory specification: $XDG_CACHE_HOME/appName or ~/.cache/appName
func GetAppCacheDir(appName string) string {
	xdg := GetXDGBaseDirs()
	return filepath.Join(xdg.CacheHome, appName)
}

// GetCheekAIConfigDir returns the CheekAI ecosystem config directory
// This is a convenience function for CheekAI ecosystem tools
// Returns: ~/.config/cheekai (or $XDG_CONFIG_HOME/cheekai)
func GetCheekAIConfigDir() string {
	return GetAppConfigDir("cheekai")
}

// GetCheekAIDataDir returns the CheekAI ecosystem data directory
// Returns: ~/.local/share/cheekai (or $XDG_DATA_HOME/cheekai)
func GetCheekAIDataDir() string {
	return GetAppDataDir("cheekai")
}

// GetCheekAICacheDir returns the CheekAI ecosystem cache directory
// Returns: ~/.cache/cheekai (or $XDG_CACHE_HOME/cheekai)
func GetCheekAICacheDir() string {
	return GetAppCacheDir("cheekai")
}

// Deprecated: Use GetAppConfigDir("your-app") or GetCheekAIConfigDir() for CheekAI ecosystem
func GetGocheekaiConfigDir() string {
	return GetCheekAIConfigDir()
}

// Deprecated: Use GetAppDataDir("your-app") or GetCheekAIDataDir() for CheekAI ecosystem
func GetGocheekaiDataDir() string {
	return GetCheekAIDataDir()
}

// Deprecated: Use GetAppCacheDir("your-app") or GetCheekAICacheDir() for CheekAI ecosystem
func GetGocheekaiCacheDir() string {
	return GetCheekAICacheDir()
}
