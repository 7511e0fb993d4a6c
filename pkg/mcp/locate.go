package mcp

import (
	"os"
	"path/filepath"
)

const (
	appDir     = "Claude"
	configFile = "claude_desktop_config.json"
)

// ConfigPath returns where the desktop app reads its MCP configuration
func ConfigPath(goos, home string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appDir, configFile)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDir, configFile)
		}
		return filepath.Join(home, "AppData", "Roaming", appDir, configFile)
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, appDir, configFile)
		}
		return filepath.Join(home, ".config", appDir, configFile)
	}
}

// LogDir returns where the desktop app writes MCP server logs
func LogDir(goos, home string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", appDir)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDir, "logs")
		}
		return filepath.Join(home, "AppData", "Roaming", appDir, "logs")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, appDir, "logs")
		}
		return filepath.Join(home, ".config", appDir, "logs")
	}
}
