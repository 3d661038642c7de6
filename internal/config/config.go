package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration
type Config struct {
	// Overlay image configuration
	Image ImageConfig

	// Window class configuration
	Classes ClassConfig

	// Control window configuration
	Control ControlConfig

	// Diagnostics configuration
	Diagnostics DiagnosticsConfig
}

// ImageConfig holds overlay image configuration
type ImageConfig struct {
	FileName string // Image file looked up next to the executable
	Dir      string // Empty means the executable's directory
}

// ClassConfig holds the platform window class names
type ClassConfig struct {
	Overlay string
	Control string
}

// ControlConfig holds control window configuration
type ControlConfig struct {
	Title  string
	Width  int
	Height int
}

// DiagnosticsConfig holds the diagnostic store configuration
type DiagnosticsConfig struct {
	DSN string // SQLite DSN, in-memory so nothing outlives the run
}

// Default returns a Config with the fixed values the program runs with
func Default() *Config {
	return &Config{
		Image: ImageConfig{
			FileName: "overlay.png",
			Dir:      "",
		},
		Classes: ClassConfig{
			Overlay: "OverlayWindowClass",
			Control: "ControlWindowClass",
		},
		Control: ControlConfig{
			Title:  "Overlay Control",
			Width:  300,
			Height: 150,
		},
		Diagnostics: DiagnosticsConfig{
			DSN: "file::memory:",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Image.FileName == "" {
		return fmt.Errorf("image file name cannot be empty")
	}

	if filepath.Base(c.Image.FileName) != c.Image.FileName {
		return fmt.Errorf("image file name must not contain a directory, got %q", c.Image.FileName)
	}

	if c.Classes.Overlay == "" || c.Classes.Control == "" {
		return fmt.Errorf("window class names cannot be empty")
	}

	if c.Classes.Overlay == c.Classes.Control {
		return fmt.Errorf("overlay and control window classes must differ, both are %q", c.Classes.Overlay)
	}

	if c.Control.Width < 1 || c.Control.Height < 1 {
		return fmt.Errorf("control window size must be positive, got %dx%d",
			c.Control.Width, c.Control.Height)
	}

	if c.Diagnostics.DSN == "" {
		return fmt.Errorf("diagnostics DSN cannot be empty")
	}

	return nil
}

// ImageDir returns the directory the overlay image is read from
func (c *Config) ImageDir() (string, error) {
	if c.Image.Dir != "" {
		return c.Image.Dir, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}

	return filepath.Dir(exe), nil
}

// ImagePath returns the full path of the overlay image
func (c *Config) ImagePath() (string, error) {
	dir, err := c.ImageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Image.FileName), nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Image:
    File: %s
    Dir: %s
  Classes:
    Overlay: %s
    Control: %s
  Control:
    Title: %s
    Size: %dx%d
  Diagnostics:
    DSN: %s`,
		c.Image.FileName,
		c.Image.Dir,
		c.Classes.Overlay,
		c.Classes.Control,
		c.Control.Title,
		c.Control.Width,
		c.Control.Height,
		c.Diagnostics.DSN,
	)
}
