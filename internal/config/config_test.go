package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty image name",
			mutate:  func(c *Config) { c.Image.FileName = "" },
			wantErr: "image file name cannot be empty",
		},
		{
			name:    "image name with directory",
			mutate:  func(c *Config) { c.Image.FileName = filepath.Join("sub", "overlay.png") },
			wantErr: "must not contain a directory",
		},
		{
			name:    "missing class",
			mutate:  func(c *Config) { c.Classes.Control = "" },
			wantErr: "window class names cannot be empty",
		},
		{
			name:    "same class twice",
			mutate:  func(c *Config) { c.Classes.Control = c.Classes.Overlay },
			wantErr: "must differ",
		},
		{
			name:    "negative control height",
			mutate:  func(c *Config) { c.Control.Height = -1 },
			wantErr: "control window size must be positive",
		},
		{
			name:    "empty DSN",
			mutate:  func(c *Config) { c.Diagnostics.DSN = "" },
			wantErr: "diagnostics DSN cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestImagePathDefaultsToExecutableDir(t *testing.T) {
	cfg := Default()

	path, err := cfg.ImagePath()
	if err != nil {
		t.Fatalf("ImagePath() error: %v", err)
	}

	if filepath.Base(path) != "overlay.png" {
		t.Errorf("ImagePath() = %s, want file overlay.png", path)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("ImagePath() = %s, want an absolute path", path)
	}
}

func TestString(t *testing.T) {
	s := Default().String()
	for _, want := range []string{"overlay.png", "OverlayWindowClass", "ControlWindowClass", "300x150"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}
