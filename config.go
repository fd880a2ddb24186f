package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"gallery-reader/internal/library"
	"gallery-reader/internal/reader"
)

// Window size constants
const (
	defaultWidth  = 1024
	defaultHeight = 768
	minWidth      = 400
	minHeight     = 300
)

const appName = "gallery-reader"

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	Path     string
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

type Config struct {
	WindowWidth          int                 `yaml:"window_width"`
	WindowHeight         int                 `yaml:"window_height"`
	Fullscreen           bool                `yaml:"fullscreen"`
	RightToLeft          bool                `yaml:"right_to_left"`
	AspectRatioThreshold float64             `yaml:"aspect_ratio_threshold"`
	FontSize             float64             `yaml:"font_size"`
	CacheSize            int                 `yaml:"cache_size"`
	DecodeWorkers        int                 `yaml:"decode_workers"`
	PreloadCount         int                 `yaml:"preload_count"`
	ThumbnailWidth       int                 `yaml:"thumbnail_width"`
	PrefetchMargin       float64             `yaml:"prefetch_margin"`
	ProgressDebounceMs   int                 `yaml:"progress_debounce_ms"`
	ControlsHideMs       int                 `yaml:"controls_hide_ms"`
	SortMethod           string              `yaml:"sort_method"`
	Ignore               []string            `yaml:"ignore"`
	Keybindings          map[string][]string `yaml:"keybindings"`
	Mousebindings        map[string][]string `yaml:"mousebindings"`
	Mouse                MouseSettings       `yaml:"mouse"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		WindowWidth:          defaultWidth,
		WindowHeight:         defaultHeight,
		AspectRatioThreshold: 1.5,
		FontSize:             20.0,
		CacheSize:            32,
		DecodeWorkers:        4,
		PreloadCount:         4,
		ThumbnailWidth:       160,
		PrefetchMargin:       reader.DefaultPrefetchMargin,
		ProgressDebounceMs:   int(reader.DefaultProgressDelay / time.Millisecond),
		ControlsHideMs:       int(reader.DefaultControlsHide / time.Millisecond),
		SortMethod:           "natural",
		Keybindings:          GetDefaultKeybindings(),
		Mousebindings:        GetDefaultMousebindings(),
		Mouse:                GetDefaultMouseSettings(),
	}
}

func getConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, appName)
}

func getConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	config := DefaultConfig()

	result := ConfigLoadResult{
		Config:   config,
		Path:     configPath,
		Warnings: []string{},
		Status:   "OK",
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		// Config file not found is not an error - use defaults
		result.Status = "Default"
		if !errors.Is(err, fs.ErrNotExist) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Cannot read config file: %v", err))
		}
		return result
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
		return result
	}

	result.Warnings = append(result.Warnings, validateConfig(&config)...)
	if len(result.Warnings) > 0 {
		result.Status = "Warning"
	}
	result.Config = config
	return result
}

// validateConfig resets out-of-range values individually and returns a
// warning for every binding set that had to fall back to defaults.
func validateConfig(config *Config) []string {
	var warnings []string
	defaults := DefaultConfig()

	if config.WindowWidth < minWidth {
		config.WindowWidth = defaultWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaultHeight
	}

	if config.AspectRatioThreshold <= 1.0 {
		config.AspectRatioThreshold = defaults.AspectRatioThreshold
	}

	// minimum 12px for readability
	if config.FontSize < 12.0 {
		config.FontSize = defaults.FontSize
	}

	if config.CacheSize < 1 {
		config.CacheSize = defaults.CacheSize
	} else if config.CacheSize > 256 {
		config.CacheSize = 256
	}

	if config.DecodeWorkers < 1 {
		config.DecodeWorkers = defaults.DecodeWorkers
	} else if config.DecodeWorkers > 16 {
		config.DecodeWorkers = 16
	}

	if config.PreloadCount < 0 {
		config.PreloadCount = defaults.PreloadCount
	} else if config.PreloadCount > 16 {
		config.PreloadCount = 16
	}

	if config.ThumbnailWidth < 64 {
		config.ThumbnailWidth = 64
	} else if config.ThumbnailWidth > 512 {
		config.ThumbnailWidth = 512
	}

	if config.PrefetchMargin < 0 {
		config.PrefetchMargin = defaults.PrefetchMargin
	}
	if config.ProgressDebounceMs <= 0 {
		config.ProgressDebounceMs = defaults.ProgressDebounceMs
	}
	if config.ControlsHideMs <= 0 {
		config.ControlsHideMs = defaults.ControlsHideMs
	}

	if _, ok := library.ParseSortMethod(config.SortMethod); !ok {
		warnings = append(warnings, fmt.Sprintf("Unknown sort method %q, using natural", config.SortMethod))
		config.SortMethod = defaults.SortMethod
	}

	for _, p := range config.Ignore {
		if err := library.ValidateIgnorePattern(p); err != nil {
			warnings = append(warnings, fmt.Sprintf("Ignore patterns: %v", err))
			config.Ignore = nil
			break
		}
	}

	// Missing actions get their defaults; an invalid set is replaced whole.
	config.Keybindings = fillBindings(config.Keybindings, defaults.Keybindings)
	if err := validateKeybindings(config.Keybindings); err != nil {
		config.Keybindings = defaults.Keybindings
		warnings = append(warnings, fmt.Sprintf("Keybinding errors: %v", err))
	}

	config.Mousebindings = fillBindings(config.Mousebindings, defaults.Mousebindings)
	if err := validateMousebindings(config.Mousebindings); err != nil {
		config.Mousebindings = defaults.Mousebindings
		warnings = append(warnings, fmt.Sprintf("Mouse binding errors: %v", err))
	}

	if config.Mouse.WheelSensitivity <= 0 {
		config.Mouse.WheelSensitivity = defaults.Mouse.WheelSensitivity
	}
	if config.Mouse.DoubleClickTime <= 0 {
		config.Mouse.DoubleClickTime = defaults.Mouse.DoubleClickTime
	}
	if config.Mouse.DragThreshold <= 0 {
		config.Mouse.DragThreshold = defaults.Mouse.DragThreshold
	}
	if config.Mouse.DragSensitivity <= 0 {
		config.Mouse.DragSensitivity = defaults.Mouse.DragSensitivity
	}

	return warnings
}

func fillBindings(bindings, defaults map[string][]string) map[string][]string {
	if bindings == nil {
		return defaults
	}
	for action, keys := range defaults {
		if _, exists := bindings[action]; !exists {
			bindings[action] = keys
		}
	}
	return bindings
}

// validateKeybindings checks key names, modifiers and conflicts.
func validateKeybindings(keybindings map[string][]string) error {
	_, err := reader.NewKeymap(toActionBindings(keybindings), getValidKeyNames())
	return err
}

func toActionBindings(bindings map[string][]string) map[reader.Action][]string {
	out := make(map[reader.Action][]string, len(bindings))
	for action, keys := range bindings {
		out[reader.Action(action)] = keys
	}
	return out
}

// getValidKeyNames returns a set of valid key names
func getValidKeyNames() map[string]bool {
	valid := make(map[string]bool)
	for name := range getKeyMapping() {
		valid[name] = true
	}
	return valid
}

// libraryOptions maps the configuration onto library options.
func (c Config) libraryOptions() library.Options {
	method, _ := library.ParseSortMethod(c.SortMethod)
	return library.Options{
		SortMethod: method,
		Ignore:     c.Ignore,
	}
}

func saveConfigToPath(config Config, configPath string) error {
	// Don't save if size is too small
	if config.WindowWidth < minWidth || config.WindowHeight < minHeight {
		return fmt.Errorf("not saving config with invalid window size: %dx%d",
			config.WindowWidth, config.WindowHeight)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to save config to %s: %w", configPath, err)
	}
	return nil
}
