package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidMarker indicates a read-only marker that is not a single visible character
	ErrInvalidMarker = errors.New("invalid readonly marker")

	// ErrInvalidIndent indicates an out-of-range skeleton indent
	ErrInvalidIndent = errors.New("invalid indent")

	// ErrInvalidPattern indicates a path pattern that does not compile
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrEmptyPatterns indicates no code patterns were configured
	ErrEmptyPatterns = errors.New("empty code patterns")

	// ErrInvalidDebounce indicates a negative watcher debounce
	ErrInvalidDebounce = errors.New("invalid debounce")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")
)

// maxIndent bounds outline.indent.
const maxIndent = 16

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateOutline(&cfg.Outline); err != nil {
		errs = append(errs, err)
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	if cfg.Cache.MaxUnits <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_units must be positive, got %d", ErrInvalidCacheSettings, cfg.Cache.MaxUnits))
	}

	return joinErrors(errs)
}

func validateOutline(cfg *OutlineConfig) error {
	var errs []error

	marker := cfg.ReadonlyMarker
	if utf8.RuneCountInString(marker) != 1 {
		errs = append(errs, fmt.Errorf("%w: must be exactly one character, got %q", ErrInvalidMarker, marker))
	} else if r, _ := utf8.DecodeRuneInString(marker); unicode.IsSpace(r) || !unicode.IsPrint(r) {
		errs = append(errs, fmt.Errorf("%w: must be a visible character, got %q", ErrInvalidMarker, marker))
	}

	if cfg.Indent < 0 || cfg.Indent > maxIndent {
		errs = append(errs, fmt.Errorf("%w: indent must be between 0 and %d, got %d", ErrInvalidIndent, maxIndent, cfg.Indent))
	}

	return joinErrors(errs)
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Code) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one code pattern required", ErrEmptyPatterns))
	}

	for _, pattern := range append(append([]string{}, cfg.Code...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Every joined error stays reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	verbs := make([]string, len(errs))
	args := make([]any, len(errs))
	for i, err := range errs {
		verbs[i] = "%w"
		args[i] = err
	}

	return fmt.Errorf("validation failed:\n  - "+strings.Join(verbs, "\n  - "), args...)
}
