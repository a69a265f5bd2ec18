package logging

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry tracks named loggers so their levels can be driven by LoggerPatternConfig entries.
// Loggers matched by no pattern use the registry's default level.
type Registry struct {
	mu           sync.RWMutex
	loggers      map[string]Logger
	logConfig    []LoggerPatternConfig
	defaultLevel Level
}

// NewRegistry returns an empty registry whose unmatched loggers are set to defaultLevel.
func NewRegistry(defaultLevel Level) *Registry {
	return &Registry{
		loggers:      make(map[string]Logger),
		defaultLevel: defaultLevel,
	}
}

// LoggerNamed returns the logger registered under name.
func (lr *Registry) LoggerNamed(name string) (Logger, bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok := lr.loggers[name]
	return logger, ok
}

// GetOrRegister returns the logger already registered under name, or registers logger and sets
// its level from the current patterns. Concurrent callers all receive the winning logger.
func (lr *Registry) GetOrRegister(name string, logger Logger) Logger {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if existing, ok := lr.loggers[name]; ok {
		return existing
	}
	lr.loggers[name] = logger
	logger.SetLevel(lr.levelFor(name))
	return logger
}

// Sublogger returns the sublogger of parent with the given subname, registered under its full
// name.
func (lr *Registry) Sublogger(parent Logger, parentName, subname string) Logger {
	name := subname
	if parentName != "" {
		name = parentName + "." + subname
	}
	return lr.GetOrRegister(name, parent.Sublogger(subname))
}

// UpdateConfig replaces the patterns and re-levels every registered logger. Invalid patterns
// are skipped with a warning on errorLogger. When several patterns match, the last one wins.
func (lr *Registry) UpdateConfig(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	valid := make([]LoggerPatternConfig, 0, len(logConfig))
	for _, lpc := range logConfig {
		if err := lpc.Validate(); err != nil {
			errorLogger.Warnw("ignoring logger pattern", "pattern", lpc.Pattern, "error", err)
			continue
		}
		valid = append(valid, lpc)
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.logConfig = valid
	for name, logger := range lr.loggers {
		logger.SetLevel(lr.levelFor(name))
	}
	return nil
}

// SetDefaultLevel changes the level of loggers matched by no pattern and re-levels every
// registered logger.
func (lr *Registry) SetDefaultLevel(level Level) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.defaultLevel = level
	for name, logger := range lr.loggers {
		logger.SetLevel(lr.levelFor(name))
	}
}

// RegisteredLoggerNames returns the sorted names of all registered loggers.
func (lr *Registry) RegisteredLoggerNames() []string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	names := make([]string, 0, len(lr.loggers))
	for name := range lr.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// levelFor must be called with mu held.
func (lr *Registry) levelFor(name string) Level {
	level := lr.defaultLevel
	for _, lpc := range lr.logConfig {
		r, err := lpc.matcher()
		if err != nil || !r.MatchString(name) {
			continue
		}
		// patterns were validated when stored
		level, _ = LevelFromString(lpc.Level)
	}
	return level
}

// ValidateConfig returns an error for the first invalid pattern.
func ValidateConfig(logConfig []LoggerPatternConfig) error {
	for i, lpc := range logConfig {
		if err := lpc.Validate(); err != nil {
			return errors.Wrapf(err, "log.%d", i)
		}
	}
	return nil
}
