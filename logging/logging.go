package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/showcontroller/osctrigger/osc"
)

type LogCategory string

const (
	META     LogCategory = "meta" // For logs about logging
	OSC_IN   LogCategory = "osc_in"
	LISTENER LogCategory = "listener"
	ACTION   LogCategory = "action"
	APP      LogCategory = "app"
)

func strToLogCategory(s string) (LogCategory, bool) {
	switch s {
	case "meta":
		return META, true
	case "osc_in":
		return OSC_IN, true
	case "listener":
		return LISTENER, true
	case "action":
		return ACTION, true
	case "app":
		return APP, true
	default:
		return "", false
	}
}

var out io.Writer = os.Stderr

// Internal state for loggers per category
var (
	mu               sync.RWMutex
	loggers          = map[LogCategory]*slog.Logger{}
	categoryLvls     = map[LogCategory]*slog.LevelVar{}
	defaultLogLevels = map[LogCategory]slog.Level{
		META:     slog.LevelInfo,
		OSC_IN:   slog.LevelWarn,
		LISTENER: slog.LevelInfo,
		ACTION:   slog.LevelInfo,
		APP:      slog.LevelInfo,
	}
)

// SetOutput redirects every category logger, existing and future, to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	loggers = map[LogCategory]*slog.Logger{}
}

// Get returns a slog.Logger that always has the "category" attribute set.
// Each category gets its own logger instance.
func Get(category LogCategory) *slog.Logger {
	mu.RLock()
	l, ok := loggers[category]
	mu.RUnlock()
	if ok {
		return l
	}
	mu.Lock()
	defer mu.Unlock()
	// Double-check after locking
	if l, ok := loggers[category]; ok {
		return l
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: levelVar(category),
	})
	catLogger := slog.New(handler).With("category", category)
	loggers[category] = catLogger
	return catLogger
}

// levelVar must be called with mu held for writing.
func levelVar(category LogCategory) *slog.LevelVar {
	lvlVar, ok := categoryLvls[category]
	if !ok {
		lvlVar = new(slog.LevelVar)
		if lvl, ok := defaultLogLevels[category]; ok {
			lvlVar.Set(lvl)
		}
		categoryLvls[category] = lvlVar
	}
	return lvlVar
}

func SetCategoryLevel(category LogCategory, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	levelVar(category).Set(level)
}

// ParseCategory resolves a category name as used in config files.
func ParseCategory(s string) (LogCategory, bool) {
	return strToLogCategory(strings.ToLower(s))
}

func splitOscPath(path string) []string {
	return strings.Split(path, "/")[1:]
}

// HandleLevelMessage applies runtime level changes sent over OSC. It
// reports whether msg was a logging control message.
//
// Routes:
// /meta/logging/{category}/level as int where -4 is Debug, 0 is Info, 4 is Warn, 8 is Error
func HandleLevelMessage(msg osc.Message) bool {
	pathSegs := splitOscPath(msg.Address)
	if len(pathSegs) != 4 || pathSegs[0] != "meta" || pathSegs[1] != "logging" || pathSegs[3] != "level" {
		return false
	}
	cat, ok := strToLogCategory(pathSegs[2])
	if !ok {
		Get(META).Info("Unrecognized log category in OSC message", "category", pathSegs[2])
		return true
	}
	if msg.Tag != osc.TagInt32 {
		Get(META).Warn("Invalid level type in OSC message", "expected", "i", "got", string(msg.Tag))
		return true
	}
	level := slog.Level(msg.Int())
	Get(META).Info("Setting category level via OSC",
		"category", cat,
		"level", level)
	SetCategoryLevel(cat, level)
	return true
}

// ApplyLevels sets category levels from config, e.g. {"osc_in": "debug"}.
func ApplyLevels(levels map[string]string) error {
	for name, s := range levels {
		cat, ok := ParseCategory(name)
		if !ok {
			return fmt.Errorf("unknown log category %q", name)
		}
		var level slog.Level
		if err := level.UnmarshalText([]byte(s)); err != nil {
			return fmt.Errorf("log level for %s: %w", name, err)
		}
		SetCategoryLevel(cat, level)
	}
	return nil
}
