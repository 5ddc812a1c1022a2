// Package keymap names the keys a trigger can press and parses chords such
// as "CTRL+SHIFT+F5".
package keymap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned for a key name that is not in the table.
var ErrUnknownKey = errors.New("unknown key")

// Key is a symbolic key name in canonical upper case form, e.g. "SPACE",
// "F5", "NUM3" or "A".
type Key string

// Modifiers is a set of modifier keys held while the main key is tapped.
type Modifiers uint8

const (
	Ctrl Modifiers = 1 << iota
	Shift
	Alt
)

// modifierOrder is the press order; release happens in reverse.
var modifierOrder = []struct {
	mod   Modifiers
	name  string
	robot string
}{
	{Ctrl, "CTRL", "ctrl"},
	{Shift, "SHIFT", "shift"},
	{Alt, "ALT", "alt"},
}

// named holds every multi-letter key and its robotgo name.
var named = map[Key]string{
	"SPACE":     "space",
	"ENTER":     "enter",
	"TAB":       "tab",
	"ESC":       "esc",
	"BACKSPACE": "backspace",
	"DELETE":    "delete",
	"INSERT":    "insert",
	"HOME":      "home",
	"END":       "end",
	"PAGEUP":    "pageup",
	"PAGEDOWN":  "pagedown",
	"LEFT":      "left",
	"RIGHT":     "right",
	"UP":        "up",
	"DOWN":      "down",
}

var aliases = map[string]Key{
	"ESCAPE":   "ESC",
	"RETURN":   "ENTER",
	"SPACEBAR": "SPACE",
}

func init() {
	for i := 1; i <= 12; i++ {
		named[Key(fmt.Sprintf("F%d", i))] = fmt.Sprintf("f%d", i)
	}
	for i := 0; i <= 9; i++ {
		named[Key(fmt.Sprintf("NUM%d", i))] = fmt.Sprintf("num%d", i)
	}
}

// ParseKey resolves a single key name, case-insensitively.
func ParseKey(s string) (Key, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if k, ok := aliases[name]; ok {
		return k, nil
	}
	if _, ok := named[Key(name)]; ok {
		return Key(name), nil
	}
	if len(name) == 1 {
		c := name[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return Key(name), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// ParseChord splits a "+" separated chord into its modifiers and the final
// key. "ctrl+shift+f5" gives {Ctrl, Shift} and "F5".
func ParseChord(s string) (Key, Modifiers, error) {
	parts := strings.Split(s, "+")
	var mods Modifiers
	for _, p := range parts[:len(parts)-1] {
		m, ok := parseModifier(p)
		if !ok {
			return "", 0, fmt.Errorf("%w: modifier %q in %q", ErrUnknownKey, p, s)
		}
		mods |= m
	}
	k, err := ParseKey(parts[len(parts)-1])
	if err != nil {
		return "", 0, err
	}
	return k, mods, nil
}

func parseModifier(s string) (Modifiers, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CTRL", "CONTROL":
		return Ctrl, true
	case "SHIFT":
		return Shift, true
	case "ALT":
		return Alt, true
	}
	return 0, false
}

// RobotName returns the key name understood by robotgo.
func (k Key) RobotName() string {
	if n, ok := named[k]; ok {
		return n
	}
	return strings.ToLower(string(k))
}

// Has reports whether m includes all of o.
func (m Modifiers) Has(o Modifiers) bool {
	return m&o == o
}

// RobotNames lists the modifiers in press order using robotgo's names.
func (m Modifiers) RobotNames() []string {
	var out []string
	for _, o := range modifierOrder {
		if m.Has(o.mod) {
			out = append(out, o.robot)
		}
	}
	return out
}

func (m Modifiers) String() string {
	var out []string
	for _, o := range modifierOrder {
		if m.Has(o.mod) {
			out = append(out, o.name)
		}
	}
	return strings.Join(out, "+")
}

// Chord formats a key and its modifiers the way ParseChord reads them.
func Chord(k Key, m Modifiers) string {
	if m == 0 {
		return string(k)
	}
	return m.String() + "+" + string(k)
}
