// Package config implements the option-flag surface of spec.md §6.3 and the
// external rc-file/env loading spec.md §6 describes as "outside the core":
// the core only ever consumes the resulting command-surface lines. Grounded
// on the teacher's internal/config/config.go (env-var-driven defaults) and
// db/sqlite.go's env-var-gated auth pattern.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"

	"github.com/oxhq/cdecl/internal/dialect"
	"github.com/oxhq/cdecl/internal/printer/gibberish"
)

// Options is the full option-flag surface threaded through a command
// Session (spec.md §6.3): alternative-tokens, di/trigraphs, east-const,
// explicit-int, explicit-ECSU, semicolon, typedef-vs-using, and the active
// language dialect.
type Options struct {
	Dialect           dialect.Dialect
	AlternativeTokens bool
	Graphs            gibberish.GraphMode
	EastConst         bool
	ExplicitInt       bool
	ExplicitECSU      bool
	Semicolon         bool
	UsingFlavor       bool

	// Predefined controls whether a new command.Session seeds the registry
	// with the built-in typedef set (size_t, int8_t.._t, FILE, ...) at
	// construction (spec.md §3.5's seeding mechanism, §10's supplement).
	Predefined bool
}

// Default mirrors cdecl's traditional defaults: C17, prefix `const`,
// explicit-int and explicit-ECSU set, a trailing semicolon, typedef (not
// using) flavor, no alternative tokens or graph substitution, predefined
// typedefs on. The explicit-int and explicit-ECSU flags are stored and
// toggled by `set` but are not passed to either printer, so they do not
// change output.
func Default() Options {
	return Options{
		Dialect:      dialect.C17,
		ExplicitInt:  true,
		ExplicitECSU: true,
		Semicolon:    true,
		Predefined:   true,
	}
}

// GibberishOptions projects the subset of Options internal/printer/gibberish
// consumes.
func (o Options) GibberishOptions() gibberish.Options {
	return gibberish.Options{
		EastConst:         o.EastConst,
		AlternativeTokens: o.AlternativeTokens,
		Graphs:            o.Graphs,
		UsingFlavor:       o.UsingFlavor,
		Dialect:           o.Dialect,
	}
}

// envPrefix namespaces every recognized environment variable, adapting the
// teacher's MORFX_* convention to this project's own domain.
const envPrefix = "CDECL_"

// LoadEnv reads path (typically ".cdeclrc.env") via godotenv and applies any
// recognized CDECL_* variable on top of base, returning the merged Options.
// A missing file is not an error — it simply means no overrides apply.
func LoadEnv(path string, base Options) (Options, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return applyEnv(vars, base)
}

func applyEnv(vars map[string]string, opts Options) (Options, error) {
	if v, ok := vars[envPrefix+"LANGUAGE"]; ok {
		d, found := dialect.Lookup(v)
		if !found {
			return opts, fmt.Errorf("config: unrecognized %sLANGUAGE value %q", envPrefix, v)
		}
		opts.Dialect = d
	}
	if v, ok := vars[envPrefix+"ALTERNATIVE_TOKENS"]; ok {
		opts.AlternativeTokens = truthy(v)
	}
	if v, ok := vars[envPrefix+"EAST_CONST"]; ok {
		opts.EastConst = truthy(v)
	}
	if v, ok := vars[envPrefix+"EXPLICIT_INT"]; ok {
		opts.ExplicitInt = truthy(v)
	}
	if v, ok := vars[envPrefix+"EXPLICIT_ECSU"]; ok {
		opts.ExplicitECSU = truthy(v)
	}
	if v, ok := vars[envPrefix+"SEMICOLON"]; ok {
		opts.Semicolon = truthy(v)
	}
	if v, ok := vars[envPrefix+"USING"]; ok {
		opts.UsingFlavor = truthy(v)
	}
	if v, ok := vars[envPrefix+"PREDEFINED"]; ok {
		opts.Predefined = truthy(v)
	}
	if v, ok := vars[envPrefix+"GRAPHS"]; ok {
		switch strings.ToLower(v) {
		case "digraphs":
			opts.Graphs = gibberish.GraphDigraphs
		case "trigraphs":
			opts.Graphs = gibberish.GraphTrigraphs
		default:
			opts.Graphs = gibberish.GraphNone
		}
	}
	return opts, nil
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// DiscoverRC globs dir for *.cdecl rc fragments (doublestar, the same
// pattern-matching library the teacher uses for plugin discovery), sorted
// for deterministic replay, and returns each fragment's command-surface
// lines ready to feed to command.Session.Execute — "a sequence of core
// commands replayed at startup" per spec.md §6, read here but never
// interpreted here.
func DiscoverRC(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.cdecl")
	if err != nil {
		return nil, fmt.Errorf("config: globbing rc fragments: %w", err)
	}
	sort.Strings(matches)

	var lines []string
	for _, m := range matches {
		data, err := os.ReadFile(filepath.Join(dir, m))
		if err != nil {
			return nil, fmt.Errorf("config: reading rc fragment %s: %w", m, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}
