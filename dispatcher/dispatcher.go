// Package dispatcher routes free-form commands to registered tools by
// matching keyword prefixes against the start of the command text.
package dispatcher

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/metricskey"
	"github.com/effective-security/agentools/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentools", "dispatcher")

// ErrNoIntent is returned when no route prefix matches the command.
var ErrNoIntent = errors.New("no matching intent")

// Route binds an intent prefix to a registered tool.
type Route struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	Tool   string `json:"tool" yaml:"tool"`
}

// Dispatcher resolves commands to tools. Longer prefixes win over
// shorter ones, and matching is case-insensitive on word boundaries.
type Dispatcher struct {
	mu       sync.RWMutex
	registry *tools.Registry
	routes   []Route
}

func New(registry *tools.Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
	}
}

// AddRoute registers an intent prefix for a tool. The tool must already
// be registered.
func (d *Dispatcher) AddRoute(prefix, tool string) error {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return errors.New("prefix is required")
	}
	if _, ok := d.registry.Get(tool); !ok {
		return errors.WithMessagef(tools.ErrToolNotFound, "%s", tool)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, route := range d.routes {
		if route.Prefix == prefix {
			return errors.Errorf("route already exists: %s", prefix)
		}
	}
	d.routes = append(d.routes, Route{Prefix: prefix, Tool: tool})
	// longest first, so the most specific intent wins
	sort.Slice(d.routes, func(i, j int) bool {
		if len(d.routes[i].Prefix) != len(d.routes[j].Prefix) {
			return len(d.routes[i].Prefix) > len(d.routes[j].Prefix)
		}
		return d.routes[i].Prefix < d.routes[j].Prefix
	})
	return nil
}

// MustAddRoute registers the route and panics on error.
func (d *Dispatcher) MustAddRoute(prefix, tool string) *Dispatcher {
	if err := d.AddRoute(prefix, tool); err != nil {
		panic(err)
	}
	return d
}

// Routes returns the configured routes, longest prefix first.
func (d *Dispatcher) Routes() []Route {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Route{}, d.routes...)
}

// Match resolves a command to a route and returns the remainder of the
// command after the matched prefix, lowercased.
func (d *Dispatcher) Match(command string) (*Route, string, error) {
	// prefixes are stored lowercased, so both the match and the slice work
	// on the lowered command; ToLower can change byte length, slicing the
	// original with lowered offsets would be unsafe
	lower := strings.ToLower(strings.TrimSpace(command))

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, route := range d.routes {
		rest, ok := strings.CutPrefix(lower, route.Prefix)
		if !ok {
			continue
		}
		// require a word boundary after the prefix
		if rest != "" {
			if r, _ := utf8.DecodeRuneInString(rest); !unicode.IsSpace(r) {
				continue
			}
		}
		return &route, strings.TrimSpace(rest), nil
	}
	return nil, "", errors.WithStack(ErrNoIntent)
}

// Dispatch resolves the command to a tool and invokes it with the given
// JSON input.
func (d *Dispatcher) Dispatch(ctx context.Context, command, input string) (string, error) {
	route, _, err := d.Match(command)
	if err != nil {
		metricskey.StatsDispatchUnmatched.IncrCounter(1)
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "no_intent",
			"command", command,
		)
		return "", err
	}

	metricskey.StatsDispatchMatched.IncrCounter(1, route.Prefix)
	logger.ContextKV(ctx, xlog.DEBUG,
		"intent", route.Prefix,
		"tool", route.Tool,
	)
	return d.registry.Call(ctx, route.Tool, input)
}
