// Package toolset assembles the full tool registry and dispatcher.
package toolset

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/config"
	"github.com/effective-security/agentools/dispatcher"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
	"github.com/effective-security/agentools/tools/abtest"
	"github.com/effective-security/agentools/tools/assets"
	"github.com/effective-security/agentools/tools/attribution"
	"github.com/effective-security/agentools/tools/backup"
	"github.com/effective-security/agentools/tools/churn"
	"github.com/effective-security/agentools/tools/finance"
	"github.com/effective-security/agentools/tools/marketresearch"
	"github.com/effective-security/agentools/tools/mathsolver"
	"github.com/effective-security/agentools/tools/rma"
	"github.com/effective-security/agentools/tools/synthdata"
	"github.com/effective-security/agentools/tools/sysmon"
	"github.com/effective-security/agentools/tools/unitconv"
)

// NewRegistry constructs all tools over the given store and registers
// them in a fresh registry.
func NewRegistry(st store.Store) (*tools.Registry, error) {
	reg := tools.NewRegistry()

	stateful := []func(store.Store) (tools.ITool, error){
		func(st store.Store) (tools.ITool, error) { return marketresearch.New(st) },
		func(st store.Store) (tools.ITool, error) { return attribution.New(st) },
		func(st store.Store) (tools.ITool, error) { return mathsolver.New(st) },
		func(st store.Store) (tools.ITool, error) { return assets.New(st) },
		func(st store.Store) (tools.ITool, error) { return abtest.New(st) },
		func(st store.Store) (tools.ITool, error) { return finance.New(st) },
		func(st store.Store) (tools.ITool, error) { return rma.New(st) },
		func(st store.Store) (tools.ITool, error) { return synthdata.New(st) },
		func(st store.Store) (tools.ITool, error) { return backup.New(st) },
		func(st store.Store) (tools.ITool, error) { return churn.New(st) },
	}
	for _, create := range stateful {
		tool, err := create(st)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(tool); err != nil {
			return nil, err
		}
	}

	uc, err := unitconv.New()
	if err != nil {
		return nil, err
	}
	if err := reg.Register(uc); err != nil {
		return nil, err
	}

	sm, err := sysmon.New()
	if err != nil {
		return nil, err
	}
	if err := reg.Register(sm); err != nil {
		return nil, err
	}

	return reg, nil
}

// NewDispatcher builds a dispatcher from the configured routes.
func NewDispatcher(reg *tools.Registry, routes []config.RouteConfig) (*dispatcher.Dispatcher, error) {
	d := dispatcher.New(reg)
	for _, route := range routes {
		if err := d.AddRoute(route.Prefix, route.Tool); err != nil {
			return nil, errors.WithMessagef(err, "failed to add route: %s", route.Prefix)
		}
	}
	return d, nil
}
