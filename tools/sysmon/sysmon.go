// Package sysmon reports host CPU, memory, and disk health with
// configurable warning and critical thresholds.
package sysmon

import (
	"context"
	"math"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/tools"
	"github.com/effective-security/x/values"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

const ToolName = "SystemMonitor"

const (
	OpCheckCPU    = "check_cpu"
	OpCheckMemory = "check_memory"
	OpCheckDisk   = "check_disk"
	OpRunAll      = "run_all"
)

const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

const (
	DefaultWarningThreshold  = 75.0
	DefaultCriticalThreshold = 90.0
	DefaultDiskPath          = "/"
)

// Request represents the tool input.
type Request struct {
	Operation         string  `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=check_cpu,enum=check_memory,enum=check_disk,enum=run_all" validate:"required,oneof=check_cpu check_memory check_disk run_all"`
	WarningThreshold  float64 `json:"warning_threshold,omitempty" yaml:"warning_threshold,omitempty" jsonschema:"title=warning_threshold,description=Usage percent above which status is 'warning'.,default=75" validate:"omitempty,gt=0,lte=100"`
	CriticalThreshold float64 `json:"critical_threshold,omitempty" yaml:"critical_threshold,omitempty" jsonschema:"title=critical_threshold,description=Usage percent above which status is 'critical'.,default=90" validate:"omitempty,gt=0,lte=100"`
	DiskPath          string  `json:"disk_path,omitempty" yaml:"disk_path,omitempty" jsonschema:"title=disk_path,description=The mount point to check disk usage for.,default=/"`
}

// Check is a single resource health check.
type Check struct {
	Resource     string  `json:"resource" yaml:"resource"`
	UsagePercent float64 `json:"usage_percent" yaml:"usage_percent"`
	TotalBytes   uint64  `json:"total_bytes,omitempty" yaml:"total_bytes,omitempty"`
	UsedBytes    uint64  `json:"used_bytes,omitempty" yaml:"used_bytes,omitempty"`
	Status       string  `json:"status" yaml:"status"`
}

// Response represents the tool output.
type Response struct {
	Check         *Check  `json:"check,omitempty" yaml:"check,omitempty"`
	Checks        []Check `json:"checks,omitempty" yaml:"checks,omitempty"`
	OverallStatus string  `json:"overall_status,omitempty" yaml:"overall_status,omitempty"`
}

// Tool reads live host metrics. It keeps no state.
type Tool struct {
	name        string
	description string
	funcParams  any
}

var _ tools.Tool[Request, Response] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Monitors system health: CPU, memory, and disk usage with warning and critical thresholds.",
		funcParams:  sc.Parameters,
	}, nil
}

func (t *Tool) Name() string        { return t.name }
func (t *Tool) Description() string { return t.description }
func (t *Tool) Parameters() any     { return t.funcParams }

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, t, input)
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Response, error) {
	warning := values.Select(req.WarningThreshold != 0, req.WarningThreshold, DefaultWarningThreshold)
	critical := values.Select(req.CriticalThreshold != 0, req.CriticalThreshold, DefaultCriticalThreshold)
	if warning >= critical {
		return nil, errors.New("warning_threshold must be below critical_threshold")
	}

	switch req.Operation {
	case OpCheckCPU:
		check, err := checkCPU(ctx, warning, critical)
		if err != nil {
			return nil, err
		}
		return &Response{Check: check}, nil

	case OpCheckMemory:
		check, err := checkMemory(ctx, warning, critical)
		if err != nil {
			return nil, err
		}
		return &Response{Check: check}, nil

	case OpCheckDisk:
		check, err := checkDisk(ctx, values.StringsCoalesce(req.DiskPath, DefaultDiskPath), warning, critical)
		if err != nil {
			return nil, err
		}
		return &Response{Check: check}, nil

	case OpRunAll:
		res := &Response{OverallStatus: StatusHealthy}
		checks := []func() (*Check, error){
			func() (*Check, error) { return checkCPU(ctx, warning, critical) },
			func() (*Check, error) { return checkMemory(ctx, warning, critical) },
			func() (*Check, error) { return checkDisk(ctx, values.StringsCoalesce(req.DiskPath, DefaultDiskPath), warning, critical) },
		}
		for _, run := range checks {
			check, err := run()
			if err != nil {
				return nil, err
			}
			res.Checks = append(res.Checks, *check)
			res.OverallStatus = worseStatus(res.OverallStatus, check.Status)
		}
		return res, nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}

func checkCPU(ctx context.Context, warning, critical float64) (*Check, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CPU usage")
	}
	if len(percents) == 0 {
		return nil, errors.New("no CPU usage reported")
	}
	return &Check{
		Resource:     "cpu",
		UsagePercent: round2(percents[0]),
		Status:       classify(percents[0], warning, critical),
	}, nil
}

func checkMemory(ctx context.Context, warning, critical float64) (*Check, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read memory usage")
	}
	return &Check{
		Resource:     "memory",
		UsagePercent: round2(vm.UsedPercent),
		TotalBytes:   vm.Total,
		UsedBytes:    vm.Used,
		Status:       classify(vm.UsedPercent, warning, critical),
	}, nil
}

func checkDisk(ctx context.Context, path string, warning, critical float64) (*Check, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read disk usage: %s", path)
	}
	return &Check{
		Resource:     "disk",
		UsagePercent: round2(usage.UsedPercent),
		TotalBytes:   usage.Total,
		UsedBytes:    usage.Used,
		Status:       classify(usage.UsedPercent, warning, critical),
	}, nil
}

func classify(usage, warning, critical float64) string {
	switch {
	case usage >= critical:
		return StatusCritical
	case usage >= warning:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

var statusRank = map[string]int{
	StatusHealthy:  0,
	StatusWarning:  1,
	StatusCritical: 2,
}

func worseStatus(a, b string) string {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
