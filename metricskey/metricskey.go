// Package metricskey describes the metrics emitted by this repo.
package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	StatsToolInputParseErrors = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_input_parse_errors",
		Help:         "stats_tool_input_parse_errors provides total tool input parse errors",
		RequiredTags: []string{"tool"},
	}

	StatsDispatchMatched = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_dispatch_matched",
		Help:         "stats_dispatch_matched provides total dispatched intents matched to a tool",
		RequiredTags: []string{"intent"},
	}

	StatsDispatchUnmatched = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_dispatch_unmatched",
		Help:         "stats_dispatch_unmatched provides total inputs without a matching intent",
		RequiredTags: []string{},
	}
)

// Perf
var (
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}

	PerfStoreSave = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_store_save",
		Help:         "perf_store_save provides duration of state document save",
		RequiredTags: []string{"store"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfStoreSave,
	&PerfToolCall,
	&StatsDispatchMatched,
	&StatsDispatchUnmatched,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
	&StatsToolInputParseErrors,
}
