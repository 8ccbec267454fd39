// Package backup simulates a backup service: on-demand backups,
// restores, and recurring schedules.
package backup

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
)

const ToolName = "BackupManager"

const stateDoc = "backup_records"

const (
	OpCreate   = "create_backup"
	OpRestore  = "restore_backup"
	OpSchedule = "schedule_backup"
	OpList     = "list_backups"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Backup is a completed backup run.
type Backup struct {
	BackupID  string `json:"backup_id" yaml:"backup_id"`
	Source    string `json:"source" yaml:"source"`
	SizeMB    int    `json:"size_mb" yaml:"size_mb"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

// Schedule is a recurring backup configuration.
type Schedule struct {
	Source    string `json:"source" yaml:"source"`
	Frequency string `json:"frequency" yaml:"frequency"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

// Request represents the tool input.
type Request struct {
	Operation string `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=create_backup,enum=restore_backup,enum=schedule_backup,enum=list_backups" validate:"required,oneof=create_backup restore_backup schedule_backup list_backups"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty" jsonschema:"title=source,description=The data source to back up (e.g. a database or directory name)."`
	BackupID  string `json:"backup_id,omitempty" yaml:"backup_id,omitempty" jsonschema:"title=backup_id,description=The backup to restore."`
	Frequency string `json:"frequency,omitempty" yaml:"frequency,omitempty" jsonschema:"title=frequency,description=How often the scheduled backup runs.,enum=daily,enum=weekly,enum=monthly" validate:"omitempty,oneof=daily weekly monthly"`
}

// Response represents the tool output.
type Response struct {
	Message   string    `json:"message,omitempty" yaml:"message,omitempty"`
	Backup    *Backup   `json:"backup,omitempty" yaml:"backup,omitempty"`
	Backups   []Backup  `json:"backups,omitempty" yaml:"backups,omitempty"`
	Schedule  *Schedule `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Schedules []Schedule `json:"schedules,omitempty" yaml:"schedules,omitempty"`
}

type state struct {
	NextSeq   int                 `json:"next_seq"`
	Backups   map[string]Backup   `json:"backups"`
	Schedules map[string]Schedule `json:"schedules"`
}

// Tool tracks simulated backups in the state store.
type Tool struct {
	name        string
	description string
	funcParams  any

	store store.Store
}

var _ tools.Tool[Request, Response] = (*Tool)(nil)

func New(st store.Store) (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Manages data backups: create backups, restore from a backup, configure recurring schedules, and list past backups.",
		funcParams:  sc.Parameters,
		store:       st,
	}, nil
}

func (t *Tool) Name() string        { return t.name }
func (t *Tool) Description() string { return t.description }
func (t *Tool) Parameters() any     { return t.funcParams }

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, t, input)
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Response, error) {
	var s state
	if _, err := t.store.Load(ctx, stateDoc, &s); err != nil {
		return nil, err
	}
	if s.Backups == nil {
		s.Backups = make(map[string]Backup)
	}
	if s.Schedules == nil {
		s.Schedules = make(map[string]Schedule)
	}

	switch req.Operation {
	case OpCreate:
		if req.Source == "" {
			return nil, errors.New("source is required")
		}
		s.NextSeq++
		now := time.Now()
		b := Backup{
			BackupID:  fmt.Sprintf("backup_%s_%03d", now.Format("20060102150405"), s.NextSeq),
			Source:    req.Source,
			SizeMB:    gofakeit.Number(100, 4999),
			CreatedAt: now.Format(time.RFC3339),
		}
		s.Backups[b.BackupID] = b
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{Message: "backup created: " + b.BackupID, Backup: &b}, nil

	case OpRestore:
		b, ok := s.Backups[req.BackupID]
		if !ok {
			return nil, errors.Errorf("backup not found: %s", req.BackupID)
		}
		return &Response{
			Message: fmt.Sprintf("restored %s from backup %s", b.Source, b.BackupID),
			Backup:  &b,
		}, nil

	case OpSchedule:
		if req.Source == "" {
			return nil, errors.New("source is required")
		}
		if req.Frequency == "" {
			return nil, errors.New("frequency is required")
		}
		sched := Schedule{
			Source:    req.Source,
			Frequency: req.Frequency,
			CreatedAt: time.Now().Format(time.RFC3339),
		}
		s.Schedules[req.Source] = sched
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{
			Message:  fmt.Sprintf("%s backup scheduled for %s", req.Frequency, req.Source),
			Schedule: &sched,
		}, nil

	case OpList:
		res := &Response{}
		for _, b := range s.Backups {
			if req.Source != "" && b.Source != req.Source {
				continue
			}
			res.Backups = append(res.Backups, b)
		}
		sort.Slice(res.Backups, func(i, j int) bool {
			return res.Backups[i].BackupID < res.Backups[j].BackupID
		})
		for _, sched := range s.Schedules {
			if req.Source != "" && sched.Source != req.Source {
				continue
			}
			res.Schedules = append(res.Schedules, sched)
		}
		sort.Slice(res.Schedules, func(i, j int) bool {
			return res.Schedules[i].Source < res.Schedules[j].Source
		})
		return res, nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}
