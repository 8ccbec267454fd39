// Package rma handles return merchandise authorizations: creation,
// status tracking, and refund or replacement processing.
package rma

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
)

const ToolName = "RMAProcessor"

const stateDoc = "rma_records"

const (
	OpCreate        = "create_rma"
	OpTrackStatus   = "track_status"
	OpProcessReturn = "process_return"
	OpList          = "list_rmas"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusRefunded = "refunded"
	StatusReplaced = "replaced"
)

const (
	ResolutionRefund      = "refund"
	ResolutionReplacement = "replacement"
)

// Record is a stored return merchandise authorization.
type Record struct {
	RMAID      string `json:"rma_id" yaml:"rma_id"`
	OrderID    string `json:"order_id" yaml:"order_id"`
	ProductID  string `json:"product_id" yaml:"product_id"`
	Reason     string `json:"reason" yaml:"reason"`
	Status     string `json:"status" yaml:"status"`
	Resolution string `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
	UpdatedAt  string `json:"updated_at" yaml:"updated_at"`
}

// Request represents the tool input.
type Request struct {
	Operation  string `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=create_rma,enum=track_status,enum=process_return,enum=list_rmas" validate:"required,oneof=create_rma track_status process_return list_rmas"`
	RMAID      string `json:"rma_id,omitempty" yaml:"rma_id,omitempty" jsonschema:"title=rma_id,description=The RMA identifier to track or process."`
	OrderID    string `json:"order_id,omitempty" yaml:"order_id,omitempty" jsonschema:"title=order_id,description=The order the return belongs to."`
	ProductID  string `json:"product_id,omitempty" yaml:"product_id,omitempty" jsonschema:"title=product_id,description=The product being returned."`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty" jsonschema:"title=reason,description=The customer's reason for the return."`
	Approve    *bool  `json:"approve,omitempty" yaml:"approve,omitempty" jsonschema:"title=approve,description=Whether the return is approved."`
	Resolution string `json:"resolution,omitempty" yaml:"resolution,omitempty" jsonschema:"title=resolution,description=How an approved return is settled.,enum=refund,enum=replacement" validate:"omitempty,oneof=refund replacement"`
	Status     string `json:"status,omitempty" yaml:"status,omitempty" jsonschema:"title=status,description=Filter listed RMAs by status.,enum=pending,enum=approved,enum=rejected,enum=refunded,enum=replaced" validate:"omitempty,oneof=pending approved rejected refunded replaced"`
}

// Response represents the tool output.
type Response struct {
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
	RMA     *Record  `json:"rma,omitempty" yaml:"rma,omitempty"`
	RMAs    []Record `json:"rmas,omitempty" yaml:"rmas,omitempty"`
}

type state struct {
	NextID  int               `json:"next_id"`
	Records map[string]Record `json:"records"`
}

// Tool manages RMA records in the state store.
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
		description: "Processes return merchandise authorizations: create RMAs, track status, and settle returns as refunds or replacements.",
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
	if s.Records == nil {
		s.Records = make(map[string]Record)
	}

	switch req.Operation {
	case OpCreate:
		if req.OrderID == "" || req.ProductID == "" || req.Reason == "" {
			return nil, errors.New("order_id, product_id and reason are required")
		}
		s.NextID++
		now := time.Now().Format(time.RFC3339)
		rec := Record{
			RMAID:     fmt.Sprintf("RMA-%04d", s.NextID),
			OrderID:   req.OrderID,
			ProductID: req.ProductID,
			Reason:    req.Reason,
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.Records[rec.RMAID] = rec
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{Message: "RMA created: " + rec.RMAID, RMA: &rec}, nil

	case OpTrackStatus:
		rec, ok := s.Records[req.RMAID]
		if !ok {
			return nil, errors.Errorf("RMA not found: %s", req.RMAID)
		}
		return &Response{RMA: &rec}, nil

	case OpProcessReturn:
		return t.processReturn(ctx, &s, req)

	case OpList:
		list := make([]Record, 0, len(s.Records))
		for _, rec := range s.Records {
			if req.Status != "" && rec.Status != req.Status {
				continue
			}
			list = append(list, rec)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].RMAID < list[j].RMAID })
		return &Response{RMAs: list}, nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}

func (t *Tool) processReturn(ctx context.Context, s *state, req *Request) (*Response, error) {
	rec, ok := s.Records[req.RMAID]
	if !ok {
		return nil, errors.Errorf("RMA not found: %s", req.RMAID)
	}
	if rec.Status != StatusPending {
		return nil, errors.Errorf("RMA already processed: %s (status: %s)", rec.RMAID, rec.Status)
	}
	if req.Approve == nil {
		return nil, errors.New("approve is required")
	}

	if !*req.Approve {
		rec.Status = StatusRejected
	} else {
		switch req.Resolution {
		case ResolutionRefund:
			rec.Status = StatusRefunded
		case ResolutionReplacement:
			rec.Status = StatusReplaced
		case "":
			rec.Status = StatusApproved
		default:
			return nil, errors.Errorf("unsupported resolution: %s", req.Resolution)
		}
		rec.Resolution = req.Resolution
	}
	rec.UpdatedAt = time.Now().Format(time.RFC3339)
	s.Records[rec.RMAID] = rec
	if err := t.store.Save(ctx, stateDoc, s); err != nil {
		return nil, err
	}
	return &Response{Message: "RMA processed: " + rec.RMAID, RMA: &rec}, nil
}
