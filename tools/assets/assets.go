// Package assets manages an inventory of physical assets.
package assets

import (
	"context"
	"reflect"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
)

const ToolName = "AssetManager"

const stateDoc = "asset_records"

const (
	OpAdd          = "add_asset"
	OpGet          = "get_asset_details"
	OpUpdateStatus = "update_asset_status"
	OpList         = "list_assets"
)

// DefaultStatus is assigned to newly added assets.
const DefaultStatus = "active"

// Asset is a tracked asset record.
type Asset struct {
	AssetID      string `json:"asset_id" yaml:"asset_id"`
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	Location     string `json:"location" yaml:"location"`
	Status       string `json:"status" yaml:"status"`
	PurchaseDate string `json:"purchase_date" yaml:"purchase_date"`
}

// Request represents the tool input.
type Request struct {
	Operation    string `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=add_asset,enum=get_asset_details,enum=update_asset_status,enum=list_assets" validate:"required,oneof=add_asset get_asset_details update_asset_status list_assets"`
	AssetID      string `json:"asset_id,omitempty" yaml:"asset_id,omitempty" jsonschema:"title=asset_id,description=A unique identifier for the asset (e.g. a serial number)."`
	AssetName    string `json:"asset_name,omitempty" yaml:"asset_name,omitempty" jsonschema:"title=asset_name,description=The name of the asset."`
	AssetType    string `json:"asset_type,omitempty" yaml:"asset_type,omitempty" jsonschema:"title=asset_type,description=The type of asset (e.g. 'laptop'; 'server'; 'vehicle')."`
	Location     string `json:"location,omitempty" yaml:"location,omitempty" jsonschema:"title=location,description=The current physical location of the asset."`
	PurchaseDate string `json:"purchase_date,omitempty" yaml:"purchase_date,omitempty" jsonschema:"title=purchase_date,description=The date of purchase (YYYY-MM-DD)."`
	Status       string `json:"status,omitempty" yaml:"status,omitempty" jsonschema:"title=status,description=The new status (e.g. 'active'; 'in_repair'; 'retired')."`
}

// Response represents the tool output.
type Response struct {
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
	Asset   *Asset  `json:"asset,omitempty" yaml:"asset,omitempty"`
	Assets  []Asset `json:"assets,omitempty" yaml:"assets,omitempty"`
}

type state struct {
	Assets map[string]Asset `json:"assets"`
}

// Tool manages asset records in the state store.
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
		description: "Manages the asset inventory: add assets, look up details, update status, and list records.",
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
	if s.Assets == nil {
		s.Assets = make(map[string]Asset)
	}

	switch req.Operation {
	case OpAdd:
		if req.AssetID == "" || req.AssetName == "" {
			return nil, errors.New("asset_id and asset_name are required")
		}
		if _, ok := s.Assets[req.AssetID]; ok {
			return nil, errors.Errorf("asset already exists: %s", req.AssetID)
		}
		asset := Asset{
			AssetID:      req.AssetID,
			Name:         req.AssetName,
			Type:         req.AssetType,
			Location:     req.Location,
			Status:       DefaultStatus,
			PurchaseDate: req.PurchaseDate,
		}
		s.Assets[req.AssetID] = asset
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{
			Message: "asset added: " + req.AssetID,
			Asset:   &asset,
		}, nil

	case OpGet:
		asset, ok := s.Assets[req.AssetID]
		if !ok {
			return nil, errors.Errorf("asset not found: %s", req.AssetID)
		}
		return &Response{Asset: &asset}, nil

	case OpUpdateStatus:
		asset, ok := s.Assets[req.AssetID]
		if !ok {
			return nil, errors.Errorf("asset not found: %s", req.AssetID)
		}
		if req.Status == "" {
			return nil, errors.New("status is required")
		}
		asset.Status = req.Status
		s.Assets[req.AssetID] = asset
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{
			Message: "asset status updated: " + req.AssetID,
			Asset:   &asset,
		}, nil

	case OpList:
		list := make([]Asset, 0, len(s.Assets))
		for _, asset := range s.Assets {
			list = append(list, asset)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].AssetID < list[j].AssetID })
		return &Response{Assets: list}, nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}
