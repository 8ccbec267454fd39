// Package synthdata generates synthetic test records from named field
// kinds and keeps a log of past generations.
package synthdata

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
	"github.com/google/uuid"
)

const ToolName = "SyntheticDataGenerator"

const stateDoc = "synthetic_data_log"

const (
	OpGenerate        = "generate"
	OpListKinds       = "list_kinds"
	OpListGenerations = "list_generations"
)

// MaxCount caps records per generation.
const MaxCount = 1000

var kinds = map[string]func(f *gofakeit.Faker) any{
	"name":    func(f *gofakeit.Faker) any { return f.Name() },
	"email":   func(f *gofakeit.Faker) any { return f.Email() },
	"address": func(f *gofakeit.Faker) any { return f.Address().Address },
	"phone":   func(f *gofakeit.Faker) any { return f.Phone() },
	"uuid":    func(f *gofakeit.Faker) any { return f.UUID() },
	"int":     func(f *gofakeit.Faker) any { return f.Number(0, 10000) },
	"float":   func(f *gofakeit.Faker) any { return f.Float64Range(0, 10000) },
	"date": func(f *gofakeit.Faker) any {
		return f.DateRange(time.Now().AddDate(-5, 0, 0), time.Now()).Format("2006-01-02")
	},
	"bool":    func(f *gofakeit.Faker) any { return f.Bool() },
	"company": func(f *gofakeit.Faker) any { return f.Company() },
}

// Request represents the tool input.
type Request struct {
	Operation string            `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=generate,enum=list_kinds,enum=list_generations" validate:"required,oneof=generate list_kinds list_generations"`
	Fields    map[string]string `json:"fields,omitempty" yaml:"fields,omitempty" jsonschema:"title=fields,description=Field name to kind mapping (e.g. {'customer': 'name'; 'contact': 'email'})."`
	Count     int               `json:"count,omitempty" yaml:"count,omitempty" jsonschema:"title=count,description=Number of records to generate.,default=10" validate:"omitempty,gte=1,lte=1000"`
	Seed      uint64            `json:"seed,omitempty" yaml:"seed,omitempty" jsonschema:"title=seed,description=Optional seed for reproducible output."`
}

// Generation records one completed generation run.
type Generation struct {
	GenerationID string            `json:"generation_id" yaml:"generation_id"`
	Fields       map[string]string `json:"fields" yaml:"fields"`
	Count        int               `json:"count" yaml:"count"`
	GeneratedAt  string            `json:"generated_at" yaml:"generated_at"`
}

// Response represents the tool output.
type Response struct {
	Generation  *Generation      `json:"generation,omitempty" yaml:"generation,omitempty"`
	Records     []map[string]any `json:"records,omitempty" yaml:"records,omitempty"`
	Kinds       []string         `json:"kinds,omitempty" yaml:"kinds,omitempty"`
	Generations []Generation     `json:"generations,omitempty" yaml:"generations,omitempty"`
}

type state struct {
	Generations []Generation `json:"generations"`
}

// Tool produces fake records and logs each run.
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
		description: "Generates synthetic records from named field kinds (name, email, address, uuid, int, float, date, bool, company) for testing and demos.",
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
	switch req.Operation {
	case OpGenerate:
		return t.generate(ctx, req)

	case OpListKinds:
		list := make([]string, 0, len(kinds))
		for kind := range kinds {
			list = append(list, kind)
		}
		sort.Strings(list)
		return &Response{Kinds: list}, nil

	case OpListGenerations:
		var s state
		if _, err := t.store.Load(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{Generations: s.Generations}, nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}

func (t *Tool) generate(ctx context.Context, req *Request) (*Response, error) {
	if len(req.Fields) == 0 {
		return nil, errors.New("fields is required")
	}
	for field, kind := range req.Fields {
		if _, ok := kinds[strings.ToLower(kind)]; !ok {
			return nil, errors.Errorf("unknown kind for field %s: %s", field, kind)
		}
	}
	count := req.Count
	if count == 0 {
		count = 10
	}
	if count > MaxCount {
		return nil, errors.Errorf("count exceeds the maximum of %d", MaxCount)
	}

	// fields are generated in a fixed order, so a seed yields
	// reproducible records
	fields := make([]string, 0, len(req.Fields))
	for field := range req.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	faker := gofakeit.New(req.Seed)
	records := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		record := make(map[string]any, len(fields))
		for _, field := range fields {
			record[field] = kinds[strings.ToLower(req.Fields[field])](faker)
		}
		records = append(records, record)
	}

	gen := Generation{
		GenerationID: uuid.New().String(),
		Fields:       req.Fields,
		Count:        count,
		GeneratedAt:  time.Now().Format(time.RFC3339),
	}

	var s state
	if _, err := t.store.Load(ctx, stateDoc, &s); err != nil {
		return nil, err
	}
	s.Generations = append(s.Generations, gen)
	if err := t.store.Save(ctx, stateDoc, &s); err != nil {
		return nil, err
	}
	return &Response{Generation: &gen, Records: records}, nil
}
