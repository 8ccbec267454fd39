// Package mathsolver solves single-variable linear equations and
// produces a step-by-step explanation.
package mathsolver

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
)

const ToolName = "MathSolver"

const stateDoc = "math_problems_data"

const (
	OpAddProblem   = "add_problem"
	OpSolveProblem = "solve_problem"
)

// matches equations like '3x + 7 = 22' or '5 * y - 10 = 40'
var equationRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*\*?\s*([a-zA-Z])\s*([+\-])\s*(\d+(?:\.\d+)?)\s*=\s*(\d+(?:\.\d+)?)$`)

// Request represents the tool input.
type Request struct {
	Operation   string `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=add_problem,enum=solve_problem" validate:"required,oneof=add_problem solve_problem"`
	ProblemID   string `json:"problem_id" yaml:"problem_id" jsonschema:"title=problem_id,description=A unique identifier for the problem." validate:"required"`
	Statement   string `json:"statement,omitempty" yaml:"statement,omitempty" jsonschema:"title=statement,description=The linear equation to solve (e.g. '3x + 7 = 22')."`
	ProblemType string `json:"problem_type,omitempty" yaml:"problem_type,omitempty" jsonschema:"title=problem_type,description=The problem category.,default=algebra"`
}

// Problem is a stored problem statement.
type Problem struct {
	ProblemID   string `json:"problem_id" yaml:"problem_id"`
	Statement   string `json:"statement" yaml:"statement"`
	ProblemType string `json:"problem_type" yaml:"problem_type"`
}

// Solution is a solved problem with its explanation.
type Solution struct {
	SolutionID    string  `json:"solution_id" yaml:"solution_id"`
	ProblemID     string  `json:"problem_id" yaml:"problem_id"`
	SolutionValue float64 `json:"solution_value" yaml:"solution_value"`
	Explanation   string  `json:"explanation" yaml:"explanation"`
}

// Response represents the tool output.
type Response struct {
	Problem  *Problem  `json:"problem,omitempty" yaml:"problem,omitempty"`
	Solution *Solution `json:"solution,omitempty" yaml:"solution,omitempty"`
}

type state struct {
	Problems  map[string]Problem  `json:"problems"`
	Solutions map[string]Solution `json:"solutions"`
}

// Tool solves linear equations of the form 'ax + b = c'.
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
		description: "Solves single-variable linear equations (e.g., '3x + 7 = 22') and explains the steps.",
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
	if s.Problems == nil {
		s.Problems = make(map[string]Problem)
	}
	if s.Solutions == nil {
		s.Solutions = make(map[string]Solution)
	}

	switch req.Operation {
	case OpAddProblem:
		if req.Statement == "" {
			return nil, errors.New("statement is required")
		}
		if _, ok := s.Problems[req.ProblemID]; ok {
			return nil, errors.Errorf("problem already exists: %s", req.ProblemID)
		}
		problemType := req.ProblemType
		if problemType == "" {
			problemType = "algebra"
		}
		problem := Problem{
			ProblemID:   req.ProblemID,
			Statement:   req.Statement,
			ProblemType: problemType,
		}
		s.Problems[req.ProblemID] = problem
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{Problem: &problem}, nil

	case OpSolveProblem:
		problem, ok := s.Problems[req.ProblemID]
		if !ok {
			return nil, errors.Errorf("problem not found: %s", req.ProblemID)
		}
		solution, err := solve(problem)
		if err != nil {
			return nil, err
		}
		s.Solutions[solution.SolutionID] = *solution
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{Solution: solution}, nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}

func solve(problem Problem) (*Solution, error) {
	statement := strings.TrimSpace(strings.NewReplacer("Solve for", "", ":", "").Replace(problem.Statement))

	m := equationRe.FindStringSubmatch(statement)
	if m == nil {
		return nil, errors.New("could not parse the equation, use the format 'ax + b = c'")
	}

	a, _ := strconv.ParseFloat(m[1], 64)
	variable := m[2]
	op := m[3]
	b, _ := strconv.ParseFloat(m[4], 64)
	c, _ := strconv.ParseFloat(m[5], 64)

	if a == 0 {
		return nil, errors.New("cannot solve for a zero coefficient")
	}

	steps := []string{
		fmt.Sprintf("1. Start with the equation: %v%s %s %v = %v", a, variable, op, b, c),
	}

	var rhs float64
	if op == "+" {
		// ax + b = c  =>  ax = c - b
		rhs = c - b
		steps = append(steps, fmt.Sprintf("2. Subtract %v from both sides: %v%s = %v - %v => %v%s = %v", b, a, variable, c, b, a, variable, rhs))
	} else {
		// ax - b = c  =>  ax = c + b
		rhs = c + b
		steps = append(steps, fmt.Sprintf("2. Add %v to both sides: %v%s = %v + %v => %v%s = %v", b, a, variable, c, b, a, variable, rhs))
	}

	solution := rhs / a
	steps = append(steps,
		fmt.Sprintf("3. Divide by %v: %s = %v / %v", a, variable, rhs, a),
		fmt.Sprintf("4. The solution is %s = %v", variable, solution),
	)

	return &Solution{
		SolutionID:    "SOL-" + problem.ProblemID,
		ProblemID:     problem.ProblemID,
		SolutionValue: solution,
		Explanation:   strings.Join(steps, "\n"),
	}, nil
}
