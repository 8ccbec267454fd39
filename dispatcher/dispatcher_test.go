package dispatcher_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/dispatcher"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingInput struct {
	Message string `json:"message,omitempty" jsonschema:"title=message"`
}

type pingOutput struct {
	Pong string `json:"pong"`
}

type pingTool struct {
	name       string
	funcParams any
}

var _ tools.Tool[pingInput, pingOutput] = (*pingTool)(nil)

func newPingTool(t *testing.T, name string) *pingTool {
	t.Helper()
	sc, err := schema.New(reflect.TypeOf(pingInput{}))
	require.NoError(t, err)
	return &pingTool{name: name, funcParams: sc.Parameters}
}

func (p *pingTool) Name() string        { return p.name }
func (p *pingTool) Description() string { return "replies with pong" }
func (p *pingTool) Parameters() any     { return p.funcParams }

func (p *pingTool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, p, input)
}

func (p *pingTool) Run(_ context.Context, req *pingInput) (*pingOutput, error) {
	return &pingOutput{Pong: p.name + ":" + req.Message}, nil
}

func Test_AddRoute(t *testing.T) {
	reg := tools.NewRegistry().MustRegister(newPingTool(t, "Backup"))
	d := dispatcher.New(reg)

	require.NoError(t, d.AddRoute("backup", "Backup"))

	err := d.AddRoute("backup", "Backup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "route already exists")

	err = d.AddRoute("restore", "Unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrToolNotFound))

	err = d.AddRoute("  ", "Backup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefix is required")
}

func Test_Match(t *testing.T) {
	reg := tools.NewRegistry().MustRegister(
		newPingTool(t, "Backup"),
		newPingTool(t, "BackupSchedule"),
	)
	d := dispatcher.New(reg).
		MustAddRoute("backup", "Backup").
		MustAddRoute("backup schedule", "BackupSchedule")

	// longest prefix wins
	route, rest, err := d.Match("Backup schedule the orders database")
	require.NoError(t, err)
	assert.Equal(t, "BackupSchedule", route.Tool)
	assert.Equal(t, "the orders database", rest)

	route, rest, err = d.Match("backup the orders database")
	require.NoError(t, err)
	assert.Equal(t, "Backup", route.Tool)
	assert.Equal(t, "the orders database", rest)

	route, rest, err = d.Match("BACKUP")
	require.NoError(t, err)
	assert.Equal(t, "Backup", route.Tool)
	assert.Empty(t, rest)

	// prefix must end on a word boundary
	_, _, err = d.Match("backups everywhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dispatcher.ErrNoIntent))

	_, _, err = d.Match("what is the weather")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dispatcher.ErrNoIntent))
}

func Test_Match_CaseFolding(t *testing.T) {
	reg := tools.NewRegistry().MustRegister(newPingTool(t, "Backup"))

	// lowercasing İ yields i plus a combining dot and grows the string by a
	// byte, the match must stay within bounds
	d := dispatcher.New(reg).MustAddRoute("İx", "Backup")
	assert.NotPanics(t, func() {
		route, rest, err := d.Match("İX now")
		require.NoError(t, err)
		assert.Equal(t, "Backup", route.Tool)
		assert.Equal(t, "now", rest)

		route, rest, err = d.Match("İX")
		require.NoError(t, err)
		assert.Equal(t, "Backup", route.Tool)
		assert.Empty(t, rest)
	})
}

func Test_Dispatch(t *testing.T) {
	ctx := context.Background()
	reg := tools.NewRegistry().MustRegister(newPingTool(t, "Backup"))
	d := dispatcher.New(reg).MustAddRoute("backup", "Backup")

	out, err := d.Dispatch(ctx, "backup the database", `{"message": "orders"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pong": "Backup:orders"}`, out)

	_, err = d.Dispatch(ctx, "unknown command", `{}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dispatcher.ErrNoIntent))
}

func Test_Routes(t *testing.T) {
	reg := tools.NewRegistry().MustRegister(newPingTool(t, "Backup"))
	d := dispatcher.New(reg).
		MustAddRoute("backup now", "Backup").
		MustAddRoute("backup", "Backup")

	routes := d.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "backup now", routes[0].Prefix)
	assert.Equal(t, "backup", routes[1].Prefix)
}
