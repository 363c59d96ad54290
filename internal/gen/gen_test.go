package gen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"courtroom/internal/types"
)

func TestMain(m *testing.M) {
	// go.opencensus.io starts a background stats worker at package init
	// (pulled in transitively); it is not a leak from this package.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type countingGenerator struct {
	calls int
	fail  int // fail the first N calls
	reply string
}

func (g *countingGenerator) Generate(_ context.Context, _ types.GenRequest) (string, error) {
	g.calls++
	if g.calls <= g.fail {
		return "", errors.New("upstream unavailable")
	}
	return g.reply, nil
}

func TestResilientRetriesThenSucceeds(t *testing.T) {
	inner := &countingGenerator{fail: 1, reply: "Objection noted."}
	r := NewResilient(inner, time.Second, 2, nil)
	text, err := r.Generate(context.Background(), types.GenRequest{Role: types.RoleJudge, Situation: "rule on objection"})
	require.NoError(t, err)
	assert.Equal(t, "Objection noted.", text)
	assert.Equal(t, 2, inner.calls)
}

func TestResilientFallsBackInsteadOfFailing(t *testing.T) {
	inner := &countingGenerator{fail: 100}
	r := NewResilient(inner, time.Second, 2, nil)
	text, err := r.Generate(context.Background(), types.GenRequest{Role: types.RoleWitness, Situation: "answer"})
	require.NoError(t, err, "the trial must never stall on generation failure")
	assert.Equal(t, FallbackLine(types.RoleWitness), text)
	assert.Equal(t, 3, inner.calls, "one attempt plus two retries")
}

func TestResilientStopsOnCancelledContext(t *testing.T) {
	inner := &countingGenerator{fail: 100}
	r := NewResilient(inner, time.Second, 5, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	text, err := r.Generate(ctx, types.GenRequest{Role: types.RoleJudge})
	require.NoError(t, err)
	assert.Equal(t, FallbackLine(types.RoleJudge), text)
	assert.Equal(t, 1, inner.calls, "no retries against a dead context")
}

func TestCannedDeterministicRotation(t *testing.T) {
	a := NewCanned()
	b := NewCanned()
	req := types.GenRequest{Role: types.RoleJudge, Situation: "anything"}
	for i := 0; i < 5; i++ {
		la, err := a.Generate(context.Background(), req)
		require.NoError(t, err)
		lb, err := b.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, la, lb, "two canned generators must agree")
	}
}

func TestFallbackLineCoversAllRoles(t *testing.T) {
	roles := []types.Role{
		types.RoleJudge, types.RolePetitionerCounsel, types.RoleRespondentCounsel,
		types.RoleWitness, types.RoleClerk, types.RoleSystem, types.Role("gallery"),
	}
	for _, r := range roles {
		assert.NotEmpty(t, FallbackLine(r))
	}
}
