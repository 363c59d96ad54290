package gen

import (
	"context"
	"time"

	"go.uber.org/zap"

	"courtroom/internal/types"
)

// fallbackLines are the neutral in-character substitutes used when the
// generator fails after retries. The trial must always proceed.
var fallbackLines = map[types.Role]string{
	types.RoleJudge:             "The court has noted the submission. Let us proceed.",
	types.RolePetitionerCounsel: "We maintain our position, your honor.",
	types.RoleRespondentCounsel: "We maintain our position, your honor.",
	types.RoleWitness:           "I have nothing further to add to my earlier answer.",
	types.RoleClerk:             "The record reflects the last exchange.",
	types.RoleSystem:            "The proceeding continues.",
}

// FallbackLine returns the neutral substitute for a role.
func FallbackLine(role types.Role) string {
	if line, ok := fallbackLines[role]; ok {
		return line
	}
	return fallbackLines[types.RoleSystem]
}

// Resilient wraps any TextGenerator with the engine's collaborator
// contract: a per-call timeout, bounded retries, and a neutral fallback
// line instead of an error so a generation failure never stalls a turn.
type Resilient struct {
	inner   types.TextGenerator
	timeout time.Duration
	retries int
	log     *zap.Logger
}

// NewResilient builds the wrapper. retries is the number of attempts after
// the first; zero or negative means a single attempt. A nil logger is
// replaced with a no-op.
func NewResilient(inner types.TextGenerator, timeout time.Duration, retries int, log *zap.Logger) *Resilient {
	if log == nil {
		log = zap.NewNop()
	}
	if retries < 0 {
		retries = 0
	}
	return &Resilient{inner: inner, timeout: timeout, retries: retries, log: log}
}

// Generate never returns an error: after the attempt budget it substitutes
// the role's fallback line.
func (r *Resilient) Generate(ctx context.Context, req types.GenRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		callCtx := ctx
		cancel := func() {}
		if r.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		}
		text, err := r.inner.Generate(callCtx, req)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		r.log.Debug("generation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.String("role", string(req.Role)),
			zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	r.log.Warn("text generation failed, substituting fallback line",
		zap.String("role", string(req.Role)),
		zap.Error(lastErr))
	return FallbackLine(req.Role), nil
}
