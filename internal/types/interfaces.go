package types

import "context"

// GenRequest carries everything the external text generator needs to voice
// one courtroom participant. Persona and Situation are free text; they are
// the only place unstructured prose crosses the engine boundary.
type GenRequest struct {
	Role      Role   // who is speaking
	Persona   string // personality description for the speaker
	Situation string // what is happening and what they should respond to
}

// TextGenerator produces the utterance of a courtroom participant. The
// engine treats it as a black box with a bounded-retry/timeout contract;
// implementations live in internal/gen.
type TextGenerator interface {
	Generate(ctx context.Context, req GenRequest) (string, error)
}

// GeneratorFunc adapts a function to the TextGenerator interface.
type GeneratorFunc func(ctx context.Context, req GenRequest) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req GenRequest) (string, error) {
	return f(ctx, req)
}
