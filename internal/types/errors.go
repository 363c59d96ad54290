package types

import "errors"

// Error taxonomy of the engine. Validation errors are raised strictly before
// any session mutation, so a rejected action never corrupts state.
var (
	// ErrInvalidActionForPhase rejects an action absent from the current
	// phase/turn whitelist.
	ErrInvalidActionForPhase = errors.New("action not available in current phase")

	// ErrInvalidEvidenceState rejects an illegal evidence lifecycle
	// transition; the item's status is left unchanged.
	ErrInvalidEvidenceState = errors.New("invalid evidence state transition")

	// ErrResourceExhausted signals an empty research/sidebar/extension
	// budget. Callers downgrade the action to a no-op with an explanatory
	// message rather than failing the turn.
	ErrResourceExhausted = errors.New("resource budget exhausted")

	// ErrTextGenerationFailure signals the external text generator failed
	// after retries; a neutral in-character fallback line is substituted.
	ErrTextGenerationFailure = errors.New("text generation failed")

	// ErrUnknownActionType rejects an unrecognized action string at
	// construction time.
	ErrUnknownActionType = errors.New("unknown action type")

	// ErrNotPlayerTurn rejects a player action while an AI role holds the
	// floor.
	ErrNotPlayerTurn = errors.New("not the player's turn")

	// ErrSessionOver rejects any action after the trial reached game over.
	ErrSessionOver = errors.New("session is over")
)
