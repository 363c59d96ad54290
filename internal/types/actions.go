package types

import "fmt"

// ActionType enumerates every move a participant can make. Unknown action
// strings are rejected at construction time by ParseActionType; the
// orchestrator dispatches on the typed value, never on raw strings.
type ActionType string

const (
	ActionMakeArgument          ActionType = "make_argument"
	ActionPresentEvidence       ActionType = "present_evidence"
	ActionMarkForID             ActionType = "mark_for_identification"
	ActionOfferEvidence         ActionType = "offer_evidence"
	ActionWithdrawEvidence      ActionType = "withdraw_evidence"
	ActionChallengeAuthenticity ActionType = "challenge_authenticity"
	ActionObject                ActionType = "object"
	ActionCallWitness           ActionType = "call_witness"
	ActionAskQuestion           ActionType = "ask_question"
	ActionNoQuestions           ActionType = "no_questions"
	ActionRestCase              ActionType = "rest_case"
	ActionRequestResearch       ActionType = "request_research"
	ActionRequestSidebar        ActionType = "request_sidebar"
	ActionRequestExtension      ActionType = "request_extension"
	ActionProposeSettlement     ActionType = "propose_settlement"
	ActionAcceptSettlement      ActionType = "accept_settlement"
	ActionRejectSettlement      ActionType = "reject_settlement"
	ActionCounterSettlement     ActionType = "counter_settlement"
	ActionAcknowledgeLesson     ActionType = "acknowledge_lesson"
)

var knownActionTypes = map[ActionType]bool{
	ActionMakeArgument:          true,
	ActionPresentEvidence:       true,
	ActionMarkForID:             true,
	ActionOfferEvidence:         true,
	ActionWithdrawEvidence:      true,
	ActionChallengeAuthenticity: true,
	ActionObject:                true,
	ActionCallWitness:           true,
	ActionAskQuestion:           true,
	ActionNoQuestions:           true,
	ActionRestCase:              true,
	ActionRequestResearch:       true,
	ActionRequestSidebar:        true,
	ActionRequestExtension:      true,
	ActionProposeSettlement:     true,
	ActionAcceptSettlement:      true,
	ActionRejectSettlement:      true,
	ActionCounterSettlement:     true,
	ActionAcknowledgeLesson:     true,
}

// ParseActionType validates a raw action string.
func ParseActionType(s string) (ActionType, error) {
	at := ActionType(s)
	if !knownActionTypes[at] {
		return "", fmt.Errorf("%w: %q", ErrUnknownActionType, s)
	}
	return at, nil
}

// ObjectionGround is the stated legal basis of an objection.
type ObjectionGround string

const (
	GroundLeading          ObjectionGround = "leading"
	GroundHearsay          ObjectionGround = "hearsay"
	GroundRelevance        ObjectionGround = "relevance"
	GroundSpeculation      ObjectionGround = "speculation"
	GroundArgumentative    ObjectionGround = "argumentative"
	GroundCompound         ObjectionGround = "compound"
	GroundAskedAndAnswered ObjectionGround = "asked_and_answered"
	GroundFoundation       ObjectionGround = "foundation"
	GroundNone             ObjectionGround = ""
)

// KnownGrounds lists every recognized objection ground.
func KnownGrounds() []ObjectionGround {
	return []ObjectionGround{
		GroundLeading, GroundHearsay, GroundRelevance, GroundSpeculation,
		GroundArgumentative, GroundCompound, GroundAskedAndAnswered,
		GroundFoundation,
	}
}

// SidebarType classifies a sidebar request.
type SidebarType string

const (
	SidebarExcludeEvidence SidebarType = "exclude_evidence"
	SidebarAdjournment     SidebarType = "adjournment"
	SidebarClarification   SidebarType = "clarification"
	SidebarSettlement      SidebarType = "settlement"
)

// Action is one submitted move. Only the fields relevant to the action type
// need to be populated; the orchestrator validates the rest.
type Action struct {
	Type     ActionType      `json:"type"`
	Text     string          `json:"text,omitempty"`     // spoken content: argument, question, reason
	Exhibit  string          `json:"exhibit,omitempty"`  // evidence item id
	Witness  string          `json:"witness,omitempty"`  // witness id
	Ground   ObjectionGround `json:"ground,omitempty"`   // objection ground
	Sidebar  SidebarType     `json:"sidebar,omitempty"`  // sidebar request type
	Citation string          `json:"citation,omitempty"` // case-law citation id
	Amount   float64         `json:"amount,omitempty"`   // settlement amount
}
