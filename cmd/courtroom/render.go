package main

import (
	"fmt"
	"strings"

	"courtroom/cmd/courtroom/ui"
	"courtroom/internal/analysis"
	"courtroom/internal/casefile"
	"courtroom/internal/education"
	"courtroom/internal/trial"
	"courtroom/internal/types"
)

// renderer turns engine output into styled terminal text. It knows which
// side the player argues so counsel lines color differently from the
// opponent's.
type renderer struct {
	st         ui.Styles
	playerSide types.Side
}

func newRenderer(playerSide types.Side) *renderer {
	return &renderer{st: ui.DefaultStyles(), playerSide: playerSide}
}

func (r *renderer) message(m types.Message) string {
	var style = r.st.Body
	switch m.Role {
	case types.RoleJudge:
		style = r.st.Judge
	case types.RoleClerk:
		style = r.st.Clerk
	case types.RoleWitness:
		style = r.st.Witness
	case types.RolePetitionerCounsel:
		if r.playerSide == types.SidePetitioner {
			style = r.st.Counsel
		} else {
			style = r.st.Opponent
		}
	case types.RoleRespondentCounsel:
		if r.playerSide == types.SideRespondent {
			style = r.st.Counsel
		} else {
			style = r.st.Opponent
		}
	}
	return fmt.Sprintf("%s %s", style.Render(m.Speaker+":"), m.Text)
}

func (r *renderer) event(ev types.Event) string {
	var style = r.st.Info
	switch ev.Kind {
	case types.EventObjectionSustained, types.EventEvidenceExcluded, types.EventWitnessBreakdown:
		style = r.st.Bad
	case types.EventContradictionFound, types.EventEvidenceAdmitted, types.EventSettlementReached:
		style = r.st.Good
	case types.EventJudgeWarning:
		style = r.st.Warning
	}
	line := fmt.Sprintf("[%s]", ev.Kind)
	if ev.Detail != "" {
		line += " " + ev.Detail
	}
	return style.Render(line)
}

// result prints everything one processed turn produced.
func (r *renderer) result(res *trial.TurnResult) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	for _, m := range res.Messages {
		b.WriteString(r.message(m))
		b.WriteByte('\n')
	}
	for _, ev := range res.Events {
		b.WriteString("  ")
		b.WriteString(r.event(ev))
		b.WriteByte('\n')
	}
	if res.Warning != "" {
		b.WriteString(r.st.Warning.Render("⚠ " + res.Warning))
		b.WriteByte('\n')
	}
	if res.Timing != nil && res.Timing.Expired {
		b.WriteString(r.st.Warning.Render("The turn clock ran out on that one."))
		b.WriteByte('\n')
	}
	if res.Flashcard != nil {
		b.WriteString(r.flashcard(res.Flashcard))
		b.WriteByte('\n')
	}
	if res.PhaseAdvanced && res.NewPhase != nil {
		b.WriteString(r.st.Badge.Render(res.NewPhase.String()))
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *renderer) flashcard(f *education.Flashcard) string {
	p := f.Principle
	body := fmt.Sprintf("%s\n\n%s\n\nAvoid: %s\nInstead: %s\n\nType 'ok' to continue.",
		r.st.Title.Render("Learning moment: "+p.ID),
		p.Rule, p.WrongExample, p.RightExample)
	return r.st.Card.Render(body)
}

func (r *renderer) status(eng *trial.Engine, sess *trial.TrialSession) string {
	var b strings.Builder
	jv := sess.JudgeView()
	fmt.Fprintf(&b, "Phase: %s", sess.Phase().String())
	if sp := sess.SubPhase(); sp != types.SubPhaseNone {
		fmt.Fprintf(&b, " (%s)", string(sp))
	}
	fmt.Fprintf(&b, "  turn %d\n", sess.PhaseTurn())
	fmt.Fprintf(&b, "Bench: %s is %s, patience %s, %d warnings\n",
		jv.Personality, string(jv.Mood), jv.PatienceBand, jv.Warnings)
	if name, ok := sess.CurrentWitness(); ok {
		fmt.Fprintf(&b, "On the stand: %s\n", name)
	}
	rv := sess.ResearchView()
	sv := sess.SidebarView()
	fmt.Fprintf(&b, "Research left: %d   Sidebars left: %d\n", rv.SearchesLeft, sv.RequestsLeft)
	fmt.Fprintf(&b, "Available: %s\n", strings.Join(actionNames(eng.AvailableActions(sess)), ", "))
	return r.st.Body.Render(b.String())
}

func actionNames(acts []types.ActionType) []string {
	out := make([]string, len(acts))
	for i, a := range acts {
		out[i] = string(a)
	}
	return out
}

func (r *renderer) evidence(sess *trial.TrialSession) string {
	var b strings.Builder
	b.WriteString(r.st.Title.Render("Exhibits"))
	b.WriteByte('\n')
	for _, it := range sess.EvidenceView() {
		mark := "  "
		if it.Side == r.playerSide {
			mark = "* "
		}
		flag := ""
		if it.AuthenticityChallenged {
			flag = " (authenticity challenged)"
		}
		fmt.Fprintf(&b, "%s%-10s %-28s %s [%s]%s\n", mark, it.ID, it.Title, it.Exhibit, it.Status, flag)
	}
	b.WriteString(r.st.Muted.Render("* yours"))
	b.WriteByte('\n')
	return b.String()
}

func (r *renderer) witnesses(sess *trial.TrialSession) string {
	var b strings.Builder
	b.WriteString(r.st.Title.Render("Witnesses"))
	b.WriteByte('\n')
	for _, wv := range sess.WitnessViews() {
		state := string(wv.Reaction)
		if wv.Excused {
			state = "excused"
		}
		fmt.Fprintf(&b, "  %-12s %-20s %-10s %s, %d%% drawn out, %d contradictions\n",
			wv.ID, wv.Name, string(wv.Side), state, wv.RevealPercent, wv.Contradictions)
		for _, h := range wv.Hints {
			fmt.Fprintf(&b, "    hint: %s\n", r.st.Muted.Render(h))
		}
	}
	return b.String()
}

func (r *renderer) score(sess *trial.TrialSession) string {
	sc := sess.Score()
	var b strings.Builder
	b.WriteString(r.st.Title.Render("Scorecard"))
	b.WriteByte('\n')
	for _, cat := range types.ScoreCategories() {
		fmt.Fprintf(&b, "  %-22s %6.1f\n", string(cat), sc.Categories[cat])
	}
	fmt.Fprintf(&b, "  %-22s %6.1f\n", "total", sc.Total)
	fmt.Fprintf(&b, "  %-22s %6.1f\n", "judge favor", sc.JudgeFavor)
	return b.String()
}

func (r *renderer) report(rep *analysis.Report) string {
	var b strings.Builder
	b.WriteString(r.st.RenderDivider(52))
	b.WriteByte('\n')
	b.WriteString(r.st.Title.Render("Post-trial analysis"))
	b.WriteByte('\n')
	if rep.Settlement != nil {
		fmt.Fprintf(&b, "Settled for %.0f after %d rounds of negotiation.\n",
			rep.Settlement.Amount, rep.Settlement.Rounds)
	}
	fmt.Fprintf(&b, "Grade: %s  (%.1f of an estimated best %.1f)\n",
		r.st.Badge.Render(rep.Grade), rep.Score.Total, rep.OptimalScore)
	if len(rep.TurningPoints) > 0 {
		b.WriteString(r.st.Subtitle.Render("Turning points"))
		b.WriteByte('\n')
		for _, tp := range rep.TurningPoints {
			fmt.Fprintf(&b, "  turn %d (%s): %s (%+.1f)\n",
				tp.Entry.Index, tp.Entry.Phase.String(), tp.Entry.Summary, tp.Impact)
		}
	}
	if len(rep.Missed) > 0 {
		b.WriteString(r.st.Subtitle.Render("Missed opportunities"))
		b.WriteByte('\n')
		for _, m := range rep.Missed {
			fmt.Fprintf(&b, "  %s: %s\n", m.Phase.String(), m.Advice)
		}
	}
	if len(rep.Recommendations) > 0 {
		b.WriteString(r.st.Subtitle.Render("Recommended study"))
		b.WriteByte('\n')
		for _, rec := range rep.Recommendations {
			fmt.Fprintf(&b, "  %s (%.1f): %s\n", string(rec.Category), rec.SubScore, rec.Principle.Rule)
		}
	}
	return b.String()
}

func describeCase(rec *casefile.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rec.Title)
	if rec.Court != "" {
		fmt.Fprintf(&b, "%s\n", rec.Court)
	}
	fmt.Fprintf(&b, "\nPetitioner: %s (counsel %s)\n", rec.Petitioner.Name, rec.Petitioner.Counsel)
	fmt.Fprintf(&b, "Respondent: %s (counsel %s)\n", rec.Respondent.Name, rec.Respondent.Counsel)
	if rec.Compensation > 0 {
		fmt.Fprintf(&b, "Claimed: %.0f\n", rec.Compensation)
	}
	if len(rec.Issues) > 0 {
		b.WriteString("\nIssues:\n")
		for _, is := range rec.Issues {
			fmt.Fprintf(&b, "  - %s\n", is)
		}
	}
	b.WriteString("\nWitnesses:\n")
	for _, w := range rec.Witnesses {
		fmt.Fprintf(&b, "  %-12s %-20s %-10s %s\n", w.ID, w.Name, string(w.Side), w.Summary)
	}
	b.WriteString("\nEvidence:\n")
	for _, e := range rec.Evidence {
		fmt.Fprintf(&b, "  %-12s %-10s %s\n", e.ID, string(e.Side), e.Title)
	}
	return b.String()
}
