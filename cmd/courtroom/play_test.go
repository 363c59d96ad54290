package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"courtroom/internal/types"
)

func TestParseCommandActions(t *testing.T) {
	cases := []struct {
		line string
		want types.Action
	}{
		{"argue The duty of care was plainly breached.", types.Action{
			Type: types.ActionMakeArgument, Text: "The duty of care was plainly breached.",
		}},
		{"cite cl-duty-of-care The authority is squarely on point.", types.Action{
			Type: types.ActionMakeArgument, Citation: "cl-duty-of-care", Text: "The authority is squarely on point.",
		}},
		{"rest", types.Action{Type: types.ActionRestCase}},
		{"mark ev-log", types.Action{Type: types.ActionMarkForID, Exhibit: "ev-log"}},
		{"offer ev-log", types.Action{Type: types.ActionOfferEvidence, Exhibit: "ev-log"}},
		{"object hearsay", types.Action{Type: types.ActionObject, Ground: types.GroundHearsay}},
		{"pass", types.Action{Type: types.ActionNoQuestions}},
		{"ask What did you see next?", types.Action{Type: types.ActionAskQuestion, Text: "What did you see next?"}},
		{"research warning signal", types.Action{Type: types.ActionRequestResearch, Text: "warning signal"}},
		{"sidebar exclude ev-cert", types.Action{
			Type: types.ActionRequestSidebar, Sidebar: types.SidebarExcludeEvidence, Exhibit: "ev-cert",
		}},
		{"sidebar settle", types.Action{Type: types.ActionRequestSidebar, Sidebar: types.SidebarSettlement}},
		{"settle 75000", types.Action{Type: types.ActionProposeSettlement, Amount: 75000}},
		{"counter 50000", types.Action{Type: types.ActionCounterSettlement, Amount: 50000}},
		{"accept", types.Action{Type: types.ActionAcceptSettlement}},
		{"extend", types.Action{Type: types.ActionRequestExtension}},
		{"ok", types.Action{Type: types.ActionAcknowledgeLesson}},
	}
	for _, tc := range cases {
		got, err := parseCommand(tc.line)
		if err != nil {
			t.Fatalf("parseCommand(%q) returned error: %v", tc.line, err)
		}
		if got != tc.want {
			t.Fatalf("parseCommand(%q) = %+v, want %+v", tc.line, got, tc.want)
		}
	}
}

func TestParseCommandRejectsMalformedInput(t *testing.T) {
	bad := []string{
		"",
		"argue",
		"mark",
		"object squinting",
		"sidebar teleport",
		"settle zero",
		"counter -5",
		"frobnicate the bench",
	}
	for _, line := range bad {
		if _, err := parseCommand(line); err == nil {
			t.Fatalf("parseCommand(%q) accepted malformed input", line)
		}
	}
}

func TestCourtErrorRewritesSentinels(t *testing.T) {
	if msg := courtError(types.ErrNotPlayerTurn); !strings.Contains(msg, "not your turn") {
		t.Fatalf("unexpected rewrite: %s", msg)
	}
	if msg := courtError(types.ErrResourceExhausted); !strings.Contains(msg, "spent") {
		t.Fatalf("unexpected rewrite: %s", msg)
	}
}

func TestCaseValidateReportsCounts(t *testing.T) {
	logger = zap.NewNop()

	output := captureOutput(t, func() {
		if err := runCaseValidate(&cobra.Command{}, []string{"testdata/okafor_v_meridian.yaml"}); err != nil {
			t.Fatalf("runCaseValidate returned error: %v", err)
		}
	})

	if !strings.Contains(output, "OK:") || !strings.Contains(output, "witnesses: 2") {
		t.Fatalf("expected validation summary, got: %s", output)
	}
}

func TestCaseShowListsParties(t *testing.T) {
	logger = zap.NewNop()

	output := captureOutput(t, func() {
		if err := runCaseShow(&cobra.Command{}, []string{"testdata/okafor_v_meridian.yaml"}); err != nil {
			t.Fatalf("runCaseShow returned error: %v", err)
		}
	})

	for _, want := range []string{"Petitioner:", "Respondent:", "Witnesses:", "Evidence:"} {
		if !strings.Contains(output, want) {
			t.Fatalf("case summary missing %q, got: %s", want, output)
		}
	}
}

func TestPrinciplesListsCatalogue(t *testing.T) {
	logger = zap.NewNop()

	output := captureOutput(t, func() {
		if err := runPrinciples(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runPrinciples returned error: %v", err)
		}
	})

	if !strings.Contains(output, "lay-foundation-first") {
		t.Fatalf("expected principle listing, got: %s", output)
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
