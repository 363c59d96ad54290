package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"courtroom/internal/casefile"
	"courtroom/internal/config"
	"courtroom/internal/gen"
	"courtroom/internal/logging"
	"courtroom/internal/trial"
	"courtroom/internal/types"
)

const playHelp = `In-session commands:
  argue <text>             make an argument
  cite <authority> <text>  argue with a researched authority
  rest                     rest your case for this phase
  mark <exhibit>           mark an exhibit for identification
  offer <exhibit>          offer a marked exhibit into evidence
  present <exhibit>        publish an admitted exhibit
  withdraw <exhibit>       withdraw your pending exhibit
  challenge <exhibit>      challenge an opposing exhibit's authenticity
  call <witness>           call a witness out of queue order
  ask <question>           question the witness on the stand
  object <ground>          object (leading, hearsay, relevance, speculation,
                           argumentative, compound, asked_and_answered, foundation)
  pass                     no objection / no further questions
  research <query>         search case law (limited budget)
  sidebar exclude <exhibit> | adjourn | clarify <text> | settle
  settle <amount>          propose a settlement figure
  counter <amount>         counter the pending offer
  accept | decline         resolve the pending offer
  extend                   ask for more time in this phase
  ok                       acknowledge the pending lesson

  status, evidence, witnesses, score, transcript, help, quit`

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rec, err := casefile.Load(args[0])
	if err != nil {
		return err
	}
	playerSide := types.Side(side)
	if playerSide != types.SidePetitioner && playerSide != types.SideRespondent {
		return fmt.Errorf("unknown side %q", side)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nCourt is adjourned.")
		cancel()
	}()

	generator, err := buildGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	eng, err := trial.NewEngine(cfg, generator, logger)
	if err != nil {
		return err
	}
	sess, res, err := eng.StartSession(ctx, rec, playerSide)
	if err != nil {
		return err
	}

	r := newRenderer(playerSide)
	fmt.Println(r.st.Title.Render(rec.Title))
	fmt.Println(r.st.Subtitle.Render(fmt.Sprintf("You appear for the %s. Type 'help' for commands.", playerSide)))
	fmt.Println(r.st.RenderDivider(52))
	fmt.Print(r.result(res))

	in := bufio.NewScanner(os.Stdin)
	for !sess.Over() && ctx.Err() == nil {
		if !sess.IsPlayerTurn() {
			aiRes, err := eng.RunAITurn(ctx, sess)
			if err != nil {
				return err
			}
			fmt.Print(r.result(aiRes))
			continue
		}

		fmt.Print(r.st.Prompt.Render("> "))
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if done, handled := localCommand(line, eng, sess, r); handled {
			if done {
				return nil
			}
			continue
		}

		act, err := parseCommand(line)
		if err != nil {
			fmt.Println(r.st.Bad.Render(err.Error()))
			continue
		}
		turnRes, err := eng.ProcessPlayerAction(ctx, sess, act)
		if err != nil {
			fmt.Println(r.st.Bad.Render(courtError(err)))
			continue
		}
		fmt.Print(r.result(turnRes))
	}
	if err := in.Err(); err != nil {
		return err
	}

	if sess.Over() {
		fmt.Print(r.report(sess.Report(eng.Principles())))
	}
	return nil
}

// buildGenerator wires the text generator: Gemini behind the resilience
// wrapper when a key is configured, stock dialogue otherwise.
func buildGenerator(ctx context.Context, cfg *config.Config) (types.TextGenerator, error) {
	key := apiKey
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		return gen.NewCanned(), nil
	}
	g, err := gen.NewGemini(ctx, key, cfg.Gen.Model)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return gen.NewResilient(g, cfg.Gen.Timeout(), cfg.Gen.Retries, logging.For(logger, logging.CategoryGen)), nil
}

// localCommand handles the non-action REPL verbs. Returns handled=false when
// the line should be parsed as a trial action.
func localCommand(line string, eng *trial.Engine, sess *trial.TrialSession, r *renderer) (done, handled bool) {
	switch strings.ToLower(line) {
	case "quit", "exit":
		fmt.Println("Leaving the courtroom.")
		return true, true
	case "help":
		fmt.Println(playHelp)
	case "status":
		fmt.Print(r.status(eng, sess))
	case "evidence":
		fmt.Print(r.evidence(sess))
	case "witnesses":
		fmt.Print(r.witnesses(sess))
	case "score":
		fmt.Print(r.score(sess))
	case "transcript":
		for _, m := range sess.Transcript() {
			fmt.Println(r.message(m))
		}
	default:
		return false, false
	}
	return false, true
}

// parseCommand turns a REPL line into a trial action.
func parseCommand(line string) (types.Action, error) {
	verb, rest, _ := strings.Cut(line, " ")
	verb = strings.ToLower(verb)
	rest = strings.TrimSpace(rest)

	needArg := func(what string) (string, error) {
		if rest == "" {
			return "", fmt.Errorf("%s requires %s", verb, what)
		}
		return rest, nil
	}

	switch verb {
	case "argue":
		text, err := needArg("the argument text")
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionMakeArgument, Text: text}, nil
	case "cite":
		id, text, ok := strings.Cut(rest, " ")
		if !ok || strings.TrimSpace(text) == "" {
			return types.Action{}, errors.New("cite requires an authority id and the argument text")
		}
		return types.Action{Type: types.ActionMakeArgument, Citation: id, Text: strings.TrimSpace(text)}, nil
	case "rest":
		return types.Action{Type: types.ActionRestCase}, nil
	case "mark":
		id, err := needArg("an exhibit id")
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionMarkForID, Exhibit: id}, nil
	case "offer":
		id, err := needArg("an exhibit id")
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionOfferEvidence, Exhibit: id}, nil
	case "present":
		id, err := needArg("an exhibit id")
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionPresentEvidence, Exhibit: id}, nil
	case "withdraw":
		id, err := needArg("an exhibit id")
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionWithdrawEvidence, Exhibit: id}, nil
	case "challenge":
		id, err := needArg("an exhibit id")
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionChallengeAuthenticity, Exhibit: id}, nil
	case "call":
		id, err := needArg("a witness id")
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionCallWitness, Witness: id}, nil
	case "ask":
		text, err := needArg("the question text")
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionAskQuestion, Text: text}, nil
	case "object":
		ground, err := needArg("a ground")
		if err != nil {
			return types.Action{}, err
		}
		g := types.ObjectionGround(strings.ToLower(ground))
		if !knownGround(g) {
			return types.Action{}, fmt.Errorf("unknown objection ground %q", ground)
		}
		return types.Action{Type: types.ActionObject, Ground: g}, nil
	case "pass":
		return types.Action{Type: types.ActionNoQuestions}, nil
	case "research":
		q, err := needArg("a query")
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionRequestResearch, Text: q}, nil
	case "sidebar":
		return parseSidebar(rest)
	case "settle":
		amt, err := parseAmount(rest)
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionProposeSettlement, Amount: amt}, nil
	case "counter":
		amt, err := parseAmount(rest)
		if err != nil {
			return types.Action{}, err
		}
		return types.Action{Type: types.ActionCounterSettlement, Amount: amt}, nil
	case "accept":
		return types.Action{Type: types.ActionAcceptSettlement}, nil
	case "decline":
		return types.Action{Type: types.ActionRejectSettlement}, nil
	case "extend":
		return types.Action{Type: types.ActionRequestExtension}, nil
	case "ok":
		return types.Action{Type: types.ActionAcknowledgeLesson}, nil
	}
	return types.Action{}, fmt.Errorf("unknown command %q (type 'help')", verb)
}

func parseSidebar(rest string) (types.Action, error) {
	kind, arg, _ := strings.Cut(rest, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(kind) {
	case "exclude":
		if arg == "" {
			return types.Action{}, errors.New("sidebar exclude requires an exhibit id")
		}
		return types.Action{Type: types.ActionRequestSidebar, Sidebar: types.SidebarExcludeEvidence, Exhibit: arg}, nil
	case "adjourn":
		return types.Action{Type: types.ActionRequestSidebar, Sidebar: types.SidebarAdjournment}, nil
	case "clarify":
		if arg == "" {
			return types.Action{}, errors.New("sidebar clarify requires the question text")
		}
		return types.Action{Type: types.ActionRequestSidebar, Sidebar: types.SidebarClarification, Text: arg}, nil
	case "settle":
		return types.Action{Type: types.ActionRequestSidebar, Sidebar: types.SidebarSettlement}, nil
	}
	return types.Action{}, fmt.Errorf("unknown sidebar type %q (exclude, adjourn, clarify, settle)", kind)
}

func parseAmount(rest string) (float64, error) {
	amt, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil || amt <= 0 {
		return 0, errors.New("a positive amount is required")
	}
	return amt, nil
}

func knownGround(g types.ObjectionGround) bool {
	for _, k := range types.KnownGrounds() {
		if g == k {
			return true
		}
	}
	return false
}

// courtError rewrites engine errors into prompt-friendly text.
func courtError(err error) string {
	switch {
	case errors.Is(err, types.ErrInvalidActionForPhase):
		return "That is not available right now. Type 'status' to see what is."
	case errors.Is(err, types.ErrNotPlayerTurn):
		return "It is not your turn to speak."
	case errors.Is(err, types.ErrResourceExhausted):
		return "That resource is spent for this session."
	}
	return err.Error()
}
