package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"courtroom/internal/casefile"
	"courtroom/internal/config"
	"courtroom/internal/logging"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	configPath string
	difficulty string
	side       string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "courtroom",
	Short: "courtroom - a turn-based trial advocacy simulator",
	Long: `courtroom is a turn-based legal-trial simulator.

You argue one side of a structured case through the full arc of a hearing:
opening statements, evidence, witness examination, rebuttal and final
arguments, before a judge whose mood and patience react to how you conduct
yourself. Objections, case-law research, sidebars and settlement talks are
all on the table.

Run 'courtroom play' with a case file to start a session.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.NewCLI(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// caseCmd groups case-file operations
var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Case-file operations (validate, show)",
}

var caseValidateCmd = &cobra.Command{
	Use:   "validate [case-file]",
	Short: "Validate a case file without starting a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runCaseValidate,
}

var caseShowCmd = &cobra.Command{
	Use:   "show [case-file]",
	Short: "Summarize the parties, witnesses and evidence of a case",
	Args:  cobra.ExactArgs(1),
	RunE:  runCaseShow,
}

// playCmd starts an interactive session
var playCmd = &cobra.Command{
	Use:   "play [case-file]",
	Short: "Play a case interactively",
	Long: `Starts an interactive session for the given case file.

You play counsel for one side (default: petitioner); the engine plays the
other side, the witnesses and the judge. Type 'help' at the prompt for the
in-session command list.

With no API key configured the engine uses built-in stock dialogue, which
is fully playable; set GEMINI_API_KEY (or --api-key) for generated speech.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

// principlesCmd lists the legal-principles database
var principlesCmd = &cobra.Command{
	Use:   "principles [category]",
	Short: "List the legal principles the tutor teaches from",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPrinciples,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Engine config file (YAML)")

	playCmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty preset: easy, normal, hard")
	playCmd.Flags().StringVarP(&side, "side", "s", "petitioner", "Side to play: petitioner or respondent")

	caseCmd.AddCommand(caseValidateCmd)
	caseCmd.AddCommand(caseShowCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(caseCmd)
	rootCmd.AddCommand(principlesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the engine configuration from flags.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	d, err := config.ParseDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	return config.ForDifficulty(d), nil
}

func runCaseValidate(cmd *cobra.Command, args []string) error {
	rec, err := casefile.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("OK: %s\n", rec.Title)
	fmt.Printf("  witnesses: %d, exhibits: %d\n", len(rec.Witnesses), len(rec.Evidence))
	return nil
}

func runCaseShow(cmd *cobra.Command, args []string) error {
	rec, err := casefile.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Print(describeCase(rec))
	return nil
}
