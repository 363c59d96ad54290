package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"courtroom/internal/education"
	"courtroom/internal/types"
)

func runPrinciples(cmd *cobra.Command, args []string) error {
	db, err := education.LoadCatalogue()
	if err != nil {
		return err
	}
	principles := db.All()
	if len(args) == 1 {
		principles = db.ForCategory(types.ScoreCategory(args[0]))
		if len(principles) == 0 {
			return fmt.Errorf("no principles for category %q", args[0])
		}
	}
	sort.Slice(principles, func(i, j int) bool { return principles[i].ID < principles[j].ID })
	for _, p := range principles {
		fmt.Printf("%-26s [%s/%s]\n  %s\n", p.ID, string(p.Category), string(p.Severity), p.Rule)
	}
	return nil
}
