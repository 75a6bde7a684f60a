package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minseo-dev/worklight/internal/models"
	"github.com/minseo-dev/worklight/internal/progress"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Run an agent query and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var askTimeout time.Duration

func init() {
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "Give up after this long")
}

func runAsk(cmd *cobra.Command, args []string) error {
	api, userID, err := taskClient()
	if err != nil {
		return err
	}

	steps, err := progress.LoadConfigFromHome()
	if err != nil {
		return fmt.Errorf("load agent step config: %w", err)
	}

	message := strings.Join(args, " ")
	run, err := api.StartAgentRun(userID, uuid.New().String(), message)
	if err != nil {
		return err
	}

	tracker := progress.NewTracker(steps.StepsFor(run.AgentType))
	tracker.Apply(run.Steps)
	printSteps(tracker)

	deadline := time.Now().Add(askTimeout)
	for run.Status == models.RunStatusRunning {
		if time.Now().After(deadline) {
			return fmt.Errorf("query still running after %v, giving up", askTimeout)
		}
		time.Sleep(time.Second)

		run, err = api.GetAgentRun(run.RunID)
		if err != nil {
			return err
		}
		tracker.Apply(run.Steps)
		printSteps(tracker)
	}

	if tracker.Degraded() {
		fmt.Println("Some services failed; the answer may be partial.")
	}
	fmt.Println()
	fmt.Println(run.Answer)
	return nil
}

// printSteps writes one status line per poll. Plain sequential output keeps
// the command usable in pipes and logs.
func printSteps(tracker *progress.Tracker) {
	var parts []string
	for _, step := range tracker.Steps() {
		glyph := "."
		switch step.Status {
		case progress.StatusActive:
			glyph = ">"
		case progress.StatusCompleted:
			glyph = "ok"
		case progress.StatusError:
			glyph = "err"
		}
		parts = append(parts, fmt.Sprintf("%s:%s", step.Label, glyph))
	}
	fmt.Printf("[%3.0f%%] %s\n", tracker.Fraction()*100, strings.Join(parts, "  "))
}
