package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quizpilot/agent/internal/domain"
)

var singleCmd = &cobra.Command{
	Use:   "single",
	Short: "Run one capture-to-answer cycle and exit",
	RunE:  runSingle,
}

func runSingle(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pipeline, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := pipeline.RunCycle(ctx)
	printReport(cmd.OutOrStdout(), report)
	if !report.Success() {
		return fmt.Errorf("cycle failed: %s", report.SkipReason)
	}
	return nil
}

func printReport(out io.Writer, report domain.CycleReport) {
	if report.Question != "" {
		fmt.Fprintf(out, "Question: %s\n", report.Question)
	}
	for i, opt := range report.Options {
		fmt.Fprintf(out, "  %d. %-30s %.2f\n", i+1, opt, report.Scores[opt])
	}
	if report.BestAnswer != "" {
		fmt.Fprintf(out, "Best:     %s (confidence %.2f)\n", report.BestAnswer, report.Confidence)
	}
	switch {
	case report.Clicked:
		fmt.Fprintf(out, "Clicked:  (%d, %d)\n", report.ClickedAt.X, report.ClickedAt.Y)
	case report.SkipReason != "":
		fmt.Fprintf(out, "Action:   none (%s)\n", report.SkipReason)
	}
}
