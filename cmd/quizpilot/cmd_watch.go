package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously scan the screen and resolve quizzes",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
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

	if cfg.Pipeline.AutoClick {
		countdown(3)
	}
	pipeline.Run(ctx)
	return nil
}

// countdown gives the operator a moment to move focus to the quiz window
// before clicks start landing.
func countdown(seconds int) {
	for i := seconds; i > 0; i-- {
		log.Printf("[WATCH] auto-click armed, starting in %d...", i)
		time.Sleep(time.Second)
	}
}
