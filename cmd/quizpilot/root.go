// quizpilot watches an on-screen multiple-choice quiz, reads the question
// and options, researches them on the web, and reports or clicks the most
// likely answer.
//
// Usage:
//
//	quizpilot single [--frame=<png>] [--ocr=<backend>]
//	quizpilot watch  [--auto-click] [--min-confidence=<0..1>] [--interval=<dur>]
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	autoClick     bool
	minConfidence float64
	interval      time.Duration
	ocrBackend    string
	framePath     string
	display       int
}

var rootCmd = &cobra.Command{
	Use:   "quizpilot",
	Short: "Screen-reading assistant for multiple-choice quizzes",
	Long: "Quizpilot captures the quiz area of the screen, recognizes the question\n" +
		"and answer options, gathers web evidence, scores each option, and can\n" +
		"click the best answer when confidence is high enough.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&rootFlags.autoClick, "auto-click", false, "Click the best answer automatically")
	pf.Float64Var(&rootFlags.minConfidence, "min-confidence", 0.3, "Inclusive confidence threshold for auto-click")
	pf.DurationVar(&rootFlags.interval, "interval", 2*time.Second, "Pause between scan cycles")
	pf.StringVar(&rootFlags.ocrBackend, "ocr", "", "OCR backend: tesseract or vision")
	pf.StringVar(&rootFlags.framePath, "frame", "", "Read frames from a PNG file instead of the live screen")
	pf.IntVar(&rootFlags.display, "display", 0, "Display index to capture")

	rootCmd.AddCommand(singleCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
