package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizpilot/agent/config"
	"github.com/quizpilot/agent/internal/domain"
	"github.com/quizpilot/agent/internal/infrastructure/capture"
	"github.com/quizpilot/agent/internal/infrastructure/locate"
	"github.com/quizpilot/agent/internal/infrastructure/ocr"
	"github.com/quizpilot/agent/internal/infrastructure/pointer"
	"github.com/quizpilot/agent/internal/infrastructure/websearch"
	"github.com/quizpilot/agent/internal/usecase"
)

// loadConfig loads the file/env configuration and layers any explicitly set
// command-line flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("auto-click") {
		cfg.Pipeline.AutoClick = rootFlags.autoClick
	}
	if flags.Changed("min-confidence") {
		cfg.Pipeline.MinConfidence = rootFlags.minConfidence
	}
	if flags.Changed("interval") {
		cfg.Pipeline.ScanInterval = rootFlags.interval
	}
	if flags.Changed("ocr") {
		cfg.OCR.Backend = rootFlags.ocrBackend
	}
	return cfg, nil
}

// locatorChain is the ordered localization strategy chain. The quadrant grid
// runs first and its positions follow display order; the color mask only
// takes over when the quadrant strategy yields nothing, since its positions
// are unordered.
func locatorChain() []domain.ButtonLocator {
	return []domain.ButtonLocator{
		locate.QuadrantLocator{},
		locate.ColorMaskLocator{},
	}
}

// buildPipeline wires the full capture-to-click pipeline from configuration.
func buildPipeline(cfg *config.Config) (*usecase.PipelineService, error) {
	var recognizer domain.Recognizer
	switch cfg.OCR.Backend {
	case "tesseract":
		recognizer = ocr.NewTesseractRecognizer(cfg.OCR.Languages)
	case "vision":
		recognizer = ocr.NewVisionClient(cfg.OCR.VisionURL, cfg.OCR.VisionAPIKey, cfg.OCR.Languages)
	default:
		return nil, fmt.Errorf("unknown OCR backend: %s", cfg.OCR.Backend)
	}

	var source domain.FrameSource
	originX, originY := 0, 0
	if rootFlags.framePath != "" {
		source = capture.FileSource{Path: rootFlags.framePath}
	} else {
		screen := capture.ScreenSource{Display: rootFlags.display}
		originX, originY = screen.Origin()
		source = screen
	}
	regions := capture.NewSplitProvider(source, originX, originY, cfg.Pipeline.DebugDir)

	searchClient := websearch.NewClient(cfg.Search.BaseURL, cfg.Search.MinInterval, cfg.Search.HTTPTimeout)
	evidence := usecase.NewEvidenceService(searchClient, usecase.EvidenceServiceConfig{
		Sites:            cfg.Search.Sites,
		GeneralResultCap: cfg.Search.GeneralCap,
		PerSiteResultCap: cfg.Search.PerSiteCap,
	})

	locators := locatorChain()

	var dispatcher domain.PointerDispatcher
	switch cfg.Pointer.Dispatcher {
	case "xdotool":
		dispatcher = pointer.XdotoolDispatcher{}
	default:
		dispatcher = pointer.LogDispatcher{}
	}

	return usecase.NewPipelineService(
		regions,
		usecase.NewExtractService(recognizer),
		evidence,
		usecase.NewScoringService(),
		locators,
		dispatcher,
		usecase.PipelineConfig{
			AutoClick:     cfg.Pipeline.AutoClick,
			MinConfidence: cfg.Pipeline.MinConfidence,
			ScanInterval:  cfg.Pipeline.ScanInterval,
		},
	), nil
}
