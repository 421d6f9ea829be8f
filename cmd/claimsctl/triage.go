package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/extract"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/service/claims"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

var (
	outJSON   string
	ocrEngine string
	timeout   time.Duration
)

// triageCmd represents the triage command
var triageCmd = &cobra.Command{
	Use:   "triage <image>",
	Short: "Run the triage pipeline on a single claim image",
	Long: `Triage runs the full pipeline on a PNG or JPEG claim document:
extraction, classification, compliance and routing. The decision and
the per-stage trace are printed as JSON.

Example:
  claimsctl triage claim.png
  claimsctl triage claim.png --rules claims.yaml --json run.json`,
	Args: cobra.ExactArgs(1),
	RunE: runTriage,
}

func init() {
	rootCmd.AddCommand(triageCmd)

	triageCmd.Flags().StringVar(&outJSON, "json", "", "write the run to this path instead of stdout")
	triageCmd.Flags().StringVar(&ocrEngine, "engine", "tesseract", "OCR engine (tesseract, textract)")
	triageCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall triage timeout")
}

func runTriage(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.NewLogger(
		logger.WithLevel(level),
		logger.WithEncoding("console"),
		logger.WithOutputPaths([]string{"stderr"}),
	)
	if err != nil {
		return err
	}
	defer log.Sync()

	rules, err := cfg.NewStore(viper.GetString("rules"), log)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	p, err := claims.BuildPipeline(ctx, rules, extract.Engine(ocrEngine), log)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	format, err := detectFormat(data)
	if err != nil {
		return err
	}

	doc := &models.ClaimDocument{
		ID:         uuid.New().String(),
		Image:      data,
		Format:     format,
		Size:       int64(len(data)),
		SourceID:   imagePath,
		ReceivedAt: time.Now(),
	}

	run, runErr := p.Run(ctx, doc, rules.Snapshot())

	out, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	if outJSON != "" {
		if err := os.WriteFile(outJSON, out, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outJSON, err)
		}
		fmt.Fprintf(os.Stderr, "Run written to %s\n", outJSON)
	} else {
		fmt.Println(string(out))
	}

	if runErr != nil {
		return fmt.Errorf("triage failed: %w", runErr)
	}

	if run.Decision != nil {
		fmt.Fprintf(os.Stderr, "Workflow: %s (rule %s)\n", run.Decision.Workflow, run.Decision.TriggeringRuleID)
	}
	return nil
}

func detectFormat(data []byte) (models.ImageFormat, error) {
	if len(data) > 8 && data[0] == 0x89 && string(data[1:4]) == "PNG" {
		return models.FormatPNG, nil
	}
	if len(data) > 3 && data[0] == 0xFF && data[1] == 0xD8 {
		return models.FormatJPEG, nil
	}
	return "", fmt.Errorf("unsupported file format, only PNG and JPEG are accepted")
}
