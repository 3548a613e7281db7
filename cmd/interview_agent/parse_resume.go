package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/interview-agent/internal/ingestion"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/resume"
	"github.com/jonathan/interview-agent/internal/types"
	"github.com/spf13/cobra"
)

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume",
	Short: "Extract a structured candidate profile from a resume file",
	Long: "Extract a structured candidate profile (contact details, work experience, education, skills) " +
		"from a PDF, DOCX or text resume and print it as JSON.",
	RunE: runParseResume,
}

var (
	parseResumeInput  string
	parseResumeOutput string
)

func init() {
	parseResumeCmd.Flags().StringVarP(&parseResumeInput, "in", "i", "", "Path to the resume file (required)")
	parseResumeCmd.Flags().StringVarP(&parseResumeOutput, "out", "o", "", "Path to write the JSON profile (default: stdout)")
	rootCmd.AddCommand(parseResumeCmd)
}

func runParseResume(_ *cobra.Command, _ []string) error {
	if parseResumeInput == "" {
		return fmt.Errorf("--in is required")
	}
	if !ingestion.IsSupported(parseResumeInput) {
		return fmt.Errorf("unsupported resume format %q (supported: %v)", parseResumeInput, ingestion.SupportedExtensions)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	gw, closeClient, err := openGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	out := io.Writer(os.Stdout)
	if parseResumeOutput != "" {
		f, err := os.Create(parseResumeOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	return parseResume(ctx, gw, parseResumeInput, out)
}

// resumeOutput is the JSON printed by parse-resume.
type resumeOutput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	*types.ResumeProfile
}

func parseResume(ctx context.Context, gw *llm.Gateway, path string, w io.Writer) error {
	parsed, err := resume.NewNormalizer(gw).ExtractFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to parse resume: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resumeOutput{
		FirstName:     parsed.FirstName,
		LastName:      parsed.LastName,
		ResumeProfile: parsed.Profile,
	})
}
