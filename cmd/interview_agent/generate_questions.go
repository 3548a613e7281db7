package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/interview-agent/internal/ingestion"
	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/spf13/cobra"
)

var generateQuestionsCmd = &cobra.Command{
	Use:   "generate-questions",
	Short: "Generate interview questions for a job and optional resume",
	Long: "Generate interview questions from a job title and description, tailored to a candidate's " +
		"resume when one is given. Prints the questions as JSON.",
	RunE: runGenerateQuestions,
}

var (
	genJobTitle    string
	genJobFile     string
	genResumeFile  string
	genCategories  []string
	genMaxQuestion int
)

func init() {
	generateQuestionsCmd.Flags().StringVar(&genJobTitle, "title", "", "Job title (required)")
	generateQuestionsCmd.Flags().StringVar(&genJobFile, "job", "", "Path to a job description document")
	generateQuestionsCmd.Flags().StringVar(&genResumeFile, "resume", "", "Path to the candidate's resume")
	generateQuestionsCmd.Flags().StringSliceVar(&genCategories, "category", nil, "Question categories (technical, behavioral, problem_solving)")
	generateQuestionsCmd.Flags().IntVarP(&genMaxQuestion, "max", "n", questions.DefaultMaxQuestions, "Maximum number of questions")
	rootCmd.AddCommand(generateQuestionsCmd)
}

func runGenerateQuestions(_ *cobra.Command, _ []string) error {
	req, err := questionRequest(genJobTitle, genJobFile, genResumeFile, genCategories, genMaxQuestion)
	if err != nil {
		return err
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

	return writeQuestions(ctx, questions.NewGenerator(gw), req, os.Stdout)
}

// questionRequest builds a generation request from the command flags.
func questionRequest(title, jobFile, resumeFile string, categories []string, maxQuestions int) (questions.Request, error) {
	req := questions.Request{
		JobTitle:     strings.TrimSpace(title),
		Categories:   categories,
		MaxQuestions: maxQuestions,
	}
	if req.JobTitle == "" {
		return req, fmt.Errorf("--title is required")
	}
	if maxQuestions < 1 || maxQuestions > 50 {
		return req, fmt.Errorf("--max must be between 1 and 50")
	}

	var err error
	if req.JobDescription, err = documentText(jobFile); err != nil {
		return req, err
	}
	if req.ResumeText, err = documentText(resumeFile); err != nil {
		return req, err
	}
	return req, nil
}

func documentText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	doc, err := ingestion.ExtractFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return doc.Text, nil
}

func writeQuestions(ctx context.Context, gen *questions.Generator, req questions.Request, w io.Writer) error {
	items := gen.Generate(ctx, req)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"questions": items, "count": len(items)})
}
