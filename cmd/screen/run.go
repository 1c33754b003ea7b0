package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Screen résumés against a job description",
	Long:  "Runs the full pipeline in-process. --resumes accepts résumé files (.pdf, .docx, .txt) and zip archives of them, and may be repeated.",
	RunE:  runScreen,
}

var (
	runJDPath      string
	runResumePaths []string
	runJSON        bool
)

func init() {
	runCmd.Flags().StringVar(&runJDPath, "jd", "", "Path to the job description file (required)")
	runCmd.Flags().StringSliceVar(&runResumePaths, "resumes", nil, "Résumé files or zip archives (required)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the result as JSON")

	if err := runCmd.MarkFlagRequired("jd"); err != nil {
		panic(fmt.Sprintf("failed to mark jd flag as required: %v", err))
	}
	if err := runCmd.MarkFlagRequired("resumes"); err != nil {
		panic(fmt.Sprintf("failed to mark resumes flag as required: %v", err))
	}

	rootCmd.AddCommand(runCmd)
}

func runScreen(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	input, err := loadInput(runJDPath, runResumePaths, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini: %w", err)
	}
	embedder := services.NewEmbeddingClient(
		gemini,
		cfg.Embedding.Model,
		services.NewRetryPolicy(cfg.Embedding.MaxRetries, cfg.Embedding.RetryDelay),
		log,
		services.WithBatchSize(cfg.Embedding.BatchSize),
	)

	pipeline := services.NewScreeningPipeline(gemini, embedder, nil, services.PipelineOptionsFromConfig(cfg.Pipeline), log)
	log.Info("🚀 Screening", zap.String("jd", runJDPath), zap.Int("resumes", len(input.Resumes)))

	result := pipeline.Screen(ctx, input)
	return printResult(cmd.OutOrStdout(), result, runJSON)
}

// loadInput reads the JD and expands every résumé path into documents.
func loadInput(jdPath string, resumePaths []string, log *zap.Logger) (services.ScreeningInput, error) {
	jdData, err := os.ReadFile(jdPath)
	if err != nil {
		return services.ScreeningInput{}, fmt.Errorf("failed to read job description %s: %w", jdPath, err)
	}

	input := services.ScreeningInput{
		JobPostingID:   "local",
		JobDescription: models.Document{Name: filepath.Base(jdPath), Data: jdData},
	}

	for _, p := range resumePaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return services.ScreeningInput{}, fmt.Errorf("failed to read resume %s: %w", p, err)
		}
		docs, err := services.ExpandUpload(filepath.Base(p), data, log)
		if err != nil {
			return services.ScreeningInput{}, fmt.Errorf("failed to read resume %s: %w", p, err)
		}
		input.Resumes = append(input.Resumes, docs...)
	}

	return input, nil
}

func printResult(w io.Writer, result models.ScreeningResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return nil
	}

	switch {
	case result.Error != "":
		fmt.Fprintf(w, "❌ %s\n", result.Error)
		return nil
	case result.Message != "":
		fmt.Fprintf(w, "⚠️  %s\n", result.Message)
		return nil
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "📊 %d files, %d readable, %d passed filter, %d scored\n",
		result.Stats.FilesReceived,
		result.Stats.CandidatesExtracted,
		result.Stats.CandidatesPassedFilter,
		result.Stats.Shortlisted,
	)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	for i, r := range result.Results {
		email := "-"
		if r.CandidateEmail != nil {
			email = *r.CandidateEmail
		}
		fmt.Fprintf(w, "%d. %s (%s) score %d, %.1f years, semantic %.3f\n",
			i+1, r.ResumeName, email, r.ATSScore, r.ExperienceYears, r.SemanticScore)
		for _, s := range r.Strengths {
			fmt.Fprintf(w, "   + %s\n", s)
		}
		for _, s := range r.Weaknesses {
			fmt.Fprintf(w, "   - %s\n", s)
		}
	}
	return nil
}
