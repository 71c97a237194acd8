package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmwangi/parsehire/internal/export"
	"github.com/jmwangi/parsehire/internal/ingestion"
	"github.com/jmwangi/parsehire/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume files...]",
	Short: "Score resumes against a job description and write an Excel report",
	Long: "Score extracts every resume given as an argument (or fetched from Gmail " +
		"with --gmail-subject), ranks the candidates against the job description " +
		"and writes the ranked report to an Excel workbook.",
	RunE: runScore,
}

var (
	scoreJobDescPath  string
	scoreRequirements string
	scoreOutput       string
	scoreGmailSubject string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreJobDescPath, "job-description", "j", "", "path to the job description document (required)")
	scoreCmd.Flags().StringVarP(&scoreRequirements, "requirements", "r", "", "free-text recruiter requirements")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "report.xlsx", "path of the Excel report to write")
	scoreCmd.Flags().StringVar(&scoreGmailSubject, "gmail-subject", "", "fetch resumes from Gmail messages with this subject instead of files")
	scoreCmd.MarkFlagRequired("job-description")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, client, err := setup(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()

	if len(args) == 0 && scoreGmailSubject == "" {
		return errors.New("give resume files as arguments or set --gmail-subject")
	}

	jdContent, err := os.ReadFile(scoreJobDescPath)
	if err != nil {
		return fmt.Errorf("read job description: %w", err)
	}

	req := scoring.Request{
		JobDescription: scoring.Document{Filename: scoreJobDescPath, Content: jdContent},
		Requirements:   scoreRequirements,
	}

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read resume: %w", err)
		}
		req.Resumes = append(req.Resumes, scoring.Document{Filename: path, Content: content})
	}

	if scoreGmailSubject != "" {
		if cfg.Gmail.CredentialsPath == "" {
			return errors.New("gmail.credentials_path must be configured to use --gmail-subject")
		}
		fetcher, err := ingestion.NewGmailFetcher(ctx, cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath, log)
		if err != nil {
			return err
		}
		attachments, err := fetcher.FetchAttachments(ctx, scoreGmailSubject)
		if err != nil {
			return err
		}
		for _, a := range attachments {
			req.Resumes = append(req.Resumes, scoring.Document{Filename: a.Filename, Content: a.Data})
		}
	}

	result, err := scoring.New(client, log, cfg.Concurrency).Score(ctx, req)
	if err != nil {
		return err
	}

	if err := export.WriteReport(result, scoreOutput); err != nil {
		return err
	}
	log.Info("report written",
		zap.String("path", scoreOutput),
		zap.Int("scored", len(result.Scores)),
		zap.Int("failed", len(result.Failures)),
	)

	for _, s := range result.Scores {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. %-30s %.1f\n", s.Rank, s.CandidateName, s.ResumeScore)
	}
	for _, f := range result.Failures {
		fmt.Fprintf(cmd.OutOrStdout(), "    failed: %s (%s)\n", f.Filename, f.Reason)
	}
	return nil
}
