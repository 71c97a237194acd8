package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmwangi/parsehire/internal/enhance"
	"github.com/jmwangi/parsehire/internal/parser"
)

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume <file>",
	Short: "Extract a structured record from one resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runParseResume,
}

var parseJobDescCmd = &cobra.Command{
	Use:   "parse-job-description <file>",
	Short: "Extract a structured record from one job description",
	Args:  cobra.ExactArgs(1),
	RunE:  runParseJobDesc,
}

var parseOutput string

func init() {
	for _, cmd := range []*cobra.Command{parseResumeCmd, parseJobDescCmd} {
		cmd.Flags().StringVarP(&parseOutput, "out", "o", "", "write the JSON record to this file instead of stdout")
		rootCmd.AddCommand(cmd)
	}
	parseJobDescCmd.Flags().Bool("enhance", false, "also run the enhancement flow and attach the result")
}

func runParseResume(cmd *cobra.Command, args []string) error {
	_, log, client, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}

	rec, err := parser.NewResumeParser(client, log).Parse(cmd.Context(), content, args[0])
	if err != nil {
		return err
	}
	return writeRecord(cmd, rec)
}

func runParseJobDesc(cmd *cobra.Command, args []string) error {
	_, log, client, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read job description: %w", err)
	}

	rec, err := parser.NewJobDescriptionParser(client, log).Parse(cmd.Context(), content, args[0])
	if err != nil {
		return err
	}

	if withEnhance, _ := cmd.Flags().GetBool("enhance"); withEnhance {
		enhanced, err := enhance.New(client, log).Enhance(cmd.Context(), &rec)
		if err != nil {
			return err
		}
		rec.Enhanced = enhanced
	}
	return writeRecord(cmd, rec)
}

func writeRecord(cmd *cobra.Command, record any) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	if parseOutput != "" {
		return os.WriteFile(parseOutput, append(data, '\n'), 0644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
