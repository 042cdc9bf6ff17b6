package main

import (
	"github.com/spf13/cobra"

	"github.com/AVSAkash/interview-assistant/internal/simulate"
)

var simCfg = simulate.Config{}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive a running server through a complete interview",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := simCfg
		_, err := simulate.Run(cmd.Context(), &cfg)
		return err
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	f := simulateCmd.Flags()
	f.StringVar(&simCfg.BaseURL, "url", "http://localhost:8080", "base URL of the server")
	f.StringVar(&simCfg.Candidate.Name, "name", "Test Candidate", "candidate name")
	f.StringVar(&simCfg.Candidate.Email, "email", "candidate@example.com", "candidate email")
	f.StringVar(&simCfg.Candidate.Phone, "phone", "+1 555 0100", "candidate phone")
	f.StringArrayVarP(&simCfg.Answers, "answer", "a", nil, "answer for the next question; repeat up to six times")
	f.DurationVar(&simCfg.Timeout, "timeout", simulate.DefaultTimeout, "HTTP request timeout")
	f.IntVar(&simCfg.Retries, "retries", simulate.DefaultRetries, "attempts to regenerate a failed question")
	f.BoolVar(&simCfg.Reset, "reset", false, "abandon an interview that is already in progress")
	f.StringVarP(&simCfg.OutputFile, "output", "o", "", "write the JSON report to this file")
	f.BoolVarP(&simCfg.Verbose, "verbose", "v", false, "log every question and evaluation")
}
