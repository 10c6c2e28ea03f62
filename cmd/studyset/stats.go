package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfukuda/studyset/internal/card"
	"github.com/mfukuda/studyset/internal/performance"
	"github.com/mfukuda/studyset/internal/report"
)

func newStatsCommand() *cobra.Command {
	var (
		subjectFlag string
		threshold   float64
		pdfExport   bool
	)

	command := &cobra.Command{
		Use:   "stats",
		Short: "Show per-topic statistics and weak topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newAppContext(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = app.Close()
			}()

			subject, err := parseSubjectFlag(subjectFlag)
			if err != nil {
				return err
			}

			stats, err := app.service.GetStatistics(ctx, subject)
			if err != nil {
				return err
			}

			var weak []performance.TopicStats
			if subject != nil {
				weak, err = app.service.IdentifyWeakTopics(ctx, *subject, threshold)
				if err != nil {
					return err
				}
			} else {
				for _, s := range card.Subjects() {
					subjectWeak, err := app.service.IdentifyWeakTopics(ctx, s, threshold)
					if err != nil {
						return err
					}
					weak = append(weak, subjectWeak...)
				}
			}

			sevenDay := app.tracker.SevenDayAccuracy(subject)
			now := time.Now()

			if !pdfExport {
				return report.WriteMarkdown(os.Stdout, now, stats, weak, sevenDay)
			}

			markdownPath, err := report.SaveMarkdown(app.cfg.Reports.OutputDirectory, now, stats, weak, sevenDay)
			if err != nil {
				return err
			}
			pdfPath, err := report.ConvertMarkdownToPDF(markdownPath)
			if err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", pdfPath)
			return nil
		},
	}

	command.Flags().StringVar(&subjectFlag, "subject", "", "restrict statistics to one subject")
	command.Flags().Float64Var(&threshold, "threshold", 0.7, "weak-topic accuracy threshold")
	command.Flags().BoolVar(&pdfExport, "pdf", false, "export the report as PDF")

	return command
}
