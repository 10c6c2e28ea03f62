package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfukuda/studyset/internal/block"
	"github.com/mfukuda/studyset/internal/cli"
)

func newStudyCommand() *cobra.Command {
	var (
		blockSize        int
		subjectFlag      string
		includeNew       bool
		includeReview    bool
		targetDifficulty int
	)

	command := &cobra.Command{
		Use:   "study",
		Short: "Run an interactive study session over a generated block",
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

			sessionCLI := cli.NewStudySessionCLI(app.service, block.Request{
				BlockSize:        blockSize,
				Subject:          subject,
				IncludeNew:       includeNew,
				IncludeReview:    includeReview,
				TargetDifficulty: targetDifficulty,
			})

			fmt.Println("Interactive study session started!")
			return sessionCLI.Run(ctx)
		},
	}

	command.Flags().IntVar(&blockSize, "size", 20, "maximum number of cards in the block")
	command.Flags().StringVar(&subjectFlag, "subject", "", "restrict the block to one subject")
	command.Flags().BoolVar(&includeNew, "new", true, "include never-reviewed cards")
	command.Flags().BoolVar(&includeReview, "review", true, "include due cards")
	command.Flags().IntVar(&targetDifficulty, "difficulty", 0, "target difficulty 1-5 (0 = no target)")

	return command
}
