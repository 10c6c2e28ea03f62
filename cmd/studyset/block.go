package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfukuda/studyset/internal/block"
)

func newBlockCommand() *cobra.Command {
	var (
		blockSize        int
		subjectFlag      string
		includeNew       bool
		includeReview    bool
		targetDifficulty int
	)

	command := &cobra.Command{
		Use:   "block",
		Short: "Preview the next study block without starting a session",
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

			cards, err := app.service.GetStudyBlock(ctx, block.Request{
				BlockSize:        blockSize,
				Subject:          subject,
				IncludeNew:       includeNew,
				IncludeReview:    includeReview,
				TargetDifficulty: targetDifficulty,
			})
			if err != nil {
				return err
			}

			if len(cards) == 0 {
				fmt.Println("No cards available for this block.")
				return nil
			}
			for i, c := range cards {
				due := "new"
				if c.DueDate != nil {
					due = c.DueDate.Format("2006-01-02")
				}
				fmt.Printf("%2d. [%s/%s] %s (difficulty %d, due %s)\n",
					i+1, c.Subject, c.Topic, c.ConceptName, c.Difficulty, due)
			}
			return nil
		},
	}

	command.Flags().IntVar(&blockSize, "size", 20, "maximum number of cards in the block")
	command.Flags().StringVar(&subjectFlag, "subject", "", "restrict the block to one subject")
	command.Flags().BoolVar(&includeNew, "new", true, "include never-reviewed cards")
	command.Flags().BoolVar(&includeReview, "review", true, "include due cards")
	command.Flags().IntVar(&targetDifficulty, "difficulty", 0, "target difficulty 1-5 (0 = no target)")

	return command
}
