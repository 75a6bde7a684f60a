package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Send feedback about an assistant answer",
	RunE:  runFeedback,
}

var (
	feedbackRating       int
	feedbackComment      string
	feedbackCategory     string
	feedbackConversation string
)

func init() {
	feedbackCmd.Flags().IntVar(&feedbackRating, "rating", 0, "Rating from 1 (poor) to 5 (great), required")
	feedbackCmd.Flags().StringVar(&feedbackComment, "comment", "", "Free-form comment")
	feedbackCmd.Flags().StringVar(&feedbackCategory, "category", "answer", "Feedback category")
	feedbackCmd.Flags().StringVar(&feedbackConversation, "conversation", "", "Conversation ID the feedback refers to")
	feedbackCmd.MarkFlagRequired("rating")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	if feedbackRating < 1 || feedbackRating > 5 {
		return fmt.Errorf("--rating must be between 1 and 5")
	}

	api, userID, err := taskClient()
	if err != nil {
		return err
	}
	if err := api.SubmitFeedback(userID, feedbackConversation, feedbackRating, feedbackComment, feedbackCategory); err != nil {
		return err
	}
	fmt.Println("Feedback sent. Thanks!")
	return nil
}
