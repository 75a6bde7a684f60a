package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/minseo-dev/worklight/internal/client"
	"github.com/minseo-dev/worklight/internal/draft"
	"github.com/minseo-dev/worklight/internal/models"
	"github.com/minseo-dev/worklight/internal/session"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage scheduled automation tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List automation tasks",
	RunE:  runTaskList,
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an automation task",
	RunE:  runTaskAdd,
}

var taskRmCmd = &cobra.Command{
	Use:   "rm [task-id]",
	Short: "Delete an automation task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskRm,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit an automation task's payload",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var (
	taskTitle     string
	taskType      string
	taskScheduled string
	taskPayload   string
)

func init() {
	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskRmCmd, taskEditCmd)

	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskAddCmd.Flags().StringVar(&taskType, "type", "social-post", "Task type (social-post, email, blog)")
	taskAddCmd.Flags().StringVar(&taskScheduled, "at", "", "Scheduled time (YYYY-MM-DDTHH:MM:SS)")
	taskAddCmd.Flags().StringVar(&taskPayload, "payload", "", "Type-specific payload as JSON")
	taskAddCmd.MarkFlagRequired("title")

	taskEditCmd.Flags().StringVar(&taskPayload, "payload", "", "Replacement payload as JSON (required)")
	taskEditCmd.MarkFlagRequired("payload")
}

func taskClient() (*client.Client, string, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, "", err
	}
	sessions, err := session.NewManager()
	if err != nil {
		log.Printf("session unavailable: %v", err)
	}
	return client.New(cfg.APIAddr), currentUserID(sessions), nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	api, userID, err := taskClient()
	if err != nil {
		return err
	}

	tasks, err := api.ListAutomationTasks(userID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No automation tasks.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tSCHEDULED\tTITLE")
	for _, t := range tasks {
		id := t.TaskID
		if len(id) > 8 {
			id = id[:8]
		}
		scheduled := t.ScheduledAt
		if scheduled == "" {
			scheduled = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", id, t.TaskType, t.Status, scheduled, t.Title)
	}
	return w.Flush()
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	api, userID, err := taskClient()
	if err != nil {
		return err
	}

	task := models.AutomationTask{
		Title:       taskTitle,
		TaskType:    models.TaskType(taskType),
		Status:      models.TaskStatusDraft,
		ScheduledAt: taskScheduled,
	}
	if taskPayload != "" {
		if !json.Valid([]byte(taskPayload)) {
			return fmt.Errorf("--payload is not valid JSON")
		}
		task.TaskData.Raw = json.RawMessage(taskPayload)
	}

	created, err := api.CreateAutomationTask(userID, task)
	if err != nil {
		return err
	}
	fmt.Printf("Created task %s (%s)\n", created.TaskID, created.TaskType)
	return nil
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	api, userID, err := taskClient()
	if err != nil {
		return err
	}
	if err := api.DeleteAutomationTask(userID, args[0]); err != nil {
		return err
	}
	fmt.Println("Task deleted.")
	return nil
}

// runTaskEdit stages the replacement payload in the draft cache and commits
// it. On a failed update the staged payload survives, so rerunning the
// command after fixing connectivity does not lose the edit.
func runTaskEdit(cmd *cobra.Command, args []string) error {
	api, userID, err := taskClient()
	if err != nil {
		return err
	}
	taskID := args[0]

	if !json.Valid([]byte(taskPayload)) {
		return fmt.Errorf("--payload is not valid JSON")
	}

	tasks, err := api.ListAutomationTasks(userID)
	if err != nil {
		return err
	}
	var target *models.AutomationTask
	for i := range tasks {
		if tasks[i].TaskID == taskID {
			target = &tasks[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("task %s not found", taskID)
	}

	drafts := draft.NewCache()
	drafts.StagePayload(taskID, taskPayload)

	return drafts.CommitPayload(func(d draft.PayloadDraft) error {
		updated := *target
		updated.TaskData = models.TaskData{Raw: json.RawMessage(d.Raw)}
		if err := api.UpdateAutomationTask(userID, updated); err != nil {
			return err
		}
		fmt.Printf("Updated payload of task %s\n", taskID)
		return nil
	})
}
