package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ragdesk/internal/logging"
	"ragdesk/internal/workflow"
)

// ragCmd drives the retrieval index and assessment
var ragCmd = &cobra.Command{
	Use:   "rag",
	Short: "Build the retrieval index and assess text",
	Long: `Build and query the retrieval index.

Available subcommands:
  build  - Index the uploaded corpus files
  assess - Grade text against the indexed corpus`,
}

var ragBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the retrieval index from the uploaded files",
	RunE:  runRagBuild,
}

var ragAssessCmd = &cobra.Command{
	Use:   "assess [file]",
	Short: "Grade text against the indexed corpus",
	Long: `Grades the given text against the indexed corpus and prints the
grade with the grader's explanation.

Reads the text from the file argument, or from stdin when omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRagAssess,
}

func runRagBuild(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	resp, err := env.client.BuildIndex(context.Background())
	if err != nil {
		return errors.New(workflow.Message(err, workflow.FallbackBuild))
	}

	indexed := "?"
	if n, isNum := resp["files_indexed"].(float64); isNum {
		indexed = strconv.FormatInt(int64(n), 10)
	}
	fmt.Printf("RAG index built (%s files indexed)\n", indexed)
	return nil
}

func runRagAssess(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	// Empty text is a legal submission; the server grades it like any other.
	text := string(data)

	env, err := newEnv()
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	logger.Debug("assessing text", zap.Int("bytes", len(text)))
	result, err := env.client.Assess(context.Background(), text)
	if err != nil {
		return errors.New(workflow.Message(err, workflow.FallbackAssess))
	}

	fmt.Printf("Grade: %.1f\n", result.Grade)
	if result.Explanation != "" {
		explanation := result.Explanation
		if r, rerr := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80)); rerr == nil {
			if out, rerr := r.Render(explanation); rerr == nil {
				explanation = out
			}
		}
		fmt.Print(explanation)
	}

	if hist := env.openHistory(); hist != nil {
		defer hist.Close()
		if _, err := hist.Add(text, result.Grade, result.Explanation); err != nil {
			logging.History("failed to record assessment: %v", err)
		}
	}
	return nil
}

func init() {
	ragCmd.AddCommand(ragBuildCmd)
	ragCmd.AddCommand(ragAssessCmd)
}
