package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ragdesk/internal/api"
	"ragdesk/internal/logging"
	"ragdesk/internal/workflow"
)

// filesCmd manages the uploaded corpus
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage the uploaded corpus files",
	Long: `Manage the corpus files on the server.

Available subcommands:
  list     - List the uploaded files
  upload   - Upload one or more files
  download - Download an uploaded file by ID`,
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the uploaded files",
	RunE:  runFilesList,
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload one or more files to the corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilesUpload,
}

var filesDownloadCmd = &cobra.Command{
	Use:   "download <id> [dest]",
	Short: "Download an uploaded file by ID",
	Long: `Downloads one uploaded file by its ID (see 'files list').

The file is written to dest when given, otherwise to the filename the
server reports for the document.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFilesDownload,
}

func runFilesList(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	files, err := env.client.ListFiles(context.Background())
	if err != nil {
		return errors.New(workflow.Message(err, workflow.FallbackList))
	}

	if len(files) == 0 {
		fmt.Println("No files uploaded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tUPLOADED")
	for _, f := range files {
		fmt.Fprintf(w, "%d\t%s\t%s\n", f.ID, f.Filename, f.CreatedAt)
	}
	return w.Flush()
}

func runFilesUpload(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	uploads := make([]api.UploadFile, 0, len(args))
	for _, path := range args {
		f, err := api.OpenUploadFile(path)
		if err != nil {
			return err
		}
		uploads = append(uploads, f)
	}

	logger.Debug("uploading files", zap.Int("count", len(uploads)))
	if _, err := env.client.Upload(context.Background(), uploads); err != nil {
		return errors.New(workflow.Message(err, workflow.FallbackUpload))
	}

	fmt.Println("Upload complete")
	return nil
}

func runFilesDownload(cmd *cobra.Command, args []string) error {
	docID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file ID %q", args[0])
	}

	env, err := newEnv()
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	logger.Debug("downloading file", zap.Int64("id", docID))
	f, err := env.client.Download(context.Background(), docID)
	if err != nil {
		return errors.New(workflow.Message(err, workflow.FallbackDownload))
	}

	dest := f.Name
	if len(args) == 2 {
		dest = args[1]
	}
	if dest == "" {
		dest = fmt.Sprintf("document-%d", docID)
	}
	if err := os.WriteFile(dest, f.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	fmt.Printf("Downloaded %s (%d bytes)\n", dest, len(f.Data))
	return nil
}

func init() {
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesDownloadCmd)
}
