package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vietddude/studyclient/internal/core/domain"
)

var (
	upTitle       string
	upSubject     string
	upGrade       string
	upDescription string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a textbook (.pdf, .docx, .doc, .txt)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	f := uploadCmd.Flags()
	f.StringVar(&upTitle, "title", "", "textbook title (defaults to the file name)")
	f.StringVar(&upSubject, "subject", "", "subject id")
	f.StringVar(&upGrade, "grade", "", "grade id")
	f.StringVar(&upDescription, "description", "", "short description")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	title := upTitle
	if title == "" {
		title = filepath.Base(path)
	}

	res, err := app.Client.UploadTextbook(cmd.Context(), domain.TextbookUpload{
		Title:       title,
		Subject:     upSubject,
		Grade:       upGrade,
		Description: upDescription,
		FileName:    filepath.Base(path),
		Open:        func() (io.ReadCloser, error) { return os.Open(path) },
	})
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, res.Value)
	}

	tb := res.Value
	if res.Synthetic() {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Backend unavailable: %s was not stored\n", tb.Filename)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s, %d pages processed)\n", tb.Title, tb.Status, tb.PagesProcessed)
	return nil
}
