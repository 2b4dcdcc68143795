package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/studyclient/internal/core/domain"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// notice tells the user when data did not come from the backend.
func notice(cmd *cobra.Command, p domain.Provenance) {
	switch p {
	case domain.ProvenanceCached:
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "note: backend unavailable, showing cached data")
	case domain.ProvenanceSynthetic:
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "note: backend unavailable, showing offline sample data")
	case domain.ProvenanceRegenerated:
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "note: content was regenerated")
	}
}

func renderSheet(w io.Writer, s domain.StudySheet) {
	_, _ = fmt.Fprintf(w, "# %s\n", s.Title)
	if s.TopicName != "" {
		_, _ = fmt.Fprintf(w, "\nTopic: %s", s.TopicName)
		if s.DifficultyLevel > 0 {
			_, _ = fmt.Fprintf(w, " (difficulty %.1f)", s.DifficultyLevel)
		}
		_, _ = fmt.Fprintln(w)
	}
	for _, sec := range s.Sections {
		_, _ = fmt.Fprintf(w, "\n## %s\n\n%s\n", sec.Title, strings.TrimSpace(sec.Content))
	}
}
