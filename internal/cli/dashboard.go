package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietddude/studyclient/internal/core/domain"
)

var (
	progTopic    string
	progMastery  float64
	progAnswered int
	progCorrect  int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show subjects, progress and recently studied topics",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Record progress on a topic",
	Args:  cobra.NoArgs,
	RunE:  runProgress,
}

func init() {
	f := progressCmd.Flags()
	f.StringVar(&progTopic, "topic", "", "topic id")
	f.Float64Var(&progMastery, "mastery", 0, "mastery level from 0 to 1")
	f.IntVar(&progAnswered, "answered", 0, "questions answered")
	f.IntVar(&progCorrect, "correct", 0, "correct answers")
	rootCmd.AddCommand(dashboardCmd, progressCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	d, err := app.Client.Dashboard(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, d)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Subjects")
	for _, s := range d.Subjects {
		_, _ = fmt.Fprintf(out, "  %s\n", s.Name)
	}

	_, _ = fmt.Fprintln(out, "\nProgress")
	if len(d.Progress) == 0 {
		_, _ = fmt.Fprintln(out, "  nothing studied yet")
	}
	w := table(out)
	for _, p := range d.Progress {
		_, _ = fmt.Fprintf(w, "  %s\t%3.0f%%\t%d/%d correct\n", p.TopicID, p.MasteryLevel*100, p.CorrectAnswers, p.QuestionsAnswered)
	}
	_ = w.Flush()

	if len(d.RecentTopics) > 0 {
		_, _ = fmt.Fprintln(out, "\nRecent topics")
		for _, t := range d.RecentTopics {
			_, _ = fmt.Fprintf(out, "  %s (%s)\n", t.Name, t.ID)
		}
	}

	for _, s := range d.Subjects {
		if s.Provenance != domain.ProvenanceReal {
			notice(cmd, s.Provenance)
			break
		}
	}
	return nil
}

func runProgress(cmd *cobra.Command, args []string) error {
	p, err := app.Client.UpdateProgress(cmd.Context(), domain.ProgressUpdate{
		TopicID:           progTopic,
		MasteryLevel:      progMastery,
		QuestionsAnswered: progAnswered,
		CorrectAnswers:    progCorrect,
	})
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, p)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Progress on %s: %.0f%% mastery\n", p.TopicID, p.MasteryLevel*100)
	return nil
}
