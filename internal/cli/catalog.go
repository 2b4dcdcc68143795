package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietddude/studyclient/internal/studyapi"
)

var (
	contentType    string
	recommendLimit int
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List subjects",
	Args:  cobra.NoArgs,
	RunE:  runSubjects,
}

var topicsCmd = &cobra.Command{
	Use:   "topics [subject_id]",
	Short: "List topics, optionally for one subject",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTopics,
}

var contentsCmd = &cobra.Command{
	Use:   "contents [topic_id]",
	Short: "List learning contents for a topic",
	Args:  cobra.ExactArgs(1),
	RunE:  runContents,
}

var contentCmd = &cobra.Command{
	Use:   "content [content_id]",
	Short: "Show one learning content item",
	Args:  cobra.ExactArgs(1),
	RunE:  runContent,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [topic_id]",
	Short: "Suggest learning contents, optionally for one topic",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRecommend,
}

var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List education systems and their grades",
	Args:  cobra.NoArgs,
	RunE:  runSystems,
}

func init() {
	contentsCmd.Flags().StringVar(&contentType, "type", "", "content type, e.g. explanation or example")
	recommendCmd.Flags().IntVar(&recommendLimit, "limit", 5, "number of suggestions (1-20)")
	rootCmd.AddCommand(subjectsCmd, topicsCmd, contentsCmd, contentCmd, recommendCmd, systemsCmd)
}

func runSubjects(cmd *cobra.Command, args []string) error {
	res, err := app.Client.ListSubjects(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, res.Value)
	}

	w := table(cmd.OutOrStdout())
	_, _ = fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, s := range res.Value {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Name, s.Description)
	}
	_ = w.Flush()
	notice(cmd, res.Provenance)
	return nil
}

func runTopics(cmd *cobra.Command, args []string) error {
	var subjectID string
	if len(args) > 0 {
		subjectID = args[0]
	}
	res, err := app.Client.ListTopics(cmd.Context(), subjectID)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, res.Value)
	}

	w := table(cmd.OutOrStdout())
	_, _ = fmt.Fprintln(w, "ID\tSUBJECT\tNAME\tDIFFICULTY")
	for _, t := range res.Value {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\n", t.ID, t.SubjectID, t.Name, t.Difficulty)
	}
	_ = w.Flush()
	notice(cmd, res.Provenance)
	return nil
}

func runContents(cmd *cobra.Command, args []string) error {
	res, err := app.Client.ListContents(cmd.Context(), studyapi.ContentQuery{
		TopicID:     args[0],
		ContentType: contentType,
	})
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, res.Value)
	}

	for _, c := range res.Value {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "## %s [%s]\n\n%s\n\n", c.Title, c.Type, c.Body)
	}
	notice(cmd, res.Provenance)
	return nil
}

func runContent(cmd *cobra.Command, args []string) error {
	res, err := app.Client.GetContent(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, res.Value)
	}

	c := res.Value
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "## %s [%s]\n\n%s\n", c.Title, c.Type, c.Body)
	notice(cmd, res.Provenance)
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	q := studyapi.RecommendationQuery{Limit: recommendLimit}
	if len(args) > 0 {
		q.TopicID = args[0]
	}
	res, err := app.Client.Recommendations(cmd.Context(), q)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, res.Value)
	}

	w := table(cmd.OutOrStdout())
	_, _ = fmt.Fprintln(w, "ID\tTOPIC\tTYPE\tTITLE")
	for _, c := range res.Value {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.TopicID, c.Type, c.Title)
	}
	_ = w.Flush()
	notice(cmd, res.Provenance)
	return nil
}

func runSystems(cmd *cobra.Command, args []string) error {
	res, err := app.Client.EducationSystems(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, res.Value)
	}

	w := table(cmd.OutOrStdout())
	_, _ = fmt.Fprintln(w, "ID\tNAME\tGRADES")
	for _, s := range res.Value {
		grades, err := app.Client.Grades(cmd.Context(), s.ID)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", s.ID, s.Name, len(grades.Value))
	}
	_ = w.Flush()
	notice(cmd, res.Provenance)
	return nil
}
