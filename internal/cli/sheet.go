package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietddude/studyclient/internal/core/domain"
)

var (
	genLevel     float64
	genSystem    string
	genGrade     string
	genInfo      string
	genTextbooks bool
	numQuestions int
)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Read and generate study sheets",
}

var sheetGetCmd = &cobra.Command{
	Use:   "get [topic_id]",
	Short: "Show the study sheet of a topic",
	Args:  cobra.ExactArgs(1),
	RunE:  runSheetGet,
}

var sheetGenerateCmd = &cobra.Command{
	Use:   "generate [topic_id]",
	Short: "Generate a personalised study sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runSheetGenerate,
}

var questionsCmd = &cobra.Command{
	Use:   "questions [topic_id]",
	Short: "Generate practice questions for a topic",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestions,
}

func init() {
	f := sheetGenerateCmd.Flags()
	f.Float64Var(&genLevel, "level", 5, "knowledge level from 1 to 10")
	f.StringVar(&genSystem, "system", "", "education system id")
	f.StringVar(&genGrade, "grade", "", "grade id")
	f.StringVar(&genInfo, "info", "", "additional information for the generator")
	f.BoolVar(&genTextbooks, "textbooks", false, "use uploaded textbooks")

	questionsCmd.Flags().IntVarP(&numQuestions, "count", "n", 5, "number of questions (1-20)")

	sheetCmd.AddCommand(sheetGetCmd, sheetGenerateCmd)
	rootCmd.AddCommand(sheetCmd, questionsCmd)
}

func runSheetGet(cmd *cobra.Command, args []string) error {
	res, err := app.Client.FetchStudySheet(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return showSheet(cmd, res.Value, res.Provenance)
}

func runSheetGenerate(cmd *cobra.Command, args []string) error {
	res, err := app.Client.GenerateStudySheet(cmd.Context(), domain.GenerateRequest{
		TopicID:         args[0],
		KnowledgeLevel:  genLevel,
		EducationSystem: genSystem,
		Grade:           genGrade,
		AdditionalInfo:  genInfo,
		UseTextbooks:    genTextbooks,
	})
	if err != nil {
		return err
	}
	return showSheet(cmd, res.Value, res.Provenance)
}

func showSheet(cmd *cobra.Command, s domain.StudySheet, p domain.Provenance) error {
	if asJSON {
		return printJSON(cmd, s)
	}
	renderSheet(cmd.OutOrStdout(), s)
	notice(cmd, p)
	return nil
}

func runQuestions(cmd *cobra.Command, args []string) error {
	qs, err := app.Client.GenerateQuestions(cmd.Context(), domain.QuestionRequest{
		TopicID:      args[0],
		NumQuestions: numQuestions,
	})
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, qs)
	}

	out := cmd.OutOrStdout()
	for i, q := range qs {
		_, _ = fmt.Fprintf(out, "%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			_, _ = fmt.Fprintf(out, "   %c) %s\n", 'a'+j, opt)
		}
	}
	return nil
}
