package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/question"
)

func (cli *commandLine) importCmd() *cobra.Command {
	var file, subjectID, difficulty string
	var op core.Operator
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Analyze an HTML file and store the recognized questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" || subjectID == "" {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.importFile(cmd.Context(), file, subjectID, question.Difficulty(difficulty), op)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "HTML file to import")
	cmd.Flags().StringVarP(&subjectID, "subject", "s", "", "subject id")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", string(question.DifficultyMedium), "facil, medio or dificil")
	cmd.Flags().StringVar(&op.Email, "email", "", "send the import report to this address")
	cmd.Flags().StringVar(&op.Name, "name", "", "operator name")
	return cmd
}

func (cli *commandLine) importFile(ctx context.Context, file, subjectID string, difficulty question.Difficulty, op core.Operator) error {
	analysis, err := cli.analyze(file, subjectID)
	if err != nil {
		return err
	}
	if analysis.Count == 0 {
		fmt.Fprintln(cli.out, "no question recognized, nothing imported")
		return nil
	}

	req := question.ImportRequest{SubjectID: subjectID, Difficulty: difficulty, Questions: analysis.Questions}
	if err = req.Validate(cli.validate); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := cli.qSvc.Import(ctx, req, op)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%d question(s) imported, %d skipped as duplicates\n", res.Count, res.Skipped)
	for _, p := range res.SkippedPrompts {
		fmt.Fprintf(cli.out, "  skipped: %s\n", p)
	}
	return nil
}
