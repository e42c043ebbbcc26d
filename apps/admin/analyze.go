package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/simulado/core/question"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func (cli *commandLine) analyzeCmd() *cobra.Command {
	var file, subjectID, format string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Preview the questions recognized in an HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" || subjectID == "" || !(format == formatJSON || format == formatYAML) {
				_ = cmd.Usage()
				return errHelp
			}
			res, err := cli.analyze(file, subjectID)
			if err != nil {
				return err
			}
			return cli.printAnalysis(res, format)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "HTML file to analyze")
	cmd.Flags().StringVarP(&subjectID, "subject", "s", "", "subject id")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or yaml")
	return cmd
}

// analyze reads file and runs it through the same validation and extraction as the API.
func (cli *commandLine) analyze(file, subjectID string) (question.AnalyzeResult, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return question.AnalyzeResult{}, errors.Wrap(err, "reading html file")
	}

	req := question.AnalyzeRequest{HTMLContent: string(content), SubjectID: subjectID}
	if err = req.Validate(cli.validate, cli.conf.Importer.MaxBlobBytes); err != nil {
		return question.AnalyzeResult{}, err
	}
	return cli.qSvc.Analyze(req), nil
}

func (cli *commandLine) printAnalysis(res question.AnalyzeResult, format string) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(cli.out)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
	default:
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return errors.Wrap(err, "encoding json")
		}
	}

	if cli.stdoutIsTerminal() {
		fmt.Fprintf(cli.errOut, "\n%d question(s) recognized\n", res.Count)
		for i, q := range res.Questions {
			fmt.Fprintf(cli.errOut, "  %d. %s [%s]\n", i+1, q.Prompt, q.CorrectLabel)
		}
	}
	return nil
}
