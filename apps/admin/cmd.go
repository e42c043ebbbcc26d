package main

import (
	"database/sql"
	"errors"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/question"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	conf     *core.Config
	qSvc     question.Service
	validate *validator.Validate
	out      io.Writer
	errOut   io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Back-office tasks of the question bank",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.errOut)

	root.AddCommand(
		cli.migrateCmd(),
		cli.tokenCmd(),
		cli.analyzeCmd(),
		cli.importCmd(),
	)
	return root
}

// run executes the command named by args; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 1 {
		root.SetArgs(args[1:])
	} else {
		root.SetArgs([]string{})
	}
	return root.Execute()
}

// stdoutIsTerminal reports whether output goes to an interactive terminal.
func (cli *commandLine) stdoutIsTerminal() bool {
	f, ok := cli.out.(*os.File)
	return ok && isTerminalFunc(int(f.Fd()))
}
