package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	echoapi "github.com/trezcool/simulado/apps/api/echo"
	"github.com/trezcool/simulado/core"
)

func (cli *commandLine) tokenCmd() *cobra.Command {
	var op core.Operator
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a back-office (admin) API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op.Email = core.CleanString(op.Email, true /* lower */)
			op.Name = core.CleanString(op.Name)
			if op.Email == "" || op.Name == "" {
				_ = cmd.Usage()
				return errHelp
			}
			if op.ID == "" {
				op.ID = uuid.NewString()
			}
			return cli.token(op)
		},
	}
	cmd.Flags().StringVar(&op.Email, "email", "", "operator e-mail; import reports are sent there")
	cmd.Flags().StringVar(&op.Name, "name", "", "operator name")
	cmd.Flags().StringVar(&op.ID, "id", "", "operator id (random by default)")
	return cmd
}

func (cli *commandLine) token(op core.Operator) error {
	token, err := echoapi.GenerateToken(echoapi.NewClaims(op, true, cli.conf), cli.conf.SecretKey)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, token)
	return err
}
