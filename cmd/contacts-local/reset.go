package main

import (
	"errors"
	"fmt"

	"github.com/slackmgr/contacts"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every contact in the table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flags.table == "" {
			return errors.New("no table configured, set --table or $" + contacts.TableNameEnv)
		}

		ctx := cmd.Context()
		logger := flags.logger()

		client, err := flags.connect(ctx, logger)
		if err != nil {
			return err
		}

		if err := client.DropAllData(ctx); err != nil {
			return fmt.Errorf("failed to reset table %s: %w", flags.table, err)
		}

		logger.Infof("Deleted all contacts from table %s", flags.table)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
