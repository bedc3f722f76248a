package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/slackmgr/contacts"
	"github.com/slackmgr/contacts/api"
	"github.com/slackmgr/contacts/devserver"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contacts API over HTTP.",
	Long: `Serve the contacts API over HTTP.

Routes:
  GET  /contacts       list all contacts
  GET  /contacts/{id}  get one contact
  POST /contacts       create a contact
  GET  /metrics        Prometheus metrics
  GET  /liveness       liveness probe

The server stops gracefully on SIGINT or SIGTERM.
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		createTable, _ := cmd.Flags().GetBool("create-table")
		skipValidation, _ := cmd.Flags().GetBool("skip-schema-validation")

		ctx := cmd.Context()
		logger := flags.logger()

		if flags.table == "" {
			logger.Warnf("No table configured, every request will fail until --table or $%s is set", contacts.TableNameEnv)
		}

		client, err := flags.connect(ctx, logger)
		if err != nil {
			return err
		}

		if flags.table != "" {
			if createTable {
				if err := client.CreateTable(ctx); err != nil {
					return fmt.Errorf("failed to create table: %w", err)
				}
			}

			if err := client.Init(ctx, skipValidation); err != nil {
				return fmt.Errorf("table validation failed: %w", err)
			}
		}

		h := api.New(flags.config(), client, logger)
		addr := net.JoinHostPort(host, strconv.Itoa(port))

		return devserver.New(h, logger).Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "Hostname or IP address to listen on")
	serveCmd.Flags().IntP("port", "p", 8080, "Port on which to listen")
	serveCmd.Flags().Bool("create-table", false, "Create the table if it does not exist")
	serveCmd.Flags().Bool("skip-schema-validation", false, "Skip table schema validation at startup")
}
