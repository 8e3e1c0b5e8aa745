package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/carescope/internal/devserver"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Serve local stand-ins for the account and prediction services",
	Long: `Serve the account, survey, thyroid, lung and brain scan endpoints from one
process with deterministic answers. Point the client at it with
CARESCOPE_BASE_URL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		secret, _ := cmd.Flags().GetString("secret")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		quiet, _ := cmd.Flags().GetBool("quiet")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		ex := (&env{store: s}).explainer(cmd)

		host := addr
		if len(host) > 0 && host[0] == ':' {
			host = "127.0.0.1" + host
		}
		_, _ = color.New(color.FgGreen, color.Bold).Fprintf(os.Stderr, "devserver listening on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  export CARESCOPE_BASE_URL=http://%s\n", host)

		return devserver.Run(cmd.Context(), addr, devserver.New(devserver.Options{
			Secret:    secret,
			TokenTTL:  ttl,
			Explainer: ex,
			Quiet:     quiet,
		}))
	},
}

func init() {
	devserverCmd.Flags().String("addr", ":5000", "Listen address")
	devserverCmd.Flags().String("secret", os.Getenv("CARESCOPE_DEV_SECRET"), "Token signing secret (default: fixed development key)")
	devserverCmd.Flags().Duration("ttl", time.Hour, "Session token lifetime")
	devserverCmd.Flags().Bool("quiet", false, "Disable the request log")
}
