package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newVIPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vip",
		Short: "VIP status and claim commands",
	}

	cmd.AddCommand(newVIPStatusCmd())
	cmd.AddCommand(newVIPClaimCmd())

	return cmd
}

func newVIPStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <discord-id>",
		Short: "Show a player's VIP status across all servers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result VIP

			path := "/api/v1/players/by-discord/" + url.PathEscape(args[0]) + "/vip"
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	return cmd
}

func newVIPClaimCmd() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "claim <discord-id>",
		Short: "Convert banked seeding hours into VIP time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hours < 1 {
				return fmt.Errorf("--hours must be at least 1")
			}

			req := map[string]int{"hours": hours}
			var result Claim

			path := "/api/v1/players/by-discord/" + url.PathEscape(args[0]) + "/claim"
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 1, "Banked hours to convert")

	return cmd
}
