package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player registration and stats commands",
	}

	cmd.AddCommand(newPlayerRegisterCmd())
	cmd.AddCommand(newPlayerStatsCmd())

	return cmd
}

func newPlayerRegisterCmd() *cobra.Command {
	var steamID, discordID, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Link a steam id to a discord account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steamID == "" || discordID == "" {
				return fmt.Errorf("--steam-id and --discord-id are required")
			}

			req := map[string]string{
				"steam_id":     steamID,
				"discord_id":   discordID,
				"display_name": name,
			}
			var result Player

			if err := client.Post("/api/v1/players/register", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&steamID, "steam-id", "", "Steam ID (required)")
	cmd.Flags().StringVar(&discordID, "discord-id", "", "Discord ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("steam-id")
	_ = cmd.MarkFlagRequired("discord-id")

	return cmd
}

func newPlayerStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <discord-id>",
		Short: "Show a player's banked and lifetime seeding time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player

			path := "/api/v1/players/by-discord/" + url.PathEscape(args[0])
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
