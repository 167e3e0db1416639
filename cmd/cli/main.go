package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"runners-bot/internal/config"
	"runners-bot/internal/discord"
	"runners-bot/internal/docs"
	"runners-bot/internal/rank"
	"runners-bot/internal/storage"
	v "runners-bot/internal/version"
	"runners-bot/pkg/util"

	"github.com/spf13/cobra"
)

var (
	storagePath  string
	showCommands bool
)

var rootCmd = &cobra.Command{
	Use:     "runners-cli",
	Short:   "Offline tools for " + v.AppName,
	Long:    v.AppDescription + ".\n\nOffline tools that read the bot's configuration and datastore.",
	Version: v.String(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Parse()
		if err != nil {
			return err
		}
		appConfig = cfg
		if storagePath == "" {
			storagePath = cfg.StoragePath
		}
		return nil
	},
	SilenceUsage: true,
}

var appConfig *config.Config

var historyCmd = &cobra.Command{
	Use:   "history [guildID]",
	Short: "Print stored promotions (or commands with --commands)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.New(storagePath)
		if err != nil {
			return err
		}
		defer store.Close()

		guilds := store.Guilds()
		if len(args) == 1 {
			guilds = []string{args[0]}
		}

		out := cmd.OutOrStdout()
		for _, guildID := range guilds {
			if showCommands {
				records, err := store.FetchCommandHistory(guildID)
				if err != nil {
					return err
				}
				for _, r := range records {
					fmt.Fprintf(out, "%s\t%s\t%s\t!%s %s\n", guildID, util.FormatDateTpl(r.Datetime, "YYYY-MM-DD hh:mm:ss"), r.Username, r.Command, strings.Join(r.Args, " "))
				}
				continue
			}

			records, err := store.FetchPromotions(guildID)
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Fprintf(out, "%s\t%s\t%s: %s -> %s (by %s)\n", guildID, util.FormatDateTpl(r.Timestamp, "YYYY-MM-DD hh:mm:ss"), r.SubjectName, r.OldRank, r.NewRank, r.AuthorizedByName)
			}
		}
		return nil
	},
}

var ladderCmd = &cobra.Command{
	Use:   "ladder",
	Short: "Print the configured rank ladder, lowest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ladder, err := appConfig.Ladder()
		if err != nil {
			return err
		}
		for i, r := range ladder.Ranks() {
			id := r.ID
			if id == "" {
				id = "(by name)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", i, r.Name, id)
		}
		return nil
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <rank|none> <promote|demote>",
	Short: "Show what promote or demote would do to a member at a rank",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ladder, err := appConfig.Ladder()
		if err != nil {
			return err
		}
		line, err := simulate(ladder, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
		return nil
	},
}

var readmeCmd = &cobra.Command{
	Use:   "readme",
	Short: "Regenerate README.md from README.md.tmpl and the registered commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		ladder, err := appConfig.Ladder()
		if err != nil {
			return err
		}
		reg := discord.BuildRegistry(appConfig, nil, nil, ladder, time.Now())
		return docs.UpdateReadme(reg, appConfig.Prefix, "README.md.tmpl", "README.md")
	},
}

func simulate(ladder *rank.Ladder, from, action string) (string, error) {
	current := -1
	if !strings.EqualFold(from, "none") {
		if current = ladder.IndexOf(from); current < 0 {
			return "", fmt.Errorf("unknown rank %q", from)
		}
	}

	var dir rank.Direction
	switch strings.ToLower(action) {
	case "promote":
		dir = rank.Advance
	case "demote":
		dir = rank.Revert
	default:
		return "", fmt.Errorf("unknown action %q, want promote or demote", action)
	}

	res := ladder.Transition(current, dir)
	switch res.Kind {
	case rank.Applied:
		old := "None"
		if res.Removed != nil {
			old = res.Removed.Name
		}
		return fmt.Sprintf("applied: %s -> %s", old, res.Added.Name), nil
	case rank.Cleared:
		return fmt.Sprintf("cleared: %s removed", res.Removed.Name), nil
	}
	return res.Kind.String() + ": no change", nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "datastore file (default $STORAGE_PATH)")
	historyCmd.Flags().BoolVar(&showCommands, "commands", false, "print command history instead of promotions")
	rootCmd.AddCommand(historyCmd, ladderCmd, simulateCmd, readmeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
