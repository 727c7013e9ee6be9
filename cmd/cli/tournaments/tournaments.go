package tournaments

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmichard/tourneyhub/cmd/cli/client"
	"github.com/jmichard/tourneyhub/cmd/cli/config"
	"github.com/jmichard/tourneyhub/cmd/cli/output"
	"github.com/jmichard/tourneyhub/cmd/cli/root"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	tournamentsCmd := &cobra.Command{
		Use:   "tournaments",
		Short: "Browse and manage tournaments",
	}

	tournamentsCmd.AddCommand(
		listCmd(),
		createCmd(),
		joinCmd(),
		leaveCmd(),
	)

	root.GetRoot().AddCommand(tournamentsCmd)
}

func newClient() *client.Client {
	return client.New(config.APIURL(), config.LoadToken())
}

func authedClient() (*client.Client, error) {
	c := newClient()
	if !c.Authenticated() {
		return nil, fmt.Errorf("not logged in, run 'tourney login' first")
	}
	return c, nil
}

// ==========================
// LIST
// ==========================
func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tournaments",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := newClient().Tournaments(true)
			if err != nil {
				return fmt.Errorf("failed to list tournaments: %w", err)
			}

			rows := [][]interface{}{}
			for _, t := range list {
				players := fmt.Sprintf("%d/%d", t.CurrentParticipants, t.MaxParticipants)
				rows = append(rows, []interface{}{
					t.ID, t.Name, t.Game, t.Format,
					t.Date.Format("2006-01-02 15:04"),
					players, t.Organizer.Username,
				})
			}

			output.RenderTable(
				[]string{"ID", "Name", "Game", "Format", "Date", "Players", "Organizer"},
				rows,
			)
			return nil
		},
	}
}

// ==========================
// CREATE
// ==========================
func createCmd() *cobra.Command {
	var name, game, format, date string
	var maxParticipants int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tournament",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}

			t, err := c.Create(client.CreateInput{
				Name:            name,
				Game:            game,
				Format:          strings.ToUpper(format),
				Date:            date,
				MaxParticipants: maxParticipants,
			})
			if err != nil {
				return fmt.Errorf("failed to create tournament: %w", err)
			}

			fmt.Printf("Created tournament %s (%s).\n", t.Name, t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Tournament name (at least 3 characters)")
	cmd.Flags().StringVar(&game, "game", "", "Game title")
	cmd.Flags().StringVar(&format, "format", "SOLO", "Format: SOLO, DUO or TEAM")
	cmd.Flags().StringVar(&date, "date", "", "Start date, e.g. 2026-09-12T18:00")
	cmd.Flags().IntVar(&maxParticipants, "max-participants", 16, "Maximum number of participants (2-128)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("game")
	cmd.MarkFlagRequired("date")

	return cmd
}

// ==========================
// JOIN
// ==========================
func joinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join [id]",
		Short: "Join a tournament",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}

			t, err := c.Join(args[0])
			if err != nil {
				return fmt.Errorf("failed to join tournament: %w", err)
			}

			fmt.Printf("Joined %s (%d/%d players).\n", t.Name, t.CurrentParticipants, t.MaxParticipants)
			return nil
		},
	}
}

// ==========================
// LEAVE
// ==========================
func leaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave [id]",
		Short: "Leave a tournament",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}

			t, err := c.Leave(args[0])
			if err != nil {
				return fmt.Errorf("failed to leave tournament: %w", err)
			}

			fmt.Printf("Left %s (%d/%d players).\n", t.Name, t.CurrentParticipants, t.MaxParticipants)
			return nil
		},
	}
}
