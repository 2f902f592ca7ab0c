package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillforge/internal/store"
)

var graphCmd = &cobra.Command{
	Use:   "graph <user>",
	Short: "Show the skill graph as seen by a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		view, err := rt.engine.GraphView(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON(cmd) {
			return writeJSON(view)
		}

		fmt.Printf("%-24s  %-32s  %-12s  %-12s  %7s  %s\n",
			"ID", "Name", "Category", "Status", "Mastery", "Cluster")
		fmt.Println(strings.Repeat("─", 110))
		for _, n := range view.Nodes {
			name := n.Name
			if len(name) > 32 {
				name = name[:29] + "..."
			}
			fmt.Printf("%-24s  %-32s  %-12s  %-12s  %7d  %s\n",
				n.ID, name, n.Category, n.Status, n.Mastery, n.ClusterID)
		}

		if len(view.Clusters) > 0 {
			fmt.Println()
			for _, c := range view.Clusters {
				fmt.Printf("%-24s  %d/%d mastered (%.0f%%)\n", c.Name, c.Mastered, len(c.SkillIDs), c.Progress*100)
			}
		}
		fmt.Printf("\n%d skills, %d edges\n", len(view.Nodes), len(view.Edges))
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events <user>",
	Short: "List a learner's skill events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		skill, _ := cmd.Flags().GetString("skill")

		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		events, err := rt.engine.Events(cmd.Context(), args[0], store.QueryOpts{Limit: limit, SkillID: skill})
		if err != nil {
			return err
		}
		if asJSON(cmd) {
			return writeJSON(events)
		}
		if len(events) == 0 {
			fmt.Println("No skill events found.")
			return nil
		}

		fmt.Printf("%-6s  %-19s  %-24s  %-10s  %5s  %5s\n", "Seq", "Timestamp", "Skill", "Kind", "From", "To")
		fmt.Println(strings.Repeat("─", 80))
		for _, e := range events {
			fmt.Printf("%-6d  %-19s  %-24s  %-10s  %5d  %5d\n",
				e.Sequence, e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.SkillID, e.Kind, e.FromLevel, e.ToLevel)
		}
		fmt.Printf("\n%d events\n", len(events))
		return nil
	},
}

func init() {
	graphCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	eventsCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	eventsCmd.Flags().Int("limit", 50, "Maximum number of events to show")
	eventsCmd.Flags().String("skill", "", "Only events for this skill")
}
