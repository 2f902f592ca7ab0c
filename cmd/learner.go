package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhisek/skillforge/internal/engine"
	"github.com/abhisek/skillforge/internal/readiness"
	"github.com/abhisek/skillforge/internal/recommend"
	"github.com/abhisek/skillforge/internal/spacedrep"
)

var seedCmd = &cobra.Command{
	Use:   "seed <user>",
	Short: "Provision a learner with the root skills unlocked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.engine.SeedFoundation(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, res)
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute [user]",
	Short: "Apply decay, unlock skills and refresh recommendations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) == 1) {
			return fmt.Errorf("pass a user or --all, not both")
		}

		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if all {
			n, err := rt.engine.RecomputeAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Recomputed %d learners.\n", n)
			return nil
		}

		res, err := rt.engine.Recompute(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, res)
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity <user>",
	Short: "Record a completed activity and reinforce its skills",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skills, _ := cmd.Flags().GetStringSlice("skill")
		title, _ := cmd.Flags().GetString("title")
		kind, _ := cmd.Flags().GetString("kind")

		a := engine.Activity{
			UserID:   args[0],
			Title:    title,
			Kind:     kind,
			SkillIDs: skills,
		}
		if cmd.Flags().Changed("performance") {
			p, _ := cmd.Flags().GetFloat64("performance")
			a.Performance = &p
		}

		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.engine.RecordActivity(cmd.Context(), a)
		if err != nil {
			return err
		}
		return printResult(cmd, res)
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <user>",
	Short: "Show a learner's active recommendations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if fresh, _ := cmd.Flags().GetBool("fresh"); fresh {
			if _, err := rt.engine.Recompute(cmd.Context(), args[0]); err != nil {
				return err
			}
		}
		recs, err := rt.engine.Recommendations(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON(cmd) {
			return writeJSON(recs)
		}
		printRecommendations(recs)
		return nil
	},
}

var readinessCmd = &cobra.Command{
	Use:   "readiness <user>",
	Short: "Show a learner's latest placement readiness",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		score, err := rt.engine.Readiness(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON(cmd) {
			return writeJSON(score)
		}
		printReadiness(score)
		return nil
	},
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews <user>",
	Short: "Show when mastered skills are due for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		items, err := rt.engine.Reviews(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if dueOnly, _ := cmd.Flags().GetBool("due"); dueOnly {
			items = lo.Filter(items, func(it engine.ReviewItem, _ int) bool {
				return it.Status != spacedrep.ReviewNotDue
			})
		}
		if asJSON(cmd) {
			return writeJSON(items)
		}
		if len(items) == 0 {
			fmt.Println("No reviews scheduled.")
			return nil
		}

		fmt.Printf("%-24s  %-32s  %5s  %-16s  %s\n", "Skill", "Name", "Level", "Due", "Status")
		fmt.Println(strings.Repeat("─", 95))
		for _, it := range items {
			name := it.Name
			if len(name) > 32 {
				name = name[:29] + "..."
			}
			status := string(it.Status)
			if it.OverdueDays > 0 {
				status = fmt.Sprintf("%s (%.1fd)", status, it.OverdueDays)
			}
			fmt.Printf("%-24s  %-32s  %5d  %-16s  %s\n",
				it.SkillID, name, it.Level, it.DueAt.Local().Format("2006-01-02 15:04"), status)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{seedCmd, recomputeCmd, activityCmd, recommendCmd, readinessCmd, reviewsCmd} {
		c.Flags().Bool("json", false, "Print JSON instead of a table")
	}
	recomputeCmd.Flags().Bool("all", false, "Recompute every learner")

	activityCmd.Flags().StringSlice("skill", nil, "Skill practiced by the activity (repeatable)")
	activityCmd.Flags().Float64("performance", 0, "Performance between 0 and 1")
	activityCmd.Flags().String("title", "", "Activity title")
	activityCmd.Flags().String("kind", "", "Activity kind, e.g. course, project, exercise")
	_ = activityCmd.MarkFlagRequired("skill")

	recommendCmd.Flags().Bool("fresh", false, "Recompute before listing")
	reviewsCmd.Flags().Bool("due", false, "Only show reviews that are due")
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(cmd *cobra.Command, res *engine.Result) error {
	if asJSON(cmd) {
		return writeJSON(res)
	}
	if len(res.NewlyUnlocked) > 0 {
		fmt.Printf("Unlocked: %s\n\n", strings.Join(res.NewlyUnlocked, ", "))
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	printRecommendations(res.Recommendations)
	fmt.Println()
	printReadiness(res.Readiness)
	return nil
}

func printRecommendations(recs []recommend.Recommendation) {
	if len(recs) == 0 {
		fmt.Println("No recommendations.")
		return
	}
	fmt.Printf("%-4s  %-24s  %-32s  %-7s  %5s  %s\n", "#", "Skill", "Name", "Kind", "Score", "Reason")
	fmt.Println(strings.Repeat("─", 110))
	for i, r := range recs {
		name := r.Name
		if len(name) > 32 {
			name = name[:29] + "..."
		}
		fmt.Printf("%-4d  %-24s  %-32s  %-7s  %5d  %s\n", i+1, r.SkillID, name, r.Kind, r.Score, r.Reason)
	}
}

func printReadiness(s readiness.Score) {
	fmt.Printf("Placement readiness: %d/100\n", s.PlacementReadiness)
	fmt.Printf("  Skills mastered:   %d of %d\n", s.SkillsMastered, s.SkillsTracked)
	fmt.Printf("  Average mastery:   %.1f\n", s.AverageMastery)
	fmt.Printf("  Coverage:          %.1f%%\n", s.Coverage)
	fmt.Printf("  Consistency:       %d\n", s.ConsistencyScore)
	fmt.Printf("  Goal progress:     %d\n", s.GoalProgress)
	fmt.Printf("  Interview score:   %d\n", s.InterviewScore)
}
