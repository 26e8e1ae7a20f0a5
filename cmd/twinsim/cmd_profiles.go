package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd, profilesShowCmd)
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Browse personality profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := newClient().ListProfiles(cmd.Context())
		if err != nil {
			return fmt.Errorf("list profiles: %w", err)
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tAGE\tMBTI\tINTERESTS")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", p.ID, p.Name, p.Age, p.MBTI, strings.Join(p.Interests, ", "))
		}
		return w.Flush()
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newClient().GetProfile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		fmt.Println(headerStyle.Render(p.Name))
		fmt.Printf("ID:          %s\n", p.ID)
		fmt.Printf("Age:         %d\n", p.Age)
		fmt.Printf("MBTI:        %s\n", p.MBTI)
		fmt.Printf("Interests:   %s\n", strings.Join(p.Interests, ", "))
		fmt.Printf("Values:      %s\n", strings.Join(p.Values, ", "))
		fmt.Printf("Spontaneity: %d/10\n", p.SpontaneityLevel)
		fmt.Printf("Expressive:  %d/10\n", p.EmotionalExpressiveness)
		if p.Bio != "" {
			fmt.Printf("\n%s\n", p.Bio)
		}
		return nil
	},
}
