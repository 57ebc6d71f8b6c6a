package commands

import (
	"fmt"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var openTokenPage bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Verify the configured Jira credentials",
	Long: `Checks the configured credentials against the Jira current-user endpoint.
With --open, the API token management page is opened in the browser so a
fresh token can be created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if openTokenPage {
			tokenURL := "https://id.atlassian.com/manage-profile/security/api-tokens"
			log.Info().Str("url", tokenURL).Msg("Opening API token page")
			if err := browser.OpenURL(tokenURL); err != nil {
				log.Warn().Err(err).Msg("Could not open browser, visit the URL manually")
			}
		}

		me, err := jiraClient.Myself()
		if err != nil {
			return fmt.Errorf("credential check failed: %w", err)
		}

		name := me.DisplayName
		if name == "" {
			name = me.Name
		}
		fmt.Printf("Authenticated as %s\n", name)
		return nil
	},
}

func init() {
	authCmd.Flags().BoolVar(&openTokenPage, "open", false, "open the Atlassian API token page in the browser")
	rootCmd.AddCommand(authCmd)
}
