package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Apply the built-in definition catalogs (admin)",
	Long: `Applies the registry's built-in catalogs (VAG modules and coding bits,
generic OBD-II PIDs) through the admin API. Safe to re-run: definitions
upsert on their identity keys.

Requires an API token (--api-token, CODINGREG_API_TOKEN, or
'codingreg-cli configure').`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := GetLogger()
		client := &http.Client{}

		token := viper.GetString("api_token")
		if token == "" {
			log.Fatal("API token is not configured. Use --api-token flag, CODINGREG_API_TOKEN env var, or 'codingreg-cli configure'.")
		}

		var results []struct {
			Manufacturer   string `json:"manufacturer"`
			Version        string `json:"version"`
			ModulesCreated int    `json:"modulesCreated"`
			ModulesUpdated int    `json:"modulesUpdated"`
			BitsCreated    int    `json:"bitsCreated"`
			BitsUpdated    int    `json:"bitsUpdated"`
			PIDsCreated    int    `json:"pidsCreated"`
			PIDsUpdated    int    `json:"pidsUpdated"`
		}
		postJSON(client, baseURL(log)+"/api/v1/admin/seed", nil, token, &results, log)

		for _, r := range results {
			fmt.Printf("%s@%s: modules %d created / %d updated, bits %d/%d, pids %d/%d\n",
				r.Manufacturer, r.Version,
				r.ModulesCreated, r.ModulesUpdated,
				r.BitsCreated, r.BitsUpdated,
				r.PIDsCreated, r.PIDsUpdated)
		}
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
