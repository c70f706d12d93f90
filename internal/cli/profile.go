package cli

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var profileMake string

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile <vin>",
	Short: "Show the crowdsourced PID profile for a vehicle",
	Long: `Shows what the fleet has learned about a vehicle line: confirmed working
and failed PIDs, confidence, and the recommended gauge PIDs.

Examples:
  codingreg-cli profile WVWZZZ1KZAW123456
  codingreg-cli profile WVWZZZ1KZAW123456 --make vw`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := GetLogger()
		client := &http.Client{}

		q := url.Values{}
		q.Set("vin", args[0])
		if profileMake != "" {
			q.Set("make", profileMake)
		}
		targetURL := fmt.Sprintf("%s/api/v1/pids/profile?%s", baseURL(log), q.Encode())

		var rec struct {
			VINPrefix    string `json:"vinPrefix"`
			Manufacturer string `json:"manufacturer"`
			Profile      *struct {
				WorkingPIDs []string `json:"workingPids"`
				FailedPIDs  []string `json:"failedPids"`
				SampleCount int      `json:"sampleCount"`
				Confidence  float64  `json:"confidence"`
				BoostPID    string   `json:"boostPid"`
				OilTempPID  string   `json:"oilTempPid"`
			} `json:"profile"`
			AllPIDs []struct {
				PIDID string `json:"pidId"`
				Name  string `json:"name"`
				Unit  string `json:"unit"`
			} `json:"allPids"`
		}
		getJSON(client, targetURL, &rec, log)

		fmt.Printf("VIN prefix %s (%s)\n", rec.VINPrefix, rec.Manufacturer)
		if rec.Profile == nil {
			fmt.Println("No crowdsourced profile yet for this vehicle line.")
		} else {
			fmt.Printf("Samples: %d, confidence: %.2f\n", rec.Profile.SampleCount, rec.Profile.Confidence)
			fmt.Printf("Working PIDs (%d): %v\n", len(rec.Profile.WorkingPIDs), rec.Profile.WorkingPIDs)
			fmt.Printf("Failed PIDs (%d): %v\n", len(rec.Profile.FailedPIDs), rec.Profile.FailedPIDs)
			if rec.Profile.BoostPID != "" {
				fmt.Printf("Boost PID: %s\n", rec.Profile.BoostPID)
			}
			if rec.Profile.OilTempPID != "" {
				fmt.Printf("Oil temp PID: %s\n", rec.Profile.OilTempPID)
			}
		}

		if len(rec.AllPIDs) > 0 {
			fmt.Printf("Recommended PID order (%d):\n", len(rec.AllPIDs))
			for _, p := range rec.AllPIDs {
				fmt.Printf("  %-28s %s (%s)\n", p.PIDID, p.Name, p.Unit)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVar(&profileMake, "make", "", "Vehicle make, used when no profile exists for the VIN")
}
