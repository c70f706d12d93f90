package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var decodePlatform string

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <make> <address> <hex>",
	Short: "Decode coding bytes against the bit registry",
	Long: `Decodes a module's raw coding bytes and prints every labeled bit with
its current value.

Examples:
  codingreg-cli decode audi 17 0B0400000000
  codingreg-cli decode vw 09 "23 8A 01" --platform MQB`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		log := GetLogger()
		client := &http.Client{}

		body := map[string]interface{}{
			"make":          args[0],
			"moduleAddress": args[1],
			"coding":        args[2],
		}
		if decodePlatform != "" {
			body["platform"] = decodePlatform
		}

		var report struct {
			ModuleAddress string `json:"moduleAddress"`
			ModuleName    string `json:"moduleName"`
			RawBytes      string `json:"rawBytes"`
			KnownBits     []struct {
				ByteIndex    int    `json:"byteIndex"`
				BitIndex     int    `json:"bitIndex"`
				Name         string `json:"name"`
				SafetyLevel  string `json:"safetyLevel"`
				CurrentValue bool   `json:"currentValue"`
			} `json:"knownBits"`
			UnknownBitCount int    `json:"unknownBitCount"`
			TotalBits       int    `json:"totalBits"`
			Error           string `json:"error"`
		}
		postJSON(client, baseURL(log)+"/api/v1/modules/parse-coding", body, "", &report, log)

		if report.Error != "" {
			fmt.Printf("Decode failed: %s\n", report.Error)
			return
		}

		title := report.ModuleAddress
		if report.ModuleName != "" {
			title = fmt.Sprintf("%s (%s)", report.ModuleName, report.ModuleAddress)
		}
		fmt.Printf("Coding for %s: %s\n", title, report.RawBytes)
		for _, b := range report.KnownBits {
			fmt.Printf("  byte %d bit %d  %-40s %-3s [%s]\n",
				b.ByteIndex, b.BitIndex, b.Name, boolMark(b.CurrentValue), b.SafetyLevel)
		}
		fmt.Printf("%d of %d bits labeled, %d unknown\n",
			len(report.KnownBits), report.TotalBits, report.UnknownBitCount)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVar(&decodePlatform, "platform", "", "Filter bit definitions by vehicle platform")
}
