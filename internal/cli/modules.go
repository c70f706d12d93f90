package cli

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var modulesPlatform string

// modulesCmd represents the modules command
var modulesCmd = &cobra.Command{
	Use:   "modules <make>",
	Short: "List module definitions for a vehicle make",
	Long: `Lists the ECU module definitions registered for a vehicle make.
The make is free text and is classified server-side, so "Audi", "vw" and
"VAG" all resolve to the same catalog.

Examples:
  codingreg-cli modules audi
  codingreg-cli modules vw --platform MQB`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := GetLogger()
		client := &http.Client{}

		targetURL := fmt.Sprintf("%s/api/v1/modules/%s", baseURL(log), url.PathEscape(args[0]))
		if modulesPlatform != "" {
			targetURL += "?platform=" + url.QueryEscape(modulesPlatform)
		}

		var resp struct {
			Manufacturer string `json:"manufacturer"`
			Modules      []struct {
				Address         string `json:"address"`
				Name            string `json:"name"`
				LongName        string `json:"longName"`
				CodingSupported bool   `json:"codingSupported"`
			} `json:"modules"`
			Count int `json:"count"`
		}
		getJSON(client, targetURL, &resp, log)

		if resp.Count == 0 {
			fmt.Printf("No modules registered for %s.\n", resp.Manufacturer)
			return
		}

		fmt.Printf("Modules for %s (%d):\n", resp.Manufacturer, resp.Count)
		for _, m := range resp.Modules {
			name := m.Name
			if m.LongName != "" {
				name = m.LongName
			}
			fmt.Printf("  %-6s %-40s coding: %s\n", m.Address, name, boolMark(m.CodingSupported))
		}
	},
}

// bitsCmd represents the bits command
var bitsCmd = &cobra.Command{
	Use:   "bits <make> <address>",
	Short: "List coding bit definitions for a module",
	Long: `Lists the labeled coding bits for one module, ordered by byte and bit
position.

Examples:
  codingreg-cli bits audi 17
  codingreg-cli bits vw 09 --platform MQB`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		log := GetLogger()
		client := &http.Client{}

		targetURL := fmt.Sprintf("%s/api/v1/modules/%s/%s/coding",
			baseURL(log), url.PathEscape(args[0]), url.PathEscape(args[1]))
		if modulesPlatform != "" {
			targetURL += "?platform=" + url.QueryEscape(modulesPlatform)
		}

		var resp struct {
			Manufacturer  string `json:"manufacturer"`
			ModuleAddress string `json:"moduleAddress"`
			ModuleName    string `json:"moduleName"`
			Bits          []struct {
				ByteIndex   int    `json:"byteIndex"`
				BitIndex    int    `json:"bitIndex"`
				Name        string `json:"name"`
				Category    string `json:"category"`
				SafetyLevel string `json:"safetyLevel"`
			} `json:"bits"`
			Count int `json:"count"`
		}
		getJSON(client, targetURL, &resp, log)

		title := resp.ModuleAddress
		if resp.ModuleName != "" {
			title = fmt.Sprintf("%s (%s)", resp.ModuleName, resp.ModuleAddress)
		}
		if resp.Count == 0 {
			fmt.Printf("No coding bits cataloged for module %s.\n", title)
			return
		}

		fmt.Printf("Coding bits for %s (%d):\n", title, resp.Count)
		for _, b := range resp.Bits {
			fmt.Printf("  byte %d bit %d  %-40s [%s/%s]\n", b.ByteIndex, b.BitIndex, b.Name, b.Category, b.SafetyLevel)
		}
	},
}

func init() {
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(bitsCmd)

	modulesCmd.Flags().StringVar(&modulesPlatform, "platform", "", "Filter by vehicle platform (e.g. MQB)")
	bitsCmd.Flags().StringVar(&modulesPlatform, "platform", "", "Filter by vehicle platform (e.g. MQB)")
}
