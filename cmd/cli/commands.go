package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(conflictsCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(attendanceCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the current game state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/state")
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Trigger a sync cycle now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/sync", "")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/sync/status")
	},
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List pending sync conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/conflicts")
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <conflict-id> <local|server>",
	Short: "Resolve a pending sync conflict",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := fmt.Sprintf(`{"conflict_id":%q,"choice":%q}`, args[0], args[1])
		return performPostRequest("/conflicts/resolve", body)
	},
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the members in the roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/members")
	},
}

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Show today's attendance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/attendance")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show today's games-played counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/stats")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint, body string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
