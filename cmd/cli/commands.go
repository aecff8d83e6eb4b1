package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	decline   bool
	sortField string
	sortOrder string
	dryRun    bool
	addBox    bool
	allBoxes  bool
)

func init() {
	confirmCmd.Flags().BoolVar(&decline, "decline", false, "Decline the heavy-view warning instead of proceeding")
	searchCmd.Flags().StringVar(&sortField, "sort", "day", "Sort records by day, rank or time")
	searchCmd.Flags().StringVar(&sortOrder, "order", "desc", "Sort order, asc or desc")
	reloadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Reload without announcing to Slack or publishing events")
	extraBoxesCmd.Flags().BoolVar(&addBox, "add", false, "Grant one extra box before showing the count")
	extraBoxesCmd.Flags().BoolVar(&allBoxes, "all", false, "List every player's extra boxes")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(daysCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(suggestionsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(extraBoxesCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the persisted usage counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/usage")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the dataset and index are loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/status")
	},
}

var daysCmd = &cobra.Command{
	Use:   "days",
	Short: "List every day with its winner, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/days")
	},
}

var dayCmd = &cobra.Command{
	Use:   "day <n>",
	Short: "Show the panel state of a day",
	Args:  dayArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/days/" + args[0])
	},
}

var openCmd = &cobra.Command{
	Use:   "open <n>",
	Short: "Open a day's full leaderboard",
	Args:  dayArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/days/" + args[0] + "/open")
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <n>",
	Short: "Answer the heavy-view warning of a day",
	Args:  dayArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/days/" + args[0] + "/confirm?proceed=" + strconv.FormatBool(!decline))
	},
}

var closeCmd = &cobra.Command{
	Use:   "close <n>",
	Short: "Collapse a day's leaderboard",
	Args:  dayArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/days/" + args[0] + "/close")
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <n>",
	Short: "Open a closed day panel or close an open one",
	Args:  dayArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/days/" + args[0] + "/toggle")
	},
}

var suggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "List every known player name",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/suggestions")
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find a player and list their results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("q", args[0])
		params.Set("sort", sortField)
		params.Set("order", sortOrder)
		return performGetRequest("/players/search?" + params.Encode())
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Drop the cached dataset and fetch it again",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/reload"
		if dryRun {
			endpoint += "?dry_run=true"
		}
		return performPostRequest(endpoint)
	},
}

var extraBoxesCmd = &cobra.Command{
	Use:   "extra-boxes [name]",
	Short: "Show, or with --add grant, a player's extra boxes",
	Args: func(cmd *cobra.Command, args []string) error {
		if allBoxes {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if allBoxes {
			return performGetRequest("/extra-boxes")
		}
		endpoint := "/players/" + url.PathEscape(args[0]) + "/extra-boxes"
		if addBox {
			return performPostRequest(endpoint)
		}
		return performGetRequest(endpoint)
	},
}

// dayArg requires exactly one integer argument.
func dayArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	if _, err := strconv.Atoi(args[0]); err != nil {
		return fmt.Errorf("day must be an integer, got %q", args[0])
	}
	return nil
}

func performGetRequest(endpoint string) error {
	return performRequest(http.MethodGet, endpoint)
}

func performPostRequest(endpoint string) error {
	return performRequest(http.MethodPost, endpoint)
}

func performRequest(method, endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making %s request to %s\n", method, url)

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
