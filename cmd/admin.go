package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"cfbranker.dev/cfb/internal/echo"
)

// adminBaseURL mirrors baseURL in server.go but targets the admin surface
// directly rather than going through /v1/ path construction per-call.
const adminBaseURL string = "http://localhost:8080/v1/admin"

// AdminCmd creates the admin command group. These subcommands talk to a
// running server's admin routes over HTTP, the same cURL-like style as
// ServerFetchCmd, rather than touching the database directly.
func AdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin operations against a running server",
		Long:  "Trigger manual updates, poll task status, and inspect or adjust runtime config on a running API server.",
	}

	cmd.AddCommand(AdminTriggerCmd())
	cmd.AddCommand(AdminStatusCmd())
	cmd.AddCommand(AdminUsageCmd())
	cmd.AddCommand(AdminConfigGetCmd())
	cmd.AddCommand(AdminConfigSetCmd())
	return cmd
}

// AdminTriggerCmd creates the trigger-update command
func AdminTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger-update",
		Short: "Enqueue a manual update task",
		Long:  "Trigger a manual update; fails if a task is already pending or running.",
		RunE:  adminTrigger,
	}
}

// AdminStatusCmd creates the status command
func AdminStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [task_id]",
		Short: "Poll an update task's status",
		Args:  cobra.ExactArgs(1),
		RunE:  adminStatus,
	}
}

// AdminUsageCmd creates the usage command
func AdminUsageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show the provider usage dashboard",
		RunE:  adminUsage,
	}
	cmd.Flags().String("month", "", "Month to report on, formatted YYYY-MM (defaults to the current month)")
	return cmd
}

// AdminConfigGetCmd creates the config-get command
func AdminConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-get",
		Short: "Show the runtime admin config",
		RunE:  adminConfigGet,
	}
}

// AdminConfigSetCmd creates the config-set command
func AdminConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config-set",
		Short: "Update the runtime admin config",
		Long:  "Adjust the monthly API limit, warning threshold, and/or active-season window; omitted flags leave that field unchanged.",
		RunE:  adminConfigSet,
	}
	cmd.Flags().Int("monthly-limit", 0, "New monthly API call limit")
	cmd.Flags().Float64("warning-threshold", 0, "New warning threshold percentage (0, 100]")
	cmd.Flags().Int("window-start-month", 0, "New active-season window start month (1-12)")
	cmd.Flags().Int("window-end-month", 0, "New active-season window end month (1-12)")
	return cmd
}

func adminRequest(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, adminBaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("error: failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error: %w", err)
	}
	return resp, nil
}

func printJSONBody(resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error: failed to read response: %w", err)
	}

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, body, "", "  "); err != nil {
		echo.Info(string(body))
	} else {
		echo.Info(prettyJSON.String())
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("error: server returned status %s", resp.Status)
	}
	return nil
}

func adminTrigger(cmd *cobra.Command, args []string) error {
	echo.Header("Trigger Manual Update")
	resp, err := adminRequest(http.MethodPost, "/trigger-update", nil)
	if err != nil {
		return err
	}
	return printJSONBody(resp)
}

func adminStatus(cmd *cobra.Command, args []string) error {
	echo.Header("Update Task Status")
	resp, err := adminRequest(http.MethodGet, "/update-status/"+args[0], nil)
	if err != nil {
		return err
	}
	return printJSONBody(resp)
}

func adminUsage(cmd *cobra.Command, args []string) error {
	echo.Header("Provider Usage Dashboard")
	month, _ := cmd.Flags().GetString("month")
	path := "/usage-dashboard"
	if month != "" {
		path += "?month=" + month
	}
	resp, err := adminRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return printJSONBody(resp)
}

func adminConfigGet(cmd *cobra.Command, args []string) error {
	echo.Header("Admin Config")
	resp, err := adminRequest(http.MethodGet, "/config", nil)
	if err != nil {
		return err
	}
	return printJSONBody(resp)
}

func adminConfigSet(cmd *cobra.Command, args []string) error {
	echo.Header("Update Admin Config")

	req := map[string]any{}
	if v, _ := cmd.Flags().GetInt("monthly-limit"); v != 0 {
		req["monthly_api_limit"] = v
	}
	if v, _ := cmd.Flags().GetFloat64("warning-threshold"); v != 0 {
		req["warning_threshold_percent"] = v
	}
	if v, _ := cmd.Flags().GetInt("window-start-month"); v != 0 {
		req["season_window_start_month"] = v
	}
	if v, _ := cmd.Flags().GetInt("window-end-month"); v != 0 {
		req["season_window_end_month"] = v
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("error: failed to encode request: %w", err)
	}

	resp, err := adminRequest(http.MethodPut, "/config", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	return printJSONBody(resp)
}
