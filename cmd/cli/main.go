package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledger-cli",
		Short: "Ledger CLI tool",
		Long:  `A command line interface for interacting with the ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(balancesCmd(), consistencyCmd(), accountsCmd(), transactionCountCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saldos",
		Short: "List account balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Balances []struct {
					Code    string `json:"code"`
					Name    string `json:"name"`
					Balance string `json:"balance"`
				} `json:"balances"`
				Total int64 `json:"total"`
			}

			if err := getJSON("/api/v1/saldos/", &result); err != nil {
				return err
			}

			fmt.Printf("%-12s %-32s %15s\n", "CODIGO", "NOMBRE", "SALDO")
			for _, b := range result.Balances {
				fmt.Printf("%-12s %-32s %15s\n", b.Code, truncate(b.Name, 32), b.Balance)
			}
			fmt.Printf("Total: %d\n", result.Total)

			return nil
		},
	}
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistencia",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report struct {
				Debits     string `json:"debits"`
				Credits    string `json:"credits"`
				Difference string `json:"difference"`
				Consistent bool   `json:"consistent"`
			}

			err := getJSON("/api/v1/saldos/consistencia", &report)
			if err != nil {
				// An inconsistent ledger answers 409 with the report
				// in the body; prefer showing the report over the
				// raw status error.
				if report.Difference != "" && !report.Consistent {
					return fmt.Errorf("consistency check FAILED: debits=%s credits=%s difference=%s",
						report.Debits, report.Credits, report.Difference)
				}

				return err
			}

			fmt.Printf("Consistency check PASSED (debits=%s credits=%s)\n", report.Debits, report.Credits)

			return nil
		},
	}
}

func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cuentas",
		Short: "List chart-of-accounts entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := getJSON("/api/v1/cuentas/", &result); err != nil {
				return err
			}

			printJSON(result)

			return nil
		},
	}
}

func transactionCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transacciones",
		Short: "Count journal transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Count int64 `json:"count"`
			}

			if err := getJSON("/api/v1/transacciones/count", &result); err != nil {
				return err
			}

			fmt.Printf("Transacciones: %d\n", result.Count)

			return nil
		},
	}
}

// getJSON fetches a path from the API and decodes the JSON body into v.
// Non-2xx responses still decode the body first, so callers can show
// error payloads such as a failed consistency report.
func getJSON(path string, v any) error {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("parsing response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max-3] + "..."
}
