package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
)

const sampleProfile = `{
  "agent_name": "Jane Smith",
  "brokerage": "Lone Star Realty",
  "phone": "555-0100",
  "email": "jane@example.com",
  "city_area": "The Woodlands"
}`

type TestClient struct {
	baseURL string
	client  *http.Client
	out     io.Writer
}

func NewTestClient(baseURL string, out io.Writer) *TestClient {
	return &TestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		out: out,
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var baseURL string

	rootCmd := &cobra.Command{
		Use:          "provisioner-test",
		Short:        "Smoke tests for a running Agent Site Provisioner",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the agent")

	client := func(cmd *cobra.Command) *TestClient {
		tc := NewTestClient(baseURL, cmd.OutOrStdout())
		tc.printHeader("Agent Site Provisioner - Test Suite")
		fmt.Fprintf(tc.out, "%sBase URL: %s%s\n\n", colorCyan, baseURL, colorReset)
		return tc
	}

	check := func(ok bool) error {
		if !ok {
			return fmt.Errorf("test failed")
		}
		return nil
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "all",
			Short: "Run every test",
			RunE: func(cmd *cobra.Command, args []string) error {
				return check(client(cmd).runAllTests())
			},
		},
		&cobra.Command{
			Use:   "health",
			Short: "Check the health endpoint",
			RunE: func(cmd *cobra.Command, args []string) error {
				return check(client(cmd).testHealthCheck())
			},
		},
		&cobra.Command{
			Use:   "agent-card",
			Short: "Fetch and validate the agent card",
			RunE: func(cmd *cobra.Command, args []string) error {
				return check(client(cmd).testAgentCard())
			},
		},
		&cobra.Command{
			Use:   "website",
			Short: "Provision a website for the sample agent",
			RunE: func(cmd *cobra.Command, args []string) error {
				return check(client(cmd).testWebsiteGeneration())
			},
		},
		&cobra.Command{
			Use:   "custom <profile.json>",
			Short: "Provision a website for the agent profile in a JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read profile: %w", err)
				}
				if !json.Valid(data) {
					return fmt.Errorf("profile %s is not valid JSON", args[0])
				}
				return check(client(cmd).testCustomWebsite(string(data)))
			},
		},
	)

	return rootCmd
}

func (tc *TestClient) runAllTests() bool {
	tests := []struct {
		name string
		fn   func() bool
	}{
		{"Health Check", tc.testHealthCheck},
		{"Agent Card", tc.testAgentCard},
		{"Website Generation", tc.testWebsiteGeneration},
	}

	passed := 0
	failed := 0

	for _, test := range tests {
		if test.fn() {
			passed++
		} else {
			failed++
		}
		fmt.Fprintln(tc.out)
	}

	tc.printHeader("Test Summary")
	fmt.Fprintf(tc.out, "%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Fprintf(tc.out, "%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Fprintf(tc.out, "Total: %d\n", passed+failed)

	return failed == 0
}

func (tc *TestClient) testHealthCheck() bool {
	tc.printTestHeader("Testing Health Check Endpoint")

	url := fmt.Sprintf("%s/health", tc.baseURL)
	fmt.Fprintf(tc.out, "GET %s\n", url)

	resp, err := tc.client.Get(url)
	if err != nil {
		tc.printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		tc.printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}

	if string(body) != "OK" {
		tc.printError(fmt.Sprintf("Expected body 'OK', got '%s'", string(body)))
		return false
	}

	tc.printSuccess("Health check passed")
	return true
}

func (tc *TestClient) testAgentCard() bool {
	tc.printTestHeader("Testing Agent Card Endpoint")

	url := fmt.Sprintf("%s/.well-known/agent.json", tc.baseURL)
	fmt.Fprintf(tc.out, "GET %s\n", url)

	resp, err := tc.client.Get(url)
	if err != nil {
		tc.printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		tc.printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Fprintf(tc.out, "Response: %s\n", string(body))
		return false
	}

	var agentCard map[string]any
	if err := json.Unmarshal(body, &agentCard); err != nil {
		tc.printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	requiredFields := []string{"name", "description", "version", "capabilities", "endpoints"}
	for _, field := range requiredFields {
		if _, ok := agentCard[field]; !ok {
			tc.printError(fmt.Sprintf("Missing required field: %s", field))
			return false
		}
	}

	tc.printSuccess("Agent card is valid")
	tc.printJSON(body)
	return true
}

func (tc *TestClient) testWebsiteGeneration() bool {
	return tc.testCustomWebsite(sampleProfile)
}

func (tc *TestClient) testCustomWebsite(profileJSON string) bool {
	tc.printTestHeader("Testing Website Generation")

	url := fmt.Sprintf("%s/a2a/provisioner", tc.baseURL)
	fmt.Fprintf(tc.out, "POST %s\n", url)

	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      fmt.Sprintf("test-%d", time.Now().Unix()),
		"method":  "message/send",
		"params": map[string]any{
			"message": map[string]any{
				"kind": "message",
				"role": "user",
				"parts": []map[string]any{
					{
						"kind": "data",
						"data": json.RawMessage(profileJSON),
					},
				},
			},
			"configuration": map[string]any{
				"blocking":            true,
				"acceptedOutputModes": []string{"text", "data"},
			},
		},
	}

	jsonData, _ := json.MarshalIndent(request, "", "  ")
	fmt.Fprintf(tc.out, "%sRequest:%s\n", colorYellow, colorReset)
	fmt.Fprintln(tc.out, string(jsonData))
	fmt.Fprintln(tc.out)

	resp, err := tc.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		tc.printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		tc.printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Fprintf(tc.out, "Response: %s\n", string(body))
		return false
	}

	var response struct {
		Error  json.RawMessage `json:"error"`
		Result *struct {
			Status struct {
				State   string `json:"state"`
				Message *struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"message"`
			} `json:"status"`
			Artifacts json.RawMessage `json:"artifacts"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		tc.printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	if len(response.Error) > 0 && string(response.Error) != "null" {
		tc.printError("Request returned an error")
		tc.printJSON(response.Error)
		return false
	}

	if response.Result == nil {
		tc.printError("Invalid result format")
		return false
	}

	if state := response.Result.Status.State; state != "completed" {
		tc.printError(fmt.Sprintf("Expected state 'completed', got '%s'", state))
		return false
	}

	tc.printSuccess("Website generation completed successfully")

	if msg := response.Result.Status.Message; msg != nil {
		fmt.Fprintf(tc.out, "\n%sWebsite:%s\n", colorGreen, colorReset)
		fmt.Fprintln(tc.out, strings.Repeat("=", 80))
		for _, part := range msg.Parts {
			if part.Text != "" {
				fmt.Fprintln(tc.out, part.Text)
			}
		}
		fmt.Fprintln(tc.out, strings.Repeat("=", 80))
	}

	if len(response.Result.Artifacts) > 0 {
		fmt.Fprintf(tc.out, "\n%sArtifacts:%s\n", colorPurple, colorReset)
		tc.printJSON(response.Result.Artifacts)
	}

	return true
}

func (tc *TestClient) printHeader(text string) {
	fmt.Fprintf(tc.out, "\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Fprintf(tc.out, "%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Fprintf(tc.out, "%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func (tc *TestClient) printTestHeader(text string) {
	fmt.Fprintf(tc.out, "%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Fprintln(tc.out, strings.Repeat("-", 80))
}

func (tc *TestClient) printSuccess(text string) {
	fmt.Fprintf(tc.out, "%s✓ %s%s\n", colorGreen, text, colorReset)
}

func (tc *TestClient) printError(text string) {
	fmt.Fprintf(tc.out, "%s✗ %s%s\n", colorRed, text, colorReset)
}

func (tc *TestClient) printJSON(data []byte) {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err == nil {
		fmt.Fprintf(tc.out, "\n%sResponse:%s\n%s\n", colorYellow, colorReset, prettyJSON.String())
	}
}
