// Package main implements the medrag CLI for manual operations against the medragd HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the medragd HTTP server
	serverURL string
	// topK is the number of records to retrieve for ask
	topK int
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "medrag",
	Short: "CLI for medragd HTTP server operations",
	Long: `medrag is a command-line interface for interacting with the medragd HTTP server.
It provides commands for asking medical questions, screening queries, and checking server health.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "medragd server URL")
	askCmd.Flags().IntVar(&topK, "top-k", 0, "number of records to retrieve (0 uses the server default)")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(safetyCmd)
	rootCmd.AddCommand(healthCmd)
}

// askCmd submits a question to the answer pipeline
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a medical question",
	Long: `Ask a medical question against the loaded patient record corpus.

Examples:
  # Ask a question
  medrag ask "What are common treatments for hypertension?"

  # Retrieve more records
  medrag ask --top-k 5 "What are typical diabetes symptoms?"

  # Use a different server
  medrag ask --server http://localhost:9090 "What is sepsis?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

// safetyCmd classifies a query without answering it
var safetyCmd = &cobra.Command{
	Use:   "safety <query>",
	Short: "Classify a query without answering it",
	Long: `Classify a query against the safety rules without running retrieval or generation.

Examples:
  # Check a query
  medrag safety "What is the patient's phone number?"`,
	Args: cobra.ExactArgs(1),
	RunE: runSafety,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check medragd server health",
	Long: `Check the health status of the medragd HTTP server.

Examples:
  # Check health
  medrag health

  # Check health on a different server
  medrag health --server http://localhost:9090`,
	RunE: runHealth,
}

// AnswerRequest matches internal/http/server.go AnswerRequest
type AnswerRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// AnswerResponse matches internal/pipeline Answer
type AnswerResponse struct {
	ID          string   `json:"id"`
	Query       string   `json:"query"`
	Mode        string   `json:"mode"`
	Answer      string   `json:"answer"`
	Sources     []Source `json:"sources"`
	ShowSources bool     `json:"show_sources"`
}

// Source matches internal/retriever Candidate
type Source struct {
	Rank       int     `json:"rank"`
	DocumentID int     `json:"document_id"`
	Text       string  `json:"document_text"`
	Similarity float64 `json:"similarity"`
}

// SafetyRequest matches internal/http/server.go SafetyRequest
type SafetyRequest struct {
	Query string `json:"query"`
}

// SafetyResponse matches internal/safety Verdict
type SafetyResponse struct {
	Allowed     bool   `json:"allowed"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
}

// BlockedResponse matches internal/http/server.go BlockedResponse
type BlockedResponse struct {
	Error       string `json:"error"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
}

// HealthResponse matches internal/http/server.go HealthResponse
type HealthResponse struct {
	Status string `json:"status"`
}

// runAsk handles the ask command
func runAsk(cmd *cobra.Command, args []string) error {
	reqBody := AnswerRequest{
		Query: args[0],
		TopK:  topK,
	}

	resp, err := postJSON("/api/v1/answer", reqBody, 120*time.Second)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		var blocked BlockedResponse
		if err := json.NewDecoder(resp.Body).Decode(&blocked); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		fmt.Fprintln(os.Stderr, formatBlocked(blocked))
		return fmt.Errorf("query blocked")
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var answer AnswerResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Println(answer.Answer)

	if answer.Mode == "general_knowledge" {
		fmt.Fprintln(os.Stderr, "\n[medrag] Answered from general medical knowledge, no matching records")
	}

	if answer.ShowSources && len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Println(formatSources(answer.Sources))
	}

	return nil
}

// runSafety handles the safety command
func runSafety(cmd *cobra.Command, args []string) error {
	reqBody := SafetyRequest{Query: args[0]}

	resp, err := postJSON("/api/v1/safety", reqBody, 10*time.Second)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var verdict SafetyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if verdict.Allowed {
		fmt.Println("Allowed: yes")
	} else {
		fmt.Println("Allowed: no")
	}
	fmt.Printf("Category: %s\n", verdict.Category)
	if verdict.Subcategory != "" {
		fmt.Printf("Subcategory: %s\n", verdict.Subcategory)
	}

	return nil
}

// runHealth handles the health command
func runHealth(cmd *cobra.Command, args []string) error {
	url := fmt.Sprintf("%s/health", serverURL)

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to %s: %v\n", url, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var healthResp HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Server Status: %s\n", healthResp.Status)
	fmt.Printf("Server URL: %s\n", serverURL)

	return nil
}

// postJSON sends a JSON POST to the given server path.
func postJSON(path string, body any, timeout time.Duration) (*http.Response, error) {
	reqJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s%s", serverURL, path)
	httpReq, err := http.NewRequest("POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: timeout,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", url, err)
	}

	return resp, nil
}

// statusError drains the response body into an error for non-OK statuses.
func statusError(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
	}
	return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
}

// formatBlocked renders a blocked verdict for the terminal.
func formatBlocked(blocked BlockedResponse) string {
	msg := fmt.Sprintf("[medrag] Query blocked (%s", blocked.Category)
	if blocked.Subcategory != "" {
		msg += fmt.Sprintf(": %s", blocked.Subcategory)
	}
	return msg + ")"
}

// formatSources renders retrieved records with rank, similarity, and a snippet.
func formatSources(sources []Source) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Sources (%d records):\n", len(sources))
	for _, s := range sources {
		fmt.Fprintf(&buf, "  [%d] doc %d (similarity %.3f): %s\n",
			s.Rank, s.DocumentID, s.Similarity, snippet(s.Text, 100))
	}
	return buf.String()
}

// snippet truncates s to maxLen runes, appending "..." when cut.
func snippet(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
