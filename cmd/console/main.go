package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	ids, err := listNPCs(client, cfg.APIBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list NPCs: %v\n", err)
		os.Exit(1)
	}

	var selected string
	if len(ids) == 0 {
		fmt.Print("No NPCs found. Create one? Enter a name (blank to quit): ")
		var name string
		if _, err := fmt.Scanln(&name); err != nil || name == "" {
			os.Exit(0)
		}
		status, err := createNPC(client, cfg.APIBaseURL, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create NPC: %v\n", err)
			os.Exit(1)
		}
		selected = status.NPC.ID
	} else {
		fmt.Println("NPCs:")
		statuses := make([]*npcStatus, 0, len(ids))
		for i, id := range ids {
			status, err := getStatus(client, cfg.APIBaseURL, id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to fetch NPC %s: %v\n", id, err)
				os.Exit(1)
			}
			statuses = append(statuses, status)
			fmt.Printf("  %d - %s (%s)\n", i+1, status.NPC.Name, status.Mood.Attitude)
		}
		fmt.Print("\nSelect an NPC by number: ")

		var choice int
		if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(ids) {
			fmt.Fprintf(os.Stderr, "Invalid selection\n")
			os.Exit(1)
		}
		selected = statuses[choice-1].NPC.ID
	}

	p := tea.NewProgram(NewMonitorUI(cfg, client, selected), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
