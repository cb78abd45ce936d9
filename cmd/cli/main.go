package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

type summary struct {
	TotalChecks int      `json:"total_checks"`
	Pct         *float64 `json:"pct"`
}

type endpointRow struct {
	Name string `json:"name"`
	Last *struct {
		OK         bool   `json:"ok"`
		StatusCode *int   `json:"status_code"`
		LatencyMS  *int64 `json:"latency_ms"`
		Error      string `json:"error"`
	} `json:"last"`
	Uptime24h summary `json:"uptime_24h"`
	UptimeAll summary `json:"uptime_all"`
}

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(api + "/api/status")
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Println("API returned status:", resp.Status)
		os.Exit(1)
	}

	var out struct {
		Now       time.Time     `json:"now"`
		Endpoints []endpointRow `json:"endpoints"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Println("Bad response:", err)
		os.Exit(1)
	}

	fmt.Printf("Status as of %s\n\n", out.Now.Format(time.RFC3339))
	fmt.Printf("%-24s %-6s %-8s %-10s %-10s\n", "ENDPOINT", "STATE", "HTTP", "24H", "ALL-TIME")
	for _, e := range out.Endpoints {
		state, httpTxt := "n/a", "n/a"
		if e.Last != nil {
			state = "DOWN"
			if e.Last.OK {
				state = "UP"
			}
			if e.Last.StatusCode != nil {
				httpTxt = fmt.Sprintf("%d", *e.Last.StatusCode)
			} else if e.Last.Error != "" {
				httpTxt = e.Last.Error
			}
		}
		fmt.Printf("%-24s %-6s %-8s %-10s %-10s\n",
			e.Name, state, httpTxt, pctTxt(e.Uptime24h), pctTxt(e.UptimeAll))
	}
}

func pctTxt(s summary) string {
	if s.Pct == nil {
		return "no data"
	}
	return fmt.Sprintf("%.2f%%", *s.Pct)
}
