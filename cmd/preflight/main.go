// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	endpoints := strings.TrimSpace(os.Getenv("ENDPOINTS_FILE"))
	apiAddr := strings.TrimSpace(os.Getenv("ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	logDir := strings.TrimSpace(os.Getenv("LOG_DIR"))

	if endpoints == "" {
		endpoints = "config/endpoints.json"
		warn("ENDPOINTS_FILE empty; falling back to " + endpoints)
	}
	if _, err := os.Stat(endpoints); err != nil {
		fail("endpoints file not readable: " + endpoints + " (copy config/endpoints.example.json?)")
	}
	switch ext := strings.ToLower(filepath.Ext(endpoints)); ext {
	case ".json", ".yaml", ".yml":
		ok("endpoints file present: " + endpoints)
	default:
		warn("endpoints file has unusual extension " + ext + "; JSON decoding will be assumed")
	}

	if apiAddr == "" {
		warn("ADDR is empty; default 127.0.0.1:8080 will be used.")
	} else {
		ok("ADDR set: " + apiAddr)
	}

	if db == "" {
		warn("DATABASE_URL empty; history will be in-memory and lost on restart.")
	} else if !strings.HasPrefix(db, "postgres://") && !strings.HasPrefix(db, "postgresql://") {
		warn("DATABASE_URL does not look like a postgres DSN.")
	} else {
		ok("DATABASE_URL set.")
	}

	if logDir == "" {
		warn("LOG_DIR empty; default ./logs will be used.")
	}

	ok("preflight complete.")
}
