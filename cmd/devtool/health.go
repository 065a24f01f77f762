package main

import (
	"fmt"
	"net/http"
	"time"
)

type HealthCommand struct{}

func (c *HealthCommand) Name() string {
	return "health"
}

func (c *HealthCommand) Description() string {
	return "Check the running server's liveness and readiness probes"
}

// Run accepts an optional base URL, defaulting to localhost on PORT.
func (c *HealthCommand) Run(args []string) error {
	base := fmt.Sprintf("http://localhost:%s", getEnv("PORT", "8080"))
	if len(args) > 0 {
		base = args[0]
	}

	PrintHeader("Health check: " + base)
	client := &http.Client{Timeout: defaultHealthTimeout}

	failed := false
	for _, path := range []string{"/healthz", "/readyz"} {
		if err := checkEndpoint(client, base+path); err != nil {
			PrintError("%s: %v", path, err)
			failed = true
			continue
		}
		PrintSuccess("%s OK", path)
	}
	if failed {
		return fmt.Errorf("server is not healthy")
	}
	return nil
}

func checkEndpoint(client *http.Client, url string) error {
	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status code %d after %s", resp.StatusCode, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
