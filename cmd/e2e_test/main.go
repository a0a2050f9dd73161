package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const baseURL = "http://localhost:8080"

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	// 1. Health Check
	checkEndpoint("GET", "/health", nil, 200)

	// 2. Market data
	checkEndpoint("GET", "/coins", nil, 200)
	checkEndpoint("GET", "/trending", nil, 200)
	checkEndpoint("GET", "/coins/bitcoin/history?days=7", nil, 200)

	// 3. Add a holding
	checkEndpoint("POST", "/portfolio/holdings", map[string]interface{}{
		"coin_id":      "bitcoin",
		"symbol":       "btc",
		"name":         "Bitcoin",
		"invested_usd": "1000",
	}, 201)

	// 4. Duplicate add must be rejected
	checkEndpoint("POST", "/portfolio/holdings", map[string]interface{}{
		"coin_id":      "bitcoin",
		"invested_usd": "500",
	}, 400)

	// 5. Edit the amount
	checkEndpoint("PUT", "/portfolio/holdings/bitcoin", map[string]interface{}{
		"invested_usd": "2000",
	}, 200)

	// 6. Snapshot and refresh
	checkEndpoint("GET", "/portfolio", nil, 200)
	checkEndpoint("POST", "/portfolio/refresh", nil, 200)

	// 7. Delete it again
	checkEndpoint("DELETE", "/portfolio/holdings/bitcoin", nil, 200)

	// 8. Preferences round trip
	checkEndpoint("PUT", "/prefs/currency", map[string]interface{}{"currency": "eur"}, 200)
	checkEndpoint("GET", "/prefs", nil, 200)
	checkEndpoint("PUT", "/prefs/currency", map[string]interface{}{"currency": "usd"}, 200)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(method, path string, body interface{}, expectedStatus int) {
	fmt.Printf("Testing %s %s...\n", method, path)
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, baseURL+path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	fmt.Printf("Response: %s\n", string(respBody))
}
