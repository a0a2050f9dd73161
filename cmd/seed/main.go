package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"coindash/internal/models"
	"coindash/internal/store"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Seeds a demo holdings set into the file store so the dashboard has
// something to show on first run.
func main() {
	godotenv.Load()
	path := os.Getenv("STORE_PATH")
	if path == "" {
		path = "coindash.json"
	}

	logger := logrus.New()
	st, err := store.NewFileStore(path, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	holdings := []models.Holding{
		{CoinID: "bitcoin", InvestedUSD: decimal.NewFromInt(1000)},
		{CoinID: "ethereum", InvestedUSD: decimal.NewFromInt(500)},
		{CoinID: "solana", InvestedUSD: decimal.NewFromInt(250)},
	}

	b, err := json.Marshal(holdings)
	if err != nil {
		log.Fatalf("marshal holdings: %v", err)
	}
	if err := st.Set(store.KeyHoldings, string(b)); err != nil {
		log.Fatalf("write holdings: %v", err)
	}

	fmt.Printf("Seeded %d demo holdings into %s\n", len(holdings), path)
	fmt.Println("Now start the server and open: http://localhost:8080/portfolio")
}
