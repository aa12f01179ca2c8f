// licensegate webhook sender example
//
// Posts a test payment event to a licensegate instance, the way a payment
// platform would.
//
// Usage:
//
//	export LICENSEGATE_WEBHOOK_SECRET="your-shared-secret"
//	go run main.go -email buyer@example.com -status paid
//	go run main.go -email buyer@example.com -status refunded
//
// Then check the result:
//
//	curl -s -X POST http://localhost:8080/validate -d '{"email":"buyer@example.com"}'
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Event is the generic payload accepted by the default provider.
type Event struct {
	Status   string   `json:"status"`
	Customer Customer `json:"customer"`
}

// Customer carries the buyer's email.
type Customer struct {
	Email string `json:"email"`
}

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "licensegate base URL")
		provider = flag.String("provider", "default", "Provider path segment")
		email    = flag.String("email", "", "Buyer email")
		status   = flag.String("status", "paid", "Payment status (paid, refunded, pending, ...)")
	)
	flag.Parse()

	secret := os.Getenv("LICENSEGATE_WEBHOOK_SECRET")
	if secret == "" {
		log.Fatal("LICENSEGATE_WEBHOOK_SECRET environment variable is required")
	}
	if *email == "" {
		log.Fatal("-email is required")
	}

	body, err := json.Marshal(Event{Status: *status, Customer: Customer{Email: *email}})
	if err != nil {
		log.Fatalf("encode event: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *baseURL+"/webhook/"+*provider, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Token", secret)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("send webhook: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("%d %s\n", resp.StatusCode, bytes.TrimSpace(respBody))

	if resp.StatusCode >= 300 {
		os.Exit(1)
	}
}
