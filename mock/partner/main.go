package main

import (
	_ "embed"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

//go:embed data.json
var jsonData []byte

func main() {
	var properties map[string]json.RawMessage
	if err := json.Unmarshal(jsonData, &properties); err != nil {
		log.Fatalf("[Partner] bad data.json: %v", err)
	}

	http.HandleFunc("/api/v2/properties/", func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		id := strings.TrimPrefix(r.URL.Path, "/api/v2/properties/")
		w.Header().Set("Content-Type", "application/json")

		payload, ok := properties[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"property not found"}`))
			log.Printf("[Partner] %s %s - 404", r.Method, r.URL.Path)
			return
		}

		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(payload); err != nil {
			log.Printf("[Partner] Write error: %v", err)
		}

		log.Printf("[Partner] %s %s - 200 OK", r.Method, r.URL.Path)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
			log.Printf("[Partner] Health write error: %v", err)
		}
	})

	log.Println("Mock Partner API running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
