// Command object-store is a throwaway object store for local runs of the
// remote evidence provider. Objects live in memory and vanish on restart.
package main

import (
	"encoding/json"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultPort      = "8090"
	defaultAPIKey    = "object-store-secret-key"
	defaultLatencyMs = "20"
	defaultFailRate  = "0"
	maxObjectBytes   = 16 << 20
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type object struct {
	contentType string
	data        []byte
	storedAt    time.Time
}

var (
	apiKey    = getEnv("API_KEY", defaultAPIKey)
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)
	// failRate is the percentage of mutating calls answered with 503, so the
	// purge worker's retry path can be watched locally.
	failRate = getEnvInt("FAIL_RATE_PERCENT", defaultFailRate)

	mu      sync.RWMutex
	objects = map[string]object{}
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/objects/", handleObject)

	log.Printf("object store starting on port %s", port)
	log.Printf("simulated latency: %dms, failure rate: %d%%", latencyMs, failRate)

	server := &http.Server{Addr: ":" + port, ReadHeaderTimeout: 5 * time.Second}
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	mu.RLock()
	count := len(objects)
	mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "healthy",
		"service": "object-store",
		"objects": count,
	})
}

func handleObject(w http.ResponseWriter, r *http.Request) {
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)
	log.Printf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

	switch key := r.Header.Get("X-API-Key"); {
	case key == "":
		sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
		return
	case key != apiKey:
		sendError(w, "Invalid API key", http.StatusUnauthorized)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/objects/")
	if key == "" {
		sendError(w, "object key is required", http.StatusBadRequest)
		return
	}

	if r.Method != http.MethodGet && failRate > 0 && rand.IntN(100) < failRate {
		sendError(w, "injected failure", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodPut:
		putObject(w, r, key)
	case http.MethodGet:
		getObject(w, key)
	case http.MethodDelete:
		deleteObject(w, key)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func putObject(w http.ResponseWriter, r *http.Request, key string) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxObjectBytes+1))
	if err != nil {
		sendError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(data) > maxObjectBytes {
		sendError(w, "object too large", http.StatusRequestEntityTooLarge)
		return
	}

	mu.Lock()
	objects[key] = object{contentType: r.Header.Get("Content-Type"), data: data, storedAt: time.Now()}
	mu.Unlock()

	w.WriteHeader(http.StatusCreated)
}

func getObject(w http.ResponseWriter, key string) {
	mu.RLock()
	obj, ok := objects[key]
	mu.RUnlock()
	if !ok {
		sendError(w, "object not found", http.StatusNotFound)
		return
	}
	if obj.contentType != "" {
		w.Header().Set("Content-Type", obj.contentType)
	}
	w.Header().Set("Last-Modified", obj.storedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	w.Write(obj.data)
}

func deleteObject(w http.ResponseWriter, key string) {
	mu.Lock()
	_, ok := objects[key]
	delete(objects, key)
	mu.Unlock()
	if !ok {
		sendError(w, "object not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sendError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
	log.Printf("error response: %d - %s", code, message)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid integer value for %s, using default: %s", key, defaultValue)
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}
