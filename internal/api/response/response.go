package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON sends a standard JSON response.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, statusCode int, message string) {
	log.Printf("API Error: Status %d, Message: %s", statusCode, message)
	JSON(w, statusCode, ErrorResponse{Error: message})
}
