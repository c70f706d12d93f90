package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type apiErrorResponse struct {
	Error string `json:"error"`
}

// baseURL returns the configured registry URL without a trailing slash,
// exiting if none is configured.
func baseURL(log *zap.Logger) string {
	registryURL := viper.GetString("registry_url")
	if registryURL == "" {
		log.Fatal("Registry URL is not configured. Use --registry-url flag, CODINGREG_REGISTRY_URL env var, or 'codingreg-cli configure'.")
	}
	return strings.TrimSuffix(registryURL, "/")
}

// getJSON issues a GET request and unmarshals the 200 response into out.
// Any other status is logged as an API error and exits.
func getJSON(client *http.Client, targetURL string, out interface{}, log *zap.Logger) {
	log.Debug("Requesting", zap.String("url", targetURL))

	resp, err := client.Get(targetURL)
	if err != nil {
		log.Fatal("Failed to execute request", zap.Error(err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal("Failed to read response body", zap.Error(err))
	}

	if resp.StatusCode != http.StatusOK {
		handleApiError(resp.StatusCode, bodyBytes, log)
		os.Exit(1)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		log.Fatal("Failed to parse API response", zap.Error(err), zap.ByteString("body", bodyBytes))
	}
}

// postJSON issues a POST request with an optional JSON body and bearer token
// and unmarshals the 2xx response into out.
func postJSON(client *http.Client, targetURL string, body interface{}, token string, out interface{}, log *zap.Logger) {
	log.Debug("Posting", zap.String("url", targetURL))

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			log.Fatal("Failed to encode request body", zap.Error(err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest("POST", targetURL, reader)
	if err != nil {
		log.Fatal("Failed to create request", zap.Error(err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Fatal("Failed to execute request", zap.Error(err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal("Failed to read response body", zap.Error(err))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		handleApiError(resp.StatusCode, bodyBytes, log)
		os.Exit(1)
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			log.Fatal("Failed to parse API response", zap.Error(err), zap.ByteString("body", bodyBytes))
		}
	}
}

// handleApiError attempts to parse and log an API error response.
func handleApiError(statusCode int, body []byte, log *zap.Logger) {
	var errResp apiErrorResponse
	logFields := []zap.Field{zap.Int("status_code", statusCode)}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		logFields = append(logFields, zap.String("api_error", errResp.Error))
		log.Error("API request failed", logFields...)
	} else {
		logFields = append(logFields, zap.ByteString("response_body", body))
		log.Error("API request failed", logFields...)
	}
}

func boolMark(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
