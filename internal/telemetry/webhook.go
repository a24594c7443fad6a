package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type alert struct {
	Session string    `json:"session"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// webhook posts alerts as JSON to a fixed URL.
type webhook struct {
	url    string
	client *http.Client
}

func newWebhook(url string, timeout time.Duration) *webhook {
	return &webhook{url: url, client: &http.Client{Timeout: timeout}}
}

func (w *webhook) send(a alert) error {
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	resp, err := w.client.Post(w.url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %s", resp.Status)
	}
	return nil
}
