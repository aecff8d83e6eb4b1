package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ballcrusher-stats/internal/pubsub"
)

// pushEnvelope is the body Pub/Sub push subscriptions POST to us.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
}

// DatasetEventsHandler receives dataset events pushed by the broker. A reload
// on another instance invalidates the dataset held here.
func (s *Server) DatasetEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received dataset event", "body", string(bodyBytes))

		var envelope pushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		event := pubsub.EventType(envelope.Message.Attributes["event"])
		if event == "" {
			http.Error(w, "Missing event attribute", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		invalidated, err := s.Session.HandleDatasetEvent(event, rawData)
		if err != nil {
			http.Error(w, "Invalid event payload", http.StatusBadRequest)
			return
		}
		if invalidated {
			s.Usage.Increment("dataset_invalidations")
		}
		log.Info("Dataset event handled", "event", event, "messageId", envelope.Message.MessageID, "invalidated", invalidated)
		w.Write([]byte("OK"))
	}
}
