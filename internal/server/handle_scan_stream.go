package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"

	"github.com/exploremaroc/companion/internal/scan"
)

// handleScanStream upgrades to a WebSocket and forwards the scan's
// progress events until the scan reaches a terminal state. Events for the
// user's other scans are filtered out.
func handleScanStream(logger *slog.Logger, orch *scan.Orchestrator, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scanID := chi.URLParam(r, "id")
		if _, err := orch.Get(scanID); errors.Is(err, scan.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scan not found")
			return
		}
		user := userFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
		defer cancel()

		ch := broker.Subscribe(user.ID)
		defer broker.Unsubscribe(user.ID, ch)

		// The scan may have moved on between the lookup and the
		// subscription. Sending its current state as the first frame means
		// a client attaching to a finished scan hears the result instead of
		// idling until the deadline.
		snap, err := orch.Get(scanID)
		if errors.Is(err, scan.ErrNotFound) {
			conn.Close(websocket.StatusNormalClosure, "scan_reset")
			return
		}
		first, terminal := streamEvent(snap)
		data, err := json.Marshal(first)
		if err == nil {
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}
		}
		if terminal {
			conn.Close(websocket.StatusNormalClosure, first.Type)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case data := <-ch:
				var ev struct {
					Type   string `json:"type"`
					ScanID string `json:"scanId"`
				}
				if json.Unmarshal(data, &ev) != nil || ev.ScanID != scanID {
					continue
				}

				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}

				switch ev.Type {
				case "scan_complete", "scan_error", "scan_reset":
					conn.Close(websocket.StatusNormalClosure, ev.Type)
					return
				}
			}
		}
	}
}

// streamEvent maps a snapshot onto the event the stream would have carried
// at that point. The bool reports whether the scan is already over.
func streamEvent(s scan.Snapshot) (scan.Event, bool) {
	switch s.State {
	case scan.StateComplete:
		return scan.Event{
			Type:        "scan_complete",
			ScanID:      s.ID,
			Confidence:  s.Confidence,
			LocationID:  s.LocationID,
			RedirectURL: s.RedirectURL,
		}, true
	case scan.StateError:
		return scan.Event{Type: "scan_error", ScanID: s.ID, Error: s.Error}, true
	default:
		return scan.Event{
			Type:       "scan_progress",
			ScanID:     s.ID,
			Stage:      s.Stage,
			Confidence: s.Confidence,
			LocationID: s.LocationID,
		}, false
	}
}
