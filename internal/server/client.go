package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/franckalain/halalscan/internal/ads"
	"github.com/franckalain/halalscan/internal/capture"
	"github.com/franckalain/halalscan/internal/history"
	"github.com/franckalain/halalscan/internal/ml"
)

// client is one WebSocket connection. Messages are handled one at a time,
// so only the read loop ever writes to conn.
type client struct {
	server  *Server
	conn    *websocket.Conn
	session *ads.Session
	log     *logrus.Entry
}

func newClient(s *Server, conn *websocket.Conn, id string) *client {
	cl := &client{
		server: s,
		conn:   conn,
		log:    s.log.WithField("client", id),
	}
	cl.session = ads.NewSession(adNetwork{cl}, cl.log)
	return cl
}

func (cl *client) run(ctx context.Context) {
	cl.session.Start(ctx)
	cl.session.ShowBanner(ctx)

	// the loop ends only when the connection is gone
	for {
		_, message, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.log.WithError(err).Warn("error reading message")
			}
			return
		}

		// Parse message
		var msg map[string]any
		if err := json.Unmarshal(message, &msg); err != nil {
			cl.log.WithError(err).Debug("error parsing message")
			cl.sendError("Invalid message format")
			continue
		}

		cl.handleMessage(ctx, msg)
	}
}

func (cl *client) handleMessage(ctx context.Context, message map[string]any) {
	messageType, ok := message["type"].(string)
	if !ok {
		cl.sendError("Invalid message format")
		return
	}

	data, _ := message["data"].(map[string]any)

	switch messageType {
	case "scan":
		cl.handleScan(ctx, data)
	case "analyze":
		cl.handleAnalyze(data)
	case "get_history":
		cl.handleGetHistory(ctx)
	case "get_scan":
		cl.handleGetScan(ctx, data)
	case "delete_scan":
		cl.handleDeleteScan(ctx, data)
	case "clear_history":
		cl.handleClearHistory(ctx)
	default:
		cl.sendError("Unknown message type")
	}
}

func (cl *client) handleScan(ctx context.Context, data map[string]any) {
	imageStr, ok := data["image"].(string)
	if !ok || imageStr == "" {
		cl.sendError("Invalid image data")
		return
	}

	record, err := cl.server.scanner.ScanImage(ctx, imageStr)
	if err != nil {
		cl.log.WithError(err).Warn("scan failed")
		cl.sendError(scanErrorMessage(err))
		return
	}

	cl.sendMessage("scan_result", record)
	cl.session.RecordScan(ctx)
}

func (cl *client) handleAnalyze(data map[string]any) {
	text, ok := data["text"].(string)
	if !ok {
		cl.sendError("Invalid text")
		return
	}
	cl.sendMessage("analysis", cl.server.scanner.Analyze(text))
}

func (cl *client) handleGetHistory(ctx context.Context) {
	store := cl.server.scanner.History()
	cl.sendMessage("history", historyResponse{
		Items: store.List(ctx),
		Stats: store.Stats(ctx),
	})
}

func (cl *client) handleGetScan(ctx context.Context, data map[string]any) {
	id, ok := data["id"].(string)
	if !ok || id == "" {
		cl.sendError("Missing scan ID")
		return
	}
	record, found := cl.server.scanner.History().Get(ctx, id)
	if !found {
		cl.sendError("Scan not found")
		return
	}
	cl.sendMessage("scan", record)
}

func (cl *client) handleDeleteScan(ctx context.Context, data map[string]any) {
	id, ok := data["id"].(string)
	if !ok || id == "" {
		cl.sendError("Missing scan ID")
		return
	}
	if err := cl.server.scanner.History().DeleteByID(ctx, id); err != nil {
		cl.log.WithError(err).Error("error deleting from history")
		cl.sendError("Failed to delete scan")
		return
	}
	cl.sendMessage("scan_deleted", map[string]string{"id": id})
}

func (cl *client) handleClearHistory(ctx context.Context) {
	if err := cl.server.scanner.History().Clear(ctx); err != nil {
		cl.log.WithError(err).Error("error clearing history")
		cl.sendError("Failed to clear history")
		return
	}
	cl.sendMessage("history_cleared", nil)
}

func (cl *client) sendMessage(messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}

	cl.log.WithField("type", messageType).Debug("sending message to client")
	if err := cl.conn.WriteJSON(msg); err != nil {
		cl.log.WithError(err).Warn("error sending message")
	}
}

func (cl *client) sendError(message string) {
	msg := map[string]any{
		"type": "error",
		"data": map[string]string{"message": message},
	}

	if err := cl.conn.WriteJSON(msg); err != nil {
		cl.log.WithError(err).Warn("error sending error message")
	}
}

type historyResponse struct {
	Items any           `json:"items"`
	Stats history.Stats `json:"stats"`
}

// scanErrorMessage turns a scan failure into a message for the user
func scanErrorMessage(err error) string {
	switch {
	case errors.Is(err, capture.ErrPermissionDenied):
		return "Camera permission denied"
	case errors.Is(err, capture.ErrCapture):
		return "Invalid image format"
	case errors.Is(err, ml.ErrCancelled):
		return "Analysis timed out, please try again"
	case errors.Is(err, ml.ErrRecognition):
		return "Could not read the ingredient list, please try again"
	default:
		return "Failed to process image"
	}
}

// adNetwork asks the connected client to display ads
type adNetwork struct {
	cl *client
}

func (n adNetwork) PrepareInterstitial(context.Context) error {
	return nil
}

func (n adNetwork) ShowInterstitial(context.Context) error {
	n.cl.sendMessage("ad", map[string]any{"kind": "interstitial"})
	return nil
}

func (n adNetwork) ShowBanner(context.Context) error {
	n.cl.sendMessage("ad", map[string]any{"kind": "banner", "visible": true})
	return nil
}

func (n adNetwork) HideBanner(context.Context) error {
	n.cl.sendMessage("ad", map[string]any{"kind": "banner", "visible": false})
	return nil
}
