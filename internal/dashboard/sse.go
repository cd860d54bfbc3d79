package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// Poll and heartbeat intervals of the event stream.
var (
	pollInterval      = 3 * time.Second
	heartbeatInterval = 15 * time.Second
)

// changedEvent tells the page to reload its data.
type changedEvent struct {
	Version uint64 `json:"version"`
}

// handleSSE streams workspace changes. It polls the workspace version and
// emits "changed" whenever it moved since the last poll.
func (s *server) handleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ws := s.app.Workspace
	lastSeen := ws.Version()

	writeSSE(c.Writer, "connected", map[string]any{"type": "connected", "version": lastSeen})
	c.Writer.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(pollInterval)
	heartbeat := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case <-ticker.C:
			v := ws.Version()
			if v == lastSeen {
				continue
			}
			lastSeen = v
			writeSSE(c.Writer, "changed", changedEvent{Version: v})
			c.Writer.Flush()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
