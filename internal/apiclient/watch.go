package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"sdg-quest/internal/domain"
)

type feedMessage struct {
	Type    string             `json:"type"`
	Payload domain.ScoreRecord `json:"payload"`
}

// WatchScores streams records submitted for userID until ctx is done or the
// connection drops. fn runs on the reading goroutine.
func (c *Client) WatchScores(ctx context.Context, userID string, fn func(domain.ScoreRecord)) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/scores"
	u.RawQuery = url.Values{"userId": {userID}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial score feed: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var msg feedMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read score feed: %w", err)
		}
		if msg.Type == "score" {
			fn(msg.Payload)
		}
	}
}
