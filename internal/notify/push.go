package notify

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// PushPlatform delivers notifications through a push gateway for
// headless deployments. Push messages cannot be revoked once sent, so
// Clear is a no-op; button handling comes back through the messaging
// surface instead.
type PushPlatform struct {
	GatewayURL string
	Token      string
	User       string
}

func NewPushPlatform(gatewayURL, token, user string) *PushPlatform {
	return &PushPlatform{GatewayURL: gatewayURL, Token: token, User: user}
}

func (p *PushPlatform) Create(n Notification) error {
	params := url.Values{}
	params.Set("token", p.Token)
	params.Set("user", p.User)
	params.Set("title", n.Title)
	params.Set("message", n.Message+"\n"+n.ContextMessage)

	resp, err := http.PostForm(p.GatewayURL, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("push gateway error: status %s, body %s", resp.Status, string(body))
	}
	return nil
}

func (p *PushPlatform) Clear(id string) error {
	return nil
}

// LogPlatform writes notifications to the log. Used when no push
// gateway is configured.
type LogPlatform struct{}

func (LogPlatform) Create(n Notification) error {
	slog.Info("NOTIFICATION", "id", n.ID, "title", n.Title, "message", n.Message, "buttons", n.Buttons)
	return nil
}

func (LogPlatform) Clear(id string) error {
	slog.Info("NOTIFICATION cleared", "id", id)
	return nil
}
