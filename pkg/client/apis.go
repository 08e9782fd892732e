package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/rootstatus/rootstatus/pkg/config"
	"github.com/rootstatus/rootstatus/pkg/events"
	"github.com/rootstatus/rootstatus/pkg/types"
)

func (c *Client) GetStatus() (*types.Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var st types.Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}

	return &st, nil
}

// Refresh asks the daemon to redraw the status line now.
func (c *Client) Refresh() (string, error) {
	ret, err := c.Put("/refresh", "")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to request refresh")
	}
	return unquote(ret), nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	return unquote(ret), nil
}

// Events streams daemon events to fn until ctx is done, the daemon closes
// the stream or fn returns an error.
func (c *Client) Events(ctx context.Context, fn func(events.Event) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unix/events", nil)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create request")
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to subscribe to events")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("got %d subscribing to events", resp.StatusCode)
	}

	var e events.Event
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			e.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			e.Data = append(e.Data, strings.TrimSpace(strings.TrimPrefix(line, "data:"))...)
		case line == "":
			if e.Name == "" && len(e.Data) == 0 {
				continue
			}
			if err := fn(e); err != nil {
				return err
			}
			e = events.Event{}
		}
	}

	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return pkgerrors.Wrapf(err, "failed to read event stream")
	}
	return nil
}

// unquote strips the quotes around a JSON string response.
func unquote(s string) string {
	var ret string
	if err := json.Unmarshal([]byte(s), &ret); err != nil {
		return strings.Trim(strings.TrimSpace(s), `"`)
	}
	return ret
}
