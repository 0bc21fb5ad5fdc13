package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lofbot/client/internal/persist"
)

const storeTimeout = 5 * time.Second

// SightingStore remembers when players were last seen.
// *persist.SightingRepo implements it.
type SightingStore interface {
	Record(ctx context.Context, name string, beingID uint32) error
	Load(ctx context.Context, name string) (*persist.SightingRow, error)
	MostSeen(ctx context.Context, limit int) ([]persist.SightingRow, error)
}

// ListenerStore keeps chat relay subscriptions.
// *persist.ListenerRepo implements it.
type ListenerStore interface {
	Get(ctx context.Context, nick string) (listening, found bool, err error)
	Set(ctx context.Context, nick string, listening bool) error
	Listening(ctx context.Context) ([]string, error)
}

var errNoSightings = errors.New("sightings are not recorded without a database")

// Account returns the account name.
func (c *Client) Account() string {
	return c.opts.Account
}

// Lag returns the last emote ping round trip in milliseconds.
func (c *Client) Lag() (int64, bool) {
	lag, ok := c.probe.Lag()
	return lag.Milliseconds(), ok
}

func (c *Client) NameOf(beingID uint32) (string, bool) {
	return c.names.Lookup(beingID)
}

// IDOf returns the being id last seen under name.
func (c *Client) IDOf(name string) (uint32, bool) {
	return c.names.IDOf(name)
}

// Seen describes the last sighting of name.
func (c *Client) Seen(name string) (string, error) {
	if c.sightings == nil {
		return "", errNoSightings
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	row, err := c.sightings.Load(ctx, name)
	if err != nil {
		return "", err
	}
	if row == nil {
		return fmt.Sprintf("I have never seen %s.", name), nil
	}
	ago := time.Since(row.LastSeen).Round(time.Second)
	return fmt.Sprintf("%s was last seen %s ago (seen %d times).", name, ago, row.Count), nil
}

func (c *Client) Regulars(limit int) ([]string, error) {
	if c.sightings == nil {
		return nil, errNoSightings
	}
	if limit <= 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	rows, err := c.sightings.MostSeen(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, fmt.Sprintf("%s (%d)", r.Name, r.Count))
	}
	return out, nil
}

// SetListening sets nick's relay subscription when listening is non-nil.
// A nick asking for the first time is subscribed.
func (c *Client) SetListening(nick string, listening *bool) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	on, found, err := c.listeners.Get(ctx, nick)
	if err != nil {
		return false, err
	}
	switch {
	case listening != nil:
		on = *listening
	case !found:
		on = true
	default:
		return on, nil
	}
	if err := c.listeners.Set(ctx, nick, on); err != nil {
		return false, err
	}
	return on, nil
}

func (c *Client) Listeners() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return c.listeners.Listening(ctx)
}
