package bot

import (
	"fmt"

	"github.com/lofbot/client/internal/data"
	"github.com/lofbot/client/internal/net/packet"
)

func (c *Client) send(frame []byte) error {
	if err := c.conn.Send(frame); err != nil {
		return fmt.Errorf("%s: %w", c.opts.Account, err)
	}
	return nil
}

// Sit sits down.
func (c *Client) Sit() error {
	return c.send(packet.ChangeAct(packet.ActionSit))
}

// Stand stands up.
func (c *Client) Stand() error {
	return c.send(packet.ChangeAct(packet.ActionStand))
}

func (c *Client) Whisper(nick, text string) error {
	return c.send(packet.WhisperFrame(nick, text))
}

// Say speaks in public chat as "<speaker> : text", the way game clients do.
func (c *Client) Say(text string) error {
	return c.send(packet.Say(c.opts.Speaker + " : " + text))
}

// Emote shows an emote given by alias or numeric id.
func (c *Client) Emote(spec string) error {
	id, err := c.emotes.ID(spec)
	if err != nil {
		return err
	}
	return c.SendEmote(id)
}

func (c *Client) SendEmote(id uint8) error {
	return c.send(packet.EmoteFrame(id))
}

// Face turns to a compass direction or numeric direction code.
func (c *Client) Face(spec string) error {
	dir, err := data.ParseDirection(spec)
	if err != nil {
		return err
	}
	return c.send(packet.Face(dir))
}

// Goto walks to x, y. dir may be packet.DirNone.
func (c *Client) Goto(x, y, dir int) error {
	return c.send(packet.Goto(x, y, dir))
}

func (c *Client) Respawn() error {
	return c.send(packet.Respawn())
}

// Attack attacks target once, or continuously when keep is set.
func (c *Client) Attack(target uint32, keep bool) error {
	return c.send(packet.Attack(target, keep))
}

// RequestName asks the map server for a being's name.
func (c *Client) RequestName(beingID uint32) error {
	return c.send(packet.NameRequest(beingID))
}

// MapLoaded repeats the map-loaded acknowledgement, which the server
// expects again after a map change.
func (c *Client) MapLoaded() error {
	return c.send(packet.MapLoaded())
}

func (c *Client) Ping(tick uint32) error {
	return c.send(packet.Ping(tick))
}
