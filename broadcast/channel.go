package broadcast

import (
	"context"
	"fmt"

	"github.com/Dosada05/championship-draw/draw"
)

// RoomChannel is the draw.Channel of one tournament: events go to the hub
// room as websocket frames and to in-process subscribers.
type RoomChannel struct {
	hub   *Hub
	room  string
	local *draw.MemoryChannel
}

func NewRoomChannel(hub *Hub, tournamentID string) *RoomChannel {
	return &RoomChannel{hub: hub, room: RoomID(tournamentID), local: draw.NewMemoryChannel()}
}

func (c *RoomChannel) Publish(ctx context.Context, ev draw.Event) error {
	// local subscribers see every event even when the hub is down
	if err := c.local.Publish(ctx, ev); err != nil {
		return err
	}
	frame, err := draw.Encode(ev, c.room)
	if err != nil {
		return err
	}
	if _, err := c.hub.BroadcastToRoom(c.room, frame); err != nil {
		return fmt.Errorf("broadcast %s: %w", ev.Type, err)
	}
	return nil
}

func (c *RoomChannel) Subscribe(fn func(draw.Event)) func() {
	return c.local.Subscribe(fn)
}

func (c *RoomChannel) Room() string {
	return c.room
}
