// Command bot runs scripted phone players against a relay. Each bot joins
// the given room, waits for its button assignment, and mashes its buttons
// until the game disconnects or the run duration elapses. Useful for
// soak-testing a relay and for driving a host without a stack of phones.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"partyracer/game/message"
)

func main() {
	server := flag.String("server", "ws://localhost:8080/play", "relay play endpoint")
	roomCode := flag.String("room", "", "room code to join (required)")
	name := flag.String("name", "bot", "bot name prefix")
	count := flag.Int("count", 1, "number of bots to run")
	duration := flag.Duration("duration", time.Minute, "how long to keep mashing")
	rate := flag.Duration("rate", 250*time.Millisecond, "delay between button actions")
	flag.Parse()

	if *roomCode == "" {
		fmt.Fprintln(os.Stderr, "Usage: bot -room CODE [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < *count; i++ {
		wg.Add(1)
		botName := fmt.Sprintf("%s-%d", *name, i+1)
		go func() {
			defer wg.Done()
			if err := runBot(ctx, *server, *roomCode, botName, *rate); err != nil {
				log.Printf("[%s] stopped: %v", botName, err)
			}
		}()
	}
	wg.Wait()
}

// runBot joins the room and mashes assigned buttons until the context ends
// or the connection drops.
func runBot(ctx context.Context, server, roomCode, name string, rate time.Duration) error {
	conn, _, err := gorillaws.DefaultDialer.DialContext(ctx, server, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	join, err := message.Envelope{Type: message.TypeJoin, RoomCode: roomCode, Name: name}.Encode()
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(gorillaws.TextMessage, join); err != nil {
		return fmt.Errorf("join write: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("join read: %w", err)
	}
	ack, err := message.Decode(data)
	if err != nil {
		return fmt.Errorf("join decode: %w", err)
	}
	switch ack.Type {
	case message.TypeRoomJoined:
		log.Printf("[%s] joined room %s as player %d", name, ack.RoomCode, ack.ID)
	case message.TypeJoinFailed:
		return fmt.Errorf("join rejected: %s (%s)", ack.Code, ack.Message)
	default:
		return fmt.Errorf("unexpected handshake reply %q", ack.Type)
	}

	masher := NewMasher(rand.Uint64())
	inbound := make(chan message.Envelope, 16)
	readErr := make(chan error, 1)

	go func() {
		for {
			conn.SetReadDeadline(time.Now().Add(90 * time.Second))
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			env, err := message.Decode(data)
			if err != nil {
				continue
			}
			inbound <- env
		}
	}()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-readErr:
			return fmt.Errorf("read: %w", err)

		case env := <-inbound:
			switch env.Type {
			case message.TypeButtonsEnabled:
				masher.Assign(env.Buttons, env.Enabled)
				log.Printf("[%s] buttons %v enabled=%v", name, env.Buttons, env.Enabled)
			case message.TypeLevelStarted:
				log.Printf("[%s] level %d started (%s layout)", name, env.Level, env.Layout)
			case message.TypePauseState:
				log.Printf("[%s] paused=%v by player %d", name, env.Paused, env.ID)
			case message.TypeGameDisconnected:
				return fmt.Errorf("game disconnected")
			}

		case <-ticker.C:
			button, pressed, ok := masher.Next()
			if !ok {
				continue
			}
			action, err := message.Envelope{Type: message.TypeButton, Button: button, Pressed: pressed}.Encode()
			if err != nil {
				return err
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(gorillaws.TextMessage, action); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}
