package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bloops-games/wordmix/internal/logging"
	"github.com/bloops-games/wordmix/internal/protocol"
	"github.com/enescakir/emoji"
)

// Client is the part of client.Client the online loop drives.
type Client interface {
	Events() <-chan protocol.Event
	Err() error
	ListRooms() error
	CreateRoom(name, mode string, level int, seed *int64) error
	JoinRoom(roomID, name string) error
	Ready() error
	CheckWord(word string) error
	Leave() error
}

// OnlineConfig joins RoomID when set, otherwise creates a room.
type OnlineConfig struct {
	Name   string
	RoomID string
	Mode   string
	Level  int
	Seed   *int64
}

type online struct {
	c      Client
	out    io.Writer
	scores map[string]int
}

// RunOnline plays one match through c. It returns after game over, /leave,
// the end of input or when ctx is done.
func RunOnline(ctx context.Context, c Client, config OnlineConfig, in io.Reader, out io.Writer) error {
	logger := logging.FromContext(ctx).Named("console.RunOnline")
	o := &online{c: c, out: out, scores: map[string]int{}}

	var err error
	if config.RoomID != "" {
		err = c.JoinRoom(config.RoomID, config.Name)
	} else {
		err = c.CreateRoom(config.Name, config.Mode, config.Level, config.Seed)
	}
	if err != nil {
		return fmt.Errorf("enter room: %w", err)
	}
	o.print(helpOnline)

	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return o.leave()
			}
			quit, err := o.exec(strings.TrimSpace(line))
			if err != nil {
				logger.Debugf("command failed: %v", err)
				o.printf("%s %v\n", emoji.CrossMark, err)
			}
			if quit {
				return nil
			}
		case e, ok := <-c.Events():
			if !ok {
				return fmt.Errorf("connection lost: %w", c.Err())
			}
			if o.handle(e) {
				return nil
			}
		}
	}
}

func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

func (o *online) exec(line string) (bool, error) {
	switch line {
	case "":
		return false, nil
	case "/rooms":
		return false, o.c.ListRooms()
	case "/ready":
		return false, o.c.Ready()
	case "/scores":
		o.print(renderScores(o.scores))
		return false, nil
	case "/leave", "/quit":
		return true, o.leave()
	}

	if strings.HasPrefix(line, "/") {
		return false, fmt.Errorf("unknown command %s", line)
	}
	return false, o.c.CheckWord(line)
}

func (o *online) leave() error {
	if err := o.c.Leave(); err != nil {
		return fmt.Errorf("leave: %w", err)
	}
	return nil
}

// handle prints e and reports whether the match is over.
func (o *online) handle(e protocol.Event) bool {
	switch e := e.(type) {
	case *protocol.RoomList:
		o.print(renderRooms(e.Rooms))
	case *protocol.RoomCreated:
		o.printf("%s room %s created, waiting for players\n", emoji.Fire, e.Room.RoomID)
	case *protocol.JoinedRoom:
		o.printf("%s joined %s hosted by %s\n", emoji.Fire, e.Room.RoomID, e.Room.HostName)
	case *protocol.PlayerJoined:
		o.printf("%s %s joined\n", emoji.ClappingHands, e.PlayerName)
	case *protocol.PlayerReady:
		o.printf("%s %s is ready\n", emoji.CheckMarkButton, e.PlayerName)
	case *protocol.PlayerLeft:
		o.printf("%s %s left\n", emoji.BrokenHeart, e.PlayerName)
	case *protocol.GameStart:
		o.print(renderGrid(e.Grid, e.Words))
		o.printf("%s %ds\n", emoji.Stopwatch, e.Duration)
	case *protocol.WordFound:
		o.scores = e.Scores
		o.printf("%s %s found %s (%d/%d)\n", emoji.ThumbsUp, e.Finder, e.Word, e.FoundCount, e.TotalWords)
	case *protocol.WordInvalid:
		if e.By != "" {
			o.printf("%s %s already found by %s\n", emoji.ThumbsDown, e.Word, e.By)
		} else {
			o.printf("%s %s: %s\n", emoji.ThumbsDown, e.Word, e.Reason)
		}
	case *protocol.GameOver:
		o.print(renderGameOver(e))
		return true
	case *protocol.Error:
		o.printf("%s %s: %s\n", emoji.CrossMark, e.Code, e.Message)
	}

	return false
}

func (o *online) print(text string) {
	_, _ = io.WriteString(o.out, text)
}

func (o *online) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(o.out, format, args...)
}
