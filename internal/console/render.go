package console

import (
	"sort"
	"strconv"

	"github.com/bloops-games/wordmix/internal/grid"
	"github.com/bloops-games/wordmix/internal/protocol"
	"github.com/bloops-games/wordmix/internal/room"
	"github.com/bloops-games/wordmix/internal/solo"
	"github.com/bloops-games/wordmix/internal/strpool"
	"github.com/enescakir/emoji"
)

const helpSolo = "commands: /hint /pause /resume /time /save NAME /load NAME /saves /next /grid /quit\n"

const helpOnline = "commands: /rooms /ready /scores /leave; anything else is a word\n"

func renderLevel(s *solo.Session) string {
	buf := strpool.Get()
	defer strpool.Put(buf)

	buf.WriteString(emoji.VideoGame.String())
	buf.WriteString(" Level ")
	buf.WriteString(strconv.Itoa(s.Level()))
	buf.WriteString("  seed ")
	buf.WriteString(strconv.FormatInt(s.Seed(), 10))
	buf.WriteString("  ")
	buf.WriteString(emoji.Stopwatch.String())
	buf.WriteString(" ")
	buf.WriteString(strconv.Itoa(max(0, int(s.RemainingTime()))))
	buf.WriteString("s\n\n")
	buf.WriteString(s.Grid().String())
	buf.WriteString("\n")
	buf.WriteString(renderWords(s.Words(), s.Found()))

	return buf.String()
}

func renderGrid(g *grid.Grid, list []string) string {
	buf := strpool.Get()
	defer strpool.Put(buf)

	buf.WriteString(emoji.Rocket.String())
	buf.WriteString(" Go!\n\n")
	buf.WriteString(g.String())
	buf.WriteString("\n")
	buf.WriteString(renderWords(list, nil))

	return buf.String()
}

// renderWords lists every word, found ones prefixed with a check mark.
func renderWords(list, found []string) string {
	buf := strpool.Get()
	defer strpool.Put(buf)

	done := make(map[string]bool, len(found))
	for _, w := range found {
		done[w] = true
	}

	buf.WriteString("Words (")
	buf.WriteString(strconv.Itoa(len(found)))
	buf.WriteString("/")
	buf.WriteString(strconv.Itoa(len(list)))
	buf.WriteString("):")
	for _, w := range list {
		buf.WriteString(" ")
		if done[w] {
			buf.WriteString(emoji.CheckMarkButton.String())
		}
		buf.WriteString(w)
	}
	buf.WriteString("\n")

	return buf.String()
}

func renderScores(scores map[string]int) string {
	buf := strpool.Get()
	defer strpool.Put(buf)

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] == scores[names[j]] {
			return names[i] < names[j]
		}
		return scores[names[i]] > scores[names[j]]
	})

	for _, name := range names {
		buf.WriteString(emoji.HundredPoints.String())
		buf.WriteString(" ")
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(strconv.Itoa(scores[name]))
		buf.WriteString("\n")
	}

	return buf.String()
}

func renderGameOver(e *protocol.GameOver) string {
	buf := strpool.Get()
	defer strpool.Put(buf)

	buf.WriteString(emoji.Trophy.String())
	buf.WriteString(" Game over, winner: ")
	buf.WriteString(e.Winner)
	buf.WriteString("\n")
	buf.WriteString(renderScores(e.Scores))

	return buf.String()
}

func renderRooms(rooms []room.Summary) string {
	buf := strpool.Get()
	defer strpool.Put(buf)

	if len(rooms) == 0 {
		buf.WriteString("no open rooms\n")
		return buf.String()
	}

	for _, r := range rooms {
		buf.WriteString(emoji.Joystick.String())
		buf.WriteString(" ")
		buf.WriteString(r.RoomID)
		buf.WriteString("  host ")
		buf.WriteString(r.HostName)
		buf.WriteString("  ")
		buf.WriteString(string(r.Mode))
		buf.WriteString("  level ")
		buf.WriteString(strconv.Itoa(r.Level))
		buf.WriteString("  ")
		buf.WriteString(strconv.Itoa(r.PlayerCount))
		buf.WriteString("/")
		buf.WriteString(strconv.Itoa(r.MaxPlayers))
		buf.WriteString("\n")
	}

	return buf.String()
}
