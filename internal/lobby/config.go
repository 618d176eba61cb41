package lobby

import "time"

type Config struct {
	MaxPlayers      int           `envconfig:"WORDMIX_MAX_PLAYERS" default:"2"`
	SweepInterval   time.Duration `envconfig:"WORDMIX_SWEEP_INTERVAL" default:"10s"`
	IdleRoomTimeout time.Duration `envconfig:"WORDMIX_IDLE_ROOM_TIMEOUT" default:"30m"`
}
