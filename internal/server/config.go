package server

import "time"

type Config struct {
	SendBuffer   int           `envconfig:"WORDMIX_SEND_BUFFER" default:"64"`
	WriteTimeout time.Duration `envconfig:"WORDMIX_WRITE_TIMEOUT" default:"10s"`
	ReadLimit    int64         `envconfig:"WORDMIX_READ_LIMIT" default:"4096"`
}
