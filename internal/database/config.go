package database

import "time"

type Config struct {
	FilePath    string        `envconfig:"WORDMIX_DB_FILE_PATH" default:"wordmix.db"`
	OpenTimeout time.Duration `envconfig:"WORDMIX_DB_OPEN_TIMEOUT" default:"1s"`
}
