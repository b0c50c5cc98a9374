package internal

import (
	"fmt"
	"time"
)

type Config struct {
	BufferSize      int           `env:"BUFFER_SIZE,required=true"`
	NumberOfWorkers int           `env:"NUMBER_OF_WORKERS,required=true"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,required=true"`
	LimitMessages   *int          `env:"LIMIT_MESSAGES"`
	SearchLimit     int           `env:"SEARCH_LIMIT,required=true"`
	SubmitTimeout   time.Duration `env:"SUBMIT_TIMEOUT,required=true"`
	OracleTimeout   time.Duration `env:"ORACLE_TIMEOUT,required=true"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,required=true"`

	SessionTokenKey      string        `env:"SESSION_TOKEN_KEY,required=true"`
	SessionTokenDuration time.Duration `env:"SESSION_TOKEN_DURATION,required=true"`

	RoomsFilepath    string `env:"ROOMS_FILEPATH"`
	LogLevel         string `env:"LOG_LEVEL,required=true"`
	MaxContentLength int    `env:"MAX_CONTENT_LENGTH,required=true"`
	DebugPort        int    `env:"DEBUG_PORT"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
