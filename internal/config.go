package internal

import (
	"fmt"
	"time"
)

// Config is the server configuration, loaded from the environment by the cmd
// packages after godotenv ran.
type Config struct {
	Host string `env:"HOST,required=true"`
	Port int    `env:"PORT,required=true"`

	LogLevel  string `env:"LOG_LEVEL,required=true"`
	JWTSecret string `env:"JWT_SECRET,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	HandshakeTimeout     time.Duration `env:"HANDSHAKE_TIMEOUT,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	PingInterval         time.Duration `env:"PING_INTERVAL,required=true"`
	PongTimeout          time.Duration `env:"PONG_TIMEOUT,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`

	// ReadPolicy is "all" or "any"; anything else falls back to "all".
	ReadPolicy string `env:"READ_POLICY"`

	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	MetricInterval    time.Duration `env:"METRIC_INTERVAL,required=true"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,required=true"`
	SessionMaxIdle    time.Duration `env:"SESSION_MAX_IDLE,required=true"`

	DebugPort       int    `env:"DEBUG_PORT,required=true"`
	TimelineSize    int    `env:"TIMELINE_SIZE,required=true"`
	CharReplacement string `env:"MODERATION_CHARACTER_REPLACEMENT,required=true"`
}

// CharacterRune validates that the masking replacement is one rune.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
