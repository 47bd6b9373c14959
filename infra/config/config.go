package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Dir is where the json config files live, relative to the working directory.
var Dir = filepath.Join("infra", "config")

// MustLoad reads the json config with the given name into v.
// A missing or malformed config is a startup error and panics.
func MustLoad(name string, v interface{}) {
	p := filepath.Join(Dir, fmt.Sprintf("%s.json", name))
	b, err := os.ReadFile(p)
	if err != nil {
		panic(fmt.Sprintf("could not read config '%s': %v", p, err))
	}
	if err := json.Unmarshal(b, v); err != nil {
		panic(fmt.Sprintf("could not parse config '%s': %v", p, err))
	}
	log.Info().Str("config", name).Str("path", p).Msg("loaded config")
}
