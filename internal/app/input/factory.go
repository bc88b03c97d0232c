package input

import (
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/stemloop/stemloop/internal/infra/config"
)

// hotkeySettings holds probe settings for the hotkey probe type.
type hotkeySettings struct {
	Modifiers []string `mapstructure:"modifiers"`
}

// NewProbeFromConfig creates the configured key probe.
func NewProbeFromConfig(cfg *config.Config) (Probe, error) {
	zlog.Debug().Msgf("input: creating probe: type=%s settings=%+v",
		cfg.Input.Probe, cfg.Input.Settings)

	switch cfg.Input.Probe {
	case "hotkey":
		var s hotkeySettings
		if err := mapstructure.Decode(cfg.Input.Settings, &s); err != nil {
			return nil, errors.Wrap(err, "invalid hotkey probe settings")
		}
		return NewHotkeyProbe(cfg.Engine.TriggerKey, s.Modifiers)

	default:
		return nil, errors.Newf("unsupported probe type: %s", cfg.Input.Probe)
	}
}
