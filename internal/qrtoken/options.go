package qrtoken

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/mapease/checkin-service/internal/config"
)

// OptionsFromConfig builds rendering options from QR_* settings.
func OptionsFromConfig(cfg config.QRConfig) (Options, error) {
	dark, err := ParseHexColor(cfg.DarkColor)
	if err != nil {
		return Options{}, fmt.Errorf("QR_DARK_COLOR: %w", err)
	}
	light, err := ParseHexColor(cfg.LightColor)
	if err != nil {
		return Options{}, fmt.Errorf("QR_LIGHT_COLOR: %w", err)
	}
	level, err := ParseRecoveryLevel(cfg.RecoveryLevel)
	if err != nil {
		return Options{}, fmt.Errorf("QR_RECOVERY_LEVEL: %w", err)
	}
	return Options{
		Width:  cfg.Width,
		Margin: cfg.Margin,
		Dark:   dark,
		Light:  light,
		Level:  level,
	}.normalize(), nil
}

// ParseRecoveryLevel maps low|medium|high|highest to a recovery level.
func ParseRecoveryLevel(s string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium", "m":
		return qrcode.Medium, nil
	case "low", "l":
		return qrcode.Low, nil
	case "high", "q":
		return qrcode.High, nil
	case "highest", "h":
		return qrcode.Highest, nil
	}
	return qrcode.Medium, fmt.Errorf("unknown recovery level %q", s)
}

// ParseHexColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseHexColor(s string) (color.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
