// Package qrtoken converts check-in tokens to and from the text carried in a QR image.
package qrtoken

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/go-playground/validator/v10"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/mapease/checkin-service/internal/domain"
)

const (
	DefaultWidth  = 256
	DefaultMargin = 2

	dataURIPrefix = "data:image/png;base64,"

	maxSafeInteger = domain.MaxIssuedAt
)

var validate = validator.New()

// wireToken is the shape emitted into the QR image.
type wireToken struct {
	RegistrationID string `json:"registrationId"`
	EventID        string `json:"eventId"`
	UserID         string `json:"userId"`
	Timestamp      int64  `json:"timestamp"`
}

// scannedToken is the shape accepted from a scanner. Pointers distinguish a
// missing or null field from a zero value.
type scannedToken struct {
	RegistrationID *string  `json:"registrationId" validate:"required,min=1"`
	EventID        *string  `json:"eventId" validate:"required,min=1"`
	UserID         *string  `json:"userId" validate:"required,min=1"`
	Timestamp      *float64 `json:"timestamp" validate:"required,gte=0"`
}

// EncodingError is returned when a token cannot be turned into an image.
type EncodingError struct {
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encode token: %s: %v", e.Reason, e.Err)
	}
	return "encode token: " + e.Reason
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Options controls image rendering.
type Options struct {
	// Width is the edge length of the square image in pixels.
	Width int
	// Margin is the quiet zone in modules.
	Margin int
	Dark   color.Color
	Light  color.Color
	Level  qrcode.RecoveryLevel
}

// DefaultOptions renders 256px, 2-module margin, black on white, medium error correction.
func DefaultOptions() Options {
	return Options{
		Width:  DefaultWidth,
		Margin: DefaultMargin,
		Dark:   color.Black,
		Light:  color.White,
		Level:  qrcode.Medium,
	}
}

func (o Options) normalize() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Margin < 0 {
		o.Margin = DefaultMargin
	}
	if o.Dark == nil {
		o.Dark = color.Black
	}
	if o.Light == nil {
		o.Light = color.White
	}
	return o
}

// Image is an encoded token ready for delivery.
type Image struct {
	// Text is the exact string embedded in the barcode.
	Text    string
	PNG     []byte
	DataURI string
}

// Codec encodes tokens with fixed rendering options. It holds no mutable state.
type Codec struct {
	opts Options
}

// NewCodec builds a codec; zero-valued options fall back to defaults.
func NewCodec(opts Options) *Codec {
	return &Codec{opts: opts.normalize()}
}

// Options returns the codec's rendering options.
func (c *Codec) Options() Options {
	return c.opts
}

// Encode renders tok with the codec's options.
func (c *Codec) Encode(tok domain.Token) (*Image, error) {
	return c.EncodeWith(tok, c.opts)
}

// EncodeWith renders tok with per-call options.
func (c *Codec) EncodeWith(tok domain.Token, opts Options) (*Image, error) {
	opts = opts.normalize()

	text, err := Marshal(tok)
	if err != nil {
		return nil, err
	}

	symbol, err := qrcode.New(text, opts.Level)
	if err != nil {
		return nil, &EncodingError{Reason: "payload exceeds symbol capacity", Err: err}
	}
	symbol.DisableBorder = true

	img := render(symbol.Bitmap(), opts)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &EncodingError{Reason: "render png", Err: err}
	}

	raw := buf.Bytes()
	return &Image{
		Text:    text,
		PNG:     raw,
		DataURI: dataURIPrefix + base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// Marshal returns the wire text for tok.
func Marshal(tok domain.Token) (string, error) {
	if err := tok.Validate(); err != nil {
		return "", &EncodingError{Reason: "malformed token", Err: err}
	}
	b, err := json.Marshal(wireToken{
		RegistrationID: tok.RegistrationID,
		EventID:        tok.EventID,
		UserID:         tok.UserID,
		Timestamp:      tok.IssuedAt,
	})
	if err != nil {
		return "", &EncodingError{Reason: "marshal payload", Err: err}
	}
	return string(b), nil
}

// Decode parses scanner text. It reports false, never an error, for anything
// that is not a JSON object carrying all four fields with the right types.
func Decode(raw string) (domain.Token, bool) {
	var in scannedToken
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return domain.Token{}, false
	}
	if err := validate.Struct(in); err != nil {
		return domain.Token{}, false
	}

	ts := *in.Timestamp
	if ts != math.Trunc(ts) || ts > maxSafeInteger {
		return domain.Token{}, false
	}

	return domain.Token{
		RegistrationID: *in.RegistrationID,
		EventID:        *in.EventID,
		UserID:         *in.UserID,
		IssuedAt:       int64(ts),
	}, true
}

// render scales the module bitmap to an exact Width x Width image, with the
// quiet zone included in the scaling.
func render(bitmap [][]bool, opts Options) *image.Paletted {
	size := len(bitmap)
	total := size + 2*opts.Margin
	width := opts.Width
	if width < total {
		width = total
	}

	img := image.NewPaletted(image.Rect(0, 0, width, width), color.Palette{opts.Light, opts.Dark})
	for y := 0; y < width; y++ {
		my := y*total/width - opts.Margin
		for x := 0; x < width; x++ {
			mx := x*total/width - opts.Margin
			if my >= 0 && my < size && mx >= 0 && mx < size && bitmap[my][mx] {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

// IsEncodingError reports whether err came from Encode.
func IsEncodingError(err error) bool {
	var encErr *EncodingError
	return errors.As(err, &encErr)
}
