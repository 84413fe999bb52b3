package qrtoken

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapease/checkin-service/internal/domain"
)

func sampleToken() domain.Token {
	return domain.Token{
		RegistrationID: "reg-1",
		EventID:        "event-123",
		UserID:         "user-123",
		IssuedAt:       time.Now().UnixMilli(),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := NewCodec(DefaultOptions())
	tokens := []domain.Token{
		sampleToken(),
		{RegistrationID: "r", EventID: "e", UserID: "u", IssuedAt: 0},
		{RegistrationID: "régistration ✓", EventID: "evt \"quoted\"", UserID: "u/1", IssuedAt: maxSafeInteger},
	}
	for _, tok := range tokens {
		img, err := codec.Encode(tok)
		require.NoError(t, err)

		decoded, ok := Decode(img.Text)
		require.True(t, ok, img.Text)
		assert.Equal(t, tok, decoded)
	}
}

func TestMarshalWireKeys(t *testing.T) {
	text, err := Marshal(domain.Token{RegistrationID: "reg-1", EventID: "event-123", UserID: "user-123", IssuedAt: 42})
	require.NoError(t, err)
	assert.JSONEq(t, `{"registrationId":"reg-1","eventId":"event-123","userId":"user-123","timestamp":42}`, text)
}

func TestDecodeIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"not json",
		"{",
		"null",
		"[]",
		`"reg-1"`,
		"42",
		`{}`,
		`{"registrationId":"reg-1","eventId":"event-123","userId":"user-123"}`,
		`{"registrationId":"reg-1","eventId":"event-123","timestamp":1}`,
		`{"registrationId":"reg-1","userId":"user-123","timestamp":1}`,
		`{"eventId":"event-123","userId":"user-123","timestamp":1}`,
		`{"registrationId":null,"eventId":"event-123","userId":"user-123","timestamp":1}`,
		`{"registrationId":1,"eventId":"event-123","userId":"user-123","timestamp":1}`,
		`{"registrationId":"reg-1","eventId":["event-123"],"userId":"user-123","timestamp":1}`,
		`{"registrationId":"reg-1","eventId":"event-123","userId":{},"timestamp":1}`,
		`{"registrationId":"reg-1","eventId":"event-123","userId":"user-123","timestamp":"1"}`,
		`{"registrationId":"reg-1","eventId":"event-123","userId":"user-123","timestamp":true}`,
		`{"registrationId":"reg-1","eventId":"event-123","userId":"user-123","timestamp":-1}`,
		`{"registrationId":"reg-1","eventId":"event-123","userId":"user-123","timestamp":1.5}`,
		`{"registrationId":"reg-1","eventId":"event-123","userId":"user-123","timestamp":1e400}`,
		`{"registrationId":"","eventId":"event-123","userId":"user-123","timestamp":1}`,
		"https://example.com/some-unrelated-qr",
	}
	for _, in := range inputs {
		tok, ok := Decode(in)
		assert.False(t, ok, in)
		assert.Equal(t, domain.Token{}, tok, in)
	}
}

func TestDecodeIgnoresExtraKeysAndKeyOrder(t *testing.T) {
	tok, ok := Decode(`{"timestamp":1700000000000,"userId":"u","extra":[1,2],"eventId":"e","registrationId":"r"}`)
	require.True(t, ok)
	assert.Equal(t, domain.Token{RegistrationID: "r", EventID: "e", UserID: "u", IssuedAt: 1_700_000_000_000}, tok)

	tok, ok = Decode(`{"registrationId":"r","eventId":"e","userId":"u","timestamp":1.7e12}`)
	require.True(t, ok)
	assert.Equal(t, int64(1_700_000_000_000), tok.IssuedAt)
}

func TestEncodeRejectsMalformedToken(t *testing.T) {
	_, err := NewCodec(DefaultOptions()).Encode(domain.Token{EventID: "e", UserID: "u"})
	require.Error(t, err)
	assert.True(t, IsEncodingError(err))
	assert.ErrorIs(t, err, domain.ErrMalformedToken)

	tok := sampleToken()
	tok.IssuedAt = 1<<60 + 1
	_, err = NewCodec(DefaultOptions()).Encode(tok)
	require.Error(t, err)
	assert.True(t, IsEncodingError(err))
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	tok := sampleToken()
	tok.RegistrationID = strings.Repeat("x", 4000)

	_, err := NewCodec(DefaultOptions()).Encode(tok)
	require.Error(t, err)

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "payload exceeds symbol capacity", encErr.Reason)
}

func TestEncodeImageGeometry(t *testing.T) {
	tok := sampleToken()
	img, err := NewCodec(DefaultOptions()).Encode(tok)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(img.DataURI, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(img.DataURI, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, img.PNG, raw)

	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	require.NoError(t, err)
	assert.Equal(t, 256, decoded.Bounds().Dx())
	assert.Equal(t, 256, decoded.Bounds().Dy())

	// quiet zone
	assertColor(t, color.White, decoded.At(0, 0))
	assertColor(t, color.White, decoded.At(255, 255))

	// centre of the top-left finder pattern is dark
	symbol, err := qrcode.New(img.Text, qrcode.Medium)
	require.NoError(t, err)
	symbol.DisableBorder = true
	total := len(symbol.Bitmap()) + 2*DefaultMargin
	px := ((DefaultMargin+3)*256 + total - 1) / total
	assertColor(t, color.Black, decoded.At(px, px))
}

func TestEncodeWithCustomOptions(t *testing.T) {
	red := color.NRGBA{R: 0xff, A: 0xff}
	yellow := color.NRGBA{R: 0xff, G: 0xff, A: 0xff}
	codec := NewCodec(DefaultOptions())

	img, err := codec.EncodeWith(sampleToken(), Options{Width: 300, Margin: 0, Dark: red, Light: yellow})
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	require.NoError(t, err)
	assert.Equal(t, 300, decoded.Bounds().Dx())
	// no quiet zone: the corner is the finder pattern's dark edge
	assertColor(t, red, decoded.At(0, 0))
}

func TestEncodeGrowsTooSmallWidth(t *testing.T) {
	img, err := NewCodec(Options{Width: 5, Margin: 2}).Encode(sampleToken())
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	require.NoError(t, err)
	assert.Greater(t, decoded.Bounds().Dx(), 21)
}

func assertColor(t *testing.T, want, got color.Color) {
	t.Helper()
	wr, wg, wb, wa := want.RGBA()
	gr, gg, gb, ga := got.RGBA()
	assert.Equal(t, [4]uint32{wr, wg, wb, wa}, [4]uint32{gr, gg, gb, ga})
}
