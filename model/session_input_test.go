package model

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	assert.Equal(t, Tags{"yoga", "calm"}, ParseTags("yoga, calm"))
	assert.Equal(t, Tags{"a", "b"}, ParseTags(" a ,, b , "))
	assert.Equal(t, Tags{}, ParseTags(""))
}

func TestTags_UnmarshalAcceptsStringOrList(t *testing.T) {
	var in SessionInput
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t","tags":"yoga, calm","json_file_url":"u"}`), &in))
	assert.Equal(t, Tags{"yoga", "calm"}, in.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"tags":[" yoga ","","calm"]}`), &in))
	assert.Equal(t, Tags{"yoga", "calm"}, in.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"tags":null}`), &in))
	assert.Equal(t, Tags{}, in.Tags)

	assert.Error(t, json.Unmarshal([]byte(`{"tags":42}`), &in))
}

func TestSessionInput_Validate(t *testing.T) {
	ok := SessionInput{Title: " Morning Flow ", ContentURL: "https://x/y.json"}
	require.NoError(t, ok.Validate())

	var verr *ValidationError
	err := SessionInput{ContentURL: "https://x/y.json"}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	err = SessionInput{Title: "t", ContentURL: "  "}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "json_file_url", verr.Field)

	err = SessionInput{Title: strings.Repeat("é", MaxTitleLength), ContentURL: "u"}.Validate()
	require.NoError(t, err)
	err = SessionInput{Title: strings.Repeat("é", MaxTitleLength+1), ContentURL: "u"}.Validate()
	require.ErrorAs(t, err, &verr)
}

func TestParseAndValidate(t *testing.T) {
	c, err := ParseAndValidate[Credentials](strings.NewReader(`{"email":"a@b.c","password":"secret"}`))
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", c.Email)

	_, err = ParseAndValidate[Credentials](strings.NewReader(`{"email":"a@b.c"`))
	require.ErrorIs(t, err, ErrMalformed)

	_, err = ParseAndValidate[Credentials](strings.NewReader(`{"email":"","password":"x"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	require.Error(t, Credentials{Email: "a@b.c", Password: "123"}.ValidateNew())
	require.NoError(t, Credentials{Email: "a@b.c", Password: "123456"}.ValidateNew())
}

func TestDecode_KeepsReaderError(t *testing.T) {
	body := http.MaxBytesReader(nil, io.NopCloser(strings.NewReader(`{"title":"`+strings.Repeat("a", 64)+`"}`)), 16)

	_, err := Decode[SessionInput](body)
	require.ErrorIs(t, err, ErrMalformed)
	var tooLarge *http.MaxBytesError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(16), tooLarge.Limit)
}
