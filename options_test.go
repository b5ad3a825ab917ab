package apicontract_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"testing"

	ac "github.com/Gobd/apicontract"
	"github.com/Gobd/apicontract/formats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sku = regexp.MustCompile(`^[A-Z]{3}-[0-9]{4}$`)

func skuFormat() formats.Format {
	return formats.Format{
		Name: "sku",
		Type: formats.TypeString,
		Check: func(v any) bool {
			s, ok := v.(string)
			return ok && sku.MatchString(s)
		},
	}
}

func TestWithFormats(t *testing.T) {
	plain := build(t, "testdata/widgets.yaml")
	custom := build(t, "testdata/widgets.yaml", ac.WithFormats(skuFormat()))
	key := ac.Key("/widgets", "post")
	body := json.RawMessage(`{"name": "a", "tags": ["ABC-1234", "nope"]}`)

	check, err := plain.BodyChecker(key)
	require.NoError(t, err)
	assert.True(t, check(body).Valid, "unknown formats are ignored")

	check, err = custom.BodyChecker(key)
	require.NoError(t, err)
	res := check(body)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "/tags/1", res.Errors[0].Location)
	assert.Equal(t, "format", res.Errors[0].Keyword)
	assert.Contains(t, res.Errors[0].Reason, `"sku"`)
}

func TestWithFormatsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		format formats.Format
	}{
		{"builtin name", formats.Format{Name: formats.NameInt64, Type: formats.TypeInteger, Check: formats.Int64}},
		{"empty name", formats.Format{Type: formats.TypeString, Check: skuFormat().Check}},
		{"unknown type", formats.Format{Name: "x", Type: "object", Check: skuFormat().Check}},
		{"nil check", formats.Format{Name: "x", Type: formats.TypeString}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ac.Build(context.Background(), ac.FromFile("testdata/widgets.yaml"), ac.WithFormats(tt.format))
			require.Error(t, err)
			assert.ErrorIs(t, err, ac.ErrConfig)
			assert.NotErrorIs(t, err, ac.ErrSource)
		})
	}
}

func TestWithNullableBodies(t *testing.T) {
	key := ac.Key("/route-with-request-body", "post")
	body := map[string]any{"validRequiredProperty": "a", "note": nil}

	check, err := build(t, "testdata/private.yaml").BodyChecker(key)
	require.NoError(t, err)
	assert.True(t, check(body).Valid)

	check, err = build(t, "testdata/private.yaml", ac.WithNullableBodies(false)).BodyChecker(key)
	require.NoError(t, err)
	res := check(body)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "/note", res.Errors[0].Location)
	assert.Equal(t, "nullable", res.Errors[0].Keyword)

	res = check(map[string]any{"validRequiredProperty": nil})
	require.False(t, res.Valid, "non-nullable properties reject null regardless")
	assert.Len(t, res.Errors, 1)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	build(t, "testdata/widgets.yaml", ac.WithLogger(logger))
	assert.Contains(t, buf.String(), `"msg":"contract compiled"`)
	assert.Contains(t, buf.String(), `"operations":2`)

	_, err := ac.Build(context.Background(), ac.FromFile("testdata/widgets.yaml"), ac.WithLogger(nil))
	assert.ErrorIs(t, err, ac.ErrConfig)
}
