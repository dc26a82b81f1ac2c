package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type docConfig struct {
	variant string
	strict  bool
	calls   []string
}

func withVariant(v string) Option[*docConfig] {
	return New(func(c *docConfig) error {
		if v == "" {
			return errors.New("empty variant")
		}
		c.variant = v
		c.calls = append(c.calls, "variant")

		return nil
	})
}

func withStrict() Option[*docConfig] {
	return NoError(func(c *docConfig) {
		c.strict = true
		c.calls = append(c.calls, "strict")
	})
}

func TestApply(t *testing.T) {
	cfg := &docConfig{}
	err := Apply(cfg, withStrict(), withVariant("player"))
	require.NoError(t, err)
	require.True(t, cfg.strict)
	require.Equal(t, "player", cfg.variant)
	require.Equal(t, []string{"strict", "variant"}, cfg.calls)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &docConfig{}
	err := Apply(cfg, withVariant(""), withStrict())
	require.EqualError(t, err, "empty variant")
	require.False(t, cfg.strict)
	require.Empty(t, cfg.calls)
}

func TestApply_SkipsNil(t *testing.T) {
	cfg := &docConfig{}
	require.NoError(t, Apply[*docConfig](cfg, nil, withStrict()))
	require.True(t, cfg.strict)
	require.NoError(t, Apply(cfg))
}
