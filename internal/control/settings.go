package control

import (
	"context"
	"strings"

	"github.com/roach88/cuesheet/internal/hub"
	"github.com/roach88/cuesheet/internal/show"
)

// Setting returns the value stored under key. ok is false if unset.
// The password hash is not readable here.
func (c *Controller) Setting(ctx context.Context, key string) (value string, ok bool, err error) {
	if err := checkSettingKey(key); err != nil {
		return "", false, err
	}
	return c.store.Setting(ctx, key)
}

// SetSetting stores a setting and announces it. The password hash is not
// writable here; use the auth gate.
func (c *Controller) SetSetting(ctx context.Context, key, value string) error {
	if err := checkSettingKey(key); err != nil {
		return err
	}
	value = show.NormalizeText(value)
	if err := c.store.SetSetting(ctx, key, value); err != nil {
		return err
	}
	c.publish(ctx, hub.SettingUpdated(key, value))
	return nil
}

func checkSettingKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return show.Validation("setting key is required")
	case key == show.SettingPasswordHash:
		return show.Validation("setting " + key + " is managed by the password gate")
	}
	return nil
}
