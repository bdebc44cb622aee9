package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TRADER_TEST_VALUE", "BTC_ETH")
	assert.Equal(t, "BTC_ETH", getEnv("TRADER_TEST_VALUE", "BTC_STR"))
	assert.Equal(t, "BTC_STR", getEnv("TRADER_TEST_UNSET", "BTC_STR"))
}

func TestGetDuration(t *testing.T) {
	t.Setenv("TRADER_TEST_DELAY", "250ms")
	assert.Equal(t, 250*time.Millisecond, getDuration("TRADER_TEST_DELAY", time.Second))

	t.Setenv("TRADER_TEST_DELAY", "soon")
	assert.Equal(t, time.Second, getDuration("TRADER_TEST_DELAY", time.Second))
}

func TestGetInt(t *testing.T) {
	t.Setenv("TRADER_TEST_ATTEMPTS", "4")
	assert.Equal(t, 4, getInt("TRADER_TEST_ATTEMPTS", 0))

	t.Setenv("TRADER_TEST_ATTEMPTS", "")
	assert.Equal(t, 0, getInt("TRADER_TEST_ATTEMPTS", 0))
}

func TestMissing(t *testing.T) {
	account, secret := STELLAR_ACCOUNT, STELLAR_SECRET
	t.Cleanup(func() { STELLAR_ACCOUNT, STELLAR_SECRET = account, secret })

	STELLAR_ACCOUNT, STELLAR_SECRET = "", ""
	assert.Equal(t, []string{"STELLAR_ACCOUNT", "STELLAR_SECRET"}, Missing())

	STELLAR_ACCOUNT, STELLAR_SECRET = "GABC", "SABC"
	assert.Empty(t, Missing())
}
