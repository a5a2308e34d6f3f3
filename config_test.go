package pumproom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate_RequiredFields(t *testing.T) {
	assert.ErrorIs(t, NewConfig("", "realm").Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, NewConfig("key", "").Validate(), ErrInvalidConfig)
	assert.NoError(t, NewConfig("key", "realm").Validate())
}

func TestConfigValidate_Defaults(t *testing.T) {
	config := NewConfig("key", "realm")
	require.NoError(t, config.Validate())

	assert.Equal(t, DefaultBaseURL, config.BaseURL)
	assert.True(t, config.cacheEnabled())
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 2, config.RetryConfig.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, config.RetryConfig.InitialInterval)
	assert.NotNil(t, config.Store)
	assert.NotNil(t, config.Logger)
	assert.NotNil(t, config.Observer)
	assert.NotNil(t, config.Viewport)
	assert.Equal(t, 8, config.CallbackWorkers)
}

func TestConfigValidate_NormalizesPageURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"query stripped", "https://school.example.com/lesson?tab=2", "https://school.example.com/lesson"},
		{"fragment stripped", "https://school.example.com/lesson#top", "https://school.example.com/lesson"},
		{"both stripped", "https://school.example.com/lesson?a=1#top", "https://school.example.com/lesson"},
		{"clean url untouched", "https://school.example.com/lesson", "https://school.example.com/lesson"},
		{"empty stays empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := NewConfig("key", "realm").WithPageURL(tc.in)
			require.NoError(t, config.Validate())
			assert.Equal(t, tc.want, config.PageURL)
		})
	}
}

func TestConfigBuilders(t *testing.T) {
	alertCalled := false
	config := NewConfig("key", "realm").
		WithBaseURL("https://api.test").
		WithPageURL("https://page.test").
		WithCacheUser(false).
		WithProviderType(ProviderGetCourse).
		WithContext(LMSContext{KitID: "kit"}).
		WithTimeout(5 * time.Second).
		WithRetries(4).
		WithHeader("X-A", "1").
		WithHeader("X-B", "2").
		WithAlert(func(string) { alertCalled = true }).
		WithAuthCompletedHook(func(*User) {})

	require.NoError(t, config.Validate())

	assert.Equal(t, "https://api.test", config.BaseURL)
	assert.False(t, config.cacheEnabled())
	assert.Equal(t, ProviderGetCourse, config.ProviderType)
	assert.Equal(t, "kit", config.Context.KitID)
	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Equal(t, 4, config.RetryConfig.MaxRetries)
	assert.Len(t, config.Headers, 2)
	assert.NotNil(t, config.AuthCompletedHook)

	config.Alert("x")
	assert.True(t, alertCalled)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(NewConfig("", ""))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
