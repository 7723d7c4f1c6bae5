package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFallsBackOnBlank(t *testing.T) {
	t.Setenv("ARCA_LOG_FORMAT", "  ")
	assert.Equal(t, "json", Get("ARCA_LOG_FORMAT", "json"))

	t.Setenv("ARCA_LOG_FORMAT", " console ")
	assert.Equal(t, "console", Get("ARCA_LOG_FORMAT", "json"))
}

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("ARCA_INSTANCE_ID", "")
	t.Setenv("DYNO", "worker.2")
	assert.Equal(t, "worker.2", First("ARCA_INSTANCE_ID", "DYNO"))

	t.Setenv("ARCA_INSTANCE_ID", "cron-a")
	assert.Equal(t, "cron-a", First("ARCA_INSTANCE_ID", "DYNO"))
	assert.Empty(t, First())
}
