package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/arcacommerce/arca-backend/pkg/config"
)

func TestResourceName(t *testing.T) {
	assert.Equal(t, "projects/arca/topics/domain", resourceName("arca", kindTopics, " domain "))
	assert.Equal(t, "projects/other/topics/domain", resourceName("arca", kindTopics, "projects/other/topics/domain"))
	assert.Equal(t, "projects/arca/subscriptions/projects-sub", resourceName("arca", kindSubscriptions, "projects-sub"))
	assert.Empty(t, resourceName("arca", kindTopics, ""))
	assert.Empty(t, resourceName("", kindTopics, "domain"))
}

func TestNotFoundAware(t *testing.T) {
	require.NoError(t, notFoundAware("topic", "domain", nil))

	err := notFoundAware("topic", "domain", status.Error(codes.NotFound, "missing"))
	require.EqualError(t, err, `topic "domain" does not exist`)

	cause := errors.New("deadline")
	err = notFoundAware("subscription", "sub", cause)
	require.ErrorIs(t, err, cause)
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{DomainTopic: "t"}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(context.Background(), config.GCPConfig{ProjectID: "arca"}, config.PubSubConfig{}, nil)
	require.ErrorIs(t, err, errTopicRequired)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Publisher("arca-domain-events"))
	assert.NoError(t, c.Close())
	assert.Error(t, c.Ping(context.Background()))
}
