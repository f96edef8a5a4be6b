package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithoutURLDropsEvents(t *testing.T) {
	p, err := New("", zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)

	p.Publish(SubjectPostCreated, PostCreatedEvent{PostID: "p1"})
	p.Close()
}
