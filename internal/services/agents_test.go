package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentService_Chat(t *testing.T) {
	api := newFakeAPI()
	svc := NewAgentService(api)
	ctx := context.Background()

	reply, err := svc.Chat(ctx, "a1", "status?")
	require.NoError(t, err)
	assert.Equal(t, "echo: status?", reply.Message)
	assert.False(t, reply.Failed)

	api.interruptErr = errDown
	reply, err = svc.Chat(ctx, "a1", "again")
	require.NoError(t, err, "a remote failure is a reply, not an error")
	assert.Equal(t, ChatApology, reply.Message)
	assert.True(t, reply.Failed)

	_, err = svc.Chat(ctx, "a1", "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	_, err = svc.Chat(ctx, "", "hi")
	assert.ErrorIs(t, err, ErrMissingAgentID)
}

func TestAgentService_RunStatusCall(t *testing.T) {
	api := newFakeAPI()
	svc := NewAgentService(api)
	ctx := context.Background()

	msg, err := svc.Run(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Agent a1 started", msg)

	api.statusErr["a1"] = errDown
	_, err = svc.Status(ctx, "a1")
	assert.True(t, errors.Is(err, ErrRemote))

	msg, err = svc.Call(ctx, "a1", " +100 ", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "calling +100 for a1 as Ann", msg)
}

func TestAgentService_Generate(t *testing.T) {
	svc := NewAgentService(newFakeAPI())
	raw, err := svc.Generate(context.Background(), "Bot")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"Bot"`))

	_, err = svc.Generate(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}
