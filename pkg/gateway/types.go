package gateway

import (
	"scriptura/pkg/api"
)

// Aliases so channel and handler code can stay on gateway.* names.
type Channel = api.Channel
type SignalingChannel = api.SignalingChannel
type MessageResponder = api.MessageResponder
type ChannelContext = api.ChannelContext
type UnifiedMessage = api.UnifiedMessage
type SessionContext = api.SessionContext

type MessageHandler = api.MessageHandler
