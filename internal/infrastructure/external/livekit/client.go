package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"
	livekit "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
)

// Client provisions voice rooms for live training sessions.
type Client interface {
	CreateRoom(ctx context.Context, name string) error
	DeleteRoom(ctx context.Context, roomName string) error
	GenerateToken(roomName, identity string) (string, error)
}

// Room lifecycle tunables. A training session is always two participants
// (trainee plus the simulated buyer's audio agent).
const (
	maxParticipants  = 2
	emptyTimeout     = 300 // seconds before an unjoined room is reclaimed
	departureTimeout = 30
	tokenValidity    = 4 * time.Hour
)

// realClient talks to a LiveKit deployment.
type realClient struct {
	roomClient *lksdk.RoomServiceClient
	apiKey     string
	apiSecret  string
}

// NewClient creates a LiveKit client. With useMock set, room operations
// succeed without a deployment; tokens are still real so clients can be
// exercised end to end in dev.
func NewClient(url, apiKey, apiSecret string, useMock bool) Client {
	if useMock {
		return &mockClient{apiKey: apiKey, apiSecret: apiSecret}
	}
	return &realClient{
		roomClient: lksdk.NewRoomServiceClient(url, apiKey, apiSecret),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
	}
}

func (c *realClient) CreateRoom(ctx context.Context, name string) error {
	_, err := c.roomClient.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:             name,
		MaxParticipants:  maxParticipants,
		EmptyTimeout:     emptyTimeout,
		DepartureTimeout: departureTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (c *realClient) DeleteRoom(ctx context.Context, roomName string) error {
	_, err := c.roomClient.DeleteRoom(ctx, &livekit.DeleteRoomRequest{
		Room: roomName,
	})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

func (c *realClient) GenerateToken(roomName, identity string) (string, error) {
	return generateToken(c.apiKey, c.apiSecret, roomName, identity)
}

func generateToken(apiKey, apiSecret, roomName, identity string) (string, error) {
	canPublish := true
	canSubscribe := true

	at := auth.NewAccessToken(apiKey, apiSecret)
	grant := &auth.VideoGrant{
		RoomJoin:     true,
		Room:         roomName,
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	}
	at.AddGrant(grant).
		SetIdentity(identity).
		SetValidFor(tokenValidity)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
