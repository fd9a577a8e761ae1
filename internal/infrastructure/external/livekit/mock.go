package livekit

import "context"

// mockClient simulates room operations for environments without a LiveKit
// deployment.
type mockClient struct {
	apiKey    string
	apiSecret string
}

func (m *mockClient) CreateRoom(_ context.Context, _ string) error {
	return nil
}

func (m *mockClient) DeleteRoom(_ context.Context, _ string) error {
	return nil
}

// GenerateToken uses real signing even in mock mode so a client pointed at a
// local LiveKit still joins.
func (m *mockClient) GenerateToken(roomName, identity string) (string, error) {
	return generateToken(m.apiKey, m.apiSecret, roomName, identity)
}
