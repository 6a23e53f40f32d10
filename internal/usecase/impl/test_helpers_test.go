package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"ziplink/config"
	"ziplink/internal/domain/service"
	"ziplink/internal/infra/random"

	"github.com/pkg/errors"
)

// scriptedGenerator replays a fixed sequence of values, then falls back to
// real randomness. Lets tests force id collisions deterministically.
type scriptedGenerator struct {
	mu       sync.Mutex
	queue    []string
	fallback service.CodeGenerator
}

func newScriptedGenerator(values ...string) *scriptedGenerator {
	return &scriptedGenerator{queue: values, fallback: random.NewGenerator()}
}

func (g *scriptedGenerator) Generate(alphabet string, length int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.queue) > 0 {
		next := g.queue[0]
		g.queue = g.queue[1:]

		return next
	}

	return g.fallback.Generate(alphabet, length)
}

// fakeTokenService issues recognizable tokens without signing anything.
type fakeTokenService struct {
	failIssue bool
}

func (f *fakeTokenService) IssueAccessToken(userID string) (string, error) {
	if f.failIssue {
		return "", errors.New("signer unavailable")
	}

	return "access-" + userID, nil
}

func (f *fakeTokenService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	if len(tokenString) <= len("access-") {
		return nil, errors.New("malformed token")
	}

	return &service.Claims{UserID: tokenString[len("access-"):]}, nil
}

func (f *fakeTokenService) AccessTokenExpiry() time.Duration {
	return 15 * time.Minute
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*service.DomainEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, event *service.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) byType(eventType string) []*service.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []*service.DomainEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}

	return out
}

func newTestAuthConfig(maxConns int) *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			SigningSecret:      "test-secret",
			CodeAlphabet:       "0123456789",
			CodeLength:         6,
			CodeTTL:            5 * time.Minute,
			TokenAlphabet:      "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
			TokenLength:        48,
			ConnectionLifetime: 30 * 24 * time.Hour,
			AccessTokenExpiry:  15 * time.Minute,
			MaxConnections:     maxConns,
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
