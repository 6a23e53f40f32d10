package impl

import (
	"context"
	"sync"
	"testing"

	"ziplink/config"
	"ziplink/internal/domain/entity"
	domainerrors "ziplink/internal/domain/errors"
	"ziplink/internal/domain/repository"
	"ziplink/internal/domain/service"
	"ziplink/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryLinkRepo backs link tests with a map keyed by alias.
type memoryLinkRepo struct {
	mu      sync.Mutex
	byAlias map[string]*entity.Link
	nextID  uint64
}

func newMemoryLinkRepo() *memoryLinkRepo {
	return &memoryLinkRepo{byAlias: make(map[string]*entity.Link)}
}

func (r *memoryLinkRepo) Create(_ context.Context, link *entity.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byAlias[link.Alias]; ok {
		return repository.ErrAliasTaken
	}

	r.nextID++
	link.ID = r.nextID
	copied := *link
	r.byAlias[link.Alias] = &copied

	return nil
}

func (r *memoryLinkRepo) FindByAlias(_ context.Context, alias string) (*entity.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.byAlias[alias]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	copied := *link

	return &copied, nil
}

func (r *memoryLinkRepo) FindByUserID(_ context.Context, userID string) ([]*entity.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Link
	for _, link := range r.byAlias {
		if link.CreatedBy == userID {
			copied := *link
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (r *memoryLinkRepo) DeleteByAlias(_ context.Context, alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byAlias, alias)

	return nil
}

// fakeQRService returns a fixed payload instead of rendering.
type fakeQRService struct {
	fail bool
}

func (f *fakeQRService) GenerateLinkQR(shortURL string) ([]byte, error) {
	if f.fail {
		return nil, errors.New("render failed")
	}

	return []byte("png:" + shortURL), nil
}

type linkFixture struct {
	svc       usecase.LinkUsecase
	repo      *memoryLinkRepo
	publisher *recordingPublisher
}

func newLinkFixture(generator service.CodeGenerator) *linkFixture {
	if generator == nil {
		generator = newScriptedGenerator()
	}

	cfg := newTestAuthConfig(0)
	cfg.ShortLink = &config.ShortLinkConfig{
		AliasAlphabet: "abcdefghijklmnopqrstuvwxyz0123456789",
		AliasLength:   7,
		BaseURL:       "https://zl.example/",
	}

	fixture := &linkFixture{
		repo:      newMemoryLinkRepo(),
		publisher: &recordingPublisher{},
	}

	fixture.svc = NewLinkService(LinkServiceParams{
		LinkRepo:  fixture.repo,
		Generator: generator,
		QRService: &fakeQRService{},
		Publisher: fixture.publisher,
		Config:    cfg,
		Logger:    discardLogger(),
	})

	return fixture
}

func TestLinkService_CreateLink_Success(t *testing.T) {
	fixture := newLinkFixture(nil)
	ctx := context.Background()

	out, err := fixture.svc.CreateLink(ctx, usecase.CreateLinkInput{URL: "https://example.com/some/page", CreatedBy: "user-1"})

	require.NoError(t, err)
	assert.Len(t, out.Link.Alias, 7)
	assert.Equal(t, "https://zl.example/"+out.Link.Alias, out.ShortURL)

	stored, err := fixture.repo.FindByAlias(ctx, out.Link.Alias)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/some/page", stored.URL)
	assert.Equal(t, "user-1", stored.CreatedBy)

	created := fixture.publisher.byType(service.EventLinkCreated)
	require.Len(t, created, 1)
	assert.Equal(t, out.Link.Alias, created[0].Payload["alias"])
}

func TestLinkService_CreateLink_RejectsBadURLs(t *testing.T) {
	fixture := newLinkFixture(nil)
	ctx := context.Background()

	for _, raw := range []string{"", "not-a-url", "ftp://example.com/file", "/relative/path", "javascript:alert(1)"} {
		_, err := fixture.svc.CreateLink(ctx, usecase.CreateLinkInput{URL: raw})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed, "url %q", raw)
	}
}

func TestLinkService_CreateLink_RetriesOnAliasCollision(t *testing.T) {
	generator := newScriptedGenerator("aaaaaaa", "aaaaaaa", "bbbbbbb")
	fixture := newLinkFixture(generator)
	ctx := context.Background()

	first, err := fixture.svc.CreateLink(ctx, usecase.CreateLinkInput{URL: "https://example.com/1"})
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaa", first.Link.Alias)

	second, err := fixture.svc.CreateLink(ctx, usecase.CreateLinkInput{URL: "https://example.com/2"})
	require.NoError(t, err)
	assert.Equal(t, "bbbbbbb", second.Link.Alias)
}

func TestLinkService_ResolveAlias(t *testing.T) {
	fixture := newLinkFixture(nil)
	ctx := context.Background()

	out, err := fixture.svc.CreateLink(ctx, usecase.CreateLinkInput{URL: "https://example.com/page"})
	require.NoError(t, err)

	link, err := fixture.svc.ResolveAlias(ctx, out.Link.Alias)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", link.URL)

	_, err = fixture.svc.ResolveAlias(ctx, "missing0")
	assert.ErrorIs(t, err, domainerrors.ErrLinkNotFound)
}

func TestLinkService_DeleteLink_OwnershipChecks(t *testing.T) {
	fixture := newLinkFixture(nil)
	ctx := context.Background()

	out, err := fixture.svc.CreateLink(ctx, usecase.CreateLinkInput{URL: "https://example.com/page", CreatedBy: "user-a"})
	require.NoError(t, err)

	err = fixture.svc.DeleteLink(ctx, "user-b", out.Link.Alias)
	assert.ErrorIs(t, err, domainerrors.ErrLinkNotFound)

	err = fixture.svc.DeleteLink(ctx, "user-a", out.Link.Alias)
	require.NoError(t, err)

	_, err = fixture.svc.ResolveAlias(ctx, out.Link.Alias)
	assert.ErrorIs(t, err, domainerrors.ErrLinkNotFound)
}

func TestLinkService_LinkQR(t *testing.T) {
	fixture := newLinkFixture(nil)
	ctx := context.Background()

	out, err := fixture.svc.CreateLink(ctx, usecase.CreateLinkInput{URL: "https://example.com/page"})
	require.NoError(t, err)

	png, err := fixture.svc.LinkQR(ctx, out.Link.Alias)
	require.NoError(t, err)
	assert.Equal(t, []byte("png:"+out.ShortURL), png)

	_, err = fixture.svc.LinkQR(ctx, "missing0")
	assert.ErrorIs(t, err, domainerrors.ErrLinkNotFound)
}
