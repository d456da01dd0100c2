package menu

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/branchadmin/internal/apiclient"
	"github.com/vbonduro/branchadmin/internal/fakeapi"
)

type call struct {
	method string
	path   string
	body   any
}

// recordingClient is a minimal httpClient that records calls and replays a
// canned response.
type recordingClient struct {
	calls    []call
	response any
	err      error
}

func (c *recordingClient) Get(_ context.Context, path string) (any, error) {
	c.calls = append(c.calls, call{method: "GET", path: path})
	return c.response, c.err
}

func (c *recordingClient) Post(_ context.Context, path string, body any) (any, error) {
	c.calls = append(c.calls, call{method: "POST", path: path, body: body})
	return c.response, c.err
}

func (c *recordingClient) Put(_ context.Context, path string, body any) (any, error) {
	c.calls = append(c.calls, call{method: "PUT", path: path, body: body})
	return c.response, c.err
}

func (c *recordingClient) Delete(_ context.Context, path string) error {
	c.calls = append(c.calls, call{method: "DELETE", path: path})
	return c.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRepositoryList_EmptyBranchSkipsNetwork(t *testing.T) {
	client := &recordingClient{}
	repo := NewRepository(client, discardLogger())

	items, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Empty(t, client.calls)
}

func TestRepositoryList_NormalizesEachElement(t *testing.T) {
	client := &recordingClient{response: []any{
		map[string]any{"id": float64(1), "name": "Latte", "photo": "l.jpg"},
		nil,
		map[string]any{"id": float64(2), "name": "Mocha", "isAvailable": false},
	}}
	repo := NewRepository(client, discardLogger())

	items, err := repo.List(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "l.jpg", items[0].ImageURL)
	assert.Equal(t, "2", items[1].ID)
	assert.False(t, items[1].IsAvailable)

	require.Len(t, client.calls, 1)
	assert.Equal(t, call{method: "GET", path: "/branches/7/menu"}, client.calls[0])
}

func TestRepositoryList_NonArrayResponse(t *testing.T) {
	client := &recordingClient{response: map[string]any{"detail": "weird"}}
	repo := NewRepository(client, discardLogger())

	items, err := repo.List(context.Background(), "7")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRepositoryList_PropagatesError(t *testing.T) {
	boom := errors.New("connection refused")
	repo := NewRepository(&recordingClient{err: boom}, discardLogger())

	_, err := repo.List(context.Background(), "7")
	assert.ErrorIs(t, err, boom)
}

func TestRepositoryCreate_EmptyBranchIsValidationError(t *testing.T) {
	client := &recordingClient{}
	repo := NewRepository(client, discardLogger())

	item, err := repo.Create(context.Background(), map[string]any{"name": "Latte"}, "")
	assert.Nil(t, item)
	assert.ErrorIs(t, err, ErrBranchRequired)
	assert.EqualError(t, err, "Branch ID is required to create a menu item")
	assert.Empty(t, client.calls)
}

func TestRepositoryCreate_InjectsBranchID(t *testing.T) {
	client := &recordingClient{response: map[string]any{"id": float64(10), "name": "Latte", "branch_id": "B1"}}
	repo := NewRepository(client, discardLogger())

	form := map[string]any{"name": "Latte", "branch_id": "OLD"}
	item, err := repo.Create(context.Background(), form, "B1")
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	assert.Equal(t, "POST", client.calls[0].method)
	assert.Equal(t, "/branches/B1/menu", client.calls[0].path)
	sent := client.calls[0].body.(map[string]any)
	assert.Equal(t, "B1", sent["branch_id"])
	assert.Equal(t, "Latte", sent["name"])

	// The caller's form is left alone.
	assert.Equal(t, "OLD", form["branch_id"])

	require.NotNil(t, item)
	assert.Equal(t, "10", item.ID)
	assert.Equal(t, "B1", *item.BranchID)
}

func TestRepositoryCreate_NilFormStillCarriesBranch(t *testing.T) {
	client := &recordingClient{response: map[string]any{"id": float64(1)}}
	repo := NewRepository(client, discardLogger())

	_, err := repo.Create(context.Background(), nil, "B1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"branch_id": "B1"}, client.calls[0].body)
}

func TestRepositoryCreate_NullResponsePassesThrough(t *testing.T) {
	repo := NewRepository(&recordingClient{response: nil}, discardLogger())

	item, err := repo.Create(context.Background(), map[string]any{"name": "x"}, "B1")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestRepositoryUpdate(t *testing.T) {
	client := &recordingClient{response: map[string]any{"id": "5", "name": "Iced Latte", "image": "i.png"}}
	repo := NewRepository(client, discardLogger())

	item, err := repo.Update(context.Background(), map[string]any{"name": "Iced Latte", "branch_id": "X"}, "5", "B2")
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	assert.Equal(t, "PUT", client.calls[0].method)
	assert.Equal(t, "/branches/B2/menu/5", client.calls[0].path)
	assert.Equal(t, "B2", client.calls[0].body.(map[string]any)["branch_id"])
	assert.Equal(t, "i.png", item.ImageURL)
}

func TestRepositoryUpdate_EmptyBranchIsValidationError(t *testing.T) {
	client := &recordingClient{}
	repo := NewRepository(client, discardLogger())

	_, err := repo.Update(context.Background(), map[string]any{}, "5", "")
	assert.ErrorIs(t, err, ErrBranchRequired)
	assert.Empty(t, client.calls)
}

func TestRepositoryDelete(t *testing.T) {
	client := &recordingClient{}
	repo := NewRepository(client, discardLogger())

	require.NoError(t, repo.Delete(context.Background(), "12", "3"))
	assert.Equal(t, []call{{method: "DELETE", path: "/branches/3/menu/12"}}, client.calls)
}

func TestRepositoryDelete_PropagatesError(t *testing.T) {
	boom := errors.New("404")
	repo := NewRepository(&recordingClient{err: boom}, discardLogger())
	assert.ErrorIs(t, repo.Delete(context.Background(), "12", "3"), boom)
}

// newFakeBackedRepository wires the repository to the fake admin API over
// real HTTP with a valid bearer token.
func newFakeBackedRepository(t *testing.T) (*Repository, *fakeapi.Server) {
	t.Helper()
	fake := fakeapi.New("test-secret")
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	token, err := fake.IssueToken("manager", "worker")
	require.NoError(t, err)

	client := apiclient.New(server.URL, staticToken(token), 5*time.Second, discardLogger())
	return NewRepository(client, discardLogger()), fake
}

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func TestRepositoryRoundTrip(t *testing.T) {
	repo, fake := newFakeBackedRepository(t)
	ctx := context.Background()

	fake.SeedMenu("4", map[string]any{"id": 100, "name": "Seeded", "image_url": "s.png", "price": "3"})

	created, err := repo.Create(ctx, map[string]any{"name": "Cortado", "price": 3.2, "branch_id": "999"}, "4")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Cortado", created.Name)
	assert.Equal(t, "4", *created.BranchID)
	assert.Equal(t, "4", fake.MenuRecords("4")[1]["branch_id"])

	items, err := repo.List(ctx, "4")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "100", items[0].ID)
	assert.Equal(t, "s.png", items[0].ImageURL)
	assert.Equal(t, float64(3), items[0].Price)

	updated, err := repo.Update(ctx, map[string]any{"name": "Cortado Doble"}, created.ID, "4")
	require.NoError(t, err)
	assert.Equal(t, "Cortado Doble", updated.Name)

	require.NoError(t, repo.Delete(ctx, created.ID, "4"))

	items, err = repo.List(ctx, "4")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRepositoryRoundTrip_DeleteMissingIsHTTPError(t *testing.T) {
	repo, _ := newFakeBackedRepository(t)

	err := repo.Delete(context.Background(), "404", "1")
	var httpErr *apiclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 404, httpErr.StatusCode)
}

func TestRepositoryRoundTrip_RejectsMissingToken(t *testing.T) {
	fake := fakeapi.New("test-secret")
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	repo := NewRepository(apiclient.New(server.URL, nil, 5*time.Second, discardLogger()), discardLogger())

	_, err := repo.List(context.Background(), "1")
	var httpErr *apiclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 401, httpErr.StatusCode)
}
