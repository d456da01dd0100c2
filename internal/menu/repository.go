package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/branchadmin/internal/domain"
)

var ErrBranchRequired = errors.New("Branch ID is required to create a menu item")

// httpClient is the subset of apiclient.Client that Repository requires.
type httpClient interface {
	Get(ctx context.Context, path string) (any, error)
	Post(ctx context.Context, path string, body any) (any, error)
	Put(ctx context.Context, path string, body any) (any, error)
	Delete(ctx context.Context, path string) error
}

type Repository struct {
	client httpClient
	logger *slog.Logger
}

func NewRepository(client httpClient, logger *slog.Logger) *Repository {
	return &Repository{client: client, logger: logger}
}

func menuPath(branchID string) string {
	return fmt.Sprintf("/branches/%s/menu", branchID)
}

func itemPath(branchID, itemID string) string {
	return fmt.Sprintf("/branches/%s/menu/%s", branchID, itemID)
}

// List returns the branch's menu. An empty branchID yields an empty list
// without touching the network.
func (r *Repository) List(ctx context.Context, branchID string) ([]*domain.MenuItem, error) {
	if branchID == "" {
		return []*domain.MenuItem{}, nil
	}

	body, err := r.client.Get(ctx, menuPath(branchID))
	if err != nil {
		return nil, err
	}

	list, ok := body.([]any)
	if !ok {
		r.logger.Warn("menu list response is not an array", "branch_id", branchID)
		return []*domain.MenuItem{}, nil
	}

	items := make([]*domain.MenuItem, 0, len(list))
	for _, raw := range list {
		if item := NormalizeAny(raw); item != nil {
			items = append(items, item)
		}
	}
	r.logger.Debug("menu listed", "branch_id", branchID, "items", len(items))
	return items, nil
}

func (r *Repository) Create(ctx context.Context, form map[string]any, branchID string) (*domain.MenuItem, error) {
	if branchID == "" {
		return nil, ErrBranchRequired
	}

	body, err := r.client.Post(ctx, menuPath(branchID), withBranch(form, branchID))
	if err != nil {
		return nil, err
	}

	item := NormalizeAny(body)
	if item != nil {
		r.logger.Info("menu item created", "branch_id", branchID, "item_id", item.ID)
	}
	return item, nil
}

func (r *Repository) Update(ctx context.Context, form map[string]any, itemID, branchID string) (*domain.MenuItem, error) {
	if branchID == "" {
		return nil, ErrBranchRequired
	}

	body, err := r.client.Put(ctx, itemPath(branchID, itemID), withBranch(form, branchID))
	if err != nil {
		return nil, err
	}

	r.logger.Info("menu item updated", "branch_id", branchID, "item_id", itemID)
	return NormalizeAny(body), nil
}

func (r *Repository) Delete(ctx context.Context, itemID, branchID string) error {
	if err := r.client.Delete(ctx, itemPath(branchID, itemID)); err != nil {
		return err
	}
	r.logger.Info("menu item deleted", "branch_id", branchID, "item_id", itemID)
	return nil
}

// withBranch copies form and stamps branch_id, overriding any value the
// caller supplied.
func withBranch(form map[string]any, branchID string) map[string]any {
	payload := make(map[string]any, len(form)+1)
	for k, v := range form {
		payload[k] = v
	}
	payload["branch_id"] = branchID
	return payload
}
