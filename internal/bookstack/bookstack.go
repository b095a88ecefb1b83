package bookstack

import (
	"context"

	"github.com/takak2166/bookstack-export/internal/models"
)

//go:generate mockgen -source=bookstack.go -destination=mock_bookstack/mock_bookstack.go -package=mock_bookstack
type API interface {
	ListPages(ctx context.Context) (*models.PageList, error)
	GetBook(ctx context.Context, bookID string) (*models.Book, error)
	ExportPage(ctx context.Context, pageID string, exportType string) ([]byte, error)
}
