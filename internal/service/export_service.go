package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
	"github.com/noah-isme/elearn-api/pkg/export"
)

type catalogReader interface {
	All(ctx context.Context) ([]models.Book, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the book catalog into downloadable files.
type ExportService struct {
	books  catalogReader
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(books catalogReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{books: books, csv: csv, pdf: pdf, logger: logger}
}

// ExportBooks renders the complete catalog in the requested format. Only
// "csv" and "pdf" are supported.
func (s *ExportService) ExportBooks(ctx context.Context, format string) (*ExportFile, error) {
	books, err := s.books.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}

	dataset := bookDataset(books)
	switch format {
	case "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: "books.csv", ContentType: "text/csv", Data: data}, nil
	case "pdf":
		data, err := s.pdf.Render(dataset, "Book Catalog")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: "books.pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func bookDataset(books []models.Book) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"ID", "Title", "Author", "ISBN", "Category", "Price", "Stock", "Active"},
	}
	for _, b := range books {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":       strconv.Itoa(b.ID),
			"Title":    b.Title,
			"Author":   b.Author,
			"ISBN":     b.ISBN,
			"Category": b.Category,
			"Price":    strconv.FormatFloat(b.Price, 'f', 2, 64),
			"Stock":    strconv.Itoa(b.Stock),
			"Active":   strconv.FormatBool(b.IsActive),
		})
	}
	return dataset
}
