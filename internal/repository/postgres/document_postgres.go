package postgres

import (
	"context"
	"database/sql"
	"time"

	"menuscan/internal/model"
	"menuscan/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, department_id, original_name, filename, file_path, COALESCE(storage_path, ''), size, status, error_message, uploaded_at, processed_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.DepartmentID,
		&d.OriginalName,
		&d.Filename,
		&d.FilePath,
		&d.StoragePath,
		&d.Size,
		&d.Status,
		&d.ErrorMessage,
		&d.UploadedAt,
		&d.ProcessedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, department_id, original_name, filename, file_path, storage_path, size, status, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.DepartmentID,
		doc.OriginalName,
		doc.Filename,
		doc.FilePath,
		doc.StoragePath,
		doc.Size,
		doc.Status,
		doc.UploadedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents using LIMIT/OFFSET pagination and a total count,
// optionally filtered by department.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	qCount := `SELECT COUNT(*) FROM documents`
	qList := `SELECT ` + documentColumns + ` FROM documents`
	countArgs := []any{}
	listArgs := []any{}
	if pq.DepartmentID != "" {
		qCount += ` WHERE department_id = $1`
		qList += ` WHERE department_id = $1 ORDER BY uploaded_at DESC, id DESC LIMIT $2 OFFSET $3`
		countArgs = append(countArgs, pq.DepartmentID)
		listArgs = append(listArgs, pq.DepartmentID, pq.Limit, pq.Offset)
	} else {
		qList += ` ORDER BY uploaded_at DESC, id DESC LIMIT $1 OFFSET $2`
		listArgs = append(listArgs, pq.Limit, pq.Offset)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, qCount, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, qList, listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a document by ID. Child rows cascade at the database level.
// It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// UpdateStatus sets the processing status and error message of a document.
func (r *DocumentPostgres) UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, errorMessage *string) error {
	const q = `UPDATE documents SET status = $2, error_message = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, status, errorMessage)
	return err
}

// MarkDone transitions a document to done with its processing timestamp and
// aggregated error summary.
func (r *DocumentPostgres) MarkDone(ctx context.Context, id string, errorMessage *string, processedAt time.Time) error {
	const q = `UPDATE documents SET status = 'done', error_message = $2, processed_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, errorMessage, processedAt)
	return err
}

// SetStoredFile records the final file locations of the source PDF.
func (r *DocumentPostgres) SetStoredFile(ctx context.Context, id, filePath, storagePath string) error {
	const q = `UPDATE documents SET file_path = $2, storage_path = NULLIF($3, '') WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, filePath, storagePath)
	return err
}
