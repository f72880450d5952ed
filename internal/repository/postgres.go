// internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

const flagColumns = `id, title, severity, status, outcome, flagged_on, risk, category,
	evidence, ai_summary, ai_analysis, product, seller, account, user_upload,
	operator_note, notes, version, created_at, updated_at`

type PostgresFlagStore struct {
	db *sql.DB
}

func NewPostgresFlagStore(db *sql.DB) *PostgresFlagStore {
	return &PostgresFlagStore{db: db}
}

func (r *PostgresFlagStore) Insert(ctx context.Context, flag *models.Flag) error {
	doc, err := encodeFlag(flag)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO flags (` + flagColumns + `, note_authors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		flag.ID,
		flag.Title,
		flag.Severity,
		flag.Status,
		nullString(string(flag.Outcome)),
		flag.FlaggedOn,
		nullString(flag.Risk),
		nullString(flag.Category),
		doc.evidence,
		nullString(flag.AISummary),
		nullString(flag.AIAnalysis),
		doc.product,
		doc.seller,
		doc.account,
		doc.userUpload,
		flag.OperatorNote,
		doc.notes,
		flag.Version,
		flag.CreatedAt,
		flag.UpdatedAt,
		pq.Array(noteAuthors(flag.Notes)),
	)
	if err != nil {
		return fmt.Errorf("insert flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrConflict
	}
	return nil
}

func (r *PostgresFlagStore) Get(ctx context.Context, id string) (*models.Flag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+flagColumns+` FROM flags WHERE id = $1`, id)
	f, err := scanFlag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return f, err
}

func (r *PostgresFlagStore) List(ctx context.Context) ([]*models.Flag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+flagColumns+` FROM flags ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list flags: %w", err)
	}
	defer rows.Close()

	var out []*models.Flag
	for rows.Next() {
		f, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PostgresFlagStore) Update(ctx context.Context, flag *models.Flag, expected int) error {
	doc, err := encodeFlag(flag)
	if err != nil {
		return err
	}
	query := `
		UPDATE flags
		SET status = $3, outcome = $4, evidence = $5, ai_analysis = $6,
			operator_note = $7, notes = $8, note_authors = $9,
			version = version + 1, updated_at = $10
		WHERE id = $1 AND version = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		flag.ID,
		expected,
		flag.Status,
		nullString(string(flag.Outcome)),
		doc.evidence,
		nullString(flag.AIAnalysis),
		flag.OperatorNote,
		doc.notes,
		pq.Array(noteAuthors(flag.Notes)),
		flag.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM flags WHERE id = $1)`, flag.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check flag: %w", err)
		}
		if !exists {
			return models.ErrNotFound
		}
		return models.ErrConflict
	}
	flag.Version = expected + 1
	return nil
}

type flagDocument struct {
	evidence, product, seller, account, userUpload, notes []byte
}

func encodeFlag(f *models.Flag) (flagDocument, error) {
	var doc flagDocument
	var err error
	evidence := f.Evidence
	if evidence == nil {
		evidence = []models.Evidence{}
	}
	notes := f.Notes
	if notes == nil {
		notes = []models.Note{}
	}
	if doc.evidence, err = json.Marshal(evidence); err != nil {
		return doc, fmt.Errorf("encode evidence: %w", err)
	}
	if doc.notes, err = json.Marshal(notes); err != nil {
		return doc, fmt.Errorf("encode notes: %w", err)
	}
	if doc.product, err = jsonOrNil(f.Product != nil, f.Product); err != nil {
		return doc, err
	}
	if doc.seller, err = jsonOrNil(f.Seller != nil, f.Seller); err != nil {
		return doc, err
	}
	if doc.account, err = jsonOrNil(f.Account != nil, f.Account); err != nil {
		return doc, err
	}
	if doc.userUpload, err = jsonOrNil(f.UserUpload != nil, f.UserUpload); err != nil {
		return doc, err
	}
	return doc, nil
}

func jsonOrNil(present bool, v interface{}) ([]byte, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFlag(row scanner) (*models.Flag, error) {
	var (
		f                                             models.Flag
		outcome, risk, category, summary, analysis    sql.NullString
		flaggedOn                                     time.Time
		evidence, product, seller, account, upload, n []byte
	)
	err := row.Scan(
		&f.ID, &f.Title, &f.Severity, &f.Status, &outcome, &flaggedOn, &risk, &category,
		&evidence, &summary, &analysis, &product, &seller, &account, &upload,
		&f.OperatorNote, &n, &f.Version, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Outcome = models.Outcome(outcome.String)
	f.FlaggedOn = flaggedOn.Format(models.FlagDateLayout)
	f.Risk = risk.String
	f.Category = category.String
	f.AISummary = summary.String
	f.AIAnalysis = analysis.String

	if err := json.Unmarshal(evidence, &f.Evidence); err != nil {
		return nil, fmt.Errorf("decode evidence: %w", err)
	}
	if err := json.Unmarshal(n, &f.Notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	if product != nil {
		f.Product = &models.ProductRef{}
		if err := json.Unmarshal(product, f.Product); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
	}
	if seller != nil {
		f.Seller = &models.SellerRef{}
		if err := json.Unmarshal(seller, f.Seller); err != nil {
			return nil, fmt.Errorf("decode seller: %w", err)
		}
	}
	if account != nil {
		f.Account = &models.AccountRef{}
		if err := json.Unmarshal(account, f.Account); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
	}
	if upload != nil {
		if err := json.Unmarshal(upload, &f.UserUpload); err != nil {
			return nil, fmt.Errorf("decode user upload: %w", err)
		}
	}
	return &f, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func noteAuthors(notes []models.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Author)
	}
	return out
}
