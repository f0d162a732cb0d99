package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/gorm"

	"titlehub/internal/http-api/models"
)

const batchSize = 200

// Importer bulk-loads the fixture CSV files into the entity store. Files
// are processed in dependency order; the first error aborts the run and
// rows inserted by earlier files are not rolled back.
type Importer struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

func (im *Importer) Run(dir string) error {
	steps := []struct {
		file string
		load func(io.Reader) (int64, error)
	}{
		{"category.csv", im.loadCategories},
		{"genre.csv", im.loadGenres},
		{"users.csv", im.loadUsers},
		{"titles.csv", im.loadTitles},
		{"review.csv", im.loadReviews},
		{"comments.csv", im.loadComments},
		{"genre_title.csv", im.loadGenreTitles},
	}

	for _, step := range steps {
		f, err := os.Open(filepath.Join(dir, step.file))
		if err != nil {
			return fmt.Errorf("%s: %w", step.file, err)
		}

		n, err := step.load(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", step.file, err)
		}

		im.logger.Info("imported file", "file", step.file, "rows", n)
	}

	return im.resetSequences()
}

// resetSequences moves each serial sequence past the preserved ids so
// subsequent API inserts do not collide with imported rows.
func (im *Importer) resetSequences() error {
	tables := []string{"categories", "genres", "users", "titles", "reviews", "comments", "genre_titles"}
	for _, table := range tables {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 1) FROM %s))",
			table, table,
		)
		if err := im.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("reset sequence for %s: %w", table, err)
		}
	}
	return nil
}

func (im *Importer) loadCategories(r io.Reader) (int64, error) {
	records, err := parseCategories(r)
	if err != nil {
		return 0, err
	}
	return insert(im.db, records)
}

func (im *Importer) loadGenres(r io.Reader) (int64, error) {
	records, err := parseGenres(r)
	if err != nil {
		return 0, err
	}
	return insert(im.db, records)
}

func (im *Importer) loadUsers(r io.Reader) (int64, error) {
	records, err := parseUsers(r)
	if err != nil {
		return 0, err
	}
	return insert(im.db, records)
}

func (im *Importer) loadTitles(r io.Reader) (int64, error) {
	records, err := parseTitles(r)
	if err != nil {
		return 0, err
	}
	return insert(im.db, records)
}

func (im *Importer) loadReviews(r io.Reader) (int64, error) {
	records, err := parseReviews(r)
	if err != nil {
		return 0, err
	}
	return insert(im.db, records)
}

func (im *Importer) loadComments(r io.Reader) (int64, error) {
	records, err := parseComments(r)
	if err != nil {
		return 0, err
	}
	return insert(im.db, records)
}

func (im *Importer) loadGenreTitles(r io.Reader) (int64, error) {
	records, err := parseGenreTitles(r)
	if err != nil {
		return 0, err
	}
	return insert(im.db, records)
}

func insert[T any](db *gorm.DB, records []T) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	result := db.CreateInBatches(records, batchSize)
	return result.RowsAffected, result.Error
}

// rows reads a CSV stream and returns its data rows plus a header index,
// so column order in the fixture files does not matter.
func rows(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("missing header row")
	}

	index := make(map[string]int, len(all[0]))
	for i, col := range all[0] {
		index[col] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", col)
		}
	}
	return all[1:], index, nil
}

func parseID(row []string, index map[string]int, col string) (int64, error) {
	v, err := strconv.ParseInt(row[index[col]], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", col, err)
	}
	return v, nil
}

func parseCategories(r io.Reader) ([]models.Category, error) {
	data, index, err := rows(r, "id", "name", "slug")
	if err != nil {
		return nil, err
	}

	out := make([]models.Category, 0, len(data))
	for i, row := range data {
		id, err := parseID(row, index, "id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, models.Category{
			ID:   id,
			Name: row[index["name"]],
			Slug: row[index["slug"]],
		})
	}
	return out, nil
}

func parseGenres(r io.Reader) ([]models.Genre, error) {
	data, index, err := rows(r, "id", "name", "slug")
	if err != nil {
		return nil, err
	}

	out := make([]models.Genre, 0, len(data))
	for i, row := range data {
		id, err := parseID(row, index, "id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, models.Genre{
			ID:   id,
			Name: row[index["name"]],
			Slug: row[index["slug"]],
		})
	}
	return out, nil
}

func parseUsers(r io.Reader) ([]models.User, error) {
	data, index, err := rows(r, "id", "username", "email", "role")
	if err != nil {
		return nil, err
	}

	optional := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]models.User, 0, len(data))
	for i, row := range data {
		id, err := parseID(row, index, "id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		role := row[index["role"]]
		if role == "" {
			role = models.RoleUser
		}
		out = append(out, models.User{
			ID:        id,
			Username:  row[index["username"]],
			Email:     row[index["email"]],
			Role:      role,
			Bio:       optional(row, "bio"),
			FirstName: optional(row, "first_name"),
			LastName:  optional(row, "last_name"),
		})
	}
	return out, nil
}

func parseTitles(r io.Reader) ([]models.Title, error) {
	data, index, err := rows(r, "id", "name", "year", "category")
	if err != nil {
		return nil, err
	}

	out := make([]models.Title, 0, len(data))
	for i, row := range data {
		id, err := parseID(row, index, "id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		year, err := strconv.Atoi(row[index["year"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: column \"year\": %w", i+1, err)
		}

		title := models.Title{ID: id, Name: row[index["name"]], Year: year}
		if raw := row[index["category"]]; raw != "" {
			categoryID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: column \"category\": %w", i+1, err)
			}
			title.CategoryID = &categoryID
		}
		out = append(out, title)
	}
	return out, nil
}

func parseReviews(r io.Reader) ([]models.Review, error) {
	data, index, err := rows(r, "id", "title_id", "text", "author", "score", "pub_date")
	if err != nil {
		return nil, err
	}

	out := make([]models.Review, 0, len(data))
	for i, row := range data {
		id, err := parseID(row, index, "id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		titleID, err := parseID(row, index, "title_id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		authorID, err := parseID(row, index, "author")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		score, err := strconv.Atoi(row[index["score"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: column \"score\": %w", i+1, err)
		}
		pubDate, err := time.Parse(time.RFC3339, row[index["pub_date"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: column \"pub_date\": %w", i+1, err)
		}

		out = append(out, models.Review{
			ID:       id,
			TitleID:  titleID,
			AuthorID: authorID,
			Text:     row[index["text"]],
			Score:    score,
			PubDate:  pubDate,
		})
	}
	return out, nil
}

func parseComments(r io.Reader) ([]models.Comment, error) {
	data, index, err := rows(r, "id", "review_id", "text", "author", "pub_date")
	if err != nil {
		return nil, err
	}

	out := make([]models.Comment, 0, len(data))
	for i, row := range data {
		id, err := parseID(row, index, "id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		reviewID, err := parseID(row, index, "review_id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		authorID, err := parseID(row, index, "author")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		pubDate, err := time.Parse(time.RFC3339, row[index["pub_date"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: column \"pub_date\": %w", i+1, err)
		}

		out = append(out, models.Comment{
			ID:       id,
			ReviewID: reviewID,
			AuthorID: authorID,
			Text:     row[index["text"]],
			PubDate:  pubDate,
		})
	}
	return out, nil
}

func parseGenreTitles(r io.Reader) ([]models.GenreTitle, error) {
	data, index, err := rows(r, "id", "title_id", "genre_id")
	if err != nil {
		return nil, err
	}

	out := make([]models.GenreTitle, 0, len(data))
	for i, row := range data {
		id, err := parseID(row, index, "id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		titleID, err := parseID(row, index, "title_id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		genreID, err := parseID(row, index, "genre_id")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, models.GenreTitle{ID: id, TitleID: titleID, GenreID: genreID})
	}
	return out, nil
}
