package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gachahub/internal/catalog"
)

// CatalogStore persists catalog items
type CatalogStore struct {
	db *sql.DB

	// now is injectable for tests
	now func() time.Time
}

// NewCatalogStore creates a catalog store on the given database
func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db, now: time.Now}
}

const catalogColumns = `id, product_name, manufacturer, image_url, release_date, price,
	description, lineup_info, source_url, is_new, created_at, updated_at`

// Insert stores a new catalog item and assigns its identity
func (s *CatalogStore) Insert(item *catalog.Item) error {
	now := s.now()
	item.CreatedAt = now
	item.UpdatedAt = now

	res, err := s.db.Exec(`INSERT INTO products
		(product_name, manufacturer, image_url, release_date, price, description, lineup_info, source_url, is_new, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ProductName, item.Manufacturer,
		nullableString(item.ImageURL), nullableTime(item.ReleaseDate, dateFormat), nullableInt(item.Price),
		nullableString(item.Description), nullableString(item.LineupInfo), nullableString(item.SourceURL),
		item.IsNew, now.Format(timeFormat), now.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	item.ID, err = res.LastInsertId()
	return err
}

// Update rewrites all mutable fields of an existing item by primary key
func (s *CatalogStore) Update(item *catalog.Item) error {
	item.UpdatedAt = s.now()

	_, err := s.db.Exec(`UPDATE products SET
		product_name = ?, manufacturer = ?, image_url = ?, release_date = ?, price = ?,
		description = ?, lineup_info = ?, source_url = ?, is_new = ?, updated_at = ?
		WHERE id = ?`,
		item.ProductName, item.Manufacturer,
		nullableString(item.ImageURL), nullableTime(item.ReleaseDate, dateFormat), nullableInt(item.Price),
		nullableString(item.Description), nullableString(item.LineupInfo), nullableString(item.SourceURL),
		item.IsNew, item.UpdatedAt.Format(timeFormat), item.ID)
	if err != nil {
		return fmt.Errorf("update product %d: %w", item.ID, err)
	}
	return nil
}

// FindByID returns the item with the given id, or nil when absent
func (s *CatalogStore) FindByID(id int64) (*catalog.Item, error) {
	row := s.db.QueryRow(`SELECT `+catalogColumns+` FROM products WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByNameContains returns items whose name contains the given text,
// most recently updated first. This is the dedup candidate query; the
// substring match is the documented (if imprecise) matching policy.
func (s *CatalogStore) FindByNameContains(text string) ([]catalog.Item, error) {
	rows, err := s.db.Query(`SELECT `+catalogColumns+` FROM products
		WHERE product_name LIKE ? ESCAPE '\'
		ORDER BY updated_at DESC, id DESC`,
		"%"+escapeLike(text)+"%")
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// FindNewTrue returns all items still flagged as new
func (s *CatalogStore) FindNewTrue() ([]catalog.Item, error) {
	rows, err := s.db.Query(`SELECT ` + catalogColumns + ` FROM products
		WHERE is_new = 1 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// SetIsNew updates only the new flag of one item
func (s *CatalogStore) SetIsNew(id int64, isNew bool) error {
	_, err := s.db.Exec(`UPDATE products SET is_new = ?, updated_at = ? WHERE id = ?`,
		isNew, s.now().Format(timeFormat), id)
	return err
}

// ListFilter narrows and pages a catalog listing
type ListFilter struct {
	Manufacturer string
	Keyword      string
	Limit        int
	Offset       int
}

// List returns a filtered catalog page, newest release dates first
func (s *CatalogStore) List(f ListFilter) ([]catalog.Item, error) {
	var conds []string
	var args []any

	if f.Manufacturer != "" {
		conds = append(conds, "manufacturer = ?")
		args = append(args, f.Manufacturer)
	}
	if f.Keyword != "" {
		conds = append(conds, `(product_name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		kw := "%" + escapeLike(f.Keyword) + "%"
		args = append(args, kw, kw)
	}

	query := `SELECT ` + catalogColumns + ` FROM products`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY release_date IS NULL, release_date DESC, id DESC LIMIT ? OFFSET ?`

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (catalog.Item, error) {
	var item catalog.Item
	var imageURL, releaseDate, description, lineupInfo, sourceURL sql.NullString
	var price sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(&item.ID, &item.ProductName, &item.Manufacturer,
		&imageURL, &releaseDate, &price, &description, &lineupInfo, &sourceURL,
		&item.IsNew, &createdAt, &updatedAt)
	if err != nil {
		return catalog.Item{}, err
	}

	item.ImageURL = imageURL.String
	item.ReleaseDate = parseNullableTime(releaseDate, dateFormat)
	item.Price = intPtr(price)
	item.Description = description.String
	item.LineupInfo = lineupInfo.String
	item.SourceURL = sourceURL.String
	item.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	item.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return item, nil
}

func scanItems(rows *sql.Rows) ([]catalog.Item, error) {
	defer rows.Close()
	var items []catalog.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// escapeLike escapes LIKE wildcards in user-derived text
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
