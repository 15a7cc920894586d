package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
)

var _ repository.SweetRepository = (*SweetRepo)(nil)

const sweetColumns = `id, name, category, price, quantity, created_at, updated_at`

// SweetRepo implementación del puerto SweetRepository sobre PostgreSQL.
// Compras y reposiciones son un único UPDATE condicional: la fila queda bloqueada
// mientras se comprueba y se modifica la cantidad.
type SweetRepo struct {
	q       Querier
	timeout time.Duration
}

// NewSweetRepository construye el adaptador. timeout limita cada operación (0 = sin límite).
func NewSweetRepository(q Querier, timeout time.Duration) *SweetRepo {
	return &SweetRepo{q: q, timeout: timeout}
}

func scanSweet(row pgx.Row) (*entity.Sweet, error) {
	var s entity.Sweet
	if err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un nuevo dulce.
func (r *SweetRepo) Create(ctx context.Context, s *entity.Sweet) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `INSERT INTO sweets (` + sweetColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Category, s.Price, s.Quantity, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicateName
		case isCheckViolation(err):
			return domain.ErrInvalidInput
		}
		return storeErr("insert sweet", err)
	}
	return nil
}

// GetByID obtiene un dulce por ID; (nil, nil) si no existe.
func (r *SweetRepo) GetByID(ctx context.Context, id string) (*entity.Sweet, error) {
	if !validID(id) {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	s, err := scanSweet(r.q.QueryRow(ctx, `SELECT `+sweetColumns+` FROM sweets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get sweet", err)
	}
	return s, nil
}

// List devuelve todos los dulces ordenados por nombre.
func (r *SweetRepo) List(ctx context.Context) ([]*entity.Sweet, error) {
	return r.Search(ctx, repository.SweetFilter{})
}

// Search aplica los filtros presentes con AND. El nombre es subcadena sin distinguir mayúsculas.
func (r *SweetRepo) Search(ctx context.Context, f repository.SweetFilter) ([]*entity.Sweet, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Name != nil {
		add(`name ILIKE '%%' || $%d || '%%' ESCAPE '\'`, escapeLike(*f.Name))
	}
	if f.Category != nil {
		add(`category = $%d`, *f.Category)
	}
	if f.MinPrice != nil {
		add(`price >= $%d`, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add(`price <= $%d`, *f.MaxPrice)
	}
	query := `SELECT ` + sweetColumns + ` FROM sweets`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY name`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("search sweets", err)
	}
	defer rows.Close()
	out := make([]*entity.Sweet, 0)
	for rows.Next() {
		s, err := scanSweet(rows)
		if err != nil {
			return nil, storeErr("scan sweet", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("search sweets", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Update aplica los campos presentes del patch en un solo UPDATE; los ausentes (NULL) no cambian.
func (r *SweetRepo) Update(ctx context.Context, id string, p repository.SweetPatch) (*entity.Sweet, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		UPDATE sweets SET
			name = COALESCE($2, name),
			category = COALESCE($3, category),
			price = COALESCE($4, price),
			quantity = COALESCE($5, quantity),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + sweetColumns
	s, err := scanSweet(r.q.QueryRow(ctx, query, id, p.Name, p.Category, p.Price, p.Quantity))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domain.ErrNotFound
		case isUniqueViolation(err):
			return nil, domain.ErrDuplicateName
		case isCheckViolation(err):
			return nil, domain.ErrInvalidInput
		}
		return nil, storeErr("update sweet", err)
	}
	return s, nil
}

// Delete elimina el dulce; ErrNotFound si no existía.
func (r *SweetRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	tag, err := r.q.Exec(ctx, `DELETE FROM sweets WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete sweet", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementIfAvailable resta n sólo si quantity >= n. Si el UPDATE no toca filas,
// se consulta la existencia para distinguir ErrNotFound de ErrOutOfStock.
func (r *SweetRepo) DecrementIfAvailable(ctx context.Context, id string, n int64) (*entity.Sweet, error) {
	if n <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		UPDATE sweets SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING ` + sweetColumns
	s, err := scanSweet(r.q.QueryRow(ctx, query, id, n))
	if err == nil {
		return s, nil
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case isCheckViolation(err):
		return nil, domain.ErrOutOfStock
	default:
		return nil, storeErr("decrement stock", err)
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM sweets WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, storeErr("probe sweet", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrOutOfStock
}

// Increment suma n (> 0) a la cantidad.
func (r *SweetRepo) Increment(ctx context.Context, id string, n int64) (*entity.Sweet, error) {
	if n <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	query := `
		UPDATE sweets SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + sweetColumns
	s, err := scanSweet(r.q.QueryRow(ctx, query, id, n))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domain.ErrNotFound
		case pgCode(err) == codeOutOfRange:
			return nil, domain.ErrInvalidInput
		}
		return nil, storeErr("increment stock", err)
	}
	return s, nil
}
