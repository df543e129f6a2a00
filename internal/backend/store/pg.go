package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/adminconsole/internal/post"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

// PG store sobre PostgreSQL.
type PG struct{ pool *pgxpool.Pool }

// NewPG abre el pool y aplica las migraciones embebidas.
func NewPG(ctx context.Context, dsn string) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if pcfg.MaxConns == 0 || pcfg.MaxConns > 8 {
		pcfg.MaxConns = 8
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PG{pool: pool}, nil
}

func (s *PG) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool (idempotente).
func (s *PG) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// ApplySeed inserta el seed si la tabla de usuarios está vacía.
func (s *PG) ApplySeed(ctx context.Context, seed *Seed) error {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM console_user`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, r := range seed.Roles {
		if _, err := tx.Exec(ctx, `INSERT INTO console_role (id, name, code, permissions) VALUES ($1,$2,$3,$4)`,
			r.ID, r.Name, r.Code, r.Permissions); err != nil {
			return fmt.Errorf("seed role %s: %w", r.Code, err)
		}
	}
	for _, m := range seed.Menus {
		if _, err := tx.Exec(ctx, `INSERT INTO console_menu (id, parent_id, name, path, component, icon, sort, visible) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			m.ID, m.ParentID, m.Name, m.Path, m.Component, m.Icon, m.Sort, m.Visible); err != nil {
			return fmt.Errorf("seed menu %d: %w", m.ID, err)
		}
	}
	for _, r := range seed.Roles {
		for _, mid := range r.MenuIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO console_role_menu (role_id, menu_id) VALUES ($1,$2)`, r.ID, mid); err != nil {
				return err
			}
		}
	}
	for _, u := range seed.Users {
		if _, err := tx.Exec(ctx, `INSERT INTO console_user (id, username, nickname, real_name, email, password_hash, status, home_path) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Username, u.Nickname, u.RealName, u.Email, u.PasswordHash, u.Status, u.HomePath); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		for _, rid := range u.RoleIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO console_user_role (user_id, role_id) VALUES ($1,$2)`, u.ID, rid); err != nil {
				return err
			}
		}
	}
	for _, d := range seed.Dict {
		if _, err := tx.Exec(ctx, `INSERT INTO console_dict_data (dict_type, label, value, color_type, css_class, sort) VALUES ($1,$2,$3,$4,$5,$6)`,
			d.DictType, d.Label, d.Value, d.ColorType, d.CSSClass, d.Sort); err != nil {
			return err
		}
	}
	for _, p := range seed.Posts {
		if _, err := tx.Exec(ctx, `INSERT INTO console_post (id, name, code, sort, status, remark, create_time) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, p.Name, p.Code, p.Sort, p.Status, p.Remark, time.UnixMilli(p.CreateTime).UTC()); err != nil {
			return err
		}
	}
	// las secuencias siguen después de los ids sembrados
	for _, tbl := range []string{"console_user", "console_post"} {
		if _, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('`+tbl+`', 'id'), COALESCE((SELECT MAX(id) FROM `+tbl+`), 1))`); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ====================== USERS ======================

const userColumns = `id, username, nickname, real_name, email, password_hash, status, home_path`

func (s *PG) scanUser(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM console_user WHERE `+where+` LIMIT 1`, arg).
		Scan(&u.ID, &u.Username, &u.Nickname, &u.RealName, &u.Email, &u.PasswordHash, &u.Status, &u.HomePath)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT role_id FROM console_user_role WHERE user_id = $1 ORDER BY role_id`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rid int64
		if err := rows.Scan(&rid); err != nil {
			return nil, err
		}
		u.RoleIDs = append(u.RoleIDs, rid)
	}
	return &u, rows.Err()
}

func (s *PG) UserByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanUser(ctx, `LOWER(username) = LOWER($1)`, username)
}

func (s *PG) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.scanUser(ctx, `id = $1`, id)
}

func (s *PG) Grants(ctx context.Context, userID int64) (*Grants, error) {
	if _, err := s.UserByID(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.name, r.code, r.permissions
		FROM console_role r JOIN console_user_role ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 ORDER BY r.id`, userID)
	if err != nil {
		return nil, err
	}
	var roles []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Code, &r.Permissions); err != nil {
			rows.Close()
			return nil, err
		}
		roles = append(roles, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	g := &Grants{Permissions: permissionsOf(roles), Roles: []user.Role{}}
	for _, r := range roles {
		g.Roles = append(g.Roles, user.Role{ID: r.ID, Name: r.Name, Code: r.Code})
	}

	mrows, err := s.pool.Query(ctx, `
		SELECT DISTINCT m.id, m.parent_id, m.name, m.path, m.component, m.icon, m.sort, m.visible
		FROM console_menu m
		JOIN console_role_menu rm ON rm.menu_id = m.id
		JOIN console_user_role ur ON ur.role_id = rm.role_id
		WHERE ur.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	var flat []user.MenuNode
	for mrows.Next() {
		var m user.MenuNode
		if err := mrows.Scan(&m.ID, &m.ParentID, &m.Name, &m.Path, &m.Component, &m.Icon, &m.Sort, &m.Visible); err != nil {
			return nil, err
		}
		flat = append(flat, m)
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}
	g.Menus = BuildMenuTree(flat)
	return g, nil
}

// ====================== DICT ======================

func (s *PG) DictData(ctx context.Context) ([]DictData, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, dict_type, label, value, color_type, css_class, sort
		FROM console_dict_data ORDER BY dict_type, sort, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DictData
	for rows.Next() {
		var d DictData
		if err := rows.Scan(&d.ID, &d.DictType, &d.Label, &d.Value, &d.ColorType, &d.CSSClass, &d.Sort); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ====================== POSTS ======================

const postColumns = `id, name, code, sort, status, remark, create_time`

func scanPost(row pgx.Row) (*post.Post, error) {
	var p post.Post
	var created time.Time
	if err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Sort, &p.Status, &p.Remark, &created); err != nil {
		return nil, err
	}
	p.CreateTime = created.UnixMilli()
	return &p, nil
}

func (s *PG) ListPosts(ctx context.Context, q post.PageParam) (*post.Page, error) {
	q = q.Normalize()
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if q.Name != "" {
		add(`name ILIKE '%' || ? || '%'`, q.Name)
	}
	if q.Code != "" {
		add(`code ILIKE '%' || ? || '%'`, q.Code)
	}
	if q.Status != nil {
		add(`status = ?`, *q.Status)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	page := &post.Page{List: []post.Post{}}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM console_post`+where, args...).Scan(&page.Total); err != nil {
		return nil, err
	}

	args = append(args, q.PageSize, offset(q))
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM console_post%s ORDER BY sort, id LIMIT $%d OFFSET $%d`,
		postColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		page.List = append(page.List, *p)
	}
	return page, rows.Err()
}

func (s *PG) GetPost(ctx context.Context, id int64) (*post.Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM console_post WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *PG) CreatePost(ctx context.Context, p post.Post) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `INSERT INTO console_post (name, code, sort, status, remark) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		p.Name, p.Code, p.Sort, p.Status, p.Remark).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrConflict
	}
	return id, err
}

func (s *PG) UpdatePost(ctx context.Context, p post.Post) error {
	tag, err := s.pool.Exec(ctx, `UPDATE console_post SET name=$2, code=$3, sort=$4, status=$5, remark=$6 WHERE id=$1`,
		p.ID, p.Name, p.Code, p.Sort, p.Status, p.Remark)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PG) DeletePost(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM console_post WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ====================== REFRESH TOKENS ======================

func (s *PG) SaveRefreshToken(ctx context.Context, hash string, userID int64, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO console_refresh_token (token_hash, user_id, expires_at) VALUES ($1,$2,$3)`,
		hash, userID, expiresAt)
	return err
}

func (s *PG) ConsumeRefreshToken(ctx context.Context, hash string, now time.Time) (int64, error) {
	var userID int64
	err := s.pool.QueryRow(ctx, `
		UPDATE console_refresh_token SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2
		RETURNING user_id`, hash, now).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return userID, err
}

func (s *PG) RevokeUserTokens(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE console_refresh_token SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
