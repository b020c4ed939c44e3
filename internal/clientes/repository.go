package clientes

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JaimeStill/clientes/pkg/pagination"
	"github.com/JaimeStill/clientes/pkg/query"
	"github.com/JaimeStill/clientes/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "clientes", "c").
	Project("id", "ID").
	Project("clave_cliente", "Key").
	Project("nombre", "Name").
	Project("celular", "Phone").
	Project("email", "Email").
	Project("icon_code", "IconCode").
	Project("icon_file_id", "IconFileID").
	Project("icon_url", "IconURL").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = []query.SortField{
	{Field: "CreatedAt"},
	{Field: "Key"},
}

type postgres struct {
	db *sql.DB
}

// NewRepository creates a PostgreSQL-backed Repository.
func NewRepository(db *sql.DB) Repository {
	return &postgres{db: db}
}

func (p *postgres) Create(ctx context.Context, c Cliente) (Cliente, error) {
	q := fmt.Sprintf(`
		INSERT INTO public.clientes AS c (id, clave_cliente, nombre, celular, email, icon_code, icon_file_id, icon_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s`, projection.Columns())

	code, fileID, url := iconColumns(c.Icon)
	args := []any{c.ID, c.Key, c.Name, c.Phone, c.Email, code, fileID, url, c.CreatedAt, c.UpdatedAt}

	created, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (Cliente, error) {
		return repository.QueryOne(ctx, tx, q, args, scanCliente)
	})
	if err != nil {
		return Cliente{}, repository.MapError(err, ErrNotFound, ErrAlreadyExists)
	}
	return created, nil
}

func (p *postgres) FindByKey(ctx context.Context, key string) (Cliente, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Key", key)

	c, err := repository.QueryOne(ctx, p.db, q, args, scanCliente)
	if err != nil {
		return Cliente{}, repository.MapError(err, ErrNotFound, ErrAlreadyExists)
	}
	return c, nil
}

func (p *postgres) DeleteByKey(ctx context.Context, key string) (Cliente, error) {
	q := fmt.Sprintf(
		"DELETE FROM %s WHERE %s = $1 RETURNING %s",
		projection.Table(),
		projection.Column("Key"),
		projection.Columns(),
	)

	c, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (Cliente, error) {
		return repository.QueryOne(ctx, tx, q, []any{key}, scanCliente)
	})
	if err != nil {
		return Cliente{}, repository.MapError(err, ErrNotFound, ErrAlreadyExists)
	}
	return c, nil
}

func (p *postgres) Update(ctx context.Context, key string, ch Changes) (Cliente, error) {
	u := query.NewUpdate(projection)
	query.SetPresent(u, "Name", ch.Name)
	query.SetPresent(u, "Phone", ch.Phone)
	query.SetPresent(u, "Email", ch.Email)
	if ch.Icon != nil {
		code, fileID, url := iconColumns(*ch.Icon)
		u.Set("IconCode", code).Set("IconFileID", fileID).Set("IconURL", url)
	}
	u.Set("UpdatedAt", ch.UpdatedAt).Where("Key", key)

	q, args := u.Build()

	c, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (Cliente, error) {
		return repository.QueryOne(ctx, tx, q, args, scanCliente)
	})
	if err != nil {
		return Cliente{}, repository.MapError(err, ErrNotFound, ErrAlreadyExists)
	}
	return c, nil
}

func (p *postgres) Page(ctx context.Context, page, size int) ([]Cliente, int, error) {
	qb := query.NewBuilder(projection, defaultSort...)
	countSQL, countArgs := qb.BuildCount()
	pageSQL, pageArgs := qb.BuildPage(page, size)

	type pageData struct {
		items []Cliente
		total int
	}

	data, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (pageData, error) {
		total, err := repository.Count(ctx, tx, countSQL, countArgs)
		if err != nil {
			return pageData{}, fmt.Errorf("count clientes: %w", err)
		}
		items, err := repository.QueryMany(ctx, tx, pageSQL, pageArgs, scanCliente)
		if err != nil {
			return pageData{}, fmt.Errorf("query clientes: %w", err)
		}
		return pageData{items: items, total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return data.items, pagination.CountOnPage(data.total, page, size), nil
}

func (p *postgres) TotalPages(ctx context.Context, size int) (int, error) {
	q, args := query.NewBuilder(projection).BuildCount()

	total, err := repository.Count(ctx, p.db, q, args)
	if err != nil {
		return 0, fmt.Errorf("count clientes: %w", err)
	}
	return pagination.TotalPages(total, size), nil
}

func iconColumns(icon Icon) (code, fileID, url any) {
	switch icon.Kind() {
	case IconCode:
		return int16(icon.Code()), nil, nil
	case IconFile:
		return nil, icon.File().FileID, icon.File().URL
	default:
		return nil, nil, nil
	}
}

func scanCliente(s repository.Scanner) (Cliente, error) {
	var (
		c      Cliente
		code   sql.NullInt16
		fileID sql.NullString
		url    sql.NullString
	)

	err := s.Scan(
		&c.ID,
		&c.Key,
		&c.Name,
		&c.Phone,
		&c.Email,
		&code,
		&fileID,
		&url,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return Cliente{}, err
	}

	switch {
	case fileID.Valid:
		c.Icon = FileIcon(FileRef{FileID: fileID.String, URL: url.String})
	case code.Valid:
		icon, err := CodeIcon(int(code.Int16))
		if err != nil {
			return Cliente{}, fmt.Errorf("stored icon for %s: %w", c.Key, err)
		}
		c.Icon = icon
	default:
		return Cliente{}, fmt.Errorf("stored icon for %s: no shape", c.Key)
	}

	return c, nil
}
