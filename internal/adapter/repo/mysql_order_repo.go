package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
	"github.com/go-sql-driver/mysql"
)

const mysqlDupEntry = 1062

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

const orderColumns = `id,numero_encomenda,nome,email,telefone,morada,codigo_postal,localidade,nif,
itens_json,subtotal,portes,iva,total,estado,estado_pagamento,metodo_pagamento,entidade,referencia,
request_id,dados_pagamento,codigo_rastreio,notas,criada_em,atualizada_em,paga_em,enviada_em,entregue_em,versao`

func (r *MySQLOrderRepo) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO encomendas (`+orderColumns+`)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.NumeroEncomenda, o.Nome, o.Email, o.Telefone, o.Morada, o.CodigoPostal, o.Localidade, o.NIF,
		nullBytes(o.Itens), o.Subtotal, o.Portes, o.IVA, o.Total, o.Estado, o.EstadoPagamento,
		o.MetodoPagamento, o.Entidade, o.Referencia, o.RequestID, nullBytes(o.DadosPagamento),
		o.CodigoRastreio, o.Notas, o.CriadaEm, o.AtualizadaEm, o.PagaEm, o.EnviadaEm, o.EntregueEm, o.Versao)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDupEntry {
		return usecase.ErrNumeroTaken
	}
	return err
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getWhere(ctx, "id=?", id)
}

func (r *MySQLOrderRepo) GetByNumero(ctx context.Context, numero string) (*entity.Order, error) {
	return r.getWhere(ctx, "numero_encomenda=?", numero)
}

func (r *MySQLOrderRepo) GetByReference(ctx context.Context, ref string) (*entity.Order, error) {
	return r.getWhere(ctx, "referencia=? OR request_id=?", ref, ref)
}

func (r *MySQLOrderRepo) getWhere(ctx context.Context, where string, args ...any) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM encomendas WHERE `+where, args...)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	return o, err
}

func (r *MySQLOrderRepo) List(ctx context.Context) ([]*entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM encomendas ORDER BY criada_em DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *MySQLOrderRepo) Update(ctx context.Context, o *entity.Order, expectedVersion int64) (bool, error) {
	q := `
UPDATE encomendas SET numero_encomenda=?,nome=?,email=?,telefone=?,morada=?,codigo_postal=?,localidade=?,nif=?,
itens_json=?,subtotal=?,portes=?,iva=?,total=?,estado=?,estado_pagamento=?,metodo_pagamento=?,entidade=?,
referencia=?,request_id=?,dados_pagamento=?,codigo_rastreio=?,notas=?,atualizada_em=?,paga_em=?,enviada_em=?,
entregue_em=?,versao=?
WHERE id=?`
	args := []any{
		o.NumeroEncomenda, o.Nome, o.Email, o.Telefone, o.Morada, o.CodigoPostal, o.Localidade, o.NIF,
		nullBytes(o.Itens), o.Subtotal, o.Portes, o.IVA, o.Total, o.Estado, o.EstadoPagamento,
		o.MetodoPagamento, o.Entidade, o.Referencia, o.RequestID, nullBytes(o.DadosPagamento),
		o.CodigoRastreio, o.Notas, o.AtualizadaEm, o.PagaEm, o.EnviadaEm, o.EntregueEm, o.Versao, o.ID,
	}
	if expectedVersion >= 0 {
		q += ` AND versao=?`
		args = append(args, expectedVersion)
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// rows == 0 -> nothing matched (either not found or version mismatch)
	return rows > 0, nil
}

func (r *MySQLOrderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM encomendas WHERE id=?`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	var itens, dados []byte
	var paga, enviada, entregue sql.NullTime
	err := row.Scan(&o.ID, &o.NumeroEncomenda, &o.Nome, &o.Email, &o.Telefone, &o.Morada, &o.CodigoPostal,
		&o.Localidade, &o.NIF, &itens, &o.Subtotal, &o.Portes, &o.IVA, &o.Total, &o.Estado, &o.EstadoPagamento,
		&o.MetodoPagamento, &o.Entidade, &o.Referencia, &o.RequestID, &dados, &o.CodigoRastreio, &o.Notas,
		&o.CriadaEm, &o.AtualizadaEm, &paga, &enviada, &entregue, &o.Versao)
	if err != nil {
		return nil, err
	}
	o.Itens = itens
	o.DadosPagamento = dados
	if paga.Valid {
		o.PagaEm = &paga.Time
	}
	if enviada.Valid {
		o.EnviadaEm = &enviada.Time
	}
	if entregue.Valid {
		o.EntregueEm = &entregue.Time
	}
	return &o, nil
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
