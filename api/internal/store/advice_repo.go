package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// AdviceRepo — 정규화 완료 결과의 Postgres 캐시.
// 같은 (요청 해시, 엔진, 모델, 종류) 조합이면 모델을 다시 부르지 않는다.
type AdviceRepo struct{ DB *sql.DB }

func NewAdviceRepo(db *sql.DB) *AdviceRepo { return &AdviceRepo{DB: db} }

const (
	KindSingle = "single"
	KindMulti  = "multi"
)

// EnsureSchema는 캐시 테이블을 만든다 (없을 때만). 별도 마이그레이션
// 없이 봇 기동 시 한 번 부른다.
func (r *AdviceRepo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists advice_cache (
	request_hash text not null,
	engine       text not null,
	model        text not null,
	kind         text not null,
	result_json  jsonb not null,
	created_at   timestamptz not null default now(),
	primary key (request_hash, engine, model, kind)
)`
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

// Find는 (requestHash, engine, model, kind) 캐시를 돌려준다.
// maxAge > 0 이고 레코드가 더 오래됐으면 sql.ErrNoRows (다시 생성하도록).
// 결과는 원본 JSON 그대로 돌려준다; 호출자가 종류에 맞는 타입으로 푼다.
func (r *AdviceRepo) Find(ctx context.Context, requestHash, engine, model, kind string, maxAge time.Duration) (json.RawMessage, error) {
	const q = `select result_json, created_at
	           from advice_cache
	           where request_hash=$1 and engine=$2 and model=$3 and kind=$4`
	var (
		js []byte
		ts time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, requestHash, engine, model, kind).Scan(&js, &ts); err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return nil, sql.ErrNoRows
	}
	if !json.Valid(js) {
		// 캐시가 깨졌으면 유효한 레코드가 없는 것으로 친다
		return nil, sql.ErrNoRows
	}
	return json.RawMessage(js), nil
}

// Upsert는 결과를 저장/갱신한다.
// PK: (request_hash, engine, model, kind).
func (r *AdviceRepo) Upsert(ctx context.Context, requestHash, engine, model, kind string, result any) error {
	js, err := json.Marshal(result)
	if err != nil {
		return err
	}
	const q = `
insert into advice_cache(request_hash, engine, model, kind, result_json)
values ($1,$2,$3,$4,$5)
on conflict (request_hash, engine, model, kind)
do update set result_json=excluded.result_json, created_at=now()`
	_, err = r.DB.ExecContext(ctx, q, requestHash, engine, model, kind, js)
	return err
}
