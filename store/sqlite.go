// Package store 把批量渲染的结果记录到 SQLite。
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/sqlite"
)

// DB 包装 SQLite 连接。
type DB struct {
	*sql.DB
}

// RenderRecord 是一次渲染的记录，失败时 Error 非空、其余结果字段为零值。
type RenderRecord struct {
	ID            int64
	Timestamp     time.Time
	TemplateID    string
	Output        string
	Bytes         int
	Shift         int
	ContentBottom int
	SHA256        string
	Duration      time.Duration
	Error         string
}

// Open 打开数据库并按需建表。
func Open(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("打开渲染记录库失败: %w", err)
	}

	db := &DB{DB: sqlDB}
	if err := db.createTables(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("创建渲染记录表失败: %w", err)
	}
	return db, nil
}

func (db *DB) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS renders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		template_id TEXT NOT NULL,
		output TEXT NOT NULL DEFAULT '',
		bytes INTEGER NOT NULL DEFAULT 0,
		shift INTEGER NOT NULL DEFAULT 0,
		content_bottom INTEGER NOT NULL DEFAULT 0,
		sha256 TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_renders_template ON renders(template_id, timestamp DESC);
	`
	_, err := db.Exec(query)
	return err
}

// SaveRender 追加一条渲染记录并返回其 id。
func (db *DB) SaveRender(r RenderRecord) (int64, error) {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	res, err := db.Exec(`
	INSERT INTO renders (timestamp, template_id, output, bytes, shift, content_bottom, sha256, duration_ms, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.Timestamp.Unix(),
		r.TemplateID,
		r.Output,
		r.Bytes,
		r.Shift,
		r.ContentBottom,
		r.SHA256,
		r.Duration.Milliseconds(),
		r.Error,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent 返回最近的渲染记录，templateID 为空时不过滤。
func (db *DB) Recent(templateID string, limit int) ([]RenderRecord, error) {
	query := `
	SELECT id, timestamp, template_id, output, bytes, shift, content_bottom, sha256, duration_ms, error
	FROM renders
	WHERE (? = '' OR template_id = ?)
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`
	rows, err := db.Query(query, templateID, templateID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RenderRecord
	for rows.Next() {
		var (
			r      RenderRecord
			ts, ms int64
		)
		if err := rows.Scan(&r.ID, &ts, &r.TemplateID, &r.Output, &r.Bytes, &r.Shift, &r.ContentBottom, &r.SHA256, &ms, &r.Error); err != nil {
			return nil, err
		}
		r.Timestamp = time.Unix(ts, 0)
		r.Duration = time.Duration(ms) * time.Millisecond
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// LastSuccess 返回模板最近一次成功渲染的记录，没有时返回 nil。
func (db *DB) LastSuccess(templateID string) (*RenderRecord, error) {
	var (
		r      RenderRecord
		ts, ms int64
	)
	err := db.QueryRow(`
	SELECT id, timestamp, template_id, output, bytes, shift, content_bottom, sha256, duration_ms, error
	FROM renders
	WHERE template_id = ? AND error = ''
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`, templateID).Scan(&r.ID, &ts, &r.TemplateID, &r.Output, &r.Bytes, &r.Shift, &r.ContentBottom, &r.SHA256, &ms, &r.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Timestamp = time.Unix(ts, 0)
	r.Duration = time.Duration(ms) * time.Millisecond
	return &r, nil
}

// Close 关闭数据库连接。
func (db *DB) Close() error {
	return db.DB.Close()
}
