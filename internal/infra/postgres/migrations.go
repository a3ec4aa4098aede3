package postgres

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations は golang-migrate に渡すマイグレーションファイル群を返す。
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		// embed のパスはコンパイル時に固定されている
		panic(err)
	}
	return sub
}
