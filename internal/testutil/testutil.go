// Package testutil 为各包测试提供内存数据库与 Redis
package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	radix "github.com/mediocregopher/radix/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/carmarket/internal/repository/mysql"
)

// NewDB 打开一个迁移完成的内存 SQLite。只保留一个连接，
// 内存库随连接存在，同时也让并发测试串行落库。
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewRedis 启动 miniredis 并返回连接到它的 radix 连接池
func NewRedis(t testing.TB) (radix.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	pool, err := radix.NewPool("tcp", mr.Addr(), 4)
	if err != nil {
		t.Fatalf("radix pool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return pool, mr
}
