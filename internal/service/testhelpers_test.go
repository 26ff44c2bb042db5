package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:service-%d-%d?mode=memory&cache=shared", time.Now().UnixNano(), atomic.AddInt64(&testDBCounter, 1))
	gdb, err := db.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func newTestCache() *cache.Cache {
	return cache.New(time.Minute)
}

func mustCreateBlock(t *testing.T, svc *BlockService, name string) *db.Block {
	t.Helper()
	block, err := svc.Create(BlockInput{
		Name:    name,
		Type:    BlockTypeRichText,
		Content: db.LocalizedContent{"en": {"body": name}},
	})
	if err != nil {
		t.Fatalf("failed to create block %s: %v", name, err)
	}
	return block
}
