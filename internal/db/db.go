package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Page{},
		&Block{},
		&PageBlock{},
		&Header{},
		&Footer{},
		&NavigationLink{},
		&GlobalSettings{},
		&MediaItem{},
		&Gallery{},
		&GalleryImage{},
	}
}

// Open 打开 sqlite 数据库。TranslateError 让唯一约束冲突以 gorm.ErrDuplicatedKey 返回。
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
}

// Migrate creates or updates tables for all models.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 blockpress.db。
func Init(databasePath string) (*gorm.DB, error) {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "blockpress.db"
	}

	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	gdb, err := Open(path, logger.Warn)
	if err != nil {
		return nil, err
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
