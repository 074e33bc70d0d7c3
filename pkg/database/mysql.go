package database

import (
	"drafting-wizard-go/internal/config"
	"drafting-wizard-go/internal/model"
	"drafting-wizard-go/pkg/log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

// tagNameBinaryDDL 把 tags.name 改为二进制排序规则，唯一索引因此区分大小写。
const tagNameBinaryDDL = "ALTER TABLE tags MODIFY name varchar(100) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL"

// InitMySQL 初始化 MySQL 数据库连接
func InitMySQL(cfg config.MySQLConfig) {
	var err error
	DB, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		// 将唯一约束冲突翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	// 配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.AutoMigrate {
		if err := DB.AutoMigrate(model.AllModels()...); err != nil {
			log.Fatal("failed to migrate database", err)
		}
		if err := DB.Exec(tagNameBinaryDDL).Error; err != nil {
			log.Fatal("failed to set tags.name collation", err)
		}
		log.Info("MySQL schema migrated")
	}

	log.Info("MySQL database connected successfully")
}
