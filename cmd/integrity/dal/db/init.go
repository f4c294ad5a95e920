package db

import (
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormopentracing "gorm.io/plugin/opentracing"
)

var DB *gorm.DB

// Init init DB
func Init() error {
	var err error
	DB, err = gorm.Open(mysql.Open(utils.GetMysqlDsn()),
		&gorm.Config{
			PrepareStmt:            true,
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return err
	}
	if err = DB.Use(gormopentracing.New()); err != nil {
		return err
	}
	return Migrate(DB)
}

// Migrate 迁移级联记录表
func Migrate(db *gorm.DB) error {
	hlog.Info("Starting cascade_runs migration...")
	if err := db.AutoMigrate(&model.CascadeRun{}); err != nil {
		hlog.Errorf("Failed to migrate cascade_runs table: %v", err)
		return err
	}
	return nil
}
