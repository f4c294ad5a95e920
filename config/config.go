package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ConfigInfo config

func setDefaults() {
	viper.SetDefault("server.addr", "0.0.0.0:8888")
	viper.SetDefault("server.max_body_size", 512)
	viper.SetDefault("server.allow_origins", []string{"*"})
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "vidtube")
	viper.SetDefault("mongo.timeout", "10s")
	viper.SetDefault("mysql.charset", "utf8mb4")
	viper.SetDefault("blob.driver", "minio")
	viper.SetDefault("pagination.default_limit", 10)
	viper.SetDefault("pagination.max_limit", 100)
}

// 使用Viper的好处在于支持配置文件的热更新 同时viper对于大小写并不敏感 都是统一进行处理
func Init() {
	wd, _ := os.Getwd()
	logrus.Infof("Current working directory: %s", wd)

	setDefaults()
	viper.SetEnvPrefix("VIDTUBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config.yml")

	configPaths := []string{
		"../../config",
		"./config",
		"../config",
		".",
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
		absPath, _ := filepath.Abs(path)
		logrus.Debugf("Added config path: %s (absolute: %s)", path, absPath)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Warnf("config file not found, using defaults and env: %v", err)
		} else {
			logrus.Errorf("config error: %v", err)
			return
		}
	} else {
		logrus.Infof("Successfully read config file: %s", viper.ConfigFileUsed())
	}

	load()

	logrus.Infof("Config loaded - Mongo: %s/%s, MySQL: %s:%s@%s/%s, blob driver: %s",
		ConfigInfo.Mongo.URI, ConfigInfo.Mongo.Database,
		ConfigInfo.Mysql.Username, "***", ConfigInfo.Mysql.Addr, ConfigInfo.Mysql.Database,
		ConfigInfo.Blob.Driver)
}

// 手动从viper获取配置值，环境变量覆盖对 Unmarshal 不生效
func load() {
	ConfigInfo.Server.Addr = viper.GetString("server.addr")
	ConfigInfo.Server.PprofAddr = viper.GetString("server.pprof_addr")
	ConfigInfo.Server.AllowOrigins = viper.GetStringSlice("server.allow_origins")
	ConfigInfo.Server.MaxBodySize = viper.GetInt("server.max_body_size")

	ConfigInfo.Mongo.URI = viper.GetString("mongo.uri")
	ConfigInfo.Mongo.Database = viper.GetString("mongo.database")
	ConfigInfo.Mongo.Timeout = viper.GetString("mongo.timeout")

	ConfigInfo.Mysql.Addr = viper.GetString("mysql.addr")
	ConfigInfo.Mysql.Database = viper.GetString("mysql.database")
	ConfigInfo.Mysql.Username = viper.GetString("mysql.username")
	ConfigInfo.Mysql.Password = viper.GetString("mysql.password")
	ConfigInfo.Mysql.Charset = viper.GetString("mysql.charset")

	ConfigInfo.Blob.Driver = viper.GetString("blob.driver")
	ConfigInfo.Blob.Minio.Endpoint = viper.GetString("blob.minio.endpoint")
	ConfigInfo.Blob.Minio.AccessKeyID = viper.GetString("blob.minio.access_key_id")
	ConfigInfo.Blob.Minio.SecretAccessKey = viper.GetString("blob.minio.secret_access_key")
	ConfigInfo.Blob.Minio.UseSSL = viper.GetBool("blob.minio.use_ssl")
	ConfigInfo.Blob.Minio.PublicBase = viper.GetString("blob.minio.public_base")
	ConfigInfo.Blob.S3.Region = viper.GetString("blob.s3.region")
	ConfigInfo.Blob.S3.Bucket = viper.GetString("blob.s3.bucket")
	ConfigInfo.Blob.S3.Endpoint = viper.GetString("blob.s3.endpoint")
	ConfigInfo.Blob.S3.PublicBase = viper.GetString("blob.s3.public_base")

	ConfigInfo.RabbitMq.Addr = viper.GetString("rabbitmq.addr")
	ConfigInfo.RabbitMq.Username = viper.GetString("rabbitmq.username")
	ConfigInfo.RabbitMq.Password = viper.GetString("rabbitmq.password")
	ConfigInfo.RabbitMq.Enabled = viper.GetBool("rabbitmq.enabled")

	ConfigInfo.Pagination.DefaultLimit = viper.GetInt("pagination.default_limit")
	ConfigInfo.Pagination.MaxLimit = viper.GetInt("pagination.max_limit")
}
