package config

type config struct {
	Server     server     `yaml:"server" mapstructure:"server"`
	Mongo      mongo      `yaml:"mongo" mapstructure:"mongo"`
	Mysql      mysql      `yaml:"mysql" mapstructure:"mysql"`
	Blob       blob       `yaml:"blob" mapstructure:"blob"`
	RabbitMq   rabbitmq   `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	Pagination pagination `yaml:"pagination" mapstructure:"pagination"`
}

type server struct {
	Addr         string   `yaml:"addr"`
	PprofAddr    string   `yaml:"pprof_addr" mapstructure:"pprof_addr"`
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins"`
	// MaxBodySize 单位 MB
	MaxBodySize int `yaml:"max_body_size" mapstructure:"max_body_size"`
}

type mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	// Timeout 形如 "10s"
	Timeout string `yaml:"timeout"`
}

type mysql struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Charset  string `yaml:"charset"`
}

type blob struct {
	// Driver 取值 minio / s3 / memory
	Driver string `yaml:"driver"`
	Minio  minio  `yaml:"minio"`
	S3     s3     `yaml:"s3"`
}

type minio struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
	PublicBase      string `yaml:"public_base" mapstructure:"public_base"`
}

type s3 struct {
	Region     string `yaml:"region"`
	Bucket     string `yaml:"bucket"`
	Endpoint   string `yaml:"endpoint"`
	PublicBase string `yaml:"public_base" mapstructure:"public_base"`
}

type rabbitmq struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Enabled  bool   `yaml:"enabled"`
}

type pagination struct {
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"`
	MaxLimit     int `yaml:"max_limit" mapstructure:"max_limit"`
}
