// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Category      CategoryConfig      `mapstructure:"category"`
	Tag           TagConfig           `mapstructure:"tag"`
	Draft         DraftConfig         `mapstructure:"draft"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint             string `mapstructure:"endpoint"`
	AccessKeyID          string `mapstructure:"access_key_id"`
	SecretAccessKey      string `mapstructure:"secret_access_key"`
	UseSSL               bool   `mapstructure:"use_ssl"`
	BucketName           string `mapstructure:"bucket_name"`
	PresignExpiryMinutes int    `mapstructure:"presign_expiry_minutes"`
}

// CORSConfig 存储跨域访问的配置。
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CategoryConfig 存储模板（分类）相关的配置。
type CategoryConfig struct {
	// ProtectedIDs 是内置分类的 categoryId，可以编辑但永远不能删除。
	ProtectedIDs []string       `mapstructure:"protected_ids"`
	Seeds        []CategorySeed `mapstructure:"seeds"`
}

// CategorySeed 描述一个启动时写入的内置分类。
type CategorySeed struct {
	CategoryID  string   `mapstructure:"category_id"`
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	OrderIndex  int      `mapstructure:"order_index"`
	Questions   []string `mapstructure:"questions"`
}

// TagConfig 存储标签相关的配置。
type TagConfig struct {
	DefaultColor string `mapstructure:"default_color"`
}

// DraftConfig 控制 Markdown 文档的生成和归档。
type DraftConfig struct {
	DefaultTitle    string `mapstructure:"default_title"`
	DateLayout      string `mapstructure:"date_layout"`
	DateLabel       string `mapstructure:"date_label"`
	SummaryHeading  string `mapstructure:"summary_heading"`
	SummaryTemplate string `mapstructure:"summary_template"`
	ArchiveEnabled  bool   `mapstructure:"archive_enabled"`
}

// DefaultProtectedCategoryIDs 是未配置时使用的内置分类集合。
var DefaultProtectedCategoryIDs = []string{"academic", "technical", "custom"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("kafka.topic", "draft-archive")
	v.SetDefault("kafka.group_id", "drafting-wizard-archiver")
	v.SetDefault("elasticsearch.index_name", "drafts")
	v.SetDefault("minio.bucket_name", "drafts")
	v.SetDefault("minio.presign_expiry_minutes", 60)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("category.protected_ids", DefaultProtectedCategoryIDs)
	v.SetDefault("tag.default_color", "#8B8680")
	v.SetDefault("draft.default_title", "分析結果")
	v.SetDefault("draft.date_layout", "2006年01月02日")
	v.SetDefault("draft.date_label", "作成日：")
	v.SetDefault("draft.summary_heading", "まとめ")
	v.SetDefault("draft.summary_template", "この分析では、トピックの%dつの重要な側面を網羅し、理解とさらなる探求のための構造化されたフレームワークを提供しています。")
}

// Load 从指定路径读取 YAML 配置，环境变量（DRAFTING_ 前缀）可以覆盖同名键。
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("drafting")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := cfg.Draft.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate 检查 summary_template 恰好包含一个 %d（回答数量），其余的 % 必须写成 %%。
func (c DraftConfig) validate() error {
	rest := strings.ReplaceAll(c.SummaryTemplate, "%%", "")
	if strings.Count(rest, "%d") != 1 || strings.Count(rest, "%") != 1 {
		return fmt.Errorf("draft.summary_template 必须且只能包含一个 %%d 占位符: %q", c.SummaryTemplate)
	}
	return nil
}

// Init 初始化配置加载，解析结果写入 Conf 变量，失败时直接 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
