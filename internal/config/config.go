package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MongoConfig 定义了 MongoDB（权威本地事实库）的连接配置。
type MongoConfig struct {
	Address    string `yaml:"address"`    // MongoDB 服务器地址
	Username   string `yaml:"username"`   // 用户名
	Password   string `yaml:"password"`   // 密码
	Database   string `yaml:"database"`   // 数据库名称
	Collection string `yaml:"collection"` // 事实集合名称
}

// MySQLConfig 定义了 MySQL（用户画像库）的连接配置。
type MySQLConfig struct {
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// RedisConfig 定义了 Redis（认知状态缓存）的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// Neo4jConfig 定义了 Neo4j 图数据库的连接配置（graphBackend 为 "neo4j" 时使用）。
type Neo4jConfig struct {
	Uri      string `yaml:"uri"`      // Neo4j 数据库 URI (例如: "bolt://localhost:7687")
	Username string `yaml:"username"` // 用户名
	Password string `yaml:"password"` // 密码
	Database string `yaml:"database"` // 数据库名称
}

// KafkaConfig 定义了事实批次摄入主题的连接配置。
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表
	Topic   string   `yaml:"topic"`   // 事实批次主题
	GroupID string   `yaml:"groupID"` // 消费组 ID
}

// GraphServiceConfig 定义了 HTTP 图谱摄入服务的配置（graphBackend 为 "http" 时使用）。
type GraphServiceConfig struct {
	BaseURL string `yaml:"baseURL"` // 图谱摄入服务的根地址
	APIKey  string `yaml:"apiKey"`  // 可选的 Bearer Token
}

// DatabaseConfigs 包含所有数据库的配置。
type DatabaseConfigs struct {
	MongoDB MongoConfig  `yaml:"mongodb"` // 本地事实库配置
	MySQL   MySQLConfig  `yaml:"mysql"`   // 用户画像库配置
	Redis   RedisConfig  `yaml:"redis"`   // 缓存配置
	Neo4j   Neo4jConfig  `yaml:"neo4j"`   // 图数据库配置
	Kafka   KafkaConfig  `yaml:"kafka"`   // 消息队列配置
}

// MemoryConfig 定义了记忆写入管线的行为参数。
type MemoryConfig struct {
	SimilarityThreshold float64 `yaml:"similarityThreshold"` // 语义去重阈值 (含边界)，默认 0.8
	CombinedMinLength   int     `yaml:"combinedMinLength"`   // 复合语句启发式的最小长度，默认 50
	GraphTimeout        string  `yaml:"graphTimeout"`        // 图谱提交超时 (例如: "5s")
	LocalBackend        string  `yaml:"localBackend"`        // 本地存储后端: "mongo" 或 "memory"
	GraphBackend        string  `yaml:"graphBackend"`        // 图谱后端: "http" 或 "neo4j"
}

// ProfileConfig 定义了认知状态查询的缓存行为。
type ProfileConfig struct {
	CacheSize int    `yaml:"cacheSize"` // 进程内 LRU 缓存容量
	CacheTTL  string `yaml:"cacheTTL"`  // 缓存过期时间 (例如: "5m")
}

// RateLimiterConfig 定义了 API 限流器的配置（令牌桶算法）。
type RateLimiterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Rate     float64 `yaml:"rate"`     // 每秒速率
	Capacity int     `yaml:"capacity"` // 桶容量
}

// CircuitBreakerConfig 定义了图谱客户端熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// ServerConfig 定义了 REST API 服务的监听配置。
type ServerConfig struct {
	Address string `yaml:"address"` // 监听地址 (例如: ":8080")
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// AppConfig 是整个 YAML 文件的根结构。
type AppConfig struct {
	App        AppInfo            `yaml:"app"`
	Logger     LoggerConfig       `yaml:"logger"`
	Server     ServerConfig       `yaml:"server"`
	Memory     MemoryConfig       `yaml:"memory"`
	Profile    ProfileConfig      `yaml:"profile"`
	Graph      GraphServiceConfig `yaml:"graph"`
	Databases  DatabaseConfigs    `yaml:"databases"`
	Middleware MiddlewareConfig   `yaml:"middleware"`
}

// LoadConfig 从指定路径加载并解析 YAML 配置文件。
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	return &cfg, nil
}
