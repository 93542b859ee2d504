package config

import (
	"github.com/blues/fundsync/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 链配置
type ChainConfig struct {
	ChainId       int64  `mapstructure:"chain_id"`       // 链ID
	RpcUrl        string `mapstructure:"rpc_url"`        // RPC节点URL
	PrivateKey    string `mapstructure:"private_key"`    // 服务私钥
	EscrowAddress string `mapstructure:"escrow_address"` // 托管合约地址
	TokenAddress  string `mapstructure:"token_address"`  // USDC合约地址
	DeployBlock   int64  `mapstructure:"deploy_block"`   // 托管合约部署区块号
	Confirmations int    `mapstructure:"confirmations"`  // 交易确认数
	FeeBps        int64  `mapstructure:"fee_bps"`        // 平台费率，基点
}

type TaskConfig struct {
	SweepInterval int `mapstructure:"sweep_interval"` // 对账任务间隔，秒
	SweepBatch    int `mapstructure:"sweep_batch"`    // 单次对账的最大活动数
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/fundsync")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "fundsync")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.chain_id", 1)
	viper.SetDefault("chain.deploy_block", 0)
	viper.SetDefault("chain.confirmations", 12)
	viper.SetDefault("chain.fee_bps", 250)
	viper.SetDefault("task.sweep_interval", 60)
	viper.SetDefault("task.sweep_batch", 100)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
