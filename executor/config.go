package executor

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DefaultWorkers 未配置时每个执行组的工作协程数
const DefaultWorkers = 8

// Config 执行组池大小配置。
type Config struct {
	// DefaultWorkers 未单独配置的执行组使用的工作协程数
	DefaultWorkers int `env:"TASKCHAIN_DEFAULT_WORKERS" envDefault:"8"`
	// GroupWorkers 按执行组 key 单独配置的工作协程数，格式 key:n,key:n
	GroupWorkers map[string]int `env:"TASKCHAIN_GROUP_WORKERS"`
}

// LoadConfig 从环境变量加载配置。
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse executor env: %w", err)
	}
	if err = cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// workersFor 返回指定执行组的工作协程数
func (c Config) workersFor(key string) int {
	if n, ok := c.GroupWorkers[key]; ok && n > 0 {
		return n
	}
	if c.DefaultWorkers > 0 {
		return c.DefaultWorkers
	}
	return DefaultWorkers
}

func (c Config) validate() error {
	if c.DefaultWorkers < 0 {
		return fmt.Errorf("invalid default workers: %d", c.DefaultWorkers)
	}
	for key, n := range c.GroupWorkers {
		if n <= 0 {
			return fmt.Errorf("invalid workers for group %q: %d", key, n)
		}
	}
	return nil
}
