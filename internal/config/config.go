package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AWSConfig holds client construction options. An empty region falls back to
// the SDK default chain; AssumeRoleARN enables cross-account discovery.
type AWSConfig struct {
	Region        string `yaml:"region"`
	AssumeRoleARN string `yaml:"assume_role_arn"`
}

// DiscoveryConfig configures the interface discovery pass.
type DiscoveryConfig struct {
	TableName    string `yaml:"table_name"`
	VpcTableName string `yaml:"vpc_table_name"`
	VpcID        string `yaml:"vpc_id"`
}

// NATSConfig holds connection options for the NATS publisher.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// PublisherDef defines a single summary publisher from the config file.
type PublisherDef struct {
	Type    string     `yaml:"type"`
	Enabled bool       `yaml:"enabled"`
	NATS    NATSConfig `yaml:"nats"`
}

// ClickHouseConfig holds connection options for the analytics writer.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// FlowLogConfig configures the flow-log processor and its publishers.
type FlowLogConfig struct {
	AppSyncURL      string           `yaml:"appsync_url"`
	APIKeyParameter string           `yaml:"api_key_parameter"`
	Publishers      []PublisherDef   `yaml:"publishers"`
	ClickHouse      ClickHouseConfig `yaml:"clickhouse"`
}

// APIConfig configures the REST API server.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	AWS       AWSConfig       `yaml:"aws"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	FlowLog   FlowLogConfig   `yaml:"flowlog"`
	API       APIConfig       `yaml:"api"`
}

// LoadConfig reads the configuration from a YAML file, applies environment
// overrides, and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

// applyEnv layers deployment-environment overrides on top of the file. These
// mirror the variables the hosted (Lambda-style) deployment injects.
func (c *Config) applyEnv() {
	if v := os.Getenv("EAGLE_EYE_TABLE_NAME"); v != "" {
		c.Discovery.TableName = v
	}
	if v := os.Getenv("EAGLE_EYE_VPC_TABLE_NAME"); v != "" {
		c.Discovery.VpcTableName = v
	}
	if v := os.Getenv("APPSYNC_API_URL"); v != "" {
		c.FlowLog.AppSyncURL = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.AWS.Region = v
	}
}
