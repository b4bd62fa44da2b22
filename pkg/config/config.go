// Package config loads runtime settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRegion     = "us-east-1"
	DefaultJavaBin    = "java"
	DefaultJar        = "aws-apigateway-importer/target/aws-apigateway-importer-1.0.3-SNAPSHOT-jar-with-dependencies.jar"
	DefaultListenAddr = ":8080"
)

var (
	ErrRegionRequired = errors.New("aws region is required")
	ErrJarRequired    = errors.New("importer jar is required")
)

// AWSConfig holds the SDK settings.
type AWSConfig struct {
	Region string `yaml:"region"`
	// Endpoint overrides every service endpoint (LocalStack).
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"accessKeyId,omitempty"`
	SecretAccessKey string `yaml:"secretAccessKey,omitempty"`
	SessionToken    string `yaml:"sessionToken,omitempty"`
	Profile         string `yaml:"profile,omitempty"`
}

// ImporterConfig locates the external schema importer.
type ImporterConfig struct {
	JavaBin string `yaml:"javaBin"`
	// Jar is resolved against Dir when relative.
	Jar string `yaml:"jar"`
	Dir string `yaml:"dir,omitempty"`
}

// JarPath returns the importer jar as an absolute path when Dir is set.
func (c ImporterConfig) JarPath() string {
	if c.Dir == "" || filepath.IsAbs(c.Jar) {
		return c.Jar
	}
	return filepath.Join(c.Dir, c.Jar)
}

type Config struct {
	AWS      AWSConfig      `yaml:"aws"`
	Importer ImporterConfig `yaml:"importer"`
	// WorkDir holds materialized definitions. Empty means the temp dir.
	WorkDir    string `yaml:"workDir,omitempty"`
	StateDir   string `yaml:"stateDir"`
	ListenAddr string `yaml:"listenAddr"`
	// APIKeys enables key authentication on the event endpoint when set.
	APIKeys []string `yaml:"apiKeys,omitempty"`
}

// DefaultStateDir returns the per-user state directory. It falls back to a
// directory under the working directory when no home directory is known.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".apigw-resource", "state")
	}
	return filepath.Join(home, ".apigw-resource", "state")
}

func Default() Config {
	return Config{
		AWS: AWSConfig{Region: DefaultRegion},
		Importer: ImporterConfig{
			JavaBin: DefaultJavaBin,
			Jar:     DefaultJar,
		},
		StateDir:   DefaultStateDir(),
		ListenAddr: DefaultListenAddr,
	}
}

// Load builds a Config from defaults, then the YAML file at path when path
// is not empty, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set("AWS_REGION", &c.AWS.Region)
	set("AWS_ENDPOINT_URL", &c.AWS.Endpoint)
	set("AWS_ACCESS_KEY_ID", &c.AWS.AccessKeyID)
	set("AWS_SECRET_ACCESS_KEY", &c.AWS.SecretAccessKey)
	set("AWS_SESSION_TOKEN", &c.AWS.SessionToken)
	set("AWS_PROFILE", &c.AWS.Profile)

	set("LAMBDA_TASK_ROOT", &c.Importer.Dir)
	set("APIGW_JAVA_BIN", &c.Importer.JavaBin)
	set("APIGW_IMPORTER_JAR", &c.Importer.Jar)
	set("APIGW_WORK_DIR", &c.WorkDir)
	set("APIGW_STATE_DIR", &c.StateDir)
	set("APIGW_LISTEN_ADDR", &c.ListenAddr)
}

func (c Config) Validate() error {
	if c.AWS.Region == "" {
		return ErrRegionRequired
	}
	if c.Importer.Jar == "" {
		return ErrJarRequired
	}
	return nil
}
