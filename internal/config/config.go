package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP        HTTP        `json:"http"`
	Persistence Persistence `json:"persistence"`
	Routing     Routing     `json:"routing"`
	NATS        NATS        `json:"nats"`
}

type Routing struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key" yaml:"api_key"`
}

type NATS struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

type Persistence struct {
	Database Database `json:"database"`
	Images   Images   `json:"images"`
}

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
)

type Database struct {
	Driver          DatabaseDriver `json:"driver"`
	Database        string         `json:"database"`
	Username        string         `json:"username"`
	Password        string         `json:"password"`
	Host            string         `json:"host"`
	Port            uint16         `json:"port"`
	ExtraParameters string         `json:"extra_parameters" yaml:"extra_parameters"`
}

type ImagesDriver string

const (
	ImagesDriverFilesystem ImagesDriver = "filesystem"
	ImagesDriverS3         ImagesDriver = "s3"
)

type Images struct {
	Driver            ImagesDriver      `json:"driver"`
	FilesystemOptions FilesystemOptions `json:"filesystem_options" yaml:"filesystem_options"`
	S3Options         S3Options         `json:"s3_options" yaml:"s3_options"`
}

type FilesystemOptions struct {
	Directory string `json:"directory"`
}

type S3Options struct {
	Region   string `json:"region"`
	Bucket   string `json:"bucket"`
	Endpoint string `json:"endpoint"`
}

type HTTPListener struct {
	IPV4Host string `json:"ipv4_host" yaml:"ipv4_host"`
	IPV6Host string `json:"ipv6_host" yaml:"ipv6_host"`
	Port     uint16 `json:"port"`
}

type Tracing struct {
	Enabled      bool   `json:"enabled"`
	OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
}

type PProf struct {
	Enabled bool `json:"enabled"`
}

type Metrics struct {
	HTTPListener
	Enabled bool `json:"enabled"`
}

type HTTP struct {
	HTTPListener
	Tracing        Tracing  `json:"tracing"`
	PProf          PProf    `json:"pprof"`
	TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
	Metrics        Metrics  `json:"metrics"`
	CORSHosts      []string `json:"cors_hosts" yaml:"cors_hosts"`
}

//nolint:golint,gochecknoglobals
var (
	ConfigFileKey                          = "config"
	HTTPIPV4HostKey                        = "http.ipv4_host"
	HTTPIPV6HostKey                        = "http.ipv6_host"
	HTTPPortKey                            = "http.port"
	HTTPTracingEnabledKey                  = "http.tracing.enabled"
	HTTPTracingOTLPEndKey                  = "http.tracing.otlp_endpoint"
	HTTPPProfEnabledKey                    = "http.pprof.enabled"
	HTTPTrustedProxiesKey                  = "http.trusted_proxies"
	HTTPMetricsEnabledKey                  = "http.metrics.enabled"
	HTTPMetricsIPV4HostKey                 = "http.metrics.ipv4_host"
	HTTPMetricsIPV6HostKey                 = "http.metrics.ipv6_host"
	HTTPMetricsPortKey                     = "http.metrics.port"
	HTTPCORSHostsKey                       = "http.cors_hosts"
	PersistenceDatabaseDriverKey           = "persistence.database.driver"
	PersistenceDatabaseDatabaseKey         = "persistence.database.database"
	PersistenceDatabaseUsernameKey         = "persistence.database.username"
	PersistenceDatabasePasswordKey         = "persistence.database.password"
	PersistenceDatabaseHostKey             = "persistence.database.host"
	PersistenceDatabasePortKey             = "persistence.database.port"
	PersistenceDatabaseExtraParametersKey  = "persistence.database.extra_parameters"
	PersistenceImagesDriverKey             = "persistence.images.driver"
	PersistenceImagesDirectoryKey          = "persistence.images.filesystem.directory"
	PersistenceImagesS3RegionKey           = "persistence.images.s3.region"
	PersistenceImagesS3BucketKey           = "persistence.images.s3.bucket"
	PersistenceImagesS3EndpointKey         = "persistence.images.s3.endpoint"
	RoutingBaseURLKey                      = "routing.base_url"
	//nolint:golint,gosec
	RoutingAPIKeyKey = "routing.api_key"
	NATSEnabledKey   = "nats.enabled"
	NATSURLKey       = "nats.url"
)

const (
	DefaultConfigPath                  = "config.yaml"
	DefaultHTTPIPV4Host                = "0.0.0.0"
	DefaultHTTPIPV6Host                = "::"
	DefaultHTTPPort                    = 8080
	DefaultHTTPMetricsIPV4Host         = "127.0.0.1"
	DefaultHTTPMetricsIPV6Host         = "::1"
	DefaultHTTPMetricsPort             = 8081
	DefaultPersistenceDatabaseDriver   = DatabaseDriverSQLite
	DefaultPersistenceDatabaseDatabase = "ilha.db"
	DefaultPersistenceImagesDriver     = ImagesDriverFilesystem
	DefaultPersistenceImagesDirectory  = "images/"
	DefaultRoutingBaseURL              = "https://api.openrouteservice.org"
)

func RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(ConfigFileKey, "c", DefaultConfigPath, "Config file path")
	cmd.Flags().String(HTTPIPV4HostKey, DefaultHTTPIPV4Host, "HTTP server IPv4 host")
	cmd.Flags().String(HTTPIPV6HostKey, DefaultHTTPIPV6Host, "HTTP server IPv6 host")
	cmd.Flags().Uint16(HTTPPortKey, DefaultHTTPPort, "HTTP server port")
	cmd.Flags().Bool(HTTPTracingEnabledKey, false, "Enable Open Telemetry tracing")
	cmd.Flags().String(HTTPTracingOTLPEndKey, "", "Open Telemetry endpoint")
	cmd.Flags().Bool(HTTPPProfEnabledKey, false, "Enable pprof")
	cmd.Flags().StringSlice(HTTPTrustedProxiesKey, []string{}, "Comma-separated list of trusted proxies")
	cmd.Flags().Bool(HTTPMetricsEnabledKey, false, "Enable metrics server")
	cmd.Flags().String(HTTPMetricsIPV4HostKey, DefaultHTTPMetricsIPV4Host, "Metrics server IPv4 host")
	cmd.Flags().String(HTTPMetricsIPV6HostKey, DefaultHTTPMetricsIPV6Host, "Metrics server IPv6 host")
	cmd.Flags().Uint16(HTTPMetricsPortKey, DefaultHTTPMetricsPort, "Metrics server port")
	cmd.Flags().StringSlice(HTTPCORSHostsKey, []string{}, "Comma-separated list of CORS hosts")
	cmd.Flags().String(PersistenceDatabaseDriverKey, string(DefaultPersistenceDatabaseDriver), "Database driver")
	cmd.Flags().String(PersistenceDatabaseDatabaseKey, DefaultPersistenceDatabaseDatabase, "Database path")
	cmd.Flags().String(PersistenceDatabaseUsernameKey, "", "Database username")
	cmd.Flags().String(PersistenceDatabasePasswordKey, "", "Database password")
	cmd.Flags().String(PersistenceDatabaseHostKey, "", "Database host")
	cmd.Flags().Uint16(PersistenceDatabasePortKey, 0, "Database port")
	cmd.Flags().String(PersistenceDatabaseExtraParametersKey, "", "Database extra parameters")
	cmd.Flags().String(PersistenceImagesDriverKey, string(DefaultPersistenceImagesDriver), "Image storage driver")
	cmd.Flags().String(PersistenceImagesDirectoryKey, DefaultPersistenceImagesDirectory, "Image storage directory")
	cmd.Flags().String(PersistenceImagesS3RegionKey, "", "Image storage S3 region")
	cmd.Flags().String(PersistenceImagesS3BucketKey, "", "Image storage S3 bucket")
	cmd.Flags().String(PersistenceImagesS3EndpointKey, "", "Image storage S3 endpoint override")
	cmd.Flags().String(RoutingBaseURLKey, DefaultRoutingBaseURL, "Directions API base URL")
	cmd.Flags().String(RoutingAPIKeyKey, "", "Directions API key")
	cmd.Flags().Bool(NATSEnabledKey, false, "Enable NATS event fan-out")
	cmd.Flags().String(NATSURLKey, "", "NATS server URL")
}

var (
	ErrRoutingAPIKeyRequired  = errors.New("Routing API key is required")
	ErrOTLPEndpointRequired   = errors.New("OTLP endpoint is required when tracing is enabled")
	ErrNATSURLRequired        = errors.New("NATS URL is required when NATS is enabled")
	ErrDBHostRequired         = errors.New("Database host is required")
	ErrDBDatabaseRequired     = errors.New("Database name is required")
	ErrDatabaseDriverRequired = errors.New("Database driver is required")
	ErrImagesDriverRequired   = errors.New("Image storage driver is required")
	ErrImagesDirRequired      = errors.New("Image storage directory is required")
	ErrImagesS3BucketRequired = errors.New("Image storage S3 bucket is required")
	ErrImagesS3RegionRequired = errors.New("Image storage S3 region is required")
)

func (c *Config) Validate() error {
	if c.Routing.APIKey == "" {
		return ErrRoutingAPIKeyRequired
	}
	if c.HTTP.Tracing.Enabled && c.HTTP.Tracing.OTLPEndpoint == "" {
		return ErrOTLPEndpointRequired
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return ErrNATSURLRequired
	}
	if c.Persistence.Database.Driver == "" {
		return ErrDatabaseDriverRequired
	}
	if c.Persistence.Database.Driver != DatabaseDriverSQLite && c.Persistence.Database.Host == "" {
		return ErrDBHostRequired
	}
	if c.Persistence.Database.Database == "" {
		return ErrDBDatabaseRequired
	}
	switch c.Persistence.Images.Driver {
	case ImagesDriverFilesystem:
		if c.Persistence.Images.FilesystemOptions.Directory == "" {
			return ErrImagesDirRequired
		}
	case ImagesDriverS3:
		if c.Persistence.Images.S3Options.Bucket == "" {
			return ErrImagesS3BucketRequired
		}
		if c.Persistence.Images.S3Options.Region == "" {
			return ErrImagesS3RegionRequired
		}
	default:
		return ErrImagesDriverRequired
	}

	return nil
}

func LoadConfig(cmd *cobra.Command) (*Config, error) {
	var config Config

	// Load flags from envs
	ctx, cancel := context.WithCancelCause(cmd.Context())
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if ctx.Err() != nil {
			return
		}
		optName := strings.ReplaceAll(strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_"), ".", "__")
		if val, ok := os.LookupEnv(optName); !f.Changed && ok {
			if err := f.Value.Set(val); err != nil {
				cancel(err)
			}
			f.Changed = true
		}
	})
	if ctx.Err() != nil {
		return &config, fmt.Errorf("failed to load env: %w", context.Cause(ctx))
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return &config, fmt.Errorf("failed to get config path: %w", err)
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return &config, fmt.Errorf("failed to read config: %w", err)
		} else if err == nil {
			if err := yaml.Unmarshal(data, &config); err != nil {
				return &config, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	err = overrideFlags(&config, cmd)
	if err != nil {
		return &config, fmt.Errorf("failed to override flags: %w", err)
	}

	// Defaults
	if config.HTTP.IPV4Host == "" {
		config.HTTP.IPV4Host = DefaultHTTPIPV4Host
	}
	if config.HTTP.IPV6Host == "" {
		config.HTTP.IPV6Host = DefaultHTTPIPV6Host
	}
	if config.HTTP.Port == 0 {
		config.HTTP.Port = DefaultHTTPPort
	}
	if config.HTTP.Metrics.IPV4Host == "" {
		config.HTTP.Metrics.IPV4Host = DefaultHTTPMetricsIPV4Host
	}
	if config.HTTP.Metrics.IPV6Host == "" {
		config.HTTP.Metrics.IPV6Host = DefaultHTTPMetricsIPV6Host
	}
	if config.HTTP.Metrics.Port == 0 {
		config.HTTP.Metrics.Port = DefaultHTTPMetricsPort
	}
	if config.Persistence.Database.Driver == "" {
		config.Persistence.Database.Driver = DefaultPersistenceDatabaseDriver
	}
	if config.Persistence.Database.Database == "" {
		config.Persistence.Database.Database = DefaultPersistenceDatabaseDatabase
	}
	if config.Persistence.Images.Driver == "" {
		config.Persistence.Images.Driver = DefaultPersistenceImagesDriver
	}
	if config.Persistence.Images.Driver == ImagesDriverFilesystem && config.Persistence.Images.FilesystemOptions.Directory == "" {
		config.Persistence.Images.FilesystemOptions.Directory = DefaultPersistenceImagesDirectory
	}
	if config.Routing.BaseURL == "" {
		config.Routing.BaseURL = DefaultRoutingBaseURL
	}

	return &config, nil
}

func overrideFlags(config *Config, cmd *cobra.Command) error {
	var err error
	if cmd.Flags().Changed(HTTPIPV4HostKey) {
		config.HTTP.IPV4Host, err = cmd.Flags().GetString(HTTPIPV4HostKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP IPv4 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPIPV6HostKey) {
		config.HTTP.IPV6Host, err = cmd.Flags().GetString(HTTPIPV6HostKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP IPv6 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPPortKey) {
		config.HTTP.Port, err = cmd.Flags().GetUint16(HTTPPortKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP port: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTracingEnabledKey) {
		config.HTTP.Tracing.Enabled, err = cmd.Flags().GetBool(HTTPTracingEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get tracing enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTracingOTLPEndKey) {
		config.HTTP.Tracing.OTLPEndpoint, err = cmd.Flags().GetString(HTTPTracingOTLPEndKey)
		if err != nil {
			return fmt.Errorf("failed to get tracing OTLP endpoint: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPPProfEnabledKey) {
		config.HTTP.PProf.Enabled, err = cmd.Flags().GetBool(HTTPPProfEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get pprof enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTrustedProxiesKey) {
		config.HTTP.TrustedProxies, err = cmd.Flags().GetStringSlice(HTTPTrustedProxiesKey)
		if err != nil {
			return fmt.Errorf("failed to get trusted proxies: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsEnabledKey) {
		config.HTTP.Metrics.Enabled, err = cmd.Flags().GetBool(HTTPMetricsEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsIPV4HostKey) {
		config.HTTP.Metrics.IPV4Host, err = cmd.Flags().GetString(HTTPMetricsIPV4HostKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics IPv4 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsIPV6HostKey) {
		config.HTTP.Metrics.IPV6Host, err = cmd.Flags().GetString(HTTPMetricsIPV6HostKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics IPv6 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsPortKey) {
		config.HTTP.Metrics.Port, err = cmd.Flags().GetUint16(HTTPMetricsPortKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics port: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPCORSHostsKey) {
		config.HTTP.CORSHosts, err = cmd.Flags().GetStringSlice(HTTPCORSHostsKey)
		if err != nil {
			return fmt.Errorf("failed to get CORS hosts: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseDriverKey) {
		drvr, err := cmd.Flags().GetString(PersistenceDatabaseDriverKey)
		if err != nil {
			return fmt.Errorf("failed to get database driver: %w", err)
		}
		config.Persistence.Database.Driver = DatabaseDriver(strings.ToLower(drvr))
	}

	if cmd.Flags().Changed(PersistenceDatabaseDatabaseKey) {
		config.Persistence.Database.Database, err = cmd.Flags().GetString(PersistenceDatabaseDatabaseKey)
		if err != nil {
			return fmt.Errorf("failed to get database name: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseUsernameKey) {
		config.Persistence.Database.Username, err = cmd.Flags().GetString(PersistenceDatabaseUsernameKey)
		if err != nil {
			return fmt.Errorf("failed to get database username: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabasePasswordKey) {
		config.Persistence.Database.Password, err = cmd.Flags().GetString(PersistenceDatabasePasswordKey)
		if err != nil {
			return fmt.Errorf("failed to get database password: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseHostKey) {
		config.Persistence.Database.Host, err = cmd.Flags().GetString(PersistenceDatabaseHostKey)
		if err != nil {
			return fmt.Errorf("failed to get database host: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabasePortKey) {
		config.Persistence.Database.Port, err = cmd.Flags().GetUint16(PersistenceDatabasePortKey)
		if err != nil {
			return fmt.Errorf("failed to get database port: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseExtraParametersKey) {
		config.Persistence.Database.ExtraParameters, err = cmd.Flags().GetString(PersistenceDatabaseExtraParametersKey)
		if err != nil {
			return fmt.Errorf("failed to get database extra parameters: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceImagesDriverKey) {
		drvr, err := cmd.Flags().GetString(PersistenceImagesDriverKey)
		if err != nil {
			return fmt.Errorf("failed to get image storage driver: %w", err)
		}
		config.Persistence.Images.Driver = ImagesDriver(strings.ToLower(drvr))
	}

	if cmd.Flags().Changed(PersistenceImagesDirectoryKey) {
		config.Persistence.Images.FilesystemOptions.Directory, err = cmd.Flags().GetString(PersistenceImagesDirectoryKey)
		if err != nil {
			return fmt.Errorf("failed to get image storage directory: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceImagesS3RegionKey) {
		config.Persistence.Images.S3Options.Region, err = cmd.Flags().GetString(PersistenceImagesS3RegionKey)
		if err != nil {
			return fmt.Errorf("failed to get image storage S3 region: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceImagesS3BucketKey) {
		config.Persistence.Images.S3Options.Bucket, err = cmd.Flags().GetString(PersistenceImagesS3BucketKey)
		if err != nil {
			return fmt.Errorf("failed to get image storage S3 bucket: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceImagesS3EndpointKey) {
		config.Persistence.Images.S3Options.Endpoint, err = cmd.Flags().GetString(PersistenceImagesS3EndpointKey)
		if err != nil {
			return fmt.Errorf("failed to get image storage S3 endpoint: %w", err)
		}
	}

	if cmd.Flags().Changed(RoutingBaseURLKey) {
		config.Routing.BaseURL, err = cmd.Flags().GetString(RoutingBaseURLKey)
		if err != nil {
			return fmt.Errorf("failed to get routing base URL: %w", err)
		}
	}

	if cmd.Flags().Changed(RoutingAPIKeyKey) {
		config.Routing.APIKey, err = cmd.Flags().GetString(RoutingAPIKeyKey)
		if err != nil {
			return fmt.Errorf("failed to get routing API key: %w", err)
		}
	}

	if cmd.Flags().Changed(NATSEnabledKey) {
		config.NATS.Enabled, err = cmd.Flags().GetBool(NATSEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get NATS enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(NATSURLKey) {
		config.NATS.URL, err = cmd.Flags().GetString(NATSURLKey)
		if err != nil {
			return fmt.Errorf("failed to get NATS URL: %w", err)
		}
	}

	return nil
}
