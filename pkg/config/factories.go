package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/zeroten/pindex/internal/logger"
	"github.com/zeroten/pindex/pkg/metadata"
	pinMemory "github.com/zeroten/pindex/pkg/pin/memory"
	pinPinata "github.com/zeroten/pindex/pkg/pin/pinata"
	pinS3 "github.com/zeroten/pindex/pkg/pin/s3"
	"github.com/zeroten/pindex/pkg/store"
	storeBadger "github.com/zeroten/pindex/pkg/store/badger"
	storeMemory "github.com/zeroten/pindex/pkg/store/memory"
)

// Collections bundles the four record collections built from one store
// configuration, plus the close hook for the backing database.
type Collections struct {
	Files   store.Collection[metadata.FileRecord]
	Folders store.Collection[metadata.FolderRecord]
	Shares  store.Collection[metadata.ShareRecord]
	Unpins  store.Collection[metadata.UnpinTask]

	closeFn func() error
}

// Close releases the backing database, if any.
func (c *Collections) Close() error {
	if c.closeFn == nil {
		return nil
	}
	return c.closeFn()
}

// CreateCollections creates record collections based on configuration.
//
// This factory uses the Type field to determine which store implementation
// to create, then decodes the type-specific configuration from the
// corresponding map.
//
// Supported types:
//   - "memory": in-memory collections, state lost on restart
//   - "badger": durable collections over one shared BadgerDB
func CreateCollections(cfg *StoreConfig) (*Collections, error) {
	switch cfg.Type {
	case "memory":
		return &Collections{
			Files:   storeMemory.NewCollection[metadata.FileRecord](),
			Folders: storeMemory.NewCollection[metadata.FolderRecord](),
			Shares:  storeMemory.NewCollection[metadata.ShareRecord](),
			Unpins:  storeMemory.NewCollection[metadata.UnpinTask](),
		}, nil
	case "badger":
		return createBadgerCollections(cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown store type: %q", cfg.Type)
	}
}

// createBadgerCollections opens the shared BadgerDB and builds one prefixed
// collection per record kind.
func createBadgerCollections(options map[string]any) (*Collections, error) {
	type BadgerStoreConfig struct {
		Path string `mapstructure:"path"`
	}

	var storeCfg BadgerStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger store config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("badger store: path is required")
	}

	db, err := storeBadger.Open(storeCfg.Path)
	if err != nil {
		return nil, err
	}

	logger.Info("Badger record store initialized: path=%s", storeCfg.Path)

	return &Collections{
		Files:   storeBadger.NewCollection[metadata.FileRecord](db, "file"),
		Folders: storeBadger.NewCollection[metadata.FolderRecord](db, "folder"),
		Shares:  storeBadger.NewCollection[metadata.ShareRecord](db, "share"),
		Unpins:  storeBadger.NewCollection[metadata.UnpinTask](db, "unpin"),
		closeFn: db.Close,
	}, nil
}

// CreatePinGateway creates a pin gateway based on configuration.
//
// Supported types:
//   - "memory": in-memory gateway for tests and local runs
//   - "pinata": the Pinata pinning service
//   - "s3": Amazon S3 or S3-compatible object storage
func CreatePinGateway(ctx context.Context, cfg *GatewayConfig) (metadata.PinGateway, error) {
	switch cfg.Type {
	case "memory":
		return &pinMemory.Gateway{}, nil
	case "pinata":
		return createPinataGateway(cfg.Pinata)
	case "s3":
		return createS3Gateway(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown gateway type: %q", cfg.Type)
	}
}

// createPinataGateway creates a Pinata-backed gateway.
func createPinataGateway(options map[string]any) (metadata.PinGateway, error) {
	type PinataGatewayConfig struct {
		BaseURL   string        `mapstructure:"base_url"`
		APIKey    string        `mapstructure:"api_key"`
		APISecret string        `mapstructure:"api_secret"`
		JWT       string        `mapstructure:"jwt"`
		Timeout   time.Duration `mapstructure:"timeout"`
	}

	var gwCfg PinataGatewayConfig
	if err := mapstructure.Decode(options, &gwCfg); err != nil {
		return nil, fmt.Errorf("failed to decode pinata gateway config: %w", err)
	}

	gateway, err := pinPinata.New(pinPinata.Config{
		BaseURL:   gwCfg.BaseURL,
		APIKey:    gwCfg.APIKey,
		APISecret: gwCfg.APISecret,
		JWT:       gwCfg.JWT,
		Timeout:   gwCfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pinata gateway: %w", err)
	}

	logger.Info("Pinata gateway initialized")
	return gateway, nil
}

// createS3Gateway creates an S3-backed gateway.
func createS3Gateway(ctx context.Context, options map[string]any) (metadata.PinGateway, error) {
	type S3GatewayConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var gwCfg S3GatewayConfig
	if err := mapstructure.Decode(options, &gwCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 gateway config: %w", err)
	}

	if gwCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 gateway: bucket is required")
	}
	if gwCfg.Region == "" {
		return nil, fmt.Errorf("S3 gateway: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(gwCfg.Region))

	// Custom endpoint for MinIO, Localstack and other S3-compatible stores
	if gwCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               gwCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default credential chain
	if gwCfg.AccessKeyID != "" && gwCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			gwCfg.AccessKeyID,
			gwCfg.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := gwCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing for MinIO/Localstack compatibility
		if gwCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	gateway, err := pinS3.New(ctx, pinS3.Config{
		Client:    client,
		Bucket:    gwCfg.Bucket,
		KeyPrefix: gwCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 gateway: %w", err)
	}

	logger.Info("S3 gateway initialized: bucket=%s, region=%s, prefix=%s",
		gwCfg.Bucket, gwCfg.Region, gwCfg.KeyPrefix)

	return gateway, nil
}
