package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/guest-assistant/internal/catalog"
	appconfig "github.com/wolfman30/guest-assistant/internal/config"
	"github.com/wolfman30/guest-assistant/pkg/logging"
)

// BuildCatalogSource picks S3 when a bucket is configured, else the local
// catalog directory.
func BuildCatalogSource(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader) (catalog.Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	bucket := strings.TrimSpace(cfg.CatalogS3Bucket)
	if bucket == "" {
		return catalog.DirSource{Dir: cfg.CatalogDir}, nil
	}
	if loadAWS == nil {
		return nil, fmt.Errorf("bootstrap: aws config loader is required for s3 catalog")
	}

	awsCfg, err := loadAWS(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// LocalStack and MinIO need path-style addressing.
		if cfg.AWSEndpointOverride != "" {
			o.UsePathStyle = true
		}
	})
	return catalog.NewS3Source(client, bucket, cfg.CatalogS3Prefix), nil
}

// BuildCatalog loads and validates the catalog. Any error should stop
// startup.
func BuildCatalog(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (*catalog.Catalog, error) {
	if logger == nil {
		logger = logging.Default()
	}
	src, err := BuildCatalogSource(ctx, cfg, loadAWS)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(ctx, src, cfg.DefaultPropertyID)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load catalog from %s: %w", src, err)
	}

	stats := cat.Stats()
	logger.Info("catalog loaded",
		"source", src.String(),
		"faqs", stats.FAQs,
		"properties", stats.Properties,
		"default_property", cat.DefaultProperty(),
	)
	for propertyID, fields := range cat.UnresolvedFields() {
		logger.Warn("property is missing template fields; placeholders will be shown verbatim",
			"property_id", propertyID,
			"fields", fields,
		)
	}
	return cat, nil
}
