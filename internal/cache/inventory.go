package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	TemplateKeyPrefix = "template:%s"
	CatalogKey        = "catalog:first-page"
)

const (
	TemplateTTL = 10 * time.Minute
	CatalogTTL  = 2 * time.Minute
)

func TemplateKey(id string) string {
	return fmt.Sprintf(TemplateKeyPrefix, id)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateTemplate drops a template and the first catalog page that lists it.
func InvalidateTemplate(ctx context.Context, id string) {
	Invalidate(ctx, TemplateKey(id), CatalogKey)
}
