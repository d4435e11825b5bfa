package domain

import "context"

type requestMetadataKey struct{}

// WithRequestMetadata stores request metadata for audit records created further down the call chain.
func WithRequestMetadata(ctx context.Context, md RequestMetadata) context.Context {
	return context.WithValue(ctx, requestMetadataKey{}, md)
}

// RequestMetadataFromContext returns the metadata stored by WithRequestMetadata.
func RequestMetadataFromContext(ctx context.Context) (RequestMetadata, bool) {
	md, ok := ctx.Value(requestMetadataKey{}).(RequestMetadata)
	return md, ok
}
