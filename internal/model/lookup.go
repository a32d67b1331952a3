package model

import "context"

// LookupContext carries the interface's location for lookups that have no
// resource id and must search by placement instead.
type LookupContext struct {
	InterfaceID      string
	VpcID            string
	SubnetID         string
	AvailabilityZone string
}

// ResourceLookup resolves a (type, id) pair to a display name and tag set.
// Implementations never fail classification: on any error they return the
// resource id (or the "N/A" sentinel) and an empty tag set. An empty
// resourceID triggers a location-based search using the context, currently
// supported for the managed database families only.
type ResourceLookup interface {
	Lookup(ctx context.Context, resourceType, resourceID string, lctx LookupContext) (name string, tags map[string]string)
}
