package stagecraft

import "go.uber.org/zap"

// Resource is the embeddable base for managed objects that wrap engine assets
// (textures, meshes, audio clips). A resource carries an optional asset
// identity, empty when the resource is purely runtime-created. Resources must
// be destroyed explicitly: one still resolvable when leaks are reported has
// escaped its owner and is treated as a leak, not a normal path.
type Resource struct {
	Object
	assetID string
}

// AssetID returns the identity of the imported asset backing this resource,
// or "" for runtime-created resources.
func (r *Resource) AssetID() string { return r.assetID }

// SetAssetID records the identity of the imported asset backing this
// resource.
func (r *Resource) SetAssetID(id string) { r.assetID = id }

func (r *Resource) isResource() {}

// resourceMarker filters registry entries down to resources during leak
// reporting.
type resourceMarker interface {
	Managed
	AssetID() string
	isResource()
}

// ReportLeaks logs every resource still resolvable in r. Called at shutdown
// when the leak-check debug toggle is on, after the final disposal drain, so
// anything it finds was never explicitly destroyed. Returns the leak count.
func (r *Registry) ReportLeaks(log *zap.Logger) int {
	if log == nil {
		log = zap.NewNop()
	}
	n := 0
	for _, res := range FindAll[resourceMarker](r) {
		log.Warn("resource leaked: never explicitly destroyed",
			zap.Uint64("id", uint64(res.InstanceID())),
			zap.String("name", res.Name()),
			zap.String("asset", res.AssetID()))
		n++
	}
	return n
}
