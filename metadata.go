package signing

import "context"

// SourceArchiveResourceName is the resource name registries use for the
// downloadable source archive of a release.
const SourceArchiveResourceName = "source-archive"

// ReleaseMetadata is the registry's metadata for one package release.
type ReleaseMetadata struct {
	Resources []Resource `json:"resources"`
}

// SourceArchive returns the release's source-archive resource, or nil when
// the release has none.
func (m *ReleaseMetadata) SourceArchive() *Resource {
	for i := range m.Resources {
		if m.Resources[i].Name == SourceArchiveResourceName {
			return &m.Resources[i]
		}
	}
	return nil
}

// Resource is one downloadable resource of a release.
type Resource struct {
	Name     string           `json:"name"`
	Type     string           `json:"type,omitempty"`
	Checksum string           `json:"checksum,omitempty"`
	Signing  *ResourceSigning `json:"signing,omitempty"`
}

// ResourceSigning is the signing block attached to a resource.
type ResourceSigning struct {
	SignatureBase64Encoded string `json:"signatureBase64Encoded"`
	SignatureFormat        string `json:"signatureFormat"`
}

// MetadataProvider retrieves release metadata from a registry.
//
// Implementations own the transport; retrieval failures are re-wrapped by the
// validator with registry, package, and version context.
type MetadataProvider interface {
	GetReleaseMetadata(ctx context.Context, pkg Package, version string) (*ReleaseMetadata, error)
}
