package dataset

import "fmt"

// Metadata is the catalogued description of a dataset (immutable value object).
// Known DCAT fields are first-class; anything else the harvester found lands
// in extra untyped.
type Metadata struct {
	datasetID  string
	title      string
	keywords   []string
	accessURLs []string
	extra      map[string]string
}

// NewMetadata validates and creates a Metadata. The dataset ID is required;
// everything else is optional.
func NewMetadata(datasetID, title string, keywords, accessURLs []string, extra map[string]string) (Metadata, error) {
	if datasetID == "" {
		return Metadata{}, fmt.Errorf("dataset id is required")
	}
	return Metadata{
		datasetID:  datasetID,
		title:      title,
		keywords:   keywords,
		accessURLs: accessURLs,
		extra:      extra,
	}, nil
}

// Reconstruct creates a Metadata without validation (storage hydration).
func Reconstruct(datasetID, title string, keywords, accessURLs []string, extra map[string]string) Metadata {
	return Metadata{
		datasetID:  datasetID,
		title:      title,
		keywords:   keywords,
		accessURLs: accessURLs,
		extra:      extra,
	}
}

// DatasetID returns the catalogue identifier of the dataset.
func (m Metadata) DatasetID() string { return m.datasetID }

// Title returns the dataset title.
func (m Metadata) Title() string { return m.title }

// Keywords returns the catalogued keywords.
func (m Metadata) Keywords() []string { return m.keywords }

// AccessURLs returns the distribution access URLs.
func (m Metadata) AccessURLs() []string { return m.accessURLs }

// Extra returns residual metadata fields the schema does not name.
func (m Metadata) Extra() map[string]string { return m.extra }
