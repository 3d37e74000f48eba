package model

// DocumentType is a configured category of supporting document.
// Mandatory types form the denominator of a farm's completeness.
type DocumentType struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
	Mandatory   bool   `json:"mandatory" yaml:"mandatory"`
}

// PendingType names a mandatory type that is not yet satisfied for a farm.
type PendingType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Completeness is the outcome of evaluating a farm's documentation.
type Completeness struct {
	FarmID         string        `json:"farm_id"`
	Complete       bool          `json:"complete"`
	PendingTypes   []PendingType `json:"pending_types"`
	ApprovedCount  int           `json:"approved_count"`
	TotalMandatory int           `json:"total_mandatory"`
}
