package ai

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Folder is an existing folder offered to the classifier.
type Folder struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// BatchItem is one bookmark in a batch request, annotated with the title of
// its current parent folder.
type BatchItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	ID          string `json:"id"`
	ParentID    string `json:"parentId"`
	ParentTitle string `json:"parentTitle"`
}

// Page describes a single page to bookmark.
type Page struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// BatchRecommendation is the classifier answer for a batch. Recommendations
// are aligned with the request items by position.
type BatchRecommendation struct {
	Recommendations []ItemRecommendation `json:"recommendations"`
}

// Validate checks that the recommendations field was present.
func (r *BatchRecommendation) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Recommendations, validation.NotNil),
	)
}

// ItemRecommendation places one batch item into an existing folder.
type ItemRecommendation struct {
	URL          string `json:"url"`
	ExistingPath string `json:"existingPath"`
	Reason       string `json:"reason"`
}

// Recommendation is the classifier answer for a single page. Either
// ExistingPath or NewPath is set depending on UseExisting.
type Recommendation struct {
	UseExisting  *bool  `json:"useExisting"`
	ExistingPath string `json:"existingPath,omitempty"`
	NewPath      string `json:"newPath,omitempty"`
	Reason       string `json:"reason"`
}

// Existing reports whether the recommendation targets an existing folder.
func (r *Recommendation) Existing() bool {
	return r.UseExisting != nil && *r.UseExisting
}

// Validate checks that the path matching UseExisting is present.
func (r *Recommendation) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UseExisting, validation.NotNil),
		validation.Field(&r.ExistingPath, validation.When(r.Existing(), validation.Required)),
		validation.Field(&r.NewPath, validation.When(r.UseExisting != nil && !*r.UseExisting, validation.Required)),
	)
}
