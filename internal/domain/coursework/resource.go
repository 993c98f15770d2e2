package coursework

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ResourceTypeFile        = "file"
	ResourceTypeLink        = "link"
	ResourceTypeTextContent = "text_content"
	ResourceTypeVideo       = "video"
)

const (
	ResourceStatusPending  = "pending"
	ResourceStatusApproved = "approved"
	ResourceStatusRejected = "rejected"
)

// Preview kinds for the resource detail view.
const (
	PreviewPDF   = "pdf"
	PreviewImage = "image"
	PreviewVideo = "video"
	PreviewText  = "text"
	PreviewLink  = "link"
	PreviewNone  = "none"
)

func IsValidResourceType(t string) bool {
	switch t {
	case ResourceTypeFile, ResourceTypeLink, ResourceTypeTextContent, ResourceTypeVideo:
		return true
	}
	return false
}

// Resource is an uploaded learning item attached to a structure node.
// StructureID carries no foreign key: a structure reset may leave resources
// pointing at nodes that no longer exist.
type Resource struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course      *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	StructureID uuid.UUID `gorm:"type:uuid;column:structure_id;not null;index" json:"structure_id"`
	UploaderID  uuid.UUID `gorm:"type:uuid;column:uploader_id;not null;index" json:"uploader_id"`

	Title        string `gorm:"column:title;not null" json:"title"`
	Description  string `gorm:"column:description;type:text" json:"description,omitempty"`
	ResourceType string `gorm:"column:resource_type;not null" json:"resource_type"`
	StoragePath  string `gorm:"column:storage_path" json:"storage_path,omitempty"`
	URL          string `gorm:"column:url" json:"url,omitempty"`
	Content      string `gorm:"column:content;type:text" json:"content,omitempty"`

	Tags datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`

	Status          string     `gorm:"column:status;not null;default:'pending';index" json:"status"`
	IsVisible       bool       `gorm:"column:is_visible;not null" json:"is_visible"`
	RejectionReason *string    `gorm:"column:rejection_reason;type:text" json:"rejection_reason"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid;column:reviewed_by;index" json:"reviewed_by"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Resource) TableName() string { return "resources" }

// ReviewStateConsistent checks the status/visibility/review invariants.
func (r *Resource) ReviewStateConsistent() bool {
	if r == nil {
		return false
	}
	switch r.Status {
	case ResourceStatusPending:
		return r.ReviewedBy == nil && r.ReviewedAt == nil
	case ResourceStatusApproved:
		return r.IsVisible && r.RejectionReason == nil && r.ReviewedBy != nil && r.ReviewedAt != nil
	case ResourceStatusRejected:
		return !r.IsVisible && r.RejectionReason != nil && strings.TrimSpace(*r.RejectionReason) != "" &&
			r.ReviewedBy != nil && r.ReviewedAt != nil
	}
	return false
}

// PreviewKind picks how a client should render the resource.
func (r *Resource) PreviewKind() string {
	if r == nil {
		return PreviewNone
	}
	switch r.ResourceType {
	case ResourceTypeLink:
		if r.URL != "" {
			return PreviewLink
		}
		return PreviewNone
	case ResourceTypeTextContent:
		return PreviewText
	case ResourceTypeVideo:
		if r.URL != "" || r.StoragePath != "" {
			return PreviewVideo
		}
		return PreviewNone
	}
	if r.StoragePath == "" {
		return PreviewNone
	}
	switch strings.TrimPrefix(strings.ToLower(path.Ext(r.StoragePath)), ".") {
	case "pdf":
		return PreviewPDF
	case "jpg", "jpeg", "png", "gif", "webp", "svg":
		return PreviewImage
	case "mp4", "webm", "ogg":
		return PreviewVideo
	}
	return PreviewNone
}
