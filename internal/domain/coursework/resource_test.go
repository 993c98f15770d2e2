package coursework

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPreviewKind(t *testing.T) {
	cases := []struct {
		name string
		r    Resource
		want string
	}{
		{"pdf file", Resource{ResourceType: ResourceTypeFile, StoragePath: "resources/u/1_a.PDF"}, PreviewPDF},
		{"image file", Resource{ResourceType: ResourceTypeFile, StoragePath: "resources/u/1_a.webp"}, PreviewImage},
		{"video file", Resource{ResourceType: ResourceTypeFile, StoragePath: "resources/u/1_a.mp4"}, PreviewVideo},
		{"docx file", Resource{ResourceType: ResourceTypeFile, StoragePath: "resources/u/1_a.docx"}, PreviewNone},
		{"file without path", Resource{ResourceType: ResourceTypeFile}, PreviewNone},
		{"link", Resource{ResourceType: ResourceTypeLink, URL: "https://example.com"}, PreviewLink},
		{"video url", Resource{ResourceType: ResourceTypeVideo, URL: "https://youtu.be/x"}, PreviewVideo},
		{"text", Resource{ResourceType: ResourceTypeTextContent, Content: "notes"}, PreviewText},
	}
	for _, tc := range cases {
		if got := tc.r.PreviewKind(); got != tc.want {
			t.Fatalf("%s: got=%q want=%q", tc.name, got, tc.want)
		}
	}
}

func TestReviewStateConsistent(t *testing.T) {
	now := time.Now()
	reviewer := uuid.New()
	reason := "off topic"
	blank := "  "

	pending := Resource{Status: ResourceStatusPending, IsVisible: true}
	if !pending.ReviewStateConsistent() {
		t.Fatalf("pending without reviewer should be consistent")
	}
	pending.ReviewedBy = &reviewer
	if pending.ReviewStateConsistent() {
		t.Fatalf("pending with reviewer should be inconsistent")
	}

	approved := Resource{Status: ResourceStatusApproved, IsVisible: true, ReviewedBy: &reviewer, ReviewedAt: &now}
	if !approved.ReviewStateConsistent() {
		t.Fatalf("approved should be consistent")
	}
	approved.RejectionReason = &reason
	if approved.ReviewStateConsistent() {
		t.Fatalf("approved with rejection reason should be inconsistent")
	}

	rejected := Resource{Status: ResourceStatusRejected, RejectionReason: &reason, ReviewedBy: &reviewer, ReviewedAt: &now}
	if !rejected.ReviewStateConsistent() {
		t.Fatalf("rejected should be consistent")
	}
	rejected.RejectionReason = &blank
	if rejected.ReviewStateConsistent() {
		t.Fatalf("rejected with blank reason should be inconsistent")
	}
}

func TestRoles(t *testing.T) {
	if !CanReview(RoleCoordinator) || !CanReview(RoleAdmin) || CanReview(RoleTeacher) || CanReview(RoleStudent) {
		t.Fatalf("unexpected reviewer roles")
	}
	if !CanUpload(RoleTeacher) || CanUpload(RoleStudent) {
		t.Fatalf("unexpected uploader roles")
	}
	if IsValidRole("guest") {
		t.Fatalf("guest should not be a valid role")
	}
}
