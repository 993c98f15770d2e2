package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/data/repos"
	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/domain/coursework"
	"github.com/gcfisi/coursehub-backend/internal/observability"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/gcp"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

const DefaultMaxUploadBytes int64 = 50 * 1024 * 1024

type ResourceConfig struct {
	MaxUploadBytes  int64
	VisibleOnUpload bool
}

type UploadInput struct {
	CourseID     uuid.UUID
	StructureID  uuid.UUID
	Title        string
	Description  string
	ResourceType string
	URL          string
	Content      string
	Tags         []string
	File         io.Reader
	FileName     string
	FileSize     int64
}

// ResourceDetails is a resource joined with the names a detail view needs.
type ResourceDetails struct {
	types.Resource
	CourseName    string `json:"course_name"`
	CourseCode    string `json:"course_code"`
	StructureName string `json:"structure_name"`
	StructureKind string `json:"structure_type"`
	UploaderName  string `json:"uploader_name"`
	UploaderRole  string `json:"uploader_role"`
	ReviewerName  string `json:"reviewer_name,omitempty"`
	PreviewKind   string `json:"preview_kind"`
	PublicURL     string `json:"public_url,omitempty"`
}

type ResourceService interface {
	Upload(ctx context.Context, actor *ActorContext, in UploadInput) (*types.Resource, error)
	Get(ctx context.Context, actor *ActorContext, resourceID uuid.UUID) (*ResourceDetails, error)
	ListMine(ctx context.Context, actor *ActorContext) ([]*types.Resource, error)
	UpdateTitle(ctx context.Context, actor *ActorContext, resourceID uuid.UUID, title string) (*types.Resource, error)
	Delete(ctx context.Context, actor *ActorContext, resourceID uuid.UUID) error
}

type resourceService struct {
	db        *gorm.DB
	log       *logger.Logger
	courses   repos.CourseRepo
	nodes     repos.StructureNodeRepo
	resources repos.ResourceRepo
	profiles  repos.ProfileRepo
	bucket    gcp.BucketService
	cfg       ResourceConfig
	now       func() time.Time
}

// NewResourceService wires resource uploads. bucket may be nil, in which case
// file uploads are rejected.
func NewResourceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courses repos.CourseRepo,
	nodes repos.StructureNodeRepo,
	resources repos.ResourceRepo,
	profiles repos.ProfileRepo,
	bucket gcp.BucketService,
	cfg ResourceConfig,
) ResourceService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &resourceService{
		db:        db,
		log:       baseLog.With("service", "ResourceService"),
		courses:   courses,
		nodes:     nodes,
		resources: resources,
		profiles:  profiles,
		bucket:    bucket,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ParseTags splits a comma-separated tag list, trimming and dropping empties
// and repeats.
func ParseTags(raw ...string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, chunk := range raw {
		for _, t := range strings.Split(chunk, ",") {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func (s *resourceService) Upload(ctx context.Context, actor *ActorContext, in UploadInput) (_ *types.Resource, err error) {
	const op = "resource.Upload"
	defer func() {
		observability.Current().IncUpload(in.ResourceType, outcomeOf(err))
	}()
	if !actor.CanUpload() {
		return nil, forbiddenErr(op, "only teachers and coordinators can upload resources")
	}
	if err := s.validateUpload(op, &in); err != nil {
		return nil, err
	}

	dbc := dbctx.Background(ctx)
	course, err := s.courses.GetByID(dbc, in.CourseID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if course == nil {
		return nil, notFoundErr(op, "course not found")
	}
	node, err := s.nodes.GetByID(dbc, in.StructureID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if node == nil || node.CourseID != course.ID {
		return nil, validationErr(op, "structure node does not belong to the course")
	}

	res := &types.Resource{
		ID:           uuid.New(),
		CourseID:     course.ID,
		StructureID:  node.ID,
		UploaderID:   actor.UserID,
		Title:        in.Title,
		Description:  in.Description,
		ResourceType: in.ResourceType,
		Tags:         ParseTags(in.Tags...),
		Status:       coursework.ResourceStatusPending,
		IsVisible:    s.cfg.VisibleOnUpload,
	}
	switch {
	case in.File != nil:
		res.StoragePath = s.storageKey(actor.UserID, in.FileName)
		if err := s.bucket.UploadFile(dbc, res.StoragePath, in.File); err != nil {
			return nil, storeErr(op, err)
		}
	case in.ResourceType == coursework.ResourceTypeTextContent:
		res.Content = in.Content
	default:
		res.URL = in.URL
	}

	if _, err := s.resources.Create(dbc, []*types.Resource{res}); err != nil {
		if res.StoragePath != "" {
			if delErr := s.bucket.DeleteFile(dbc, res.StoragePath); delErr != nil {
				s.log.Warn("failed to remove uploaded file after insert error", "key", res.StoragePath, "error", delErr)
			}
		}
		return nil, storeErr(op, err)
	}
	s.log.Info("resource uploaded",
		"resource_id", res.ID,
		"course_id", res.CourseID,
		"structure_id", res.StructureID,
		"resource_type", res.ResourceType,
		"uploader_id", actor.UserID,
	)
	return res, nil
}

func (s *resourceService) validateUpload(op string, in *UploadInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.URL = strings.TrimSpace(in.URL)
	if in.Title == "" {
		return validationErr(op, "title is required")
	}
	if in.CourseID == uuid.Nil || in.StructureID == uuid.Nil {
		return validationErr(op, "course and structure node are required")
	}
	if !coursework.IsValidResourceType(in.ResourceType) {
		return validationErr(op, "invalid resource_type")
	}

	hasFile := in.File != nil
	switch in.ResourceType {
	case coursework.ResourceTypeFile:
		if !hasFile {
			return validationErr(op, "a file is required")
		}
	case coursework.ResourceTypeLink:
		if in.URL == "" {
			return validationErr(op, "a url is required")
		}
		hasFile = false
	case coursework.ResourceTypeTextContent:
		if strings.TrimSpace(in.Content) == "" {
			return validationErr(op, "content is required")
		}
		hasFile = false
	case coursework.ResourceTypeVideo:
		if in.URL == "" && !hasFile {
			return validationErr(op, "a url or a file is required")
		}
		if in.URL != "" {
			hasFile = false
		}
	}
	if !hasFile {
		in.File = nil
	}
	if in.URL != "" && in.File == nil && in.ResourceType != coursework.ResourceTypeTextContent {
		u, err := url.Parse(in.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return validationErr(op, "url must be an absolute http(s) url")
		}
	}
	if in.File != nil {
		if s.bucket == nil {
			return validationErr(op, "file uploads are not configured")
		}
		if in.FileSize <= 0 {
			return validationErr(op, "file is empty")
		}
		if in.FileSize > s.cfg.MaxUploadBytes {
			return validationErr(op, fmt.Sprintf("file exceeds the %d MB limit", s.cfg.MaxUploadBytes/(1024*1024)))
		}
	}
	return nil
}

// storageKey builds resources/<uploader>/<unix-nanos>_<rand>.<ext>.
func (s *resourceService) storageKey(uploaderID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	return fmt.Sprintf("resources/%s/%d_%s%s", uploaderID, s.now().UnixNano(), uuid.NewString()[:8], ext)
}

func (s *resourceService) Get(ctx context.Context, actor *ActorContext, resourceID uuid.UUID) (*ResourceDetails, error) {
	const op = "resource.Get"
	dbc := dbctx.Background(ctx)
	res, err := s.resources.GetByID(dbc, resourceID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if res == nil || !canSee(actor, res) {
		return nil, notFoundErr(op, "resource not found")
	}

	out := &ResourceDetails{Resource: *res, PreviewKind: res.PreviewKind()}
	if res.StoragePath != "" && s.bucket != nil {
		out.PublicURL = s.bucket.GetPublicURL(res.StoragePath)
	}
	if course, err := s.courses.GetByID(dbc, res.CourseID); err != nil {
		return nil, storeErr(op, err)
	} else if course != nil {
		out.CourseName = course.Name
		out.CourseCode = course.Code
	}
	if node, err := s.nodes.GetByID(dbc, res.StructureID); err != nil {
		return nil, storeErr(op, err)
	} else if node != nil {
		out.StructureName = node.Name
		out.StructureKind = node.StructureType
	}
	ids := []uuid.UUID{res.UploaderID}
	if res.ReviewedBy != nil {
		ids = append(ids, *res.ReviewedBy)
	}
	profiles, err := s.profiles.GetByIDs(dbc, ids)
	if err != nil {
		return nil, storeErr(op, err)
	}
	for _, p := range profiles {
		if p.ID == res.UploaderID {
			out.UploaderName = p.FullName
			out.UploaderRole = p.Role
		}
		if res.ReviewedBy != nil && p.ID == *res.ReviewedBy {
			out.ReviewerName = p.FullName
		}
	}
	return out, nil
}

// canSee hides unapproved resources from everyone but their uploader and
// reviewers.
func canSee(actor *ActorContext, res *types.Resource) bool {
	if res.Status == coursework.ResourceStatusApproved && res.IsVisible {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.UserID == res.UploaderID || actor.CanReview()
}

func (s *resourceService) ListMine(ctx context.Context, actor *ActorContext) ([]*types.Resource, error) {
	const op = "resource.ListMine"
	if actor == nil || actor.UserID == uuid.Nil {
		return nil, forbiddenErr(op, "missing actor")
	}
	uploader := actor.UserID
	rows, err := s.resources.List(dbctx.Background(ctx), repos.ResourceFilter{UploaderID: &uploader})
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}

func (s *resourceService) UpdateTitle(ctx context.Context, actor *ActorContext, resourceID uuid.UUID, title string) (*types.Resource, error) {
	const op = "resource.UpdateTitle"
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationErr(op, "title is required")
	}
	dbc := dbctx.Background(ctx)
	res, err := s.loadOwned(dbc, op, actor, resourceID)
	if err != nil {
		return nil, err
	}
	if err := s.resources.UpdateFields(dbc, res.ID, map[string]interface{}{"title": title}); err != nil {
		return nil, storeErr(op, err)
	}
	res.Title = title
	return res, nil
}

func (s *resourceService) Delete(ctx context.Context, actor *ActorContext, resourceID uuid.UUID) error {
	const op = "resource.Delete"
	dbc := dbctx.Background(ctx)
	res, err := s.loadOwned(dbc, op, actor, resourceID)
	if err != nil {
		return err
	}
	if err := s.resources.DeleteByIDs(dbc, []uuid.UUID{res.ID}); err != nil {
		return storeErr(op, err)
	}
	if res.StoragePath != "" && s.bucket != nil {
		if err := s.bucket.DeleteFile(dbc, res.StoragePath); err != nil {
			s.log.Warn("resource row deleted but stored file remains", "resource_id", res.ID, "key", res.StoragePath, "error", err)
		}
	}
	s.log.Info("resource deleted", "resource_id", res.ID, "actor_id", actor.UserID)
	return nil
}

// loadOwned fetches a resource the actor may modify: their own upload, or
// any resource for reviewers.
func (s *resourceService) loadOwned(dbc dbctx.Context, op string, actor *ActorContext, resourceID uuid.UUID) (*types.Resource, error) {
	if actor == nil {
		return nil, forbiddenErr(op, "missing actor")
	}
	res, err := s.resources.GetByID(dbc, resourceID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if res == nil {
		return nil, notFoundErr(op, "resource not found")
	}
	if res.UploaderID != actor.UserID && !actor.CanReview() {
		return nil, forbiddenErr(op, "only the uploader or a coordinator can modify this resource")
	}
	return res, nil
}
